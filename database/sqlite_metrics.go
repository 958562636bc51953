package database

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	sqliteBusyErrors   atomic.Uint64
	sqliteLockedErrors atomic.Uint64
	sqliteQueries      atomic.Uint64
)

func classifySQLiteError(err error) (busy bool, locked bool) {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false, false
	}

	msg := strings.ToLower(err.Error())
	busy = strings.Contains(msg, "sqlite_busy") || strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy timeout")
	locked = strings.Contains(msg, "sqlite_locked") || strings.Contains(msg, "database table is locked")
	return busy, locked
}

func recordSQLiteError(err error) {
	busy, locked := classifySQLiteError(err)
	if busy {
		sqliteBusyErrors.Add(1)
	}
	if locked {
		sqliteLockedErrors.Add(1)
	}
}

// SQLiteBusyErrorsTotal counts statements that failed with SQLITE_BUSY since startup.
func SQLiteBusyErrorsTotal() uint64 {
	return sqliteBusyErrors.Load()
}

func SQLiteLockedErrorsTotal() uint64 {
	return sqliteLockedErrors.Load()
}

// SQLiteQueriesTotal counts statements traced by gorm since startup.
func SQLiteQueriesTotal() uint64 {
	return sqliteQueries.Load()
}

// SQLiteUp pings db, bounding the ping to 200ms when ctx has no deadline.
func SQLiteUp(ctx context.Context, db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()
	}

	return sqlDB.PingContext(ctx) == nil
}

// sqliteMetricsLogger feeds the counters above from gorm's trace hook and
// delegates everything else to the wrapped logger.
type sqliteMetricsLogger struct {
	inner logger.Interface
}

func (l sqliteMetricsLogger) LogMode(level logger.LogLevel) logger.Interface {
	return sqliteMetricsLogger{inner: l.inner.LogMode(level)}
}

func (l sqliteMetricsLogger) Info(ctx context.Context, s string, args ...interface{}) {
	l.inner.Info(ctx, s, args...)
}

func (l sqliteMetricsLogger) Warn(ctx context.Context, s string, args ...interface{}) {
	l.inner.Warn(ctx, s, args...)
}

func (l sqliteMetricsLogger) Error(ctx context.Context, s string, args ...interface{}) {
	l.inner.Error(ctx, s, args...)
}

func (l sqliteMetricsLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	sqliteQueries.Add(1)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		recordSQLiteError(err)
	}
	l.inner.Trace(ctx, begin, fc, err)
}
