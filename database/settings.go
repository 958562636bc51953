package database

import (
	"awi/models"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// KeyValueStore persists small key/value records in the app_settings table.
type KeyValueStore struct {
	db *gorm.DB
}

// NewKeyValueStore wraps db.
func NewKeyValueStore(db *gorm.DB) *KeyValueStore {
	return &KeyValueStore{db: db}
}

// Get returns a persisted value; ok is false when the key does not exist.
func (s *KeyValueStore) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	if s == nil || s.db == nil {
		return "", false, errors.New("database not initialized")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, errors.New("empty setting key")
	}

	var setting models.AppSetting
	if err := s.db.WithContext(ctx).First(&setting, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return setting.Value, true, nil
}

// Set persists a value, replacing any previous one.
func (s *KeyValueStore) Set(ctx context.Context, key, value string) error {
	if s == nil || s.db == nil {
		return errors.New("database not initialized")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("empty setting key")
	}

	return s.db.WithContext(ctx).Save(&models.AppSetting{Key: key, Value: value}).Error
}
