package config

import (
	"awi/version"
	"flag"
	"fmt"
	"os"
	"strconv"
)

// Config holds AWI runtime configuration.
type Config struct {
	LogLevel             string
	LogFilePath          string
	Port                 int
	DatabaseURL          string
	SQLitePragmasEnabled bool
	SQLiteBusyTimeoutMS  int
	SQLiteJournalMode    string
	SQLiteSynchronous    string
	SQLiteForeignKeys    bool
	SQLiteMaxOpenConns   int
	SQLiteMaxIdleConns   int
	SQLiteConnMaxIdleSec int
	SQLiteConnMaxLifeSec int
	CLIMode              bool
	CLIServer            string // Server URL for CLI mode; empty means use the CLI profile file

	// Reindex invocation
	ReindexCommand        string // compose binary, may contain extra leading args ("docker compose")
	ReindexService        string
	ReindexInterpreter    string
	ReindexScript         string
	FitsRoot              string
	ReindexTimeoutSeconds int
}

// DefaultPort is the HTTP port used when PORT is unset.
const DefaultPort = 7790

// Settings is the global configuration instance populated from environment variables, an optional file and flags.
var Settings *Config

// init populates Settings from environment variables, falling back to defaults.
func init() {
	Settings = FromEnv()
}

// FromEnv builds a Config from environment variables and built-in defaults.
func FromEnv() *Config {
	return &Config{
		LogLevel:             getEnv("LOG_LEVEL", "INFO"),
		LogFilePath:          getEnv("LOG_FILE", "./awi.log"),
		Port:                 getEnvInt("PORT", DefaultPort),
		DatabaseURL:          getEnv("DATABASE_URL", "awi.db"),
		SQLitePragmasEnabled: getEnvBool("SQLITE_PRAGMAS_ENABLED", true),
		SQLiteBusyTimeoutMS:  getEnvInt("SQLITE_BUSY_TIMEOUT_MS", 5000),
		SQLiteJournalMode:    getEnv("SQLITE_JOURNAL_MODE", "WAL"),
		SQLiteSynchronous:    getEnv("SQLITE_SYNCHRONOUS", "NORMAL"),
		SQLiteForeignKeys:    getEnvBool("SQLITE_FOREIGN_KEYS", true),
		SQLiteMaxOpenConns:   getEnvInt("SQLITE_MAX_OPEN_CONNS", 1),
		SQLiteMaxIdleConns:   getEnvInt("SQLITE_MAX_IDLE_CONNS", 1),
		SQLiteConnMaxIdleSec: getEnvInt("SQLITE_CONN_MAX_IDLE_SECONDS", 300),
		SQLiteConnMaxLifeSec: getEnvInt("SQLITE_CONN_MAX_LIFETIME_SECONDS", 0),
		CLIMode:              getEnvBool("CLI_MODE", false),
		CLIServer:            getEnv("CLI_SERVER", ""),

		ReindexCommand:        getEnv("REINDEX_COMMAND", "docker-compose"),
		ReindexService:        getEnv("REINDEX_SERVICE", "python"),
		ReindexInterpreter:    getEnv("REINDEX_INTERPRETER", "python"),
		ReindexScript:         getEnv("REINDEX_SCRIPT", "/app/reindex.py"),
		FitsRoot:              getEnv("FITS_ROOT", "/fits"),
		ReindexTimeoutSeconds: getEnvInt("REINDEX_TIMEOUT_SECONDS", 1800),
	}
}

// ParseFlags parses command-line flags, loads the optional config file and applies overrides to Settings.
// Precedence, lowest first: defaults, environment, config file, flags.
// It handles --help (prints usage and exits) and --version (prints build info and exits).
func ParseFlags() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "AWI - Astro Web Interface backend\n\n")
		fmt.Fprintf(out, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintln(out, "Options:")
		flag.PrintDefaults()
		fmt.Fprintln(out, "\nEnvironment variables:")
		fmt.Fprintln(out, "  LOG_LEVEL                         Log level (DEBUG, INFO, WARN, ERROR)")
		fmt.Fprintln(out, "  LOG_FILE                          Log file path (default ./awi.log)")
		fmt.Fprintln(out, "  PORT                              HTTP server port (default 7790)")
		fmt.Fprintln(out, "  DATABASE_URL                      SQLite database path (default awi.db)")
		fmt.Fprintln(out, "  SQLITE_PRAGMAS_ENABLED            Enable SQLite PRAGMAs (true/false, default true)")
		fmt.Fprintln(out, "  SQLITE_BUSY_TIMEOUT_MS            SQLite busy_timeout in milliseconds (default 5000)")
		fmt.Fprintln(out, "  SQLITE_JOURNAL_MODE               SQLite journal_mode (default WAL)")
		fmt.Fprintln(out, "  SQLITE_SYNCHRONOUS                SQLite synchronous (default NORMAL)")
		fmt.Fprintln(out, "  SQLITE_FOREIGN_KEYS               Enable SQLite foreign_keys (true/false, default true)")
		fmt.Fprintln(out, "  SQLITE_MAX_OPEN_CONNS             SQLite MaxOpenConns (default 1)")
		fmt.Fprintln(out, "  SQLITE_MAX_IDLE_CONNS             SQLite MaxIdleConns (default 1)")
		fmt.Fprintln(out, "  SQLITE_CONN_MAX_IDLE_SECONDS      SQLite ConnMaxIdleTime in seconds (default 300)")
		fmt.Fprintln(out, "  SQLITE_CONN_MAX_LIFETIME_SECONDS  SQLite ConnMaxLifetime in seconds (default 0)")
		fmt.Fprintln(out, "  REINDEX_COMMAND                   Compose command used to reach the indexer (default docker-compose)")
		fmt.Fprintln(out, "  REINDEX_SERVICE                   Compose service running the indexer (default python)")
		fmt.Fprintln(out, "  REINDEX_INTERPRETER               Interpreter inside the container (default python)")
		fmt.Fprintln(out, "  REINDEX_SCRIPT                    Indexer entry point (default /app/reindex.py)")
		fmt.Fprintln(out, "  FITS_ROOT                         Archive root inside the container (default /fits)")
		fmt.Fprintln(out, "  REINDEX_TIMEOUT_SECONDS           Reindex timeout in seconds, 0 disables (default 1800)")
		fmt.Fprintln(out, "  CLI_MODE                          Run the interactive CLI client (true/false)")
		fmt.Fprintln(out, "  CLI_SERVER                        Server URL for CLI mode")
	}

	configFile := flag.String("config", "", "Optional TOML config file (applied over environment variables)")
	port := flag.Int("port", Settings.Port, "HTTP server port (overrides PORT)")
	db := flag.String("db", Settings.DatabaseURL, "SQLite database path (overrides DATABASE_URL)")
	sqlitePragmasEnabled := flag.Bool("sqlite-pragmas", Settings.SQLitePragmasEnabled, "Enable SQLite PRAGMAs (overrides SQLITE_PRAGMAS_ENABLED)")
	sqliteBusyTimeoutMS := flag.Int("sqlite-busy-timeout-ms", Settings.SQLiteBusyTimeoutMS, "SQLite busy_timeout in milliseconds (overrides SQLITE_BUSY_TIMEOUT_MS)")
	sqliteJournalMode := flag.String("sqlite-journal-mode", Settings.SQLiteJournalMode, "SQLite journal_mode (overrides SQLITE_JOURNAL_MODE)")
	sqliteSynchronous := flag.String("sqlite-synchronous", Settings.SQLiteSynchronous, "SQLite synchronous (overrides SQLITE_SYNCHRONOUS)")
	sqliteMaxOpenConns := flag.Int("sqlite-max-open-conns", Settings.SQLiteMaxOpenConns, "SQLite MaxOpenConns (overrides SQLITE_MAX_OPEN_CONNS)")
	logLevel := flag.String("log-level", Settings.LogLevel, "Log level: DEBUG, INFO, WARN, ERROR (overrides LOG_LEVEL)")
	logFile := flag.String("log-file", Settings.LogFilePath, "Log file path (overrides LOG_FILE)")
	reindexCommand := flag.String("reindex-command", Settings.ReindexCommand, "Compose command used to reach the indexer (overrides REINDEX_COMMAND)")
	fitsRoot := flag.String("fits-root", Settings.FitsRoot, "Archive root inside the indexer container (overrides FITS_ROOT)")
	reindexTimeout := flag.Int("reindex-timeout-seconds", Settings.ReindexTimeoutSeconds, "Reindex timeout in seconds, 0 disables (overrides REINDEX_TIMEOUT_SECONDS)")
	cliMode := flag.Bool("cli", Settings.CLIMode, "Run in CLI mode (HTTP client only, no database)")
	cliServer := flag.String("server", Settings.CLIServer, "Server URL for CLI mode (default: profile from ~/.awi/config.yaml)")

	showHelp := flag.Bool("help", false, "Show help and exit")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetBuildInfo())
		os.Exit(0)
	}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *configFile != "" {
		if err := LoadFile(*configFile, Settings); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config file: %v\n", err)
			os.Exit(2)
		}
	}

	// Only flags given explicitly override file values.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			Settings.Port = *port
		case "db":
			Settings.DatabaseURL = *db
		case "sqlite-pragmas":
			Settings.SQLitePragmasEnabled = *sqlitePragmasEnabled
		case "sqlite-busy-timeout-ms":
			Settings.SQLiteBusyTimeoutMS = *sqliteBusyTimeoutMS
		case "sqlite-journal-mode":
			Settings.SQLiteJournalMode = *sqliteJournalMode
		case "sqlite-synchronous":
			Settings.SQLiteSynchronous = *sqliteSynchronous
		case "sqlite-max-open-conns":
			Settings.SQLiteMaxOpenConns = *sqliteMaxOpenConns
		case "log-level":
			Settings.LogLevel = *logLevel
		case "log-file":
			Settings.LogFilePath = *logFile
		case "reindex-command":
			Settings.ReindexCommand = *reindexCommand
		case "fits-root":
			Settings.FitsRoot = *fitsRoot
		case "reindex-timeout-seconds":
			Settings.ReindexTimeoutSeconds = *reindexTimeout
		case "cli":
			Settings.CLIMode = *cliMode
		case "server":
			Settings.CLIServer = *cliServer
		}
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
