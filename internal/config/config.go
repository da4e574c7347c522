package config // package config loads application configuration from environment variables

import (
	"fmt"
	"os"
	"strings"
)

// Storage backends selectable with STORE_BACKEND or --backend.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	Backend        string // storage backend: memory, sqlite or mysql
	SQLitePath     string // database file of the sqlite backend
	DBUser         string // mysql username
	DBPass         string // mysql password (optional)
	DBHost         string // mysql host address
	DBPort         string // mysql port number
	DBName         string // mysql database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	StationsFile   string // YAML station directory (optional)
	AdminPassword  string // password of the bootstrapped admin account
	AMQPURL        string // RabbitMQ URL for trip events (empty disables them)
	TripLogPath    string // file the trip event consumer appends to
}

// Load reads configuration values from environment variables.  Required
// variables are enforced by must() and missing values cause the program to
// exit with a fatal log message.  backend overrides STORE_BACKEND when set;
// MySQL settings are only required for the mysql backend.
func Load(backend string) Config {
	c := Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           must("APP_PORT"),
		Backend:        strings.ToLower(envStr("STORE_BACKEND", BackendMemory)),
		SQLitePath:     envStr("SQLITE_PATH", "data/railway.db"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     envInt("BCRYPT_COST", 10),
		StationsFile:   os.Getenv("STATIONS_FILE"),
		AdminPassword:  must("ADMIN_PASSWORD"),
		AMQPURL:        envStr("RABBITMQ_URL", os.Getenv("AMQP_URL")),
		TripLogPath:    envStr("TRIP_LOG_PATH", "logs/trips.log"),
	}
	if backend != "" {
		c.Backend = strings.ToLower(backend)
	}
	if c.Backend == BackendMySQL {
		c.DBUser = must("DB_USER")
		c.DBPass = os.Getenv("DB_PASS")
		c.DBHost = must("DB_HOST")
		c.DBPort = must("DB_PORT")
		c.DBName = must("DB_NAME")
	}
	return c
}

// Validate reports configuration values that are present but unusable.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendSQLite, BackendMySQL:
	default:
		return fmt.Errorf("unknown store backend %q (want memory, sqlite or mysql)", c.Backend)
	}
	if c.Backend == BackendSQLite && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
	}
	if c.AccessTTLMin <= 0 || c.RefreshTTLDays <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	return nil
}
