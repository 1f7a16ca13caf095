package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer         string        // Issuer claim for session tokens (default: lingua)
	TokenTTL       time.Duration // Session token lifetime (default: 24h)
	NumKeys        int           // Signing keys generated at startup (default: 3)
	BootstrapToken string        // Optional: enables POST /v1/bootstrap
	AdminUsername  string        // Optional: admin account seeded on an empty database
	AdminPassword  string        // Required with AdminUsername
	AuthInitDelay  time.Duration // Optional: postpones auth initialisation (testing the loading state)

	DatabaseFile string // Path to SQLite database file (default: ./lingua.db)
	PepperFile   string // Path to the password pepper, created if missing (default: ./pepper)
	RoutesFile   string // Optional: route table on disk, watched for changes. Empty uses the embedded table

	GuardTimeout  time.Duration // How long navigations wait for auth initialisation (default: 5s)
	SecureCookies bool          // Set the Secure flag on the session cookie (default: true outside dev)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	Retention            time.Duration // Age after which sync records and tombstones are purged (default: 30 days)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:         getEnvOrDefault("LINGUA_ISSUER", "lingua"),
		TokenTTL:       getEnvDurationOrDefault("LINGUA_TOKEN_TTL", 24*time.Hour),
		NumKeys:        getEnvIntOrDefault("LINGUA_NUM_KEYS", 3),
		BootstrapToken: os.Getenv("BOOTSTRAP_TOKEN"),
		AdminUsername:  os.Getenv("LINGUA_ADMIN_USERNAME"),
		AdminPassword:  os.Getenv("LINGUA_ADMIN_PASSWORD"),
		AuthInitDelay:  getEnvDurationOrDefault("LINGUA_AUTH_INIT_DELAY", 0),

		DatabaseFile: getEnvOrDefault("LINGUA_DATABASE_FILE", "lingua.db"),
		PepperFile:   getEnvOrDefault("LINGUA_PEPPER_FILE", "pepper"),
		RoutesFile:   os.Getenv("LINGUA_ROUTES_FILE"),

		GuardTimeout: getEnvDurationOrDefault("LINGUA_GUARD_TIMEOUT", 5*time.Second),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		Retention:            getEnvDurationOrDefault("LINGUA_RETENTION", 30*24*time.Hour),
	}

	cfg.SecureCookies = getEnvBoolOrDefault("LINGUA_SECURE_COOKIES", cfg.Env != "dev" && cfg.Env != "test")

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
