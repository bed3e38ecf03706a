package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds everything the server reads from the environment.
type Settings struct {
	HTTPAddr string

	DBDriver   string // "postgres" or "sqlite"
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimezone string
	SQLitePath string

	JWTSecret string
	JWTTTL    time.Duration

	LogFile  string
	LogLevel string

	IdentityFields []string
	VisitThreshold int
	CORSOrigins    []string

	SuperAdminUsername string
	SuperAdminPassword string
}

// Load reads .env (if present) and the process environment.
func Load() Settings {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}

	return Settings{
		HTTPAddr: getEnv("HTTP_ADDR", "0.0.0.0:8080"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "visits"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBTimezone: getEnv("DB_TIMEZONE", "UTC"),
		SQLitePath: getEnv("SQLITE_PATH", "./visits.db"),

		JWTSecret: getEnv("JWT_SECRET", "supersecret"),
		JWTTTL:    getDuration("JWT_TTL", 24*time.Hour),

		LogFile:  getEnv("LOG_FILE", "./logs/app.log"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		IdentityFields: getList("IDENTITY_FIELDS", []string{"vehicle_number", "driver_id"}),
		VisitThreshold: getInt("VISIT_THRESHOLD", 4),
		CORSOrigins:    getList("CORS_ORIGINS", nil),

		SuperAdminUsername: getEnv("SUPERADMIN_USERNAME", ""),
		SuperAdminPassword: getEnv("SUPERADMIN_PASSWORD", ""),
	}
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		log.Printf("ignoring invalid %s=%q", key, v)
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		log.Printf("ignoring invalid %s=%q", key, v)
		return defaultValue
	}
	return d
}

// getList splits a comma separated variable, dropping empty items.
func getList(key string, defaultValue []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
