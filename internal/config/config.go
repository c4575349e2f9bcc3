package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          string
	DatabaseURL   string
	DBHost        string
	DBPort        string
	DBName        string
	DBUser        string
	DBPassword    string
	DBSSLMode     string
	DBTimeZone    string
	DBLogLevel    string
	JWTSecret     string
	JWTTTL        time.Duration
	ImageDir      string
	AdminLogin    string
	AdminPassword string
}

// Load reads the process environment. Call godotenv.Load first to pick up a .env file.
func Load() Config {
	return Config{
		Port:          getenv("PORT", "3000"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBName:        getenv("DB_NAME", "shoe_shop"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
		DBTimeZone:    getenv("DB_TIMEZONE", "UTC"),
		DBLogLevel:    getenv("DB_LOG_LEVEL", "warn"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTL:        time.Duration(getenvInt("JWT_TTL_HOURS", 24)) * time.Hour,
		ImageDir:      getenv("IMAGE_DIR", "resources/images"),
		AdminLogin:    getenv("ADMIN_LOGIN", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from the DB_* settings.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode, c.DBTimeZone,
	)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return def
	}
	return i
}
