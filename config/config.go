package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Config struct {
	Port string

	StoreDriver string
	MongoURI    string
	MongoDB     string
	SQLDSN      string

	JWTSecret string
	JWTTTL    time.Duration

	OrgName            string
	OrgTimezone        string
	Location           *time.Location
	ExportTimeFormat   string
	DefaultNationality string
	CORSOrigins        string

	SMTP SMTPConfig

	AdminEmail    string
	AdminUsername string
	AdminPassword string
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, exists := os.LookupEnv(key)
	if !exists || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}

// loadLocation falls back to a fixed UTC+8 zone when tzdata is not available.
func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("config: timezone %q unavailable (%v), using UTC+8", name, err)
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}

func LoadConfig() Config {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() Config {
	tz := getEnv("ORG_TIMEZONE", "Asia/Taipei")

	cfg := Config{
		Port: getEnv("PORT", "3000"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "mongo")),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "orgsite"),
		SQLDSN:      getEnv("SQL_DSN", "orgsite.db"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 168)) * time.Hour,

		OrgName:            getEnv("ORG_NAME", "Student Association"),
		OrgTimezone:        tz,
		Location:           loadLocation(tz),
		ExportTimeFormat:   getEnv("EXPORT_TIME_FORMAT", ""),
		DefaultNationality: getEnv("DEFAULT_NATIONALITY", "中華民國"),
		CORSOrigins:        getEnv("CORS_ORIGINS", "*"),

		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("MAIL_FROM"),
		},

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}
	return cfg
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.StoreDriver {
	case "mongo", "sqlite", "postgres":
	default:
		return errors.New("STORE_DRIVER must be one of mongo, sqlite, postgres")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL_HOURS must be positive")
	}
	return nil
}
