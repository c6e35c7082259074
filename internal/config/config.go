package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig agrupa lo mínimo para levantar el HTTP server.
type ServerConfig struct {
	Port string
	Env  string // development | production
}

// AuthConfig agrupa firma y vigencias de tokens.
// ResetTokenTTL es un único valor configurable (no hay dos TTLs distintos).
type AuthConfig struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
	ResetTokenTTL  time.Duration
	MinPasswordLen int
}

// SMTPConfig agrupa el transporte de correo.
// Si Host está vacío, se usa el mailer de consola (modo dev).
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// AdminConfig permite sembrar un admin inicial al arrancar.
// Si Email está vacío, no se siembra nada.
type AdminConfig struct {
	Email    string
	Password string
}

type Config struct {
	AppName string
	BaseURL string // para armar links de reset en los correos

	Server ServerConfig
	DBDSN  string // si está vacío, repos in-memory
	Auth   AuthConfig
	SMTP   SMTPConfig
	Admin  AdminConfig

	LogLevel string
}

// Load lee configuración desde env (y .env si existe).
func Load() (*Config, error) {
	// .env es opcional; en prod vienen las vars del entorno.
	_ = godotenv.Load()

	cfg := &Config{
		AppName: getEnv("APP_NAME", "vet-clinic-api"),
		BaseURL: strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		DBDSN: getEnv("DB_DSN", ""),
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
			AccessTokenTTL: getEnvAsDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
			ResetTokenTTL:  getEnvAsDuration("RESET_TOKEN_TTL", 15*time.Minute),
			MinPasswordLen: getEnvAsInt("MIN_PASSWORD_LEN", 6),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@vetclinic.local"),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// IsProduction indica si aplican cookies Secure + SameSite=None.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Env, "production")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
