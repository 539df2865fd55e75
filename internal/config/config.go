package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type Config struct {
	App          AppConfig
	Storage      StorageConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	SMTP         SMTPConfig
	Reset        PasswordResetConfig
	Payroll      PayrollConfig
	Registration RegistrationConfig
	Jobs         JobsConfig
	Admin        AdminConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	LogLevel       string
	Timezone       string
	AllowedOrigins []string
}

type StorageConfig struct {
	Driver string // memory, redis, postgres
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	ApplySchema bool
}

type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type PasswordResetConfig struct {
	URL        string // reset page; token and email are appended as query parameters
	Expiration string
}

type PayrollConfig struct {
	DefaultBaseSalary    string
	BaseSalaryTable      string // Designation=amount,Designation=amount
	StandardMonthlyHours string
	DeductionRate        string
	BonusRate            string
	BonusChancePercent   int
}

type RegistrationConfig struct {
	DefaultExpiryDays int
}

type JobsConfig struct {
	StaleSessionCron string
}

// AdminConfig seeds the first administrator when both fields are set.
type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

func Load() (*Config, error) {
	// A missing .env is fine; the process environment still applies.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := &Config{}
	var err error

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "attendly"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       getEnv("APP_TIMEZONE", "UTC"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	config.Storage = StorageConfig{
		Driver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory)),
	}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	applySchema, err := strconv.ParseBool(getEnv("DB_APPLY_SCHEMA", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_APPLY_SCHEMA: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        dbPort,
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "attendly"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		ApplySchema: applySchema,
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Username: getEnv("REDIS_USERNAME", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
		Prefix:   getEnv("REDIS_PREFIX", "attendly"),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "24h"),
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@attendly.local"),
		FromName: getEnv("SMTP_FROM_NAME", "Attendly"),
	}

	config.Reset = PasswordResetConfig{
		URL:        getEnv("PASSWORD_RESET_URL", "http://localhost:3000/reset-password"),
		Expiration: getEnv("PASSWORD_RESET_EXPIRATION_TIME", "24h"),
	}

	bonusChance, err := strconv.Atoi(getEnv("PAYROLL_BONUS_CHANCE_PERCENT", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_BONUS_CHANCE_PERCENT: %w", err)
	}

	config.Payroll = PayrollConfig{
		DefaultBaseSalary:    getEnv("PAYROLL_DEFAULT_BASE_SALARY", "5000"),
		BaseSalaryTable:      getEnv("PAYROLL_BASE_SALARY_TABLE", ""),
		StandardMonthlyHours: getEnv("PAYROLL_STANDARD_MONTHLY_HOURS", "160"),
		DeductionRate:        getEnv("PAYROLL_DEDUCTION_RATE", "0.20"),
		BonusRate:            getEnv("PAYROLL_BONUS_RATE", "0.05"),
		BonusChancePercent:   bonusChance,
	}

	expiryDays, err := strconv.Atoi(getEnv("REGISTRATION_CODE_EXPIRY_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid REGISTRATION_CODE_EXPIRY_DAYS: %w", err)
	}
	config.Registration = RegistrationConfig{DefaultExpiryDays: expiryDays}

	config.Jobs = JobsConfig{
		StaleSessionCron: getEnv("JOBS_STALE_SESSION_CRON", "@daily"),
	}

	config.Admin = AdminConfig{
		Name:     getEnv("ADMIN_NAME", "Administrator"),
		Email:    getEnv("ADMIN_EMAIL", ""),
		Password: getEnv("ADMIN_PASSWORD", ""),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StorageRedis:
	case StoragePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of: memory, redis, postgres")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if d, err := time.ParseDuration(c.Reset.Expiration); err != nil || d <= 0 {
		return fmt.Errorf("PASSWORD_RESET_EXPIRATION_TIME must be a positive duration")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	if c.Payroll.BonusChancePercent < 0 || c.Payroll.BonusChancePercent > 100 {
		return fmt.Errorf("PAYROLL_BONUS_CHANCE_PERCENT must be between 0 and 100")
	}
	if c.Registration.DefaultExpiryDays < 1 {
		return fmt.Errorf("REGISTRATION_CODE_EXPIRY_DAYS must be positive")
	}
	if (c.Admin.Email == "") != (c.Admin.Password == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

// ResetExpiration is how long a password reset link stays usable.
func (c *Config) ResetExpiration() time.Duration {
	d, err := time.ParseDuration(c.Reset.Expiration)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// Location returns the organisation timezone used for calendar days.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key, fallback string) []string {
	var result []string
	for _, v := range strings.Split(getEnv(key, fallback), ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
