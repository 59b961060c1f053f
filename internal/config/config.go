package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Asana    AsanaConfig
	Roster   RosterConfig
	SMTP     SMTPConfig
	Mail     MailConfig
	JWT      JWTConfig
	Database DatabaseConfig
	Storage  StorageConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

// IsDevelopment reports whether outbound mail must be redirected to the test inbox.
func (a AppConfig) IsDevelopment() bool {
	return a.Env == "development"
}

// AsanaConfig holds the task tracker credentials and the leave project.
type AsanaConfig struct {
	AccessToken  string
	ProjectGID   string
	WorkspaceGID string
	BaseURL      string
	PageLimit    int
}

// RosterConfig selects the roster source. A Google sheet takes precedence over
// a local workbook.
type RosterConfig struct {
	ServiceAccountEmail string
	PrivateKey          string
	SheetID             string
	SheetTitle          string
	XLSXPath            string
}

func (r RosterConfig) UseGoogleSheet() bool {
	return r.SheetID != ""
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// MailConfig holds leave summary delivery settings.
type MailConfig struct {
	TestReceiver    string
	Pacing          time.Duration
	RequiredDomain  string
	QuickChartURL   string
	MonthlyDay      int // day of month for the batch send, 0 disables it
	MonthlyHour     int // UTC hour of MonthlyDay
}

// JWTConfig holds JWT configuration. Bearer tokens are only checked when
// Secret is set.
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Enabled reports whether the delivery log is persisted.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

type StorageConfig struct {
	BasePath string
	BaseURL  string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	} else if err != nil {
		slog.Warn("No .env file found, using process environment")
	}

	config := &Config{}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// Asana configuration
	pageLimit, err := getEnvInt("ASANA_PAGE_LIMIT", 100)
	if err != nil {
		return nil, err
	}

	config.Asana = AsanaConfig{
		AccessToken:  getEnv("ASANA_ACCESS_TOKEN", ""),
		ProjectGID:   getEnv("ASANA_PROJECT_GID", ""),
		WorkspaceGID: getEnv("ASANA_WORKSPACE_GID", ""),
		BaseURL:      getEnv("ASANA_BASE_URL", "https://app.asana.com/api/1.0"),
		PageLimit:    pageLimit,
	}

	// Roster configuration
	config.Roster = RosterConfig{
		ServiceAccountEmail: getEnv("GOOGLE_SERVICE_ACCOUNT_EMAIL", ""),
		PrivateKey:          strings.ReplaceAll(getEnv("GOOGLE_PRIVATE_KEY", ""), `\n`, "\n"),
		SheetID:             getEnv("GOOGLE_SHEET_ID", ""),
		SheetTitle:          getEnv("GOOGLE_SHEET_TITLE", "Leave Data"),
		XLSXPath:            getEnv("ROSTER_XLSX_PATH", ""),
	}

	// SMTP configuration
	smtpPort, err := getEnvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}

	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", getEnv("SMTP_USERNAME", "")),
		FromName: getEnv("SMTP_FROM_NAME", "Leave Summary Automation"),
	}

	// Mail delivery configuration
	pacing, err := getEnvDuration("MAIL_PACING", time.Second)
	if err != nil {
		return nil, err
	}
	monthlyDay, err := getEnvInt("MONTHLY_MAIL_DAY", 0)
	if err != nil {
		return nil, err
	}
	monthlyHour, err := getEnvInt("MONTHLY_MAIL_HOUR", 9)
	if err != nil {
		return nil, err
	}

	config.Mail = MailConfig{
		TestReceiver:    getEnv("TEST_EMAIL_RECEIVER", ""),
		Pacing:          pacing,
		RequiredDomain:  emailDomain(getEnv("MAIL_REQUIRED_DOMAIN", "")),
		QuickChartURL:   getEnv("QUICKCHART_URL", "https://quickchart.io/chart"),
		MonthlyDay:      monthlyDay,
		MonthlyHour:     monthlyHour,
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "720h"),
	}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "leave_dashboard"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Storage configuration
	config.Storage = StorageConfig{
		BasePath: getEnv("STORAGE_BASE_PATH", "./storage"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/files"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Asana.AccessToken == "" {
		return fmt.Errorf("ASANA_ACCESS_TOKEN is required")
	}
	if c.Asana.ProjectGID == "" {
		return fmt.Errorf("ASANA_PROJECT_GID is required")
	}
	if c.Asana.PageLimit < 1 || c.Asana.PageLimit > 100 {
		return fmt.Errorf("ASANA_PAGE_LIMIT must be between 1 and 100")
	}

	if c.Roster.UseGoogleSheet() {
		if c.Roster.ServiceAccountEmail == "" {
			return fmt.Errorf("GOOGLE_SERVICE_ACCOUNT_EMAIL is required")
		}
		if c.Roster.PrivateKey == "" {
			return fmt.Errorf("GOOGLE_PRIVATE_KEY is required")
		}
	} else if c.Roster.XLSXPath == "" {
		return fmt.Errorf("GOOGLE_SHEET_ID or ROSTER_XLSX_PATH is required")
	}

	if c.SMTP.Host != "" && c.SMTP.From == "" {
		return fmt.Errorf("SMTP_FROM is required")
	}
	if c.SMTP.Host != "" && c.App.IsDevelopment() && c.Mail.TestReceiver == "" {
		return fmt.Errorf("TEST_EMAIL_RECEIVER is required in development")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.Mail.Pacing < 0 {
		return fmt.Errorf("MAIL_PACING must not be negative")
	}
	if c.Mail.MonthlyDay < 0 || c.Mail.MonthlyDay > 28 {
		return fmt.Errorf("MONTHLY_MAIL_DAY must be between 0 and 28")
	}
	if c.Mail.MonthlyHour < 0 || c.Mail.MonthlyHour > 23 {
		return fmt.Errorf("MONTHLY_MAIL_HOUR must be between 0 and 23")
	}

	if c.Database.Enabled() && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	return nil
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

// emailDomain returns domain in "@example.com" form.
func emailDomain(domain string) string {
	domain = strings.TrimSpace(domain)
	if domain == "" || strings.HasPrefix(domain, "@") {
		return domain
	}
	return "@" + domain
}

func getEnvInt(key string, fallback int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
