package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/study-notes-backend/models"
)

// Completion providers
const (
	ProviderGateway = "gateway"
	ProviderGemini  = "gemini"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`
	Env  string `envconfig:"APP_ENV" default:"development"`

	DBHost         string `envconfig:"DB_HOST" default:"localhost"`
	DBPort         string `envconfig:"DB_PORT" default:"5432"`
	DBUser         string `envconfig:"DB_USER" default:"postgres"`
	DBPassword     string `envconfig:"DB_PASSWORD"`
	DBName         string `envconfig:"DB_NAME" default:"study_notes"`
	DBSSLMode      string `envconfig:"DB_SSLMODE" default:"disable"`
	DBTimeZone     string `envconfig:"DB_TIMEZONE" default:"UTC"`
	DBMaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"100"`
	DBMaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`

	LLMProvider string `envconfig:"LLM_PROVIDER" default:"gateway"`

	// OpenAI-compatible chat completions gateway
	AIBaseURL string        `envconfig:"AI_BASE_URL" default:"https://ai.gateway.lovable.dev/v1"`
	AIAPIKey  string        `envconfig:"AI_API_KEY"`
	AIModel   string        `envconfig:"AI_MODEL" default:"google/gemini-2.5-flash"`
	AITimeout time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`

	JWTSecret string `envconfig:"JWT_SECRET"`

	SupabaseURL   string `envconfig:"SUPABASE_URL"`
	SupabaseKey   string `envconfig:"SUPABASE_KEY"`
	StorageBucket string `envconfig:"STORAGE_BUCKET" default:"uploads"`

	CORSAllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:5173"`
	MaxUploadBytes   int64    `envconfig:"MAX_UPLOAD_BYTES" default:"20971520"`
}

// Load reads the configuration from environment variables and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.LLMProvider {
	case ProviderGateway:
		if c.AIAPIKey == "" {
			return errors.New("AI_API_KEY is required for the gateway provider")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini provider")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.AITimeout <= 0 {
		return errors.New("AI_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// StorageEnabled reports whether original uploads are archived to Supabase.
func (c *Config) StorageEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode, c.DBTimeZone,
	)
}

// NewLogger returns a JSON logger in production and a console logger otherwise.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// InitDB connects to postgres, configures pooling and migrates the schema.
func InitDB(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	level := logger.Info
	if cfg.IsProduction() {
		level = logger.Warn
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("postgres connected and migrated", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))
	return db, nil
}

// Migrate creates or updates the tables this service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Document{},
		&models.Note{},
		&models.Flashcard{},
	); err != nil {
		return fmt.Errorf("autoMigrate: %w", err)
	}
	return nil
}
