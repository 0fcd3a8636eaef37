package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig     `envconfig:"SERVER"`
	Database DatabaseConfig   `envconfig:"DB"`
	Redis    RedisConfig      `envconfig:"REDIS"`
	Storage  StorageConfig    `envconfig:"STORAGE"`
	Groq     GroqConfig       `envconfig:"GROQ"`
	Assembly AssemblyAIConfig `envconfig:"ASSEMBLYAI"`
	Pipeline PipelineConfig   `envconfig:"PIPELINE"`
	Ops      OpsConfig        `envconfig:"OPS"`
}

// ServerConfig holds the ops HTTP server configuration
type ServerConfig struct {
	Port            string `envconfig:"PORT" default:"8080"`
	Host            string `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver      string `envconfig:"DRIVER" default:"postgres"` // "postgres" or "sqlite"
	Host        string `envconfig:"HOST" default:"localhost"`
	Port        string `envconfig:"PORT" default:"5432"`
	User        string `envconfig:"USER" default:"postgres"`
	Password    string `envconfig:"PASSWORD" default:"postgres"`
	Name        string `envconfig:"NAME" default:"meeting_enrichment"`
	SSLMode     string `envconfig:"SSLMODE" default:"disable"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"meeting_enrichment.db"`
	MaxConns    int    `envconfig:"MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"false"`
	Migrations  string `envconfig:"MIGRATIONS_DIR" default:"migrations"`
}

// RedisConfig holds Redis configuration. An empty Host disables Redis and
// the poll lease falls back to an in-process lease.
type RedisConfig struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT" default:"6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Endpoint        string        `envconfig:"ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string        `envconfig:"ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string        `envconfig:"SECRET_KEY" default:"minioadmin"`
	BucketName      string        `envconfig:"BUCKET" default:"meeting-enrichment"`
	UseSSL          bool          `envconfig:"USE_SSL" default:"false"`
	PublicURL       string        `envconfig:"PUBLIC_URL"`
	PresignExpiry   time.Duration `envconfig:"PRESIGN_EXPIRY" default:"2h"`
}

// GroqConfig holds the language-model endpoint used by the scorer,
// rewriter and summarizer
type GroqConfig struct {
	APIKey      string        `envconfig:"API_KEY"`
	BaseURL     string        `envconfig:"BASE_URL" default:"https://api.groq.com"`
	Model       string        `envconfig:"MODEL" default:"llama-3.1-8b-instant"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"30s"`
	MaxElapsed  time.Duration `envconfig:"MAX_ELAPSED" default:"30s"`
	PromptsFile string        `envconfig:"PROMPTS_FILE"`
}

// AssemblyAIConfig holds the upstream transcription configuration
type AssemblyAIConfig struct {
	APIKey       string        `envconfig:"API_KEY"`
	BaseURL      string        `envconfig:"BASE_URL"`
	LanguageCode string        `envconfig:"LANGUAGE" default:"ja"`
	MaxElapsed   time.Duration `envconfig:"MAX_ELAPSED" default:"30s"`
}

// PipelineConfig holds orchestrator configuration
type PipelineConfig struct {
	PollInterval  time.Duration `envconfig:"POLL_INTERVAL" default:"5m"`
	BatchLimit    int           `envconfig:"BATCH_LIMIT" default:"100"`
	LeaseTTL      time.Duration `envconfig:"LEASE_TTL" default:"30m"`
	StageTimeout  time.Duration `envconfig:"STAGE_TIMEOUT" default:"5m"`
	RunOnStart    bool          `envconfig:"RUN_ON_START" default:"true"`
	TitleBlocks   bool          `envconfig:"TITLE_BLOCKS" default:"true"` // Stage 7 block titling
	StagesPerTick int           `envconfig:"STAGES_PER_TICK" default:"1"` // >1 chains stages within one poll
	MaxRetries    int           `envconfig:"MAX_RETRIES" default:"3"`
	RetryDelay    time.Duration `envconfig:"RETRY_DELAY" default:"2s"`
}

// OpsConfig holds the internal ops endpoint configuration
type OpsConfig struct {
	Secret string `envconfig:"SECRET"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Pipeline.PollInterval <= 0 {
		return fmt.Errorf("PIPELINE_POLL_INTERVAL must be positive")
	}
	if c.Pipeline.BatchLimit <= 0 {
		return fmt.Errorf("PIPELINE_BATCH_LIMIT must be positive")
	}
	if c.Pipeline.StagesPerTick < 1 || c.Pipeline.StagesPerTick > 9 {
		return fmt.Errorf("PIPELINE_STAGES_PER_TICK must be between 1 and 9")
	}
	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
