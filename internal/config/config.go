package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port                        int              `json:"port"`
	JWTSecret                   string           `json:"jwt_secret"`
	VerificationSecret          string           `json:"verification_secret"`
	AccessTokenTTLHours         int              `json:"access_token_ttl_hours"`
	VerificationTokenTTLMinutes int              `json:"verification_token_ttl_minutes"`
	VerificationCooldownSeconds int              `json:"verification_cooldown_seconds"`
	BcryptCost                  int              `json:"bcrypt_cost"`
	FrontendURL                 string           `json:"frontend_url"`
	CORSOrigins                 []string         `json:"cors_origins"`
	GuestRateLimitSeconds       int              `json:"guest_rate_limit_seconds"`
	UploadMaxBytes              int64            `json:"upload_max_bytes"`
	LogConfig                   logger.LogConfig `json:"log_config"`
	Cookie                      CookieConfig     `json:"cookie"`
	Store                       StoreConfig      `json:"store"`
	Mail                        MailConfig       `json:"mail"`
	FileStore                   FileStoreConfig  `json:"file_store"`
	Inference                   InferenceConfig  `json:"inference"`
}

type CookieConfig struct {
	Domain   string `json:"domain"`
	Secure   bool   `json:"secure"`
	SameSite string `json:"same_site"`
}

type StoreConfig struct {
	Type           string         `json:"type"`
	TimeoutSeconds int            `json:"timeout_seconds"`
	Postgres       PostgresConfig `json:"postgres"`
	Mongo          MongoConfig    `json:"mongo"`
}

type PostgresConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type MongoConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

type MailConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	From           string `json:"from"`
	FromName       string `json:"from_name"`
	SSLTLS         bool   `json:"ssl_tls"`
	Async          bool   `json:"async"`
	Workers        int    `json:"workers"`
	QueueSize      int    `json:"queue_size"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type InferenceConfig struct {
	Provider       string      `json:"provider"`
	Model          string      `json:"model"`
	TimeoutSeconds int         `json:"timeout_seconds"`
	Data           interface{} `json:"data"`
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLHours) * time.Hour
}

func (c *Config) VerificationTokenTTL() time.Duration {
	return time.Duration(c.VerificationTokenTTLMinutes) * time.Minute
}

func (c *Config) VerificationCooldown() time.Duration {
	return time.Duration(c.VerificationCooldownSeconds) * time.Second
}

func (c StoreConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c MailConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c InferenceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyEnv(&cfg)
	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv lets deployment secrets come from the environment (or a .env file
// loaded beforehand) instead of the config file.
func applyEnv(cfg *Config) {
	for name, dst := range map[string]*string{
		"JWT_SECRET_KEY":          &cfg.JWTSecret,
		"VERIFICATION_SECRET_KEY": &cfg.VerificationSecret,
		"DATABASE_DSN":            &cfg.Store.Postgres.DSN,
		"MONGO_URI":               &cfg.Store.Mongo.URI,
		"MAIL_USERNAME":           &cfg.Mail.Username,
		"MAIL_PASSWORD":           &cfg.Mail.Password,
		"FRONTEND_URL":            &cfg.FrontendURL,
	} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}
}

func normalize(cfg *Config) error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if cfg.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if cfg.FrontendURL == "" {
		return fmt.Errorf("frontend_url is required")
	}
	cfg.FrontendURL = strings.TrimSuffix(cfg.FrontendURL, "/")
	if cfg.AccessTokenTTLHours == 0 {
		cfg.AccessTokenTTLHours = 72
	}
	if cfg.VerificationTokenTTLMinutes == 0 {
		cfg.VerificationTokenTTLMinutes = 30
	}
	if cfg.VerificationCooldownSeconds == 0 {
		cfg.VerificationCooldownSeconds = 60
	}
	if cfg.GuestRateLimitSeconds == 0 {
		cfg.GuestRateLimitSeconds = 2
	}
	if cfg.UploadMaxBytes == 0 {
		cfg.UploadMaxBytes = 10 * 1024 * 1024
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	switch strings.ToLower(cfg.Cookie.SameSite) {
	case "", "lax", "strict", "none":
	default:
		return fmt.Errorf("cookie.same_site must be lax, strict or none")
	}
	if err := normalizeStore(&cfg.Store); err != nil {
		return err
	}
	if err := normalizeMail(&cfg.Mail); err != nil {
		return err
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	if cfg.Inference.Provider == "" {
		return fmt.Errorf("inference.provider is required")
	}
	if cfg.Inference.TimeoutSeconds == 0 {
		cfg.Inference.TimeoutSeconds = 30
	}
	return nil
}

func normalizeStore(cfg *StoreConfig) error {
	if cfg.Type == "" {
		cfg.Type = "postgres"
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = 5
	}
	switch cfg.Type {
	case "postgres":
		if cfg.Postgres.DSN == "" && cfg.Postgres.Host == "" {
			return fmt.Errorf("store.postgres dsn or host is required")
		}
		if cfg.Postgres.Port == 0 {
			cfg.Postgres.Port = 5432
		}
	case "mongo":
		if cfg.Mongo.URI == "" {
			return fmt.Errorf("store.mongo.uri is required")
		}
		if cfg.Mongo.Database == "" {
			cfg.Mongo.Database = "derma_ai"
		}
	case "memory":
	default:
		return fmt.Errorf("store.type must be postgres, mongo or memory")
	}
	return nil
}

func normalizeMail(cfg *MailConfig) error {
	if cfg.Host == "" || cfg.Port == 0 || cfg.From == "" {
		return fmt.Errorf("mail host/port/from are required")
	}
	if cfg.FromName == "" {
		cfg.FromName = "DermaAI"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = 10
	}
	return nil
}
