package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

type Config struct {
	Env       string          `yaml:"env"`
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Auth      AuthConfig      `yaml:"auth"`
	Stream    StreamConfig    `yaml:"stream"`
	Storage   StorageConfig   `yaml:"storage"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	CORSOrigins  []string      `yaml:"cors_origins"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type AuthConfig struct {
	JWTSecret         string        `yaml:"jwt_secret"`
	JWTTTL            time.Duration `yaml:"jwt_ttl"`
	BcryptCost        int           `yaml:"bcrypt_cost"`
	MinPasswordLength int           `yaml:"min_password_length"`
}

// StreamConfig drives signed stream URL issuance.
type StreamConfig struct {
	BaseURL string        `yaml:"base_url"`
	URLTTL  time.Duration `yaml:"url_ttl"`
}

type StorageConfig struct {
	Driver         string   `yaml:"driver"`
	Dir            string   `yaml:"dir"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
	S3             S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type RateLimitConfig struct {
	Disabled bool        `yaml:"disabled"`
	General  LimitConfig `yaml:"general"`
	Auth     LimitConfig `yaml:"auth"`
	Upload   LimitConfig `yaml:"upload"`
}

type LimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

func Default() Config {
	return Config{
		Env: "dev",
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
			CORSOrigins:  []string{"*"},
		},
		Log: LogConfig{Level: "info"},
		Auth: AuthConfig{
			JWTTTL:            24 * time.Hour,
			BcryptCost:        12,
			MinPasswordLength: 6,
		},
		Stream: StreamConfig{
			BaseURL: "http://localhost:8080",
			URLTTL:  10 * time.Minute,
		},
		Storage: StorageConfig{
			Driver:         StorageLocal,
			Dir:            "uploads/media",
			MaxUploadBytes: 500 << 20,
			S3: S3Config{
				Endpoint: "localhost:9000",
				Bucket:   "mediavault",
			},
		},
		RateLimit: RateLimitConfig{
			General: LimitConfig{Requests: 100, Window: 15 * time.Minute},
			Auth:    LimitConfig{Requests: 5, Window: 15 * time.Minute},
			Upload:  LimitConfig{Requests: 10, Window: time.Hour},
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth.jwt_secret is not set")
	}
	if c.Auth.JWTTTL <= 0 {
		return fmt.Errorf("auth.jwt_ttl must be > 0 (got %s)", c.Auth.JWTTTL)
	}
	if c.Stream.URLTTL <= 0 {
		return fmt.Errorf("stream.url_ttl must be > 0 (got %s)", c.Stream.URLTTL)
	}
	if strings.TrimSpace(c.Stream.BaseURL) == "" {
		return errors.New("stream.base_url is not set")
	}
	switch c.Storage.Driver {
	case StorageLocal:
		if c.Storage.Dir == "" {
			return errors.New("storage.dir is not set")
		}
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			return errors.New("storage.s3.bucket is not set")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("storage.max_upload_bytes must be > 0 (got %d)", c.Storage.MaxUploadBytes)
	}
	return nil
}

func loadFromYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("unmarshal config yaml: %w", err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}

	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	} else if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Addr = ":" + v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}

	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	} else if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if err := overrideDuration("JWT_TTL", &cfg.Auth.JWTTTL); err != nil {
		return err
	}
	if err := overrideInt("BCRYPT_COST", &cfg.Auth.BcryptCost); err != nil {
		return err
	}

	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.Stream.BaseURL = v
	}
	if err := overrideDuration("STREAM_URL_TTL", &cfg.Stream.URLTTL); err != nil {
		return err
	}

	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("STORAGE_DIR"); v != "" {
		cfg.Storage.Dir = v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		cfg.Storage.S3.AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		cfg.Storage.S3.SecretKey = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if err := overrideBool("S3_USE_SSL", &cfg.Storage.S3.UseSSL); err != nil {
		return err
	}

	if err := overrideBool("RATE_LIMIT_DISABLED", &cfg.RateLimit.Disabled); err != nil {
		return err
	}

	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func overrideDuration(key string, target *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s duration: %w", key, err)
	}
	*target = d
	return nil
}

func overrideInt(key string, target *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s int: %w", key, err)
	}
	*target = n
	return nil
}

func overrideBool(key string, target *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("parse %s bool: %w", key, err)
	}
	*target = b
	return nil
}
