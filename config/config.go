package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout_seconds"`
	WriteTimeout int `mapstructure:"write_timeout_seconds"`
	IdleTimeout  int `mapstructure:"idle_timeout_seconds"`

	DBType             string `mapstructure:"db_type"`
	DBHost             string `mapstructure:"db_host"`
	DBPort             int    `mapstructure:"db_port"`
	DBUser             string `mapstructure:"db_user"`
	DBPassword         string `mapstructure:"db_password"`
	DBName             string `mapstructure:"db_name"`
	DBSSLMode          string `mapstructure:"db_sslmode"`
	DBPasswordSSMParam string `mapstructure:"db_password_ssm_param"`
	SQLitePath         string `mapstructure:"sqlite_path"`

	BlobBackend   string `mapstructure:"blob_backend"`
	UploadRoot    string `mapstructure:"upload_root"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	S3Bucket      string `mapstructure:"s3_bucket"`
	S3Region      string `mapstructure:"s3_region"`
	GCSBucket     string `mapstructure:"gcs_bucket"`

	UploadConcurrency int   `mapstructure:"upload_concurrency"`
	MaxUploadBytes    int64 `mapstructure:"max_upload_bytes"`

	AcceptedOrigins string `mapstructure:"accepted_origins"`
	LogLevel        string `mapstructure:"log_level"`
	LogFormat       string `mapstructure:"log_format"`
	ErrorWebhookURL string `mapstructure:"error_webhook_url"`
}

var defaults = map[string]any{
	"port":                  8080,
	"read_timeout_seconds":  15,
	"write_timeout_seconds": 30,
	"idle_timeout_seconds":  60,
	"db_type":               "postgres",
	"db_host":               "localhost",
	"db_port":               5432,
	"db_user":               "postgres",
	"db_password":           "",
	"db_name":               "pustok",
	"db_sslmode":            "disable",
	"db_password_ssm_param": "",
	"sqlite_path":           "pustok.db",
	"blob_backend":          "fs",
	"upload_root":           "uploads",
	"public_base_url":       "",
	"s3_bucket":             "",
	"s3_region":             "",
	"gcs_bucket":            "",
	"upload_concurrency":    4,
	"max_upload_bytes":      32 << 20,
	"accepted_origins":      "",
	"log_level":             "info",
	"log_format":            "json",
	"error_webhook_url":     "",
}

// Load reads .env (if present), then an optional config file, then the
// environment. Environment variables win.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Origins returns the configured CORS origins.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AcceptedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) Timeouts() (read, write, idle time.Duration) {
	return time.Duration(c.ReadTimeout) * time.Second,
		time.Duration(c.WriteTimeout) * time.Second,
		time.Duration(c.IdleTimeout) * time.Second
}

// PostgresDSN builds a keyword/value connection string. Supabase always requires TLS.
func (c *Config) PostgresDSN() string {
	sslmode := c.DBSSLMode
	if c.DBType == "supa" {
		sslmode = "require"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, sslmode)
}

// SSMAPI is the subset of the SSM client used to resolve secrets.
type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ResolveSecrets replaces secrets that are configured as SSM parameter names
// with their decrypted values. A nil client is built from the default AWS chain.
func ResolveSecrets(ctx context.Context, cfg *Config, client SSMAPI) error {
	if cfg.DBPasswordSSMParam == "" {
		return nil
	}
	if client == nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("loading AWS config: %w", err)
		}
		client = ssm.NewFromConfig(awsCfg)
	}

	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(cfg.DBPasswordSSMParam),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("resolving %s: %w", cfg.DBPasswordSSMParam, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return fmt.Errorf("parameter %s has no value", cfg.DBPasswordSSMParam)
	}
	cfg.DBPassword = aws.ToString(out.Parameter.Value)
	return nil
}
