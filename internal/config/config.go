// Package config binds the environment/config-file keys of spec §6 via
// viper, exactly as the teacher wires its own configuration. Platform:Mode
// is the sole backend selector: "Dev" resolves the local filesystem triad
// (object store, job store, message bus), "Prod" resolves the cloud triad
// (minio, postgres, asynq/redis). Binding happens once at process start;
// there is no runtime switching (spec §9).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Mode selects the backend implementation set.
type Mode string

const (
	ModeDev  Mode = "Dev"
	ModeProd Mode = "Prod"
)

// FileSystemStorageOptions configures the local object store (C1 local impl).
type FileSystemStorageOptions struct {
	RootPath string
}

// FileQueueOptions configures the local message bus (C3 local impl).
type FileQueueOptions struct {
	RootPath     string
	PollInterval time.Duration
}

// MinioOptions configures the cloud object store (C1 cloud impl).
type MinioOptions struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string
}

// AsynqOptions configures the cloud message bus (C3 cloud impl).
type AsynqOptions struct {
	RedisAddr string
	RedisDB   int
	MaxRetry  int
}

// PostgresOptions configures the cloud job status store (C2 cloud impl).
type PostgresOptions struct {
	DSN string
}

// GatewayOptions configures the HTTP surface (C9).
type GatewayOptions struct {
	BaseURL       string
	APIKey        string
	ListenAddr    string
	MaxUploadSize int64
}

// Config is the fully-resolved process configuration.
type Config struct {
	Mode     Mode
	Local    FileSystemStorageOptions
	Queue    FileQueueOptions
	Minio    MinioOptions
	Asynq    AsynqOptions
	Postgres PostgresOptions
	Gateway  GatewayOptions
}

// Load reads environment variables into a fresh viper instance and returns
// a validated Config. No config file is read.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(":", "_"))
	v.AutomaticEnv()

	v.SetDefault("Platform:Mode", string(ModeDev))
	v.SetDefault("Azure:Storage:ContainerName", "dtce-documents")
	v.SetDefault("Storage:RootPath", "./data/objects")
	v.SetDefault("Messaging:RootPath", "./data/queues")
	v.SetDefault("Messaging:PollInterval", 250*time.Millisecond)
	v.SetDefault("Cloud:Redis:DB", 0)
	v.SetDefault("Cloud:Asynq:MaxRetry", 25)
	v.SetDefault("Gateway:ListenAddr", ":8080")
	v.SetDefault("Gateway:BaseURL", "http://localhost:8080")
	v.SetDefault("Gateway:MaxUploadSize", int64(50*1024*1024))

	cfg := &Config{
		Mode: Mode(v.GetString("Platform:Mode")),
		Local: FileSystemStorageOptions{
			RootPath: v.GetString("Storage:RootPath"),
		},
		Queue: FileQueueOptions{
			RootPath:     v.GetString("Messaging:RootPath"),
			PollInterval: v.GetDuration("Messaging:PollInterval"),
		},
		Minio: MinioOptions{
			Endpoint:        v.GetString("Cloud:Minio:Endpoint"),
			AccessKeyID:     v.GetString("Cloud:Minio:AccessKeyID"),
			SecretAccessKey: v.GetString("Cloud:Minio:SecretAccessKey"),
			UseSSL:          v.GetBool("Cloud:Minio:UseSSL"),
			BucketName:      v.GetString("Azure:Storage:ContainerName"),
		},
		Asynq: AsynqOptions{
			RedisAddr: v.GetString("Cloud:Redis:Addr"),
			RedisDB:   v.GetInt("Cloud:Redis:DB"),
			MaxRetry:  v.GetInt("Cloud:Asynq:MaxRetry"),
		},
		Postgres: PostgresOptions{
			DSN: v.GetString("Cloud:Postgres:DSN"),
		},
		Gateway: GatewayOptions{
			BaseURL:       v.GetString("Gateway:BaseURL"),
			APIKey:        v.GetString("Gateway:APIKey"),
			ListenAddr:    v.GetString("Gateway:ListenAddr"),
			MaxUploadSize: v.GetInt64("Gateway:MaxUploadSize"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeDev:
		if c.Local.RootPath == "" {
			return fmt.Errorf("config: Storage:RootPath is required in Dev mode")
		}
		if c.Queue.RootPath == "" {
			return fmt.Errorf("config: Messaging:RootPath is required in Dev mode")
		}
	case ModeProd:
		if c.Asynq.RedisAddr == "" {
			return fmt.Errorf("config: Azure:ServiceBus:ConnectionString (Cloud:Redis:Addr) is required in Prod mode")
		}
		if c.Minio.Endpoint == "" {
			return fmt.Errorf("config: Azure:Storage:ConnectionString (Cloud:Minio:Endpoint) is required in Prod mode")
		}
		if c.Postgres.DSN == "" {
			return fmt.Errorf("config: Cloud:Postgres:DSN is required in Prod mode")
		}
	default:
		return fmt.Errorf("config: Platform:Mode must be Dev or Prod, got %q", c.Mode)
	}
	return nil
}
