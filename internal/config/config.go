package config

import (
	"bytes"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppCfg struct {
	Name string
	Env  string
	Host string
	Port int
}

type LogCfg struct {
	Level string
}

type DBCfg struct {
	DSN         string
	MaxOpen     int
	MaxIdle     int
	AutoMigrate bool
}

type RedisCfg struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

type MQCfg struct {
	URL      string
	Queue    string
	Prefetch int
}

type S3Cfg struct {
	Endpoint         string
	Region           string
	AccessKey        string
	SecretKey        string
	Bucket           string
	PublicBaseURL    string
	UsePathStyle     bool
	PresignExpireSec int
	SSE              string
}

// AuthCfg verifies session tokens issued by the identity store.
type AuthCfg struct {
	JWTSecret string
	JWTIssuer string
}

type ReviewCfg struct {
	BaseURL        string
	Path           string
	TokenPrefix    string
	TokenPepper    string
	SnapshotTTLSec int
}

type RateLimitCfg struct {
	RPS   int
	Burst int
}

type WebhookCfg struct {
	URL        string
	TimeoutSec int
}

type TelemetryCfg struct {
	Enabled      bool
	OtlpEndpoint string
	SampleRatio  float64
}

type Config struct {
	App       AppCfg
	Log       LogCfg
	Database  DBCfg
	Redis     RedisCfg
	RabbitMQ  MQCfg
	S3        S3Cfg
	Auth      AuthCfg
	Review    ReviewCfg
	RateLimit RateLimitCfg
	Webhook   WebhookCfg
	Telemetry TelemetryCfg
}

// SnapshotTTL bounds how stale a cached review projection may be.
func (c *Config) SnapshotTTL() time.Duration {
	if c.Review.SnapshotTTLSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Review.SnapshotTTLSec) * time.Second
}

func (c *Config) PresignExpire() time.Duration {
	if c.S3.PresignExpireSec <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.S3.PresignExpireSec) * time.Second
}

func Load() (*Config, error) {
	// .env is optional; real env vars always win
	_ = godotenv.Load()

	base := viper.New()
	base.SetConfigName("config")
	base.SetConfigType("yaml")
	base.AddConfigPath("./configs")
	base.AddConfigPath(".")
	base.AutomaticEnv()
	base.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	base.SetEnvPrefix("APP") // e.g. APP_APP_PORT -> app.port

	// First assign a default value (effective regardless of whether there is a file or not)
	setDefaults(base)

	if err := base.ReadInConfig(); err == nil {
		// After finding the file, manually perform one expansion of ${ENV}, and then parse it.
		path := base.ConfigFileUsed()
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		expanded := os.ExpandEnv(string(raw))

		v := viper.New()
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, err
		}
		v.AutomaticEnv()
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.SetEnvPrefix("APP")
		setDefaults(v)

		cfg := new(Config)
		if err := v.Unmarshal(&cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	// No files are also allowed, using only env + default values
	cfg := new(Config)
	if err := base.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "signoff")
	v.SetDefault("app.env", "debug")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("database.maxOpen", 20)
	v.SetDefault("database.maxIdle", 5)
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("rabbitmq.queue", "project_changes")
	v.SetDefault("rabbitmq.prefetch", 10)
	v.SetDefault("s3.region", "auto")
	v.SetDefault("s3.bucket", "assets")
	v.SetDefault("s3.usePathStyle", true)
	v.SetDefault("s3.presignExpireSec", 900)
	v.SetDefault("review.baseURL", "http://localhost:3000")
	v.SetDefault("review.path", "client-review")
	v.SetDefault("review.tokenPrefix", "rv_")
	v.SetDefault("review.snapshotTTLSec", 30)
	v.SetDefault("rateLimit.rps", 5)
	v.SetDefault("rateLimit.burst", 20)
	v.SetDefault("webhook.timeoutSec", 10)
	v.SetDefault("telemetry.sampleRatio", 1.0)

	// registered so AutomaticEnv can see them during Unmarshal
	for _, k := range []string{
		"database.dsn", "redis.addr", "redis.password", "rabbitmq.url",
		"s3.endpoint", "s3.accessKey", "s3.secretKey", "s3.publicBaseURL",
		"auth.jwtSecret", "auth.jwtIssuer", "review.tokenPepper", "webhook.url",
		"telemetry.otlpEndpoint",
	} {
		v.SetDefault(k, "")
	}
	v.SetDefault("database.autoMigrate", false)
	v.SetDefault("telemetry.enabled", false)
}
