package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvProduction = "production"

	StorageLocal = "local"
	StorageMinio = "minio"
)

type Config struct {
	Env       string              `mapstructure:"env"`
	Server    ServerConfig        `mapstructure:"server"`
	Mongo     MongoConfig         `mapstructure:"mongo"`
	JWT       JWTConfig           `mapstructure:"jwt"`
	CORS      CORSConfig          `mapstructure:"cors"`
	Upload    UploadConfig        `mapstructure:"upload"`
	Storage   StorageConfig       `mapstructure:"storage"`
	Minio     MinioConfig         `mapstructure:"minio"`
	RateLimit RateLimitConfig     `mapstructure:"rate_limit"`
	Redis     RedisConfig         `mapstructure:"redis"`
	Cache     CacheConfig         `mapstructure:"cache"`
	NATS      NATSConfig          `mapstructure:"nats"`
	SMTP      SMTPConfig          `mapstructure:"smtp"`
	Twilio    TwilioConfig        `mapstructure:"twilio"`
	Admin     AdminConfig         `mapstructure:"admin"`
	Metrics   MetricsConfig       `mapstructure:"metrics"`
	Otel      OtelConfig          `mapstructure:"otel"`
	GRPC      GRPCConfig          `mapstructure:"grpc"`
	Log       logger.LoggerConfig `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MongoConfig holds the connection settings for MongoDB.
type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	SocketTimeout  time.Duration `mapstructure:"socket_timeout"`
	MinPoolSize    uint64        `mapstructure:"min_pool_size"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
}

type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	ExpiresIn time.Duration `mapstructure:"expires_in"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type UploadConfig struct {
	Dir             string `mapstructure:"dir"`
	MaxImageSize    int64  `mapstructure:"max_image_size"`
	MaxDocumentSize int64  `mapstructure:"max_document_size"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type RateLimitConfig struct {
	Window time.Duration `mapstructure:"window"`
	Max    int           `mapstructure:"max"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	TTL       time.Duration `mapstructure:"ttl"`
	LocalSize int64         `mapstructure:"local_size"`
}

type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type SMTPConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	SenderEmail string        `mapstructure:"sender_email"`
	SenderName  string        `mapstructure:"sender_name"`
	Encryption  string        `mapstructure:"encryption"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Port != 0 && c.SenderEmail != ""
}

type TwilioConfig struct {
	AccountSID  string `mapstructure:"account_sid"`
	AuthToken   string `mapstructure:"auth_token"`
	PhoneNumber string `mapstructure:"phone_number"`
}

func (c TwilioConfig) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != ""
}

// AdminConfig describes the admin account seeded at startup. Empty means no seeding.
type AdminConfig struct {
	Name     string `mapstructure:"name"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	Phone    string `mapstructure:"phone"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type OtelConfig struct {
	ServiceName          string `mapstructure:"service_name"`
	ExporterOTLPEndpoint string `mapstructure:"exporter_otlp_endpoint"`
}

type GRPCConfig struct {
	HealthPort string `mapstructure:"health_port"`
}

// IsProduction reports whether raw error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("server.port", "5000")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "startup_village")
	v.SetDefault("mongo.connect_timeout", "10s")
	v.SetDefault("mongo.socket_timeout", "45s")
	v.SetDefault("mongo.min_pool_size", 0)
	v.SetDefault("mongo.max_pool_size", 10)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expires_in", "168h")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.max_image_size", 5<<20)
	v.SetDefault("upload.max_document_size", 10<<20)

	v.SetDefault("storage.driver", StorageLocal)
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", "village-uploads")
	v.SetDefault("minio.use_ssl", false)

	v.SetDefault("rate_limit.window", "15m")
	v.SetDefault("rate_limit.max", 100)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.local_size", 1000)

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.connect_timeout", "5s")

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.sender_email", "")
	v.SetDefault("smtp.sender_name", "Startup Village County")
	v.SetDefault("smtp.encryption", "tls")
	v.SetDefault("smtp.timeout", "15s")

	v.SetDefault("twilio.account_sid", "")
	v.SetDefault("twilio.auth_token", "")
	v.SetDefault("twilio.phone_number", "")

	v.SetDefault("admin.name", "Administrator")
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.phone", "")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("otel.service_name", "village-market")
	v.SetDefault("otel.exporter_otlp_endpoint", "")
	v.SetDefault("grpc.health_port", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_file", "stdout")
}

// Load reads configuration from defaults, an optional config file, a .env file
// and the process environment, in increasing priority. Nested keys map to
// environment variables by replacing dots with underscores (mongo.uri -> MONGO_URI).
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// PORT is the conventional name used by hosting platforms.
	_ = v.BindEnv("server.port", "PORT", "SERVER_PORT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.CORS.AllowedOrigins = splitList(cfg.CORS.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations that would start the service without
// required secrets.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.JWT.ExpiresIn <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}
	if c.Mongo.URI == "" || c.Mongo.Database == "" {
		return errors.New("MONGO_URI and MONGO_DATABASE must be set")
	}
	switch c.Storage.Driver {
	case StorageLocal:
		if c.Upload.Dir == "" {
			return errors.New("UPLOAD_DIR must be set for the local storage driver")
		}
	case StorageMinio:
		if c.Minio.Endpoint == "" || c.Minio.AccessKey == "" || c.Minio.SecretKey == "" || c.Minio.Bucket == "" {
			return errors.New("MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY and MINIO_BUCKET must be set for the minio storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Upload.MaxImageSize <= 0 || c.Upload.MaxDocumentSize <= 0 {
		return errors.New("upload size ceilings must be positive")
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}
	if (c.Admin.Email == "") != (c.Admin.Password == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
