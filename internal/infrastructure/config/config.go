package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/bibbank/mortgage-advisor/pkg/auth"
	"github.com/bibbank/mortgage-advisor/pkg/kafka"
	"github.com/bibbank/mortgage-advisor/pkg/postgres"
)

// EnvPrefix namespaces environment overrides: server.grpc_port is read from
// ADVISOR_SERVER_GRPC_PORT.
const EnvPrefix = "ADVISOR"

type ServerConfig struct {
	GRPCPort        int           `mapstructure:"grpc_port"`
	HTTPPort        int           `mapstructure:"http_port"`
	Reflection      bool          `mapstructure:"reflection"`
	TLSCertFile     string        `mapstructure:"tls_cert_file"`
	TLSKeyFile      string        `mapstructure:"tls_key_file"`
	TLSClientCAFile string        `mapstructure:"tls_client_ca_file"`
	// TLSDevCertDir serves TLS with a throwaway CA and certificate written to
	// this directory on start-up. Local development only.
	TLSDevCertDir   string        `mapstructure:"tls_dev_cert_dir"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MigrateOnStart  bool          `mapstructure:"migrate_on_start"`
}

type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	ConsumerGroup string   `mapstructure:"consumer_group"`
	TLS           bool     `mapstructure:"tls"`
	SASLEnabled   bool     `mapstructure:"sasl_enabled"`
	SASLMechanism string   `mapstructure:"sasl_mechanism"`
	SASLUsername  string   `mapstructure:"sasl_username"`
	SASLPassword  string   `mapstructure:"sasl_password"`
	// AutoRecommend starts a consumer that generates recommendations for
	// every submitted application.
	AutoRecommend bool `mapstructure:"auto_recommend"`
	// HandlerAttempts bounds how often a consumed message is retried before
	// it is left uncommitted.
	HandlerAttempts int           `mapstructure:"handler_attempts"`
	HandlerBackoff  time.Duration `mapstructure:"handler_backoff"`
}

type RedisConfig struct {
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type CatalogConfig struct {
	Path        string        `mapstructure:"path"`
	Schedule    string        `mapstructure:"schedule"`
	SyncOnStart bool          `mapstructure:"sync_on_start"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

type EngineConfig struct {
	TopN    int `mapstructure:"top_n"`
	Workers int `mapstructure:"workers"`
}

type OutboxConfig struct {
	Schedule  string `mapstructure:"schedule"`
	BatchSize int    `mapstructure:"batch_size"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type JWTConfig struct {
	Secret        string        `mapstructure:"secret"`
	PublicKeyFile string        `mapstructure:"public_key_file"`
	Issuer        string        `mapstructure:"issuer"`
	Audience      string        `mapstructure:"audience"`
	Leeway        time.Duration `mapstructure:"leeway"`
}

type Config struct {
	ServiceName string         `mapstructure:"service_name"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Kafka       KafkaConfig    `mapstructure:"kafka"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Catalog     CatalogConfig  `mapstructure:"catalog"`
	Engine      EngineConfig   `mapstructure:"engine"`
	Outbox      OutboxConfig   `mapstructure:"outbox"`
	Log         LogConfig      `mapstructure:"log"`
	Tracing     TracingConfig  `mapstructure:"tracing"`
	JWT         JWTConfig      `mapstructure:"jwt"`
}

var defaults = map[string]any{
	"service_name": "mortgage-advisor",

	"server.grpc_port":          9095,
	"server.http_port":          8095,
	"server.reflection":         false,
	"server.tls_cert_file":      "",
	"server.tls_key_file":       "",
	"server.tls_client_ca_file": "",
	"server.tls_dev_cert_dir":   "",
	"server.shutdown_timeout":   "15s",

	"database.host":              "localhost",
	"database.port":              5432,
	"database.user":              "advisor",
	"database.password":          "",
	"database.name":              "mortgage_advisor",
	"database.sslmode":           "require",
	"database.max_conns":         10,
	"database.min_conns":         2,
	"database.connect_timeout":   "5s",
	"database.max_conn_lifetime": "1h",
	"database.migrate_on_start":  true,

	"kafka.brokers":          []string{"localhost:9092"},
	"kafka.consumer_group":   "mortgage-advisor",
	"kafka.tls":              false,
	"kafka.sasl_enabled":     false,
	"kafka.sasl_mechanism":   "",
	"kafka.sasl_username":    "",
	"kafka.sasl_password":    "",
	"kafka.auto_recommend":   false,
	"kafka.handler_attempts": 3,
	"kafka.handler_backoff":  "500ms",

	"redis.address":    "localhost:6379",
	"redis.password":   "",
	"redis.db":         0,
	"redis.key_prefix": "advisor:",

	"catalog.path":          "configs/catalog.yaml",
	"catalog.schedule":      "0 */15 * * * *",
	"catalog.sync_on_start": true,
	"catalog.cache_ttl":     "10m",

	"engine.top_n":   5,
	"engine.workers": 4,

	"outbox.schedule":   "*/5 * * * * *",
	"outbox.batch_size": 100,

	"log.level":  "info",
	"log.format": "json",

	"tracing.endpoint":     "",
	"tracing.insecure":     true,
	"tracing.sample_ratio": 1.0,

	"jwt.secret":          "",
	"jwt.public_key_file": "",
	"jwt.issuer":          "bib",
	"jwt.audience":        "",
	"jwt.leeway":          "30s",
}

// Load reads .env, then configs/config.yaml (if present), then ADVISOR_*
// environment variables, in increasing precedence.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path := os.Getenv(EnvPrefix + "_CONFIG_DIR"); path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up to the module root.
// A missing file is not an error.
func loadEnvFile() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Server.GRPCPort <= 0 || c.Server.HTTPPort <= 0 {
		errs = append(errs, errors.New("server ports must be positive"))
	}
	if (c.Server.TLSCertFile == "") != (c.Server.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.tls_cert_file and server.tls_key_file must be set together"))
	}
	if c.Server.TLSDevCertDir != "" && c.Server.TLSCertFile != "" {
		errs = append(errs, errors.New("server.tls_dev_cert_dir cannot be combined with server.tls_cert_file"))
	}
	if c.Database.Password == "" {
		errs = append(errs, errors.New("database.password is required"))
	}
	if c.Catalog.Path == "" {
		errs = append(errs, errors.New("catalog.path is required"))
	}
	if c.Engine.TopN <= 0 {
		errs = append(errs, errors.New("engine.top_n must be positive"))
	}
	if c.Engine.Workers <= 0 {
		errs = append(errs, errors.New("engine.workers must be positive"))
	}
	if err := c.KafkaConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.JWT.Secret == "" && c.JWT.PublicKeyFile == "" {
		errs = append(errs, errors.New("jwt.secret or jwt.public_key_file is required"))
	}

	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for key, spec := range map[string]string{"catalog.schedule": c.Catalog.Schedule, "outbox.schedule": c.Outbox.Schedule} {
		if spec == "" {
			continue
		}
		if _, err := parser.Parse(spec); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.Server.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.Server.HTTPPort)
}

// PostgresConfig converts the database section for pkg/postgres.
func (c Config) PostgresConfig() postgres.Config {
	return postgres.Config{
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		Database:        c.Database.Name,
		SSLMode:         c.Database.SSLMode,
		MaxConns:        c.Database.MaxConns,
		MinConns:        c.Database.MinConns,
		ConnectTimeout:  c.Database.ConnectTimeout,
		MaxConnLifetime: c.Database.MaxConnLifetime,
	}
}

// KafkaConfig converts the kafka section for pkg/kafka.
func (c Config) KafkaConfig() kafka.Config {
	return kafka.Config{
		Brokers:       c.Kafka.Brokers,
		ConsumerGroup: c.Kafka.ConsumerGroup,
		TLS:           c.Kafka.TLS,
		SASLEnabled:   c.Kafka.SASLEnabled,
		SASLMechanism: c.Kafka.SASLMechanism,
		SASLUsername:  c.Kafka.SASLUsername,
		SASLPassword:  c.Kafka.SASLPassword,
	}
}

// AuthConfig converts the jwt section, reading the public key file when set.
func (c Config) AuthConfig() (auth.JWTConfig, error) {
	cfg := auth.JWTConfig{
		Secret:   c.JWT.Secret,
		Issuer:   c.JWT.Issuer,
		Audience: c.JWT.Audience,
		Leeway:   c.JWT.Leeway,
	}
	if c.JWT.PublicKeyFile != "" {
		pem, err := auth.LoadKeyFromFile(c.JWT.PublicKeyFile)
		if err != nil {
			return auth.JWTConfig{}, fmt.Errorf("load jwt public key: %w", err)
		}
		cfg.PublicKeyPEM = pem
	}
	return cfg, nil
}
