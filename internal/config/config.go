package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	FanoutDriverRabbitMQ = "rabbitmq"
	FanoutDriverSQS      = "sqs"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	HTTP     HTTPConfig     `yaml:"http"`
	Fanout   FanoutConfig   `yaml:"fanout"`
	Log      LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
	Prefetch int    `yaml:"prefetch"`
}

type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// FanoutConfig selects the transport of the item-cancellation channel.
type FanoutConfig struct {
	Driver   string `yaml:"driver"`
	Topic    string `yaml:"topic"`
	QueueURL string `yaml:"queue_url"`
	Region   string `yaml:"region"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads the YAML file at path, applies defaults and environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "servio",
			Database: "servio",
			SSLMode:  "disable",
			MaxConns: 10,
		},
		RabbitMQ: RabbitMQConfig{
			Host:     "localhost",
			Port:     5672,
			User:     "guest",
			Password: "guest",
			VHost:    "/",
			Prefetch: 10,
		},
		HTTP: HTTPConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Fanout: FanoutConfig{
			Driver: FanoutDriverRabbitMQ,
			Topic:  "order_item_cancel",
		},
		Log: LogConfig{Level: "info"},
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Database.Host, "SERVIO_DB_HOST")
	setInt(&cfg.Database.Port, "SERVIO_DB_PORT")
	setString(&cfg.Database.User, "SERVIO_DB_USER")
	setString(&cfg.Database.Password, "SERVIO_DB_PASSWORD")
	setString(&cfg.Database.Database, "SERVIO_DB_NAME")
	setString(&cfg.RabbitMQ.Host, "SERVIO_RABBITMQ_HOST")
	setString(&cfg.RabbitMQ.User, "SERVIO_RABBITMQ_USER")
	setString(&cfg.RabbitMQ.Password, "SERVIO_RABBITMQ_PASSWORD")
	setInt(&cfg.HTTP.Port, "SERVIO_HTTP_PORT")
	setString(&cfg.Fanout.Driver, "SERVIO_FANOUT_DRIVER")
	setString(&cfg.Fanout.QueueURL, "SERVIO_SQS_QUEUE_URL")
	setString(&cfg.Fanout.Region, "AWS_REGION")
	setString(&cfg.Log.Level, "SERVIO_LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (c *Config) Validate() error {
	switch c.Fanout.Driver {
	case FanoutDriverRabbitMQ:
	case FanoutDriverSQS:
		if c.Fanout.QueueURL == "" {
			return fmt.Errorf("fanout.queue_url is required for the %s driver", FanoutDriverSQS)
		}
	default:
		return fmt.Errorf("unknown fanout driver %q", c.Fanout.Driver)
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.HTTP.Port)
	}
	return nil
}

// DSN renders the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode, d.MaxConns)
}

// URL renders the AMQP connection URL.
func (r RabbitMQConfig) URL() string {
	vhost := r.VHost
	if vhost == "/" || vhost == "" {
		vhost = ""
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%d/%s", r.User, r.Password, r.Host, r.Port, vhost)
}
