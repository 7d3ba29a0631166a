package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Logger      LoggerConfig   `mapstructure:"logger"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Kafka       KafkaConfig    `mapstructure:"kafka"`
	Payment     PaymentConfig  `mapstructure:"payment"`
	Business    BusinessConfig `mapstructure:"business"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RedisConfig contains the connection settings for the distributed locks
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KafkaConfig contains the broker settings for ledger event delivery
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
}

// PaymentConfig contains the gateway credentials and order policy
type PaymentConfig struct {
	Provider       string        `mapstructure:"provider"`
	BaseURL        string        `mapstructure:"baseUrl"`
	MerchantID     string        `mapstructure:"merchantId"`
	Secret         string        `mapstructure:"secret"`
	NotifyURL      string        `mapstructure:"notifyUrl"`
	MinAmountCents int64         `mapstructure:"minAmountCents"`
	MaxAmountCents int64         `mapstructure:"maxAmountCents"`
	OrderTTL       time.Duration `mapstructure:"orderTtl"` // minutes
	WorkerID       int64         `mapstructure:"workerId"`
}

// BusinessConfig contains ledger policy knobs
type BusinessConfig struct {
	StartingBalanceCents int64         `mapstructure:"startingBalanceCents"`
	OutboxMaxRetry       int           `mapstructure:"outboxMaxRetry"`
	OutboxInterval       time.Duration `mapstructure:"outboxInterval"` // seconds
	OutboxBatchSize      int           `mapstructure:"outboxBatchSize"`
	SweepInterval        time.Duration `mapstructure:"sweepInterval"` // seconds
	SweepBatchSize       int           `mapstructure:"sweepBatchSize"`
}
