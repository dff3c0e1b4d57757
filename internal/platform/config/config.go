package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Cache         CacheConfig         `mapstructure:"cache"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	CORS          CORSConfig          `mapstructure:"cors"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Visits        VisitsConfig        `mapstructure:"visits"`
}

type AppConfig struct {
	Environment string `mapstructure:"environment"`
	ClientURL   string `mapstructure:"client_url"`
}

// IsDevelopment reports whether error details may be echoed to API clients.
func (c AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver string       `mapstructure:"driver"` // sqlite or mongo
	SQLite SQLiteConfig `mapstructure:"sqlite"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
}

type SQLiteConfig struct {
	URL            string `mapstructure:"url"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ConnectRetries uint          `mapstructure:"connect_retries"`
}

type CacheConfig struct {
	OrganizationTTL time.Duration `mapstructure:"organization_ttl"`
}

type JWTConfig struct {
	Secret         string        `mapstructure:"secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	MaxAge         int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Backend         string `mapstructure:"backend"` // memory or redis
	PublicPerMinute int    `mapstructure:"public_per_minute"`
	AuthPerMinute   int    `mapstructure:"auth_per_minute"`
	RedisAddr       string `mapstructure:"redis_addr"`
	RedisPassword   string `mapstructure:"redis_password"`
	RedisDB         int    `mapstructure:"redis_db"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

type NotificationsConfig struct {
	SecurityWebhookURL string        `mapstructure:"security_webhook_url"`
	Secret             string        `mapstructure:"secret"`
	SweepInterval      time.Duration `mapstructure:"sweep_interval"`
	BatchSize          int           `mapstructure:"batch_size"`
}

type VisitsConfig struct {
	DefaultMinVisitMinutes int `mapstructure:"default_min_visit_minutes"`
	CodeAttempts           int `mapstructure:"code_attempts"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.client_url", "http://localhost:3000")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite.url", "file:./data/visitr.db")
	v.SetDefault("database.sqlite.max_connections", 10)
	v.SetDefault("database.mongo.database", "guest-management")
	v.SetDefault("database.mongo.connect_timeout", 10*time.Second)
	v.SetDefault("database.mongo.connect_retries", 5)
	v.SetDefault("cache.organization_ttl", time.Minute)
	v.SetDefault("jwt.access_token_ttl", 7*24*time.Hour)
	v.SetDefault("rate_limit.backend", "memory")
	v.SetDefault("rate_limit.public_per_minute", 60)
	v.SetDefault("rate_limit.auth_per_minute", 20)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("notifications.sweep_interval", time.Minute)
	v.SetDefault("notifications.batch_size", 100)
	v.SetDefault("visits.default_min_visit_minutes", 15)
	v.SetDefault("visits.code_attempts", 10)
}

func Load(path string) (*Config, error) {
	// .env is optional; real environment variables still win.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
