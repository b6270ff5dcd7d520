package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Auth      AuthConfig
	S3        S3Config
	Log       LogConfig
	CORS      CORSConfig
	Assistant AssistantConfig
	Import    ImportConfig
}

// ImportConfig holds import pipeline settings.
type ImportConfig struct {
	Strict        bool  `mapstructure:"strict"`
	CacheSize     int   `mapstructure:"cache_size"`
	MaxInputBytes int64 `mapstructure:"max_input_bytes"`
	ArchiveRaw    bool  `mapstructure:"archive_raw"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AssistantProviderConfig holds settings for a single research assistant provider.
type AssistantProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// AssistantConfig holds the ordered research assistant providers used for drafts.
type AssistantConfig struct {
	Primary   AssistantProviderConfig `mapstructure:"primary"`
	Secondary AssistantProviderConfig `mapstructure:"secondary"`
}

// Providers returns the configured providers in fallback order, skipping empty slots.
func (a *AssistantConfig) Providers() []*AssistantProviderConfig {
	var out []*AssistantProviderConfig
	if a.Primary.Provider != "" {
		out = append(out, &a.Primary)
	}
	if a.Secondary.Provider != "" {
		out = append(out, &a.Secondary)
	}
	return out
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds dossier store connection settings.
type DBConfig struct {
	Driver     string `mapstructure:"driver"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	Name       string `mapstructure:"name"`
	SSLMode    string `mapstructure:"sslmode"`
	MaxOpen    int    `mapstructure:"max_open"`
	MaxIdle    int    `mapstructure:"max_idle"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// S3Config holds settings for the raw import archive bucket.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the TERROIR_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TERROIR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "terroir")
	v.SetDefault("db.password", "terroir_secret")
	v.SetDefault("db.name", "terroir_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)
	v.SetDefault("db.sqlite_path", "terroir.db")

	v.SetDefault("auth.secret", "change-me-in-production")
	v.SetDefault("auth.issuer", "terroir")

	v.SetDefault("s3.region", "eu-west-3")
	v.SetDefault("s3.bucket", "terroir-imports")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.prefix", "imports")

	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	v.SetDefault("assistant.primary.provider", "")
	v.SetDefault("assistant.primary.api_key", "")
	v.SetDefault("assistant.primary.default_model", "")
	v.SetDefault("assistant.primary.timeout_secs", 120)
	v.SetDefault("assistant.secondary.provider", "")
	v.SetDefault("assistant.secondary.api_key", "")
	v.SetDefault("assistant.secondary.default_model", "")
	v.SetDefault("assistant.secondary.timeout_secs", 120)

	v.SetDefault("import.strict", false)
	v.SetDefault("import.cache_size", 128)
	v.SetDefault("import.max_input_bytes", 2<<20)
	v.SetDefault("import.archive_raw", false)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                       "TERROIR_SERVER_PORT",
		"server.read_timeout":               "TERROIR_SERVER_READ_TIMEOUT",
		"server.write_timeout":              "TERROIR_SERVER_WRITE_TIMEOUT",
		"server.environment":                "TERROIR_SERVER_ENVIRONMENT",
		"db.driver":                         "TERROIR_DB_DRIVER",
		"db.host":                           "TERROIR_DB_HOST",
		"db.port":                           "TERROIR_DB_PORT",
		"db.user":                           "TERROIR_DB_USER",
		"db.password":                       "TERROIR_DB_PASSWORD",
		"db.name":                           "TERROIR_DB_NAME",
		"db.sslmode":                        "TERROIR_DB_SSLMODE",
		"db.max_open":                       "TERROIR_DB_MAX_OPEN",
		"db.max_idle":                       "TERROIR_DB_MAX_IDLE",
		"db.sqlite_path":                    "TERROIR_DB_SQLITE_PATH",
		"auth.secret":                       "TERROIR_AUTH_SECRET",
		"auth.issuer":                       "TERROIR_AUTH_ISSUER",
		"s3.region":                         "TERROIR_S3_REGION",
		"s3.bucket":                         "TERROIR_S3_BUCKET",
		"s3.endpoint":                       "TERROIR_S3_ENDPOINT",
		"s3.access_key":                     "TERROIR_S3_ACCESS_KEY",
		"s3.secret_key":                     "TERROIR_S3_SECRET_KEY",
		"s3.prefix":                         "TERROIR_S3_PREFIX",
		"log.level":                         "TERROIR_LOG_LEVEL",
		"log.format":                        "TERROIR_LOG_FORMAT",
		"cors.allowed_origins":              "TERROIR_CORS_ALLOWED_ORIGINS",
		"assistant.primary.provider":        "TERROIR_ASSISTANT_PRIMARY_PROVIDER",
		"assistant.primary.api_key":         "TERROIR_ASSISTANT_PRIMARY_API_KEY",
		"assistant.primary.default_model":   "TERROIR_ASSISTANT_PRIMARY_DEFAULT_MODEL",
		"assistant.primary.timeout_secs":    "TERROIR_ASSISTANT_PRIMARY_TIMEOUT_SECS",
		"assistant.secondary.provider":      "TERROIR_ASSISTANT_SECONDARY_PROVIDER",
		"assistant.secondary.api_key":       "TERROIR_ASSISTANT_SECONDARY_API_KEY",
		"assistant.secondary.default_model": "TERROIR_ASSISTANT_SECONDARY_DEFAULT_MODEL",
		"assistant.secondary.timeout_secs":  "TERROIR_ASSISTANT_SECONDARY_TIMEOUT_SECS",
		"import.strict":                     "TERROIR_IMPORT_STRICT",
		"import.cache_size":                 "TERROIR_IMPORT_CACHE_SIZE",
		"import.max_input_bytes":            "TERROIR_IMPORT_MAX_INPUT_BYTES",
		"import.archive_raw":                "TERROIR_IMPORT_ARCHIVE_RAW",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if TERROIR_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TERROIR_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Driver:     v.GetString("db.driver"),
		Host:       v.GetString("db.host"),
		Port:       v.GetInt("db.port"),
		User:       v.GetString("db.user"),
		Password:   v.GetString("db.password"),
		Name:       v.GetString("db.name"),
		SSLMode:    v.GetString("db.sslmode"),
		MaxOpen:    v.GetInt("db.max_open"),
		MaxIdle:    v.GetInt("db.max_idle"),
		SQLitePath: v.GetString("db.sqlite_path"),
	}
	cfg.Auth = AuthConfig{
		Secret: v.GetString("auth.secret"),
		Issuer: v.GetString("auth.issuer"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
		Prefix:    v.GetString("s3.prefix"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}
	cfg.Assistant = AssistantConfig{
		Primary: AssistantProviderConfig{
			Provider:     v.GetString("assistant.primary.provider"),
			APIKey:       v.GetString("assistant.primary.api_key"),
			DefaultModel: v.GetString("assistant.primary.default_model"),
			TimeoutSecs:  v.GetInt("assistant.primary.timeout_secs"),
		},
		Secondary: AssistantProviderConfig{
			Provider:     v.GetString("assistant.secondary.provider"),
			APIKey:       v.GetString("assistant.secondary.api_key"),
			DefaultModel: v.GetString("assistant.secondary.default_model"),
			TimeoutSecs:  v.GetInt("assistant.secondary.timeout_secs"),
		},
	}
	cfg.Import = ImportConfig{
		Strict:        v.GetBool("import.strict"),
		CacheSize:     v.GetInt("import.cache_size"),
		MaxInputBytes: v.GetInt64("import.max_input_bytes"),
		ArchiveRaw:    v.GetBool("import.archive_raw"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported db driver %q", c.DB.Driver)
	}
	if c.Server.Environment == "production" && c.Auth.Secret == "change-me-in-production" {
		return fmt.Errorf("config: TERROIR_AUTH_SECRET must be set in production")
	}
	return nil
}
