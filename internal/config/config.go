package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Remotes    RemotesConfig    `mapstructure:"remotes"`
	Federation FederationConfig `mapstructure:"federation"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Preload    PreloadConfig    `mapstructure:"preload"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Storage    StorageConfig    `mapstructure:"storage"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// CatalogConfig selects and configures the upstream listing/detail API.
type CatalogConfig struct {
	// Source is "pokeapi" or "staging"
	Source      string        `mapstructure:"source"`
	BaseURL     string        `mapstructure:"base_url"`
	StagingPath string        `mapstructure:"staging_path"`
	PageSize    int           `mapstructure:"page_size"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RetryCount  int           `mapstructure:"retry_count"`
	UserAgent   string        `mapstructure:"user_agent"`
}

// FederationConfig controls how remote entries are resolved and fetched.
type FederationConfig struct {
	// Loader is "http" or "storage"
	Loader      string        `mapstructure:"loader"`
	ManifestURL string        `mapstructure:"manifest_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type TelemetryConfig struct {
	// Persist stores load attempts in the database in addition to logging them
	Persist    bool `mapstructure:"persist"`
	BufferSize int  `mapstructure:"buffer_size"`
}

type PreloadConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxBytes int64         `mapstructure:"max_bytes"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres"
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	URL             string        `mapstructure:"url"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the connection string for the configured driver.
// For postgres an explicit URL wins over the discrete fields.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		if c.URL != "" {
			return c.URL
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	}
	return c.Path
}

// StorageConfig configures the S3-compatible mirror of remote bundles.
type StorageConfig struct {
	Type      string `mapstructure:"type"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})

	v.SetDefault("catalog.source", "pokeapi")
	v.SetDefault("catalog.base_url", "https://pokeapi.co/api/v2")
	v.SetDefault("catalog.staging_path", "./data/staging")
	v.SetDefault("catalog.page_size", 12)
	v.SetDefault("catalog.timeout", 15*time.Second)
	v.SetDefault("catalog.retry_count", 2)
	v.SetDefault("catalog.user_agent", "pokedex-host/1.0")

	setRemoteDefaults(v)

	v.SetDefault("federation.loader", "http")
	v.SetDefault("federation.manifest_url", "")
	v.SetDefault("federation.timeout", 10*time.Second)

	v.SetDefault("telemetry.persist", false)
	v.SetDefault("telemetry.buffer_size", 256)

	v.SetDefault("preload.enabled", true)
	v.SetDefault("preload.timeout", 10*time.Second)
	v.SetDefault("preload.max_bytes", 5<<20)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/telemetry.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.bucket", "remotes")
}

// bindEnv binds explicit environment names that do not follow the key path.
func bindEnv(v *viper.Viper) {
	bindRemoteEnv(v)
	v.BindEnv("federation.manifest_url", "MANIFEST_URL")
	v.BindEnv("catalog.base_url", "POKEAPI_BASE_URL")
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("storage.bucket", "STORAGE_BUCKET")
	v.BindEnv("storage.public_url", "STORAGE_PUBLIC_URL")
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case "pokeapi", "staging":
	default:
		return fmt.Errorf("invalid catalog.source %q: want pokeapi or staging", c.Catalog.Source)
	}
	switch c.Federation.Loader {
	case "http", "storage":
	default:
		return fmt.Errorf("invalid federation.loader %q: want http or storage", c.Federation.Loader)
	}
	if c.Catalog.PageSize < 1 {
		return fmt.Errorf("invalid catalog.page_size %d: must be positive", c.Catalog.PageSize)
	}
	for _, r := range c.Remotes.List() {
		if r.BaseURL == "" {
			return fmt.Errorf("remote %s has no base_url", r.Name)
		}
	}
	return nil
}
