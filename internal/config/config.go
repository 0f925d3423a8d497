package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/aklujeats/aklujeats/internal/models"
)

// DefaultConnectionName is the connection string the relational store binds to
const DefaultConnectionName = "DefaultConnection"

const (
	connectionStringEnvPrefix = "ConnectionStrings__"
	envConfigPath             = "AKLUJEATS_CONFIG_PATH"
	envEnvironment            = "AKLUJEATS_ENVIRONMENT"
	envLogLevel               = "AKLUJEATS_LOG_LEVEL"
	envHTTPSPort              = "AKLUJEATS_HTTPS_PORT"
)

// Config represents the application configuration. It is built once at
// startup and treated as read-only afterwards.
type Config struct {
	Environment       string             `yaml:"environment" validate:"oneof=development staging production"`
	ConnectionStrings map[string]string  `yaml:"connection_strings"`
	SQLDatabase       SQLDatabaseConfig  `yaml:"sql_database"`   // catalog, orders, agents, admins
	NoSQLDatabase     DatabaseConfig     `yaml:"nosql_database"` // optional order event store
	Server            ServerConfig       `yaml:"server"`
	Session           SessionConfig      `yaml:"session"`
	CookiePolicy      CookiePolicyConfig `yaml:"cookie_policy"`
	APIDocs           APIDocsConfig      `yaml:"api_docs"`
	Routing           RoutingConfig      `yaml:"routing"`
	Auth              AuthConfig         `yaml:"auth"`
	Orders            OrdersConfig       `yaml:"orders"`
	Scheduler         SchedulerConfig    `yaml:"scheduler"`
	Logging           LoggingConfig      `yaml:"logging"`
	Metrics           MetricsConfig      `yaml:"metrics"`
}

// SQLDatabaseConfig configures the relational store. The connection string
// itself lives in ConnectionStrings under DefaultConnection.
type SQLDatabaseConfig struct {
	Provider        string        `yaml:"provider" validate:"required,oneof=mysql postgres sqlite3 memory"`
	ServerVersion   string        `yaml:"server_version,omitempty"`
	MaxOpenConns    int           `yaml:"max_open_conns" validate:"min=0"`
	MaxIdleConns    int           `yaml:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" validate:"min=0"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

// DatabaseConfig represents document database configuration
type DatabaseConfig struct {
	Provider string            `yaml:"provider" validate:"omitempty,oneof=mongodb"` // "" stores events in SQL
	URI      string            `yaml:"uri,omitempty"`
	Database string            `yaml:"database,omitempty"`
	Options  map[string]string `yaml:"options,omitempty"`
}

// ServerConfig configures the listeners
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr" validate:"required"`
	HTTPSAddr       string        `yaml:"https_addr"`
	HTTPSPort       int           `yaml:"https_port" validate:"min=0,max=65535"` // 0 disables the redirect
	TLSCertFile     string        `yaml:"tls_cert_file,omitempty" validate:"required_with=TLSKeyFile"`
	TLSKeyFile      string        `yaml:"tls_key_file,omitempty" validate:"required_with=TLSCertFile"`
	StaticDir       string        `yaml:"static_dir"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

// TLSEnabled reports whether the HTTPS listener should be started
func (s ServerConfig) TLSEnabled() bool {
	return s.TLSCertFile != "" && s.TLSKeyFile != ""
}

// SessionConfig configures server-side sessions
type SessionConfig struct {
	Store       string        `yaml:"store" validate:"oneof=memory redis"`
	IdleTimeout time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	CookieName  string        `yaml:"cookie_name" validate:"required"`
	HTTPOnly    bool          `yaml:"http_only"`
	Essential   bool          `yaml:"essential"`
	Secure      bool          `yaml:"secure"`
	Redis       RedisConfig   `yaml:"redis"`
}

// RedisConfig configures the distributed session store
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db" validate:"min=0"`
}

// CookiePolicyConfig configures cookie consent
type CookiePolicyConfig struct {
	ConsentRequired   bool   `yaml:"consent_required"`
	ConsentCookieName string `yaml:"consent_cookie_name" validate:"required"`
}

// APIDocsConfig describes the published API
type APIDocsConfig struct {
	Title       string `yaml:"title" validate:"required"`
	Version     string `yaml:"version" validate:"required"`
	Description string `yaml:"description"`
}

// RoutingConfig holds the conventional route pattern
type RoutingConfig struct {
	DefaultPattern string `yaml:"default_pattern" validate:"required"`
}

// AuthConfig configures admin authentication
type AuthConfig struct {
	LoginPath              string `yaml:"login_path" validate:"required,startswith=/"`
	LoginAttemptsPerMinute int    `yaml:"login_attempts_per_minute" validate:"gt=0"`
	LoginBurst             int    `yaml:"login_burst" validate:"gt=0"`
}

// OrdersConfig holds order lifecycle settings
type OrdersConfig struct {
	AutoCancelAfter time.Duration `yaml:"auto_cancel_after" validate:"min=0"` // 0 disables the sweep
}

// SchedulerConfig holds cron specs for background jobs
type SchedulerConfig struct {
	StaleOrderSweep string `yaml:"stale_order_sweep"`
}

// LoggingConfig configures the process logger
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Environment: "production",
		ConnectionStrings: map[string]string{
			DefaultConnectionName: "aklujeats:aklujeats@tcp(localhost:3306)/aklujeats",
		},
		SQLDatabase: SQLDatabaseConfig{
			Provider:        "mysql",
			ServerVersion:   "8.0.29",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 10 * time.Minute,
		},
		NoSQLDatabase: DatabaseConfig{
			URI:      "mongodb://localhost:27017",
			Database: "aklujeats",
		},
		Server: ServerConfig{
			HTTPAddr:        ":8080",
			HTTPSAddr:       ":8443",
			HTTPSPort:       443,
			StaticDir:       "wwwroot",
			ShutdownTimeout: 15 * time.Second,
		},
		Session: SessionConfig{
			Store:       "memory",
			IdleTimeout: 30 * time.Minute,
			CookieName:  ".AklujEats.Session",
			HTTPOnly:    true,
			Essential:   true,
			Redis:       RedisConfig{Addr: "localhost:6379"},
		},
		CookiePolicy: CookiePolicyConfig{
			ConsentRequired:   true,
			ConsentCookieName: ".AklujEats.Consent",
		},
		APIDocs: APIDocsConfig{
			Title:       "AklujEats API",
			Version:     "v1",
			Description: "API for AklujEats food delivery platform",
		},
		Routing: RoutingConfig{
			DefaultPattern: "{controller=Admin}/{action=Login}/{id?}",
		},
		Auth: AuthConfig{
			LoginPath:              "/Admin/Login",
			LoginAttemptsPerMinute: 10,
			LoginBurst:             5,
		},
		Orders: OrdersConfig{
			AutoCancelAfter: 45 * time.Minute,
		},
		Scheduler: SchedulerConfig{
			StaleOrderSweep: "@every 5m",
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load loads configuration from file. Defaults fill anything the file
// leaves out and environment overrides are applied last.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.ApplyEnv(os.Environ()); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv applies KEY=VALUE overrides such as those returned by os.Environ
func (c *Config) ApplyEnv(environ []string) error {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}

		switch {
		case strings.HasPrefix(key, connectionStringEnvPrefix):
			name := strings.TrimPrefix(key, connectionStringEnvPrefix)
			if name == "" {
				continue
			}
			if c.ConnectionStrings == nil {
				c.ConnectionStrings = make(map[string]string)
			}
			c.ConnectionStrings[name] = value
		case key == envEnvironment:
			c.Environment = strings.ToLower(value)
		case key == envLogLevel:
			c.Logging.Level = value
		case key == envHTTPSPort:
			port, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", envHTTPSPort, value, err)
			}
			c.Server.HTTPSPort = port
		}
	}
	return nil
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Connection strings may carry credentials
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the configuration. Struct tags cover individual fields;
// rules spanning several fields are checked afterwards. Connection strings
// are not checked here: the SQL store reports them on first use.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			msgs := make([]string, 0, len(validationErrors))
			for _, e := range validationErrors {
				msgs = append(msgs, fmt.Sprintf("field '%s' failed rule '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("invalid configuration:\n- %s", strings.Join(msgs, "\n- "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.NoSQLDatabase.Provider != "" && (c.NoSQLDatabase.URI == "" || c.NoSQLDatabase.Database == "") {
		return fmt.Errorf("invalid configuration: nosql_database requires uri and database")
	}
	if c.Session.Store == "redis" && c.Session.Redis.Addr == "" {
		return fmt.Errorf("invalid configuration: session.redis.addr is required for the redis store")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("invalid configuration: metrics.path must start with '/'")
	}

	return nil
}

// ConnectionString returns the named connection string, or "" when unset
func (c *Config) ConnectionString(name string) string {
	return c.ConnectionStrings[name]
}

// IsDevelopment reports whether the process runs in the development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// SQLConfig returns the relational store configuration bound to DefaultConnection
func (c *Config) SQLConfig() *models.Config {
	return &models.Config{
		Provider:        c.SQLDatabase.Provider,
		URI:             c.ConnectionString(DefaultConnectionName),
		ServerVersion:   c.SQLDatabase.ServerVersion,
		MaxOpenConns:    c.SQLDatabase.MaxOpenConns,
		MaxIdleConns:    c.SQLDatabase.MaxIdleConns,
		ConnMaxLifetime: c.SQLDatabase.ConnMaxLifetime,
	}
}

// NoSQLConfig returns the event store configuration, or nil when order
// events are kept in the relational store
func (c *Config) NoSQLConfig() *models.Config {
	if c.NoSQLDatabase.Provider == "" {
		return nil
	}
	return &models.Config{
		Provider: c.NoSQLDatabase.Provider,
		URI:      c.NoSQLDatabase.URI,
		Database: c.NoSQLDatabase.Database,
		Options:  c.NoSQLDatabase.Options,
	}
}

// GetConfigPath returns the config file path, honouring AKLUJEATS_CONFIG_PATH
func GetConfigPath() string {
	if path := os.Getenv(envConfigPath); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".aklujeats/config.yaml"
	}
	return filepath.Join(home, ".aklujeats", "config.yaml")
}

// Exists checks if config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
