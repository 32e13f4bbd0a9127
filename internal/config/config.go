package config

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	gomysql "github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultEndpoint = "https://www.success.co/graphql"

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	GraphQL  GraphQLConfig  `yaml:"graphql"`
	Database DatabaseConfig `yaml:"database"`
	Identity IdentityConfig `yaml:"identity"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	Console    bool   `yaml:"console"`
	Stderr     bool   `yaml:"stderr"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type ServerConfig struct {
	Port      int           `yaml:"port"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	Operators []Operator    `yaml:"operators"`
}

// Operator is a person allowed to log in to the HTTP transport.
// PasswordHash is a bcrypt hash.
type Operator struct {
	Username     string `yaml:"username"`
	Name         string `yaml:"name"`
	PasswordHash string `yaml:"password_hash"`
}

type GraphQLConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	APIKey     string        `yaml:"api_key"`
	APIKeyFile string        `yaml:"api_key_file"`
	Timeout    time.Duration `yaml:"timeout"`
	RateLimit  float64       `yaml:"rate_limit"`
	Burst      int           `yaml:"burst"`
	DebugLog   string        `yaml:"debug_log"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type IdentityConfig struct {
	KeyPrefix string        `yaml:"key_prefix"`
	CacheSize int           `yaml:"cache_size"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

func Load(configFile string) *Config {
	c := &Config{
		Server:   ServerConfig{Port: 9871, TokenTTL: 7 * 24 * time.Hour},
		GraphQL:  GraphQLConfig{Endpoint: DefaultEndpoint, APIKeyFile: defaultKeyFile(), Timeout: 30 * time.Second, RateLimit: 10, Burst: 5},
		Log:      LogConfig{Level: "info", Console: true, MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 30},
		Database: DatabaseConfig{Port: 5432, SSLMode: "disable"},
		Identity: IdentityConfig{KeyPrefix: "suc_api_", CacheSize: 256, CacheTTL: time.Hour},
	}

	paths := []string{"etc/config.yaml", "/etc/success-mcp/config.yaml"}
	if configFile != "" {
		paths = []string{configFile}
	}
	for _, path := range paths {
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, c)
			break
		}
	}

	envOverride(&c.GraphQL.Endpoint, "GRAPHQL_ENDPOINT_URL")
	envOverride(&c.GraphQL.APIKey, "SUCCESS_CO_API_KEY")
	envOverride(&c.GraphQL.APIKeyFile, "SUCCESS_CO_API_KEY_FILE")
	envOverride(&c.GraphQL.DebugLog, "GRAPHQL_DEBUG_LOG")
	envOverride(&c.Database.URL, "DATABASE_URL")
	envOverride(&c.Database.Driver, "DB_DRIVER")
	envOverride(&c.Database.Host, "DB_HOST")
	envOverride(&c.Database.User, "DB_USER")
	envOverride(&c.Database.Password, "DB_PASSWORD")
	envOverride(&c.Database.Name, "DB_NAME")
	envOverride(&c.Database.SSLMode, "DB_SSLMODE")
	envOverride(&c.Log.Level, "LOG_LEVEL")
	envOverride(&c.Log.File, "LOG_FILE")
	envOverride(&c.Server.JWTSecret, "JWT_SECRET")
	envOverrideInt(&c.Server.Port, "PORT")
	envOverrideInt(&c.Database.Port, "DB_PORT")
	envOverrideBool(&c.Log.Console, "LOG_CONSOLE")

	return c
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// DatabaseEnabled reports whether an identity database is configured.
func (c *Config) DatabaseEnabled() bool {
	return c.Database.URL != "" || c.Database.Host != ""
}

// OpenGormDB opens the identity database. It returns a nil DB and nil error
// when no database is configured.
func (c *Config) OpenGormDB() (*gorm.DB, error) {
	if !c.DatabaseEnabled() {
		return nil, nil
	}
	dialector, err := c.dialector()
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.driver(), err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("pool: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

func (c *Config) driver() string {
	if c.Database.Driver != "" {
		return strings.ToLower(c.Database.Driver)
	}
	if c.Database.URL != "" {
		u := c.Database.URL
		switch {
		case strings.HasPrefix(u, "mysql://"):
			return "mysql"
		case strings.HasPrefix(u, "sqlite://"), strings.HasPrefix(u, "file:"):
			return "sqlite"
		}
	}
	return "postgres"
}

func (c *Config) dialector() (gorm.Dialector, error) {
	d := c.Database
	switch c.driver() {
	case "postgres", "postgresql":
		dsn := d.URL
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
				d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
		}
		return postgres.Open(dsn), nil
	case "mysql":
		cfg, err := c.mysqlConfig()
		if err != nil {
			return nil, err
		}
		connector, err := gomysql.NewConnector(cfg)
		if err != nil {
			return nil, fmt.Errorf("create connector: %w", err)
		}
		return mysql.New(mysql.Config{Conn: sql.OpenDB(connector)}), nil
	case "sqlite":
		dsn := strings.TrimPrefix(d.URL, "sqlite://")
		if dsn == "" {
			dsn = d.Name
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", d.Driver)
	}
}

func (c *Config) mysqlConfig() (*gomysql.Config, error) {
	d := c.Database
	cfg := gomysql.NewConfig()
	cfg.Net = "tcp"
	cfg.ParseTime = true
	if d.URL == "" {
		cfg.User = d.User
		cfg.Passwd = d.Password
		cfg.Addr = fmt.Sprintf("%s:%d", d.Host, d.Port)
		cfg.DBName = d.Name
		return cfg, nil
	}
	u, err := url.Parse(d.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.User = u.User.Username()
	cfg.Passwd, _ = u.User.Password()
	cfg.Addr = u.Host
	if u.Port() == "" {
		cfg.Addr = u.Host + ":3306"
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	return cfg, nil
}

func defaultKeyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.config/success-mcp/api_key"
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envOverrideBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
