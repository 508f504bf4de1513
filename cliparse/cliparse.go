package cliparse

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort             = 3318
	DefaultDatabaseType     = "sqlite"
	DefaultDatabaseURL      = "file:notetally.db"
	DefaultAdminUsername    = "admin"
	DefaultExportConfidence = 0.60
	DefaultMaxUploadBytes   = 50 << 20
	DefaultSessionTTL       = 7 * 24 * time.Hour
)

type Config struct {
	Port             int
	DatabaseURL      string
	DatabaseType     string
	SessionSalt      string
	AdminUsername    string
	ExportConfidence float64
	MaxUploadBytes   int64
	SessionTTL       time.Duration
	LogLevel         slog.Level
}

// fileConfig mirrors Config for the optional YAML file.
type fileConfig struct {
	Port     int `yaml:"port"`
	Database struct {
		Type string `yaml:"type"`
		URL  string `yaml:"url"`
	} `yaml:"database"`
	SessionSalt      string        `yaml:"sessionSalt"`
	AdminUsername    string        `yaml:"adminUsername"`
	ExportConfidence *float64      `yaml:"exportConfidence"`
	MaxUploadBytes   int64         `yaml:"maxUploadBytes"`
	SessionTTL       time.Duration `yaml:"sessionTTL"`
	LogLevel         string        `yaml:"logLevel"`
}

// ParseFlags builds the configuration. Flags win over environment
// variables, which win over the YAML config file, which wins over defaults.
func ParseFlags(args []string) (Config, error) {
	var (
		flagCfg    Config
		logLevel   string
		configPath string
	)

	fs := pflag.NewFlagSet("notetally", pflag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVarP(&flagCfg.Port, "port", "p", 0, "Server port")
	fs.StringVarP(&flagCfg.DatabaseURL, "database-url", "d", "", "Database URL")
	fs.StringVarP(&flagCfg.DatabaseType, "database-type", "t", "", "Database type (sqlite or postgres)")
	fs.StringVarP(&configPath, "config", "c", "", "YAML config file")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&flagCfg.SessionSalt, "session-salt", "", "Session token salt (prefer env)")

	fs.StringVar(&flagCfg.AdminUsername, "admin-username", "", "Username granted admin rights on login")
	fs.Float64Var(&flagCfg.ExportConfidence, "export-confidence", 0, "Default minimum consensus probability for export")
	fs.Int64Var(&flagCfg.MaxUploadBytes, "max-upload-bytes", 0, "Maximum XML upload size")
	fs.DurationVar(&flagCfg.SessionTTL, "session-ttl", 0, "Session lifetime")
	fs.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:             DefaultPort,
		DatabaseType:     DefaultDatabaseType,
		DatabaseURL:      DefaultDatabaseURL,
		AdminUsername:    DefaultAdminUsername,
		ExportConfidence: DefaultExportConfidence,
		MaxUploadBytes:   DefaultMaxUploadBytes,
		SessionTTL:       DefaultSessionTTL,
		LogLevel:         slog.LevelInfo,
	}

	if configPath == "" {
		configPath = os.Getenv("NOTETALLY_CONFIG")
	}
	if configPath != "" {
		if err := cfg.applyFile(configPath); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	// Explicit flags last
	if fs.Changed("port") {
		cfg.Port = flagCfg.Port
	}
	if fs.Changed("database-url") {
		cfg.DatabaseURL = flagCfg.DatabaseURL
	}
	if fs.Changed("database-type") {
		cfg.DatabaseType = flagCfg.DatabaseType
	}
	if fs.Changed("session-salt") {
		cfg.SessionSalt = flagCfg.SessionSalt
	}
	if fs.Changed("admin-username") {
		cfg.AdminUsername = flagCfg.AdminUsername
	}
	if fs.Changed("export-confidence") {
		cfg.ExportConfidence = flagCfg.ExportConfidence
	}
	if fs.Changed("max-upload-bytes") {
		cfg.MaxUploadBytes = flagCfg.MaxUploadBytes
	}
	if fs.Changed("session-ttl") {
		cfg.SessionTTL = flagCfg.SessionTTL
	}
	if fs.Changed("log-level") {
		if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
			return Config{}, fmt.Errorf("invalid --log-level: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("cannot parse config %s: %w", path, err)
	}

	if fc.Port != 0 {
		c.Port = fc.Port
	}
	if fc.Database.Type != "" {
		c.DatabaseType = fc.Database.Type
	}
	if fc.Database.URL != "" {
		c.DatabaseURL = fc.Database.URL
	}
	if fc.SessionSalt != "" {
		c.SessionSalt = fc.SessionSalt
	}
	if fc.AdminUsername != "" {
		c.AdminUsername = fc.AdminUsername
	}
	if fc.ExportConfidence != nil {
		c.ExportConfidence = *fc.ExportConfidence
	}
	if fc.MaxUploadBytes != 0 {
		c.MaxUploadBytes = fc.MaxUploadBytes
	}
	if fc.SessionTTL != 0 {
		c.SessionTTL = fc.SessionTTL
	}
	if fc.LogLevel != "" {
		if err := c.LogLevel.UnmarshalText([]byte(fc.LogLevel)); err != nil {
			return fmt.Errorf("invalid logLevel in %s: %w", path, err)
		}
	}
	return nil
}

// Fall back to environment variables
func (c *Config) applyEnv() error {
	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return errors.New("invalid PORT env variable")
		}
		c.Port = port
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("DATABASE_TYPE"); v != "" {
		c.DatabaseType = v
	}
	if v := os.Getenv("SESSION_SALT"); v != "" {
		c.SessionSalt = v
	}
	if v := os.Getenv("ADMIN_USERNAME"); v != "" {
		c.AdminUsername = v
	}
	if v := os.Getenv("EXPORT_CONFIDENCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.New("invalid EXPORT_CONFIDENCE env variable")
		}
		c.ExportConfidence = f
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.New("invalid MAX_UPLOAD_BYTES env variable")
		}
		c.MaxUploadBytes = n
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.New("invalid SESSION_TTL env variable")
		}
		c.SessionTTL = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := c.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return errors.New("invalid LOG_LEVEL env variable")
		}
	}
	return nil
}

func (c *Config) validate() error {
	if c.DatabaseType != "sqlite" && c.DatabaseType != "postgres" {
		return fmt.Errorf("database type must be sqlite or postgres, got %q", c.DatabaseType)
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	// Secrets - MUST be provided
	if c.SessionSalt == "" {
		return errors.New("SESSION_SALT required")
	}

	if c.ExportConfidence < 0 || c.ExportConfidence > 1 {
		return errors.New("export confidence must be between 0 and 1")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session TTL must be positive")
	}
	return nil
}
