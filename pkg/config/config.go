// Package config defines the batcomd server configuration and its
// file loader.
package config

import (
	"fmt"
	"time"

	"github.com/batcomd/batcomd/pkg/logging"
)

// Defaults applied when a field is absent from the config file.
const (
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 8000
	DefaultAPIKey       = "gcpd-secret-key-789"
	DefaultAdminUser    = "batman"
	DefaultSessionUser  = "batman"
	DefaultSessionEmail = "bruce@wayne.enterprises"
	DefaultVersion      = "1.0.0"
	DefaultTemplatesDir = "web/templates"
	DefaultStaticDir    = "web/static"
	DefaultLogDir       = "batcomputer_logs"
	DefaultIntelTimeout = Duration(10 * time.Second)
	DefaultReportDelay  = Duration(2 * time.Second)
)

// DefaultAllowedOrigins is the CORS allow-list. The literal "null"
// entry admits file:// pages, which browsers report with Origin: null.
func DefaultAllowedOrigins() []string {
	return []string{
		"http://localhost",
		"http://localhost:8080",
		"http://127.0.0.1",
		"http://127.0.0.1:8080",
		"null",
	}
}

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Auth    AuthConfig    `yaml:"auth" json:"auth"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	CORS    CORSConfig    `yaml:"cors" json:"cors"`
	Intel   IntelConfig   `yaml:"intel" json:"intel"`
	Paths   PathsConfig   `yaml:"paths" json:"paths"`
	Tasks   TasksConfig   `yaml:"tasks" json:"tasks"`
}

// ServerConfig controls the listen address and the advertised API
// version header.
type ServerConfig struct {
	Host    string `yaml:"host" json:"host"`
	Port    int    `yaml:"port" json:"port"`
	Version string `yaml:"version" json:"version"`
}

// AuthConfig controls the API key chain and the admin identity.
type AuthConfig struct {
	// APIKey is the shared secret checked against X-API-Key. The
	// BATCOMD_API_KEY environment variable overrides it.
	APIKey string `yaml:"apiKey" json:"apiKey"`

	// AdminUser is the only username admitted to the control panel.
	AdminUser string `yaml:"adminUser" json:"adminUser"`

	// SessionUser is the username of the simulated logged-in user.
	SessionUser string `yaml:"sessionUser" json:"sessionUser"`

	// SessionEmail is the simulated user's email address.
	SessionEmail string `yaml:"sessionEmail" json:"sessionEmail"`

	// CurrentUserInactive flips the simulated session user to
	// inactive. Exists to exercise the 400 branch of /contacts/me.
	CurrentUserInactive bool `yaml:"currentUserInactive" json:"currentUserInactive"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// CORSConfig controls cross-origin access.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins" json:"allowedOrigins"`
}

// IntelConfig controls the outbound intel feed client.
type IntelConfig struct {
	BaseURL string   `yaml:"baseUrl" json:"baseUrl"`
	Timeout Duration `yaml:"timeout" json:"timeout"`
}

// PathsConfig locates on-disk assets.
type PathsConfig struct {
	TemplatesDir string `yaml:"templatesDir" json:"templatesDir"`
	StaticDir    string `yaml:"staticDir" json:"staticDir"`
	LogDir       string `yaml:"logDir" json:"logDir"`
}

// TasksConfig controls the background task runner.
type TasksConfig struct {
	QueueSize int `yaml:"queueSize" json:"queueSize"`

	// ReportDelay is the simulated intel report compilation time.
	ReportDelay Duration `yaml:"reportDelay" json:"reportDelay"`
}

// Default returns a fully populated configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    DefaultHost,
			Port:    DefaultPort,
			Version: DefaultVersion,
		},
		Auth: AuthConfig{
			APIKey:       DefaultAPIKey,
			AdminUser:    DefaultAdminUser,
			SessionUser:  DefaultSessionUser,
			SessionEmail: DefaultSessionEmail,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		CORS: CORSConfig{
			AllowedOrigins: DefaultAllowedOrigins(),
		},
		Intel: IntelConfig{
			Timeout: DefaultIntelTimeout,
		},
		Paths: PathsConfig{
			TemplatesDir: DefaultTemplatesDir,
			StaticDir:    DefaultStaticDir,
			LogDir:       DefaultLogDir,
		},
		Tasks: TasksConfig{
			ReportDelay: DefaultReportDelay,
		},
	}
}

// applyDefaults fills zero-valued fields after a file load.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.Version == "" {
		c.Server.Version = d.Server.Version
	}
	if c.Auth.APIKey == "" {
		c.Auth.APIKey = d.Auth.APIKey
	}
	if c.Auth.AdminUser == "" {
		c.Auth.AdminUser = d.Auth.AdminUser
	}
	if c.Auth.SessionUser == "" {
		c.Auth.SessionUser = d.Auth.SessionUser
	}
	if c.Auth.SessionEmail == "" {
		c.Auth.SessionEmail = d.Auth.SessionEmail
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = d.CORS.AllowedOrigins
	}
	if c.Intel.Timeout == 0 {
		c.Intel.Timeout = d.Intel.Timeout
	}
	if c.Paths.TemplatesDir == "" {
		c.Paths.TemplatesDir = d.Paths.TemplatesDir
	}
	if c.Paths.StaticDir == "" {
		c.Paths.StaticDir = d.Paths.StaticDir
	}
	if c.Paths.LogDir == "" {
		c.Paths.LogDir = d.Paths.LogDir
	}
	if c.Tasks.ReportDelay == 0 {
		c.Tasks.ReportDelay = d.Tasks.ReportDelay
	}
}

// Validate checks the configuration for values the server cannot run
// with. Messages are scoped by config path.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.apiKey: must not be empty")
	}
	if c.Auth.AdminUser == "" {
		return fmt.Errorf("auth.adminUser: must not be empty")
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		return fmt.Errorf("logging.format: %w", err)
	}
	if c.Tasks.QueueSize < 0 {
		return fmt.Errorf("tasks.queueSize: must not be negative, got %d", c.Tasks.QueueSize)
	}
	return nil
}
