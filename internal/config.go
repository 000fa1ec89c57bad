package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Search result orders.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Vault  VaultConfig       `yaml:"vault"`
	Watch  WatchConfig       `yaml:"watch"`
	Index  IndexConfig       `yaml:"index"`
	Search SearchConfig      `yaml:"search"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.Watch.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig locates the note vault and names its special groups.
type VaultConfig struct {
	Path      string `yaml:"path"`
	PapersDir string `yaml:"papers_dir"`
	DailyDir  string `yaml:"daily_dir"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.PapersDir, validation.Required),
		validation.Field(&c.DailyDir, validation.Required),
	)
}

// WatchConfig controls live index synchronization.
type WatchConfig struct {
	Enabled      bool          `yaml:"enabled"`
	RenameWindow time.Duration `yaml:"rename_window"`
	QueueSize    int           `yaml:"queue_size"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RenameWindow, validation.Min(time.Duration(0)), validation.Max(10*time.Second)),
		validation.Field(&c.QueueSize, validation.Min(0)),
	)
}

// IndexConfig tunes the startup build.
type IndexConfig struct {
	LoadWorkers int `yaml:"load_workers"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LoadWorkers, validation.Min(0), validation.Max(256)),
	)
}

// SearchConfig holds search presentation settings.
type SearchConfig struct {
	// Order is the score order of search results: "asc" or "desc".
	Order string `yaml:"order"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	if c.Order == "" {
		c.Order = OrderAsc
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Order, validation.In(OrderAsc, OrderDesc)),
	)
}

// Descending reports whether results are shown best match first.
func (c *SearchConfig) Descending() bool {
	return c.Order == OrderDesc
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// BearerToken is the token requests must present, or "" when auth is off.
func (c *AuthConfig) BearerToken() string {
	if !c.AuthEnabled() {
		return ""
	}
	return c.Token
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path:      "./vault",
			PapersDir: "papers",
			DailyDir:  "daily",
		},
		Watch: WatchConfig{
			Enabled:      true,
			RenameWindow: 200 * time.Millisecond,
			QueueSize:    256,
		},
		Index: IndexConfig{
			LoadWorkers: 8,
		},
		Search: SearchConfig{
			Order: OrderAsc,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
