package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/tdx/internal/models"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables read once at startup.
const (
	EnvPersonalToken      = "TODOIST_API_TOKEN_PERSONAL_ACCOUNT"
	EnvWorkToken          = "TODOIST_API_TOKEN_WORK_ACCOUNT"
	EnvPersonalArchivedID = "TODOIST_PERSONAL_ACCOUNT_ARCHIVED_PROJECT_IDS"
)

// Output modes accepted in [OutputConfig.Mode].
const (
	ModeJSON   = "json"
	ModeModule = "module"
)

// Config represents the application configuration loaded from a TOML file and the environment.
type Config struct {
	API      APIConfig      `toml:"api"`
	Output   OutputConfig   `toml:"output"`
	Range    RangeConfig    `toml:"range"`
	Accounts AccountsConfig `toml:"accounts"`
}

// APIConfig contains Todoist API connection settings.
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	PageLimit      int    `toml:"page_limit"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// OutputConfig controls where and how exports are written.
type OutputConfig struct {
	Directory string `toml:"directory"`
	Mode      string `toml:"mode"`
	Extension string `toml:"extension"`
	Prefix    string `toml:"prefix"`
}

// RangeConfig bounds the quarterly windows used for completed tasks.
type RangeConfig struct {
	StartYear int    `toml:"start_year"`
	EndYear   int    `toml:"end_year"`
	EndMonth  int    `toml:"end_month"`
	Timezone  string `toml:"timezone"`
}

// AccountsConfig holds per-account settings.
type AccountsConfig struct {
	Personal AccountConfig `toml:"personal"`
	Work     AccountConfig `toml:"work"`
}

// AccountConfig contains the credential and archived project ids of one account.
type AccountConfig struct {
	Token              string   `toml:"token"`
	ArchivedProjectIDs []string `toml:"archived_project_ids"`
}

// LoadConfig reads a TOML configuration file on top of [DefaultConfig].
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays credentials and the personal archived project list from the environment.
//
// lookup is usually [os.LookupEnv]; set but empty variables are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvPersonalToken); ok && v != "" {
		c.Accounts.Personal.Token = v
	}
	if v, ok := lookup(EnvWorkToken); ok && v != "" {
		c.Accounts.Work.Token = v
	}
	if v, ok := lookup(EnvPersonalArchivedID); ok && v != "" {
		c.Accounts.Personal.ArchivedProjectIDs = SplitList(v)
	}
}

// Validate checks settings that do not depend on the account being run.
func (c *Config) Validate() error {
	switch c.Output.Mode {
	case ModeJSON, ModeModule:
	default:
		return fmt.Errorf("%w: output.mode must be %q or %q, got %q", ErrInvalidConfig, ModeJSON, ModeModule, c.Output.Mode)
	}

	if c.Output.Directory == "" {
		return fmt.Errorf("%w: output.directory is empty", ErrInvalidConfig)
	}

	if c.Range.EndMonth < 1 || c.Range.EndMonth > 12 {
		return fmt.Errorf("%w: range.end_month must be between 1 and 12, got %d", ErrInvalidConfig, c.Range.EndMonth)
	}

	if c.Range.StartYear > c.Range.EndYear {
		return fmt.Errorf("%w: range.start_year %d is after range.end_year %d", ErrInvalidConfig, c.Range.StartYear, c.Range.EndYear)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

// Account returns the settings for the given account.
func (c *Config) Account(a models.Account) AccountConfig {
	if a == models.Work {
		return c.Accounts.Work
	}
	return c.Accounts.Personal
}

// Credential returns the API token for the account.
//
// A missing token is fatal for the account's run.
func (c *Config) Credential(a models.Account) (string, error) {
	token := c.Account(a).Token
	if token == "" {
		name := EnvPersonalToken
		if a == models.Work {
			name = EnvWorkToken
		}
		return "", fmt.Errorf("%w: %s is not set for the %s account", ErrMissingCredentials, name, a)
	}
	return token, nil
}

// Location resolves range.timezone. An empty value or "Local" is the host's zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Range.Timezone {
	case "", "Local":
		return time.Local, nil
	}

	loc, err := time.LoadLocation(c.Range.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: range.timezone: %v", ErrInvalidConfig, err)
	}
	return loc, nil
}

// Timeout returns the HTTP client timeout.
func (c *Config) Timeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// Extension returns the configured export file extension, falling back to the mode's default.
func (c *Config) Extension() string {
	if c.Output.Extension != "" {
		return c.Output.Extension
	}
	if c.Output.Mode == ModeJSON {
		return ".json"
	}
	return ".ts"
}
