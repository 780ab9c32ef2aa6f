package internal

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeSession  = "session"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
	Canvas CanvasConfig      `yaml:"canvas"`
	AI     AIConfig          `yaml:"ai"`
	Import ImportConfig      `yaml:"import"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Canvas.Validate(); err != nil {
		return err
	}
	return c.AI.Validate()
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

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): an implicit local session is started at boot,
//     suitable for single-user operation.
//   - "session": clients must sign up or sign in and send the session token
//     as a Bearer header.
type AuthConfig struct {
	Mode string `yaml:"mode"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeSession)),
	)
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeSession
}

// CanvasConfig holds canvas interaction tuning.
type CanvasConfig struct {
	DebounceMS int     `yaml:"debounce_ms"`
	NoteWidth  float64 `yaml:"note_width"`
	NoteHeight float64 `yaml:"note_height"`
	GridGapX   float64 `yaml:"grid_gap_x"`
	GridGapY   float64 `yaml:"grid_gap_y"`
}

// Debounce returns the position write debounce as a duration.
func (c *CanvasConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Validate validates the canvas configuration.
func (c *CanvasConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DebounceMS, validation.Required, validation.Min(1)),
		validation.Field(&c.NoteWidth, validation.Required, validation.Min(1.0)),
		validation.Field(&c.NoteHeight, validation.Required, validation.Min(1.0)),
		validation.Field(&c.GridGapX, validation.Min(0.0)),
		validation.Field(&c.GridGapY, validation.Min(0.0)),
	)
}

// AIConfig holds the AI collaborator configuration. An empty APIKey disables
// the collaborator; its endpoints then report that it is not configured.
type AIConfig struct {
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int64  `yaml:"max_tokens"`
}

// Validate validates the AI configuration.
func (c *AIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxTokens, validation.Min(int64(0))),
	)
}

// ImportConfig holds the import inbox configuration. An empty InboxDir
// disables the inbox watcher.
type ImportConfig struct {
	InboxDir string `yaml:"inbox_dir"`
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
		SQLite: SQLiteConfig{
			Path: "./stickon.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Canvas: CanvasConfig{
			DebounceMS: 500,
			NoteWidth:  240,
			NoteHeight: 240,
			GridGapX:   24,
			GridGapY:   24,
		},
		AI: AIConfig{
			APIKey:    os.Getenv("ANTHROPIC_API_KEY"),
			MaxTokens: 2048,
		},
	}
}
