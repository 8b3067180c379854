package ui

import "time"

// Config contains TUI-specific configuration.
type Config struct {
	HomeDir string `env:"HOME"`

	// Podcast file being played.
	Path string

	// LazyLoad defers media resolution until the first play command.
	LazyLoad bool

	// How often the status line refreshes.
	TickInterval time.Duration `env:"VERSO_UI_TICK" envDefault:"200ms"`

	// For debugging the UI
	ShowRawErrors bool `env:"VERSO_SHOW_RAW_ERRORS" envDefault:"false"`
}
