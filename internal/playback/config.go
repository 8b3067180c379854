package playback

import (
	"fmt"
	"time"

	"github.com/versoapp/verso/internal/speech"
)

// Config contains all playback pipeline configuration.
type Config struct {
	// Cache settings
	CacheDir    string        `yaml:"cache_dir" env:"VERSO_CACHE_DIR"`
	CacheMaxAge time.Duration `yaml:"cache_max_age" env:"VERSO_CACHE_MAX_AGE" envDefault:"168h"`

	// Speech settings
	ModelDir     string        `yaml:"model_dir" env:"VERSO_MODEL_DIR"`
	SynthCommand string        `yaml:"synth_command" env:"VERSO_SYNTH_COMMAND" envDefault:"piper"`
	SynthTimeout time.Duration `yaml:"synth_timeout" env:"VERSO_SYNTH_TIMEOUT" envDefault:"30s"`
	Language     string        `yaml:"language" env:"VERSO_LANGUAGE" envDefault:"en-US"`

	// Voice settings
	VoiceProfile string  `yaml:"voice_profile" env:"VERSO_VOICE_PROFILE" envDefault:"calm"`
	Rate         float64 `yaml:"rate" env:"VERSO_RATE" envDefault:"1.0"`
	Pitch        float64 `yaml:"pitch" env:"VERSO_PITCH" envDefault:"1.0"`
	Volume       float64 `yaml:"volume" env:"VERSO_VOLUME" envDefault:"1.0"`

	// Fallback tone settings
	FallbackDuration  time.Duration `yaml:"fallback_duration" env:"VERSO_FALLBACK_DURATION" envDefault:"120s"`
	FallbackFrequency float64       `yaml:"fallback_frequency" env:"VERSO_FALLBACK_FREQUENCY" envDefault:"440"`

	// Navigation settings
	SkipInterval time.Duration `yaml:"skip_interval" env:"VERSO_SKIP_INTERVAL" envDefault:"10s"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CacheMaxAge:       7 * 24 * time.Hour,
		SynthCommand:      "piper",
		SynthTimeout:      30 * time.Second,
		Language:          "en-US",
		VoiceProfile:      "calm",
		Rate:              1.0,
		Pitch:             1.0,
		Volume:            1.0,
		FallbackDuration:  120 * time.Second,
		FallbackFrequency: 440,
		SkipInterval:      10 * time.Second,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch speech.Profile(c.VoiceProfile) {
	case speech.ProfileCalm, speech.ProfileEnergetic, speech.ProfileDeep:
	default:
		return fmt.Errorf("invalid voice profile %q: must be calm, energetic or deep", c.VoiceProfile)
	}

	if c.Rate < 0.5 || c.Rate > 2.0 {
		return fmt.Errorf("rate must be between 0.5 and 2.0, got %v", c.Rate)
	}
	if c.Pitch < 0.0 || c.Pitch > 2.0 {
		return fmt.Errorf("pitch must be between 0.0 and 2.0, got %v", c.Pitch)
	}
	if c.Volume < 0.0 || c.Volume > 1.0 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %v", c.Volume)
	}
	if c.FallbackDuration <= 0 {
		return fmt.Errorf("fallback duration must be positive, got %v", c.FallbackDuration)
	}
	if c.FallbackFrequency <= 0 {
		return fmt.Errorf("fallback frequency must be positive, got %v", c.FallbackFrequency)
	}
	if c.SkipInterval <= 0 {
		return fmt.Errorf("skip interval must be positive, got %v", c.SkipInterval)
	}
	if c.SynthTimeout < time.Second {
		return fmt.Errorf("synth timeout must be at least 1 second, got %v", c.SynthTimeout)
	}
	return nil
}

// VoiceOptions converts the configured voice settings to generation
// options.
func (c *Config) VoiceOptions() speech.Options {
	return speech.Options{
		Profile: speech.Profile(c.VoiceProfile),
		Rate:    c.Rate,
		Pitch:   c.Pitch,
		Volume:  c.Volume,
	}
}
