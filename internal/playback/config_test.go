package playback

import (
	"testing"
	"time"

	"github.com/versoapp/verso/internal/speech"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.FallbackDuration != 120*time.Second {
		t.Errorf("fallback duration = %v, want 120s", cfg.FallbackDuration)
	}
	if cfg.CacheMaxAge != 7*24*time.Hour {
		t.Errorf("cache max age = %v, want 168h", cfg.CacheMaxAge)
	}
	if cfg.SkipInterval != 10*time.Second {
		t.Errorf("skip interval = %v, want 10s", cfg.SkipInterval)
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	mutations := map[string]func(*Config){
		"bad profile":     func(c *Config) { c.VoiceProfile = "squeaky" },
		"rate too low":    func(c *Config) { c.Rate = 0.1 },
		"rate too high":   func(c *Config) { c.Rate = 5 },
		"negative pitch":  func(c *Config) { c.Pitch = -1 },
		"volume too high": func(c *Config) { c.Volume = 1.5 },
		"zero fallback":   func(c *Config) { c.FallbackDuration = 0 },
		"zero frequency":  func(c *Config) { c.FallbackFrequency = 0 },
		"zero skip":       func(c *Config) { c.SkipInterval = 0 },
		"tiny timeout":    func(c *Config) { c.SynthTimeout = time.Millisecond },
	}
	for name, mutate := range mutations {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestVoiceOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VoiceProfile = "deep"
	cfg.Rate = 1.5

	opts := cfg.VoiceOptions()
	if opts.Profile != speech.ProfileDeep {
		t.Errorf("profile = %s, want deep", opts.Profile)
	}
	if opts.Rate != 1.5 {
		t.Errorf("rate = %v, want 1.5", opts.Rate)
	}
}
