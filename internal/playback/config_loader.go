package playback

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoadConfigFromViper loads playback configuration from Viper, keeping
// defaults for unset keys.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("playback.cache_dir") {
		cfg.CacheDir = viper.GetString("playback.cache_dir")
	}
	if viper.IsSet("playback.cache_max_age") {
		if d, err := time.ParseDuration(viper.GetString("playback.cache_max_age")); err == nil {
			cfg.CacheMaxAge = d
		}
	}
	if viper.IsSet("playback.model_dir") {
		cfg.ModelDir = viper.GetString("playback.model_dir")
	}
	if viper.IsSet("playback.synth_command") {
		cfg.SynthCommand = viper.GetString("playback.synth_command")
	}
	if viper.IsSet("playback.synth_timeout") {
		if d, err := time.ParseDuration(viper.GetString("playback.synth_timeout")); err == nil {
			cfg.SynthTimeout = d
		}
	}
	if viper.IsSet("playback.language") {
		cfg.Language = viper.GetString("playback.language")
	}
	if viper.IsSet("playback.voice_profile") {
		cfg.VoiceProfile = viper.GetString("playback.voice_profile")
	}
	if viper.IsSet("playback.rate") {
		cfg.Rate = viper.GetFloat64("playback.rate")
	}
	if viper.IsSet("playback.pitch") {
		cfg.Pitch = viper.GetFloat64("playback.pitch")
	}
	if viper.IsSet("playback.volume") {
		cfg.Volume = viper.GetFloat64("playback.volume")
	}
	if viper.IsSet("playback.fallback_duration") {
		if d, err := time.ParseDuration(viper.GetString("playback.fallback_duration")); err == nil {
			cfg.FallbackDuration = d
		}
	}
	if viper.IsSet("playback.fallback_frequency") {
		cfg.FallbackFrequency = viper.GetFloat64("playback.fallback_frequency")
	}
	if viper.IsSet("playback.skip_interval") {
		if d, err := time.ParseDuration(viper.GetString("playback.skip_interval")); err == nil {
			cfg.SkipInterval = d
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid playback configuration: %w", err)
	}
	return cfg, nil
}

// SetDefaults registers playback defaults in Viper.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("playback.cache_dir", defaults.CacheDir)
	viper.SetDefault("playback.cache_max_age", defaults.CacheMaxAge.String())
	viper.SetDefault("playback.model_dir", defaults.ModelDir)
	viper.SetDefault("playback.synth_command", defaults.SynthCommand)
	viper.SetDefault("playback.synth_timeout", defaults.SynthTimeout.String())
	viper.SetDefault("playback.language", defaults.Language)
	viper.SetDefault("playback.voice_profile", defaults.VoiceProfile)
	viper.SetDefault("playback.rate", defaults.Rate)
	viper.SetDefault("playback.pitch", defaults.Pitch)
	viper.SetDefault("playback.volume", defaults.Volume)
	viper.SetDefault("playback.fallback_duration", defaults.FallbackDuration.String())
	viper.SetDefault("playback.fallback_frequency", defaults.FallbackFrequency)
	viper.SetDefault("playback.skip_interval", defaults.SkipInterval.String())
}
