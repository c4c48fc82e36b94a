package audio

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/jay870423/neon-slice/constant"
	"github.com/jay870423/neon-slice/core"
)

// Config holds tunable audio settings. Scheduling margins and tempo
// presets are compile-time constants; this covers what a player or a
// deployment would actually want to change.
type Config struct {
	Enabled     bool
	MasterLevel float64
	SampleRate  int

	// SfxGains scales the one-shot effect levels (slice, bomb)
	SfxGains map[core.Instrument]float64
}

// DefaultConfig returns the standard configuration: enabled, master at
// the mixed level, unity effect gains.
func DefaultConfig() *Config {
	return &Config{
		Enabled:     true,
		MasterLevel: constant.MasterLevel,
		SampleRate:  constant.AudioSampleRate,
		SfxGains: map[core.Instrument]float64{
			core.InstrSliceSfx: 1.0,
			core.InstrBombSfx:  1.0,
		},
	}
}

// LoadConfig loads configuration from environment variables, falling
// back to defaults for anything unset or malformed.
func LoadConfig() *Config {
	cfg := DefaultConfig()

	if enabled := os.Getenv("NEON_SLICE_AUDIO_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Enabled = val
		}
	}

	// Master level as 0-100
	if volume := os.Getenv("NEON_SLICE_MASTER_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.MasterLevel = clampUnit(float64(val) / 100.0)
		}
	}

	if sfxGains := os.Getenv("NEON_SLICE_SFX_VOLUMES"); sfxGains != "" {
		var gains map[string]float64
		if err := json.Unmarshal([]byte(sfxGains), &gains); err == nil {
			if v, ok := gains["slice"]; ok {
				cfg.SfxGains[core.InstrSliceSfx] = clampUnit(v)
			}
			if v, ok := gains["bomb"]; ok {
				cfg.SfxGains[core.InstrBombSfx] = clampUnit(v)
			}
		}
	}

	if sampleRate := os.Getenv("NEON_SLICE_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			cfg.SampleRate = val
		}
	}

	return cfg
}
