package audio

import (
	"errors"

	"github.com/jay870423/neon-slice/core"
)

// Trigger is one instrument firing at a transport step or as a one-shot
// effect. Immutable once built; consumed exactly once by the synth.
type Trigger struct {
	Instrument core.Instrument
	Freq       float64 // Hz; 0 for unpitched recipes
	Duration   float64 // seconds
	Level      float64 // peak envelope gain
}

// Rand is the injectable randomness source behind note selection and
// noise generation. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// Sentinel errors
var (
	ErrBackendUnavailable = errors.New("no audio backend available")
	ErrNotInitialized     = errors.New("audio service not initialized")
)

// minDuration guards against degenerate schedules; shorter requests are
// clamped instead of failing
const minDuration = 0.001

func clampDuration(d float64) float64 {
	if d < minDuration {
		return minDuration
	}
	return d
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
