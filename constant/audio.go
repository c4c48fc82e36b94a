package constant

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate    = 44100
	AudioChannels      = 2
	AudioBitDepth      = 16
	AudioBytesPerFrame = AudioChannels * (AudioBitDepth / 8) // 4 bytes
)

// AudioBufferDuration determines playback latency and the output
// streamer's pull cadence
const AudioBufferDuration = 50 * time.Millisecond

// Transport Timing
const (
	// LookaheadInterval is the recurring tick period of the scheduler.
	// Coarse and jittery; the schedule-ahead window absorbs it.
	LookaheadInterval = 25 * time.Millisecond

	// ScheduleAheadSeconds is how far past the current engine time a tick
	// may dispatch upcoming triggers
	ScheduleAheadSeconds = 0.1

	// FirstEventOffsetSeconds delays the first step so it is never
	// scheduled in the past relative to the engine clock
	FirstEventOffsetSeconds = 0.1

	// StepsPerBar is the length of the rhythmic grid
	StepsPerBar = 16
)

// Tempo presets per intensity
const (
	TempoLowBPM  = 100
	TempoHighBPM = 135
)

// Master Bus
const (
	// MasterLevel is the unmuted master gain
	MasterLevel = 0.4

	// MuteRampTimeConstant drives the target-approach ramp used by mute
	// toggles; gain settles within ~0.1s (3-4 time constants)
	MuteRampTimeConstant = 0.03
)

// Reverb Kernel
const (
	ReverbSeconds       = 1.5
	ReverbDecayExponent = 2.0
)

// Envelope floor: exponential ramps are undefined at zero, so every
// decay targets this instead
const EnvelopeFloor = 0.01

// Kick
const (
	KickStartFreq = 150.0
	KickDuration  = 0.5
	KickLevel     = 0.8
)

// Snare
const (
	SnareDuration     = 0.2
	SnareLevel        = 0.3
	SnareFilterCutoff = 800.0
)

// Hi-hat
const (
	HiHatClosedDuration = 0.03
	HiHatOpenDuration   = 0.05
	HiHatLevel          = 0.1
	HiHatFilterCutoff   = 5000.0
)

// Bass
const (
	BassLevel         = 0.3
	BassCutoffStart   = 400.0
	BassCutoffEnd     = 100.0
	BassShortDuration = 0.2
	BassLongDuration  = 2.0
)

// Arp
const (
	ArpLevel         = 0.1
	ArpShortDuration = 0.2
	ArpLongDuration  = 0.5
)

// Slice SFX
const (
	SliceStartFreq = 1200.0
	SliceEndFreq   = 100.0
	SliceDuration  = 0.15
	SliceLevel     = 0.3
)

// Bomb SFX
const (
	BombDuration    = 0.5
	BombSweepTime   = 0.4
	BombCutoffStart = 1000.0
	BombCutoffEnd   = 50.0
	BombLevel       = 0.5
)

// ScaleFrequencies is the fixed 6-note set every pitched trigger draws
// from (A minor pentatonic flavor). Frequencies in Hz.
var ScaleFrequencies = [6]float64{220.00, 261.63, 293.66, 329.63, 392.00, 440.00}
