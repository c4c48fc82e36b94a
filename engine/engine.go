// Package engine defines the capability contract the audio core requires
// from a sample-accurate rendering backend: node construction, graph
// wiring, timestamped start/stop, and parameter automation. The core
// issues commands against these interfaces and never touches samples
// itself; backends render on their own clock.
package engine

import "errors"

// Shape selects the periodic waveform of an oscillator node
type Shape int

const (
	ShapeSine Shape = iota
	ShapeSquare
	ShapeSawtooth
	ShapeTriangle
)

// FilterKind selects the biquad response of a filter node
type FilterKind int

const (
	FilterLowpass FilterKind = iota
	FilterHighpass
)

// Sentinel errors
var (
	ErrBackendUnavailable = errors.New("audio backend unavailable")
	ErrEngineClosed       = errors.New("audio engine closed")
)

// Param is an automatable scalar (gain value, oscillator frequency,
// filter cutoff). All times are seconds in the engine clock domain.
type Param interface {
	// SetValueAtTime pins the value at the given time
	SetValueAtTime(value, at float64)

	// LinearRampToValueAtTime interpolates linearly from the previous
	// automation point to value, arriving at end
	LinearRampToValueAtTime(value, end float64)

	// ExponentialRampToValueAtTime interpolates geometrically; value
	// and the previous point must be non-zero and share a sign
	ExponentialRampToValueAtTime(value, end float64)

	// SetTargetAtTime approaches target asymptotically from the given
	// time with the given time constant, never arriving exactly
	SetTargetAtTime(target, at, timeConstant float64)

	// Value reports the most recently pinned static value
	Value() float64
}

// Node is any point in the signal graph
type Node interface {
	// Connect routes this node's output into dst. Fan-out is allowed;
	// connecting twice to the same destination is idempotent.
	Connect(dst Node)
}

// Source is a node that can be started and stopped on the engine clock.
// Start and Stop are one-shot: a source plays once and is discarded.
type Source interface {
	Node
	Start(at float64)
	Stop(at float64)
}

// Oscillator is a periodic source with automatable frequency
type Oscillator interface {
	Source
	Frequency() Param
}

// BufferSource plays back a pre-filled sample buffer
type BufferSource interface {
	Source
}

// Gain scales its input by an automatable factor
type Gain interface {
	Node
	Gain() Param
}

// Filter is a biquad with automatable cutoff
type Filter interface {
	Node
	Cutoff() Param
}

// Convolver convolves its input with a fixed impulse response
type Convolver interface {
	Node
}

// Buffer is raw sample storage owned by the engine
type Buffer interface {
	Channels() int
	Frames() int
	SampleRate() float64

	// Data returns the writable sample slice for one channel
	Data(channel int) []float64
}

// Engine is the full rendering backend contract
type Engine interface {
	// Now returns the current playback time in seconds. Monotonic,
	// advances only while the engine runs.
	Now() float64

	// SampleRate reports the output rate in Hz
	SampleRate() float64

	// Resume leaves the suspended state; idempotent. Backends start
	// suspended until the host environment allows output.
	Resume() error

	// Running reports whether the clock is advancing
	Running() bool

	// Destination is the terminal output node
	Destination() Node

	NewBuffer(channels, frames int) Buffer
	NewOscillator(shape Shape, freq float64) Oscillator
	NewBufferSource(buf Buffer) BufferSource
	NewGain(value float64) Gain
	NewFilter(kind FilterKind, cutoff float64) Filter
	NewConvolver(impulse Buffer) Convolver

	// Close releases backend resources; all handles become inert
	Close() error
}
