// Package beepengine renders the core's scheduled voice chains through
// the beep speaker. Chains are pre-rendered to float buffers when their
// source starts and mixed at exact sample offsets by a frame-counting
// streamer, so trigger timing is sample-accurate regardless of how
// jittery the scheduling timer was. The master bus gain stays live and
// evaluates its automation timeline per frame, which keeps mute ramps
// smooth across already-playing voices.
package beepengine

import (
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/jay870423/neon-slice/constant"
	"github.com/jay870423/neon-slice/engine"
)

// Engine is the beep-backed implementation of engine.Engine
type Engine struct {
	sampleRate float64
	rate       beep.SampleRate

	mu       sync.Mutex
	running  bool
	closed   bool
	frames   int64
	dest     *node
	master   *node
	pending  []*node
	playouts []*playout
}

// New creates a suspended engine at the given sample rate
func New(sampleRate int) (*Engine, error) {
	if sampleRate <= 0 {
		sampleRate = constant.AudioSampleRate
	}
	e := &Engine{
		sampleRate: float64(sampleRate),
		rate:       beep.SampleRate(sampleRate),
	}
	e.dest = &node{eng: e, kind: kindDestination}
	return e, nil
}

// Factory adapts New to the audio service's EngineFactory signature
func Factory(sampleRate int) (engine.Engine, error) {
	return New(sampleRate)
}

// Now returns seconds of audio emitted so far
func (e *Engine) Now() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return float64(e.frames) / e.sampleRate
}

func (e *Engine) SampleRate() float64 { return e.sampleRate }

// Resume opens the speaker and attaches the output streamer.
// Idempotent; an unavailable output device surfaces as an error and the
// caller degrades to silence.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return engine.ErrEngineClosed
	}
	if e.running {
		return nil
	}
	if err := speaker.Init(e.rate, e.rate.N(constant.AudioBufferDuration)); err != nil {
		return err
	}
	speaker.Play(e)
	e.running = true
	return nil
}

func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) Destination() engine.Node { return e.dest }

func (e *Engine) NewBuffer(channels, frames int) engine.Buffer {
	data := make([][]float64, channels)
	for i := range data {
		data[i] = make([]float64, frames)
	}
	return &buffer{data: data, rate: e.sampleRate}
}

func (e *Engine) NewOscillator(shape engine.Shape, freq float64) engine.Oscillator {
	return &node{eng: e, kind: kindOscillator, shape: shape, freq: newParam(freq)}
}

func (e *Engine) NewBufferSource(buf engine.Buffer) engine.BufferSource {
	b, _ := buf.(*buffer)
	return &node{eng: e, kind: kindBufferSource, buf: b}
}

func (e *Engine) NewGain(value float64) engine.Gain {
	return &node{eng: e, kind: kindGain, gain: newParam(value)}
}

func (e *Engine) NewFilter(kind engine.FilterKind, cutoff float64) engine.Filter {
	return &node{eng: e, kind: kindFilter, filter: kind, cutoff: newParam(cutoff)}
}

func (e *Engine) NewConvolver(impulse engine.Buffer) engine.Convolver {
	b, _ := impulse.(*buffer)
	return &node{eng: e, kind: kindConvolver, buf: b}
}

// Close drops all scheduled audio and detaches from the mix. The
// speaker device stays open; beep owns it process-wide.
func (e *Engine) Close() error {
	e.mu.Lock()
	e.closed = true
	e.running = false
	e.pending = nil
	e.playouts = nil
	e.mu.Unlock()

	speaker.Clear()
	return nil
}

func (e *Engine) setMaster(n *node) {
	e.mu.Lock()
	e.master = n
	e.mu.Unlock()
}

func (e *Engine) enqueue(src *node) {
	e.mu.Lock()
	if !e.closed {
		e.pending = append(e.pending, src)
	}
	e.mu.Unlock()
}

// Stream implements beep.Streamer: an endless mix of the realized
// voices against the frame clock, scaled by the live master gain
func (e *Engine) Stream(samples [][2]float64) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return 0, false
	}

	// Realize anything scheduled since the previous pull. Start was
	// called strictly before this pull, so stop times and chain wiring
	// are complete by now.
	for _, src := range e.pending {
		e.playouts = append(e.playouts, e.realize(src)...)
	}
	e.pending = e.pending[:0]

	for i := range samples {
		frame := e.frames + int64(i)
		t := float64(frame) / e.sampleRate

		var l, r float64
		for _, p := range e.playouts {
			idx := frame - p.startFrame
			if idx >= 0 && idx < int64(len(p.left)) {
				l += p.left[idx]
				r += p.right[idx]
			}
		}

		gain := 1.0
		if e.master != nil {
			gain = e.master.gain.valueAt(t)
		}
		samples[i][0] = softLimit(l * gain)
		samples[i][1] = softLimit(r * gain)
	}
	e.frames += int64(len(samples))

	// Drop voices that have fully played out
	keep := e.playouts[:0]
	for _, p := range e.playouts {
		if p.startFrame+int64(len(p.left)) > e.frames {
			keep = append(keep, p)
		}
	}
	e.playouts = keep

	return len(samples), true
}

func (e *Engine) Err() error { return nil }

// softLimit squashes peaks above 0.8 before the hard clip so a busy
// step never crackles
func softLimit(v float64) float64 {
	if v > 0.8 {
		v = 0.8 + 0.2*(1.0-1.0/(1.0+(v-0.8)*5.0))
	} else if v < -0.8 {
		v = -0.8 - 0.2*(1.0-1.0/(1.0+(-v-0.8)*5.0))
	}
	if v > 1.0 {
		return 1.0
	}
	if v < -1.0 {
		return -1.0
	}
	return v
}
