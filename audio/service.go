package audio

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jay870423/neon-slice/constant"
	"github.com/jay870423/neon-slice/core"
	"github.com/jay870423/neon-slice/engine"
)

// EngineFactory creates the rendering backend. Returning an error puts
// the service into silent mode rather than failing the caller.
type EngineFactory func(sampleRate int) (engine.Engine, error)

// Service is the audio aggregate the game talks to: transport, synth,
// and mix graph behind a small facade. It is explicitly two-state:
// uninitialized until Init succeeds, ready afterward. Every operation
// degrades to a no-op when the backend is unavailable or the service
// is uninitialized; user-visible failure is silence, never a crash.
type Service struct {
	cfg        *Config
	newEngine  EngineFactory
	rng        Rand
	tickerFunc func() TickScheduler

	mu        sync.Mutex
	eng       engine.Engine
	mix       *MixGraph
	synth     *Synth
	transport *Transport
	ready     bool

	disabled atomic.Bool
}

// NewService creates an uninitialized service. A nil config loads from
// the environment; a nil rng seeds from the wall clock; a nil factory
// yields a silent virtual backend.
func NewService(cfg *Config, factory EngineFactory, rng Rand) *Service {
	if cfg == nil {
		cfg = LoadConfig()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if factory == nil {
		factory = func(sampleRate int) (engine.Engine, error) {
			return engine.NewVirtual(float64(sampleRate)), nil
		}
	}
	return &Service{
		cfg:        cfg,
		newEngine:  factory,
		rng:        rng,
		tickerFunc: NewTimerScheduler,
	}
}

// SetTickScheduler overrides the transport timer; must be called
// before Init. Tests use it to drive ticks by hand.
func (s *Service) SetTickScheduler(fn func() TickScheduler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil && !s.ready {
		s.tickerFunc = fn
	}
}

// Init lazily creates the backend, bus graph, and reverb kernel, and
// resumes a suspended backend. Idempotent; safe to call on every
// user gesture. Backend failure leaves the service in silent mode.
func (s *Service) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		// Backends can re-suspend underneath us; re-probe on each call
		if !s.eng.Running() {
			if err := s.eng.Resume(); err != nil {
				s.disabled.Store(true)
			}
		}
		return nil
	}

	if !s.cfg.Enabled {
		s.disabled.Store(true)
		return nil
	}

	eng, err := s.newEngine(s.cfg.SampleRate)
	if err != nil || eng == nil {
		s.disabled.Store(true)
		return nil
	}
	if err := eng.Resume(); err != nil {
		s.disabled.Store(true)
		return nil
	}

	impulse := BuildImpulseResponse(eng, constant.ReverbSeconds, constant.ReverbDecayExponent, false, s.rng)
	s.eng = eng
	s.mix = NewMixGraph(eng, impulse, s.cfg.MasterLevel)
	s.synth = NewSynth(eng, s.mix, s.rng)
	s.transport = NewTransport(eng, s.synth, s.rng, s.tickerFunc())
	s.ready = true
	s.disabled.Store(false)
	return nil
}

// StartBGM stops any prior session and starts scheduling at the given
// intensity
func (s *Service) StartBGM(intensity core.Intensity) {
	s.mu.Lock()
	transport := s.transport
	s.mu.Unlock()

	if s.disabled.Load() || transport == nil {
		return
	}
	transport.Start(intensity)
}

// StopBGM halts scheduling; in-flight voices finish naturally
func (s *Service) StopBGM() {
	s.mu.Lock()
	transport := s.transport
	s.mu.Unlock()

	if transport == nil {
		return
	}
	transport.Stop()
}

// ToggleMute smoothly mutes or unmutes the master bus; returns true if
// output is now audible
func (s *Service) ToggleMute() bool {
	s.mu.Lock()
	mix := s.mix
	s.mu.Unlock()

	if s.disabled.Load() || mix == nil {
		return false
	}
	return mix.ToggleMute()
}

// IsMuted reports the master bus mute state
func (s *Service) IsMuted() bool {
	s.mu.Lock()
	mix := s.mix
	s.mu.Unlock()
	if mix == nil {
		return true
	}
	return mix.Muted()
}

// PlaySliceSfx fires the slice zap immediately. Independent of the
// transport; a no-op while muted or without a backend.
func (s *Service) PlaySliceSfx() {
	s.playSfx(Trigger{
		Instrument: core.InstrSliceSfx,
		Duration:   constant.SliceDuration,
		Level:      constant.SliceLevel * s.sfxGain(core.InstrSliceSfx),
	})
}

// PlayBombSfx fires the detonation rumble immediately; same rules as
// PlaySliceSfx
func (s *Service) PlayBombSfx() {
	s.playSfx(Trigger{
		Instrument: core.InstrBombSfx,
		Duration:   constant.BombDuration,
		Level:      constant.BombLevel * s.sfxGain(core.InstrBombSfx),
	})
}

func (s *Service) playSfx(trig Trigger) {
	s.mu.Lock()
	eng, mix, synth := s.eng, s.mix, s.synth
	s.mu.Unlock()

	if s.disabled.Load() || synth == nil {
		return
	}
	if mix.Muted() {
		synth.MarkDropped()
		return
	}
	synth.Schedule(trig, eng.Now())
}

func (s *Service) sfxGain(instr core.Instrument) float64 {
	if g, ok := s.cfg.SfxGains[instr]; ok {
		return g
	}
	return 1.0
}

// IsDisabled reports silent mode (no usable backend)
func (s *Service) IsDisabled() bool {
	return s.disabled.Load()
}

// Stats returns scheduled and dropped voice counts
func (s *Service) Stats() (scheduled, dropped uint64) {
	s.mu.Lock()
	synth := s.synth
	s.mu.Unlock()
	if synth == nil {
		return 0, 0
	}
	return synth.Stats()
}

// Transport exposes the scheduler, mainly for UIs showing the grid;
// nil before Init
func (s *Service) Transport() *Transport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transport
}

// Mix exposes the bus graph; nil before Init
func (s *Service) Mix() *MixGraph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mix
}

// Shutdown stops scheduling and releases the backend. The service
// returns to the uninitialized state; Init may be called again.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transport != nil {
		s.transport.Stop()
	}
	if s.eng != nil {
		s.eng.Close()
	}
	s.eng = nil
	s.mix = nil
	s.synth = nil
	s.transport = nil
	s.ready = false
}
