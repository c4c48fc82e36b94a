package audio

import (
	"sync"
	"time"

	"github.com/jay870423/neon-slice/constant"
	"github.com/jay870423/neon-slice/core"
	"github.com/jay870423/neon-slice/engine"
)

// TickScheduler abstracts the recurring timer driving transport ticks,
// so tests can substitute a hand-cranked clock for a real timer.
type TickScheduler interface {
	// ScheduleNext arranges fn to run once after the delay, replacing
	// any previously pending callback
	ScheduleNext(after time.Duration, fn func())

	// Cancel drops the pending callback, if any
	Cancel()
}

// timerScheduler is the production TickScheduler on time.AfterFunc
type timerScheduler struct {
	mu    sync.Mutex
	timer *time.Timer
}

// NewTimerScheduler returns the real-timer TickScheduler
func NewTimerScheduler() TickScheduler {
	return &timerScheduler{}
}

func (s *timerScheduler) ScheduleNext(after time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(after, fn)
}

func (s *timerScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Transport owns tempo, the current grid step, and the look-ahead loop.
// Trigger generation happens on a coarse jittery timer, but voices are
// handed to the engine with exact start times, so jitter up to the
// schedule-ahead window never causes audible lateness. nextEventTime
// advances only by exact beat-period increments, never wall-clock
// deltas, so no timing error accumulates over a session.
type Transport struct {
	eng    engine.Engine
	synth  *Synth
	rng    Rand
	ticker TickScheduler

	mu            sync.Mutex
	playing       bool
	intensity     core.Intensity
	tempoBPM      float64
	currentStep   int
	nextEventTime float64
	generation    uint64
}

// NewTransport creates a stopped transport
func NewTransport(eng engine.Engine, synth *Synth, rng Rand, ticker TickScheduler) *Transport {
	return &Transport{
		eng:    eng,
		synth:  synth,
		rng:    rng,
		ticker: ticker,
	}
}

// Start begins a scheduled session at the intensity's tempo preset.
// If already playing the prior session is stopped first; restart is
// always safe and resets all step/time state. The first event lands a
// small offset in the future so it is never scheduled in the past.
func (t *Transport) Start(intensity core.Intensity) {
	t.mu.Lock()
	if t.playing {
		t.stopLocked()
	}

	t.playing = true
	t.intensity = intensity
	t.tempoBPM = tempoFor(intensity)
	t.currentStep = 0
	t.nextEventTime = t.eng.Now() + constant.FirstEventOffsetSeconds
	t.generation++
	gen := t.generation
	t.mu.Unlock()

	t.tick(gen)
}

// Stop halts scheduling. Voices already handed to the engine play out
// their programmed envelopes; cutting them off would click.
func (t *Transport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Transport) stopLocked() {
	if !t.playing {
		return
	}
	t.playing = false
	t.generation++
	t.ticker.Cancel()
}

// tick dispatches every step falling inside the schedule-ahead window,
// then re-arms the timer. A stale generation means the session this
// tick belonged to was stopped or replaced; it does nothing.
func (t *Transport) tick(gen uint64) {
	t.mu.Lock()
	if !t.playing || gen != t.generation {
		t.mu.Unlock()
		return
	}

	horizon := t.eng.Now() + constant.ScheduleAheadSeconds
	stepSeconds := (60.0 / t.tempoBPM) * 0.25

	for t.nextEventTime < horizon {
		for _, trig := range TriggersForStep(t.currentStep, t.intensity, t.rng) {
			t.synth.Schedule(trig, t.nextEventTime)
		}
		t.nextEventTime += stepSeconds
		t.currentStep = (t.currentStep + 1) % constant.StepsPerBar
	}
	t.mu.Unlock()

	t.ticker.ScheduleNext(constant.LookaheadInterval, func() { t.tick(gen) })
}

// Playing reports whether a session is scheduling
func (t *Transport) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing
}

// CurrentStep returns the next grid step to be scheduled
func (t *Transport) CurrentStep() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentStep
}

// NextEventTime returns the engine-clock time of the next step
func (t *Transport) NextEventTime() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nextEventTime
}

// TempoBPM returns the session tempo
func (t *Transport) TempoBPM() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tempoBPM
}

// Intensity returns the session intensity
func (t *Transport) Intensity() core.Intensity {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.intensity
}

func tempoFor(intensity core.Intensity) float64 {
	if intensity == core.IntensityHigh {
		return constant.TempoHighBPM
	}
	return constant.TempoLowBPM
}
