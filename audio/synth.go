package audio

import (
	"sync"

	"github.com/jay870423/neon-slice/constant"
	"github.com/jay870423/neon-slice/core"
	"github.com/jay870423/neon-slice/engine"
)

// Synth realizes triggers as short-lived signal chains: a source,
// an optional filter sweep, a gain envelope, and bus connections.
// Chains are fire-and-forget; once started the engine owns them and
// the synth never revisits one.
type Synth struct {
	eng engine.Engine
	mix *MixGraph
	rng Rand

	statsMu   sync.Mutex
	scheduled uint64
	dropped   uint64
}

// NewSynth creates a synth scheduling into the given engine and buses
func NewSynth(eng engine.Engine, mix *MixGraph, rng Rand) *Synth {
	return &Synth{eng: eng, mix: mix, rng: rng}
}

// Schedule realizes one trigger at the given engine-clock start time.
// Never blocks; with no usable engine it is a no-op.
func (s *Synth) Schedule(trig Trigger, at float64) {
	if s.eng == nil {
		s.markDropped()
		return
	}

	switch trig.Instrument {
	case core.InstrKick:
		s.scheduleKick(trig, at)
	case core.InstrSnare:
		s.scheduleSnare(trig, at)
	case core.InstrHiHat:
		s.scheduleHiHat(trig, at)
	case core.InstrBass:
		s.scheduleBass(trig, at)
	case core.InstrArp:
		s.scheduleArp(trig, at)
	case core.InstrSliceSfx:
		s.scheduleSlice(trig, at)
	case core.InstrBombSfx:
		s.scheduleBomb(trig, at)
	default:
		s.markDropped()
		return
	}

	s.statsMu.Lock()
	s.scheduled++
	s.statsMu.Unlock()
}

// Stats returns scheduled and dropped voice counts
func (s *Synth) Stats() (scheduled, dropped uint64) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.scheduled, s.dropped
}

// MarkDropped records a trigger that was suppressed before scheduling
func (s *Synth) MarkDropped() {
	s.markDropped()
}

func (s *Synth) markDropped() {
	s.statsMu.Lock()
	s.dropped++
	s.statsMu.Unlock()
}

// scheduleKick: sine with an exponential pitch drop from 150Hz and a
// matching amplitude decay. The thump lives in the sweep.
func (s *Synth) scheduleKick(trig Trigger, at float64) {
	dur := clampDuration(trig.Duration)

	osc := s.eng.NewOscillator(engine.ShapeSine, constant.KickStartFreq)
	osc.Frequency().SetValueAtTime(constant.KickStartFreq, at)
	osc.Frequency().ExponentialRampToValueAtTime(constant.EnvelopeFloor, at+dur)

	gain := s.envelopeExp(trig.Level, at, dur)
	osc.Connect(gain)
	gain.Connect(s.mix.Master())

	osc.Start(at)
	osc.Stop(at + dur)
}

// scheduleSnare: high-passed noise burst, sent both dry and to the
// reverb so the backbeat carries the room
func (s *Synth) scheduleSnare(trig Trigger, at float64) {
	dur := clampDuration(trig.Duration)

	src := s.eng.NewBufferSource(s.noiseBuffer(dur))
	filter := s.eng.NewFilter(engine.FilterHighpass, constant.SnareFilterCutoff)
	gain := s.envelopeExp(trig.Level, at, dur)

	src.Connect(filter)
	filter.Connect(gain)
	gain.Connect(s.mix.Master())
	gain.Connect(s.mix.ReverbSend())

	src.Start(at)
}

// scheduleHiHat: short high-passed noise tick, dry only. Duration is
// caller-supplied; the open variant just rings a little longer.
func (s *Synth) scheduleHiHat(trig Trigger, at float64) {
	dur := clampDuration(trig.Duration)

	src := s.eng.NewBufferSource(s.noiseBuffer(dur))
	filter := s.eng.NewFilter(engine.FilterHighpass, constant.HiHatFilterCutoff)
	gain := s.envelopeExp(trig.Level, at, dur)

	src.Connect(filter)
	filter.Connect(gain)
	gain.Connect(s.mix.Master())

	src.Start(at)
}

// scheduleBass: sawtooth through a closing low-pass sweep, linear fade
func (s *Synth) scheduleBass(trig Trigger, at float64) {
	dur := clampDuration(trig.Duration)

	osc := s.eng.NewOscillator(engine.ShapeSawtooth, trig.Freq)

	filter := s.eng.NewFilter(engine.FilterLowpass, constant.BassCutoffStart)
	filter.Cutoff().SetValueAtTime(constant.BassCutoffStart, at)
	filter.Cutoff().ExponentialRampToValueAtTime(constant.BassCutoffEnd, at+dur)

	gain := s.eng.NewGain(0)
	gain.Gain().SetValueAtTime(trig.Level, at)
	gain.Gain().LinearRampToValueAtTime(0, at+dur)

	osc.Connect(filter)
	filter.Connect(gain)
	gain.Connect(s.mix.Master())

	osc.Start(at)
	osc.Stop(at + dur)
}

// scheduleArp: square-wave chiptune note, dry plus reverb send
func (s *Synth) scheduleArp(trig Trigger, at float64) {
	dur := clampDuration(trig.Duration)

	osc := s.eng.NewOscillator(engine.ShapeSquare, trig.Freq)

	gain := s.eng.NewGain(0)
	gain.Gain().SetValueAtTime(trig.Level, at)
	gain.Gain().LinearRampToValueAtTime(0, at+dur)

	osc.Connect(gain)
	gain.Connect(s.mix.Master())
	gain.Connect(s.mix.ReverbSend())

	osc.Start(at)
	osc.Stop(at + dur)
}

// scheduleSlice: descending sawtooth zap for a successful slice
func (s *Synth) scheduleSlice(trig Trigger, at float64) {
	dur := clampDuration(trig.Duration)

	osc := s.eng.NewOscillator(engine.ShapeSawtooth, constant.SliceStartFreq)
	osc.Frequency().SetValueAtTime(constant.SliceStartFreq, at)
	osc.Frequency().ExponentialRampToValueAtTime(constant.SliceEndFreq, at+dur)

	gain := s.envelopeExp(trig.Level, at, dur)
	osc.Connect(gain)
	gain.Connect(s.mix.Master())

	osc.Start(at)
	osc.Stop(at + dur)
}

// scheduleBomb: noise burst through a collapsing low-pass for the
// detonation rumble
func (s *Synth) scheduleBomb(trig Trigger, at float64) {
	dur := clampDuration(trig.Duration)
	sweep := constant.BombSweepTime
	if sweep > dur {
		sweep = dur
	}

	src := s.eng.NewBufferSource(s.noiseBuffer(dur))

	filter := s.eng.NewFilter(engine.FilterLowpass, constant.BombCutoffStart)
	filter.Cutoff().SetValueAtTime(constant.BombCutoffStart, at)
	filter.Cutoff().ExponentialRampToValueAtTime(constant.BombCutoffEnd, at+sweep)

	gain := s.eng.NewGain(0)
	gain.Gain().SetValueAtTime(trig.Level, at)
	gain.Gain().ExponentialRampToValueAtTime(constant.EnvelopeFloor, at+sweep)

	src.Connect(filter)
	filter.Connect(gain)
	gain.Connect(s.mix.Master())

	src.Start(at)
}

// envelopeExp builds a gain node with an exponential decay from level
// to the envelope floor over dur. Exponential ramps cannot target zero,
// so the floor stands in for silence.
func (s *Synth) envelopeExp(level float64, at, dur float64) engine.Gain {
	gain := s.eng.NewGain(0)
	gain.Gain().SetValueAtTime(level, at)
	gain.Gain().ExponentialRampToValueAtTime(constant.EnvelopeFloor, at+dur)
	return gain
}

// noiseBuffer fills a mono buffer with white noise of the given length
func (s *Synth) noiseBuffer(seconds float64) engine.Buffer {
	frames := int(seconds * s.eng.SampleRate())
	if frames < 1 {
		frames = 1
	}
	buf := s.eng.NewBuffer(1, frames)
	data := buf.Data(0)
	for i := range data {
		data[i] = s.rng.Float64()*2 - 1
	}
	return buf
}
