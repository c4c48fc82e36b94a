package audio

import (
	"math/rand"
	"testing"

	"github.com/jay870423/neon-slice/constant"
	"github.com/jay870423/neon-slice/core"
	"github.com/jay870423/neon-slice/engine"
)

func newTestSynth() (*Synth, *engine.Virtual, *MixGraph) {
	eng := engine.NewVirtual(constant.AudioSampleRate)
	eng.Resume()
	rng := rand.New(rand.NewSource(3))
	impulse := BuildImpulseResponse(eng, 0.01, constant.ReverbDecayExponent, false, rng)
	mix := NewMixGraph(eng, impulse, constant.MasterLevel)
	return NewSynth(eng, mix, rng), eng, mix
}

// lastStart returns the most recently started source node
func lastStart(t *testing.T, eng *engine.Virtual) engine.StartEvent {
	t.Helper()
	starts := eng.Starts()
	if len(starts) == 0 {
		t.Fatal("no voice was scheduled")
	}
	return starts[len(starts)-1]
}

// TestSynthKick verifies the kick chain: sine source, exponential pitch
// drop from 150Hz, exponential gain decay, master bus only
func TestSynthKick(t *testing.T) {
	synth, eng, mix := newTestSynth()
	synth.Schedule(Trigger{Instrument: core.InstrKick, Duration: constant.KickDuration, Level: constant.KickLevel}, 1.0)

	ev := lastStart(t, eng)
	if ev.At != 1.0 {
		t.Errorf("kick started at %v, want 1.0", ev.At)
	}
	if ev.Node.Kind() != engine.KindOscillator || ev.Node.Shape() != engine.ShapeSine {
		t.Errorf("kick source kind/shape = %v/%v, want oscillator/sine", ev.Node.Kind(), ev.Node.Shape())
	}
	if got := ev.Node.StopTime(); got != 1.0+constant.KickDuration {
		t.Errorf("kick stop time = %v, want %v", got, 1.0+constant.KickDuration)
	}

	freqEvents := ev.Node.FrequencyEvents()
	foundSweep := false
	for _, fe := range freqEvents {
		if fe.Kind == engine.AutomationExponentialRamp {
			foundSweep = true
			if fe.Value <= 0 {
				t.Errorf("pitch sweep targets %v; exponential ramps must stay positive", fe.Value)
			}
		}
	}
	if !foundSweep {
		t.Error("kick frequency has no exponential sweep")
	}

	if !ev.Node.Reaches(mix.Master()) {
		t.Error("kick does not reach the master bus")
	}
	if ev.Node.Reaches(mix.ReverbSend()) {
		t.Error("kick should not feed the reverb send")
	}
}

// TestSynthSnare verifies the snare chain: noise buffer through a
// high-pass at 800Hz, routed to both master and reverb
func TestSynthSnare(t *testing.T) {
	synth, eng, mix := newTestSynth()
	synth.Schedule(Trigger{Instrument: core.InstrSnare, Duration: constant.SnareDuration, Level: constant.SnareLevel}, 0.5)

	ev := lastStart(t, eng)
	if ev.Node.Kind() != engine.KindBufferSource {
		t.Fatalf("snare source kind = %v, want buffer source", ev.Node.Kind())
	}

	wantFrames := int(constant.SnareDuration * constant.AudioSampleRate)
	if got := ev.Node.Buffer().Frames(); got != wantFrames {
		t.Errorf("snare noise length = %d frames, want %d", got, wantFrames)
	}

	outs := ev.Node.Outputs()
	if len(outs) != 1 || outs[0].Kind() != engine.KindFilter || outs[0].FilterKind() != engine.FilterHighpass {
		t.Fatal("snare must run through a single high-pass filter")
	}
	if got := outs[0].Cutoff().Value(); got != constant.SnareFilterCutoff {
		t.Errorf("snare filter cutoff = %v, want %v", got, constant.SnareFilterCutoff)
	}

	if !ev.Node.Reaches(mix.Master()) {
		t.Error("snare does not reach the master bus")
	}
	if !ev.Node.Reaches(mix.ReverbSend()) {
		t.Error("snare does not reach the reverb send")
	}
}

// TestSynthHiHat verifies caller-supplied burst duration and dry-only
// routing
func TestSynthHiHat(t *testing.T) {
	synth, eng, mix := newTestSynth()
	synth.Schedule(Trigger{Instrument: core.InstrHiHat, Duration: constant.HiHatOpenDuration, Level: constant.HiHatLevel}, 0)

	ev := lastStart(t, eng)
	wantFrames := int(constant.HiHatOpenDuration * constant.AudioSampleRate)
	if got := ev.Node.Buffer().Frames(); got != wantFrames {
		t.Errorf("hi-hat noise length = %d frames, want %d", got, wantFrames)
	}
	if ev.Node.Reaches(mix.ReverbSend()) {
		t.Error("hi-hat should not feed the reverb send")
	}
}

// TestSynthBass verifies the low-pass sweep from 400Hz to 100Hz and a
// linear fade to zero
func TestSynthBass(t *testing.T) {
	synth, eng, _ := newTestSynth()
	synth.Schedule(Trigger{
		Instrument: core.InstrBass,
		Freq:       constant.ScaleFrequencies[0] / 2,
		Duration:   constant.BassShortDuration,
		Level:      constant.BassLevel,
	}, 2.0)

	ev := lastStart(t, eng)
	if ev.Node.Shape() != engine.ShapeSawtooth {
		t.Errorf("bass shape = %v, want sawtooth", ev.Node.Shape())
	}

	outs := ev.Node.Outputs()
	if len(outs) != 1 || outs[0].Kind() != engine.KindFilter || outs[0].FilterKind() != engine.FilterLowpass {
		t.Fatal("bass must run through a single low-pass filter")
	}

	var sweep *engine.AutomationEvent
	for _, ce := range outs[0].CutoffEvents() {
		if ce.Kind == engine.AutomationExponentialRamp {
			sweep = &ce
		}
	}
	if sweep == nil {
		t.Fatal("bass cutoff has no exponential sweep")
	}
	if sweep.Value != constant.BassCutoffEnd {
		t.Errorf("bass sweep target = %v, want %v", sweep.Value, constant.BassCutoffEnd)
	}
	if sweep.Time != 2.0+constant.BassShortDuration {
		t.Errorf("bass sweep ends at %v, want %v", sweep.Time, 2.0+constant.BassShortDuration)
	}

	gains := outs[0].Outputs()
	if len(gains) != 1 || gains[0].Kind() != engine.KindGain {
		t.Fatal("bass filter must feed a gain envelope")
	}
	var fade *engine.AutomationEvent
	for _, ge := range gains[0].GainEvents() {
		if ge.Kind == engine.AutomationLinearRamp {
			fade = &ge
		}
	}
	if fade == nil || fade.Value != 0 {
		t.Error("bass envelope must fade linearly to zero")
	}
}

// TestSynthArp verifies the chiptune square routed to both buses
func TestSynthArp(t *testing.T) {
	synth, eng, mix := newTestSynth()
	synth.Schedule(Trigger{
		Instrument: core.InstrArp,
		Freq:       constant.ScaleFrequencies[2],
		Duration:   constant.ArpShortDuration,
		Level:      constant.ArpLevel,
	}, 0)

	ev := lastStart(t, eng)
	if ev.Node.Shape() != engine.ShapeSquare {
		t.Errorf("arp shape = %v, want square", ev.Node.Shape())
	}
	if !ev.Node.Reaches(mix.Master()) || !ev.Node.Reaches(mix.ReverbSend()) {
		t.Error("arp must feed both master and reverb")
	}
}

// TestSynthSfxRecipes verifies the slice zap and bomb rumble shapes
func TestSynthSfxRecipes(t *testing.T) {
	synth, eng, mix := newTestSynth()

	synth.Schedule(Trigger{Instrument: core.InstrSliceSfx, Duration: constant.SliceDuration, Level: constant.SliceLevel}, 0)
	slice := lastStart(t, eng)
	if slice.Node.Kind() != engine.KindOscillator || slice.Node.Shape() != engine.ShapeSawtooth {
		t.Error("slice sfx must be a sawtooth oscillator")
	}
	if slice.Node.Reaches(mix.ReverbSend()) {
		t.Error("slice sfx should be dry only")
	}

	synth.Schedule(Trigger{Instrument: core.InstrBombSfx, Duration: constant.BombDuration, Level: constant.BombLevel}, 0)
	bomb := lastStart(t, eng)
	if bomb.Node.Kind() != engine.KindBufferSource {
		t.Error("bomb sfx must be a noise burst")
	}
	outs := bomb.Node.Outputs()
	if len(outs) != 1 || outs[0].FilterKind() != engine.FilterLowpass {
		t.Fatal("bomb sfx must run through a low-pass sweep")
	}
}

// TestSynthNoExponentialRampToZero verifies every exponential ramp in
// every recipe targets a positive floor; zero is undefined for
// geometric interpolation
func TestSynthNoExponentialRampToZero(t *testing.T) {
	synth, eng, _ := newTestSynth()

	triggers := []Trigger{
		{Instrument: core.InstrKick, Duration: constant.KickDuration, Level: constant.KickLevel},
		{Instrument: core.InstrSnare, Duration: constant.SnareDuration, Level: constant.SnareLevel},
		{Instrument: core.InstrHiHat, Duration: constant.HiHatClosedDuration, Level: constant.HiHatLevel},
		{Instrument: core.InstrBass, Freq: 110, Duration: constant.BassShortDuration, Level: constant.BassLevel},
		{Instrument: core.InstrArp, Freq: 440, Duration: constant.ArpShortDuration, Level: constant.ArpLevel},
		{Instrument: core.InstrSliceSfx, Duration: constant.SliceDuration, Level: constant.SliceLevel},
		{Instrument: core.InstrBombSfx, Duration: constant.BombDuration, Level: constant.BombLevel},
	}
	for _, trig := range triggers {
		synth.Schedule(trig, 0)
	}

	for _, ev := range eng.Starts() {
		checkNode(t, ev.Node)
	}
}

func checkNode(t *testing.T, n *engine.VNode) {
	t.Helper()
	for _, events := range [][]engine.AutomationEvent{n.FrequencyEvents(), n.GainEvents(), n.CutoffEvents()} {
		for _, ev := range events {
			if ev.Kind == engine.AutomationExponentialRamp && ev.Value <= 0 {
				t.Errorf("exponential ramp targets %v on %v node", ev.Value, n.Kind())
			}
		}
	}
	for _, out := range n.Outputs() {
		if out.Kind() == engine.KindGain || out.Kind() == engine.KindFilter {
			checkNode(t, out)
		}
	}
}

// TestSynthClampsDegenerateDuration verifies a non-positive duration is
// clamped rather than scheduling a zero-length voice
func TestSynthClampsDegenerateDuration(t *testing.T) {
	synth, eng, _ := newTestSynth()
	synth.Schedule(Trigger{Instrument: core.InstrHiHat, Duration: -1, Level: constant.HiHatLevel}, 0)

	ev := lastStart(t, eng)
	if ev.Node.Buffer().Frames() < 1 {
		t.Error("degenerate duration produced an empty noise buffer")
	}
}

// TestSynthStats verifies scheduled and dropped counters
func TestSynthStats(t *testing.T) {
	synth, _, _ := newTestSynth()
	synth.Schedule(Trigger{Instrument: core.InstrKick, Duration: constant.KickDuration, Level: constant.KickLevel}, 0)
	synth.MarkDropped()

	scheduled, dropped := synth.Stats()
	if scheduled != 1 || dropped != 1 {
		t.Errorf("stats = (%d, %d), want (1, 1)", scheduled, dropped)
	}
}
