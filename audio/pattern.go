package audio

import (
	"github.com/jay870423/neon-slice/constant"
	"github.com/jay870423/neon-slice/core"
)

// Pattern rules are a pure lookup from (step, intensity) to triggers.
// Nothing here is stateful; the table is re-evaluated every tick.

// arpStepsHigh / arpStepsLow are the melody trigger positions
var (
	arpStepsHigh = [constant.StepsPerBar]bool{0: true, 3: true, 6: true, 9: true, 12: true, 14: true}
	arpStepsLow  = [constant.StepsPerBar]bool{0: true, 6: true, 12: true}
)

// TriggersForStep returns the instruments firing at the given grid step.
// Triggers share the step's start time; they are returned in a fixed
// instrument order so dispatch within a tick is deterministic apart
// from note choice.
func TriggersForStep(step int, intensity core.Intensity, rng Rand) []Trigger {
	step = ((step % constant.StepsPerBar) + constant.StepsPerBar) % constant.StepsPerBar
	high := intensity == core.IntensityHigh

	triggers := make([]Trigger, 0, 5)

	if kickAtStep(step, high) {
		triggers = append(triggers, Trigger{
			Instrument: core.InstrKick,
			Duration:   constant.KickDuration,
			Level:      constant.KickLevel,
		})
	}

	// Snare and clap land together on the backbeat in both modes
	if step%8 == 4 {
		triggers = append(triggers, Trigger{
			Instrument: core.InstrSnare,
			Duration:   constant.SnareDuration,
			Level:      constant.SnareLevel,
		})
	}

	if step%2 == 0 {
		triggers = append(triggers, Trigger{
			Instrument: core.InstrHiHat,
			Duration:   constant.HiHatClosedDuration,
			Level:      constant.HiHatLevel,
		})
	} else if high {
		// Open ticks fill the off-beats in high intensity only
		triggers = append(triggers, Trigger{
			Instrument: core.InstrHiHat,
			Duration:   constant.HiHatOpenDuration,
			Level:      constant.HiHatLevel,
		})
	}

	if trig, ok := bassAtStep(step, high); ok {
		triggers = append(triggers, trig)
	}
	if trig, ok := arpAtStep(step, high, rng); ok {
		triggers = append(triggers, trig)
	}

	return triggers
}

func kickAtStep(step int, high bool) bool {
	if high {
		return step%4 == 0
	}
	return step == 0 || step == 10
}

func bassAtStep(step int, high bool) (Trigger, bool) {
	if high {
		if step%2 != 0 {
			return Trigger{}, false
		}
		root := constant.ScaleFrequencies[0]
		if step >= 8 {
			root = constant.ScaleFrequencies[1]
		}
		return Trigger{
			Instrument: core.InstrBass,
			Freq:       root / 2, // one octave down
			Duration:   constant.BassShortDuration,
			Level:      constant.BassLevel,
		}, true
	}

	if step != 0 {
		return Trigger{}, false
	}
	return Trigger{
		Instrument: core.InstrBass,
		Freq:       constant.ScaleFrequencies[0] / 2,
		Duration:   constant.BassLongDuration,
		Level:      constant.BassLevel,
	}, true
}

func arpAtStep(step int, high bool, rng Rand) (Trigger, bool) {
	if high {
		if !arpStepsHigh[step] {
			return Trigger{}, false
		}
		// Lower half of the scale keeps the busy mode from getting shrill
		note := constant.ScaleFrequencies[rng.Intn(len(constant.ScaleFrequencies)/2)]
		return Trigger{
			Instrument: core.InstrArp,
			Freq:       note,
			Duration:   constant.ArpShortDuration,
			Level:      constant.ArpLevel,
		}, true
	}

	if !arpStepsLow[step] {
		return Trigger{}, false
	}
	note := constant.ScaleFrequencies[rng.Intn(len(constant.ScaleFrequencies))]
	return Trigger{
		Instrument: core.InstrArp,
		Freq:       note * 2, // higher octave
		Duration:   constant.ArpLongDuration,
		Level:      constant.ArpLevel,
	}, true
}
