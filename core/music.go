package core

// Instrument identifies synthesizer voice recipes
type Instrument int

const (
	InstrKick Instrument = iota
	InstrSnare
	InstrHiHat
	InstrBass
	InstrArp
	InstrSliceSfx
	InstrBombSfx
	InstrumentCount
)

// Intensity selects tempo preset and pattern density
type Intensity int

const (
	IntensityLow Intensity = iota
	IntensityHigh
)

func (i Instrument) String() string {
	names := [...]string{"kick", "snare", "hihat", "bass", "arp", "slice_sfx", "bomb_sfx"}
	if int(i) < len(names) {
		return names[i]
	}
	return "unknown"
}

// IsPercussion returns true for unpitched instruments
func (i Instrument) IsPercussion() bool {
	return i == InstrKick || i == InstrSnare || i == InstrHiHat
}

// IsSfx returns true for one-shot effects outside the beat grid
func (i Instrument) IsSfx() bool {
	return i == InstrSliceSfx || i == InstrBombSfx
}

func (n Intensity) String() string {
	if n == IntensityHigh {
		return "high"
	}
	return "low"
}
