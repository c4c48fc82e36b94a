package audio

import (
	"math"

	"github.com/jay870423/neon-slice/engine"
)

// BuildImpulseResponse fills a stereo buffer with decaying noise used as
// the reverb kernel. Each sample is uniform(-1,1) scaled by
// (1 - n/length)^decay, with n counted from the far end when reverse is
// set. Channels are generated independently. Built once at init and
// immutable afterward.
func BuildImpulseResponse(eng engine.Engine, seconds, decay float64, reverse bool, rng Rand) engine.Buffer {
	seconds = clampDuration(seconds)
	length := int(seconds * eng.SampleRate())
	if length < 1 {
		length = 1
	}

	buf := eng.NewBuffer(2, length)
	for ch := 0; ch < buf.Channels(); ch++ {
		data := buf.Data(ch)
		for i := range data {
			n := i
			if reverse {
				n = length - i
			}
			env := math.Pow(1-float64(n)/float64(length), decay)
			data[i] = (rng.Float64()*2 - 1) * env
		}
	}
	return buf
}
