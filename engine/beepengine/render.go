package beepengine

import (
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"

	"github.com/jay870423/neon-slice/engine"
)

const (
	// maxVoiceSeconds caps a source that was started but never given a
	// stop time
	maxVoiceSeconds = 10.0

	filterQ = 0.707
)

// playout is a fully rendered voice waiting on the sample clock
type playout struct {
	left       []float64
	right      []float64
	startFrame int64
}

// realize renders a started source chain into playouts. Voice chains
// are short-lived, so rendering the whole envelope up front trades a
// little memory for sample-exact automation. Runs with the engine lock
// held, before the frames containing the start time are mixed.
func (e *Engine) realize(src *node) []*playout {
	src.mu.Lock()
	at := src.startAt
	stopped, stopAt := src.stopped, src.stopAt
	src.mu.Unlock()

	dur := maxVoiceSeconds
	if stopped && stopAt > at {
		dur = stopAt - at
	}
	if src.kind == kindBufferSource && src.buf != nil {
		bufDur := float64(src.buf.Frames()) / e.sampleRate
		if !stopped || bufDur < dur {
			dur = bufDur
		}
	}

	frames := int(dur * e.sampleRate)
	if frames < 1 {
		return nil
	}

	dry := make([]float64, frames)
	switch src.kind {
	case kindOscillator:
		e.renderOscillator(src, dry, at)
	case kindBufferSource:
		renderBufferSource(src, dry)
	default:
		return nil
	}

	// Walk the chain below the source, applying in-line gains and
	// filters and noting which buses it lands on
	toMaster := false
	var reverb *node
	cur := src
	for hops := 0; hops < 8; hops++ {
		var next *node
		for _, out := range cur.outputs() {
			switch {
			case out.kind == kindConvolver:
				reverb = out
			case out.kind == kindDestination || out == e.master:
				toMaster = true
			default:
				next = out
			}
		}
		if next == nil {
			break
		}

		switch next.kind {
		case kindGain:
			applyGain(next.gain, dry, at, e.sampleRate)
		case kindFilter:
			e.applyFilter(next, dry, at)
		}
		cur = next
	}

	startFrame := int64(at * e.sampleRate)
	var outs []*playout
	if toMaster {
		outs = append(outs, &playout{left: dry, right: dry, startFrame: startFrame})
	}
	if reverb != nil && reverb.buf != nil {
		wetL := fftConvolve(dry, reverb.buf.Data(0))
		wetR := wetL
		if reverb.buf.Channels() > 1 {
			wetR = fftConvolve(dry, reverb.buf.Data(1))
		}
		outs = append(outs, &playout{left: wetL, right: wetR, startFrame: startFrame})
	}
	return outs
}

// renderOscillator fills buf with the source waveform, re-reading the
// frequency timeline every sample so pitch sweeps land per-sample
func (e *Engine) renderOscillator(src *node, buf []float64, at float64) {
	phase := 0.0
	for i := range buf {
		t := at + float64(i)/e.sampleRate
		freq := src.freq.valueAt(t)

		switch src.shape {
		case engine.ShapeSquare:
			if phase < 0.5 {
				buf[i] = 1.0
			} else {
				buf[i] = -1.0
			}
		case engine.ShapeSawtooth:
			buf[i] = 2.0 * (phase - 0.5)
		case engine.ShapeTriangle:
			buf[i] = 1.0 - 4.0*math.Abs(phase-0.5)
		default:
			buf[i] = math.Sin(2 * math.Pi * phase)
		}

		phase += freq / e.sampleRate
		phase -= math.Floor(phase)
	}
}

func renderBufferSource(src *node, buf []float64) {
	if src.buf == nil {
		return
	}
	channels := src.buf.Channels()
	if channels == 0 {
		return
	}
	for i := range buf {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			data := src.buf.Data(ch)
			if i < len(data) {
				sum += data[i]
			}
		}
		buf[i] = sum / float64(channels)
	}
}

func applyGain(p *param, buf []float64, at, sampleRate float64) {
	for i := range buf {
		buf[i] *= p.valueAt(at + float64(i)/sampleRate)
	}
}

// applyFilter runs the chain filter over buf. Static cutoffs go through
// a proper biquad section; swept cutoffs use a one-pole whose
// coefficient tracks the automation timeline sample by sample.
func (e *Engine) applyFilter(n *node, buf []float64, at float64) {
	if !n.cutoff.automated() {
		cutoff := clampCutoff(n.cutoff.Value(), e.sampleRate)
		var sec *biquad.Section
		if n.filter == engine.FilterHighpass {
			sec = biquad.NewSection(design.Highpass(cutoff, filterQ, e.sampleRate))
		} else {
			sec = biquad.NewSection(design.Lowpass(cutoff, filterQ, e.sampleRate))
		}
		for i := range buf {
			buf[i] = sec.ProcessSample(buf[i])
		}
		return
	}

	state := 0.0
	for i := range buf {
		t := at + float64(i)/e.sampleRate
		cutoff := clampCutoff(n.cutoff.valueAt(t), e.sampleRate)
		alpha := 1 - math.Exp(-2*math.Pi*cutoff/e.sampleRate)
		state += alpha * (buf[i] - state)
		if n.filter == engine.FilterHighpass {
			buf[i] -= state
		} else {
			buf[i] = state
		}
	}
}

func clampCutoff(cutoff, sampleRate float64) float64 {
	nyquist := sampleRate / 2
	if cutoff < 1 {
		return 1
	}
	if cutoff > nyquist*0.99 {
		return nyquist * 0.99
	}
	return cutoff
}

// fftConvolve convolves signal with kernel via a single zero-padded
// FFT round trip. The inverse transform uses the conjugate identity so
// only the forward plan is needed.
func fftConvolve(signal, kernel []float64) []float64 {
	outLen := len(signal) + len(kernel) - 1
	if outLen < 1 {
		return nil
	}

	size := 1
	for size < outLen {
		size <<= 1
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return timeConvolve(signal, kernel)
	}

	a := make([]complex128, size)
	b := make([]complex128, size)
	for i, v := range signal {
		a[i] = complex(v, 0)
	}
	for i, v := range kernel {
		b[i] = complex(v, 0)
	}

	fa := make([]complex128, size)
	fb := make([]complex128, size)
	if err := plan.Forward(fa, a); err != nil {
		return timeConvolve(signal, kernel)
	}
	if err := plan.Forward(fb, b); err != nil {
		return timeConvolve(signal, kernel)
	}

	for i := range fa {
		fa[i] = cmplxConj(fa[i] * fb[i])
	}
	if err := plan.Forward(fb, fa); err != nil {
		return timeConvolve(signal, kernel)
	}

	out := make([]float64, outLen)
	scale := 1 / float64(size)
	for i := range out {
		out[i] = real(cmplxConj(fb[i])) * scale
	}
	return out
}

func cmplxConj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}

// timeConvolve is the direct fallback when no FFT plan fits
func timeConvolve(signal, kernel []float64) []float64 {
	out := make([]float64, len(signal)+len(kernel)-1)
	for i, s := range signal {
		for j, k := range kernel {
			out[i+j] += s * k
		}
	}
	return out
}
