package beepengine

import (
	"math"
	"testing"
)

func approx(t *testing.T, got, want, tol float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

// TestParamInitial verifies the constructor value holds before any
// automation command
func TestParamInitial(t *testing.T) {
	p := newParam(440)
	approx(t, p.valueAt(0), 440, 1e-12, "initial valueAt")
	approx(t, p.Value(), 440, 1e-12, "initial Value")
}

// TestParamSetValue verifies a pinned value takes effect at its time
// and not before
func TestParamSetValue(t *testing.T) {
	p := newParam(1.0)
	p.SetValueAtTime(0.5, 2.0)

	approx(t, p.valueAt(1.0), 1.0, 1e-12, "before set")
	approx(t, p.valueAt(2.0), 0.5, 1e-12, "at set")
	approx(t, p.valueAt(5.0), 0.5, 1e-12, "after set")
}

// TestParamLinearRamp verifies linear interpolation between the anchor
// and the ramp end point
func TestParamLinearRamp(t *testing.T) {
	p := newParam(0)
	p.SetValueAtTime(0, 0)
	p.LinearRampToValueAtTime(1.0, 1.0)

	approx(t, p.valueAt(0), 0, 1e-12, "ramp start")
	approx(t, p.valueAt(0.25), 0.25, 1e-12, "quarter ramp")
	approx(t, p.valueAt(0.5), 0.5, 1e-12, "half ramp")
	approx(t, p.valueAt(1.0), 1.0, 1e-12, "ramp end")
	approx(t, p.valueAt(2.0), 1.0, 1e-12, "past ramp end")
}

// TestParamExponentialRamp verifies geometric interpolation, the shape
// percussive decay envelopes rely on
func TestParamExponentialRamp(t *testing.T) {
	p := newParam(0)
	p.SetValueAtTime(1.0, 0)
	p.ExponentialRampToValueAtTime(0.01, 1.0)

	approx(t, p.valueAt(0), 1.0, 1e-12, "envelope start")
	// Geometric midpoint of 1.0 and 0.01 is 0.1
	approx(t, p.valueAt(0.5), 0.1, 1e-9, "envelope midpoint")
	approx(t, p.valueAt(1.0), 0.01, 1e-9, "envelope floor")
}

// TestParamSetTarget verifies the asymptotic approach curve: one time
// constant covers 1-1/e of the distance
func TestParamSetTarget(t *testing.T) {
	p := newParam(1.0)
	p.SetValueAtTime(1.0, 0)
	p.SetTargetAtTime(0, 1.0, 0.03)

	approx(t, p.valueAt(1.0), 1.0, 1e-12, "before approach begins")
	approx(t, p.valueAt(1.03), math.Exp(-1), 1e-9, "one time constant in")

	// Ten time constants out the value is effectively at the target
	if v := p.valueAt(1.3); v > 1e-4 {
		t.Errorf("valueAt ten time constants = %v, want near 0", v)
	}
}

// TestParamSetTargetInterrupted verifies a later set command cuts the
// approach curve off
func TestParamSetTargetInterrupted(t *testing.T) {
	p := newParam(1.0)
	p.SetTargetAtTime(0, 0, 0.03)
	p.SetValueAtTime(0.7, 0.1)

	approx(t, p.valueAt(0.2), 0.7, 1e-12, "value after interrupting set")
}

// TestParamZeroTimeConstant verifies a degenerate time constant
// collapses to an instant set
func TestParamZeroTimeConstant(t *testing.T) {
	p := newParam(1.0)
	p.SetTargetAtTime(0.2, 0.5, 0)

	approx(t, p.valueAt(0.4), 1.0, 1e-12, "before instant set")
	approx(t, p.valueAt(0.5), 0.2, 1e-12, "at instant set")
}

// TestParamAutomated verifies ramp commands flip the swept-filter path
// on while plain sets do not
func TestParamAutomated(t *testing.T) {
	p := newParam(400)
	p.SetValueAtTime(800, 0)
	if p.automated() {
		t.Error("set-only timeline reports automated")
	}
	p.ExponentialRampToValueAtTime(100, 0.4)
	if !p.automated() {
		t.Error("ramped timeline reports static")
	}
}
