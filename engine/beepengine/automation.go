package beepengine

import (
	"math"
	"sync"
)

type automationKind int

const (
	autoSet automationKind = iota
	autoLinear
	autoExponential
	autoTarget
)

type automationEvent struct {
	kind         automationKind
	value        float64
	time         float64
	timeConstant float64
}

// param is an automatable scalar with a command timeline. Events are
// appended in non-decreasing time order by the core's recipes; valueAt
// resolves the curve at any instant.
type param struct {
	mu      sync.Mutex
	initial float64
	events  []automationEvent
}

func newParam(initial float64) *param {
	return &param{initial: initial}
}

func (p *param) SetValueAtTime(value, at float64) {
	p.append(automationEvent{kind: autoSet, value: value, time: at})
}

func (p *param) LinearRampToValueAtTime(value, end float64) {
	p.append(automationEvent{kind: autoLinear, value: value, time: end})
}

func (p *param) ExponentialRampToValueAtTime(value, end float64) {
	p.append(automationEvent{kind: autoExponential, value: value, time: end})
}

func (p *param) SetTargetAtTime(target, at, timeConstant float64) {
	if timeConstant <= 0 {
		p.append(automationEvent{kind: autoSet, value: target, time: at})
		return
	}
	p.append(automationEvent{kind: autoTarget, value: target, time: at, timeConstant: timeConstant})
}

func (p *param) Value() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.events) - 1; i >= 0; i-- {
		if p.events[i].kind == autoSet {
			return p.events[i].value
		}
	}
	return p.initial
}

func (p *param) append(ev automationEvent) {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
}

// automated reports whether any ramp or target command was issued,
// which decides between the static and swept filter paths
func (p *param) automated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ev := range p.events {
		if ev.kind != autoSet {
			return true
		}
	}
	return false
}

// valueAt evaluates the timeline at time t (seconds, engine clock)
func (p *param) valueAt(t float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := p.initial
	vt := 0.0
	var target *automationEvent

	for i := range p.events {
		ev := p.events[i]
		if ev.time > t {
			// A ramp scheduled past t shapes the value between its
			// anchor and its end point
			if ev.kind == autoLinear || ev.kind == autoExponential {
				if target != nil {
					v = targetValue(*target, v, t)
					target = nil
				}
				return rampValue(ev, v, vt, t)
			}
			break
		}

		switch ev.kind {
		case autoSet, autoLinear, autoExponential:
			v, vt = ev.value, ev.time
			target = nil
		case autoTarget:
			if target != nil {
				v = targetValue(*target, v, ev.time)
			}
			vt = ev.time
			target = &p.events[i]
		}
	}

	if target != nil {
		return targetValue(*target, v, t)
	}
	return v
}

// targetValue computes the asymptotic approach curve from startValue
// toward ev.value beginning at ev.time
func targetValue(ev automationEvent, startValue, t float64) float64 {
	if t <= ev.time {
		return startValue
	}
	return ev.value + (startValue-ev.value)*math.Exp(-(t-ev.time)/ev.timeConstant)
}

// rampValue interpolates between the anchor (v0 at t0) and the ramp
// end point at time t
func rampValue(ev automationEvent, v0, t0, t float64) float64 {
	if ev.time <= t0 {
		return ev.value
	}
	frac := (t - t0) / (ev.time - t0)
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}

	if ev.kind == autoExponential && v0 != 0 && ev.value*v0 > 0 {
		return v0 * math.Pow(ev.value/v0, frac)
	}
	return v0 + (ev.value-v0)*frac
}
