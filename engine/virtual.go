package engine

import "sync"

// NodeKind discriminates virtual node types for inspection
type NodeKind int

const (
	KindDestination NodeKind = iota
	KindOscillator
	KindBufferSource
	KindGain
	KindFilter
	KindConvolver
)

// AutomationKind discriminates recorded automation events
type AutomationKind int

const (
	AutomationSetValue AutomationKind = iota
	AutomationLinearRamp
	AutomationExponentialRamp
	AutomationSetTarget
)

// AutomationEvent is one recorded parameter command
type AutomationEvent struct {
	Kind         AutomationKind
	Value        float64
	Time         float64
	TimeConstant float64
}

// StartEvent records a source start with its target time
type StartEvent struct {
	Node *VNode
	At   float64
}

// Virtual is an Engine that records every command instead of rendering.
// It doubles as the silent sink when no real backend exists and as the
// substitute backend in tests, where its clock is advanced manually.
type Virtual struct {
	mu         sync.Mutex
	sampleRate float64
	now        float64
	running    bool
	closed     bool
	dest       *VNode
	starts     []StartEvent
}

// NewVirtual creates a suspended virtual engine
func NewVirtual(sampleRate float64) *Virtual {
	v := &Virtual{sampleRate: sampleRate}
	v.dest = &VNode{eng: v, kind: KindDestination}
	return v
}

// Advance moves the clock forward by dt seconds
func (v *Virtual) Advance(dt float64) {
	v.mu.Lock()
	v.now += dt
	v.mu.Unlock()
}

// Starts returns every recorded source start in call order
func (v *Virtual) Starts() []StartEvent {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]StartEvent, len(v.starts))
	copy(out, v.starts)
	return out
}

// ResetStarts clears the recorded start log
func (v *Virtual) ResetStarts() {
	v.mu.Lock()
	v.starts = nil
	v.mu.Unlock()
}

func (v *Virtual) Now() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

func (v *Virtual) SampleRate() float64 { return v.sampleRate }

func (v *Virtual) Resume() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrEngineClosed
	}
	v.running = true
	return nil
}

func (v *Virtual) Running() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.running
}

func (v *Virtual) Destination() Node { return v.dest }

func (v *Virtual) NewBuffer(channels, frames int) Buffer {
	data := make([][]float64, channels)
	for i := range data {
		data[i] = make([]float64, frames)
	}
	return &memBuffer{data: data, rate: v.sampleRate}
}

func (v *Virtual) NewOscillator(shape Shape, freq float64) Oscillator {
	return &VNode{eng: v, kind: KindOscillator, shape: shape, freq: newVParam(freq)}
}

func (v *Virtual) NewBufferSource(buf Buffer) BufferSource {
	return &VNode{eng: v, kind: KindBufferSource, buf: buf}
}

func (v *Virtual) NewGain(value float64) Gain {
	return &VNode{eng: v, kind: KindGain, gain: newVParam(value)}
}

func (v *Virtual) NewFilter(kind FilterKind, cutoff float64) Filter {
	return &VNode{eng: v, kind: KindFilter, filter: kind, cutoff: newVParam(cutoff)}
}

func (v *Virtual) NewConvolver(impulse Buffer) Convolver {
	return &VNode{eng: v, kind: KindConvolver, buf: impulse}
}

func (v *Virtual) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.running = false
	return nil
}

// VNode is a recorded graph node
type VNode struct {
	eng    *Virtual
	kind   NodeKind
	shape  Shape
	filter FilterKind

	freq   *VParam
	gain   *VParam
	cutoff *VParam

	buf Buffer

	mu      sync.Mutex
	outs    []*VNode
	started bool
	startAt float64
	stopAt  float64
}

func (n *VNode) Kind() NodeKind         { return n.kind }
func (n *VNode) Shape() Shape           { return n.shape }
func (n *VNode) FilterKind() FilterKind { return n.filter }
func (n *VNode) Buffer() Buffer         { return n.buf }
func (n *VNode) Frequency() Param       { return n.freq }
func (n *VNode) Gain() Param            { return n.gain }
func (n *VNode) Cutoff() Param          { return n.cutoff }

func (n *VNode) FrequencyEvents() []AutomationEvent { return n.freq.Events() }
func (n *VNode) GainEvents() []AutomationEvent      { return n.gain.Events() }
func (n *VNode) CutoffEvents() []AutomationEvent    { return n.cutoff.Events() }

func (n *VNode) Connect(dst Node) {
	d, ok := dst.(*VNode)
	if !ok {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, o := range n.outs {
		if o == d {
			return
		}
	}
	n.outs = append(n.outs, d)
}

// Outputs returns the direct downstream nodes
func (n *VNode) Outputs() []*VNode {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*VNode, len(n.outs))
	copy(out, n.outs)
	return out
}

// Reaches reports whether dst is downstream of n
func (n *VNode) Reaches(dst Node) bool {
	d, ok := dst.(*VNode)
	if !ok {
		return false
	}
	seen := map[*VNode]bool{}
	var walk func(*VNode) bool
	walk = func(cur *VNode) bool {
		if cur == d {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
		for _, o := range cur.Outputs() {
			if walk(o) {
				return true
			}
		}
		return false
	}
	return walk(n)
}

func (n *VNode) Start(at float64) {
	n.mu.Lock()
	n.started = true
	n.startAt = at
	n.mu.Unlock()

	n.eng.mu.Lock()
	n.eng.starts = append(n.eng.starts, StartEvent{Node: n, At: at})
	n.eng.mu.Unlock()
}

func (n *VNode) Stop(at float64) {
	n.mu.Lock()
	n.stopAt = at
	n.mu.Unlock()
}

// StopTime returns the scheduled stop time (zero if never stopped)
func (n *VNode) StopTime() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stopAt
}

// VParam records automation commands
type VParam struct {
	mu     sync.Mutex
	value  float64
	events []AutomationEvent
}

func newVParam(initial float64) *VParam {
	return &VParam{value: initial}
}

func (p *VParam) SetValueAtTime(value, at float64) {
	p.record(AutomationEvent{Kind: AutomationSetValue, Value: value, Time: at})
	p.mu.Lock()
	p.value = value
	p.mu.Unlock()
}

func (p *VParam) LinearRampToValueAtTime(value, end float64) {
	p.record(AutomationEvent{Kind: AutomationLinearRamp, Value: value, Time: end})
}

func (p *VParam) ExponentialRampToValueAtTime(value, end float64) {
	p.record(AutomationEvent{Kind: AutomationExponentialRamp, Value: value, Time: end})
}

func (p *VParam) SetTargetAtTime(target, at, timeConstant float64) {
	p.record(AutomationEvent{Kind: AutomationSetTarget, Value: target, Time: at, TimeConstant: timeConstant})
}

func (p *VParam) Value() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// Events returns the recorded automation log
func (p *VParam) Events() []AutomationEvent {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]AutomationEvent, len(p.events))
	copy(out, p.events)
	return out
}

func (p *VParam) record(ev AutomationEvent) {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
}

// memBuffer is plain in-memory sample storage
type memBuffer struct {
	data [][]float64
	rate float64
}

func (b *memBuffer) Channels() int            { return len(b.data) }
func (b *memBuffer) SampleRate() float64      { return b.rate }
func (b *memBuffer) Data(channel int) []float64 {
	if channel < 0 || channel >= len(b.data) {
		return nil
	}
	return b.data[channel]
}

func (b *memBuffer) Frames() int {
	if len(b.data) == 0 {
		return 0
	}
	return len(b.data[0])
}
