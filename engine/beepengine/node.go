package beepengine

import (
	"sync"

	"github.com/jay870423/neon-slice/engine"
)

type nodeKind int

const (
	kindDestination nodeKind = iota
	kindOscillator
	kindBufferSource
	kindGain
	kindFilter
	kindConvolver
)

// node is one point in the realized signal graph. Voice-chain nodes are
// consumed when their source starts; bus nodes (the gain feeding the
// destination, convolvers) persist and are evaluated live.
type node struct {
	eng    *Engine
	kind   nodeKind
	shape  engine.Shape
	filter engine.FilterKind

	freq   *param
	gain   *param
	cutoff *param

	buf *buffer

	mu      sync.Mutex
	outs    []*node
	started bool
	stopped bool
	startAt float64
	stopAt  float64
}

func (n *node) Connect(dst engine.Node) {
	d, ok := dst.(*node)
	if !ok {
		return
	}

	n.mu.Lock()
	dup := false
	for _, o := range n.outs {
		if o == d {
			dup = true
			break
		}
	}
	if !dup {
		n.outs = append(n.outs, d)
	}
	n.mu.Unlock()

	// A gain wired straight into the destination is the live master bus
	if !dup && n.kind == kindGain && d.kind == kindDestination {
		n.eng.setMaster(n)
	}
}

func (n *node) outputs() []*node {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*node, len(n.outs))
	copy(out, n.outs)
	return out
}

func (n *node) Start(at float64) {
	n.mu.Lock()
	if n.started {
		n.mu.Unlock()
		return
	}
	n.started = true
	n.startAt = at
	n.mu.Unlock()

	n.eng.enqueue(n)
}

func (n *node) Stop(at float64) {
	n.mu.Lock()
	n.stopped = true
	n.stopAt = at
	n.mu.Unlock()
}

func (n *node) Frequency() engine.Param { return n.freq }
func (n *node) Gain() engine.Param      { return n.gain }
func (n *node) Cutoff() engine.Param    { return n.cutoff }

// buffer is engine-owned sample storage
type buffer struct {
	data [][]float64
	rate float64
}

func (b *buffer) Channels() int       { return len(b.data) }
func (b *buffer) SampleRate() float64 { return b.rate }

func (b *buffer) Frames() int {
	if len(b.data) == 0 {
		return 0
	}
	return len(b.data[0])
}

func (b *buffer) Data(channel int) []float64 {
	if channel < 0 || channel >= len(b.data) {
		return nil
	}
	return b.data[channel]
}
