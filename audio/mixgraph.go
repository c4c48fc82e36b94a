package audio

import (
	"sync"

	"github.com/jay870423/neon-slice/constant"
	"github.com/jay870423/neon-slice/engine"
)

// MixGraph is the fixed bus topology every voice plays into: a master
// gain feeding the engine destination, and a convolution reverb send
// that itself feeds the master. Voices connect to the buses and are
// then forgotten; the graph itself lives for the whole session.
type MixGraph struct {
	eng    engine.Engine
	master engine.Gain
	reverb engine.Convolver

	mu    sync.Mutex
	level float64
	muted bool
}

// NewMixGraph wires the bus topology. The impulse buffer becomes the
// reverb kernel and must not be modified afterward.
func NewMixGraph(eng engine.Engine, impulse engine.Buffer, level float64) *MixGraph {
	level = clampUnit(level)

	master := eng.NewGain(level)
	master.Connect(eng.Destination())

	reverb := eng.NewConvolver(impulse)
	reverb.Connect(master)

	return &MixGraph{
		eng:    eng,
		master: master,
		reverb: reverb,
		level:  level,
	}
}

// Master returns the node voices connect to for dry output
func (m *MixGraph) Master() engine.Node {
	return m.master
}

// ReverbSend returns the node voices connect to for the wet path
func (m *MixGraph) ReverbSend() engine.Node {
	return m.reverb
}

// ToggleMute ramps the master gain between zero and the configured
// level. The ramp approaches its target with a time constant rather
// than jumping, so toggling never clicks. Voices already playing keep
// their own envelopes. Returns true if output is now audible.
func (m *MixGraph) ToggleMute() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.muted = !m.muted
	target := m.level
	if m.muted {
		target = 0
	}
	m.master.Gain().SetTargetAtTime(target, m.eng.Now(), constant.MuteRampTimeConstant)
	return !m.muted
}

// Muted reports the current mute state
func (m *MixGraph) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

// Level reports the configured unmuted master level
func (m *MixGraph) Level() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}
