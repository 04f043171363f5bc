package builtin

import (
	"math"
	"sync"

	"github.com/torvik/auragraph"
	"github.com/torvik/auragraph/engine"
	"github.com/torvik/auragraph/graph"
)

// MeteringNode is a sink with no outputs, registered with the engine's
// automatic-pull-node set, that tracks RMS and peak amplitude over its
// most recently processed quantum — a metering tap a client can poll
// without otherwise affecting the graph's signal path.
type MeteringNode struct {
	*graph.Node
	behavior *meteringBehavior
}

type meteringBehavior struct {
	mu   sync.Mutex
	rms  float32
	peak float32
}

// NewMeteringNode constructs a metering tap with outputChannels inputs,
// registered with ctx's automatic-pull-node set.
func NewMeteringNode(ctx *engine.Context, outputChannels int) *MeteringNode {
	b := &meteringBehavior{}
	n := graph.New("metering", 1, 0, ctx.SampleRate(), b)
	n.Input(0).SetDesiredChannels(outputChannels)
	ctx.AddAutomaticPullNode(n)
	return &MeteringNode{Node: n, behavior: b}
}

func (b *meteringBehavior) Process(tok auragraph.RenderToken, n *graph.Node) {
	in := n.InputBus(0)
	if in == nil {
		return
	}
	var sumSq float32
	var peak float32
	count := 0
	for c := 0; c < in.NumberOfChannels(); c++ {
		ch := in.Channel(c)
		for _, v := range ch.Data {
			sumSq += v * v
			av := v
			if av < 0 {
				av = -av
			}
			if av > peak {
				peak = av
			}
			count++
		}
	}
	var rms float32
	if count > 0 {
		rms = float32(math.Sqrt(float64(sumSq) / float64(count)))
	}
	b.mu.Lock()
	b.rms, b.peak = rms, peak
	b.mu.Unlock()
}

// TailTime reports +Inf: a metering tap has no output bus for the
// silence-propagation shortcut to zero, so it must never be skipped via
// that path or its readings would go stale the quantum after the input
// falls silent.
func (b *meteringBehavior) TailTime() float64    { return math.Inf(1) }
func (b *meteringBehavior) LatencyTime() float64 { return 0 }

func (b *meteringBehavior) Reset() {
	b.mu.Lock()
	b.rms, b.peak = 0, 0
	b.mu.Unlock()
}

// RMS returns the root-mean-square amplitude over the most recently
// processed quantum, across all input channels.
func (m *MeteringNode) RMS() float32 {
	m.behavior.mu.Lock()
	defer m.behavior.mu.Unlock()
	return m.behavior.rms
}

// Peak returns the peak absolute sample value over the most recently
// processed quantum, across all input channels.
func (m *MeteringNode) Peak() float32 {
	m.behavior.mu.Lock()
	defer m.behavior.mu.Unlock()
	return m.behavior.peak
}
