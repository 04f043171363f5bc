package builtin

import (
	"math"

	"github.com/torvik/auragraph"
	"github.com/torvik/auragraph/graph"
	"github.com/torvik/auragraph/param"
)

// PannerNode applies equal-power stereo panning to a mono (or
// down-mixed) input via a "pan" param in [-1, 1], per spec.md scenario 4:
// angle = (pan+1)*pi/4, gainL = cos(angle), gainR = sin(angle), so
// pan=-1 is full left, pan=0 is center (√2/2, √2/2), pan=+1 is full right.
type PannerNode struct {
	*graph.Node
	Pan *param.Param
}

type pannerBehavior struct {
	pan *param.Param
}

// NewPannerNode constructs a 1-in/1-out(stereo) PannerNode at sampleRate.
func NewPannerNode(sampleRate int) *PannerNode {
	pan := param.New("pan", 0, -1, 1, sampleRate)
	b := &pannerBehavior{pan: pan}
	n := graph.New("panner", 1, 1, sampleRate, b)
	n.SetChannelCountMode(graph.Explicit)
	n.SetExplicitChannelCount(2)
	n.Output(0).Resize(2)
	return &PannerNode{Node: n, Pan: pan}
}

func (b *pannerBehavior) Process(tok auragraph.RenderToken, n *graph.Node) {
	in := n.InputBus(0)
	out := n.Output(0).ActiveBus()
	if in.IsSilent() {
		out.Zero()
		return
	}

	gainL, gainR := equalPowerGains(b.pan.Value())

	left, right := out.Channel(0), out.Channel(1)
	src := in.Channel(0)
	for i, v := range src.Data {
		left.Data[i] = v * gainL
		right.Data[i] = v * gainR
	}
	left.MarkNonSilent()
	right.MarkNonSilent()
}

func equalPowerGains(pan float32) (float32, float32) {
	if pan < -1 {
		pan = -1
	}
	if pan > 1 {
		pan = 1
	}
	angle := float64(pan+1) * 0.25 * math.Pi
	return float32(math.Cos(angle)), float32(math.Sin(angle))
}

func (b *pannerBehavior) TailTime() float64    { return 0 }
func (b *pannerBehavior) LatencyTime() float64 { return 0 }
func (b *pannerBehavior) Reset()               {}
