// Package builtin implements the node kinds spec.md §6 names as concrete
// constructors over the graph/param/source/engine packages: GainNode,
// PannerNode, AudioPlayer, AudioRecorderNode, MeteringNode, StreamNode,
// plus the plugin-hosting convenience constructor from SPEC_FULL.md §4.7
// (the device-adapter one, Wire, lives in device/portaudio).
package builtin

import (
	"github.com/torvik/auragraph"
	"github.com/torvik/auragraph/graph"
	"github.com/torvik/auragraph/param"
)

// GainNode scales its input by a "gain" param, de-zippered per spec.md
// §4.5 when the param has no sample-accurate timeline/modulation, or
// evaluated per-sample via CopyWithSampleAccurateGainValues when it does.
type GainNode struct {
	*graph.Node
	Gain *param.Param
}

type gainBehavior struct {
	gain       *param.Param
	sampleRate int
}

// NewGainNode constructs a 1-in/1-out GainNode with the given default
// gain, grounded on spec.md §4.5's copyWithGain/
// copyWithSampleAccurateGainValues split.
func NewGainNode(defaultGain float32, sampleRate int) *GainNode {
	gain := param.New("gain", defaultGain, 0, 1, sampleRate)
	b := &gainBehavior{gain: gain, sampleRate: sampleRate}
	return &GainNode{
		Node: graph.New("gain", 1, 1, sampleRate, b),
		Gain: gain,
	}
}

func (b *gainBehavior) Process(tok auragraph.RenderToken, n *graph.Node) {
	in := n.InputBus(0)
	out := n.Output(0).ActiveBus()
	if b.gain.HasSampleAccurateValues() {
		buf := param.BorrowScratch(out.Length())
		startTime := float64(tok.Frame) / float64(b.sampleRate)
		endTime := float64(tok.Frame+int64(tok.Frames)) / float64(b.sampleRate)
		b.gain.CalculateSampleAccurateValues(tok, startTime, endTime, buf)
		out.CopyWithSampleAccurateGainValues(in, buf)
		param.ReturnScratch(buf)
		return
	}
	out.CopyWithGain(in, 1, b.gain.Value())
}

func (b *gainBehavior) TailTime() float64    { return 0 }
func (b *gainBehavior) LatencyTime() float64 { return 0 }

// Reset is a no-op: the param's automation timeline persists across a
// node reset by design (matching Web Audio AudioParam semantics), and the
// de-zipper ramp state lives in graph.Output's Bus, not in the behavior.
func (b *gainBehavior) Reset() {}
