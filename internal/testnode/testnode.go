// Package testnode provides small graph.Behavior implementations shared
// across graph, engine and builtin tests, grounded on the teacher's own
// mock package (a configurable pump/sink stand-in used throughout its
// test suite instead of duplicating fakes per package).
package testnode

import (
	"github.com/torvik/auragraph"
	"github.com/torvik/auragraph/graph"
)

// Constant is a Behavior that writes a constant value into every channel
// of every output, useful for exercising summing, gain and mixing logic
// without needing a real source node.
type Constant struct {
	Value float32
}

func (c *Constant) Process(tok auragraph.RenderToken, n *graph.Node) {
	for i := 0; i < n.NumberOfOutputs(); i++ {
		b := n.Output(i).ActiveBus()
		for ch := 0; ch < b.NumberOfChannels(); ch++ {
			channel := b.Channel(ch)
			for s := range channel.Data {
				channel.Data[s] = c.Value
			}
			channel.MarkNonSilent()
		}
	}
}

func (c *Constant) TailTime() float64    { return 0 }
func (c *Constant) LatencyTime() float64 { return 0 }
func (c *Constant) Reset()               {}

// PassThrough copies input 0 to output 0 verbatim, for exercising
// pull-chain plumbing without any signal transformation.
type PassThrough struct{}

func (PassThrough) Process(tok auragraph.RenderToken, n *graph.Node) {
	in := n.InputBus(0)
	out := n.Output(0).ActiveBus()
	if in == nil {
		out.Zero()
		return
	}
	out.CopyFrom(in)
}

func (PassThrough) TailTime() float64    { return 0 }
func (PassThrough) LatencyTime() float64 { return 0 }
func (PassThrough) Reset()               {}

// Counter records how many times Process has run, for verifying the
// at-most-once-per-quantum guarantee.
type Counter struct {
	Calls int
}

func (c *Counter) Process(tok auragraph.RenderToken, n *graph.Node) {
	c.Calls++
	for i := 0; i < n.NumberOfOutputs(); i++ {
		n.Output(i).ActiveBus().Zero()
	}
}

func (c *Counter) TailTime() float64    { return 0 }
func (c *Counter) LatencyTime() float64 { return 0 }
func (c *Counter) Reset()               { c.Calls = 0 }
