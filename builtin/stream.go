package builtin

import (
	"sync"

	"github.com/torvik/auragraph"
	"github.com/torvik/auragraph/graph"
)

// StreamNode is a source driven by a client-supplied callback rather than
// a decoded buffer or the scheduled-source state machine — spec.md §6's
// StreamNode(channels).set(callback). It deliberately does not embed
// source.ScheduledBehavior: it has no start/end time, only an on/off
// callback the client swaps at will.
type StreamNode struct {
	*graph.Node
	behavior *streamBehavior
}

type streamBehavior struct {
	mu       sync.Mutex
	callback func(channels [][]float32, frames int)
}

// NewStreamNode constructs a 0-in/1-out StreamNode with the given output
// channel count.
func NewStreamNode(channels, sampleRate int) *StreamNode {
	b := &streamBehavior{}
	n := graph.New("stream", 0, 1, sampleRate, b)
	n.Output(0).Resize(channels)
	return &StreamNode{Node: n, behavior: b}
}

// Set installs (or clears, with nil) the callback invoked once per
// quantum with the output's per-channel sample slices to fill.
func (s *StreamNode) Set(callback func(channels [][]float32, frames int)) {
	s.behavior.mu.Lock()
	s.behavior.callback = callback
	s.behavior.mu.Unlock()
}

func (b *streamBehavior) Process(tok auragraph.RenderToken, n *graph.Node) {
	out := n.Output(0).ActiveBus()
	b.mu.Lock()
	cb := b.callback
	b.mu.Unlock()
	if cb == nil {
		out.Zero()
		return
	}
	bufs := make([][]float32, out.NumberOfChannels())
	for c := range bufs {
		bufs[c] = out.Channel(c).Data
	}
	cb(bufs, out.Length())
	for c := range bufs {
		out.Channel(c).MarkNonSilent()
	}
}

func (b *streamBehavior) TailTime() float64    { return 0 }
func (b *streamBehavior) LatencyTime() float64 { return 0 }
func (b *streamBehavior) Reset()               {}
