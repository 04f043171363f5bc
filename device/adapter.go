package device

import (
	"github.com/torvik/auragraph"
	"github.com/torvik/auragraph/engine"
	"github.com/torvik/auragraph/graph"
)

// warmupQuanta is the number of render quanta that must be queued before
// the adapter starts draining, per spec.md §4.6.
const warmupQuanta = 4

// Adapter bridges a variable-size host I/O callback to the engine's
// fixed 128-frame render quanta: captured samples queue in an input
// RingBuffer (capacity 2x the default sample rate); once at least
// warmupQuanta quanta are buffered, each host callback first drains any
// carry-over from a previously rendered quantum, then renders fresh
// quanta via ctx.Render() as needed to fill the requested frame count.
type Adapter struct {
	ctx       *engine.Context
	inputRing *RingBuffer
	inputNode *graph.Node

	warmupDone bool
	pendingBus *auragraph.Bus
	pendingPos int
}

type inputBehavior struct {
	ring *RingBuffer
}

// NewAdapter constructs an Adapter around ctx. Its InputNode is not
// automatically wired into ctx's graph; callers Connect it like any
// other source to expose captured audio (e.g. into a recorder).
func NewAdapter(ctx *engine.Context) *Adapter {
	ring := NewRingBuffer(2 * auragraph.DefaultSampleRate)
	node := graph.New("deviceInput", 0, 1, ctx.SampleRate(), &inputBehavior{ring: ring})
	return &Adapter{ctx: ctx, inputRing: ring, inputNode: node}
}

// InputNode exposes the adapter's device-capture source node.
func (a *Adapter) InputNode() *graph.Node { return a.inputNode }

// HandleCallback implements the realtime device.Callback contract.
func (a *Adapter) HandleCallback(output, input []float32, frameCount int) {
	if frameCount == 0 {
		return
	}
	if len(input) > 0 {
		a.inputRing.Push(input)
	}

	if !a.warmupDone {
		if a.inputRing.AvailableForReading() < warmupQuanta*auragraph.FrameCount {
			zero(output)
			return
		}
		a.warmupDone = true
	}

	outChannels := a.ctx.OutputChannels()
	if outChannels <= 0 {
		outChannels = 1
	}

	written := 0
	for written < frameCount {
		if a.pendingBus == nil || a.pendingPos >= a.pendingBus.Length() {
			a.pendingBus = a.ctx.Render()
			a.pendingPos = 0
		}
		n := a.pendingBus.Length() - a.pendingPos
		if remaining := frameCount - written; n > remaining {
			n = remaining
		}
		srcChannels := a.pendingBus.NumberOfChannels()
		for i := 0; i < n; i++ {
			frameIdx := written + i
			for c := 0; c < outChannels; c++ {
				srcChan := c
				if srcChan >= srcChannels {
					srcChan = srcChannels - 1
				}
				output[frameIdx*outChannels+c] = a.pendingBus.Channel(srcChan).Data[a.pendingPos+i]
			}
		}
		a.pendingPos += n
		written += n
	}
}

func zero(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}
}

// Process implements graph.Behavior: it pops up to one quantum's worth of
// captured samples into the node's mono output, per spec.md §4.6's "pop
// 128 into the input channel-0 buffer."
func (b *inputBehavior) Process(tok auragraph.RenderToken, n *graph.Node) {
	out := n.Output(0).ActiveBus()
	ch := out.Channel(0)
	got := b.ring.Pop(ch.Data)
	for i := got; i < len(ch.Data); i++ {
		ch.Data[i] = 0
	}
	if got > 0 {
		ch.MarkNonSilent()
	} else {
		out.Zero()
	}
}

func (b *inputBehavior) TailTime() float64    { return 0 }
func (b *inputBehavior) LatencyTime() float64 { return 0 }
func (b *inputBehavior) Reset()               {}
