package graph

import "github.com/torvik/auragraph"

// Input is a summing junction belonging to one node: the pull side of a
// graph edge. It owns an internal summing bus, used only when more than
// one output is connected.
type Input struct {
	SummingJunction
	node        *Node
	index       int
	summingBus  *auragraph.Bus
	sampleRate  int
	desiredChan int
}

// NewInput allocates an Input belonging to node at the given index.
func NewInput(node *Node, index, sampleRate int) *Input {
	return &Input{node: node, index: index, sampleRate: sampleRate, desiredChan: 1}
}

// OnUpstreamChannelsChanged implements Consumer: an upstream output
// resized, so this input's owning node needs its channel count
// renegotiated before the next process.
func (in *Input) OnUpstreamChannelsChanged() {
	in.node.MarkChannelCountDirty()
}

func (in *Input) ensureSummingBus() {
	if in.summingBus == nil || in.summingBus.NumberOfChannels() != in.desiredChan {
		in.summingBus = auragraph.NewBus(in.desiredChan, auragraph.FrameCount, in.sampleRate)
	}
}

// Connect wires output into this input and registers the reverse
// fan-out reference on output, so the output can tell how many consumers
// it has. Must be called under the graph lock.
func (in *Input) Connect(o *Output) {
	in.SummingJunction.Connect(o)
	o.addConsumer(in)
	in.node.MarkChannelCountDirty()
}

// Disconnect unwires output from this input. Must be called under the
// graph lock.
func (in *Input) Disconnect(o *Output) {
	in.SummingJunction.Disconnect(o)
	o.removeConsumer(in)
	in.node.MarkChannelCountDirty()
}

// SetDesiredChannels updates the channel count the input's summing bus
// (and in-place eligibility check) expects, following channel-count
// negotiation at the owning node.
func (in *Input) SetDesiredChannels(n int) { in.desiredChan = n }

// DesiredChannels returns the input's negotiated channel count.
func (in *Input) DesiredChannels() int { return in.desiredChan }

// Pull implements the pull protocol from the spec:
//
//	0 rendering outputs: zero inPlaceBus (or the summing bus) and return it.
//	1 rendering output:  forward directly, passing inPlaceBus through.
//	N rendering outputs: zero the summing bus, sum each output's bus in,
//	                     obeying the node's channel interpretation.
func (in *Input) Pull(tok auragraph.RenderToken, inPlaceBus *auragraph.Bus) *auragraph.Bus {
	in.UpdateRenderingState()
	outs := in.RenderingOutputs()
	switch len(outs) {
	case 0:
		if inPlaceBus != nil {
			inPlaceBus.Zero()
			return inPlaceBus
		}
		in.ensureSummingBus()
		in.summingBus.Zero()
		return in.summingBus
	case 1:
		return outs[0].Pull(tok, inPlaceBus)
	default:
		in.ensureSummingBus()
		in.summingBus.Zero()
		interp := in.node.ChannelInterpretation()
		for _, o := range outs {
			b := o.Pull(tok, nil)
			in.summingBus.SumFrom(b, interp)
		}
		return in.summingBus
	}
}
