package graph

import "github.com/torvik/auragraph"

// Output is one output slot of a Node. It owns an internal bus of
// desiredNumberOfChannels x FrameCount frames, and exposes a one-shot
// "in-place" optimization: when exactly one consumer pulls this quantum
// and that consumer's bus already has the matching channel count, Pull
// writes directly into the consumer's bus and returns it, skipping the
// internal bus entirely.
type Output struct {
	node            *Node
	index           int
	desiredChannels int
	sampleRate      int
	internalBus     *auragraph.Bus
	activeBus       *auragraph.Bus // the bus Process() should write into this quantum

	consumers []Consumer // non-owning back-references, for fan-out counting
}

// NewOutput allocates an Output owned by node at the given index.
func NewOutput(node *Node, index, desiredChannels, sampleRate int) *Output {
	o := &Output{
		node:            node,
		index:           index,
		desiredChannels: desiredChannels,
		sampleRate:      sampleRate,
		internalBus:     auragraph.NewBus(desiredChannels, auragraph.FrameCount, sampleRate),
	}
	o.activeBus = o.internalBus
	return o
}

// NumberOfChannels returns the output's current channel count.
func (o *Output) NumberOfChannels() int { return o.desiredChannels }

// Resize changes the output's channel count, reallocating the internal
// bus. Must only be called under the render lock at a quantum boundary.
func (o *Output) Resize(channels int) {
	if channels == o.desiredChannels {
		return
	}
	o.desiredChannels = channels
	o.internalBus = auragraph.NewBus(channels, auragraph.FrameCount, o.sampleRate)
	o.activeBus = o.internalBus
	for _, c := range o.consumers {
		c.OnUpstreamChannelsChanged()
	}
}

// addConsumer registers a fan-out reference, used only for the in-place
// eligibility count; it does not imply ownership.
func (o *Output) addConsumer(c Consumer) {
	o.consumers = append(o.consumers, c)
}

// AddConsumer is the exported form of addConsumer, for collaborators
// outside this package (param.Param) that need to register themselves as
// a fan-out consumer without going through graph.Input.
func (o *Output) AddConsumer(c Consumer) { o.addConsumer(c) }

// RemoveConsumer is the exported form of removeConsumer.
func (o *Output) RemoveConsumer(c Consumer) { o.removeConsumer(c) }

// ConsumerNodes returns the owning Node of every graph.Input consumer
// currently registered on this output (param.Param consumers are
// skipped — they never own a Node). Used by the engine's cycle check.
func (o *Output) ConsumerNodes() []*Node {
	var nodes []*Node
	for _, c := range o.consumers {
		if in, ok := c.(*Input); ok {
			nodes = append(nodes, in.node)
		}
	}
	return nodes
}

func (o *Output) removeConsumer(c Consumer) {
	for i, x := range o.consumers {
		if x == c {
			o.consumers = append(o.consumers[:i], o.consumers[i+1:]...)
			return
		}
	}
}

// Pull renders this output's owning node if necessary and returns the bus
// holding this output's signal for the current quantum. inPlaceBus, when
// non-nil, is eligible only if this output currently has exactly one
// consumer across the whole graph (not just from the caller's point of
// view) and inPlaceBus's channel count matches.
func (o *Output) Pull(tok auragraph.RenderToken, inPlaceBus *auragraph.Bus) *auragraph.Bus {
	inPlaceEligible := inPlaceBus != nil &&
		len(o.consumers) <= 1 &&
		inPlaceBus.NumberOfChannels() == o.desiredChannels

	if inPlaceEligible {
		o.activeBus = inPlaceBus
	} else {
		o.activeBus = o.internalBus
	}

	o.node.processIfNecessary(tok)
	return o.activeBus
}

// ActiveBus is the bus Process() should write this output's samples
// into for the current quantum; set by Pull before processIfNecessary
// calls into the node's Behavior.
func (o *Output) ActiveBus() *auragraph.Bus { return o.activeBus }
