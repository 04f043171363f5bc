package graph

import (
	"github.com/rs/xid"
	"github.com/torvik/auragraph"
)

// ID stably identifies a node for its lifetime. The engine keys its
// automatic-pull and automatic-source sets and its cycle check's visited
// set by ID; committed edges still hold *Node pointers.
type ID = xid.ID

// NewID mints a new node identity.
func NewID() ID { return xid.New() }

// ChannelCountMode controls how a node reacts to a change in its inputs'
// fan-in channel counts.
type ChannelCountMode int

const (
	// Max takes the largest connected output channel count.
	Max ChannelCountMode = iota
	// ClampedMax is Max, clamped to the node's own explicit channel count.
	ClampedMax
	// Explicit uses the node's explicit channel count verbatim.
	Explicit
)

// Behavior is the capability set a concrete node implements: the
// replacement for the teacher spec's deep inheritance hierarchy
// (Node -> ScheduledSourceNode -> Player, Node -> BasicInspectorNode ->
// Recorder). Scheduling machinery that several node kinds share lives in
// auragraph/source.ScheduledBehavior, composed into a Behavior rather than
// inherited.
type Behavior interface {
	// Process is called at most once per render quantum, after inputs
	// have been pulled, unless every input is silent and the node's
	// silence has outlasted its tail and latency (see propagatesSilence).
	// It must write into every output's ActiveBus().
	Process(tok auragraph.RenderToken, n *Node)
	// TailTime is how long, in seconds, output may remain audible after
	// input goes silent (e.g. a reverb's decay). Most nodes return 0.
	TailTime() float64
	// LatencyTime is inherent processing latency in seconds.
	LatencyTime() float64
	// Reset clears any internal state (e.g. de-zipper, filter memory).
	Reset()
}

// Node is the graph's processing unit: an identity, ordered inputs and
// outputs, a channel-count policy, and a Behavior. Cyclic back-references
// from input/output/junction to node are the only pointers a Node holds
// inward; everything else (edges) is recorded in the engine Context's
// edge list.
type Node struct {
	id      ID
	name    string
	inputs  []*Input
	outputs []*Output

	channelCountMode       ChannelCountMode
	explicitChannelCount    int
	channelInterpretation   auragraph.ChannelInterpretation
	channelCountDirty       bool

	behavior Behavior

	initialized       bool
	lastProcessingTime int64 // guards at-most-once process per quantum
	lastNonSilentTime  int64

	inputBuses []*auragraph.Bus // set by pullInputs, read by Behavior.Process

	// connect/disconnect crossfade, driven by the engine's pending
	// connection queue; see spec.md 4.2.
	fadeGain   float32
	fadeTarget float32
	fadeStep   float32
}

// New constructs a Node with numInputs inputs and numOutputs outputs, all
// initially 1-channel, at the given sample rate.
func New(name string, numInputs, numOutputs, sampleRate int, behavior Behavior) *Node {
	n := &Node{
		id:                    NewID(),
		name:                  name,
		channelCountMode:      Max,
		explicitChannelCount:  2,
		channelInterpretation: auragraph.Speakers,
		behavior:              behavior,
		fadeGain:              1,
		fadeTarget:            1,
		lastProcessingTime:    -1,
		lastNonSilentTime:     -1,
	}
	n.inputs = make([]*Input, numInputs)
	for i := range n.inputs {
		n.inputs[i] = NewInput(n, i, sampleRate)
	}
	n.outputs = make([]*Output, numOutputs)
	n.inputBuses = make([]*auragraph.Bus, numInputs)
	for i := range n.outputs {
		n.outputs[i] = NewOutput(n, i, 1, sampleRate)
	}
	return n
}

func (n *Node) ID() ID     { return n.id }
func (n *Node) Name() string { return n.name }

func (n *Node) NumberOfInputs() int  { return len(n.inputs) }
func (n *Node) NumberOfOutputs() int { return len(n.outputs) }

func (n *Node) Input(i int) *Input   { return n.inputs[i] }
func (n *Node) Output(i int) *Output { return n.outputs[i] }

// Behavior returns the node's processing behavior, for collaborators
// (the engine's connect-horizon check, the plugin host's parameter
// exposure) that need to inspect it by type assertion.
func (n *Node) Behavior() Behavior { return n.behavior }

func (n *Node) SetChannelCountMode(m ChannelCountMode) { n.channelCountMode = m; n.channelCountDirty = true }
func (n *Node) ChannelCountMode() ChannelCountMode      { return n.channelCountMode }

func (n *Node) SetExplicitChannelCount(c int) { n.explicitChannelCount = c; n.channelCountDirty = true }
func (n *Node) ExplicitChannelCount() int      { return n.explicitChannelCount }

func (n *Node) SetChannelInterpretation(ci auragraph.ChannelInterpretation) {
	n.channelInterpretation = ci
}
func (n *Node) ChannelInterpretation() auragraph.ChannelInterpretation {
	return n.channelInterpretation
}

// MarkChannelCountDirty flags that the node's channel count should be
// renegotiated before the next process. Safe to call from the graph
// thread; the actual renegotiation happens under the render lock.
func (n *Node) MarkChannelCountDirty() { n.channelCountDirty = true }

// InputBus returns the bus most recently produced by pulling input i.
func (n *Node) InputBus(i int) *auragraph.Bus { return n.inputBuses[i] }

// TailTime/LatencyTime delegate to the node's Behavior.
func (n *Node) TailTime() float64    { return n.behavior.TailTime() }
func (n *Node) LatencyTime() float64 { return n.behavior.LatencyTime() }

// Reset delegates to the node's Behavior and clears processing cursors.
func (n *Node) Reset() {
	n.behavior.Reset()
	n.lastProcessingTime = -1
	n.lastNonSilentTime = -1
}

// recomputeChannelCount implements the spec's per-mode negotiation:
// max/clampedMax/explicit over the largest connected output's channel
// count across all inputs.
func (n *Node) recomputeChannelCount() int {
	maxCount := 1
	for _, in := range n.inputs {
		for _, o := range in.RenderingOutputs() {
			if o.NumberOfChannels() > maxCount {
				maxCount = o.NumberOfChannels()
			}
		}
	}
	switch n.channelCountMode {
	case Explicit:
		return n.explicitChannelCount
	case ClampedMax:
		if maxCount > n.explicitChannelCount {
			return n.explicitChannelCount
		}
		return maxCount
	default:
		return maxCount
	}
}

// applyChannelCount propagates a newly negotiated channel count to every
// input's summing bus and every output's internal bus. Must run under the
// render lock at a quantum boundary.
func (n *Node) applyChannelCount(count int) {
	for _, in := range n.inputs {
		in.SetDesiredChannels(count)
	}
	for _, out := range n.outputs {
		out.Resize(count)
	}
}

// pullInputs refreshes n.inputBuses by pulling every input. Outputs with
// exactly one consumer elsewhere in the graph may still end up copying
// because pullInputs never has an in-place destination bus of its own to
// offer; only the destination's single input benefits from the
// whole-chain in-place optimization.
func (n *Node) pullInputs(tok auragraph.RenderToken) {
	for i, in := range n.inputs {
		n.inputBuses[i] = in.Pull(tok, nil)
	}
}

// propagatesSilence reports whether it's safe to skip Process and just
// zero the outputs: true once lastNonSilentTime + tailTime + latencyTime
// has fallen behind the current quantum's time.
func (n *Node) propagatesSilence(currentTime float64, sampleRate int) bool {
	if n.lastNonSilentTime < 0 {
		return false
	}
	lastNonSilentSeconds := float64(n.lastNonSilentTime) / float64(sampleRate)
	return lastNonSilentSeconds+n.TailTime()+n.LatencyTime() < currentTime
}

// processIfNecessary guards against double-processing within one render
// quantum (lastProcessingTime == tok.Frame), then pulls inputs, decides
// whether to propagate silence, and otherwise calls the node's Behavior.
func (n *Node) processIfNecessary(tok auragraph.RenderToken) {
	if n.lastProcessingTime == tok.Frame {
		return
	}
	n.lastProcessingTime = tok.Frame

	if n.channelCountDirty {
		n.applyChannelCount(n.recomputeChannelCount())
		n.channelCountDirty = false
	}

	n.pullInputs(tok)

	allSilent := true
	for _, b := range n.inputBuses {
		if b != nil && !b.IsSilent() {
			allSilent = false
			break
		}
	}

	currentTime := float64(tok.Frame) / float64(n.sampleRateHint())
	if allSilent && n.propagatesSilence(currentTime, n.sampleRateHint()) {
		for _, o := range n.outputs {
			o.ActiveBus().Zero()
		}
	} else {
		if !allSilent {
			n.lastNonSilentTime = tok.Frame
		}
		n.behavior.Process(tok, n)
	}
	n.applyFade()
}

// ProcessIfNecessary is the exported form of processIfNecessary, for the
// engine's automatic-pull-node set: sink nodes with no outputs of their
// own (AudioRecorderNode, MeteringNode) are never reached by any other
// node's ordinary input pull, so the engine has to force them to pull
// their own inputs and run Process directly, once per quantum.
func (n *Node) ProcessIfNecessary(tok auragraph.RenderToken) { n.processIfNecessary(tok) }

// sampleRateHint reads the sample rate off the first input or output; all
// buses in one graph share a sample rate so any of them will do.
func (n *Node) sampleRateHint() int {
	if len(n.outputs) > 0 {
		return n.outputs[0].sampleRate
	}
	if len(n.inputs) > 0 {
		return n.inputs[0].sampleRate
	}
	return auragraph.DefaultSampleRate
}

// SetFade starts (or retargets) a linear connect/disconnect crossfade:
// the node's output buses are scaled by a gain that steps from its
// current value to target by step each quantum, per spec.md 4.2's
// 100ms-default connect/disconnect fades.
func (n *Node) SetFade(target, step float32) {
	n.fadeTarget = target
	n.fadeStep = step
}

// FadeGain returns the current crossfade multiplier.
func (n *Node) FadeGain() float32 { return n.fadeGain }

func (n *Node) applyFade() {
	if n.fadeGain == n.fadeTarget {
		return
	}
	if n.fadeGain < n.fadeTarget {
		n.fadeGain += n.fadeStep
		if n.fadeGain > n.fadeTarget {
			n.fadeGain = n.fadeTarget
		}
	} else {
		n.fadeGain -= n.fadeStep
		if n.fadeGain < n.fadeTarget {
			n.fadeGain = n.fadeTarget
		}
	}
	for _, o := range n.outputs {
		b := o.ActiveBus()
		for c := 0; c < b.NumberOfChannels(); c++ {
			ch := b.Channel(c)
			if ch.IsSilent() {
				continue
			}
			for i := range ch.Data {
				ch.Data[i] *= n.fadeGain
			}
		}
	}
}
