// Package graph implements the node/input/output/summing-junction graph
// abstraction: the pull protocol, channel-count negotiation and silence
// propagation described by the engine's rendering model. It has no notion
// of locks or threads itself — auragraph/engine owns the graph lock and
// render lock and is the only caller allowed to hand out a
// auragraph.RenderToken.
package graph

// Consumer is anything a SummingJunction can attach to an Output's
// fan-out list: graph.Input and param.Param both implement it. Defined
// here (rather than as an empty interface) so the two packages don't
// need to import one another to share the concept.
type Consumer interface {
	// OnUpstreamChannelsChanged is called when the Output this consumer
	// is attached to changes its channel count, so the consumer can mark
	// its owner dirty for the next channel-count negotiation pass.
	OnUpstreamChannelsChanged()
}

// SummingJunction is the shared fan-in base for Input and param.Param: it
// holds the graph-thread's connectedOutputs (mutated only under the graph
// lock) and the render-thread's renderingOutputs snapshot (mutated only
// under the render lock, via UpdateRenderingState). dirty signals that the
// rendering view is stale and must be refreshed before the next pull.
type SummingJunction struct {
	connectedOutputs []*Output
	renderingOutputs []*Output
	dirty            bool
}

// IsConnected reports whether o is present in connectedOutputs. This is
// the single definition of "connected" used by both Connect and
// Disconnect — the spec's open question about an inverted isConnected
// check in the param-connect path does not apply here because there is
// only one implementation, shared by both paths.
func (j *SummingJunction) IsConnected(o *Output) bool {
	for _, x := range j.connectedOutputs {
		if x == o {
			return true
		}
	}
	return false
}

// Connect adds o to connectedOutputs if not already present and marks the
// junction dirty. Must be called under the graph lock.
func (j *SummingJunction) Connect(o *Output) {
	if j.IsConnected(o) {
		return
	}
	j.connectedOutputs = append(j.connectedOutputs, o)
	j.dirty = true
}

// Disconnect removes o from connectedOutputs and marks the junction
// dirty. Must be called under the graph lock.
func (j *SummingJunction) Disconnect(o *Output) {
	for i, x := range j.connectedOutputs {
		if x == o {
			j.connectedOutputs = append(j.connectedOutputs[:i], j.connectedOutputs[i+1:]...)
			j.dirty = true
			return
		}
	}
}

// Dirty reports whether the rendering view needs refreshing.
func (j *SummingJunction) Dirty() bool { return j.dirty }

// UpdateRenderingState snapshots connectedOutputs into renderingOutputs.
// Must be called only while the render lock is held, and only does work
// when dirty; Input.Pull and Param's rendering paths call it lazily before
// reading the snapshot, which is safe since it's a no-op when clean.
func (j *SummingJunction) UpdateRenderingState() {
	if !j.dirty {
		return
	}
	j.renderingOutputs = append(j.renderingOutputs[:0], j.connectedOutputs...)
	j.dirty = false
}

// RenderingOutputs returns the render-thread's current fan-in snapshot.
func (j *SummingJunction) RenderingOutputs() []*Output { return j.renderingOutputs }

// NumberOfRenderingOutputs is a convenience accessor used by the pull
// fast-path decision (exactly one rendering output forwards in-place).
func (j *SummingJunction) NumberOfRenderingOutputs() int { return len(j.renderingOutputs) }
