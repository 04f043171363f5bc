package engine

import "github.com/torvik/auragraph/graph"

// phase orders how a pending node edge is drained: connects must be
// applied before disconnects, and disconnects must flip to
// finishDisconnect before that phase's countdown is consulted, so a
// single pass never both connects and immediately re-disconnects the
// same edge out of order.
type phase int

const (
	phaseConnect phase = iota
	phaseDisconnect
	phaseFinishDisconnect
)

// pendingNodeEdge is one entry in the context's deferred connection
// queue: {source, destination, destIndex, srcIndex, phase,
// remainingQuanta}, per spec.md's Pending connection type.
type pendingNodeEdge struct {
	src     *graph.Node
	srcIdx  int
	dest    *graph.Node
	destIdx int

	phase           phase
	remainingQuanta int
}

// pendingParamEdge is a param-modulation connect, applied directly under
// the graph lock without phase ordering (param edges have no fade).
type pendingParamEdge struct {
	param  paramTarget
	src    *graph.Node
	srcIdx int
}

// paramTarget is the narrow slice of param.Param the engine needs:
// Connect/Disconnect against a graph.Output. Defined as an interface
// here, rather than importing auragraph/param directly, to keep engine's
// dependency on param to exactly this edge, matching how graph.Consumer
// is factored to avoid import cycles.
type paramTarget interface {
	Connect(o *graph.Output)
	Disconnect(o *graph.Output)
}

// edge records a committed (wired) connection, so Disconnect can find it
// by endpoint and so the automatic-source sweep can find every edge
// fed by a finished scheduled source.
type edge struct {
	dest    *graph.Node
	destIdx int
	src     *graph.Node
	srcIdx  int
}

func (e edge) matches(dest *graph.Node, destIdx int, src *graph.Node, srcIdx int) bool {
	return e.dest == dest && e.destIdx == destIdx && e.src == src && e.srcIdx == srcIdx
}
