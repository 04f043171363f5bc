package engine

import (
	"fmt"

	"github.com/torvik/auragraph/graph"
)

// Connect enqueues a connect pending edge wiring src's srcIdx'th output
// into dest's destIdx'th input. It validates indices and rejects cycles
// synchronously; the wiring itself is only visible to the render thread
// once the update thread has drained this entry under the graph lock.
func (c *Context) Connect(dest *graph.Node, destIdx int, src *graph.Node, srcIdx int) error {
	if destIdx < 0 || destIdx >= dest.NumberOfInputs() {
		return fmt.Errorf("%w: dest input %d (node has %d)", ErrChannelIndexOutOfRange, destIdx, dest.NumberOfInputs())
	}
	if srcIdx < 0 || srcIdx >= src.NumberOfOutputs() {
		return fmt.Errorf("%w: src output %d (node has %d)", ErrChannelIndexOutOfRange, srcIdx, src.NumberOfOutputs())
	}

	c.graphMu.Lock()
	defer c.graphMu.Unlock()

	c.updateMu.Lock()
	cycle := wouldCreateCycle(src, dest, c.pending)
	c.updateMu.Unlock()
	if cycle {
		return ErrCycle
	}

	c.updateMu.Lock()
	c.pending = append(c.pending, pendingNodeEdge{src: src, srcIdx: srcIdx, dest: dest, destIdx: destIdx, phase: phaseConnect})
	c.updateMu.Unlock()
	c.signalUpdate()
	return nil
}

// Disconnect enqueues a two-phase disconnect of the edge from src's
// srcIdx'th output into dest's destIdx'th input. Returns ErrNotConnected
// if no such edge is currently committed.
func (c *Context) Disconnect(dest *graph.Node, destIdx int, src *graph.Node, srcIdx int) error {
	c.graphMu.Lock()
	found := false
	for _, e := range c.edges {
		if e.matches(dest, destIdx, src, srcIdx) {
			found = true
			break
		}
	}
	c.graphMu.Unlock()
	if !found {
		return ErrNotConnected
	}

	c.updateMu.Lock()
	c.pending = append(c.pending, pendingNodeEdge{src: src, srcIdx: srcIdx, dest: dest, destIdx: destIdx, phase: phaseDisconnect})
	c.updateMu.Unlock()
	c.signalUpdate()
	return nil
}

// ConnectParam enqueues a param-modulation connect: src's srcIdx'th
// output will sum into p's automation timeline.
func (c *Context) ConnectParam(p paramTarget, src *graph.Node, srcIdx int) error {
	if srcIdx < 0 || srcIdx >= src.NumberOfOutputs() {
		return fmt.Errorf("%w: src output %d (node has %d)", ErrChannelIndexOutOfRange, srcIdx, src.NumberOfOutputs())
	}
	c.updateMu.Lock()
	c.params = append(c.params, pendingParamEdge{param: p, src: src, srcIdx: srcIdx})
	c.updateMu.Unlock()
	c.signalUpdate()
	return nil
}

// DisconnectParam unwires p from src's srcIdx'th output immediately —
// param edges have no crossfade, so there is nothing to defer.
func (c *Context) DisconnectParam(p paramTarget, src *graph.Node, srcIdx int) {
	c.graphMu.Lock()
	defer c.graphMu.Unlock()
	p.Disconnect(src.Output(srcIdx))
}
