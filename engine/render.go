package engine

import (
	"github.com/torvik/auragraph"
	"github.com/torvik/auragraph/graph"
)

// nextToken advances the render frame counter and returns a RenderToken
// for the quantum about to be rendered. Only ever called from Render,
// which already holds the render lock — the one place in this module
// permitted to mint a token at all (see auragraph.RenderToken's doc
// comment for the honest caveat about Go not truly enforcing this).
func (c *Context) nextToken() auragraph.RenderToken {
	tok := auragraph.RenderToken{Frame: c.frame, Frames: c.cfg.FrameCount}
	c.frame += int64(c.cfg.FrameCount)
	return tok
}

// Render produces one quantum of output: it acquires the render lock,
// runs pre-render housekeeping, pulls the destination's single input
// (which recursively pulls the whole graph), pulls every automatic
// pull node, runs post-render housekeeping, and publishes the
// RenderQuantum descriptor via the lock-free LatestQuantum cell. The
// returned Bus is the context's reused destination bus — valid only
// until the next call to Render.
func (c *Context) Render() *auragraph.Bus {
	// Snapshot the automatic-pull set under graphMu *before* taking
	// renderMu: drainPending (engine/update.go) takes graphMu then
	// renderMu while draining the update queue, so taking them in the
	// opposite order here — renderMu first, then graphMu inside
	// pullAutomatic — would be a lock-order inversion between the render
	// thread and the update thread and could deadlock them against each
	// other. Reading the set is the only thing Render needs graphMu for;
	// once copied, the rest of the quantum runs under renderMu alone.
	nodes := c.snapshotAutomaticPull()

	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	tok := c.nextToken()
	c.handlePreRenderTasks()

	out := c.destination.Input(0).Pull(tok, c.destBus)
	if out != c.destBus {
		// The upstream output could not render in place (channel count
		// mismatch or fan-out), so mix its bus into the destination bus.
		c.destBus.Zero()
		c.destBus.SumFrom(out, c.destination.ChannelInterpretation())
		out = c.destBus
	}

	c.pullAutomatic(tok, nodes)

	c.handlePostRenderTasks()

	c.latest.Store(auragraph.RenderQuantum{
		Frame:      tok.Frame,
		Time:       float64(tok.Frame) / float64(c.cfg.SampleRate),
		SampleRate: c.cfg.SampleRate,
	})
	return out
}

func (c *Context) snapshotAutomaticPull() []*graph.Node {
	c.graphMu.Lock()
	defer c.graphMu.Unlock()
	nodes := make([]*graph.Node, 0, len(c.automaticPull))
	for _, n := range c.automaticPull {
		nodes = append(nodes, n)
	}
	return nodes
}

func (c *Context) pullAutomatic(tok auragraph.RenderToken, nodes []*graph.Node) {
	for _, n := range nodes {
		n.ProcessIfNecessary(tok)
	}
}

// handlePreRenderTasks and handlePostRenderTasks are the two hooks
// spec.md 4.2/5 calls out as happening-before and happening-after the
// pull. Dirty summing junctions refresh themselves lazily inside
// Input.Pull / Param.CalculateSampleAccurateValues (see
// graph.SummingJunction.UpdateRenderingState), so there is nothing left for these hooks to do
// beyond being the documented seam a future housekeeping task would hang
// off of.
func (c *Context) handlePreRenderTasks()  {}
func (c *Context) handlePostRenderTasks() {}
