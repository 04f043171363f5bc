package engine

import (
	"time"

	"github.com/torvik/auragraph/graph"
)

// runUpdateLoop is the dedicated thread from spec.md 4.2: wait on a
// signal (bounded by ~16 quanta of audio time), then drain the pending
// queues under the graph lock. It exits once the client has called
// Shutdown and graphKeepAlive has decayed to zero with nothing left
// queued, so any in-flight disconnect fade finishes cleanly first.
func (c *Context) runUpdateLoop() {
	defer close(c.done)
	ticker := time.NewTicker(c.updateWaitBound())
	defer ticker.Stop()
	for {
		c.drainPending()

		c.graphMu.Lock()
		running := c.running
		keepAlive := c.graphKeepAlive
		c.graphMu.Unlock()
		c.updateMu.Lock()
		queued := len(c.pending) + len(c.params)
		c.updateMu.Unlock()
		if !running && keepAlive <= 0 && queued == 0 {
			return
		}

		select {
		case <-c.wake:
		case <-ticker.C:
		}
	}
}

// fadeStep is the per-quantum gain increment that completes a linear
// fade over DisconnectFadeDuration seconds.
func (c *Context) fadeStep() float32 {
	quanta := c.fadeQuanta()
	if quanta <= 0 {
		return 1
	}
	return float32(1) / float32(quanta)
}

func (c *Context) fadeQuanta() int {
	quantumSeconds := float64(c.cfg.FrameCount) / float64(c.cfg.SampleRate)
	if quantumSeconds <= 0 {
		return 1
	}
	n := int(c.cfg.DisconnectFadeDuration/quantumSeconds + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}

func scheduledStart(n *graph.Node) (float64, bool) {
	stp, ok := n.Behavior().(startTimeProvider)
	if !ok {
		return 0, false
	}
	return stp.PendingOrStartTime()
}

// drainPending applies pending param edges directly, then drains the
// node-edge queue in connect < disconnect < finishDisconnect phase
// order, re-queuing anything deferred (a connect past the horizon, a
// disconnect/finishDisconnect still mid-fade) for the next pass.
func (c *Context) drainPending() {
	c.updateMu.Lock()
	nodeBatch := c.pending
	c.pending = nil
	paramBatch := c.params
	c.params = nil
	c.updateMu.Unlock()

	c.graphMu.Lock()
	defer c.graphMu.Unlock()
	// Structural mutation (wiring/unwiring edges, resizing buses) must
	// only happen while the render thread is between quanta, per
	// spec.md 5 — so the update thread also takes the render lock for
	// the span in which it actually touches shared junction/output
	// state, even though enqueueing (Connect/Disconnect) only needs the
	// graph lock.
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	for _, pe := range paramBatch {
		pe.param.Connect(pe.src.Output(pe.srcIdx))
	}

	var connects, disconnects, finishes []pendingNodeEdge
	for _, pe := range nodeBatch {
		switch pe.phase {
		case phaseConnect:
			connects = append(connects, pe)
		case phaseDisconnect:
			disconnects = append(disconnects, pe)
		case phaseFinishDisconnect:
			finishes = append(finishes, pe)
		}
	}

	var requeue []pendingNodeEdge
	horizon := c.CurrentTime() + c.cfg.ConnectHorizon

	for _, pe := range connects {
		if st, ok := scheduledStart(pe.src); ok && st > horizon {
			requeue = append(requeue, pe)
			continue
		}
		pe.dest.Input(pe.destIdx).Connect(pe.src.Output(pe.srcIdx))
		pe.src.SetFade(1, c.fadeStep())
		c.edges = append(c.edges, edge{dest: pe.dest, destIdx: pe.destIdx, src: pe.src, srcIdx: pe.srcIdx})
	}

	for _, pe := range disconnects {
		pe.src.SetFade(0, c.fadeStep())
		pe.phase = phaseFinishDisconnect
		pe.remainingQuanta = c.fadeQuanta()
		if pe.remainingQuanta > c.graphKeepAlive {
			c.graphKeepAlive = pe.remainingQuanta
		}
		requeue = append(requeue, pe)
	}

	for _, pe := range finishes {
		pe.remainingQuanta--
		if pe.remainingQuanta > 0 {
			requeue = append(requeue, pe)
			continue
		}
		pe.dest.Input(pe.destIdx).Disconnect(pe.src.Output(pe.srcIdx))
		c.removeEdge(pe.dest, pe.destIdx, pe.src, pe.srcIdx)
	}

	if len(requeue) > 0 {
		c.updateMu.Lock()
		c.pending = append(c.pending, requeue...)
		c.updateMu.Unlock()
	}

	c.sweepFinishedAutomaticSources()

	if c.graphKeepAlive > 0 {
		c.graphKeepAlive--
	}
}

func (c *Context) removeEdge(dest *graph.Node, destIdx int, src *graph.Node, srcIdx int) {
	for i, e := range c.edges {
		if e.matches(dest, destIdx, src, srcIdx) {
			c.edges = append(c.edges[:i], c.edges[i+1:]...)
			return
		}
	}
}

// sweepFinishedAutomaticSources enqueues a disconnect for every edge fed
// by a registered scheduled source once it reports Finished(), so a
// one-shot AudioPlayer is unwired automatically instead of leaking a
// permanently-silent edge. Must be called with c.graphMu held.
func (c *Context) sweepFinishedAutomaticSources() {
	for id, as := range c.automaticSources {
		if !as.finisher.Finished() {
			continue
		}
		for _, e := range c.edges {
			if e.src != as.node {
				continue
			}
			c.updateMu.Lock()
			c.pending = append(c.pending, pendingNodeEdge{
				src: e.src, srcIdx: e.srcIdx, dest: e.dest, destIdx: e.destIdx, phase: phaseDisconnect,
			})
			c.updateMu.Unlock()
		}
		delete(c.automaticSources, id)
	}
}
