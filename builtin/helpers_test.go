package builtin_test

import (
	"testing"
	"time"

	"github.com/torvik/auragraph"
	"github.com/torvik/auragraph/engine"
	"github.com/torvik/auragraph/graph"
	"github.com/torvik/auragraph/internal/testnode"
)

// newDestination builds a one-input, zero-output sink node suitable as an
// engine.Context's destination (Render mixes its input into the context's
// stereo destination bus): its own Behavior is never invoked (Render
// pulls the destination's Input directly), so any placeholder satisfies it.
func newDestination() *graph.Node {
	return graph.New("destination", 1, 0, auragraph.DefaultSampleRate, &testnode.PassThrough{})
}

func mustConnect(t *testing.T, ctx *engine.Context, dest *graph.Node, destIdx int, src *graph.Node, srcIdx int) {
	t.Helper()
	if err := ctx.Connect(dest, destIdx, src, srcIdx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
}

// renderSettled polls Render until pred is satisfied or a deadline
// passes, giving the update thread time to drain the pending connection
// queue asynchronously (Connect/Disconnect already wake it internally).
func renderSettled(ctx *engine.Context, pred func(*auragraph.Bus) bool) *auragraph.Bus {
	deadline := time.Now().Add(500 * time.Millisecond)
	var out *auragraph.Bus
	for time.Now().Before(deadline) {
		out = ctx.Render()
		if pred(out) {
			return out
		}
		time.Sleep(time.Millisecond)
	}
	return out
}
