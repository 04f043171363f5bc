package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/torvik/auragraph"
	"github.com/torvik/auragraph/graph"
	"github.com/torvik/auragraph/internal/testnode"
)

func newTestContext(t *testing.T) (*Context, *graph.Node) {
	t.Helper()
	dest := graph.New("destination", 1, 0, auragraph.DefaultSampleRate, &testnode.PassThrough{})
	ctx := New(dest, WithDisconnectFadeDuration(0.02), WithConnectHorizon(0.05))
	t.Cleanup(ctx.Shutdown)
	return ctx, dest
}

// renderUntil polls Render until pred is satisfied or the deadline
// passes, giving the update goroutine time to drain the pending queue.
func renderUntil(ctx *Context, pred func(*auragraph.Bus) bool) *auragraph.Bus {
	deadline := time.Now().Add(500 * time.Millisecond)
	var out *auragraph.Bus
	for time.Now().Before(deadline) {
		out = ctx.Render()
		ctx.signalUpdate()
		if pred(out) {
			return out
		}
		time.Sleep(time.Millisecond)
	}
	return out
}

func TestConnectMakesDestinationNonSilent(t *testing.T) {
	ctx, dest := newTestContext(t)
	src := graph.New("src", 0, 1, auragraph.DefaultSampleRate, &testnode.Constant{Value: 0.5})

	if err := ctx.Connect(dest, 0, src, 0); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	out := renderUntil(ctx, func(b *auragraph.Bus) bool { return !b.IsSilent() })
	if out.IsSilent() {
		t.Fatal("destination never went non-silent after connect")
	}
}

func TestDisconnectFadesThenSilences(t *testing.T) {
	ctx, dest := newTestContext(t)
	src := graph.New("src", 0, 1, auragraph.DefaultSampleRate, &testnode.Constant{Value: 0.5})

	if err := ctx.Connect(dest, 0, src, 0); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	renderUntil(ctx, func(b *auragraph.Bus) bool { return !b.IsSilent() })

	if err := ctx.Disconnect(dest, 0, src, 0); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}

	out := renderUntil(ctx, func(b *auragraph.Bus) bool { return b.IsSilent() })
	if !out.IsSilent() {
		t.Fatal("destination never returned to silence after disconnect fade completed")
	}
}

func TestDisconnectWithoutConnectionIsError(t *testing.T) {
	ctx, dest := newTestContext(t)
	src := graph.New("src", 0, 1, auragraph.DefaultSampleRate, &testnode.Constant{Value: 0.5})

	err := ctx.Disconnect(dest, 0, src, 0)
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("want ErrNotConnected, got %v", err)
	}
}

func TestConnectRejectsOutOfRangeIndex(t *testing.T) {
	ctx, dest := newTestContext(t)
	src := graph.New("src", 0, 1, auragraph.DefaultSampleRate, &testnode.Constant{Value: 0.5})

	err := ctx.Connect(dest, 5, src, 0)
	if !errors.Is(err, ErrChannelIndexOutOfRange) {
		t.Fatalf("want ErrChannelIndexOutOfRange, got %v", err)
	}
}

func TestConnectRejectsCycle(t *testing.T) {
	ctx, dest := newTestContext(t)
	a := graph.New("a", 1, 1, auragraph.DefaultSampleRate, &testnode.PassThrough{})
	b := graph.New("b", 1, 1, auragraph.DefaultSampleRate, &testnode.PassThrough{})

	if err := ctx.Connect(dest, 0, a, 0); err != nil {
		t.Fatalf("Connect dest<-a: %v", err)
	}
	if err := ctx.Connect(a, 0, b, 0); err != nil {
		t.Fatalf("Connect a<-b: %v", err)
	}
	if err := ctx.Connect(b, 0, a, 0); !errors.Is(err, ErrCycle) {
		t.Fatalf("want ErrCycle, got %v", err)
	}
}

func TestAutomaticPullNodeIsProcessedEvenWithoutConsumer(t *testing.T) {
	ctx, _ := newTestContext(t)
	counter := &testnode.Counter{}
	sink := graph.New("sink", 1, 0, auragraph.DefaultSampleRate, counter)
	ctx.AddAutomaticPullNode(sink)

	for i := 0; i < 5; i++ {
		ctx.Render()
	}
	if counter.Calls == 0 {
		t.Fatal("automatic pull node was never processed")
	}
}
