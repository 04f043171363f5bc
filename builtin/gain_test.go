package builtin_test

import (
	"testing"

	"github.com/torvik/auragraph"
	"github.com/torvik/auragraph/builtin"
	"github.com/torvik/auragraph/engine"
	"github.com/torvik/auragraph/graph"
	"github.com/torvik/auragraph/internal/testnode"
)

// TestGainNodeConvergesToFlatTarget grounds spec scenario 1: a 0.5
// constant mono source through a gain of 0.5 should settle both
// destination channels at 0.25, well within a handful of quanta.
func TestGainNodeConvergesToFlatTarget(t *testing.T) {
	dest := newDestination()
	ctx := engine.New(dest)
	t.Cleanup(ctx.Shutdown)

	src := graph.New("src", 0, 1, ctx.SampleRate(), &testnode.Constant{Value: 0.5})
	gain := builtin.NewGainNode(0.5, ctx.SampleRate())

	mustConnect(t, ctx, gain.Node, 0, src, 0)
	mustConnect(t, ctx, dest, 0, gain.Node, 0)

	var out *auragraph.Bus
	for i := 0; i < 10; i++ {
		out = renderSettled(ctx, func(b *auragraph.Bus) bool { return !b.IsSilent() })
	}

	if out.NumberOfChannels() != 2 {
		t.Fatalf("want 2 destination channels, got %d", out.NumberOfChannels())
	}
	for ch := 0; ch < out.NumberOfChannels(); ch++ {
		for _, v := range out.Channel(ch).Data {
			if diff := v - 0.25; diff > 1e-6 || diff < -1e-6 {
				t.Fatalf("channel %d: want 0.25±1e-6, got %v", ch, v)
			}
		}
	}
}

// TestGainNodeSampleAccurateRampFollowsLinearFormula grounds spec
// scenario 3: a gain ramping 1 -> 0 over 0.02s (882 samples at 44100 Hz)
// against a constant 1 source should trace max(0, 1 - n/882).
func TestGainNodeSampleAccurateRampFollowsLinearFormula(t *testing.T) {
	dest := newDestination()
	ctx := engine.New(dest)
	t.Cleanup(ctx.Shutdown)

	src := graph.New("src", 0, 1, ctx.SampleRate(), &testnode.Constant{Value: 1})
	gain := builtin.NewGainNode(1, ctx.SampleRate())

	mustConnect(t, ctx, gain.Node, 0, src, 0)
	mustConnect(t, ctx, dest, 0, gain.Node, 0)

	renderSettled(ctx, func(b *auragraph.Bus) bool { return !b.IsSilent() })

	anchor := ctx.CurrentFrame()
	t0 := ctx.CurrentTime()
	gain.Gain.CancelScheduledValues(0)
	gain.Gain.SetValueAtTime(1, t0)
	gain.Gain.LinearRampToValueAtTime(0, t0+0.02)

	rampSamples := 882
	cursor := 0
	for cursor < rampSamples+auragraph.FrameCount {
		out := ctx.Render()
		base := ctx.CurrentFrame() - anchor
		for i, v := range out.Channel(0).Data {
			n := base + int64(i)
			if n < 0 {
				continue
			}
			want := float32(1) - float32(n)/882
			if want < 0 {
				want = 0
			}
			if diff := v - want; diff > 1e-4 || diff < -1e-4 {
				t.Fatalf("frame %d: want %v, got %v", n, want, v)
			}
		}
		cursor += auragraph.FrameCount
	}
}
