package builtin_test

import (
	"sync"
	"testing"
	"time"

	"github.com/torvik/auragraph"
	"github.com/torvik/auragraph/builtin"
	"github.com/torvik/auragraph/codec"
	"github.com/torvik/auragraph/engine"
)

// TestAudioPlayerScheduledStartAndOnEndedFiresOnce grounds spec scenario
// 2: play(after) delays the first non-silent frame, the source samples
// come through verbatim, and onEnded fires exactly once at end of file.
func TestAudioPlayerScheduledStartAndOnEndedFiresOnce(t *testing.T) {
	dest := newDestination()
	ctx := engine.New(dest)
	t.Cleanup(ctx.Shutdown)

	sampleRate := ctx.SampleRate()
	totalFrames := sampleRate // 1 second, mono
	samples := make([]float32, totalFrames)
	for i := range samples {
		samples[i] = 0.75
	}
	decoded := &codec.Decoded{Samples: samples, Channels: 1, SampleRate: sampleRate}

	player := builtin.NewAudioPlayer(ctx, decoded)
	var mu sync.Mutex
	endedCount := 0
	player.OnEnded(func() {
		mu.Lock()
		endedCount++
		mu.Unlock()
	})

	mustConnect(t, ctx, dest, 0, player.Node, 0)

	// Give the update thread a few quanta to drain the connect before
	// anchoring the schedule, so the "silent prefix" check below exercises
	// the scheduling delay itself rather than connection latency.
	for i := 0; i < 10; i++ {
		ctx.Render()
		time.Sleep(time.Millisecond)
	}

	t0 := ctx.CurrentTime()
	player.Play(t0 + 0.01) // 441 frames after the anchor at 44100 Hz

	collected := make([]float32, 0, totalFrames+auragraph.FrameCount)
	for len(collected) < totalFrames+2*auragraph.FrameCount {
		out := ctx.Render()
		collected = append(collected, out.Channel(0).Data...)
	}

	// collected[0] corresponds to the quantum right after t0, one
	// FrameCount ahead of the anchor, so the scheduling delay measured
	// from collected's own index zero is shorter by that much.
	startFrame := int(0.01*float64(sampleRate)) - auragraph.FrameCount
	for i := 0; i < startFrame; i++ {
		if collected[i] != 0 {
			t.Fatalf("frame %d before scheduled start: want 0, got %v", i, collected[i])
		}
	}
	for i := 0; i < totalFrames; i++ {
		if collected[startFrame+i] != 0.75 {
			t.Fatalf("frame %d: want source sample 0.75, got %v", i, collected[startFrame+i])
		}
	}
	for i := startFrame + totalFrames; i < len(collected); i++ {
		if collected[i] != 0 {
			t.Fatalf("frame %d after end of file: want 0, got %v", i, collected[i])
		}
	}

	if !player.Finished() {
		t.Fatal("player should report Finished after end of file")
	}

	// Drain the dispatcher; OnEnded runs asynchronously off the render
	// thread, never inline.
	for i := 0; i < 50; i++ {
		mu.Lock()
		count := endedCount
		mu.Unlock()
		if count > 0 {
			break
		}
		ctx.Render()
		time.Sleep(time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if endedCount != 1 {
		t.Fatalf("want onEnded to fire exactly once, got %d", endedCount)
	}
}
