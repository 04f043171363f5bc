package builtin_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/torvik/auragraph"
	"github.com/torvik/auragraph/builtin"
	"github.com/torvik/auragraph/codec/wav"
	"github.com/torvik/auragraph/engine"
	"github.com/torvik/auragraph/graph"
	"github.com/torvik/auragraph/internal/testnode"
)

// TestRecorderRoundTripsThroughWAV grounds spec scenario 6 with a constant
// test source standing in for device output: source -> recorder, record,
// write WAV, decode back into a buffer.
func TestRecorderRoundTripsThroughWAV(t *testing.T) {
	dest := newDestination()
	ctx := engine.New(dest)
	t.Cleanup(ctx.Shutdown)

	sampleRate := ctx.SampleRate()
	src := graph.New("src", 0, 1, sampleRate, &testnode.Constant{Value: 0.25})
	recorder := builtin.NewAudioRecorderNode(ctx, 1)

	mustConnect(t, ctx, recorder.Node, 0, src, 0)

	const recordSeconds = 0.25
	wantFrames := int64(recordSeconds * float64(sampleRate))
	for recorder.Frames() < wantFrames {
		ctx.Render()
	}

	f, err := os.CreateTemp("", "auragraph-recorder-*.wav")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer os.Remove(f.Name())

	codec := wav.New()
	if err := recorder.Write(f, codec); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	r, err := os.Open(f.Name())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	decoded, err := codec.Decode(r)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Channels != 1 {
		t.Fatalf("want 1 channel, got %d", decoded.Channels)
	}
	if decoded.SampleRate != sampleRate {
		t.Fatalf("want sample rate %d, got %d", sampleRate, decoded.SampleRate)
	}
	gotFrames := int64(len(decoded.Samples))
	if diff := gotFrames - wantFrames; diff > auragraph.FrameCount || diff < -auragraph.FrameCount {
		t.Fatalf("want length within ±%d frames of %d, got %d", auragraph.FrameCount, wantFrames, gotFrames)
	}
}

// TestRecorderIsProcessedWithoutDownstreamConsumer verifies the recorder
// accumulates samples purely via the automatic-pull-node set, with
// nothing connected to its (nonexistent) output.
func TestRecorderIsProcessedWithoutDownstreamConsumer(t *testing.T) {
	dest := newDestination()
	ctx := engine.New(dest)
	t.Cleanup(ctx.Shutdown)

	src := graph.New("src", 0, 1, ctx.SampleRate(), &testnode.Constant{Value: 1})
	recorder := builtin.NewAudioRecorderNode(ctx, 1)
	mustConnect(t, ctx, recorder.Node, 0, src, 0)

	for i := 0; i < 5; i++ {
		ctx.Render()
	}
	if recorder.Frames() == 0 {
		t.Fatal("recorder never accumulated frames despite no downstream consumer")
	}

	var buf bytes.Buffer
	if err := recorder.Write(&buf, wav.New()); err == nil {
		t.Fatal("want an error writing WAV to a non-seekable buffer")
	}
}
