package builtin

import (
	"io"
	"math"
	"sync"

	"github.com/torvik/auragraph"
	"github.com/torvik/auragraph/codec"
	"github.com/torvik/auragraph/engine"
	"github.com/torvik/auragraph/graph"
)

// AudioRecorderNode is a sink with no outputs of its own: the engine's
// automatic-pull-node set (spec.md §6) pulls it every quantum regardless
// of whether any downstream node is connected to it, since it has none.
// Captured samples accumulate in memory; Write encodes them through a
// codec.Encoder.
type AudioRecorderNode struct {
	*graph.Node
	behavior *recorderBehavior
}

type recorderBehavior struct {
	mu         sync.Mutex
	channels   int
	sampleRate int
	samples    []float32 // interleaved
}

// NewAudioRecorderNode constructs a recorder with outputChannels inputs,
// registers it with ctx's automatic-pull-node set, and returns it.
func NewAudioRecorderNode(ctx *engine.Context, outputChannels int) *AudioRecorderNode {
	b := &recorderBehavior{channels: outputChannels, sampleRate: ctx.SampleRate()}
	n := graph.New("audioRecorder", 1, 0, ctx.SampleRate(), b)
	n.Input(0).SetDesiredChannels(outputChannels)
	ctx.AddAutomaticPullNode(n)
	return &AudioRecorderNode{Node: n, behavior: b}
}

func (b *recorderBehavior) Process(tok auragraph.RenderToken, n *graph.Node) {
	in := n.InputBus(0)
	if in == nil {
		return
	}
	frames := in.Length()
	b.mu.Lock()
	for i := 0; i < frames; i++ {
		for c := 0; c < b.channels; c++ {
			var v float32
			if c < in.NumberOfChannels() {
				v = in.Channel(c).Data[i]
			}
			b.samples = append(b.samples, v)
		}
	}
	b.mu.Unlock()
}

// TailTime reports +Inf: a recorder has no output bus for the
// silence-propagation shortcut to zero, so skipping Process there would
// silently drop samples from the recording instead of capturing silence.
func (b *recorderBehavior) TailTime() float64    { return math.Inf(1) }
func (b *recorderBehavior) LatencyTime() float64 { return 0 }

func (b *recorderBehavior) Reset() {
	b.mu.Lock()
	b.samples = b.samples[:0]
	b.mu.Unlock()
}

// Frames returns the number of frames recorded so far.
func (r *AudioRecorderNode) Frames() int64 {
	r.behavior.mu.Lock()
	defer r.behavior.mu.Unlock()
	return int64(len(r.behavior.samples) / r.behavior.channels)
}

// Write encodes a copy of the recorded buffer through enc, writing to w.
// The recorded samples are kept; Reset clears them.
func (r *AudioRecorderNode) Write(w io.Writer, enc codec.Encoder) error {
	r.behavior.mu.Lock()
	samples := append([]float32(nil), r.behavior.samples...)
	channels, sampleRate := r.behavior.channels, r.behavior.sampleRate
	r.behavior.mu.Unlock()
	return enc.Encode(w, samples, channels, sampleRate)
}
