package builtin

import (
	"github.com/torvik/auragraph"
	"github.com/torvik/auragraph/codec"
	"github.com/torvik/auragraph/engine"
	"github.com/torvik/auragraph/graph"
	"github.com/torvik/auragraph/source"
)

// AudioPlayer is a scheduled source node that plays a fully-decoded
// in-memory buffer, per spec.md §4.4: play(after)/stop(after) schedule
// start/end via the embedded source.ScheduledBehavior, and Process fills
// only the non-silent region UpdateSchedulingInfo computes each quantum.
// It implements engine.Finisher so the context can auto-disconnect it
// once playback reaches end of file or an explicit stop takes effect.
type AudioPlayer struct {
	*graph.Node
	behavior *audioBehavior
}

type audioBehavior struct {
	sched      *source.ScheduledBehavior
	dispatcher source.Dispatcher

	samples         []float32 // interleaved, decodedChannels-per-frame
	decodedChannels int
	totalFrames     int64
	consumed        int64
}

// NewAudioPlayer constructs a player over an already decoded buffer,
// registered with ctx's dispatcher and automatic-source set, so OnEnded
// fires on the main-thread queue and the node auto-disconnects at EOF.
func NewAudioPlayer(ctx *engine.Context, decoded *codec.Decoded) *AudioPlayer {
	sched := source.NewScheduledBehavior(ctx.SampleRate())
	b := &audioBehavior{
		sched:           sched,
		dispatcher:      ctx.Dispatcher(),
		samples:         decoded.Samples,
		decodedChannels: decoded.Channels,
		totalFrames:     int64(len(decoded.Samples) / decoded.Channels),
	}
	n := graph.New("audioPlayer", 0, 1, ctx.SampleRate(), b)
	n.Output(0).Resize(decoded.Channels)
	p := &AudioPlayer{Node: n, behavior: b}
	ctx.AddAutomaticSource(n, p)
	return p
}

// Play schedules playback to start at context time after.
func (p *AudioPlayer) Play(after float64) { p.behavior.sched.Play(after) }

// Stop schedules playback to end at context time after.
func (p *AudioPlayer) Stop(after float64) { p.behavior.sched.Stop(after) }

// OnEnded sets the callback delivered once, on the dispatcher, when
// playback finishes (either end of file or an explicit Stop boundary).
func (p *AudioPlayer) OnEnded(fn func()) { p.behavior.sched.OnEnded = fn }

// Finished implements engine.Finisher.
func (p *AudioPlayer) Finished() bool { return p.behavior.sched.State() == source.Finished }

func (b *audioBehavior) Process(tok auragraph.RenderToken, n *graph.Node) {
	wasFinished := b.sched.State() == source.Finished
	b.sched.UpdateSchedulingInfo(tok.Frame, tok.Frames)
	if !wasFinished && b.sched.State() == source.Finished && b.sched.OnEnded != nil && b.dispatcher != nil {
		// An explicit Stop boundary ended playback this quantum.
		b.dispatcher.Enqueue(b.sched.OnEnded)
	}
	out := n.Output(0).ActiveBus()
	out.Zero()

	// A quantum whose end boundary is trimmed mid-block flips the
	// scheduling state to Finished before Process ever sees it (the
	// state machine has already committed to ending this quantum), but
	// NonSilentFramesToProcess still holds the trimmed count of samples
	// that *do* belong to this final quantum and must still be emitted —
	// so gate on that count directly rather than on State() == Playing.
	offset := b.sched.QuantumFrameOffset
	avail := b.sched.NonSilentFramesToProcess
	if avail <= 0 {
		return
	}
	remaining := b.totalFrames - b.consumed
	if int64(avail) > remaining {
		avail = int(remaining)
	}

	channels := out.NumberOfChannels()
	for i := 0; i < avail; i++ {
		srcBase := (b.consumed + int64(i)) * int64(b.decodedChannels)
		for c := 0; c < channels; c++ {
			srcChan := c
			if srcChan >= b.decodedChannels {
				srcChan = b.decodedChannels - 1
			}
			out.Channel(c).Data[offset+i] = b.samples[srcBase+int64(srcChan)]
		}
	}
	if avail > 0 {
		for c := 0; c < channels; c++ {
			out.Channel(c).MarkNonSilent()
		}
	}

	b.consumed += int64(avail)
	if b.consumed >= b.totalFrames {
		b.sched.Finish(b.dispatcher)
	}
}

func (b *audioBehavior) TailTime() float64    { return 0 }
func (b *audioBehavior) LatencyTime() float64 { return 0 }

// Reset rewinds playback to the beginning and returns the scheduling
// state machine to unscheduled.
func (b *audioBehavior) Reset() {
	b.sched.Reset()
	b.consumed = 0
}
