package auragraph

import "github.com/torvik/auragraph/internal/vecops"

// ChannelInterpretation controls how Bus.SumFrom maps a source with a
// different channel count onto the destination.
type ChannelInterpretation int

const (
	// Speakers duplicates mono to stereo and averages stereo to mono;
	// anything else falls back to Discrete behavior.
	Speakers ChannelInterpretation = iota
	// Discrete maps channels pairwise by index and zeros any destination
	// channel with no matching source channel.
	Discrete
)

// Bus is an ordered, fixed-channel-count collection of Channels sharing a
// sample rate and a frame length. Channel count is immutable after
// construction. De-zipper state (lastMixGain, isFirstTime) belongs to the
// Bus because a gain ramp must persist across quanta for the same signal
// path, and is only ever read or written while the render lock is held.
type Bus struct {
	channels   []Channel
	sampleRate int
	length     int

	lastMixGain float32
	isFirstTime bool

	scratch []float32 // reused gain-ramp scratch vector, sized lazily
}

// NewBus allocates a Bus with numberOfChannels channels of length frames.
func NewBus(numberOfChannels, frames, sampleRate int) *Bus {
	if numberOfChannels < 1 {
		numberOfChannels = 1
	}
	if numberOfChannels > MaxChannels {
		numberOfChannels = MaxChannels
	}
	b := &Bus{
		channels:    make([]Channel, numberOfChannels),
		sampleRate:  sampleRate,
		length:      frames,
		isFirstTime: true,
	}
	for i := range b.channels {
		b.channels[i] = NewChannel(frames)
	}
	return b
}

// NumberOfChannels returns the immutable channel count.
func (b *Bus) NumberOfChannels() int { return len(b.channels) }

// Length returns the number of frames each channel holds.
func (b *Bus) Length() int { return b.length }

// SampleRate returns the bus's sample rate.
func (b *Bus) SampleRate() int { return b.sampleRate }

// Channel returns a pointer to channel i. Callers must respect i <
// NumberOfChannels(); the spec treats all channel bounds as exclusive
// upper, never inclusive.
func (b *Bus) Channel(i int) *Channel { return &b.channels[i] }

// IsSilent reports true iff every channel is silent.
func (b *Bus) IsSilent() bool {
	for i := range b.channels {
		if !b.channels[i].silent {
			return false
		}
	}
	return true
}

// Zero silences every channel.
func (b *Bus) Zero() {
	for i := range b.channels {
		b.channels[i].Zero()
	}
}

// CopyFrom performs a channel-count-matched copy from src into b. The
// channel counts must already agree; callers needing count-mismatch
// handling should use SumFrom.
func (b *Bus) CopyFrom(src *Bus) {
	n := len(b.channels)
	if len(src.channels) < n {
		n = len(src.channels)
	}
	for i := 0; i < n; i++ {
		b.channels[i].CopyFrom(&src.channels[i])
	}
	for i := n; i < len(b.channels); i++ {
		b.channels[i].Zero()
	}
}

// SumFrom adds src's channels into b according to interp, implementing the
// spec's channel mixing rules:
//
//	speakers: mono->stereo duplicates to L/R; stereo->mono averages
//	(L+R)/2; otherwise discrete.
//	discrete: pairwise by channel index; extra destination channels are
//	zeroed (left untouched here, since SumFrom only adds).
func (b *Bus) SumFrom(src *Bus, interp ChannelInterpretation) {
	if src.IsSilent() {
		return
	}
	dstN, srcN := len(b.channels), len(src.channels)
	if interp == Speakers && srcN == 1 && dstN == 2 {
		for c := 0; c < 2; c++ {
			vecops.Add(b.channels[c].Data, src.channels[0].Data)
			b.channels[c].MarkNonSilent()
		}
		return
	}
	if interp == Speakers && srcN == 2 && dstN == 1 {
		tmp := make([]float32, b.length)
		for i := 0; i < b.length; i++ {
			tmp[i] = (src.channels[0].Data[i] + src.channels[1].Data[i]) * 0.5
		}
		vecops.Add(b.channels[0].Data, tmp)
		b.channels[0].MarkNonSilent()
		return
	}
	n := dstN
	if srcN < n {
		n = srcN
	}
	for i := 0; i < n; i++ {
		if src.channels[i].silent {
			continue
		}
		vecops.Add(b.channels[i].Data, src.channels[i].Data)
		b.channels[i].MarkNonSilent()
	}
}

// ResetGain clears the de-zipper state, causing the next CopyWithGain call
// to jump straight to the target gain instead of ramping from a stale
// lastMixGain.
func (b *Bus) ResetGain() {
	b.lastMixGain = 0
	b.isFirstTime = true
}

const (
	gainSnapEpsilon = 0.001
	gainConvergence = 0.005
)

// CopyWithGain copies src into b scaled by busGain*targetGain, de-zippered
// per spec: the gain value ramps toward the target by gainConvergence of
// the remaining distance each sample, unless the jump is already under
// gainSnapEpsilon, in which case it's applied flat over the whole block.
func (b *Bus) CopyWithGain(src *Bus, busGain, targetGain float32) {
	if len(b.channels) != len(src.channels) || src.IsSilent() {
		b.Zero()
		return
	}
	totalDesired := busGain * targetGain
	gain := totalDesired
	if !b.isFirstTime {
		gain = b.lastMixGain
	}
	b.isFirstTime = false

	if abs32(totalDesired-gain) < gainSnapEpsilon {
		for i := range b.channels {
			b.channels[i].CopyFrom(&src.channels[i])
			vecops.ScalarMul(b.channels[i].Data, totalDesired)
		}
		b.lastMixGain = totalDesired
		return
	}

	if cap(b.scratch) < b.length {
		b.scratch = make([]float32, b.length)
	}
	ramp := b.scratch[:b.length]
	g := gain
	for i := 0; i < b.length; i++ {
		g += (totalDesired - g) * gainConvergence
		ramp[i] = g
	}
	for i := range b.channels {
		b.channels[i].CopyFrom(&src.channels[i])
		vecops.Mul(b.channels[i].Data, ramp)
		vecops.FlushDenormals(b.channels[i].Data)
	}
	b.lastMixGain = g
}

// CopyWithSampleAccurateGainValues multiplies src by a caller-supplied
// per-sample gain buffer. When src is mono and b is multi-channel, channel
// 0 of src is broadcast to every destination channel.
func (b *Bus) CopyWithSampleAccurateGainValues(src *Bus, gains []float32) {
	if src.IsSilent() {
		b.Zero()
		return
	}
	broadcastMono := src.NumberOfChannels() == 1 && b.NumberOfChannels() > 1
	for i := range b.channels {
		srcIdx := i
		if broadcastMono {
			srcIdx = 0
		} else if srcIdx >= src.NumberOfChannels() {
			b.channels[i].Zero()
			continue
		}
		b.channels[i].CopyFrom(&src.channels[srcIdx])
		vecops.Mul(b.channels[i].Data, gains)
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
