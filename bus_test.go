package auragraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelCopyFromSilentZeroes(t *testing.T) {
	src := NewChannel(8)
	dst := NewChannel(8)
	for i := range dst.Data {
		dst.Data[i] = 1
	}
	dst.MarkNonSilent()

	dst.CopyFrom(&src)

	assert.True(t, dst.IsSilent())
	for _, v := range dst.Data {
		assert.Equal(t, float32(0), v)
	}
}

func TestBusIsSilent(t *testing.T) {
	b := NewBus(2, FrameCount, DefaultSampleRate)
	assert.True(t, b.IsSilent())

	b.Channel(0).Data[0] = 0.5
	b.Channel(0).MarkNonSilent()
	assert.False(t, b.IsSilent())
}

func TestBusSumFromMonoToStereoDuplicates(t *testing.T) {
	mono := NewBus(1, FrameCount, DefaultSampleRate)
	for i := range mono.Channel(0).Data {
		mono.Channel(0).Data[i] = 0.5
	}
	mono.Channel(0).MarkNonSilent()

	stereo := NewBus(2, FrameCount, DefaultSampleRate)
	stereo.SumFrom(mono, Speakers)

	for i := 0; i < FrameCount; i++ {
		assert.Equal(t, float32(0.5), stereo.Channel(0).Data[i])
		assert.Equal(t, float32(0.5), stereo.Channel(1).Data[i])
	}
}

func TestBusSumFromStereoToMonoAverages(t *testing.T) {
	stereo := NewBus(2, FrameCount, DefaultSampleRate)
	for i := 0; i < FrameCount; i++ {
		stereo.Channel(0).Data[i] = 1.0
		stereo.Channel(1).Data[i] = 0.0
	}
	stereo.Channel(0).MarkNonSilent()
	stereo.Channel(1).MarkNonSilent()

	mono := NewBus(1, FrameCount, DefaultSampleRate)
	mono.SumFrom(stereo, Speakers)

	for i := 0; i < FrameCount; i++ {
		assert.Equal(t, float32(0.5), mono.Channel(0).Data[i])
	}
}

func TestBusCopyWithGainDeZipperMonotonic(t *testing.T) {
	src := NewBus(1, FrameCount, DefaultSampleRate)
	for i := range src.Channel(0).Data {
		src.Channel(0).Data[i] = 1
	}
	src.Channel(0).MarkNonSilent()

	dst := NewBus(1, FrameCount, DefaultSampleRate)
	dst.lastMixGain = 0
	dst.isFirstTime = false

	dst.CopyWithGain(src, 1.0, 1.0)

	prev := float32(-1)
	for _, v := range dst.Channel(0).Data {
		assert.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestBusCopyWithGainConvergesOverQuanta(t *testing.T) {
	src := NewBus(2, FrameCount, DefaultSampleRate)
	for c := 0; c < 2; c++ {
		for i := range src.Channel(c).Data {
			src.Channel(c).Data[i] = 0.5
		}
		src.Channel(c).MarkNonSilent()
	}

	dst := NewBus(2, FrameCount, DefaultSampleRate)
	for q := 0; q < 20; q++ {
		dst.CopyWithGain(src, 0.5, 1.0)
	}
	last := dst.Channel(0).Data[FrameCount-1]
	assert.InDelta(t, 0.25, last, 1e-6)
}
