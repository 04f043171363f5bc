// Package wav implements codec.Decoder and codec.Encoder over
// github.com/go-audio/wav + github.com/go-audio/audio, grounded on the
// teacher's own wav.go (github.com/pipelined/phono/wav): open a
// *wav.Decoder/*wav.Encoder around a file, drive it through an
// audio.IntBuffer, and convert to/from the module's float32 samples.
package wav

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/torvik/auragraph/codec"
)

// bitDepth is the PCM bit depth used for encode/decode. go-audio/wav's
// high-level Encoder/Decoder pair (the only WAV library in reach) only
// speaks integer PCM, not IEEE-float WAV, so 32-bit integer PCM is used
// as the closest available fidelity to the "32-bit float PCM WAV"
// persisted-state note — see DESIGN.md for the tradeoff.
const bitDepth = 32

const maxInt32Scale = 1<<31 - 1

// Codec implements both codec.Decoder and codec.Encoder.
type Codec struct{}

// New constructs a wav Codec.
func New() *Codec { return &Codec{} }

// Decode reads a WAV stream and returns its interleaved float32 samples.
func (Codec) Decode(r io.Reader) (*codec.Decoded, error) {
	ra, ok := r.(io.ReadSeeker)
	if !ok {
		return nil, fmt.Errorf("wav: Decode requires an io.ReadSeeker")
	}
	decoder := wav.NewDecoder(ra)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("wav: not a valid WAV stream")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav: decode PCM buffer: %w", err)
	}

	channels := buf.Format.NumChannels
	samples := make([]float32, len(buf.Data))
	scale := float32(int(1) << (buf.SourceBitDepth - 1))
	if scale == 0 {
		scale = maxInt32Scale
	}
	for i, v := range buf.Data {
		samples[i] = float32(v) / scale
	}

	return &codec.Decoded{
		Samples:    samples,
		Channels:   channels,
		SampleRate: int(decoder.SampleRate),
	}, nil
}

// Encode writes samples (interleaved, channels-per-frame) as a WAV
// stream at sampleRate.
func (Codec) Encode(w io.Writer, samples []float32, channels, sampleRate int) error {
	ws, ok := w.(io.WriteSeeker)
	if !ok {
		return fmt.Errorf("wav: Encode requires an io.WriteSeeker")
	}
	encoder := wav.NewEncoder(ws, sampleRate, bitDepth, channels, 1)

	ints := make([]int, len(samples))
	for i, s := range samples {
		v := int(s * maxInt32Scale)
		if v > maxInt32Scale {
			v = maxInt32Scale
		}
		if v < -maxInt32Scale-1 {
			v = -maxInt32Scale - 1
		}
		ints[i] = v
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           ints,
		SourceBitDepth: bitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("wav: write PCM buffer: %w", err)
	}
	return encoder.Close()
}
