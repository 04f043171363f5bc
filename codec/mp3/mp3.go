// Package mp3 implements codec.Encoder (encode-only — there is no
// decoder in this module's reach) over github.com/viert/lame, grounded
// on the teacher's own mp3/sink.go: a lame.LameWriter configured with
// bitrate/quality/channel-count/sample-rate and fed 16-bit PCM bytes.
package mp3

import (
	"encoding/binary"
	"io"

	"github.com/viert/lame"
)

// Codec implements codec.Encoder. Quality follows liblame's own scale
// (0 best, 9 worst); Bitrate is in kbps.
type Codec struct {
	Bitrate int
	Quality int
}

// New constructs an mp3 Codec with the given bitrate (kbps) and quality.
func New(bitrate, quality int) *Codec {
	return &Codec{Bitrate: bitrate, Quality: quality}
}

// Encode writes samples (interleaved, channels-per-frame, scaled to
// 16-bit PCM) through a lame.LameWriter wrapping w.
func (c Codec) Encode(w io.Writer, samples []float32, channels, sampleRate int) error {
	writer := lame.NewWriter(w)
	writer.Encoder.SetBitrate(c.Bitrate)
	writer.Encoder.SetQuality(c.Quality)
	writer.Encoder.SetNumChannels(channels)
	writer.Encoder.SetInSamplerate(sampleRate)
	writer.Encoder.SetMode(lame.JOINT_STEREO)
	writer.Encoder.SetVBR(lame.VBR_RH)
	writer.Encoder.InitParams()

	buf := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		v := int16(clampToInt16(s) * 32767)
		buf = binary.LittleEndian.AppendUint16(buf, uint16(v))
	}
	if _, err := writer.Write(buf); err != nil {
		return err
	}
	return writer.Close()
}

func clampToInt16(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
