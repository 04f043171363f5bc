// Package codec defines the narrow collaborator interfaces spec.md §6
// leaves unspecified: Decoder turns an encoded byte stream into an
// interleaved float buffer with channel/sample-rate metadata; Encoder
// does the reverse. Concrete implementations live in codec/wav (decode +
// encode) and codec/mp3 (encode only).
package codec

import "io"

// Decoded is the interleaved float buffer a Decoder produces.
type Decoded struct {
	Samples    []float32 // interleaved, Channels-per-frame
	Channels   int
	SampleRate int
}

// Decoder turns an encoded audio byte stream into a Decoded buffer.
type Decoder interface {
	Decode(r io.Reader) (*Decoded, error)
}

// Encoder writes an interleaved float buffer to w as an encoded audio
// stream at the given sample rate and channel count.
type Encoder interface {
	Encode(w io.Writer, samples []float32, channels, sampleRate int) error
}
