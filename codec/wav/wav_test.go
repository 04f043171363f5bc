package wav_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/torvik/auragraph/codec/wav"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	f, err := os.CreateTemp("", "auragraph-wav-*.wav")
	assert.Nil(t, err)
	defer os.Remove(f.Name())

	samples := make([]float32, 0, 256)
	for i := 0; i < 128; i++ {
		samples = append(samples, 0.5, -0.5)
	}

	c := wav.New()
	assert.Nil(t, c.Encode(f, samples, 2, 44100))
	assert.Nil(t, f.Close())

	r, err := os.Open(f.Name())
	assert.Nil(t, err)
	defer r.Close()

	decoded, err := c.Decode(r)
	assert.Nil(t, err)
	assert.Equal(t, 2, decoded.Channels)
	assert.Equal(t, 44100, decoded.SampleRate)
	assert.Equal(t, len(samples), len(decoded.Samples))
	for i, want := range samples {
		if diff := float32(decoded.Samples[i]) - want; diff > 1e-3 || diff < -1e-3 {
			t.Fatalf("sample %d: want %v, got %v", i, want, decoded.Samples[i])
		}
	}
}

func TestDecodeRejectsNonSeekableReader(t *testing.T) {
	c := wav.New()
	_, err := c.Decode(readOnly{})
	assert.NotNil(t, err)
}

type readOnly struct{}

func (readOnly) Read(p []byte) (int, error) { return 0, nil }
