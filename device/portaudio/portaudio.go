// Package portaudio implements device.Backend over
// github.com/gordonklaus/portaudio, grounded on the teacher's own
// portaudio/portaudio.go Sink (Initialize/OpenDefaultStream/Start/Stop/
// Close/Terminate), generalized from a playback-only sink to the duplex,
// callback-driven stream spec.md §4.6/§6 calls for.
package portaudio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
	"github.com/torvik/auragraph/device"
	"github.com/torvik/auragraph/engine"
)

// Backend is the concrete device.Backend over PortAudio.
type Backend struct {
	stream *portaudio.Stream
}

// New constructs a Backend. PortAudio itself is a process-wide library;
// Initialize/Terminate bracket the Backend's Start/Stop pair.
func New() *Backend { return &Backend{} }

// Devices enumerates PortAudio's host devices into device.Info, filling
// index, name, in/out channel counts, nominal rate and the default-in/out
// flags. SupportedRates is left empty: supported rates are not queried.
func (b *Backend) Devices() ([]device.Info, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: initialize: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("portaudio: enumerate devices: %w", err)
	}
	defaultIn, _ := portaudio.DefaultInputDevice()
	defaultOut, _ := portaudio.DefaultOutputDevice()

	infos := make([]device.Info, len(devices))
	for i, d := range devices {
		infos[i] = device.Info{
			Index:        i,
			Name:         d.Name,
			InChannels:   d.MaxInputChannels,
			OutChannels:  d.MaxOutputChannels,
			NominalRate:  d.DefaultSampleRate,
			IsDefaultIn:  defaultIn != nil && defaultIn.Name == d.Name,
			IsDefaultOut: defaultOut != nil && defaultOut.Name == d.Name,
		}
	}
	return infos, nil
}

// Start opens and starts a duplex default-device stream at cfg's sample
// rate and channel counts, delivering every realtime buffer to cb.
func (b *Backend) Start(cfg device.Config, cb device.Callback) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio: initialize: %w", err)
	}

	in := make([]float32, cfg.FramesPerBuffer*cfg.InputChannels)
	out := make([]float32, cfg.FramesPerBuffer*cfg.OutputChannels)

	stream, err := portaudio.OpenDefaultStream(
		cfg.InputChannels, cfg.OutputChannels,
		float64(cfg.SampleRate), cfg.FramesPerBuffer,
		func(input, output []float32) {
			copy(in, input)
			cb(out, in, cfg.FramesPerBuffer)
			copy(output, out)
		},
	)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("portaudio: open default stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("portaudio: start stream: %w", err)
	}
	b.stream = stream
	return nil
}

// Wire constructs a device.Adapter around ctx, opens a Backend against
// cfg, and starts the stream with the adapter's HandleCallback as its
// realtime callback. This is the convenience path spec.md §6 names for
// getting a context's graph onto real hardware in one call.
func Wire(ctx *engine.Context, cfg device.Config) (*device.Adapter, *Backend, error) {
	adapter := device.NewAdapter(ctx)
	backend := New()
	if err := backend.Start(cfg, adapter.HandleCallback); err != nil {
		return nil, nil, err
	}
	return adapter, backend, nil
}

// Stop stops and closes the stream and terminates the PortAudio library.
func (b *Backend) Stop() error {
	if b.stream == nil {
		return nil
	}
	if err := b.stream.Stop(); err != nil {
		return fmt.Errorf("portaudio: stop stream: %w", err)
	}
	if err := b.stream.Close(); err != nil {
		return fmt.Errorf("portaudio: close stream: %w", err)
	}
	b.stream = nil
	return portaudio.Terminate()
}
