package engine

import "github.com/torvik/auragraph"

// Config holds a Context's fixed parameters. There is no flag/env/file
// layer here — auragraph is a library, not a standalone CLI, so
// configuration is a struct literal built with DefaultConfig and
// Options, mirroring the teacher's own functional-option constructors.
type Config struct {
	SampleRate     int
	FrameCount     int
	InputChannels  int
	OutputChannels int

	// DisconnectFadeDuration is the default 100ms crossfade applied while
	// a pending disconnect drains.
	DisconnectFadeDuration float64
	// ConnectHorizon is how far in the future a scheduled source's start
	// time may lie before the update loop defers wiring its connect.
	ConnectHorizon float64
	// UpdateWaitQuanta bounds how long the update thread sleeps between
	// passes when nothing has signalled it, in units of render quanta.
	UpdateWaitQuanta int
}

// DefaultConfig returns {input: mono, output: stereo, sampleRate: 44100},
// matching spec.md's default device configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate:             auragraph.DefaultSampleRate,
		FrameCount:             auragraph.FrameCount,
		InputChannels:          1,
		OutputChannels:         2,
		DisconnectFadeDuration: 0.1,
		ConnectHorizon:         0.1,
		UpdateWaitQuanta:       16,
	}
}

// Option mutates a Config at construction time, following the teacher's
// own pipe.Option / mixer.Option pattern.
type Option func(*Config)

func WithSampleRate(sr int) Option { return func(c *Config) { c.SampleRate = sr } }

func WithChannels(in, out int) Option {
	return func(c *Config) { c.InputChannels, c.OutputChannels = in, out }
}

func WithDisconnectFadeDuration(seconds float64) Option {
	return func(c *Config) { c.DisconnectFadeDuration = seconds }
}

func WithConnectHorizon(seconds float64) Option {
	return func(c *Config) { c.ConnectHorizon = seconds }
}
