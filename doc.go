/*
Package auragraph implements a realtime audio processing graph modeled on
the Web Audio rendering model: client code assembles a directed graph of
nodes (sources, effects, inspectors, a hardware destination), and a driver
thread pulls fixed-size blocks of samples from the destination, which
recursively pulls its inputs so the whole graph renders once per block at
the device's cadence.

This package holds the leaf types shared by every other package in the
module: Channel and Bus (a fixed-channel, fixed-length block of float32
samples), and the RenderQuantum stamp a render pass leaves behind
for lock-free reads of the current render position.

Graph topology lives in auragraph/graph, parameter automation in
auragraph/param, the owning Context and its concurrency discipline in
auragraph/engine, and concrete nodes in auragraph/builtin.
*/
package auragraph

// FrameCount is the fixed number of frames rendered per quantum.
const FrameCount = 128

// DefaultSampleRate is used when a Context is created without an explicit
// sample rate.
const DefaultSampleRate = 44100

// MaxChannels bounds the channel count a Bus may carry.
const MaxChannels = 32
