// Package plugin hosts a VST2 effect as a graph.Node, grounded on the
// teacher's vst2/vst2.go Processor: configure the plugin once
// (buffer size, sample rate, speaker arrangement, host callback), then
// drive its audio callback once per render quantum. This is the node
// graph's one non-builtin effect — the domain-stack home for the VST2
// hosting dependency a minimal port of the spec would otherwise drop.
package plugin

import (
	"fmt"
	"math"
	"time"
	"unsafe"

	"github.com/pipelined/vst2"
	"github.com/torvik/auragraph"
	"github.com/torvik/auragraph/graph"
	"github.com/torvik/auragraph/param"
)

// behavior wraps a loaded VST2 plugin as a graph.Behavior. It is always
// constructed with the node's eventual sample rate and channel count, since
// the plugin must be configured before the first Process call.
type behavior struct {
	plugin *vst2.Plugin

	bufferSize  int
	sampleRate  int
	numChannels int

	params []*param.Param

	currentPosition int64
	resumed         bool
}

// Node is a graph.Node hosting a VST2 plugin, with its float parameters
// additionally exposed as param.Params for automation and audio-rate
// modulation.
type Node struct {
	*graph.Node
	behavior *behavior
}

// Params exposes the plugin's float parameters, one param.Param per VST2
// parameter index, so the engine can wire automation and audio-rate
// modulation onto them exactly like a builtin node's parameters.
func (n *Node) Params() []*param.Param { return n.behavior.params }

// Close suspends and unloads the plugin. Must only be called from the
// graph thread.
func (n *Node) Close() { n.behavior.close() }

// Load opens the VST2 plugin at path and wraps it as a Node with one
// input and one output, sized for frames-per-quantum samples at
// sampleRate/numChannels. Must only be called from the graph thread,
// during a Connect call — never from the render path.
func Load(path string, frames, sampleRate, numChannels int) (*Node, error) {
	lib, err := vst2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: open %s: %w", path, err)
	}
	p, err := lib.Open()
	if err != nil {
		return nil, fmt.Errorf("plugin: load %s: %w", path, err)
	}
	b := &behavior{
		plugin:      p,
		bufferSize:  frames,
		sampleRate:  sampleRate,
		numChannels: numChannels,
	}
	b.params = make([]*param.Param, p.NumParams())
	for i := range b.params {
		b.params[i] = param.New(p.ParamName(i), float32(p.ParamValueAt(i)), 0, 1, sampleRate)
	}
	return &Node{
		Node:     graph.New("plugin", 1, 1, sampleRate, b),
		behavior: b,
	}, nil
}

func (b *behavior) close() {
	if b.resumed {
		b.plugin.Suspend()
		b.resumed = false
	}
	b.plugin.Close()
}

func (n *behavior) ensureResumed() {
	if n.resumed {
		return
	}
	n.plugin.SetCallback(n.callback())
	n.plugin.SetBufferSize(n.bufferSize)
	n.plugin.SetSampleRate(n.sampleRate)
	n.plugin.SetSpeakerArrangement(n.numChannels)
	n.plugin.Resume()
	n.resumed = true
}

// Process implements graph.Behavior: it pushes this quantum's parameter
// values into the plugin, converts the pulled input bus to the plugin's
// [][]float64 buffer layout, runs the plugin's audio callback, and copies
// the result back into the node's outputs.
func (n *behavior) Process(tok auragraph.RenderToken, node *graph.Node) {
	n.ensureResumed()

	for i, p := range n.params {
		n.plugin.SetParamValueAt(i, float64(p.Value()))
	}

	in := node.InputBus(0)
	buf := busToSamples(in)
	buf = n.plugin.Process(buf)
	n.currentPosition += int64(n.bufferSize)

	out := node.Output(0).ActiveBus()
	samplesToBus(buf, out)
}

// TailTime is unknown for an arbitrary plugin, so a conservative 0 is
// reported; most VST2 effects with real tails (reverbs, delays) report
// their own via GetTailSize, which this minimal host does not query.
func (n *behavior) TailTime() float64 { return 0 }

// LatencyTime reports 0; plugins that report PLUG_CATEGORY latency via
// GetVstVersion/effGetVendorVersion-style opcodes are not queried here.
func (n *behavior) LatencyTime() float64 { return 0 }

// Reset suspends and resumes the plugin, discarding its internal state.
func (n *behavior) Reset() {
	if n.resumed {
		n.plugin.Suspend()
		n.plugin.Resume()
	}
}

func busToSamples(b *auragraph.Bus) [][]float64 {
	if b == nil {
		return nil
	}
	out := make([][]float64, b.NumberOfChannels())
	for c := range out {
		ch := b.Channel(c)
		row := make([]float64, len(ch.Data))
		for i, v := range ch.Data {
			row[i] = float64(v)
		}
		out[c] = row
	}
	return out
}

func samplesToBus(buf [][]float64, b *auragraph.Bus) {
	n := b.NumberOfChannels()
	if len(buf) < n {
		n = len(buf)
	}
	for c := 0; c < n; c++ {
		ch := b.Channel(c)
		for i := range ch.Data {
			if i < len(buf[c]) {
				ch.Data[i] = float32(buf[c][i])
			}
		}
		ch.MarkNonSilent()
	}
}

// callback wraps the plugin's host callback, grounded on the teacher's
// own opcode handling: idle pumping, sample-rate/block-size queries, and
// transport position for plugins that read host time.
func (n *behavior) callback() vst2.HostCallbackFunc {
	return func(p *vst2.Plugin, opcode vst2.MasterOpcode, index int64, value int64, ptr unsafe.Pointer, opt float64) int {
		switch opcode {
		case vst2.AudioMasterIdle:
			p.Dispatch(vst2.EffEditIdle, 0, 0, nil, 0)
		case vst2.AudioMasterGetCurrentProcessLevel:
			return 0
		case vst2.AudioMasterGetSampleRate:
			return n.sampleRate
		case vst2.AudioMasterGetBlockSize:
			return n.bufferSize
		case vst2.AudioMasterGetTime:
			nanoseconds := time.Now().UnixNano()
			samplePos := n.currentPosition
			const assumedTempo = 120.0
			samplesPerBeat := (60.0 / assumedTempo) * float64(n.sampleRate)
			ppqPos := float64(samplePos)/samplesPerBeat + 1.0
			barPos := math.Floor(ppqPos / 4.0)
			return int(p.SetTimeInfo(n.sampleRate, samplePos, assumedTempo, vst2.TimeSignature{NotesPerBar: 4}, nanoseconds, ppqPos, barPos))
		}
		return 0
	}
}
