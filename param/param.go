package param

import (
	"github.com/torvik/auragraph"
	"github.com/torvik/auragraph/graph"
	"github.com/torvik/auragraph/internal/bufpool"
)

// Param is a named scalar with a default/min/max range, a sample-accurate
// automation Timeline, and a summing junction for audio-rate modulation:
// other nodes' outputs may connect to a Param exactly like they connect
// to a node Input, and their signal is summed into the automated value.
//
// minValue <= internalValue <= maxValue is deliberately not enforced here
// (see SPEC_FULL.md open question 1) — Min/Max are advisory metadata.
type Param struct {
	graph.SummingJunction

	name         string
	defaultValue float32
	minValue     float32
	maxValue     float32
	internalValue float32
	timeline     Timeline

	sampleRate int
	modBus     *auragraph.Bus // lazily allocated, resized to the largest block requested
}

// New constructs a Param with the given name, default, and [min, max]
// range. internalValue starts at defaultValue.
func New(name string, defaultValue, minValue, maxValue float32, sampleRate int) *Param {
	return &Param{
		name:          name,
		defaultValue:  defaultValue,
		minValue:      minValue,
		maxValue:      maxValue,
		internalValue: defaultValue,
		sampleRate:    sampleRate,
	}
}

func (p *Param) Name() string         { return p.name }
func (p *Param) DefaultValue() float32 { return p.defaultValue }
func (p *Param) MinValue() float32     { return p.minValue }
func (p *Param) MaxValue() float32     { return p.maxValue }
func (p *Param) Value() float32        { return p.internalValue }

// Connect wires output into this param's modulation input, registering
// the param as a fan-out consumer of output so Output.Pull's in-place
// eligibility count stays accurate. Must be called under the graph lock.
func (p *Param) Connect(o *graph.Output) {
	p.SummingJunction.Connect(o)
	o.AddConsumer(p)
}

// Disconnect unwires output from this param's modulation input.
func (p *Param) Disconnect(o *graph.Output) {
	p.SummingJunction.Disconnect(o)
	o.RemoveConsumer(p)
}

// OnUpstreamChannelsChanged implements graph.Consumer; a Param's
// modulation input is always summed down to mono, so an upstream channel
// count change never requires any action here.
func (p *Param) OnUpstreamChannelsChanged() {}

// SetValue sets the scalar value immediately, independent of the
// timeline (equivalent to the Web Audio setValue-at-call-time shortcut).
func (p *Param) SetValue(v float32) { p.internalValue = v }

// SetValueAtTime schedules a setValue event on the timeline.
func (p *Param) SetValueAtTime(v float32, t float64) {
	p.timeline.Insert(Event{Kind: SetValue, Value: v, Time: t})
}

// LinearRampToValueAtTime schedules a linear ramp event.
func (p *Param) LinearRampToValueAtTime(v float32, t float64) {
	p.timeline.Insert(Event{Kind: LinearRampToValue, Value: v, Time: t})
}

// ExponentialRampToValueAtTime schedules an exponential ramp event.
func (p *Param) ExponentialRampToValueAtTime(v float32, t float64) {
	p.timeline.Insert(Event{Kind: ExponentialRampToValue, Value: v, Time: t})
}

// CancelScheduledValues removes every timeline event at or after
// startTime.
func (p *Param) CancelScheduledValues(startTime float64) {
	p.timeline.CancelScheduledValues(startTime)
}

// HasSampleAccurateValues reports whether the timeline has events or any
// modulation output is connected — the condition under which per-sample
// evaluation (rather than a flat scalar) is required.
func (p *Param) HasSampleAccurateValues() bool {
	p.UpdateRenderingState()
	return p.timeline.HasEvents() || p.NumberOfRenderingOutputs() > 0
}

// CalculateSampleAccurateValues fills out with the timeline's value at
// each sample, then, if any modulation input is connected, pulls those
// outputs and sums their signal in via an internal mono summing bus
// (allocated lazily, resized to the largest block requested). Returns the
// last value produced, which callers use to update internalValue.
func (p *Param) CalculateSampleAccurateValues(tok auragraph.RenderToken, startTime, endTime float64, out []float32) float32 {
	last := p.timeline.ValuesForTimeRange(startTime, endTime, p.sampleRate, p.internalValue, out)

	p.UpdateRenderingState()
	if p.NumberOfRenderingOutputs() == 0 {
		p.internalValue = last
		return last
	}

	if p.modBus == nil || p.modBus.Length() < len(out) {
		p.modBus = auragraph.NewBus(1, len(out), p.sampleRate)
	}
	p.modBus.Zero()
	for _, o := range p.RenderingOutputs() {
		b := o.Pull(tok, nil)
		p.modBus.SumFrom(b, auragraph.Discrete)
	}
	mod := p.modBus.Channel(0)
	if !mod.IsSilent() {
		for i := range out {
			if i < len(mod.Data) {
				out[i] += mod.Data[i]
			}
		}
		last = out[len(out)-1]
	}
	p.internalValue = last
	return last
}

// BorrowScratch and ReturnScratch let callers (e.g. builtin.GainNode) get
// a pooled per-quantum value buffer without each node hand-rolling its
// own cache.
func BorrowScratch(length int) []float32 { return bufpool.Get(length) }
func ReturnScratch(buf []float32)        { bufpool.Put(buf) }
