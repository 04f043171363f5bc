package auragraph

import "sync/atomic"

// RenderToken proves its holder is inside one render quantum's critical
// section: it carries the frame index the quantum starts at and the
// number of frames being rendered, and every pull/process call in the
// graph, param and engine packages takes one as its first argument. There
// is no way to forge a meaningful one outside engine.Context's render
// path without also fabricating a correct Frame, which keeps the render
// lock's scope legible in every signature even though Go's zero-value
// composite literals can't truly seal off construction (see DESIGN.md).
type RenderToken struct {
	Frame  int64
	Frames int
}

// RenderQuantum stamps one rendered block: the frame index at its start,
// the corresponding time in seconds, and the sample rate it was rendered
// at. engine.Context.Render publishes the latest quantum into a
// LatestQuantum cell after every render pass, so Context.CurrentFrame and
// CurrentTime become lock-free reads for any thread.
type RenderQuantum struct {
	Frame      int64
	Time       float64
	SampleRate int
}

// LatestQuantum is an atomic single-writer/multi-reader cell holding the
// most recently rendered quantum's descriptor.
type LatestQuantum struct {
	v atomic.Value // holds RenderQuantum
}

// Store publishes q. Called only from the render thread.
func (l *LatestQuantum) Store(q RenderQuantum) {
	l.v.Store(q)
}

// Load returns the most recently stored quantum, or the zero value if
// none has been stored yet.
func (l *LatestQuantum) Load() RenderQuantum {
	v := l.v.Load()
	if v == nil {
		return RenderQuantum{}
	}
	return v.(RenderQuantum)
}
