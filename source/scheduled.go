// Package source implements the scheduled-source state machine shared by
// every node kind that starts/stops playback at a committed time
// (AudioPlayer today; StreamNode deliberately does not use it, since it
// has no end time). ScheduledBehavior is a composable member rather than
// a base class: a concrete node embeds it and calls UpdateSchedulingInfo
// from its own Behavior.Process, following the spec's redesign away from
// the original's Node -> ScheduledSourceNode -> Player inheritance chain.
package source

import "math"

// State is the scheduled source's lifecycle stage.
type State int

const (
	Unscheduled State = iota
	Scheduled
	Playing
	Finished
)

func (s State) String() string {
	switch s {
	case Unscheduled:
		return "unscheduled"
	case Scheduled:
		return "scheduled"
	case Playing:
		return "playing"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

const unset = math.MaxFloat64

// Dispatcher is the narrow interface ScheduledBehavior needs to deliver an
// onEnded callback on the main thread rather than the render thread. It is
// satisfied by *engine.Dispatcher without source importing engine (which
// would cycle, since engine drives nodes built on source).
type Dispatcher interface {
	Enqueue(fn func())
}

// ScheduledBehavior holds the play/stop scheduling state machine described
// by the spec: pendingStartTime/pendingEndTime are one-shot values set by
// Play/Stop and promoted into committed startFrame/endFrame by
// UpdateSchedulingInfo at the start of a quantum.
type ScheduledBehavior struct {
	SampleRate int
	OnEnded    func()

	state State

	pendingStartTime float64
	pendingEndTime   float64

	startFrame int64
	endFrame   int64
	haveStart  bool
	haveEnd    bool

	// QuantumFrameOffset and NonSilentFramesToProcess are recomputed by
	// UpdateSchedulingInfo each quantum and read by the owning node's
	// Process to decide how much of the block to fill vs. leave silent.
	QuantumFrameOffset       int
	NonSilentFramesToProcess int
}

// NewScheduledBehavior constructs a ScheduledBehavior in the unscheduled
// state at the given sample rate.
func NewScheduledBehavior(sampleRate int) *ScheduledBehavior {
	return &ScheduledBehavior{
		SampleRate:       sampleRate,
		state:            Unscheduled,
		pendingStartTime: unset,
		pendingEndTime:   unset,
	}
}

// State returns the current lifecycle stage.
func (s *ScheduledBehavior) State() State { return s.state }

// PendingOrStartTime reports the start time this behavior will begin
// playing at, and true, as long as it hasn't started yet (Unscheduled
// behaviors report false, as do ones already Playing or Finished). Used
// by the engine's connect-horizon check, which runs before the behavior
// has ever been processed (and so before UpdateSchedulingInfo has had a
// chance to promote pendingStartTime into a committed startFrame).
func (s *ScheduledBehavior) PendingOrStartTime() (float64, bool) {
	if s.state == Playing || s.state == Finished {
		return 0, false
	}
	if s.haveStart {
		return float64(s.startFrame) / float64(s.SampleRate), true
	}
	if s.pendingStartTime != unset {
		return s.pendingStartTime, true
	}
	return 0, false
}

// Play schedules playback to start at time after (seconds, context time),
// transitioning to Scheduled. Must be called under the graph lock.
func (s *ScheduledBehavior) Play(after float64) {
	s.pendingStartTime = after
	s.state = Scheduled
}

// Stop schedules playback to end at time after. Must be called under the
// graph lock.
func (s *ScheduledBehavior) Stop(after float64) {
	s.pendingEndTime = after
}

// Reset returns the behavior to its initial unscheduled state, clearing
// any pending or committed schedule.
func (s *ScheduledBehavior) Reset() {
	s.state = Unscheduled
	s.pendingStartTime = unset
	s.pendingEndTime = unset
	s.haveStart = false
	s.haveEnd = false
	s.QuantumFrameOffset = 0
	s.NonSilentFramesToProcess = 0
}

func roundFrame(t float64, sampleRate int) int64 {
	return int64(math.Round(t * float64(sampleRate)))
}

// UpdateSchedulingInfo promotes any pending start/end time into committed
// frame values, decides whether this quantum produces any non-silent
// output, and advances the state machine, following spec.md 4.4 exactly:
// promote pending to committed (one-shot), compute frames, finish early if
// the end boundary has already passed, zero everything while unscheduled
// or finished or not yet started, otherwise compute the non-silent region
// and finish if the end boundary falls inside this quantum.
//
// quantumStartFrame is the absolute frame index of the first sample in
// this quantum; quantumFrameSize is normally auragraph.FrameCount.
func (s *ScheduledBehavior) UpdateSchedulingInfo(quantumStartFrame int64, quantumFrameSize int) {
	if s.pendingStartTime != unset {
		s.startFrame = roundFrame(s.pendingStartTime, s.SampleRate)
		s.haveStart = true
		s.pendingStartTime = unset
	}
	if s.pendingEndTime != unset {
		s.endFrame = roundFrame(s.pendingEndTime, s.SampleRate)
		s.haveEnd = true
		s.pendingEndTime = unset
	}

	if s.haveEnd && s.endFrame <= quantumStartFrame {
		// The end boundary passed before this quantum even started, so
		// none of it is playback: unlike the in-quantum trim below, there
		// is no partial region to preserve here.
		s.QuantumFrameOffset = 0
		s.NonSilentFramesToProcess = 0
		s.finish()
		return
	}

	if s.state == Unscheduled || s.state == Finished {
		s.QuantumFrameOffset = 0
		s.NonSilentFramesToProcess = 0
		return
	}

	if !s.haveStart || s.startFrame >= quantumStartFrame+int64(quantumFrameSize) {
		// No committed start yet, or it lies entirely beyond this
		// quantum: stay silent until it arrives.
		s.QuantumFrameOffset = 0
		s.NonSilentFramesToProcess = 0
		return
	}

	s.state = Playing
	offset := s.startFrame - quantumStartFrame
	if offset < 0 {
		offset = 0
	}
	s.QuantumFrameOffset = int(offset)
	s.NonSilentFramesToProcess = quantumFrameSize - int(offset)

	if s.haveEnd {
		endOffset := s.endFrame - quantumStartFrame
		if endOffset >= 0 && endOffset < int64(quantumFrameSize) {
			trimmed := int(endOffset) - s.QuantumFrameOffset
			if trimmed < 0 {
				trimmed = 0
			}
			s.NonSilentFramesToProcess = trimmed
			s.finish()
		}
	}
}

// finish transitions to Finished. It deliberately leaves
// QuantumFrameOffset/NonSilentFramesToProcess untouched: the in-quantum
// trim path in UpdateSchedulingInfo has already computed the correct
// partial-quantum values for the samples still to be emitted in *this*
// quantum before calling finish, and those must survive so the owning
// node's Process still emits them. Callers for whom the whole quantum is
// already past the end zero those fields themselves before calling
// finish; UpdateSchedulingInfo zeroes them again on every subsequent
// quantum via its Unscheduled/Finished early-return above.
func (s *ScheduledBehavior) finish() {
	s.state = Finished
}

// Finish is the public hook a concrete node calls once it has actually
// delivered the final samples of this quantum (e.g. AudioPlayer reaching
// end of file), enqueuing OnEnded through d rather than calling it inline.
func (s *ScheduledBehavior) Finish(d Dispatcher) {
	wasFinished := s.state == Finished
	s.finish()
	if !wasFinished && s.OnEnded != nil && d != nil {
		cb := s.OnEnded
		d.Enqueue(cb)
	}
}
