package source

import "testing"

type fakeDispatcher struct {
	calls []func()
}

func (d *fakeDispatcher) Enqueue(fn func()) { d.calls = append(d.calls, fn) }

func TestUnscheduledStaysSilent(t *testing.T) {
	sb := NewScheduledBehavior(44100)
	sb.UpdateSchedulingInfo(0, 128)
	if sb.State() != Unscheduled {
		t.Fatalf("want Unscheduled, got %v", sb.State())
	}
	if sb.NonSilentFramesToProcess != 0 {
		t.Fatalf("want 0 non-silent frames, got %d", sb.NonSilentFramesToProcess)
	}
}

func TestPlayAtQuantumBoundaryStartsImmediately(t *testing.T) {
	sb := NewScheduledBehavior(44100)
	sb.Play(0)
	sb.UpdateSchedulingInfo(0, 128)
	if sb.State() != Playing {
		t.Fatalf("want Playing, got %v", sb.State())
	}
	if sb.QuantumFrameOffset != 0 || sb.NonSilentFramesToProcess != 128 {
		t.Fatalf("want full-block playback, got offset=%d frames=%d", sb.QuantumFrameOffset, sb.NonSilentFramesToProcess)
	}
}

func TestPlayMidQuantumComputesOffset(t *testing.T) {
	sb := NewScheduledBehavior(44100)
	startTime := 64.0 / 44100
	sb.Play(startTime)
	sb.UpdateSchedulingInfo(0, 128)
	if sb.QuantumFrameOffset != 64 {
		t.Fatalf("want offset 64, got %d", sb.QuantumFrameOffset)
	}
	if sb.NonSilentFramesToProcess != 64 {
		t.Fatalf("want 64 non-silent frames, got %d", sb.NonSilentFramesToProcess)
	}
}

func TestStopInsideQuantumTrimsAndFinishes(t *testing.T) {
	sb := NewScheduledBehavior(44100)
	sb.Play(0)
	sb.UpdateSchedulingInfo(0, 128)
	sb.Stop(32.0 / 44100)
	sb.UpdateSchedulingInfo(0, 128)
	if sb.NonSilentFramesToProcess != 32 {
		t.Fatalf("want 32 non-silent frames, got %d", sb.NonSilentFramesToProcess)
	}
	if sb.State() != Finished {
		t.Fatalf("want Finished, got %v", sb.State())
	}
}

func TestEndBeforeQuantumFinishesImmediately(t *testing.T) {
	sb := NewScheduledBehavior(44100)
	sb.Play(0)
	sb.Stop(0)
	sb.UpdateSchedulingInfo(256, 128)
	if sb.State() != Finished {
		t.Fatalf("want Finished, got %v", sb.State())
	}
	if sb.NonSilentFramesToProcess != 0 {
		t.Fatalf("want 0 non-silent frames, got %d", sb.NonSilentFramesToProcess)
	}
}

func TestFinishEnqueuesOnEndedOnceOnDispatcher(t *testing.T) {
	sb := NewScheduledBehavior(44100)
	ended := false
	sb.OnEnded = func() { ended = true }
	d := &fakeDispatcher{}

	sb.Finish(d)
	if len(d.calls) != 1 {
		t.Fatalf("want 1 enqueued callback, got %d", len(d.calls))
	}
	d.calls[0]()
	if !ended {
		t.Fatal("onEnded callback never ran")
	}

	sb.Finish(d)
	if len(d.calls) != 1 {
		t.Fatal("Finish must not enqueue onEnded twice")
	}
}

func TestFinishedStatePersistsUntilReset(t *testing.T) {
	sb := NewScheduledBehavior(44100)
	sb.Play(0)
	sb.Stop(0)
	sb.UpdateSchedulingInfo(0, 128)
	if sb.State() != Finished {
		t.Fatalf("want Finished, got %v", sb.State())
	}
	sb.UpdateSchedulingInfo(128, 128)
	if sb.State() != Finished {
		t.Fatalf("want Finished to persist, got %v", sb.State())
	}
	sb.Reset()
	if sb.State() != Unscheduled {
		t.Fatalf("want Unscheduled after Reset, got %v", sb.State())
	}
}
