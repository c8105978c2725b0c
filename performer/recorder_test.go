package performer

import (
	"testing"
	"time"
)

func TestRecorder_HitAndStop(t *testing.T) {
	r := NewRecorder()
	now := time.Unix(0, 0)
	r.now = func() time.Time { return now }

	r.Start()
	now = now.Add(ms(100))
	r.Hit(60, 100, ms(500))
	now = now.Add(ms(200))
	r.Hit(64, 90, ms(500))

	tr := r.Stop()
	if tr.Len() != 4 {
		t.Fatalf("expected 4 events, got %d", tr.Len())
	}

	want := []struct {
		offset time.Duration
		note   uint8
		on     bool
	}{
		{ms(100), 60, true},
		{ms(300), 64, true},
		{ms(600), 60, false},
		{ms(800), 64, false},
	}
	for i, w := range want {
		ev := tr.Events[i]
		if ev.Offset != w.offset || ev.Note != w.note || ev.On != w.on {
			t.Fatalf("event %d = %+v; want %+v", i, ev, w)
		}
	}
	if !tr.Balanced() {
		t.Fatalf("recorded track not balanced")
	}
}

func TestRecorder_OverlappingGates(t *testing.T) {
	r := NewRecorder()
	now := time.Unix(0, 0)
	r.now = func() time.Time { return now }

	r.Start()
	r.Hit(60, 100, ms(500))
	now = now.Add(ms(100))
	r.Hit(62, 100, ms(500))

	tr := r.Stop()
	// The off for 60 lands after the on for 62; merge keeps offset order.
	for i := 1; i < tr.Len(); i++ {
		if tr.Events[i].Offset < tr.Events[i-1].Offset {
			t.Fatalf("offsets not monotonic: %+v", tr.Events)
		}
	}
	if tr.Events[1].Note != 62 || !tr.Events[1].On {
		t.Fatalf("expected on(62) second, got %+v", tr.Events[1])
	}
}

func TestRecorder_HitWhenInactive(t *testing.T) {
	r := NewRecorder()
	r.Hit(60, 100, ms(500)) // no-op

	tr := r.Stop()
	if !tr.Empty() {
		t.Fatalf("expected empty track, got %d events", tr.Len())
	}
	if r.Active() {
		t.Fatalf("recorder should be inactive")
	}
}

func TestRecorder_StartDiscardsPreviousTake(t *testing.T) {
	r := NewRecorder()
	now := time.Unix(0, 0)
	r.now = func() time.Time { return now }

	r.Start()
	r.Hit(60, 100, ms(100))
	r.Stop()

	r.Start()
	tr := r.Stop()
	if !tr.Empty() {
		t.Fatalf("second take should start empty, got %d events", tr.Len())
	}
}
