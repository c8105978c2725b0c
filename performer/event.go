package performer

import (
	"sort"
	"time"
)

// Event is a single note on/off, stamped with its offset from the start of
// the recording.
type Event struct {
	Offset   time.Duration `json:"offset"`
	Note     uint8         `json:"note"`
	Velocity uint8         `json:"velocity"`
	On       bool          `json:"on"`
}

// Track is the ordered event sequence for one recording session. Offsets are
// monotonically non-decreasing and every note on has a matching off.
type Track struct {
	Events []Event
}

// Append adds an event to the end of the track. An offset earlier than the
// last event is clamped so ordering always holds.
func (t *Track) Append(ev Event) {
	if n := len(t.Events); n > 0 && ev.Offset < t.Events[n-1].Offset {
		ev.Offset = t.Events[n-1].Offset
	}
	t.Events = append(t.Events, ev)
}

// Merge inserts events into the track keeping offset order. Used to fold the
// recorder's scheduled note offs back into the live sequence.
func (t *Track) Merge(events []Event) {
	t.Events = append(t.Events, events...)
	sort.SliceStable(t.Events, func(i, j int) bool {
		return t.Events[i].Offset < t.Events[j].Offset
	})
}

func (t *Track) Len() int {
	return len(t.Events)
}

func (t *Track) Empty() bool {
	return len(t.Events) == 0
}

// Duration returns the offset of the last event.
func (t *Track) Duration() time.Duration {
	if len(t.Events) == 0 {
		return 0
	}
	return t.Events[len(t.Events)-1].Offset
}

// Balanced reports whether every note on has a matching off per pitch.
func (t *Track) Balanced() bool {
	var open [128]int
	for _, ev := range t.Events {
		if ev.On {
			open[ev.Note]++
		} else if open[ev.Note] > 0 {
			open[ev.Note]--
		}
	}
	for _, n := range open {
		if n != 0 {
			return false
		}
	}
	return true
}

// CloseOpenNotes appends note offs for any pitch left hanging, at the given
// offset (or the end of the track, whichever is later).
func (t *Track) CloseOpenNotes(at time.Duration) {
	var open [128]int
	for _, ev := range t.Events {
		if ev.On {
			open[ev.Note]++
		} else if open[ev.Note] > 0 {
			open[ev.Note]--
		}
	}
	if end := t.Duration(); at < end {
		at = end
	}
	for note := 0; note < 128; note++ {
		for ; open[note] > 0; open[note]-- {
			t.Append(Event{Offset: at, Note: uint8(note), On: false})
		}
	}
}

// Clone returns a copy safe to hand to the player while the session keeps
// mutating its own track.
func (t *Track) Clone() *Track {
	events := make([]Event, len(t.Events))
	copy(events, t.Events)
	return &Track{Events: events}
}
