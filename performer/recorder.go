package performer

import (
	"sync"
	"time"
)

// Recorder captures key presses as timestamped note events. Terminals only
// deliver key presses (no release), so each hit records a note on at the
// press and schedules the matching off one gate later. The offs are merged
// in offset order when recording stops.
type Recorder struct {
	mu      sync.Mutex
	active  bool
	start   time.Time
	track   *Track
	pending []Event

	now func() time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Start begins a new recording session, discarding any previous take.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = true
	r.start = r.now()
	r.track = &Track{}
	r.pending = nil
}

// Active reports whether a recording session is in progress.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Hit records a key press: note on now, note off one gate later.
func (r *Recorder) Hit(note, velocity uint8, gate time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return
	}
	offset := r.now().Sub(r.start)
	r.track.Append(Event{Offset: offset, Note: note, Velocity: velocity, On: true})
	r.pending = append(r.pending, Event{Offset: offset + gate, Note: note, On: false})
}

// Stop ends the session and returns the finished track with all scheduled
// note offs merged in. Returns an empty track if nothing was recorded.
func (r *Recorder) Stop() *Track {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return &Track{}
	}
	r.active = false

	track := r.track
	track.Merge(r.pending)
	track.CloseOpenNotes(track.Duration())
	r.track = nil
	r.pending = nil
	return track
}
