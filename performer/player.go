package performer

import (
	"errors"
	"runtime"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Sink receives the MIDI messages produced by live keys and playback.
type Sink func(msg gomidi.Message) error

// PlayedNote tells the UI that playback fired a note.
type PlayedNote struct {
	Note uint8
	On   bool
}

// Player replays a track with its original inter-event timing. One Player
// drives at most one playback; the session creates a fresh one per play.
type Player struct {
	send    Sink
	channel uint8
	notes   chan<- PlayedNote // nil ok; sends never block

	mu      sync.Mutex
	playing bool
	stop    chan struct{}
}

func NewPlayer(send Sink, notes chan<- PlayedNote) *Player {
	return &Player{send: send, notes: notes}
}

// Playing reports whether a playback goroutine is running.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Start begins replaying the track in the background. The returned channel
// closes once the last event has been sent (immediately for an empty track).
func (p *Player) Start(tr *Track) (<-chan struct{}, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return nil, errors.New("player: already playing")
	}
	p.playing = true
	p.stop = make(chan struct{})

	done := make(chan struct{})
	go p.run(tr.Clone().Events, p.stop, done)
	return done, nil
}

// Stop interrupts playback. Safe to call any number of times, including
// after playback finished on its own.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	p.playing = false
	close(p.stop)
}

func (p *Player) run(events []Event, stop, done chan struct{}) {
	// Pin the dispatch goroutine for steadier timer wakeups.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var open [128]bool
	defer func() {
		// Never leave notes ringing when interrupted.
		for note, on := range open {
			if on {
				p.send(gomidi.NoteOff(p.channel, uint8(note)))
				p.notify(PlayedNote{Note: uint8(note), On: false})
			}
		}
		p.mu.Lock()
		p.playing = false
		p.mu.Unlock()
		close(done)
	}()

	t0 := time.Now()
	for _, ev := range events {
		if wait := ev.Offset - time.Since(t0); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-stop:
				timer.Stop()
				return
			case <-timer.C:
			}
		} else {
			select {
			case <-stop:
				return
			default:
			}
		}

		if ev.On {
			p.send(gomidi.NoteOn(p.channel, ev.Note, ev.Velocity))
			open[ev.Note] = true
		} else {
			p.send(gomidi.NoteOff(p.channel, ev.Note))
			open[ev.Note] = false
		}
		p.notify(PlayedNote{Note: ev.Note, On: ev.On})
	}
}

func (p *Player) notify(n PlayedNote) {
	if p.notes == nil {
		return
	}
	select {
	case p.notes <- n:
	default:
	}
}
