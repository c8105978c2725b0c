package performer

import (
	"sync"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

type captured struct {
	note uint8
	on   bool
}

// captureSink collects decoded note messages.
func captureSink() (Sink, func() []captured) {
	var mu sync.Mutex
	var got []captured
	sink := func(msg gomidi.Message) error {
		var ch, key, vel uint8
		mu.Lock()
		defer mu.Unlock()
		if msg.GetNoteOn(&ch, &key, &vel) {
			got = append(got, captured{note: key, on: true})
		} else if msg.GetNoteOff(&ch, &key, &vel) {
			got = append(got, captured{note: key, on: false})
		}
		return nil
	}
	return sink, func() []captured {
		mu.Lock()
		defer mu.Unlock()
		out := make([]captured, len(got))
		copy(out, got)
		return out
	}
}

func waitDone(t *testing.T, done <-chan struct{}, timeout time.Duration) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("playback did not finish within %v", timeout)
	}
}

func TestPlayer_ReplaysInOrder(t *testing.T) {
	sink, events := captureSink()
	p := NewPlayer(sink, nil)

	tr := &Track{}
	tr.Append(Event{Offset: 0, Note: 60, Velocity: 100, On: true})
	tr.Append(Event{Offset: ms(30), Note: 60, On: false})

	start := time.Now()
	done, err := p.Start(tr)
	if err != nil {
		t.Fatal(err)
	}
	waitDone(t, done, 2*time.Second)

	got := events()
	want := []captured{{60, true}, {60, false}}
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %+v; want %+v", i, got[i], want[i])
		}
	}
	if elapsed := time.Since(start); elapsed < ms(30) {
		t.Fatalf("finished in %v, before the note off was due", elapsed)
	}
	if p.Playing() {
		t.Fatalf("player still reports playing")
	}
}

func TestPlayer_EmptyTrackFinishesImmediately(t *testing.T) {
	sink, events := captureSink()
	p := NewPlayer(sink, nil)

	done, err := p.Start(&Track{})
	if err != nil {
		t.Fatal(err)
	}
	waitDone(t, done, time.Second)

	if got := events(); len(got) != 0 {
		t.Fatalf("empty track emitted %d events", len(got))
	}
}

func TestPlayer_StopReleasesOpenNotes(t *testing.T) {
	sink, events := captureSink()
	p := NewPlayer(sink, nil)

	tr := &Track{}
	tr.Append(Event{Offset: 0, Note: 60, Velocity: 100, On: true})
	tr.Append(Event{Offset: 10 * time.Second, Note: 60, On: false})

	done, err := p.Start(tr)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(ms(50)) // let the note on go out
	p.Stop()
	p.Stop() // idempotent
	waitDone(t, done, time.Second)

	got := events()
	if len(got) != 2 || !got[0].on || got[1].on || got[1].note != 60 {
		t.Fatalf("expected on then flushed off for note 60, got %+v", got)
	}
}

func TestPlayer_DoubleStartRejected(t *testing.T) {
	sink, _ := captureSink()
	p := NewPlayer(sink, nil)

	tr := &Track{}
	tr.Append(Event{Offset: time.Second, Note: 60, Velocity: 100, On: true})
	tr.Append(Event{Offset: time.Second, Note: 60, On: false})

	done, err := p.Start(tr)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Start(tr); err == nil {
		t.Fatalf("expected second Start to fail")
	}
	p.Stop()
	waitDone(t, done, time.Second)
}

func TestPlayer_NotifiesPlayedNotes(t *testing.T) {
	sink, _ := captureSink()
	notes := make(chan PlayedNote, 8)
	p := NewPlayer(sink, notes)

	tr := &Track{}
	tr.Append(Event{Offset: 0, Note: 72, Velocity: 100, On: true})
	tr.Append(Event{Offset: ms(10), Note: 72, On: false})

	done, err := p.Start(tr)
	if err != nil {
		t.Fatal(err)
	}
	waitDone(t, done, time.Second)

	first := <-notes
	if first.Note != 72 || !first.On {
		t.Fatalf("first notification %+v; want on(72)", first)
	}
	second := <-notes
	if second.Note != 72 || second.On {
		t.Fatalf("second notification %+v; want off(72)", second)
	}
}
