package performer

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-performer/debug"
)

// Mode is the session's exclusive state: recording and playback never run
// at the same time.
type Mode int

const (
	ModeIdle Mode = iota
	ModeRecording
	ModePlaying
)

func (m Mode) String() string {
	switch m {
	case ModeRecording:
		return "REC"
	case ModePlaying:
		return "PLAY"
	default:
		return "IDLE"
	}
}

// Snapshot is the session state the TUI renders from.
type Snapshot struct {
	Mode     Mode
	FileName string
	Velocity uint8
	Sustain  bool
	Events   int
	Status   string
}

// Session owns the recording, playback and persistence state of the
// performer. All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	send     Sink
	library  *Library
	recorder *Recorder
	player   *Player
	track    *Track

	mode        Mode
	velocity    uint8
	sustain     bool
	gate        time.Duration
	sustainGate time.Duration

	fileName string
	status   string

	notes chan PlayedNote

	// UpdateChan wakes the TUI after state changes. Buffered, non-blocking.
	UpdateChan chan struct{}
}

func NewSession(send Sink, library *Library, velocity uint8, gate, sustainGate time.Duration) *Session {
	if velocity == 0 || velocity > 127 {
		velocity = 100
	}
	return &Session{
		send:        send,
		library:     library,
		recorder:    NewRecorder(),
		track:       &Track{},
		velocity:    velocity,
		gate:        gate,
		sustainGate: sustainGate,
		fileName:    "untitled.mid",
		notes:       make(chan PlayedNote, 64),
		UpdateChan:  make(chan struct{}, 1),
	}
}

// Notes is the stream of playback note events, for key highlighting.
func (s *Session) Notes() <-chan PlayedNote {
	return s.notes
}

// Library exposes the recordings directory for the load picker.
func (s *Session) Library() *Library {
	return s.library
}

// Gate returns the note length currently applied to key presses.
func (s *Session) Gate() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentGate()
}

func (s *Session) currentGate() time.Duration {
	if s.sustain {
		return s.sustainGate
	}
	return s.gate
}

// KeyPress handles a virtual piano key: echo the note immediately and, when
// recording, capture it. The note off is scheduled one gate later.
func (s *Session) KeyPress(note uint8) {
	if !InRange(note) {
		return
	}

	s.mu.Lock()
	velocity := s.velocity
	gate := s.currentGate()
	recording := s.mode == ModeRecording
	s.mu.Unlock()

	s.send(gomidi.NoteOn(0, note, velocity))
	go func() {
		time.Sleep(gate)
		s.send(gomidi.NoteOff(0, note))
	}()

	if recording {
		s.recorder.Hit(note, velocity, gate)
		debug.Log("record", "note %d vel %d gate %s", note, velocity, gate)
		s.notify()
	}
}

// ToggleRecord starts a new recording or stops the one in progress.
func (s *Session) ToggleRecord() {
	s.stopPlayback()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeRecording {
		s.track = s.recorder.Stop()
		s.mode = ModeIdle
		s.status = fmt.Sprintf("recorded %d events", s.track.Len())
		debug.Log("record", "stopped, %d events", s.track.Len())
	} else {
		s.recorder.Start()
		s.mode = ModeRecording
		s.status = "recording"
		debug.Log("record", "started")
	}
	s.notify()
}

// TogglePlay starts replaying the current track or stops playback.
func (s *Session) TogglePlay() {
	s.mu.Lock()
	if s.mode == ModePlaying {
		player := s.player
		s.mu.Unlock()
		if player != nil {
			player.Stop()
		}
		return
	}
	if s.mode == ModeRecording {
		s.track = s.recorder.Stop()
	}
	if s.track.Empty() {
		s.mode = ModeIdle
		s.status = "nothing recorded yet"
		s.notify()
		s.mu.Unlock()
		return
	}

	player := NewPlayer(s.send, s.notes)
	done, err := player.Start(s.track)
	if err != nil {
		s.status = err.Error()
		s.notify()
		s.mu.Unlock()
		return
	}
	s.player = player
	s.mode = ModePlaying
	s.status = "playing"
	s.notify()
	s.mu.Unlock()

	debug.Log("play", "started, %d events", s.track.Len())

	go func() {
		<-done
		s.mu.Lock()
		if s.mode == ModePlaying && s.player == player {
			s.mode = ModeIdle
			s.status = "playback finished"
			s.player = nil
		}
		s.mu.Unlock()
		debug.Log("play", "finished")
		s.notify()
	}()
}

// StopAll halts recording and playback, keeping the recorded track.
func (s *Session) StopAll() {
	s.stopPlayback()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeRecording {
		s.track = s.recorder.Stop()
		s.status = fmt.Sprintf("recorded %d events", s.track.Len())
	} else if s.mode == ModeIdle {
		s.status = "stopped"
	}
	s.mode = ModeIdle
	s.notify()
}

func (s *Session) stopPlayback() {
	s.mu.Lock()
	player := s.player
	s.mu.Unlock()
	if player != nil {
		player.Stop()
	}

	s.mu.Lock()
	if s.mode == ModePlaying {
		s.mode = ModeIdle
		s.status = "stopped"
		s.player = nil
	}
	s.mu.Unlock()
}

// Save writes the current track to the library. An empty name gets a
// timestamped default. Errors are returned and also kept on the status line.
func (s *Session) Save(name string) error {
	s.mu.Lock()
	track := s.track
	s.mu.Unlock()

	if track.Empty() {
		return s.fail("nothing recorded to save")
	}
	if name == "" {
		name = DefaultName()
	}
	if err := s.library.Ensure(); err != nil {
		return s.failErr("save", err)
	}
	path := s.library.PathFor(name)
	if err := SaveTrack(path, track); err != nil {
		return s.failErr("save", err)
	}

	s.mu.Lock()
	s.fileName = filepath.Base(path)
	s.status = "saved " + s.fileName
	s.notify()
	s.mu.Unlock()
	debug.Log("file", "saved %s (%d events)", path, track.Len())
	return nil
}

// Load reads a MIDI file and replaces the current track. Any recording or
// playback in progress is stopped first.
func (s *Session) Load(path string) error {
	s.StopAll()

	track, err := LoadTrack(path)
	if err != nil {
		return s.failErr("load", err)
	}

	s.mu.Lock()
	s.track = track
	s.fileName = filepath.Base(path)
	s.status = fmt.Sprintf("loaded %s (%d events)", s.fileName, track.Len())
	s.notify()
	s.mu.Unlock()
	debug.Log("file", "loaded %s (%d events)", path, track.Len())
	return nil
}

// Track returns a copy of the current track.
func (s *Session) Track() *Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.track.Clone()
}

// AdjustVelocity nudges the key velocity, clamped to 1..127.
func (s *Session) AdjustVelocity(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := int(s.velocity) + delta
	if v < 1 {
		v = 1
	}
	if v > 127 {
		v = 127
	}
	s.velocity = uint8(v)
	s.notify()
}

// ToggleSustain switches between the short and long note gate.
func (s *Session) ToggleSustain() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sustain = !s.sustain
	s.notify()
}

// Snapshot returns the state the TUI renders from.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Mode:     s.mode,
		FileName: s.fileName,
		Velocity: s.velocity,
		Sustain:  s.sustain,
		Events:   s.track.Len(),
		Status:   s.status,
	}
}

func (s *Session) fail(msg string) error {
	s.mu.Lock()
	s.status = msg
	s.notify()
	s.mu.Unlock()
	return fmt.Errorf("%s", msg)
}

func (s *Session) failErr(op string, err error) error {
	wrapped := fmt.Errorf("%s: %w", op, err)
	s.mu.Lock()
	s.status = wrapped.Error()
	s.notify()
	s.mu.Unlock()
	debug.Log("file", "%v", wrapped)
	return wrapped
}

// notify wakes the TUI. The send never blocks, so it is safe to call with
// or without the mutex held.
func (s *Session) notify() {
	select {
	case s.UpdateChan <- struct{}{}:
	default:
	}
}
