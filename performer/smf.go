package performer

import (
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// SMF conversion settings. 480 ticks per quarter at 120 BPM puts one tick at
// just over a millisecond, which is the file-format timing resolution.
const (
	TicksPerQuarter = 480
	DefaultBPM      = 120.0
)

// SaveTrack writes the track as a single-track Standard MIDI File.
func SaveTrack(path string, tr *Track) error {
	file := smf.New()
	file.TimeFormat = smf.MetricTicks(TicksPerQuarter)
	clock := smf.MetricTicks(TicksPerQuarter)

	var main smf.Track
	main.Add(0, smf.MetaTrackSequenceName("performance"))
	main.Add(0, smf.MetaTempo(DefaultBPM))

	prev := uint32(0)
	for _, ev := range tr.Events {
		tick := clock.Ticks(DefaultBPM, ev.Offset)
		var msg gomidi.Message
		if ev.On {
			msg = gomidi.NoteOn(0, ev.Note, ev.Velocity)
		} else {
			msg = gomidi.NoteOff(0, ev.Note)
		}
		main.Add(tick-prev, msg)
		prev = tick
	}
	main.Close(0)

	if err := file.Add(main); err != nil {
		return fmt.Errorf("build track: %w", err)
	}
	if err := file.WriteFile(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LoadTrack reads track 0 of a Standard MIDI File back into a Track. It
// honors tempo meta events and tolerates note ons with velocity 0 standing
// in for offs, as well as files that dump all offs at the end (the shape
// some recorders write).
func LoadTrack(path string) (*Track, error) {
	file, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if file.NumTracks() == 0 {
		return nil, fmt.Errorf("read %s: no tracks", path)
	}
	clock, ok := file.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("read %s: unsupported time format %v", path, file.TimeFormat)
	}

	bpm := DefaultBPM
	tr := &Track{}
	abs := time.Duration(0)

	var ch, key, vel uint8
	for _, ev := range file.Tracks[0] {
		abs += clock.Duration(bpm, ev.Delta)
		if ev.Message.GetMetaTempo(&bpm) {
			continue
		}
		if ev.Message.GetNoteOn(&ch, &key, &vel) {
			if vel > 0 {
				tr.Append(Event{Offset: abs, Note: key, Velocity: vel, On: true})
			} else {
				tr.Append(Event{Offset: abs, Note: key, On: false})
			}
			continue
		}
		if ev.Message.GetNoteOff(&ch, &key, &vel) {
			tr.Append(Event{Offset: abs, Note: key, On: false})
		}
	}

	tr.CloseOpenNotes(tr.Duration())
	return tr, nil
}
