package performer

import "fmt"

// Keyboard range: two octaves plus the top C, C4 through C6.
const (
	FirstNote uint8 = 60
	LastNote  uint8 = 84
)

// Note is one key of the virtual piano.
type Note struct {
	MIDI       uint8
	Name       string // scientific pitch name, ex: "C#4"
	Accidental bool   // sharp, ie. "black" key
	Binding    string // terminal key that triggers it
}

// pitchClasses relative to C. Sharps only, matching the key labels.
var pitchClasses = [12]struct {
	name       string
	accidental bool
}{
	{"C", false}, {"C#", true}, {"D", false}, {"D#", true},
	{"E", false}, {"F", false}, {"F#", true}, {"G", false},
	{"G#", true}, {"A", false}, {"A#", true}, {"B", false},
}

// bindings cover FirstNote..LastNote in order. The lower octave sits on the
// bottom letter rows (naturals on Z-M, accidentals on the home row above),
// the upper octave on the Q row with accidentals on the number row.
var bindings = []string{
	"z", "s", "x", "d", "c", "v", "g", "b", "h", "n", "j", "m",
	"q", "2", "w", "3", "e", "r", "5", "t", "6", "y", "7", "u",
	"i",
}

// NoteName returns the scientific pitch name for a MIDI note number.
func NoteName(n uint8) string {
	pc := pitchClasses[n%12]
	octave := int(n)/12 - 1
	return fmt.Sprintf("%s%d", pc.name, octave)
}

// IsAccidental reports whether the note is a sharp (black key).
func IsAccidental(n uint8) bool {
	return pitchClasses[n%12].accidental
}

// InRange reports whether a note is on the virtual keyboard.
func InRange(n uint8) bool {
	return n >= FirstNote && n <= LastNote
}

// Layout returns the keyboard notes in ascending order.
func Layout() []Note {
	notes := make([]Note, 0, int(LastNote-FirstNote)+1)
	for n := FirstNote; n <= LastNote; n++ {
		notes = append(notes, Note{
			MIDI:       n,
			Name:       NoteName(n),
			Accidental: IsAccidental(n),
			Binding:    bindings[n-FirstNote],
		})
	}
	return notes
}

// BindingMap indexes the layout by terminal key.
func BindingMap() map[string]Note {
	m := make(map[string]Note, len(bindings))
	for _, n := range Layout() {
		m[n.Binding] = n
	}
	return m
}
