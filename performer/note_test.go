package performer

import "testing"

func TestLayout_CoversRange(t *testing.T) {
	notes := Layout()
	if len(notes) != 25 {
		t.Fatalf("expected 25 notes, got %d", len(notes))
	}
	if notes[0].MIDI != FirstNote || notes[len(notes)-1].MIDI != LastNote {
		t.Fatalf("range %d..%d, want %d..%d", notes[0].MIDI, notes[len(notes)-1].MIDI, FirstNote, LastNote)
	}
	for i := 1; i < len(notes); i++ {
		if notes[i].MIDI != notes[i-1].MIDI+1 {
			t.Fatalf("notes not ascending at index %d", i)
		}
	}
}

func TestLayout_BindingsUnique(t *testing.T) {
	seen := map[string]uint8{}
	for _, n := range Layout() {
		if n.Binding == "" {
			t.Fatalf("note %d has no binding", n.MIDI)
		}
		if prev, ok := seen[n.Binding]; ok {
			t.Fatalf("binding %q used for both %d and %d", n.Binding, prev, n.MIDI)
		}
		seen[n.Binding] = n.MIDI
	}
}

func TestNoteName(t *testing.T) {
	cases := map[uint8]string{
		60: "C4",
		61: "C#4",
		69: "A4",
		71: "B4",
		72: "C5",
		84: "C6",
	}
	for midi, want := range cases {
		if got := NoteName(midi); got != want {
			t.Fatalf("NoteName(%d)=%q; want %q", midi, got, want)
		}
	}
}

func TestIsAccidental(t *testing.T) {
	blacks := map[uint8]bool{61: true, 63: true, 66: true, 68: true, 70: true}
	for n := FirstNote; n <= FirstNote+11; n++ {
		if got := IsAccidental(n); got != blacks[n] {
			t.Fatalf("IsAccidental(%d)=%v; want %v", n, got, blacks[n])
		}
	}
}

func TestBindingMap(t *testing.T) {
	m := BindingMap()
	if n, ok := m["z"]; !ok || n.MIDI != 60 {
		t.Fatalf("z => %v, %v; want middle C", n, ok)
	}
	if n, ok := m["i"]; !ok || n.MIDI != 84 {
		t.Fatalf("i => %v, %v; want C6", n, ok)
	}
	if !InRange(60) || InRange(59) || InRange(85) {
		t.Fatalf("InRange bounds wrong")
	}
}
