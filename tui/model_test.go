package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-performer/performer"
	"go-performer/theme"
)

func testModel(t *testing.T) (Model, func() int) {
	t.Helper()
	sent := 0
	sink := func(gomidi.Message) error { sent++; return nil }
	lib := performer.NewLibrary(t.TempDir())
	session := performer.NewSession(sink, lib, 100, 20*time.Millisecond, 60*time.Millisecond)
	m := NewModel(session, theme.New(theme.Default()), func() string { return "test-out" })
	return m, func() int { return sent }
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func update(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m
}

func TestRenderPianoShowsBindingsAndNames(t *testing.T) {
	out := RenderPiano(performer.Layout(), map[uint8]int{}, theme.New(theme.Default()))

	for _, want := range []string{"z", "m", "q", "i", "C4", "C5", "C6"} {
		if !strings.Contains(out, want) {
			t.Fatalf("piano output missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines != 2 {
		t.Fatalf("expected 3 rows, got %d newlines", lines)
	}
}

func TestModel_NoteKeySendsAndLights(t *testing.T) {
	m, sent := testModel(t)

	m = update(t, m, "z")
	if sent() == 0 {
		t.Fatalf("note key sent nothing")
	}
	if m.pressed[60] != 1 {
		t.Fatalf("pressed[60] = %d; want 1", m.pressed[60])
	}

	next, _ := m.Update(releaseMsg{note: 60})
	m = next.(Model)
	if m.pressed[60] != 0 {
		t.Fatalf("pressed[60] = %d after release; want 0", m.pressed[60])
	}
}

func TestModel_SpaceTogglesRecording(t *testing.T) {
	m, _ := testModel(t)

	m = update(t, m, " ")
	if m.Session.Snapshot().Mode != performer.ModeRecording {
		t.Fatalf("space did not start recording")
	}
	m = update(t, m, " ")
	if m.Session.Snapshot().Mode != performer.ModeIdle {
		t.Fatalf("space did not stop recording")
	}
}

func TestModel_SaveInputFlow(t *testing.T) {
	m, _ := testModel(t)

	// Record something so save has a track to write.
	m = update(t, m, " ", "z", " ")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = next.(Model)
	if m.mode != uiSaveInput {
		t.Fatalf("ctrl+s did not open save input")
	}

	m = update(t, m, "t", "a", "k", "e", "enter")
	if m.mode != uiNormal {
		t.Fatalf("enter did not close save input")
	}
	if _, err := os.Stat(m.Session.Library().PathFor("take")); err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
}

func TestModel_PickerNavigatesAndLoads(t *testing.T) {
	m, _ := testModel(t)

	m = update(t, m, " ", "z", " ")
	if err := m.Session.Save("first"); err != nil {
		t.Fatal(err)
	}
	if err := m.Session.Save("second"); err != nil {
		t.Fatal(err)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m = next.(Model)
	if m.mode != uiLoadPicker {
		t.Fatalf("ctrl+o did not open picker")
	}
	if len(m.files) != 2 {
		t.Fatalf("picker lists %d files; want 2", len(m.files))
	}

	m = update(t, m, "j")
	if m.fileIdx != 1 {
		t.Fatalf("j did not move selection")
	}
	m = update(t, m, "k", "enter")
	if m.mode != uiNormal {
		t.Fatalf("enter did not load and close picker")
	}
	if got := m.Session.Snapshot().FileName; !strings.HasSuffix(got, ".mid") {
		t.Fatalf("unexpected loaded file name %q", got)
	}
}

func TestModel_DeleteConfirmFlow(t *testing.T) {
	m, _ := testModel(t)

	m = update(t, m, " ", "z", " ")
	if err := m.Session.Save("doomed"); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(m.Session.Library().PathFor("doomed"))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m = next.(Model)

	m = update(t, m, "d")
	if m.mode != uiConfirmDelete {
		t.Fatalf("d did not open delete confirm")
	}
	m = update(t, m, "n")
	if m.mode != uiLoadPicker {
		t.Fatalf("n did not return to picker")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file deleted despite n: %v", err)
	}

	m = update(t, m, "d", "y")
	if m.mode != uiLoadPicker {
		t.Fatalf("y did not return to picker")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file still exists after delete: %v", err)
	}
	if len(m.files) != 0 {
		t.Fatalf("picker still lists %d files", len(m.files))
	}
}

func TestModel_ViewShowsStatusAndHelp(t *testing.T) {
	m, _ := testModel(t)

	view := m.View()
	for _, want := range []string{"go-performer", "IDLE", "test-out", "space:record", "untitled.mid"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}
