package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-performer/performer"
	"go-performer/theme"
)

// How long a fired key stays lit.
const pressDecay = 200 * time.Millisecond

// uiMode tracks which overlay (if any) owns the keyboard.
type uiMode int

const (
	uiNormal uiMode = iota
	uiSaveInput
	uiLoadPicker
	uiRenameInput
	uiConfirmDelete
)

type Model struct {
	Session  *performer.Session
	Theme    *theme.Theme
	PortName func() string

	notes   []performer.Note
	keymap  map[string]performer.Note
	pressed map[uint8]int

	mode    uiMode
	input   string
	files   []performer.RecordingInfo
	fileIdx int

	quitting bool
}

type UpdateMsg struct{}

type PlaybackNoteMsg performer.PlayedNote

type releaseMsg struct{ note uint8 }

func NewModel(session *performer.Session, th *theme.Theme, portName func() string) Model {
	return Model{
		Session:  session,
		Theme:    th,
		PortName: portName,
		notes:    performer.Layout(),
		keymap:   performer.BindingMap(),
		pressed:  make(map[uint8]int),
	}
}

func ListenForUpdates(session *performer.Session) tea.Cmd {
	return func() tea.Msg {
		<-session.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForNotes(session *performer.Session) tea.Cmd {
	return func() tea.Msg {
		return PlaybackNoteMsg(<-session.Notes())
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Session),
		ListenForNotes(m.Session),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case UpdateMsg:
		return m, ListenForUpdates(m.Session)

	case PlaybackNoteMsg:
		if msg.On {
			m.pressed[msg.Note]++
		} else if m.pressed[msg.Note] > 0 {
			m.pressed[msg.Note]--
		}
		return m, ListenForNotes(m.Session)

	case releaseMsg:
		if m.pressed[msg.note] > 0 {
			m.pressed[msg.note]--
		}
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		m.quitting = true
		m.Session.StopAll()
		return m, tea.Quit
	}

	switch m.mode {
	case uiSaveInput, uiRenameInput:
		return m.handleInputKey(key), nil
	case uiLoadPicker:
		return m.handlePickerKey(key), nil
	case uiConfirmDelete:
		return m.handleConfirmKey(key), nil
	}

	switch key {
	case " ":
		m.Session.ToggleRecord()

	case "enter":
		m.Session.TogglePlay()

	case "esc":
		m.Session.StopAll()

	case "tab":
		m.Session.ToggleSustain()

	case "+", "=":
		m.Session.AdjustVelocity(5)

	case "-", "_":
		m.Session.AdjustVelocity(-5)

	case "ctrl+s":
		m.mode = uiSaveInput
		m.input = ""

	case "ctrl+o":
		m.files, _ = m.Session.Library().List()
		m.fileIdx = 0
		m.mode = uiLoadPicker

	default:
		if note, ok := m.keymap[key]; ok {
			m.Session.KeyPress(note.MIDI)
			return m.press(note.MIDI)
		}
	}

	return m, nil
}

// press lights a key and schedules its visual release.
func (m Model) press(note uint8) (tea.Model, tea.Cmd) {
	m.pressed[note]++
	return m, tea.Tick(pressDecay, func(time.Time) tea.Msg {
		return releaseMsg{note: note}
	})
}

func (m Model) handleInputKey(key string) Model {
	switch key {
	case "enter":
		name := strings.TrimSpace(m.input)
		if m.mode == uiSaveInput {
			m.Session.Save(name)
		} else if len(m.files) > 0 && name != "" {
			if err := m.Session.Library().Rename(m.files[m.fileIdx].Filename, name); err == nil {
				m.files, _ = m.Session.Library().List()
			}
			m.mode = uiLoadPicker
			m.input = ""
			return m
		}
		m.mode = uiNormal
		m.input = ""
	case "esc":
		if m.mode == uiRenameInput {
			m.mode = uiLoadPicker
		} else {
			m.mode = uiNormal
		}
		m.input = ""
	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	default:
		// Only accept printable characters, no path separators.
		if len(key) == 1 && key[0] >= 32 && key[0] < 127 && key != "/" && key != "\\" {
			m.input += key
		}
	}
	return m
}

func (m Model) handlePickerKey(key string) Model {
	switch key {
	case "j", "down":
		if m.fileIdx < len(m.files)-1 {
			m.fileIdx++
		}
	case "k", "up":
		if m.fileIdx > 0 {
			m.fileIdx--
		}
	case "enter", " ":
		if len(m.files) > 0 {
			m.Session.Load(m.files[m.fileIdx].Path)
			m.mode = uiNormal
		}
	case "r":
		if len(m.files) > 0 {
			m.mode = uiRenameInput
			m.input = strings.TrimSuffix(m.files[m.fileIdx].Filename, ".mid")
		}
	case "d":
		if len(m.files) > 0 {
			m.mode = uiConfirmDelete
		}
	case "esc", "q":
		m.mode = uiNormal
	}
	return m
}

func (m Model) handleConfirmKey(key string) Model {
	switch key {
	case "y", "Y":
		if len(m.files) > 0 {
			m.Session.Library().Delete(m.files[m.fileIdx].Filename)
			m.files, _ = m.Session.Library().List()
			if m.fileIdx >= len(m.files) {
				m.fileIdx = max(0, len(m.files)-1)
			}
		}
		m.mode = uiLoadPicker
	case "n", "N", "esc", "q":
		m.mode = uiLoadPicker
	}
	return m
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.Session.Snapshot()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	statusStyle := lipgloss.NewStyle().Foreground(m.Theme.Dim())
	recStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())
	playStyle := lipgloss.NewStyle().Foreground(m.Theme.Success())

	var modeTag string
	switch snap.Mode {
	case performer.ModeRecording:
		modeTag = recStyle.Render("● REC ")
	case performer.ModePlaying:
		modeTag = playStyle.Render("▶ PLAY")
	default:
		modeTag = dimStyle.Render("■ IDLE")
	}

	sustain := "off"
	if snap.Sustain {
		sustain = "on"
	}

	header := headerStyle.Render("go-performer") + "  " + modeTag +
		dimStyle.Render(fmt.Sprintf("  vel:%3d  sustain:%-3s  events:%d  out:%s",
			snap.Velocity, sustain, snap.Events, m.PortName()))

	fileLine := statusStyle.Render("file: " + snap.FileName)

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(fileLine)
	out.WriteString("\n\n")

	switch m.mode {
	case uiSaveInput:
		out.WriteString(m.viewInput("Save as"))
	case uiRenameInput:
		out.WriteString(m.viewInput("Rename to"))
	case uiLoadPicker:
		out.WriteString(m.viewPicker())
	case uiConfirmDelete:
		out.WriteString(m.viewConfirm())
	default:
		out.WriteString(RenderPiano(m.notes, m.pressed, m.Theme))
		out.WriteString("\n\n")
		if snap.Status != "" {
			out.WriteString(statusStyle.Render(snap.Status))
			out.WriteString("\n")
		}
		out.WriteString(dimStyle.Render("space:record  enter:play  esc:stop  ctrl+s:save  ctrl+o:load  tab:sustain  +/-:velocity  ctrl+c:quit"))
	}

	return out.String()
}

func (m Model) viewInput(label string) string {
	var out strings.Builder
	out.WriteString("─────────────────────────────────────────────────\n")
	out.WriteString(fmt.Sprintf("\n%s: %s_\n", label, m.input))
	out.WriteString("\n[enter] confirm  [esc] cancel\n")
	out.WriteString("\n─────────────────────────────────────────────────\n")
	return out.String()
}

func (m Model) viewPicker() string {
	var out strings.Builder
	out.WriteString("Recordings\n")
	out.WriteString("─────────────────────────────────────────────────\n")

	if len(m.files) == 0 {
		out.WriteString("  (no recordings yet)\n")
	}
	for i, f := range m.files {
		prefix := "  "
		if i == m.fileIdx {
			prefix = "> "
		}
		out.WriteString(fmt.Sprintf("%s%s  %s\n", prefix, f.ModTime.Format("01-02 15:04"), f.Filename))
	}

	out.WriteString("\nj/k:navigate  enter:load  r:rename  d:delete  esc:cancel\n")
	return out.String()
}

func (m Model) viewConfirm() string {
	name := ""
	if len(m.files) > 0 {
		name = m.files[m.fileIdx].Filename
	}
	var out strings.Builder
	out.WriteString("─────────────────────────────────────────────────\n")
	out.WriteString(fmt.Sprintf("\nDelete '%s'?\n\n", name))
	out.WriteString("  [y] Yes    [n] No\n")
	out.WriteString("\n─────────────────────────────────────────────────\n")
	return out.String()
}
