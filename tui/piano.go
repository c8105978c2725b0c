package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-performer/performer"
	"go-performer/theme"
)

const (
	whiteKeyWidth = 4
	blackKeyWidth = 3
	keyGap        = 1
)

// RenderPiano draws the virtual keyboard: accidentals on the top row
// straddling the naturals below, note names underneath. pressed maps a MIDI
// note to how many holds are currently lighting it.
func RenderPiano(notes []performer.Note, pressed map[uint8]int, th *theme.Theme) string {
	white := lipgloss.NewStyle().
		Background(lipgloss.Color("#ececec")).
		Foreground(lipgloss.Color("#30303a"))
	black := lipgloss.NewStyle().
		Background(lipgloss.Color("#1e1e28")).
		Foreground(lipgloss.Color("#b4b4c8"))
	hit := lipgloss.NewStyle().
		Background(th.Success()).
		Foreground(lipgloss.Color("#1e1e28"))
	nameStyle := lipgloss.NewStyle().Foreground(th.Dim())

	var top, bottom, names strings.Builder
	topW, bottomW := 0, 0

	for _, n := range notes {
		style := white
		if pressed[n.MIDI] > 0 {
			style = hit
		}

		if n.Accidental {
			// Straddle the gap between the surrounding naturals.
			at := bottomW - 2
			if at < topW {
				at = topW
			}
			top.WriteString(strings.Repeat(" ", at-topW))
			if pressed[n.MIDI] > 0 {
				top.WriteString(hit.Render(center(n.Binding, blackKeyWidth)))
			} else {
				top.WriteString(black.Render(center(n.Binding, blackKeyWidth)))
			}
			topW = at + blackKeyWidth
			continue
		}

		bottom.WriteString(style.Render(center(n.Binding, whiteKeyWidth)))
		bottom.WriteString(strings.Repeat(" ", keyGap))
		names.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", whiteKeyWidth+keyGap, n.Name)))
		bottomW += whiteKeyWidth + keyGap
	}

	return top.String() + "\n" + bottom.String() + "\n" + names.String()
}

func center(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}
