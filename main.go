package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-performer/config"
	"go-performer/debug"
	"go-performer/midi"
	"go-performer/performer"
	"go-performer/theme"
	"go-performer/tui"
)

func main() {
	if os.Getenv("GO_PERFORMER_DEBUG") != "" {
		if err := debug.Enable(); err != nil {
			fmt.Printf("debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("config: %v\n", err)
		os.Exit(1)
	}

	out := midi.NewOutput(cfg.OutputPort)
	defer out.Close()

	library := performer.NewLibrary(cfg.RecordingsDir)
	session := performer.NewSession(
		out.Send,
		library,
		cfg.Velocity,
		time.Duration(cfg.GateMs)*time.Millisecond,
		time.Duration(cfg.SustainGateMs)*time.Millisecond,
	)

	th := theme.New(theme.Default())

	m := tui.NewModel(session, th, out.PortName)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Remember settings for next launch.
	snap := session.Snapshot()
	cfg.Velocity = snap.Velocity
	cfg.LastFile = snap.FileName
	if err := cfg.Save(); err != nil {
		fmt.Printf("config: %v\n", err)
	}
}
