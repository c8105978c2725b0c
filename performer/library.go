package performer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// RecordingInfo describes one saved MIDI file in the library.
type RecordingInfo struct {
	Filename string
	Path     string
	ModTime  time.Time
}

// Library is the directory of saved recordings.
type Library struct {
	dir string
}

func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

func (l *Library) Dir() string {
	return l.dir
}

// PathFor resolves a save name to a path inside the library, appending the
// .mid extension when missing. Absolute paths pass through untouched so the
// user can save anywhere.
func (l *Library) PathFor(name string) string {
	if !strings.HasSuffix(name, ".mid") && !strings.HasSuffix(name, ".midi") {
		name += ".mid"
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(l.dir, name)
}

// Ensure creates the library directory if it doesn't exist.
func (l *Library) Ensure() error {
	return os.MkdirAll(l.dir, 0755)
}

// List returns the saved recordings, newest first.
func (l *Library) List() ([]RecordingInfo, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RecordingInfo{}, nil
		}
		return nil, err
	}

	var recs []RecordingInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".mid") && !strings.HasSuffix(name, ".midi") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		recs = append(recs, RecordingInfo{
			Filename: name,
			Path:     filepath.Join(l.dir, name),
			ModTime:  info.ModTime(),
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].ModTime.After(recs[j].ModTime)
	})
	return recs, nil
}

// Rename renames a recording within the library.
func (l *Library) Rename(oldName, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return fmt.Errorf("rename %s: empty name", oldName)
	}
	return os.Rename(filepath.Join(l.dir, oldName), l.PathFor(newName))
}

// Delete removes a recording from the library.
func (l *Library) Delete(name string) error {
	return os.Remove(filepath.Join(l.dir, name))
}

// DefaultName returns a timestamped file name for an unnamed save.
func DefaultName() string {
	return "recording-" + time.Now().Format("2006-01-02_15-04-05") + ".mid"
}
