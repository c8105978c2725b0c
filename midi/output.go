package midi

import (
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-performer/debug"
)

// Output manages the MIDI out port used for live echo and playback. The
// port is opened lazily on the first Send; if the named port is missing it
// falls back to the first available port, then to a virtual port, then to a
// silent no-op so the performer keeps working without any MIDI setup.
type Output struct {
	mu       sync.Mutex
	wantPort string
	portName string
	send     func(gomidi.Message) error
	opened   bool
}

// NewOutput creates an output targeting the named port ("" = first found).
func NewOutput(portName string) *Output {
	return &Output{wantPort: portName}
}

// PortName returns the resolved port name, or a placeholder before the
// first Send / when nothing could be opened.
func (o *Output) PortName() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.portName == "" {
		return "(no output)"
	}
	return o.portName
}

// Send delivers a MIDI message to the output port, opening it on first use.
func (o *Output) Send(msg gomidi.Message) error {
	o.mu.Lock()
	if !o.opened {
		o.open()
	}
	send := o.send
	o.mu.Unlock()

	if send == nil {
		return nil
	}
	return send(msg)
}

// open resolves and opens the out port. Called with the mutex held.
func (o *Output) open() {
	o.opened = true

	outPorts, ok := scanOutPorts(3 * time.Second)
	if !ok {
		debug.Log("midi", "port scan timed out")
		return
	}

	var port drivers.Out
	if o.wantPort != "" {
		want := strings.ToLower(o.wantPort)
		for _, p := range outPorts {
			if strings.Contains(strings.ToLower(p.String()), want) {
				port = p
				break
			}
		}
	} else if len(outPorts) > 0 {
		port = outPorts[0]
	}

	if port != nil {
		send, err := gomidi.SendTo(port)
		if err == nil {
			o.portName = port.String()
			o.send = send
			debug.Log("midi", "opened out port %s", o.portName)
			return
		}
		debug.Log("midi", "open %s: %v", port.String(), err)
	}

	// No usable hardware port: expose a virtual one so a synth can attach.
	if drv, ok := drivers.Get().(*rtmididrv.Driver); ok {
		if virt, err := drv.OpenVirtualOut("go-performer"); err == nil {
			if send, err := gomidi.SendTo(virt); err == nil {
				o.portName = "go-performer (virtual)"
				o.send = send
				debug.Log("midi", "opened virtual out port")
				return
			}
		}
	}

	debug.Log("midi", "no MIDI output available, running silent")
}

// Close releases the MIDI driver.
func (o *Output) Close() {
	o.mu.Lock()
	o.send = nil
	o.opened = false
	o.portName = ""
	o.mu.Unlock()
	gomidi.CloseDriver()
}

// scanOutPorts lists out ports with a timeout (CoreMIDI can hang).
func scanOutPorts(timeout time.Duration) ([]drivers.Out, bool) {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	select {
	case ports := <-ch:
		return ports, true
	case <-time.After(timeout):
		return nil, false
	}
}
