package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-lightshow/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// DefaultPortMatch is the port-name fragment of a Launchpad MK2.
const DefaultPortMatch = "Launchpad MK2"

// DeviceEvent is emitted when a Launchpad connects or disconnects
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

func (t DeviceEventType) String() string {
	if t == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}

// DeviceManager watches the MIDI ports for one Launchpad and reports it
// coming and going. Only the first matching port pair is used.
type DeviceManager struct {
	match    string
	latency  time.Duration
	current  Controller
	mu       sync.RWMutex
	events   chan DeviceEvent
	pollRate time.Duration

	ports   func() ([]drivers.In, []drivers.Out)
	connect func(id string, in drivers.In, out drivers.Out) (Controller, error)
}

// NewDeviceManager creates a manager for ports whose name contains match.
// An empty match uses DefaultPortMatch.
func NewDeviceManager(match string, latency time.Duration) *DeviceManager {
	if match == "" {
		match = DefaultPortMatch
	}
	dm := &DeviceManager{
		match:    match,
		latency:  latency,
		events:   make(chan DeviceEvent, 16),
		pollRate: time.Second,
		ports: func() ([]drivers.In, []drivers.Out) {
			return gomidi.GetInPorts(), gomidi.GetOutPorts()
		},
	}
	dm.connect = func(id string, in drivers.In, out drivers.Out) (Controller, error) {
		return NewLaunchpad(id, in, out, dm.latency)
	}
	return dm
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Launchpad returns the connected controller, or nil
func (dm *DeviceManager) Launchpad() Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.current
}

// Run polls the ports until ctx ends. It closes the events channel on
// return.
func (dm *DeviceManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeCurrent()
			close(dm.events)
			return nil
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	// Port enumeration can hang on some backends
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		in, out := dm.ports()
		ch <- portsResult{inPorts: in, outPorts: out}
	}()

	var inPorts []drivers.In
	var outPorts []drivers.Out

	select {
	case result := <-ch:
		inPorts = result.inPorts
		outPorts = result.outPorts
	case <-time.After(3 * time.Second):
		debug.Log("devices", "port scan timed out")
		return
	case <-ctx.Done():
		return
	}

	dm.mu.RLock()
	current := dm.current
	dm.mu.RUnlock()

	var found string
	for i, inPort := range inPorts {
		if !dm.matches(inPort.String()) {
			continue
		}
		id := inPort.String()
		found = id
		if current != nil {
			break
		}

		outPort := matchingOut(outPorts, id)
		if outPort == nil {
			debug.Log("devices", "%s has no output port", id)
			found = ""
			continue
		}

		c, err := dm.connect(id, inPorts[i], outPort)
		if err != nil {
			debug.Log("devices", "connect %s: %v", id, err)
			found = ""
			continue
		}

		dm.mu.Lock()
		dm.current = c
		dm.mu.Unlock()
		debug.Log("devices", "connected %s", id)
		dm.emit(ctx, DeviceEvent{Type: DeviceConnected, Controller: c, ID: id})
		return
	}

	if current != nil && found != current.ID() {
		dm.closeCurrent()
		debug.Log("devices", "disconnected %s", current.ID())
		dm.emit(ctx, DeviceEvent{Type: DeviceDisconnected, ID: current.ID()})
	}
}

func (dm *DeviceManager) emit(ctx context.Context, ev DeviceEvent) {
	select {
	case dm.events <- ev:
	case <-ctx.Done():
	}
}

func (dm *DeviceManager) closeCurrent() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.current != nil {
		dm.current.Close()
		dm.current = nil
	}
}

func (dm *DeviceManager) matches(name string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(dm.match))
}

func matchingOut(outs []drivers.Out, name string) drivers.Out {
	for _, out := range outs {
		if strings.EqualFold(out.String(), name) {
			return out
		}
	}
	// Some backends number the in and out ports differently
	for _, out := range outs {
		if strings.HasPrefix(strings.ToLower(out.String()), strings.ToLower(trimPortNumber(name))) {
			return out
		}
	}
	return nil
}

// trimPortNumber drops a trailing " <n>" or ":<n>" port suffix.
func trimPortNumber(name string) string {
	i := strings.LastIndexAny(name, " :")
	if i < 0 {
		return name
	}
	for _, r := range name[i+1:] {
		if r < '0' || r > '9' {
			return name
		}
	}
	return name[:i]
}
