package midi

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/drivers"
)

type fakeIn struct {
	drivers.In
	name string
}

func (p fakeIn) String() string { return p.name }

type fakeOut struct {
	drivers.Out
	name string
}

func (p fakeOut) String() string { return p.name }

type fakeController struct {
	id     string
	done   chan struct{}
	closed bool
}

func (c *fakeController) ID() string                                            { return c.id }
func (c *fakeController) Buttons() <-chan ButtonEvent                           { return nil }
func (c *fakeController) Done() <-chan struct{}                                 { return c.done }
func (c *fakeController) PerformActions(...Action)                              {}
func (c *fakeController) PerformActionsAt(time.Time, ...Action)                 {}
func (c *fakeController) WriteTextAndWait(context.Context, uint8, string) error { return nil }
func (c *fakeController) Close() error {
	if !c.closed {
		c.closed = true
		close(c.done)
	}
	return nil
}

type fakePorts struct {
	mu   sync.Mutex
	ins  []drivers.In
	outs []drivers.Out
}

func (p *fakePorts) set(names ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ins, p.outs = nil, nil
	for _, n := range names {
		p.ins = append(p.ins, fakeIn{name: n})
		p.outs = append(p.outs, fakeOut{name: n})
	}
}

func (p *fakePorts) list() ([]drivers.In, []drivers.Out) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ins, p.outs
}

func newTestManager(ports *fakePorts, fail bool) (*DeviceManager, *[]*fakeController) {
	dm := NewDeviceManager("", 0)
	dm.ports = ports.list
	var made []*fakeController
	dm.connect = func(id string, in drivers.In, out drivers.Out) (Controller, error) {
		if fail {
			return nil, errors.New("busy")
		}
		c := &fakeController{id: id, done: make(chan struct{})}
		made = append(made, c)
		return c, nil
	}
	return dm, &made
}

func TestDeviceManagerConnectDisconnect(t *testing.T) {
	ports := &fakePorts{}
	dm, made := newTestManager(ports, false)
	ctx := context.Background()

	ports.set("IAC Driver Bus 1", "Launchpad MK2 20:0")
	dm.scan(ctx)

	ev := <-dm.Events()
	assert.Equal(t, DeviceConnected, ev.Type)
	assert.Equal(t, "Launchpad MK2 20:0", ev.ID)
	require.NotNil(t, dm.Launchpad())
	require.Len(t, *made, 1)

	// still present: nothing new
	dm.scan(ctx)
	assert.Empty(t, dm.Events())
	assert.Len(t, *made, 1)

	ports.set("IAC Driver Bus 1")
	dm.scan(ctx)

	ev = <-dm.Events()
	assert.Equal(t, DeviceDisconnected, ev.Type)
	assert.Nil(t, dm.Launchpad())
	assert.True(t, (*made)[0].closed)
}

func TestDeviceManagerIgnoresOthers(t *testing.T) {
	ports := &fakePorts{}
	dm, _ := newTestManager(ports, false)

	ports.set("Launchpad X LPX MIDI", "nanoKEY2")
	dm.scan(context.Background())

	assert.Empty(t, dm.Events())
	assert.Nil(t, dm.Launchpad())
}

func TestDeviceManagerConnectFailure(t *testing.T) {
	ports := &fakePorts{}
	dm, _ := newTestManager(ports, true)

	ports.set("Launchpad MK2")
	dm.scan(context.Background())

	assert.Empty(t, dm.Events())
	assert.Nil(t, dm.Launchpad())
}

func TestDeviceManagerRunClosesEvents(t *testing.T) {
	ports := &fakePorts{}
	dm, made := newTestManager(ports, false)
	ports.set("Launchpad MK2")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- dm.Run(ctx) }()

	ev := <-dm.Events()
	assert.Equal(t, DeviceConnected, ev.Type)
	cancel()

	require.NoError(t, <-done)
	_, open := <-dm.Events()
	assert.False(t, open)
	assert.True(t, (*made)[0].closed)
}

func TestMatchingOut(t *testing.T) {
	outs := []drivers.Out{fakeOut{name: "Launchpad MK2 1"}, fakeOut{name: "Other"}}
	assert.Equal(t, "Launchpad MK2 1", matchingOut(outs, "Launchpad MK2 0").String())
	assert.Nil(t, matchingOut(outs, "Missing"))
	assert.Equal(t, "Launchpad MK2", trimPortNumber("Launchpad MK2 20"))
	assert.Equal(t, "Launchpad MK2", trimPortNumber("Launchpad MK2"))
}
