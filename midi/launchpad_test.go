package midi

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

type recorder struct {
	mu   sync.Mutex
	sent [][]byte
}

func (r *recorder) send(msg gomidi.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, append([]byte(nil), msg.Bytes()...))
	return nil
}

func (r *recorder) messages() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]byte(nil), r.sent...)
}

func newTestLaunchpad() (*Launchpad, *recorder) {
	rec := &recorder{}
	return newLaunchpad("test", rec.send, 0), rec
}

func TestLaunchpadPerformActions(t *testing.T) {
	lp, rec := newTestLaunchpad()

	lp.PerformActions(PaletteAction{Note: 11, Colour: 5}, PulseAction{Note: 104, Colour: 6})

	assert.Equal(t, [][]byte{{0x90, 11, 5}, {0xB2, 104, 6}}, rec.messages())
}

func TestLaunchpadPerformActionsAt(t *testing.T) {
	lp, rec := newTestLaunchpad()

	lp.PerformActionsAt(time.Now().Add(-time.Second), FillAction{Colour: 1})
	require.Len(t, rec.messages(), 1)

	lp.PerformActionsAt(time.Now().Add(20*time.Millisecond), PaletteAction{Note: 12, Colour: 3})
	assert.Len(t, rec.messages(), 1)
	require.Eventually(t, func() bool { return len(rec.messages()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []byte{0x90, 12, 3}, rec.messages()[1])
}

func TestLaunchpadScheduledOrder(t *testing.T) {
	lp, rec := newTestLaunchpad()
	defer lp.Close()

	at := time.Now().Add(30 * time.Millisecond)
	var want [][]byte
	for i := uint8(0); i < 100; i++ {
		lp.PerformActionsAt(at, PaletteAction{Note: 11, Colour: i})
		want = append(want, []byte{0x90, 11, i})
	}
	// earlier time, later call: still sent first
	lp.PerformActionsAt(at.Add(-10*time.Millisecond), PaletteAction{Note: 12, Colour: 1})
	want = append([][]byte{{0x90, 12, 1}}, want...)

	require.Eventually(t, func() bool { return len(rec.messages()) == len(want) }, time.Second, 5*time.Millisecond)
	assert.Equal(t, want, rec.messages())
}

func TestLaunchpadPastWriteWaitsForPending(t *testing.T) {
	lp, rec := newTestLaunchpad()
	defer lp.Close()

	at := time.Now().Add(20 * time.Millisecond)
	lp.PerformActionsAt(at, PaletteAction{Note: 11, Colour: 5})
	time.Sleep(40 * time.Millisecond)
	lp.PerformActionsAt(at, PaletteAction{Note: 11, Colour: 9})

	require.Eventually(t, func() bool { return len(rec.messages()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, [][]byte{{0x90, 11, 5}, {0x90, 11, 9}}, rec.messages())
}

func TestLaunchpadCloseDropsPending(t *testing.T) {
	lp, rec := newTestLaunchpad()

	lp.PerformActionsAt(time.Now().Add(30*time.Millisecond), PaletteAction{Note: 11, Colour: 5})
	require.NoError(t, lp.Close())
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, [][]byte{Encode(FillAction{})[0].Bytes()}, rec.messages())
}

func TestLaunchpadButtons(t *testing.T) {
	lp, _ := newTestLaunchpad()

	lp.receive([]byte{0x90, 11, 127})
	lp.receive([]byte{0x40, 1, 2}) // garbage, dropped
	lp.receive([]byte{0xB0, 104, 0})
	lp.receive([]byte{0x90, 89, 0})

	assert.Equal(t, ButtonEvent{ButtonPad, 11, true}, <-lp.Buttons())
	assert.Equal(t, ButtonEvent{ButtonControl, 104, false}, <-lp.Buttons())
	assert.Equal(t, ButtonEvent{ButtonSelector, 89, false}, <-lp.Buttons())
	assert.Empty(t, lp.Buttons())
}

func waitText(ctx context.Context, lp *Launchpad) <-chan error {
	errc := make(chan error, 1)
	go func() { errc <- lp.WriteTextAndWait(ctx, 5, "hello") }()
	return errc
}

func TestWriteTextAndWaitAck(t *testing.T) {
	lp, rec := newTestLaunchpad()
	errc := waitText(context.Background(), lp)

	require.Eventually(t, func() bool { return lp.subscribers() == 1 }, time.Second, time.Millisecond)
	lp.receive([]byte{0xF0, 0x00, 0x20, 0x29, 0x02, 0x18, 0x16, 0xF7}) // unrelated sysex
	lp.receive(textDone.Bytes())

	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("no ack")
	}
	assert.Zero(t, lp.subscribers())

	require.Len(t, rec.messages(), 1)
	assert.Equal(t, []byte{0xF0, 0x00, 0x20, 0x29, 0x02, 0x18, 0x14, 5, 0, 'h', 'e', 'l', 'l', 'o', 0xF7}, rec.messages()[0])
}

func TestWriteTextAndWaitDisconnect(t *testing.T) {
	lp, _ := newTestLaunchpad()
	errc := waitText(context.Background(), lp)

	require.Eventually(t, func() bool { return lp.subscribers() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, lp.Close())

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrDisconnected)
	case <-time.After(time.Second):
		t.Fatal("not released on close")
	}
	assert.Zero(t, lp.subscribers())
}

func TestWriteTextAndWaitContext(t *testing.T) {
	lp, _ := newTestLaunchpad()
	ctx, cancel := context.WithCancel(context.Background())
	errc := waitText(ctx, lp)

	require.Eventually(t, func() bool { return lp.subscribers() == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("not released on cancel")
	}
	assert.Zero(t, lp.subscribers())
}

func TestLaunchpadClose(t *testing.T) {
	lp, rec := newTestLaunchpad()

	require.NoError(t, lp.Close())
	require.NoError(t, lp.Close())

	select {
	case <-lp.Done():
	default:
		t.Fatal("done not closed")
	}

	// blanked once, then silent
	lp.PerformActions(PaletteAction{Note: 11, Colour: 5})
	assert.Equal(t, [][]byte{Encode(FillAction{})[0].Bytes()}, rec.messages())
}
