package midi

import (
	"bytes"
	"container/heap"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go-lightshow/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var messageSendCount uint64

// Launchpad drives a Novation Launchpad MK2 over a pair of MIDI ports.
type Launchpad struct {
	id       string
	send     func(msg gomidi.Message) error
	stopFunc func()
	latency  time.Duration

	sendMu sync.Mutex

	buttons chan ButtonEvent
	done    chan struct{}
	closed  sync.Once

	subMu  sync.Mutex
	subs   map[int]chan []byte
	nextID int

	// pending holds scheduled writes ordered by time, then by call order.
	// Due writes are sent while schedMu is held.
	schedMu sync.Mutex
	pending writeQueue
	seq     uint64
	wake    chan struct{}
}

type scheduledWrite struct {
	at   time.Time
	seq  uint64
	msgs []gomidi.Message
}

type writeQueue []*scheduledWrite

func (q writeQueue) Len() int { return len(q) }
func (q writeQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}
func (q writeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *writeQueue) Push(x any)   { *q = append(*q, x.(*scheduledWrite)) }
func (q *writeQueue) Pop() any {
	old := *q
	w := old[len(old)-1]
	*q = old[:len(old)-1]
	return w
}

// NewLaunchpad opens both ports and switches the device to the session
// layout. latency is added to every scheduled write.
func NewLaunchpad(id string, inPort drivers.In, outPort drivers.Out, latency time.Duration) (*Launchpad, error) {
	if outPort == nil {
		return nil, fmt.Errorf("launchpad %s: no output port", id)
	}
	send, err := gomidi.SendTo(outPort)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	lp := newLaunchpad(id, send, latency)

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			lp.receive(msg.Bytes())
		}, gomidi.UseSysEx())
		if err != nil {
			lp.Close()
			return nil, fmt.Errorf("open input: %w", err)
		}
		lp.stopFunc = stop
	}

	lp.write(selectSessionLayout())
	return lp, nil
}

func newLaunchpad(id string, send func(gomidi.Message) error, latency time.Duration) *Launchpad {
	lp := &Launchpad{
		id:      id,
		send:    send,
		latency: latency,
		buttons: make(chan ButtonEvent, 64),
		done:    make(chan struct{}),
		subs:    make(map[int]chan []byte),
		wake:    make(chan struct{}, 1),
	}
	go lp.schedule()
	return lp
}

func (lp *Launchpad) ID() string {
	return lp.id
}

func (lp *Launchpad) Buttons() <-chan ButtonEvent {
	return lp.buttons
}

func (lp *Launchpad) Done() <-chan struct{} {
	return lp.done
}

// receive handles one raw incoming message. Sysex goes to subscribers,
// everything else is decoded into a button event.
func (lp *Launchpad) receive(raw []byte) {
	if len(raw) > 0 && raw[0] == 0xF0 {
		lp.publish(raw)
		return
	}

	ev, err := Decode(raw)
	if err != nil {
		debug.Log("lp-recv", "drop: %v", err)
		return
	}
	btn, ok := Classify(ev)
	if !ok {
		return
	}

	select {
	case <-lp.done:
	case lp.buttons <- btn:
	default:
		debug.Log("lp-recv", "button queue full, dropped %+v", btn)
	}
}

func (lp *Launchpad) write(msgs ...gomidi.Message) {
	lp.sendMu.Lock()
	defer lp.sendMu.Unlock()

	select {
	case <-lp.done:
		return
	default:
	}

	for _, msg := range msgs {
		if err := lp.send(msg); err != nil {
			debug.Log("lp-send", "send % x: %v", msg.Bytes(), err)
		}
	}

	count := atomic.AddUint64(&messageSendCount, uint64(len(msgs)))
	debug.LogEvery(500, "lp-send", "total=%d", count)
}

// PerformActions sends actions immediately, in order.
func (lp *Launchpad) PerformActions(actions ...Action) {
	var msgs []gomidi.Message
	for _, a := range actions {
		msgs = append(msgs, Encode(a)...)
	}
	lp.write(msgs...)
}

// PerformActionsAt sends actions at a wall-clock time. A time in the past
// sends now. Writes go out in time order, and writes for the same time go
// out in call order. Scheduled writes cannot be cancelled; they are dropped
// if the device closes first.
func (lp *Launchpad) PerformActionsAt(at time.Time, actions ...Action) {
	var msgs []gomidi.Message
	for _, a := range actions {
		msgs = append(msgs, Encode(a)...)
	}
	at = at.Add(lp.latency)

	lp.schedMu.Lock()
	defer lp.schedMu.Unlock()

	if len(lp.pending) == 0 && !at.After(time.Now()) {
		lp.write(msgs...)
		return
	}
	lp.seq++
	heap.Push(&lp.pending, &scheduledWrite{at: at, seq: lp.seq, msgs: msgs})

	select {
	case lp.wake <- struct{}{}:
	default:
	}
}

// schedule sends pending writes as they fall due until the device closes.
func (lp *Launchpad) schedule() {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		next := lp.flushDue(time.Now())

		var fire <-chan time.Time
		if next > 0 {
			timer.Reset(next)
			fire = timer.C
		}

		select {
		case <-lp.done:
			return
		case <-lp.wake:
		case <-fire:
		}
		timer.Stop()
	}
}

// flushDue sends every write due at now and returns the wait until the
// next one, or 0 if nothing is pending.
func (lp *Launchpad) flushDue(now time.Time) time.Duration {
	lp.schedMu.Lock()
	defer lp.schedMu.Unlock()

	for len(lp.pending) > 0 && !lp.pending[0].at.After(now) {
		w := heap.Pop(&lp.pending).(*scheduledWrite)
		lp.write(w.msgs...)
	}
	if len(lp.pending) == 0 {
		return 0
	}
	return lp.pending[0].at.Sub(now)
}

// WriteTextAndWait scrolls text once and waits for the device to report
// the end of the scroll. It fails with ErrDisconnected if the device closes
// or with the context's error if ctx ends first.
func (lp *Launchpad) WriteTextAndWait(ctx context.Context, colour uint8, text string) error {
	id, ch := lp.subscribe()
	defer lp.unsubscribe(id)

	lp.PerformActions(TextAction{Colour: colour, Text: text})

	for {
		select {
		case raw := <-ch:
			if bytes.Equal(raw, textDone) {
				return nil
			}
		case <-lp.done:
			return ErrDisconnected
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (lp *Launchpad) subscribe() (int, <-chan []byte) {
	lp.subMu.Lock()
	defer lp.subMu.Unlock()
	lp.nextID++
	ch := make(chan []byte, 8)
	lp.subs[lp.nextID] = ch
	return lp.nextID, ch
}

func (lp *Launchpad) unsubscribe(id int) {
	lp.subMu.Lock()
	defer lp.subMu.Unlock()
	delete(lp.subs, id)
}

func (lp *Launchpad) subscribers() int {
	lp.subMu.Lock()
	defer lp.subMu.Unlock()
	return len(lp.subs)
}

func (lp *Launchpad) publish(raw []byte) {
	msg := append([]byte(nil), raw...)
	lp.subMu.Lock()
	defer lp.subMu.Unlock()
	for _, ch := range lp.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Close blanks the surface, stops listening and releases anyone waiting
// on the device. It is safe to call more than once.
func (lp *Launchpad) Close() error {
	lp.closed.Do(func() {
		lp.PerformActions(FillAction{Colour: 0})
		if lp.stopFunc != nil {
			lp.stopFunc()
		}
		lp.sendMu.Lock()
		close(lp.done)
		lp.sendMu.Unlock()
	})
	return nil
}
