package channel

import (
	"github.com/strandlabs/strand/errors"
	"github.com/strandlabs/strand/handle"
	"github.com/strandlabs/strand/sched"
)

// Type is the capability queried to obtain a *Channel from a handle.
var Type = handle.NewType("channel")

// Channel is a bounded FIFO communication channel between strands. It
// lives behind a handle; duplicates share the channel and it tears
// down when the last of them is closed.
type Channel struct {
	handle.Base
	rt       *sched.Runtime
	buf      []any
	sendq    []*sched.Strand
	recvq    []*sched.Strand
	capacity int
	done     bool
}

// New creates a channel with the given buffer capacity and places it
// behind a handle in table. Capacity zero means fully synchronous:
// every send blocks until a receiver takes the value.
func New(table *handle.Table, rt *sched.Runtime, capacity int) (handle.Handle, error) {
	if rt == nil {
		return handle.None, errors.InvalidArgument(errors.OpChannel, "nil runtime")
	}
	if capacity < 0 {
		return handle.None, errors.InvalidArgument(errors.OpChannel, "negative capacity")
	}
	ch := &Channel{
		rt:       rt,
		capacity: capacity,
	}
	return table.Make(ch)
}

// Query implements handle.Object.
func (ch *Channel) Query(typ *handle.Type) any {
	if typ == Type {
		return ch
	}
	return nil
}

// Close implements handle.Object. It runs under the no-blocking fence,
// so it must not suspend: waiters are marked runnable and observe
// closed_channel when they get scheduled.
func (ch *Channel) Close() {
	ch.done = true
	for _, s := range ch.sendq {
		ch.rt.Resume(s)
	}
	for _, s := range ch.recvq {
		ch.rt.Resume(s)
	}
	ch.sendq = nil
	ch.recvq = nil
}

// Send enqueues v, blocking while the buffer is full. With capacity
// zero it blocks until a receiver arrives.
func (ch *Channel) Send(v any) error {
	for {
		if ch.done {
			return errors.ClosedChannel(errors.OpChannel, "send on closed channel")
		}
		if ch.capacity == 0 {
			if len(ch.recvq) > 0 {
				ch.buf = append(ch.buf, v)
				ch.wakeRecv()
				return nil
			}
		} else if len(ch.buf) < ch.capacity {
			ch.buf = append(ch.buf, v)
			ch.wakeRecv()
			return nil
		}
		if err := ch.park(&ch.sendq, "channel send"); err != nil {
			return err
		}
	}
}

// Recv dequeues the oldest value, blocking while the channel is empty.
func (ch *Channel) Recv() (any, error) {
	for {
		if len(ch.buf) > 0 {
			v := ch.buf[0]
			ch.buf = ch.buf[1:]
			ch.wakeSend()
			return v, nil
		}
		if ch.done {
			return nil, errors.ClosedChannel(errors.OpChannel, "recv on closed channel")
		}
		// A synchronous sender deposits only once a receiver waits, so
		// let one retry after this strand parks.
		if ch.capacity == 0 {
			ch.wakeSend()
		}
		if err := ch.park(&ch.recvq, "channel recv"); err != nil {
			return nil, err
		}
	}
}

// TrySend enqueues v without blocking, reporting whether it was
// accepted.
func (ch *Channel) TrySend(v any) (bool, error) {
	if ch.done {
		return false, errors.ClosedChannel(errors.OpChannel, "send on closed channel")
	}
	if ch.capacity == 0 && len(ch.recvq) == 0 {
		return false, nil
	}
	if ch.capacity > 0 && len(ch.buf) >= ch.capacity {
		return false, nil
	}
	ch.buf = append(ch.buf, v)
	ch.wakeRecv()
	return true, nil
}

// TryRecv dequeues without blocking, reporting whether a value was
// available.
func (ch *Channel) TryRecv() (any, bool, error) {
	if len(ch.buf) > 0 {
		v := ch.buf[0]
		ch.buf = ch.buf[1:]
		ch.wakeSend()
		return v, true, nil
	}
	if ch.done {
		return nil, false, errors.ClosedChannel(errors.OpChannel, "recv on closed channel")
	}
	return nil, false, nil
}

// Len returns the number of buffered values.
func (ch *Channel) Len() int { return len(ch.buf) }

// Cap returns the buffer capacity.
func (ch *Channel) Cap() int { return ch.capacity }

func (ch *Channel) park(q *[]*sched.Strand, reason string) error {
	s := ch.rt.Current()
	*q = append(*q, s)
	err := ch.rt.Block(reason)
	// Wakers dequeue the strand themselves; the entry is only still
	// here when Block failed without parking or the wake came from
	// shutdown or deadlock detection.
	for i, p := range *q {
		if p == s {
			*q = append((*q)[:i], (*q)[i+1:]...)
			break
		}
	}
	return err
}

// wakeRecv hands the deposit to one waiting receiver. The waiter is
// dequeued here, not when its park call resumes, so it can satisfy at
// most one rendezvous.
func (ch *Channel) wakeRecv() {
	if len(ch.recvq) > 0 {
		s := ch.recvq[0]
		ch.recvq = ch.recvq[1:]
		ch.rt.Resume(s)
	}
}

func (ch *Channel) wakeSend() {
	if len(ch.sendq) > 0 {
		s := ch.sendq[0]
		ch.sendq = ch.sendq[1:]
		ch.rt.Resume(s)
	}
}
