package channel

import (
	"errors"
	"testing"

	strerrors "github.com/strandlabs/strand/errors"
	"github.com/strandlabs/strand/handle"
	"github.com/strandlabs/strand/sched"
)

func newChannel(t *testing.T, rt *sched.Runtime, table *handle.Table, capacity int) (handle.Handle, *Channel) {
	t.Helper()
	h, err := New(table, rt, capacity)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ptr, err := table.Query(h, Type)
	if err != nil || ptr == nil {
		t.Fatalf("Query failed: (%v, %v)", ptr, err)
	}
	return h, ptr.(*Channel)
}

func TestNew_InvalidArguments(t *testing.T) {
	rt := sched.New()
	table := handle.New(rt)

	if _, err := New(table, nil, 1); !errors.Is(err, strerrors.ErrInvalidArgument) {
		t.Fatalf("expected invalid_argument for nil runtime, got %v", err)
	}
	if _, err := New(table, rt, -1); !errors.Is(err, strerrors.ErrInvalidArgument) {
		t.Fatalf("expected invalid_argument for negative capacity, got %v", err)
	}
}

func TestBuffered_SendRecv(t *testing.T) {
	rt := sched.New()
	table := handle.New(rt)
	_, ch := newChannel(t, rt, table, 2)

	var got []any
	rt.Go(func() {
		for i := 0; i < 4; i++ {
			if err := ch.Send(i); err != nil {
				t.Errorf("Send %d failed: %v", i, err)
			}
		}
	})
	rt.Go(func() {
		for i := 0; i < 4; i++ {
			v, err := ch.Recv()
			if err != nil {
				t.Errorf("Recv %d failed: %v", i, err)
			}
			got = append(got, v)
		}
	})

	if err := rt.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 values, got %v", got)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("expected FIFO order, got %v", got)
		}
	}
}

func TestSynchronous_Rendezvous(t *testing.T) {
	rt := sched.New()
	table := handle.New(rt)
	_, ch := newChannel(t, rt, table, 0)

	var got any
	rt.Go(func() {
		if err := ch.Send("hello"); err != nil {
			t.Errorf("Send failed: %v", err)
		}
	})
	rt.Go(func() {
		v, err := ch.Recv()
		if err != nil {
			t.Errorf("Recv failed: %v", err)
		}
		got = v
	})

	if err := rt.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got != "hello" {
		t.Fatalf("expected %q, got %v", "hello", got)
	}
}

func TestSynchronous_OneRendezvousPerReceiver(t *testing.T) {
	rt := sched.New()
	table := handle.New(rt)
	_, ch := newChannel(t, rt, table, 0)

	var (
		recvd     any
		recvErr   error
		firstErr  error
		secondErr error
	)
	rt.Go(func() {
		recvd, recvErr = ch.Recv()
	})
	rt.Go(func() {
		firstErr = ch.Send("a")
		// The receiver is spent; with nobody left to take the value
		// this send must block, not buffer.
		secondErr = ch.Send("b")
	})

	if err := rt.Run(); !errors.Is(err, strerrors.ErrDeadlock) {
		t.Fatalf("expected the second send to block forever, Run returned %v", err)
	}
	if recvErr != nil || recvd != "a" {
		t.Fatalf("Recv: (%v, %v)", recvd, recvErr)
	}
	if firstErr != nil {
		t.Fatalf("first Send failed: %v", firstErr)
	}
	if !errors.Is(secondErr, strerrors.ErrDeadlock) {
		t.Fatalf("second Send must not complete without a receiver, got %v", secondErr)
	}
	if ch.Len() != 0 {
		t.Fatalf("synchronous channel must never hold a buffered value, got %d", ch.Len())
	}
}

func TestTrySendTryRecv(t *testing.T) {
	rt := sched.New()
	table := handle.New(rt)
	_, ch := newChannel(t, rt, table, 1)

	ok, err := ch.TrySend("a")
	if err != nil || !ok {
		t.Fatalf("TrySend into empty buffer: (%v, %v)", ok, err)
	}
	ok, err = ch.TrySend("b")
	if err != nil || ok {
		t.Fatalf("TrySend into full buffer must refuse: (%v, %v)", ok, err)
	}

	v, ok, err := ch.TryRecv()
	if err != nil || !ok || v != "a" {
		t.Fatalf("TryRecv: (%v, %v, %v)", v, ok, err)
	}
	_, ok, err = ch.TryRecv()
	if err != nil || ok {
		t.Fatalf("TryRecv from empty buffer must refuse: (%v, %v)", ok, err)
	}
}

func TestClose_WakesWaiters(t *testing.T) {
	rt := sched.New()
	table := handle.New(rt)
	h, ch := newChannel(t, rt, table, 0)

	var recvErr error
	rt.Go(func() {
		_, recvErr = ch.Recv()
	})
	rt.Go(func() {
		if err := table.Close(h); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})

	if err := rt.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !errors.Is(recvErr, strerrors.ErrClosedChannel) {
		t.Fatalf("waiter must observe closed_channel, got %v", recvErr)
	}
	if err := ch.Send("x"); !errors.Is(err, strerrors.ErrClosedChannel) {
		t.Fatalf("send after close must fail, got %v", err)
	}
}

func TestDuplicates_ShareChannel(t *testing.T) {
	rt := sched.New()
	table := handle.New(rt)
	h1, ch := newChannel(t, rt, table, 4)

	h2, err := table.Dup(h1)
	if err != nil {
		t.Fatalf("Dup failed: %v", err)
	}
	ptr, err := table.Query(h2, Type)
	if err != nil || ptr.(*Channel) != ch {
		t.Fatalf("duplicate must reach the same channel, got (%v, %v)", ptr, err)
	}

	// Closing one duplicate leaves the channel usable.
	if err := table.Close(h1); err != nil {
		t.Fatalf("Close(h1) failed: %v", err)
	}
	if err := ch.Send("still open"); err != nil {
		t.Fatalf("Send after closing one duplicate failed: %v", err)
	}

	// Closing the last duplicate tears it down.
	if err := table.Close(h2); err != nil {
		t.Fatalf("Close(h2) failed: %v", err)
	}
	if err := ch.Send("x"); !errors.Is(err, strerrors.ErrClosedChannel) {
		t.Fatalf("send after final close must fail, got %v", err)
	}
}

// blockingObject tries to perform a channel send from inside its own
// teardown.
type blockingObject struct {
	handle.Base
	ch       *Channel
	closeErr error
}

func (o *blockingObject) Query(typ *handle.Type) any { return nil }

func (o *blockingObject) Close() {
	o.closeErr = o.ch.Send("from teardown")
}

func TestTeardown_CannotBlock(t *testing.T) {
	rt := sched.New()
	table := handle.New(rt)
	_, ch := newChannel(t, rt, table, 0) // nothing will ever receive

	obj := &blockingObject{ch: ch}
	h, err := table.Make(obj)
	if err != nil {
		t.Fatalf("Make failed: %v", err)
	}

	rt.Go(func() {
		if err := table.Close(h); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	if err := rt.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !errors.Is(obj.closeErr, strerrors.ErrBlockingDisallowed) {
		t.Fatalf("blocking inside teardown must fail deterministically, got %v", obj.closeErr)
	}

	// The fence is gone once teardown finished: blocking works again.
	var after error
	waiter := rt.Go(func() {
		after = rt.Block("post-teardown")
	})
	rt.Go(func() {
		rt.Resume(waiter)
	})
	if err := rt.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if after != nil {
		t.Fatalf("blocking after teardown must succeed, got %v", after)
	}
}
