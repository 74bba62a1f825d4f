package sched

import (
	"go.uber.org/zap"

	"github.com/strandlabs/strand/errors"
)

// strandState describes scheduling state.
type strandState uint8

const (
	stateReady strandState = iota
	stateRunning
	stateParked
	stateDone
)

// Strand is one cooperatively scheduled flow of control. Strands run on
// goroutines, but the dispatcher hands execution to exactly one of them
// at a time, so the runtime as a whole remains a single logical thread.
type Strand struct {
	id      uint64
	fn      func()
	resume  chan error
	wakeErr error
	state   strandState
}

// ID returns the strand's identifier, unique within its runtime.
func (s *Strand) ID() uint64 { return s.id }

// Runtime is the cooperative scheduler. It owns the ready queue, the
// shutdown flag consulted by the handle table's allocator, and the
// blocking-disallowed flag toggled around object teardown.
//
// Control passes between strands only at explicit suspension points:
// Yield and Block. Everything in between runs atomically with respect
// to the rest of the runtime.
type Runtime struct {
	log     *zap.Logger
	current *Strand
	ready   []*Strand
	parked  []*Strand
	// dispatcher <- strand: "I stopped running, pick the next one".
	trap               chan struct{}
	nextID             uint64
	live               int
	blockingDisallowed bool
	shuttingDown       bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime's logger. The default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(rt *Runtime) {
		if log != nil {
			rt.log = log
		}
	}
}

// New creates an idle runtime.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		log:  zap.NewNop(),
		trap: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// MayCreateResources reports whether new runtime objects may be
// created. It is false once Shutdown has begun.
func (rt *Runtime) MayCreateResources() bool {
	return !rt.shuttingDown
}

// SetBlockingDisallowed toggles the no-blocking flag and returns its
// previous value. While the flag is raised, Block fails immediately
// instead of suspending the caller.
func (rt *Runtime) SetBlockingDisallowed(disallowed bool) bool {
	prev := rt.blockingDisallowed
	rt.blockingDisallowed = disallowed
	return prev
}

// Go registers fn as a new strand and queues it for execution. The
// strand does not run until the dispatcher schedules it.
func (rt *Runtime) Go(fn func()) *Strand {
	rt.nextID++
	s := &Strand{
		id:     rt.nextID,
		fn:     fn,
		resume: make(chan error),
	}
	rt.live++
	rt.ready = append(rt.ready, s)
	go func() {
		<-s.resume
		s.fn()
		s.state = stateDone
		rt.live--
		rt.trap <- struct{}{}
	}()
	return s
}

// Run drives the ready queue until every strand has finished. If all
// remaining strands are blocked with nothing left to wake them, the
// parked strands are woken with a deadlock error and Run returns
// ErrDeadlock after they finish.
func (rt *Runtime) Run() error {
	var deadlocked bool
	for rt.live > 0 {
		if len(rt.ready) == 0 {
			if len(rt.parked) == 0 {
				// Strands exist but are neither ready nor parked;
				// cannot happen with handoff discipline.
				break
			}
			deadlocked = true
			rt.log.Warn("deadlock: waking blocked strands with an error",
				zap.Int("parked", len(rt.parked)))
			for _, s := range rt.parked {
				s.wakeErr = errors.Deadlock(errors.OpSched)
				s.state = stateReady
				rt.ready = append(rt.ready, s)
			}
			rt.parked = rt.parked[:0]
			continue
		}
		s := rt.ready[0]
		rt.ready = rt.ready[1:]
		s.state = stateRunning
		rt.current = s
		err := s.wakeErr
		s.wakeErr = nil
		s.resume <- err
		<-rt.trap
		rt.current = nil
	}
	if deadlocked {
		return errors.Deadlock(errors.OpSched)
	}
	return nil
}

// Yield reschedules the current strand at the back of the ready queue
// and hands control to the dispatcher. It is a no-op outside a strand.
func (rt *Runtime) Yield() {
	s := rt.current
	if s == nil {
		return
	}
	s.state = stateReady
	rt.ready = append(rt.ready, s)
	rt.trap <- struct{}{}
	<-s.resume
}

// Block parks the current strand until another strand resumes it. It
// is the suspension point every blocking runtime operation goes
// through:
//
//   - inside a no-blocking fence it fails with ErrBlockingDisallowed
//     without a context switch,
//   - during shutdown it fails with ErrShuttingDown,
//   - outside a strand it fails with ErrInvalidArgument,
//   - when woken by Shutdown or deadlock detection it returns the
//     corresponding error.
//
// The reason string is carried on errors for diagnostics.
func (rt *Runtime) Block(reason string) error {
	if rt.blockingDisallowed {
		return errors.BlockingDisallowed(errors.OpSched, reason)
	}
	if rt.shuttingDown {
		return errors.ShuttingDown(errors.OpSched)
	}
	s := rt.current
	if s == nil {
		return errors.InvalidArgument(errors.OpSched, "blocking outside a strand: "+reason)
	}
	s.state = stateParked
	rt.parked = append(rt.parked, s)
	rt.trap <- struct{}{}
	return <-s.resume
}

// Resume makes a parked strand runnable again. Resuming a strand that
// is not parked is a no-op.
func (rt *Runtime) Resume(s *Strand) {
	if s == nil || s.state != stateParked {
		return
	}
	for i, p := range rt.parked {
		if p == s {
			rt.parked = append(rt.parked[:i], rt.parked[i+1:]...)
			break
		}
	}
	s.state = stateReady
	rt.ready = append(rt.ready, s)
}

// Shutdown begins runtime teardown: new resource creation is refused
// and every parked strand is woken with ErrShuttingDown. Strands
// already in the ready queue still get to finish.
func (rt *Runtime) Shutdown() {
	if rt.shuttingDown {
		return
	}
	rt.shuttingDown = true
	rt.log.Debug("shutdown begun", zap.Int("parked", len(rt.parked)))
	for _, s := range rt.parked {
		s.wakeErr = errors.ShuttingDown(errors.OpSched)
		s.state = stateReady
		rt.ready = append(rt.ready, s)
	}
	rt.parked = rt.parked[:0]
}

// Current returns the running strand, or nil between strands.
func (rt *Runtime) Current() *Strand { return rt.current }

// Live returns the number of strands that have not finished.
func (rt *Runtime) Live() int { return rt.live }
