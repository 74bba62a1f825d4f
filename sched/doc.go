// Package sched provides the cooperative scheduler of the strand
// runtime.
//
// A Runtime executes strands, lightweight flows of control that run one
// at a time and hand execution over only at explicit suspension points
// (Yield, Block). The dispatcher picks strands off a FIFO ready queue,
// so interleavings are deterministic.
//
//	rt := sched.New()
//	rt.Go(func() {
//		// cooperative work; call rt.Yield() to let others run
//	})
//	err := rt.Run()
//
// The runtime also carries the two pieces of process-wide state the
// handle table consults: the shutdown flag (MayCreateResources) and the
// no-blocking flag (SetBlockingDisallowed), which the table raises
// around object teardown so destructors cannot suspend. A Runtime
// therefore satisfies handle.Scheduler.
package sched
