// Package strand is a cooperative concurrency runtime for Go built
// around a handle table: every runtime object is exposed to callers as
// a small opaque integer rather than a typed pointer.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	strand/           Root package with this overview
//	├── handle/       The handle table: O(1) allocation, capability
//	│                 dispatch with a per-slot cache, duplication with
//	│                 shared reference counts, fenced teardown
//	├── sched/        Cooperative scheduler: strands, ready queue,
//	│                 blocking primitives, shutdown
//	├── channel/      Bounded FIFO channels between strands, managed
//	│                 through the handle table
//	├── errors/       Structured error types for runtime operations
//	└── cmd/strand/   CLI: scripted demo and interactive table inspector
//
// # Quick Start
//
// Build a runtime, place an object behind a handle, and run strands
// against it:
//
//	rt := sched.New()
//	table := handle.New(rt)
//
//	h, err := channel.New(table, rt, 8)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ptr, _ := table.Query(h, channel.Type)
//	ch := ptr.(*channel.Channel)
//
//	rt.Go(func() { ch.Send("ping") })
//	rt.Go(func() { v, _ := ch.Recv(); fmt.Println(v) })
//	rt.Run()
//
// # Handles
//
// Handles are duplicated with Dup (independent lifecycles, one shared
// object, one teardown) and released with Close. The last close runs
// the object's teardown under a no-blocking fence: suspension attempts
// from inside a destructor fail deterministically, so a half-closed
// object is never observable from another strand.
//
// # Custom Objects
//
// Any type that embeds handle.Base and implements Query and Close can
// be placed behind a handle; see the handle package documentation for
// the contract.
package strand
