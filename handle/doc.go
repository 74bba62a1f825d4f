// Package handle implements the handle table of the strand runtime.
//
// Every runtime object (sockets, channels, timers, strand groups) is
// exposed to callers as a small opaque integer instead of a typed
// pointer. The table is the single choke point through which those
// objects are created, looked up, duplicated, and destroyed.
//
// # Handle Lifecycle
//
// An object implements the Object contract (Query, Close, plus an
// embedded Base carrying the shared reference count) and is placed
// behind a handle with Make:
//
//	h, err := table.Make(obj)
//
// Any holder can obtain a typed pointer to one of the object's
// capabilities:
//
//	ptr, err := table.Query(h, conn.Type)
//
// Dup mints an independent handle aliasing the same object; each
// duplicate must be closed separately and the object tears down exactly
// once, when the last of them is closed:
//
//	h2, _ := table.Dup(h)
//	table.Close(h)  // object survives for h2
//	table.Close(h2) // teardown fires here
//
// # Complexity
//
// Allocation and release are O(1) via a singly-linked free list
// threaded through unused slots. The table grows by doubling and never
// shrinks; growth preserves all existing indices. Repeated queries for
// the same capability type hit a per-slot one-entry cache and skip the
// virtual call.
//
// # Teardown Fencing
//
// The last close of an object runs its teardown under a no-blocking
// fence: the scheduler's blocking-disallowed flag is raised for the
// duration of Close and restored afterwards, on every exit path. A
// destructor that tries to suspend fails deterministically instead of
// handing control to another strand that could observe the object
// half-closed or corrupt the free list mid-reclamation.
//
// # Concurrency
//
// The table is not safe for preemptive concurrent use. It assumes a
// single logical thread of control with cooperative yielding only at
// well-defined points, which is exactly what the strand scheduler
// provides. All operations are race-free by construction, not by
// locking.
package handle
