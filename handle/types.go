package handle

// Handle is an opaque reference to a live runtime object. It is a bare
// index into the handle table and is only meaningful while the slot it
// names is in use. Negative values are never valid.
type Handle int

// None is returned together with an error by operations that mint handles.
const None Handle = -1

// Type identifies a capability that can be queried on an object behind
// a handle. Types are compared by pointer identity, so each capability
// declares exactly one package-level instance:
//
//	var MsgType = handle.NewType("msg")
type Type struct {
	name string
}

// NewType creates a capability type identity. The name is used only for
// diagnostics.
func NewType(name string) *Type {
	return &Type{name: name}
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.name
}

// Object is the contract every handle-managed runtime object implements:
// a capability lookup, a teardown, and a shared reference count. The
// reference count is carried by an embedded Base, so implementations
// look like:
//
//	type conn struct {
//		handle.Base
//		...
//	}
//
// One Object value backs a logical object no matter how many duplicate
// handles alias it; the embedded count is what they share.
type Object interface {
	// Query returns a typed pointer to the requested capability, or nil
	// when the object does not support it.
	Query(typ *Type) any

	// Close tears the object down. It runs under the no-blocking fence:
	// any attempt to suspend from inside it fails deterministically.
	Close()

	refs() *int
}

// Base carries the reference count shared by all duplicates of an
// object. Embed it (by pointer identity of the outer object) in every
// Object implementation; the table manages the count.
type Base struct {
	refcount int
}

func (b *Base) refs() *int { return &b.refcount }

// Scheduler is what the handle table consumes from the surrounding
// cooperative runtime. Both primitives are synchronous and never
// suspend the caller.
type Scheduler interface {
	// MayCreateResources reports whether new runtime objects may be
	// created. It returns false once a shutdown sequence has begun.
	MayCreateResources() bool

	// SetBlockingDisallowed toggles the process-wide no-blocking flag
	// and returns its previous value. The table brackets object
	// teardown with it.
	SetBlockingDisallowed(disallowed bool) (previous bool)
}

// noopScheduler backs tables that run without a surrounding runtime.
// Resource creation is always allowed; the no-blocking flag is still
// tracked so fence semantics stay observable.
type noopScheduler struct {
	blockingDisallowed bool
}

func (s *noopScheduler) MayCreateResources() bool { return true }

func (s *noopScheduler) SetBlockingDisallowed(disallowed bool) bool {
	prev := s.blockingDisallowed
	s.blockingDisallowed = disallowed
	return prev
}
