package handle

import (
	"go.uber.org/zap"

	"github.com/strandlabs/strand/errors"
)

const (
	// initialSlots is the capacity of the table after its first growth.
	initialSlots = 256

	// DefaultLimit caps table growth. Exceeding it surfaces as an
	// out_of_memory error from Make.
	DefaultLimit = 1 << 28

	// freeNone terminates the free list.
	freeNone = -1
)

// slot is one entry in the handle table. A slot is either in use and
// bound to an object, or free and threaded into the free list through
// next. The cache memoizes the most recent successful capability query
// against the slot's current occupant.
type slot struct {
	obj        Object
	cachedPtr  any
	cachedType *Type
	next       int
	inUse      bool
}

// Table is the handle table: a growable slice of slots with an embedded
// free list. It hands out and reclaims handles in O(1) and routes
// capability queries to the owning object.
//
// A Table is confined to a single logical thread of control; the
// surrounding cooperative runtime guarantees mutations never interleave,
// so there is no locking.
type Table struct {
	sched Scheduler
	log   *zap.Logger
	slots []slot
	free  int
	limit int
}

// Option configures a Table.
type Option func(*Table)

// WithLimit caps the number of slots the table may grow to.
func WithLimit(limit int) Option {
	return func(t *Table) {
		if limit > 0 {
			t.limit = limit
		}
	}
}

// WithLogger sets the table's logger. The default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(t *Table) {
		if log != nil {
			t.log = log
		}
	}
}

// New creates an empty handle table bound to the given scheduler. A nil
// scheduler yields a standalone table that always permits allocation.
func New(sched Scheduler, opts ...Option) *Table {
	if sched == nil {
		sched = &noopScheduler{}
	}
	t := &Table{
		sched: sched,
		log:   zap.NewNop(),
		free:  freeNone,
		limit: DefaultLimit,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Make binds obj to a fresh slot and returns its handle. The object's
// reference count is set to 1. Allocation is refused while the runtime
// is shutting down.
func (t *Table) Make(obj Object) (Handle, error) {
	if obj == nil {
		return None, errors.InvalidArgument(errors.OpMake, "nil object")
	}
	if !t.sched.MayCreateResources() {
		return None, errors.ShuttingDown(errors.OpMake)
	}
	if t.free == freeNone {
		if err := t.grow(); err != nil {
			return None, err
		}
	}
	h := t.free
	s := &t.slots[h]
	t.free = s.next
	s.obj = obj
	s.inUse = true
	s.next = 0
	s.cachedType = nil
	s.cachedPtr = nil
	*obj.refs() = 1
	return Handle(h), nil
}

// grow doubles the slot array (first growth: initialSlots) and threads
// the new slots into the free list. Existing indices are preserved, so
// outstanding handles stay valid. On failure the table is untouched.
func (t *Table) grow() error {
	sz := initialSlots
	if n := len(t.slots); n > 0 {
		sz = n * 2
	}
	if sz > t.limit {
		return errors.OutOfMemory(errors.OpMake, sz, t.limit)
	}
	grown := make([]slot, sz)
	copy(grown, t.slots)
	for i := len(t.slots); i < sz-1; i++ {
		grown[i].next = i + 1
	}
	grown[sz-1].next = freeNone
	t.free = len(t.slots)
	t.slots = grown
	t.log.Debug("handle table grown", zap.Int("slots", sz))
	return nil
}

// lookup validates h and returns its slot. Bounds and occupancy are
// checked before any slot data is touched, so stale or forged handles
// always surface as bad_handle.
func (t *Table) lookup(h Handle, op errors.Op) (*slot, error) {
	if h < 0 || int(h) >= len(t.slots) || !t.slots[h].inUse {
		return nil, errors.BadHandle(op, int(h))
	}
	return &t.slots[h], nil
}

// Query returns a typed pointer to the requested capability of the
// object behind h, or (nil, nil) when the object does not support it.
// The result of the most recent successful query is cached per slot, so
// repeated queries for the same type skip the virtual call.
func (t *Table) Query(h Handle, typ *Type) (any, error) {
	s, err := t.lookup(h, errors.OpQuery)
	if err != nil {
		return nil, err
	}
	if typ == nil {
		return nil, errors.InvalidArgument(errors.OpQuery, "nil capability type")
	}
	if s.cachedPtr != nil && s.cachedType == typ {
		return s.cachedPtr, nil
	}
	ptr := s.obj.Query(typ)
	if ptr == nil {
		return nil, nil
	}
	s.cachedType = typ
	s.cachedPtr = ptr
	return ptr, nil
}

// Dup mints a new handle aliasing the object behind h. The two handles
// are independent in lifecycle but share one object and one teardown.
// Duplication routes through Make and therefore inherits its shutdown
// check.
func (t *Table) Dup(h Handle) (Handle, error) {
	s, err := t.lookup(h, errors.OpDup)
	if err != nil {
		return None, err
	}
	obj := s.obj
	refcount := *obj.refs()
	h2, err := t.Make(obj)
	if err != nil {
		return None, err
	}
	// Make reset the count to 1; the object now has one more alias than
	// before.
	*obj.refs() = refcount + 1
	return h2, nil
}

// Close releases h. When other duplicates remain this only drops one
// reference; the last close tears the object down under the no-blocking
// fence and the slot returns to the free list either way.
func (t *Table) Close(h Handle) error {
	s, err := t.lookup(h, errors.OpClose)
	if err != nil {
		return err
	}
	obj := s.obj
	if r := obj.refs(); *r > 1 {
		*r--
		t.recycle(h)
		return nil
	}
	// Last reference. Blocking calls must fail rather than suspend for
	// the whole teardown, so no other strand can observe the object
	// half-closed or mutate the table mid-reclamation. The deferred
	// release puts reclamation on every exit path, including a
	// panicking teardown.
	prev := t.sched.SetBlockingDisallowed(true)
	defer func() {
		t.sched.SetBlockingDisallowed(prev)
		*obj.refs() = 0
		t.recycle(h)
		t.log.Debug("object torn down", zap.Int("handle", int(h)))
	}()
	obj.Close()
	return nil
}

// recycle invalidates the slot's cache and pushes it onto the free
// list. The slot is re-derived from the index: a teardown may have
// allocated and grown the table, moving the backing array.
func (t *Table) recycle(h Handle) {
	s := &t.slots[h]
	s.obj = nil
	s.cachedType = nil
	s.cachedPtr = nil
	s.inUse = false
	s.next = t.free
	t.free = int(h)
}

// Refs returns the shared reference count of the object behind h.
func (t *Table) Refs(h Handle) (int, error) {
	s, err := t.lookup(h, errors.OpQuery)
	if err != nil {
		return 0, err
	}
	return *s.obj.refs(), nil
}

// Len returns the number of handles currently in use.
func (t *Table) Len() int {
	n := 0
	for i := range t.slots {
		if t.slots[i].inUse {
			n++
		}
	}
	return n
}

// Cap returns the current slot capacity of the table.
func (t *Table) Cap() int {
	return len(t.slots)
}

// Each visits every in-use handle in index order. Returning false stops
// the walk. The callback must not mutate the table.
func (t *Table) Each(fn func(Handle, Object) bool) {
	for i := range t.slots {
		if t.slots[i].inUse {
			if !fn(Handle(i), t.slots[i].obj) {
				return
			}
		}
	}
}

// Reset closes every in-use handle and releases the backing storage.
// Running processes never need it; it exists for tests and for clean
// process exit.
func (t *Table) Reset() {
	for i := range t.slots {
		if t.slots[i].inUse {
			_ = t.Close(Handle(i))
		}
	}
	t.slots = nil
	t.free = freeNone
}
