package handle

import "sync"

var (
	defaultTable *Table
	defaultOnce  sync.Once
	defaultSched Scheduler
)

// Bind sets the scheduler the process-wide table will be created with.
// It must be called before the first use of the package-level
// operations; later calls have no effect.
func Bind(sched Scheduler) {
	defaultSched = sched
}

// Default returns the process-wide handle table, creating it on first
// use. Without a prior Bind it runs standalone.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable = New(defaultSched)
	})
	return defaultTable
}

// Make allocates a handle for obj in the process-wide table.
func Make(obj Object) (Handle, error) {
	return Default().Make(obj)
}

// Dup duplicates h in the process-wide table.
func Dup(h Handle) (Handle, error) {
	return Default().Dup(h)
}

// Query looks up a capability of the object behind h in the
// process-wide table.
func Query(h Handle, typ *Type) (any, error) {
	return Default().Query(h, typ)
}

// Close releases h in the process-wide table.
func Close(h Handle) error {
	return Default().Close(h)
}
