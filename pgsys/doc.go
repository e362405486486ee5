// Package pgsys models the host database engine's C-level interface inside the
// Go process: memory contexts, the flat List node, the function manager call
// convention, the multi-call (set-returning function) context record, error
// reporting with non-local aborts, heap tuples and the built-in datetime
// routines.
//
// Extension packages (list, nullable, callconv, datum, datetime) only talk to
// the engine through this package, exactly as they would through bindings to
// the real backend. The package also contains the engine side of those
// contracts (an executor that drives set-returning functions sub-call by
// sub-call), which makes it usable as an in-process test harness.
//
// The engine is single threaded. All calls into pgsys that touch the current
// memory context must happen on one goroutine at a time; use [WithBackend] to
// serialize access when several goroutines share the process.
//
// # Memory
//
// Arena memory comes from an Arrow [memory.Allocator], so leaks can be checked
// with memory.NewCheckedAllocator in tests:
//
//	alloc := memory.NewCheckedAllocator(memory.NewGoAllocator())
//	defer alloc.AssertSize(t, 0)
//
//	mcx := pgsys.NewMemoryContext("test", alloc)
//	defer mcx.Delete()
//
// Pointers stored inside arena memory must reference arena memory. Go values
// that have to outlive a call are handed to a context with
// [MemoryContext.LeakAndDropOnDelete].
package pgsys
