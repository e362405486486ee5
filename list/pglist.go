package list

import (
	"fmt"
	"unsafe"

	"github.com/hugr-lab/pgext-go/pgsys"
)

// PgList is the older list wrapper that appends through the engine's own
// lappend routines in the current memory context. It records whether the
// engine owns the list, in which case Free leaves it alone.
type PgList[T Enlist] struct {
	raw           *pgsys.List
	allocatedByPg bool
}

// NewPgList returns an empty list owned by the caller.
func NewPgList[T Enlist]() *PgList[T] {
	return &PgList[T]{}
}

// Borrow wraps a list the engine keeps owning.
func Borrow[T Enlist](p unsafe.Pointer) *PgList[T] {
	checkTag[T](p)
	return &PgList[T]{raw: (*pgsys.List)(p), allocatedByPg: true}
}

// TakeOwnership wraps a list that Free will release.
func TakeOwnership[T Enlist](p unsafe.Pointer) *PgList[T] {
	checkTag[T](p)
	return &PgList[T]{raw: (*pgsys.List)(p)}
}

func checkTag[T Enlist](p unsafe.Pointer) {
	if p != nil && pgsys.NodeTagOf(p) != TagOf[T]() {
		panic(fmt.Sprintf("list: expected %s, found %s", TagOf[T](), pgsys.NodeTagOf(p)))
	}
}

// AllocatedByPg reports whether the engine owns the list.
func (l *PgList[T]) AllocatedByPg() bool { return l.allocatedByPg }

func (l *PgList[T]) Len() int { return pgsys.ListLength(l.raw) }

func (l *PgList[T]) IsEmpty() bool { return l.raw == nil }

// Get returns element i, or ok=false when i is out of range.
func (l *PgList[T]) Get(i int) (T, bool) {
	if i < 0 || i >= l.Len() {
		var zero T
		return zero, false
	}
	return *cellValue[T](l.raw.Cell(i)), true
}

// Push appends v in the current memory context.
func (l *PgList[T]) Push(v T) {
	switch v := any(v).(type) {
	case Pointer:
		l.raw = pgsys.Lappend(l.raw, v)
	case int32:
		l.raw = pgsys.LappendInt(l.raw, v)
	case pgsys.Oid:
		l.raw = pgsys.LappendOid(l.raw, v)
	case pgsys.TransactionId:
		l.raw = pgsys.LappendXid(l.raw, v)
	}
}

// AsList returns a typed view sharing the same block.
func (l *PgList[T]) AsList() List[T] {
	if l.raw == nil {
		return List[T]{}
	}
	return List[T]{head: &ListHead[T]{raw: l.raw}}
}

// AsPtr returns the foreign pointer, nil when empty.
func (l *PgList[T]) AsPtr() unsafe.Pointer { return unsafe.Pointer(l.raw) }

// IntoPg hands the list to the engine.
func (l *PgList[T]) IntoPg() unsafe.Pointer {
	p := unsafe.Pointer(l.raw)
	l.raw = nil
	l.allocatedByPg = false
	return p
}

// Free releases the list unless the engine owns it.
func (l *PgList[T]) Free() {
	if l.raw != nil && !l.allocatedByPg {
		destroyList(l.raw)
	}
	l.raw = nil
}
