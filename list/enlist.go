// Package list provides a typed view over the engine's flat List node.
//
// A List[T] is either Nil, the empty list, which the engine represents as a
// null pointer, or a non-empty head allocated in a memory context. Cells are
// read and written as exactly T; the node tag of a foreign list is checked
// before it is treated as a List[T].
//
// Drain and IntoIter must be closed, normally with defer. Close is what
// welds the surviving cells of a drained list back together and frees a
// consumed list; an iterator abandoned without Close leaves the list
// truncated at the start of the drained range. Builds with assertions
// enabled log an error for every such iterator the garbage collector finds.
package list

import (
	"unsafe"

	"github.com/hugr-lab/pgext-go/pgsys"
)

// Pointer is the payload of a T_List: a pointer to a node or other arena
// allocation.
type Pointer = unsafe.Pointer

// Enlist is the closed set of payloads a list cell can hold.
type Enlist interface {
	Pointer | int32 | pgsys.Oid | pgsys.TransactionId
}

// TagOf returns the node tag of lists holding T.
func TagOf[T Enlist]() pgsys.NodeTag {
	var zero T
	switch any(zero).(type) {
	case Pointer:
		return pgsys.T_List
	case int32:
		return pgsys.T_IntList
	case pgsys.Oid:
		return pgsys.T_OidList
	case pgsys.TransactionId:
		if pgsys.EngineVersion < 16 {
			panic("list: transaction id lists require engine version 16 or later")
		}
		return pgsys.T_XidList
	}
	panic("list: unreachable payload type")
}

// cellValue reinterprets a cell as its T member. Every member of Enlist sits
// at offset zero of the cell union and is at most one cell wide.
func cellValue[T Enlist](c *pgsys.ListCell) *T {
	return (*T)(unsafe.Pointer(c))
}

// ListCell is one cell of a List[T], only ever obtained by reference into
// the list's storage.
type ListCell[T Enlist] struct {
	cell pgsys.ListCell
}

// Get reads the cell.
func (c *ListCell[T]) Get() T { return *cellValue[T](&c.cell) }

// Set overwrites the cell.
func (c *ListCell[T]) Set(v T) { *cellValue[T](&c.cell) = v }
