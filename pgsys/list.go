package pgsys

import (
	"fmt"
	"math"
	"math/bits"
	"unsafe"
)

// EngineVersion is the major version of the engine ABI modelled here.
const EngineVersion = 16

// NodeTag identifies the concrete type of a node.
type NodeTag int32

const (
	T_Invalid NodeTag = 0
	T_String  NodeTag = 232
	T_List    NodeTag = 235
	T_IntList NodeTag = 236
	T_OidList NodeTag = 237
	T_XidList NodeTag = 238
)

func (t NodeTag) String() string {
	switch t {
	case T_Invalid:
		return "T_Invalid"
	case T_String:
		return "T_String"
	case T_List:
		return "T_List"
	case T_IntList:
		return "T_IntList"
	case T_OidList:
		return "T_OidList"
	case T_XidList:
		return "T_XidList"
	}
	return fmt.Sprintf("NodeTag(%d)", int32(t))
}

// Node is the common header of every node.
type Node struct {
	Type NodeTag
}

// NodeTagOf reads the tag of the node at p.
func NodeTagOf(p unsafe.Pointer) NodeTag {
	return (*Node)(p).Type
}

// ListCell is one element slot of a List. The slot is a union; which member
// is meaningful depends on the list's tag. Pointer members must reference
// arena memory.
type ListCell struct {
	word uint64
}

func (c *ListCell) PtrValue() unsafe.Pointer     { return *(*unsafe.Pointer)(unsafe.Pointer(c)) }
func (c *ListCell) SetPtrValue(p unsafe.Pointer) { *(*unsafe.Pointer)(unsafe.Pointer(c)) = p }
func (c *ListCell) IntValue() int32              { return *(*int32)(unsafe.Pointer(c)) }
func (c *ListCell) SetIntValue(v int32)          { *(*int32)(unsafe.Pointer(c)) = v }
func (c *ListCell) OidValue() Oid                { return *(*Oid)(unsafe.Pointer(c)) }
func (c *ListCell) SetOidValue(v Oid)            { *(*Oid)(unsafe.Pointer(c)) = v }
func (c *ListCell) XidValue() TransactionId      { return *(*TransactionId)(unsafe.Pointer(c)) }
func (c *ListCell) SetXidValue(v TransactionId)  { *(*TransactionId)(unsafe.Pointer(c)) = v }

// List is the engine's flat list node. It heads an arena chunk; the chunk may
// continue with inline cells that Elements points at until the list grows
// past them.
type List struct {
	Type      NodeTag
	Length    int32
	MaxLength int32
	Elements  *ListCell
	// initial_elements follow
}

const (
	// ListBlockSize is the size of the first allocation of a list: one cache
	// line holding the header and the inline cells.
	ListBlockSize = 64

	// ListHeaderSize is the offset of the inline cells within a list block.
	ListHeaderSize = int(unsafe.Sizeof(List{}))

	// ListCellSize is the size of one element slot.
	ListCellSize = int(unsafe.Sizeof(ListCell{}))

	// ListInlineCapacity is the number of cells that fit inline in a fresh
	// list block.
	ListInlineCapacity = (ListBlockSize - ListHeaderSize) / ListCellSize

	// MaxListLength is the largest length a list may have.
	MaxListLength = math.MaxInt32
)

// InitialElements returns the address of the inline cell region that follows
// the header in the list's own block.
func (l *List) InitialElements() *ListCell {
	return (*ListCell)(unsafe.Add(unsafe.Pointer(l), ListHeaderSize))
}

// UsesInlineStorage reports whether the elements still live in the list's own
// block. Element storage that is inline must never be freed separately.
func (l *List) UsesInlineStorage() bool {
	return l.Elements == l.InitialElements()
}

// Cell returns the address of cell i. No bounds check is made against Length.
func (l *List) Cell(i int) *ListCell {
	return (*ListCell)(unsafe.Add(unsafe.Pointer(l.Elements), i*ListCellSize))
}

// Cells returns the occupied cells as a slice aliasing arena memory.
func (l *List) Cells() []ListCell {
	if l == nil || l.Length == 0 {
		return nil
	}
	return unsafe.Slice(l.Elements, int(l.Length))
}

// NewList allocates an empty list with the given tag in mcx. At least
// minCapacity cells are reserved; small lists keep them inline in a single
// cache-line block.
func NewList(mcx *MemoryContext, tag NodeTag, minCapacity int) *List {
	if minCapacity < 0 || minCapacity > MaxListLength {
		Ereportf(ERROR, ErrcodeProgramLimitExceeded, "list capacity %d out of range", minCapacity)
	}
	capacity := max(minCapacity, ListInlineCapacity)
	size := ListHeaderSize + capacity*ListCellSize
	if minCapacity <= ListInlineCapacity {
		size = ListBlockSize
	}
	l := (*List)(mcx.Alloc(size))
	l.Type = tag
	l.MaxLength = int32(capacity)
	l.Elements = l.InitialElements()
	return l
}

// enlargeList makes room for at least minCapacity cells, moving elements out
// of inline storage when needed.
func enlargeList(l *List, minCapacity int) {
	if minCapacity > MaxListLength {
		Ereport(ERROR, ErrcodeProgramLimitExceeded, "list length would exceed the maximum")
	}
	newMax := min(int(1)<<bits.Len(uint(max(16, minCapacity)-1)), MaxListLength)
	if l.UsesInlineStorage() {
		mcx := GetMemoryChunkContext(unsafe.Pointer(l))
		elems := (*ListCell)(mcx.Alloc(newMax * ListCellSize))
		copy(unsafe.Slice(elems, newMax), unsafe.Slice(l.Elements, int(l.Length)))
		if AssertEnabled {
			clobberCells(l.InitialElements(), int(l.MaxLength))
		}
		l.Elements = elems
	} else {
		l.Elements = (*ListCell)(Repalloc(unsafe.Pointer(l.Elements), newMax*ListCellSize))
	}
	l.MaxLength = int32(newMax)
}

func clobberCells(c *ListCell, n int) {
	b := unsafe.Slice((*byte)(unsafe.Pointer(c)), n*ListCellSize)
	for i := range b {
		b[i] = ClobberByte
	}
}

func lappendCell(l *List, tag NodeTag) (*List, *ListCell) {
	if l == nil {
		l = NewList(CurrentMemoryContext(), tag, 1)
	} else if l.Type != tag {
		Ereportf(ERROR, ErrcodeInternalError, "unrecognized list node type: %s", l.Type)
	} else if l.Length >= l.MaxLength {
		enlargeList(l, int(l.Length)+1)
	}
	c := l.Cell(int(l.Length))
	l.Length++
	return l, c
}

// Lappend appends a pointer to a T_List, creating the list in the current
// memory context when l is nil.
func Lappend(l *List, p unsafe.Pointer) *List {
	l, c := lappendCell(l, T_List)
	c.SetPtrValue(p)
	return l
}

// LappendInt appends to a T_IntList.
func LappendInt(l *List, v int32) *List {
	l, c := lappendCell(l, T_IntList)
	c.SetIntValue(v)
	return l
}

// LappendOid appends to a T_OidList.
func LappendOid(l *List, v Oid) *List {
	l, c := lappendCell(l, T_OidList)
	c.SetOidValue(v)
	return l
}

// LappendXid appends to a T_XidList.
func LappendXid(l *List, v TransactionId) *List {
	l, c := lappendCell(l, T_XidList)
	c.SetXidValue(v)
	return l
}

// ListLength returns the length of l; nil is the empty list.
func ListLength(l *List) int {
	if l == nil {
		return 0
	}
	return int(l.Length)
}

// ListFree releases the list block and any separate element storage. The
// pointed-to values are not freed.
func ListFree(l *List) {
	if l == nil {
		return
	}
	if !l.UsesInlineStorage() {
		Pfree(unsafe.Pointer(l.Elements))
	}
	Pfree(unsafe.Pointer(l))
}

// String is the value node used for identifiers.
type String struct {
	Type NodeTag
	Sval unsafe.Pointer
}

// MakeString creates a T_String node in the current memory context.
func MakeString(s string) unsafe.Pointer {
	n := (*String)(Palloc(int(unsafe.Sizeof(String{}))))
	n.Type = T_String
	n.Sval = Pstrdup(s)
	return unsafe.Pointer(n)
}

// StrVal reads a T_String node.
func StrVal(p unsafe.Pointer) string {
	n := (*String)(p)
	if n.Type != T_String {
		Ereportf(ERROR, ErrcodeInternalError, "unrecognized node type: %s", n.Type)
	}
	return CString(n.Sval)
}
