package list

import (
	"fmt"
	"iter"
	"unsafe"

	"github.com/hugr-lab/pgext-go/pgsys"
)

// List is a typed engine list. The zero value is Nil.
type List[T Enlist] struct {
	head *ListHead[T]
}

// ListHead is a non-empty list. It owns an arena block whose tag matches T.
type ListHead[T Enlist] struct {
	raw *pgsys.List
}

// Nil returns the empty list.
func Nil[T Enlist]() List[T] { return List[T]{} }

// DowncastFromNullable views a foreign list pointer as a List[T]. A nil
// pointer is Nil for every T; otherwise ok is false when the node tag does
// not match T.
func DowncastFromNullable[T Enlist](p unsafe.Pointer) (List[T], bool) {
	if p == nil {
		return List[T]{}, true
	}
	head, ok := DowncastHead[T](p)
	if !ok {
		return List[T]{}, false
	}
	return List[T]{head: head}, true
}

// DowncastHead views a non-nil foreign list pointer as a ListHead[T].
func DowncastHead[T Enlist](p unsafe.Pointer) (*ListHead[T], bool) {
	if p == nil || pgsys.NodeTagOf(p) != TagOf[T]() {
		return nil, false
	}
	return &ListHead[T]{raw: (*pgsys.List)(p)}, true
}

// FromSlice builds a list in mcx holding values. An empty slice yields Nil.
func FromSlice[T Enlist](mcx *pgsys.MemoryContext, values []T) List[T] {
	var l List[T]
	if len(values) == 0 {
		return l
	}
	head := newHead[T](mcx, len(values))
	for _, v := range values {
		head.push(v)
	}
	l.head = head
	return l
}

func newHead[T Enlist](mcx *pgsys.MemoryContext, capacity int) *ListHead[T] {
	return &ListHead[T]{raw: pgsys.NewList(mcx, TagOf[T](), capacity)}
}

// IsNil reports whether l is the empty list.
func (l *List[T]) IsNil() bool { return l.head == nil }

// Head returns the non-empty head of l.
func (l *List[T]) Head() (*ListHead[T], bool) { return l.head, l.head != nil }

// AsPtr returns the foreign representation without giving up ownership.
// The empty list is always nil.
func (l *List[T]) AsPtr() unsafe.Pointer {
	if l.head == nil {
		return nil
	}
	return unsafe.Pointer(l.head.raw)
}

// IntoNullable hands the list to the engine and leaves l Nil. The caller no
// longer owns the block.
func (l *List[T]) IntoNullable() unsafe.Pointer {
	p := l.AsPtr()
	l.head = nil
	return p
}

func (l *List[T]) Len() int {
	if l.head == nil {
		return 0
	}
	return l.head.Len()
}

func (l *List[T]) Capacity() int {
	if l.head == nil {
		return 0
	}
	return l.head.Capacity()
}

// Get returns element i, or ok=false when i is out of range.
func (l *List[T]) Get(i int) (T, bool) {
	if l.head == nil {
		var zero T
		return zero, false
	}
	return l.head.Get(i)
}

// GetMut returns a pointer into the cell at i, or nil when i is out of range.
func (l *List[T]) GetMut(i int) *T {
	if l.head == nil {
		return nil
	}
	return l.head.GetMut(i)
}

// Set overwrites element i. It panics when i is out of range.
func (l *List[T]) Set(i int, v T) {
	p := l.GetMut(i)
	if p == nil {
		panic(fmt.Sprintf("list: index %d out of range for length %d", i, l.Len()))
	}
	*p = v
}

// TryPush appends v without allocating. It fails on Nil and on a full list.
func (l *List[T]) TryPush(v T) (*ListHead[T], bool) {
	if l.head == nil || !l.head.TryPush(v) {
		return nil, false
	}
	return l.head, true
}

// TryReserve grows a non-empty list to hold n more elements. It fails on Nil,
// where growing would need a context to allocate the block in.
func (l *List[T]) TryReserve(n int) (*ListHead[T], bool) {
	if l.head == nil {
		return nil, false
	}
	l.head.Reserve(n)
	return l.head, true
}

// PushInContext appends v. A Nil list gets a fresh block in mcx; an existing
// list grows within the context that owns it.
func (l *List[T]) PushInContext(v T, mcx *pgsys.MemoryContext) *ListHead[T] {
	if l.head == nil {
		l.head = newHead[T](mcx, 1)
	}
	l.head.Push(v)
	return l.head
}

// Destroy frees the list block and any separately allocated cells, leaving l
// Nil. Lists the engine still references must not be destroyed.
func (l *List[T]) Destroy() {
	if l.head == nil {
		return
	}
	destroyList(l.head.raw)
	l.head = nil
}

// All yields index and value pairs in order.
func (l *List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, c := range l.Cells() {
			if !yield(i, c.Get()) {
				return
			}
		}
	}
}

// Values yields the elements in order.
func (l *List[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, c := range l.Cells() {
			if !yield(c.Get()) {
				return
			}
		}
	}
}

// Cells returns the occupied cells by reference. The slice is invalidated by
// any operation that grows or shrinks the list.
func (l *List[T]) Cells() []ListCell[T] {
	if l.head == nil {
		return nil
	}
	return l.head.Cells()
}

// Collect copies the elements into a Go slice.
func (l *List[T]) Collect() []T {
	out := make([]T, 0, l.Len())
	for v := range l.Values() {
		out = append(out, v)
	}
	return out
}

func (h *ListHead[T]) Len() int { return int(h.raw.Length) }

func (h *ListHead[T]) Capacity() int { return int(h.raw.MaxLength) }

// AsPtr returns the foreign list pointer.
func (h *ListHead[T]) AsPtr() unsafe.Pointer { return unsafe.Pointer(h.raw) }

// Get returns element i, or ok=false when i is out of range.
func (h *ListHead[T]) Get(i int) (T, bool) {
	if p := h.GetMut(i); p != nil {
		return *p, true
	}
	var zero T
	return zero, false
}

// GetMut returns a pointer into the cell at i, or nil when i is out of range.
func (h *ListHead[T]) GetMut(i int) *T {
	if i < 0 || i >= h.Len() {
		return nil
	}
	return cellValue[T](h.raw.Cell(i))
}

// Cells returns the occupied cells by reference.
func (h *ListHead[T]) Cells() []ListCell[T] {
	return unsafe.Slice((*ListCell[T])(unsafe.Pointer(h.raw.Elements)), h.Len())
}

// TryPush appends v if there is spare capacity.
func (h *ListHead[T]) TryPush(v T) bool {
	if h.Len() >= h.Capacity() {
		return false
	}
	h.push(v)
	return true
}

// Push appends v, growing the list when it is full.
func (h *ListHead[T]) Push(v T) {
	h.Reserve(1)
	h.push(v)
}

func (h *ListHead[T]) push(v T) {
	*cellValue[T](h.raw.Cell(h.Len())) = v
	h.raw.Length++
}

// Reserve makes room for at least n more elements. Growth at least doubles
// the capacity. The first growth moves the cells out of the inline region
// into a separate allocation from the context that owns the list; later
// growth reallocates that chunk.
func (h *ListHead[T]) Reserve(n int) {
	if n < 0 {
		panic(fmt.Sprintf("list: negative reservation %d", n))
	}
	length, capacity := h.Len(), h.Capacity()
	if n > pgsys.MaxListLength-length {
		panic("list: capacity overflow")
	}
	need := length + n
	if need <= capacity {
		return
	}
	grown := min(max(2*capacity, need), pgsys.MaxListLength)
	if !h.raw.UsesInlineStorage() {
		h.raw.Elements = (*pgsys.ListCell)(pgsys.Repalloc(unsafe.Pointer(h.raw.Elements), grown*pgsys.ListCellSize))
		h.raw.MaxLength = int32(grown)
		return
	}

	mcx := pgsys.GetMemoryChunkContext(unsafe.Pointer(h.raw))
	elems := (*pgsys.ListCell)(mcx.Alloc(grown * pgsys.ListCellSize))
	copy(unsafe.Slice(elems, grown), unsafe.Slice(h.raw.Elements, length))
	if pgsys.AssertEnabled {
		poison(h.raw.Elements, capacity)
	}
	h.raw.Elements = elems
	h.raw.MaxLength = int32(grown)
}

// poison overwrites n cells starting at c with the clobber pattern.
func poison(c *pgsys.ListCell, n int) {
	if n <= 0 {
		return
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(c)), n*pgsys.ListCellSize)
	for i := range b {
		b[i] = pgsys.ClobberByte
	}
}

// destroyList frees a list block. Inline cells live inside the block and are
// released with it; separate cells are freed first.
func destroyList(raw *pgsys.List) {
	pgsys.ListFree(raw)
}
