package list

import (
	"fmt"
	"iter"
	"runtime"
	"unsafe"

	"github.com/hugr-lab/pgext-go/pgsys"
)

// Bounds selects a contiguous index range of a list.
type Bounds struct {
	start  int
	end    int
	hasEnd bool
}

// Range selects [start, end).
func Range(start, end int) Bounds { return Bounds{start: start, end: end, hasEnd: true} }

// From selects [start, len).
func From(start int) Bounds { return Bounds{start: start} }

// To selects [0, end).
func To(end int) Bounds { return Bounds{end: end, hasEnd: true} }

// Full selects the whole list.
func Full() Bounds { return Bounds{} }

func (b Bounds) resolve(length int) (int, int) {
	end := length
	if b.hasEnd {
		end = b.end
	}
	if end > pgsys.MaxListLength {
		panic(fmt.Sprintf("list: drain end %d exceeds the maximum list length", end))
	}
	if b.start < 0 || b.start > end || end > length {
		panic(fmt.Sprintf("list: drain range [%d, %d) out of bounds for length %d", b.start, end, length))
	}
	return b.start, end
}

// Drain yields the elements of a range in order and removes them from the
// list. Close MUST be called, normally deferred: it welds the surviving
// cells back together, and elements that were not yielded stay in the list.
// A list left with no elements is destroyed and becomes Nil.
//
//	d := l.Drain(list.Range(1, 3))
//	defer d.Close()
//	for v := range d.All() {
//	    ...
//	}
type Drain[T Enlist] struct {
	list   *List[T]
	head   *ListHead[T]
	start  int
	cur    int
	end    int
	length int
	closed *bool
}

// watchClose reports, in builds with assertions enabled, an iterator that
// became unreachable before Close set *closed.
func watchClose[T any](it *T, what string) *bool {
	closed := new(bool)
	if pgsys.AssertEnabled {
		runtime.AddCleanup(it, func(closed *bool) {
			if !*closed {
				pgsys.Logger().Error("list: " + what + " was never closed")
			}
		}, closed)
	}
	return closed
}

// Drain removes the elements selected by b. The bounds are validated before
// anything is changed; an invalid range panics.
func (l *List[T]) Drain(b Bounds) *Drain[T] {
	start, end := b.resolve(l.Len())
	d := &Drain[T]{list: l, head: l.head, start: start, cur: start, end: end, length: l.Len()}
	d.closed = watchClose(d, "drain")
	if l.head == nil {
		return d
	}
	l.head.raw.Length = int32(start)
	if start == 0 {
		l.head = nil
	}
	return d
}

// Len returns the number of elements not yet yielded.
func (d *Drain[T]) Len() int { return d.end - d.cur }

// Next yields the next drained element.
func (d *Drain[T]) Next() (T, bool) {
	if *d.closed || d.cur >= d.end {
		var zero T
		return zero, false
	}
	v := *cellValue[T](d.head.raw.Cell(d.cur))
	d.cur++
	return v, true
}

// All yields the remaining drained elements.
func (d *Drain[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := d.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Close repairs the list. It is safe to call more than once.
func (d *Drain[T]) Close() {
	if *d.closed || d.head == nil {
		*d.closed = true
		return
	}
	*d.closed = true

	raw := d.head.raw
	survivors := d.length - d.cur
	newLen := d.start + survivors
	if newLen == 0 {
		destroyList(raw)
		d.list.head = nil
		return
	}
	if d.cur != d.start && survivors > 0 {
		dst := unsafe.Slice(raw.Cell(d.start), survivors)
		src := unsafe.Slice(raw.Cell(d.cur), survivors)
		copy(dst, src)
	}
	if pgsys.AssertEnabled {
		poison(raw.Cell(newLen), d.length-newLen)
	}
	raw.Length = int32(newLen)
	d.list.head = d.head
}
