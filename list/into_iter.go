package list

import "iter"

// IntoIter consumes a list. The list block is freed by Close whether or not
// every element was yielded, so Close MUST be called, normally deferred.
type IntoIter[T Enlist] struct {
	head   *ListHead[T]
	cur    int
	closed *bool
}

// IntoIter takes the elements of l, leaving it Nil.
func (l *List[T]) IntoIter() *IntoIter[T] {
	it := &IntoIter[T]{head: l.head}
	it.closed = watchClose(it, "into-iterator")
	l.head = nil
	return it
}

// Len returns the number of elements not yet yielded.
func (it *IntoIter[T]) Len() int {
	if it.head == nil {
		return 0
	}
	return it.head.Len() - it.cur
}

func (it *IntoIter[T]) Next() (T, bool) {
	if it.head == nil {
		var zero T
		return zero, false
	}
	v, ok := it.head.Get(it.cur)
	if ok {
		it.cur++
	}
	return v, ok
}

// All yields the remaining elements.
func (it *IntoIter[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := it.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Close frees the list block.
func (it *IntoIter[T]) Close() {
	*it.closed = true
	if it.head == nil {
		return
	}
	destroyList(it.head.raw)
	it.head = nil
}
