package callconv

import (
	"iter"
	"math"

	"github.com/hugr-lab/pgext-go/datum"
)

// Producer yields the values of a set, one per call to Next.
type Producer[T any] interface {
	Next() (T, bool)
}

// ProducerFunc adapts a function to Producer.
type ProducerFunc[T any] func() (T, bool)

func (f ProducerFunc[T]) Next() (T, bool) { return f() }

// FromFunc returns a producer calling f until it reports false.
func FromFunc[T any](f func() (T, bool)) Producer[T] { return ProducerFunc[T](f) }

type sliceProducer[T any] struct {
	values []T
	pos    int
}

func (p *sliceProducer[T]) Next() (T, bool) {
	if p.pos >= len(p.values) {
		var zero T
		return zero, false
	}
	v := p.values[p.pos]
	p.pos++
	return v, true
}

// FromSlice yields the elements of values in order.
func FromSlice[T any](values []T) Producer[T] {
	return &sliceProducer[T]{values: values}
}

// seqProducer pulls from an iterator. Drop stops the iterator when the
// sequence ends early and its multi-call context is deleted.
type seqProducer[T any] struct {
	next func() (T, bool)
	stop func()
}

func (p *seqProducer[T]) Next() (T, bool) { return p.next() }
func (p *seqProducer[T]) Drop()           { p.stop() }

// FromSeq yields the values of seq.
func FromSeq[T any](seq iter.Seq[T]) Producer[T] {
	next, stop := iter.Pull(seq)
	return &seqProducer[T]{next: next, stop: stop}
}

// Series counts from start to stop inclusive by step, like
// generate_series. A zero step yields nothing.
func Series(start, stop, step int64) Producer[datum.Int64] {
	cur := start
	return FromFunc(func() (datum.Int64, bool) {
		if step == 0 || (step > 0 && cur > stop) || (step < 0 && cur < stop) {
			return 0, false
		}
		v := cur
		if (step > 0 && v > math.MaxInt64-step) || (step < 0 && v < math.MinInt64-step) {
			step = 0
		}
		cur += step
		return datum.Int64(v), true
	})
}
