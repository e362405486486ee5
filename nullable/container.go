package nullable

import (
	"iter"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/hugr-lab/pgext-go/pgsys"
)

// Container is a collection whose nulls are described by a Layout.
// GetRaw takes a physical index: for skipping layouts the count of valid
// slots before the logical one, otherwise the logical index itself.
type Container[T any] interface {
	Layout() Layout
	GetRaw(i int) T
	Len() int
}

// ContiguousIter yields every slot of c, stopping at c.Len() or at the first
// index the layout cannot classify.
func ContiguousIter[T any](c Container[T]) iter.Seq[Nullable[T]] {
	return func(yield func(Nullable[T]) bool) {
		layout := c.Layout()
		for i := 0; i < c.Len(); i++ {
			null, ok := layout.IsNull(i)
			if !ok {
				return
			}
			v := Null[T]()
			if !null {
				v = Valid(c.GetRaw(i))
			}
			if !yield(v) {
				return
			}
		}
	}
}

// SkippingIter yields every slot of c where null slots take no value
// storage.
func SkippingIter[T any](c Container[T]) iter.Seq[Nullable[T]] {
	return func(yield func(Nullable[T]) bool) {
		layout := c.Layout()
		physical := 0
		for i := 0; i < c.Len(); i++ {
			valid, ok := layout.IsValid(i)
			if !ok {
				return
			}
			v := Null[T]()
			if valid {
				v = Valid(c.GetRaw(physical))
				physical++
			}
			if !yield(v) {
				return
			}
		}
	}
}

// All picks the iterator matching the container's layout.
func All[T any](c Container[T]) iter.Seq[Nullable[T]] {
	if c.Layout().Skipping() {
		return SkippingIter(c)
	}
	return ContiguousIter(c)
}

// Collect drains a container into a slice.
func Collect[T any](c Container[T]) []Nullable[T] {
	out := make([]Nullable[T], 0, c.Len())
	for v := range All(c) {
		out = append(out, v)
	}
	return out
}

// Get returns slot i of c; ok is false when i is out of range.
func Get[T any](c Container[T], i int) (Nullable[T], bool) {
	layout := c.Layout()
	valid, ok := layout.IsValid(i)
	if !ok || i >= c.Len() {
		return Null[T](), false
	}
	if !valid {
		return Null[T](), true
	}
	physical := i
	if layout.Skipping() {
		physical = 0
		for j := 0; j < i; j++ {
			if v, _ := layout.IsValid(j); v {
				physical++
			}
		}
	}
	return Valid(c.GetRaw(physical)), true
}

// Slice is a contiguous container over parallel value and null-flag slices.
type Slice[T any] struct {
	Values []T
	Nulls  BoolNulls
}

// FromSlices builds a Slice; a nil isnull means no nulls.
func FromSlices[T any](values []T, isnull []bool) Slice[T] {
	return Slice[T]{Values: values, Nulls: isnull}
}

func (s Slice[T]) Layout() Layout {
	if s.Nulls == nil {
		return StrictNulls(len(s.Values))
	}
	return s.Nulls
}

func (s Slice[T]) GetRaw(i int) T { return s.Values[i] }

func (s Slice[T]) Len() int { return len(s.Values) }

// TupleRow is a skipping container over the attributes of a heap tuple.
type TupleRow struct {
	tup *pgsys.HeapTuple
}

// FromHeapTuple wraps a formed tuple.
func FromHeapTuple(t *pgsys.HeapTuple) TupleRow { return TupleRow{tup: t} }

func (r TupleRow) Layout() Layout {
	return NewBitmapNulls(r.tup.Bitmap(), 0, r.tup.NAtts())
}

func (r TupleRow) GetRaw(i int) pgsys.Datum { return r.tup.RawValue(i) }

func (r TupleRow) Len() int { return r.tup.NAtts() }

// ArrowColumn is a contiguous container over an Arrow array.
type ArrowColumn[T any] struct {
	arr    arrow.Array
	value  func(i int) T
	layout MaybeStrictNulls[ValidityBitmap]
}

// FromArrowValidity returns the null layout of an Arrow array. Arrays
// without a validity bitmap are strict.
func FromArrowValidity(arr arrow.Array) MaybeStrictNulls[ValidityBitmap] {
	bits := arr.NullBitmapBytes()
	if arr.NullN() == 0 || len(bits) == 0 {
		return Strict[ValidityBitmap](arr.Len())
	}
	return WithLayout(NewValidityBitmap(bits, arr.Data().Offset(), arr.Len()))
}

// NewArrowColumn wraps an Arrow array with a typed value accessor.
func NewArrowColumn[T any](arr arrow.Array, value func(i int) T) ArrowColumn[T] {
	return ArrowColumn[T]{arr: arr, value: value, layout: FromArrowValidity(arr)}
}

// Int64Column wraps an Arrow int64 array.
func Int64Column(arr *array.Int64) ArrowColumn[int64] {
	return NewArrowColumn(arr, arr.Value)
}

// Int32Column wraps an Arrow int32 array.
func Int32Column(arr *array.Int32) ArrowColumn[int32] {
	return NewArrowColumn(arr, arr.Value)
}

// StringColumn wraps an Arrow string array.
func StringColumn(arr *array.String) ArrowColumn[string] {
	return NewArrowColumn(arr, arr.Value)
}

func (c ArrowColumn[T]) Layout() Layout { return c.layout }

func (c ArrowColumn[T]) GetRaw(i int) T { return c.value(i) }

func (c ArrowColumn[T]) Len() int { return c.arr.Len() }
