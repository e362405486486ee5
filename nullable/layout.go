package nullable

import (
	"github.com/apache/arrow-go/v18/arrow/bitutil"
)

// Layout describes which slots of a collection are null.
//
// IsNull and IsValid return ok=false for indexes the layout cannot classify,
// which iterators treat as the end of the collection.
type Layout interface {
	HasNulls() bool
	CountNulls() int
	IsNull(i int) (null bool, ok bool)
	IsValid(i int) (valid bool, ok bool)
	Len() int
	// Skipping reports whether null slots take no value storage, so that
	// the physical index of a value is the count of valid slots before it.
	Skipping() bool
}

// BitmapNulls is a presence bitmap (bit set means valid) whose null slots
// take no value storage, as in heap tuples.
type BitmapNulls struct {
	bits   []byte
	offset int
	length int
}

// NewBitmapNulls wraps length bits of bitmap starting at bit offset.
func NewBitmapNulls(bitmap []byte, offset, length int) BitmapNulls {
	return BitmapNulls{bits: bitmap, offset: offset, length: length}
}

func (b BitmapNulls) Len() int { return b.length }

func (b BitmapNulls) Skipping() bool { return true }

func (b BitmapNulls) CountNulls() int {
	return b.length - bitutil.CountSetBits(b.bits, b.offset, b.length)
}

func (b BitmapNulls) HasNulls() bool { return b.CountNulls() > 0 }

func (b BitmapNulls) IsValid(i int) (bool, bool) {
	if i < 0 || i >= b.length {
		return false, false
	}
	return bitutil.BitIsSet(b.bits, b.offset+i), true
}

func (b BitmapNulls) IsNull(i int) (bool, bool) {
	valid, ok := b.IsValid(i)
	return !valid && ok, ok
}

// ValidBefore counts valid slots before index i.
func (b BitmapNulls) ValidBefore(i int) int {
	return bitutil.CountSetBits(b.bits, b.offset, i)
}

// ValidityBitmap is a presence bitmap over densely stored values: null
// slots still occupy a value position, as in Arrow arrays.
type ValidityBitmap struct {
	BitmapNulls
}

// NewValidityBitmap wraps length bits of bitmap starting at bit offset.
func NewValidityBitmap(bitmap []byte, offset, length int) ValidityBitmap {
	return ValidityBitmap{NewBitmapNulls(bitmap, offset, length)}
}

func (v ValidityBitmap) Skipping() bool { return false }

// BoolNulls is one flag per slot, true meaning null. Values are stored
// contiguously, null slots included.
type BoolNulls []bool

func (b BoolNulls) Len() int { return len(b) }

func (b BoolNulls) Skipping() bool { return false }

// HasNulls scans the flags.
func (b BoolNulls) HasNulls() bool {
	for _, null := range b {
		if null {
			return true
		}
	}
	return false
}

func (b BoolNulls) CountNulls() int {
	n := 0
	for _, null := range b {
		if null {
			n++
		}
	}
	return n
}

func (b BoolNulls) IsNull(i int) (bool, bool) {
	if i < 0 || i >= len(b) {
		return false, false
	}
	return b[i], true
}

func (b BoolNulls) IsValid(i int) (bool, bool) {
	null, ok := b.IsNull(i)
	return !null && ok, ok
}

// StrictNulls is the layout of a collection that cannot hold nulls.
type StrictNulls int

func (s StrictNulls) Len() int { return int(s) }

func (s StrictNulls) Skipping() bool { return false }

func (s StrictNulls) HasNulls() bool { return false }

func (s StrictNulls) CountNulls() int { return 0 }

func (s StrictNulls) IsNull(i int) (bool, bool) {
	return false, i >= 0 && i < int(s)
}

func (s StrictNulls) IsValid(i int) (bool, bool) {
	ok := i >= 0 && i < int(s)
	return ok, ok
}

// MaybeStrictNulls uses an inner layout when one exists and otherwise
// behaves as StrictNulls of the given length.
type MaybeStrictNulls[L Layout] struct {
	inner    L
	hasInner bool
	length   int
}

// WithLayout wraps a present inner layout.
func WithLayout[L Layout](inner L) MaybeStrictNulls[L] {
	return MaybeStrictNulls[L]{inner: inner, hasInner: true, length: inner.Len()}
}

// Strict is a MaybeStrictNulls without an inner layout.
func Strict[L Layout](length int) MaybeStrictNulls[L] {
	return MaybeStrictNulls[L]{length: length}
}

// Inner returns the inner layout if present.
func (m MaybeStrictNulls[L]) Inner() (L, bool) { return m.inner, m.hasInner }

func (m MaybeStrictNulls[L]) Len() int { return m.length }

func (m MaybeStrictNulls[L]) Skipping() bool {
	return m.hasInner && m.inner.Skipping()
}

func (m MaybeStrictNulls[L]) HasNulls() bool {
	return m.hasInner && m.inner.HasNulls()
}

func (m MaybeStrictNulls[L]) CountNulls() int {
	if !m.hasInner {
		return 0
	}
	return m.inner.CountNulls()
}

func (m MaybeStrictNulls[L]) IsNull(i int) (bool, bool) {
	if !m.hasInner {
		return StrictNulls(m.length).IsNull(i)
	}
	return m.inner.IsNull(i)
}

func (m MaybeStrictNulls[L]) IsValid(i int) (bool, bool) {
	if !m.hasInner {
		return StrictNulls(m.length).IsValid(i)
	}
	return m.inner.IsValid(i)
}
