package pgsys

import (
	"unsafe"

	"github.com/apache/arrow-go/v18/arrow/bitutil"
)

// HeapTuple is a formed row. Null attributes are recorded in a presence
// bitmap (bit set means present) and take no value storage.
type HeapTuple struct {
	Desc   TupleDesc
	natts  int
	bits   []byte
	values []Datum
}

// HeapFormTuple builds a tuple from one datum per attribute and the caller's
// null flags (true means null).
func HeapFormTuple(desc TupleDesc, values []Datum, isnull []bool) *HeapTuple {
	natts := len(values)
	if desc != nil && desc.NumFields() != natts {
		Ereportf(ERROR, ErrcodeDatatypeMismatch, "number of columns (%d) does not match the row descriptor (%d)", natts, desc.NumFields())
	}
	if len(isnull) != natts {
		Ereportf(ERROR, ErrcodeInternalError, "null flags cover %d of %d columns", len(isnull), natts)
	}
	t := &HeapTuple{
		Desc:  desc,
		natts: natts,
		bits:  make([]byte, bitutil.BytesForBits(int64(natts))),
	}
	for i, null := range isnull {
		if null {
			continue
		}
		bitutil.SetBit(t.bits, i)
		t.values = append(t.values, values[i])
	}
	return t
}

// NAtts returns the number of attributes.
func (t *HeapTuple) NAtts() int { return t.natts }

// HasNulls reports whether any attribute is null.
func (t *HeapTuple) HasNulls() bool { return len(t.values) < t.natts }

// Bitmap returns the presence bitmap.
func (t *HeapTuple) Bitmap() []byte { return t.bits }

// Attr returns attribute i and whether it is null.
func (t *HeapTuple) Attr(i int) (Datum, bool) {
	if i < 0 || i >= t.natts {
		Ereportf(ERROR, ErrcodeInternalError, "invalid attribute number %d", i+1)
	}
	if !bitutil.BitIsSet(t.bits, i) {
		return Datum{}, true
	}
	return t.values[bitutil.CountSetBits(t.bits, 0, i)], false
}

// NumValues returns the number of stored (non-null) values.
func (t *HeapTuple) NumValues() int { return len(t.values) }

// RawValue returns the i-th stored value, counting only non-null
// attributes.
func (t *HeapTuple) RawValue(i int) Datum { return t.values[i] }

// HeapDeformTuple expands a tuple back into per-attribute datums and null
// flags.
func HeapDeformTuple(t *HeapTuple) ([]Datum, []bool) {
	values := make([]Datum, t.natts)
	isnull := make([]bool, t.natts)
	j := 0
	for i := range t.natts {
		if !bitutil.BitIsSet(t.bits, i) {
			isnull[i] = true
			continue
		}
		values[i] = t.values[j]
		j++
	}
	return values, isnull
}

// HeapTupleGetDatum wraps a tuple as a composite datum.
func HeapTupleGetDatum(t *HeapTuple) Datum {
	return PointerDatum(unsafe.Pointer(t))
}

// DatumGetHeapTuple unwraps a composite datum.
func DatumGetHeapTuple(d Datum) *HeapTuple {
	return (*HeapTuple)(d.Pointer())
}
