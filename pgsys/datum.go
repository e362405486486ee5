package pgsys

import (
	"math"
	"unsafe"
)

// Oid is an engine object identifier.
type Oid uint32

// InvalidOid is never assigned to an object.
const InvalidOid Oid = 0

// TransactionId identifies a transaction.
type TransactionId uint32

// Datum is the engine's universal argument and result word. By-value types
// live in the word; by-reference types point into arena memory.
type Datum struct {
	word uint64
	ptr  unsafe.Pointer
}

// NullableDatum is a datum with its null flag, as stored in call arguments.
type NullableDatum struct {
	Value  Datum
	IsNull bool
}

func Int64Datum(v int64) Datum            { return Datum{word: uint64(v)} }
func Int32Datum(v int32) Datum            { return Datum{word: uint64(uint32(v))} }
func Int16Datum(v int16) Datum            { return Datum{word: uint64(uint16(v))} }
func UInt32Datum(v uint32) Datum          { return Datum{word: uint64(v)} }
func OidDatum(v Oid) Datum                { return Datum{word: uint64(v)} }
func Float8Datum(v float64) Datum         { return Datum{word: math.Float64bits(v)} }
func Float4Datum(v float32) Datum         { return Datum{word: uint64(math.Float32bits(v))} }
func PointerDatum(p unsafe.Pointer) Datum { return Datum{ptr: p} }

func BoolDatum(v bool) Datum {
	if v {
		return Datum{word: 1}
	}
	return Datum{}
}

func (d Datum) Int64() int64            { return int64(d.word) }
func (d Datum) Int32() int32            { return int32(uint32(d.word)) }
func (d Datum) Int16() int16            { return int16(uint16(d.word)) }
func (d Datum) UInt32() uint32          { return uint32(d.word) }
func (d Datum) Oid() Oid                { return Oid(uint32(d.word)) }
func (d Datum) Float8() float64         { return math.Float64frombits(d.word) }
func (d Datum) Float4() float32         { return math.Float32frombits(uint32(d.word)) }
func (d Datum) Bool() bool              { return d.word != 0 }
func (d Datum) Pointer() unsafe.Pointer { return d.ptr }

// IsZero reports whether d is the zero datum returned alongside null results.
func (d Datum) IsZero() bool { return d.word == 0 && d.ptr == nil }

// Varlena is a length-prefixed by-reference value (text, bytea).
type Varlena struct {
	Len int32
}

const varHdrSize = int(unsafe.Sizeof(Varlena{}))

// NewVarlena copies b into the current memory context as a length-prefixed
// value.
func NewVarlena(b []byte) unsafe.Pointer {
	p := Palloc(varHdrSize + len(b))
	(*Varlena)(p).Len = int32(varHdrSize + len(b))
	copy(unsafe.Slice((*byte)(unsafe.Add(p, varHdrSize)), len(b)), b)
	return p
}

// VarData returns the payload of the length-prefixed value at p. The slice
// aliases arena memory.
func VarData(p unsafe.Pointer) []byte {
	n := int((*Varlena)(p).Len) - varHdrSize
	if n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Add(p, varHdrSize)), n)
}

// CStringGetTextDatum copies s into a text datum in the current context.
func CStringGetTextDatum(s string) Datum {
	return PointerDatum(NewVarlena([]byte(s)))
}

// TextDatumGetCString reads a text datum.
func TextDatumGetCString(d Datum) string {
	return string(VarData(d.ptr))
}
