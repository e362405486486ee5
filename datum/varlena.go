package datum

import (
	"bytes"
	"unsafe"

	"github.com/google/uuid"

	"github.com/hugr-lab/pgext-go/oid"
	"github.com/hugr-lab/pgext-go/pgsys"
)

// Text is the engine text type.
type Text string

func (v Text) IntoDatum() (pgsys.Datum, bool) { return pgsys.CStringGetTextDatum(string(v)), false }

func (v Text) TypeOid() oid.BuiltinOid { return oid.TextOid }

func (v *Text) FromDatum(d pgsys.Datum) { *v = Text(pgsys.TextDatumGetCString(d)) }

// Bytea is the engine binary string type.
type Bytea []byte

func (v Bytea) IntoDatum() (pgsys.Datum, bool) {
	return pgsys.PointerDatum(pgsys.NewVarlena(v)), false
}

func (v Bytea) TypeOid() oid.BuiltinOid { return oid.ByteaOid }

// FromDatum copies the payload out of arena memory.
func (v *Bytea) FromDatum(d pgsys.Datum) { *v = bytes.Clone(pgsys.VarData(d.Pointer())) }

// UUID is the engine uuid type: 16 bytes passed by reference.
type UUID uuid.UUID

const uuidLen = len(uuid.UUID{})

func (v UUID) IntoDatum() (pgsys.Datum, bool) {
	p := pgsys.Palloc(uuidLen)
	copy(unsafe.Slice((*byte)(p), uuidLen), v[:])
	return pgsys.PointerDatum(p), false
}

func (v UUID) TypeOid() oid.BuiltinOid { return oid.UUIDOid }

func (v *UUID) FromDatum(d pgsys.Datum) {
	copy(v[:], unsafe.Slice((*byte)(d.Pointer()), uuidLen))
}

func (v UUID) String() string { return uuid.UUID(v).String() }

// ParseUUID parses the textual form.
func ParseUUID(s string) (UUID, error) {
	u, err := uuid.Parse(s)
	return UUID(u), err
}
