package datum

import (
	"github.com/hugr-lab/pgext-go/oid"
	"github.com/hugr-lab/pgext-go/pgsys"
)

type (
	Int16    int16
	Int32    int32
	Int64    int64
	Float4   float32
	Float8   float64
	Bool     bool
	OidValue pgsys.Oid
)

func (v Int16) IntoDatum() (pgsys.Datum, bool) { return pgsys.Int16Datum(int16(v)), false }
func (v Int16) TypeOid() oid.BuiltinOid        { return oid.Int2Oid }
func (v *Int16) FromDatum(d pgsys.Datum)       { *v = Int16(d.Int16()) }

func (v Int32) IntoDatum() (pgsys.Datum, bool) { return pgsys.Int32Datum(int32(v)), false }
func (v Int32) TypeOid() oid.BuiltinOid        { return oid.Int4Oid }
func (v *Int32) FromDatum(d pgsys.Datum)       { *v = Int32(d.Int32()) }

func (v Int64) IntoDatum() (pgsys.Datum, bool) { return pgsys.Int64Datum(int64(v)), false }
func (v Int64) TypeOid() oid.BuiltinOid        { return oid.Int8Oid }
func (v *Int64) FromDatum(d pgsys.Datum)       { *v = Int64(d.Int64()) }

func (v Float4) IntoDatum() (pgsys.Datum, bool) { return pgsys.Float4Datum(float32(v)), false }
func (v Float4) TypeOid() oid.BuiltinOid        { return oid.Float4Oid }
func (v *Float4) FromDatum(d pgsys.Datum)       { *v = Float4(d.Float4()) }

func (v Float8) IntoDatum() (pgsys.Datum, bool) { return pgsys.Float8Datum(float64(v)), false }
func (v Float8) TypeOid() oid.BuiltinOid        { return oid.Float8Oid }
func (v *Float8) FromDatum(d pgsys.Datum)       { *v = Float8(d.Float8()) }

func (v Bool) IntoDatum() (pgsys.Datum, bool) { return pgsys.BoolDatum(bool(v)), false }
func (v Bool) TypeOid() oid.BuiltinOid        { return oid.BoolOid }
func (v *Bool) FromDatum(d pgsys.Datum)       { *v = Bool(d.Bool()) }

func (v OidValue) IntoDatum() (pgsys.Datum, bool) { return pgsys.OidDatum(pgsys.Oid(v)), false }
func (v OidValue) TypeOid() oid.BuiltinOid        { return oid.OidOid }
func (v *OidValue) FromDatum(d pgsys.Datum)       { *v = OidValue(d.Oid()) }
