// Package datum converts Go values to and from engine datums.
//
// Each convertible type has a named Go type here that implements IntoDatum.
// By-reference values are copied into the current memory context, so a
// datum produced inside a function call lives as long as that call's
// context.
package datum

import (
	"github.com/hugr-lab/pgext-go/nullable"
	"github.com/hugr-lab/pgext-go/oid"
	"github.com/hugr-lab/pgext-go/pgsys"
)

// IntoDatum is implemented by values that can be returned to the engine.
type IntoDatum interface {
	// IntoDatum boxes the value; isNull reports an SQL null.
	IntoDatum() (d pgsys.Datum, isNull bool)
	// TypeOid is the engine type the datum belongs to.
	TypeOid() oid.BuiltinOid
}

// FromDatum is implemented by pointers to values that can be read from a
// datum.
type FromDatum[T any] interface {
	*T
	FromDatum(d pgsys.Datum)
}

// From unboxes a possibly null datum.
func From[T any, P FromDatum[T]](d pgsys.Datum, isNull bool) nullable.Nullable[T] {
	if isNull {
		return nullable.Null[T]()
	}
	var v T
	P(&v).FromDatum(d)
	return nullable.Valid(v)
}

// Arg unboxes argument i of a call.
func Arg[T any, P FromDatum[T]](fcinfo *pgsys.FunctionCallInfo, i int) nullable.Nullable[T] {
	return From[T, P](fcinfo.Arg(i), fcinfo.ArgIsNull(i))
}

// BoxNullable boxes a nullable value.
func BoxNullable[T IntoDatum](n nullable.Nullable[T]) (pgsys.Datum, bool) {
	v, ok := n.Option()
	if !ok {
		return pgsys.Datum{}, true
	}
	return v.IntoDatum()
}

// Null is an SQL null of a given type.
type Null oid.BuiltinOid

func (n Null) IntoDatum() (pgsys.Datum, bool) { return pgsys.Datum{}, true }

func (n Null) TypeOid() oid.BuiltinOid { return oid.BuiltinOid(n) }

// Void is the result of a function returning nothing.
type Void struct{}

func (Void) IntoDatum() (pgsys.Datum, bool) { return pgsys.Datum{}, false }

func (Void) TypeOid() oid.BuiltinOid { return oid.VoidOid }
