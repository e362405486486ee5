// Package oid enumerates the object identifiers the engine assigns to its
// built-in types, catalogs, namespaces, access methods and languages.
package oid

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hugr-lab/pgext-go/pgsys"
)

// ErrInvalidOid is returned for the reserved zero identifier.
var ErrInvalidOid = errors.New("oid: invalid object identifier 0")

// NotBuiltinError is returned for a nonzero identifier that is not built in.
type NotBuiltinError struct {
	Value uint32
}

func (e *NotBuiltinError) Error() string {
	return fmt.Sprintf("oid: %d is not a built-in object identifier", e.Value)
}

// BuiltinOid is an object identifier fixed by the engine's bootstrap catalog.
type BuiltinOid uint32

// Value returns the numeric identifier.
func (o BuiltinOid) Value() uint32 { return uint32(o) }

// Oid returns the identifier as an engine Oid.
func (o BuiltinOid) Oid() pgsys.Oid { return pgsys.Oid(o) }

// String returns the engine's symbolic name.
func (o BuiltinOid) String() string {
	if name, ok := names[o]; ok {
		return name
	}
	return fmt.Sprintf("BuiltinOid(%d)", uint32(o))
}

// FromValue classifies a numeric identifier.
func FromValue(v uint32) (BuiltinOid, error) {
	if v == 0 {
		return 0, ErrInvalidOid
	}
	if _, ok := names[BuiltinOid(v)]; !ok {
		return 0, &NotBuiltinError{Value: v}
	}
	return BuiltinOid(v), nil
}

// FromOid classifies an engine Oid.
func FromOid(o pgsys.Oid) (BuiltinOid, error) {
	return FromValue(uint32(o))
}

// FromName looks up a symbol by its engine name, e.g. "INT4OID".
func FromName(name string) (BuiltinOid, bool) {
	o, ok := byName[name]
	return o, ok
}

// All returns every built-in identifier in ascending order.
func All() []BuiltinOid {
	out := make([]BuiltinOid, 0, len(names))
	for o := range names {
		out = append(out, o)
	}
	slices.Sort(out)
	return out
}

var byName = func() map[string]BuiltinOid {
	m := make(map[string]BuiltinOid, len(names))
	for o, name := range names {
		m[name] = o
	}
	return m
}()
