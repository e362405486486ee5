// Package sqlgraph builds the SQL definition of an extension from the
// entities it declares.
//
// An extension declares schemas, functions, types, enums, operator classes
// and hand-written SQL. Entities refer to one another by name and to value
// types by Go type name; Build resolves those references into a dependency
// graph and orders it so that every entity is defined after what it uses.
// The ordered graph renders as an SQL script or as a Graphviz digraph.
package sqlgraph

import (
	"fmt"
	"maps"
	"reflect"
	"strings"
)

// Kind is the kind of an entity. Kinds are ordered: among entities with no
// dependency between them, lower kinds are defined first.
type Kind int

const (
	KindSchema Kind = iota
	KindEnum
	KindType
	KindFunction
	KindOrd
	KindHash
	KindCustomSQL
)

var kindNames = []string{
	KindSchema:    "Schema",
	KindEnum:      "Enum",
	KindType:      "Type",
	KindFunction:  "Function",
	KindOrd:       "Ord",
	KindHash:      "Hash",
	KindCustomSQL: "CustomSQL",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds lists every entity kind in definition order.
func Kinds() []Kind {
	return []Kind{KindSchema, KindEnum, KindType, KindFunction, KindOrd, KindHash, KindCustomSQL}
}

// Key identifies an entity within a graph.
type Key struct {
	Kind Kind
	Name string
}

func (k Key) String() string { return k.Kind.String() + "(" + k.Name + ")" }

// Entity is anything an extension defines.
type Entity interface {
	Key() Key
}

// Control describes the extension itself, as in its control file.
type Control struct {
	Name    string
	Version string
	Comment string
	// Schema is the default schema of entities that name none.
	Schema      string
	Relocatable bool
}

// Schema is a schema created by the extension.
type Schema struct {
	Name    string
	Comment string
}

func (s Schema) Key() Key { return Key{KindSchema, s.Name} }

// Enum is an enumerated type backed by a Go type.
type Enum struct {
	Name     string
	Schema   string
	GoType   string
	Variants []string
}

func (e Enum) Key() Key { return Key{KindEnum, e.Name} }

// Field is one attribute of a composite type, or one column of a table
// function.
type Field struct {
	Name   string
	GoType string
}

// Type is a composite type backed by a Go struct.
type Type struct {
	Name   string
	Schema string
	GoType string
	Fields []Field
}

func (t Type) Key() Key { return Key{KindType, t.Name} }

// ReturnKind is how many values a function produces per call.
type ReturnKind int

const (
	ReturnsOne ReturnKind = iota
	ReturnsSetOf
	ReturnsTable
	ReturnsVoid
)

// Returns describes a function's result. GoType is the element type for
// ReturnsOne and ReturnsSetOf; Columns is the row for ReturnsTable.
type Returns struct {
	Kind    ReturnKind
	GoType  string
	Columns []Field
}

// Volatility is the function's volatility category.
type Volatility int

const (
	Volatile Volatility = iota
	Stable
	Immutable
)

func (v Volatility) String() string {
	switch v {
	case Stable:
		return "STABLE"
	case Immutable:
		return "IMMUTABLE"
	}
	return "VOLATILE"
}

// Arg is a function argument.
type Arg struct {
	Name   string
	GoType string
	// Default is an SQL expression used when the argument is omitted.
	Default string
}

// Function is a function exported by the extension.
type Function struct {
	Name   string
	Schema string
	// Symbol is the exported symbol implementing the function. Defaults to
	// Name.
	Symbol     string
	Args       []Arg
	Returns    Returns
	Strict     bool
	Volatility Volatility
	// Language defaults to c. Body, when set, is the function's source
	// text instead of a symbol in the extension library.
	Language string
	Body     string
	Comment  string
	Requires []Key
}

func (f Function) Key() Key { return Key{KindFunction, f.Name} }

func (f Function) symbol() string {
	if f.Symbol != "" {
		return f.Symbol
	}
	return f.Name
}

func (f Function) language() string {
	if f.Language != "" {
		return f.Language
	}
	return "c"
}

// Ord derives a btree operator class for GoType from its comparison
// functions, each named by its Function entity.
type Ord struct {
	GoType string
	Lt     string
	Le     string
	Eq     string
	Ge     string
	Gt     string
	Cmp    string
}

func (o Ord) Key() Key { return Key{KindOrd, o.GoType} }

// Hash derives a hash operator class for GoType.
type Hash struct {
	GoType string
	Eq     string
	Hash   string
}

func (h Hash) Key() Key { return Key{KindHash, h.GoType} }

// CustomSQL is hand-written SQL placed after everything it requires.
type CustomSQL struct {
	Name     string
	SQL      string
	Requires []Key
}

func (c CustomSQL) Key() Key { return Key{KindCustomSQL, c.Name} }

// TypeMappings maps Go type names to SQL type names.
type TypeMappings map[string]string

// TypeName is the name under which T appears in TypeMappings and entity
// fields.
func TypeName[T any]() string { return reflect.TypeFor[T]().String() }

// DefaultTypeMappings covers the value types of the datum and datetime
// packages and the plain Go types with an obvious SQL counterpart.
func DefaultTypeMappings() TypeMappings {
	return TypeMappings{
		"datum.Int16":          "smallint",
		"datum.Int32":          "integer",
		"datum.Int64":          "bigint",
		"datum.Float4":         "real",
		"datum.Float8":         "double precision",
		"datum.Bool":           "boolean",
		"datum.Text":           "text",
		"datum.Bytea":          "bytea",
		"datum.OidValue":       "oid",
		"datum.UUID":           "uuid",
		"datum.Point":          "point",
		"datum.Box":            "box",
		"datum.Void":           "void",
		"datetime.Date":        "date",
		"datetime.Time":        "time",
		"datetime.TimeTz":      "time with time zone",
		"datetime.Timestamp":   "timestamp",
		"datetime.TimestampTz": "timestamp with time zone",
		"datetime.Interval":    "interval",
		"datetime.Part":        "text",
		"int16":                "smallint",
		"int32":                "integer",
		"int64":                "bigint",
		"float32":              "real",
		"float64":              "double precision",
		"bool":                 "boolean",
		"string":               "text",
		"[]uint8":              "bytea",
	}
}

// Merge returns m with other's entries added, other winning on conflict.
func (m TypeMappings) Merge(other TypeMappings) TypeMappings {
	out := make(TypeMappings, len(m)+len(other))
	maps.Copy(out, m)
	maps.Copy(out, other)
	return out
}

// Exported symbol names looked up in an extension plugin.
const (
	SymbolPrefix       = "PgextInternals"
	MarkerSymbol       = "PgextMarker"
	TypeMappingsSymbol = "PgextTypeMappings"
)

// SymbolName is the exported name of the function declaring an entity of
// kind k called name.
func SymbolName(k Kind, name string) string {
	var b strings.Builder
	b.WriteString(SymbolPrefix)
	b.WriteString(k.String())
	upper := true
	for _, r := range name {
		if r == '_' || r == '.' || r == '-' {
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		upper = false
		b.WriteRune(r)
	}
	return b.String()
}

// ParseSymbol returns the kind of an entity symbol.
func ParseSymbol(sym string) (Kind, bool) {
	rest, ok := strings.CutPrefix(sym, SymbolPrefix)
	if !ok {
		return 0, false
	}
	for _, k := range Kinds() {
		name := k.String()
		if strings.HasPrefix(rest, name) && len(rest) > len(name) {
			return k, true
		}
	}
	return 0, false
}
