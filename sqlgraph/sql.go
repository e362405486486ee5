package sqlgraph

import (
	"fmt"
	"strings"
)

// SQL renders the extension script: one statement group per entity, in
// definition order.
func (g *Graph) SQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- %s %s\n", g.control.Name, g.control.Version)
	if g.control.Comment != "" {
		fmt.Fprintf(&b, "-- %s\n", g.control.Comment)
	}
	b.WriteString("-- Generated by pgext-schema. Do not edit.\n\n")
	fmt.Fprintf(&b, "\\echo Use \"CREATE EXTENSION %s\" to load this file. \\quit\n", g.control.Name)

	e := emitter{g: g, b: &b, operators: make(map[string]bool)}
	for _, n := range g.nodes {
		b.WriteString("\n")
		fmt.Fprintf(&b, "-- %s\n", n.entity.Key())
		e.node(n)
	}
	return b.String()
}

type emitter struct {
	g *Graph
	b *strings.Builder
	// operators already created, by operator name and operand type.
	operators map[string]bool
}

func (e *emitter) node(n node) {
	switch ent := n.entity.(type) {
	case Schema:
		fmt.Fprintf(e.b, "CREATE SCHEMA IF NOT EXISTS %s;\n", quoteIdentifier(ent.Name))
		if ent.Comment != "" {
			fmt.Fprintf(e.b, "COMMENT ON SCHEMA %s IS %s;\n", quoteIdentifier(ent.Name), quoteLiteral(ent.Comment))
		}
	case Enum:
		labels := make([]string, len(ent.Variants))
		for i, v := range ent.Variants {
			labels[i] = quoteLiteral(v)
		}
		fmt.Fprintf(e.b, "CREATE TYPE %s AS ENUM (\n\t%s\n);\n",
			qualified(n.schema, ent.Name), strings.Join(labels, ",\n\t"))
	case Type:
		fields := make([]string, len(ent.Fields))
		for i, f := range ent.Fields {
			fields[i] = quoteIdentifier(f.Name) + " " + e.g.sqlType(f.GoType)
		}
		fmt.Fprintf(e.b, "CREATE TYPE %s AS (\n\t%s\n);\n",
			qualified(n.schema, ent.Name), strings.Join(fields, ",\n\t"))
	case Function:
		e.function(n.schema, ent)
	case Ord:
		e.ord(n.schema, ent)
	case Hash:
		e.hash(n.schema, ent)
	case CustomSQL:
		e.b.WriteString(ent.SQL)
		if !strings.HasSuffix(ent.SQL, "\n") {
			e.b.WriteString("\n")
		}
	}
}

func (e *emitter) function(schema string, f Function) {
	name := qualified(schema, f.Name)
	args := make([]string, len(f.Args))
	argTypes := make([]string, len(f.Args))
	for i, a := range f.Args {
		argTypes[i] = e.g.sqlType(a.GoType)
		args[i] = quoteIdentifier(a.Name) + " " + argTypes[i]
		if a.Default != "" {
			args[i] += " DEFAULT " + a.Default
		}
	}

	fmt.Fprintf(e.b, "CREATE FUNCTION %s(%s) RETURNS %s\n", name, strings.Join(args, ", "), e.returns(f.Returns))
	if f.Strict {
		e.b.WriteString("STRICT ")
	}
	fmt.Fprintf(e.b, "%s\nLANGUAGE %s\n", f.Volatility, f.language())
	if f.Body != "" {
		fmt.Fprintf(e.b, "AS $pgext$\n%s\n$pgext$;\n", strings.TrimSpace(f.Body))
	} else {
		fmt.Fprintf(e.b, "AS 'MODULE_PATHNAME', %s;\n", quoteLiteral(f.symbol()))
	}
	if f.Comment != "" {
		fmt.Fprintf(e.b, "COMMENT ON FUNCTION %s(%s) IS %s;\n", name, strings.Join(argTypes, ", "), quoteLiteral(f.Comment))
	}
}

func (e *emitter) returns(r Returns) string {
	switch r.Kind {
	case ReturnsSetOf:
		return "SETOF " + e.g.sqlType(r.GoType)
	case ReturnsTable:
		cols := make([]string, len(r.Columns))
		for i, c := range r.Columns {
			cols[i] = quoteIdentifier(c.Name) + " " + e.g.sqlType(c.GoType)
		}
		return "TABLE (" + strings.Join(cols, ", ") + ")"
	case ReturnsVoid:
		return "void"
	}
	return e.g.sqlType(r.GoType)
}

type operator struct {
	name       string
	commutator string
	negator    string
	restrict   string
	join       string
}

var btreeOperators = []operator{
	{"<", ">", ">=", "scalarltsel", "scalarltjoinsel"},
	{"<=", ">=", ">", "scalarlesel", "scalarlejoinsel"},
	{"=", "=", "<>", "eqsel", "eqjoinsel"},
	{">=", "<=", "<", "scalargesel", "scalargejoinsel"},
	{">", "<", "<=", "scalargtsel", "scalargtjoinsel"},
}

// operator creates op over typ unless it was created before.
func (e *emitter) operator(schema, typ string, op operator, fn string) {
	key := op.name + "(" + typ + ")"
	if e.operators[key] {
		return
	}
	e.operators[key] = true
	fmt.Fprintf(e.b, "CREATE OPERATOR %s (\n\tLEFTARG = %s,\n\tRIGHTARG = %s,\n\tFUNCTION = %s,\n",
		operatorName(schema, op.name), typ, typ, e.functionName(fn))
	fmt.Fprintf(e.b, "\tCOMMUTATOR = %s,\n\tNEGATOR = %s,\n\tRESTRICT = %s,\n\tJOIN = %s\n);\n",
		operatorRef(schema, op.commutator), operatorRef(schema, op.negator), op.restrict, op.join)
}

func (e *emitter) ord(schema string, o Ord) {
	typ := e.g.sqlType(o.GoType)
	fns := []string{o.Lt, o.Le, o.Eq, o.Ge, o.Gt}
	for i, op := range btreeOperators {
		e.operator(schema, typ, op, fns[i])
	}
	class := qualified(schema, className(o.GoType, e.g, "btree_ops"))
	fmt.Fprintf(e.b, "CREATE OPERATOR FAMILY %s USING btree;\n", class)
	fmt.Fprintf(e.b, "CREATE OPERATOR CLASS %s DEFAULT FOR TYPE %s USING btree FAMILY %s AS\n", class, typ, class)
	for i, op := range btreeOperators {
		fmt.Fprintf(e.b, "\tOPERATOR %d %s,\n", i+1, operatorName(schema, op.name))
	}
	fmt.Fprintf(e.b, "\tFUNCTION 1 %s(%s, %s);\n", e.functionName(o.Cmp), typ, typ)
}

func (e *emitter) hash(schema string, h Hash) {
	typ := e.g.sqlType(h.GoType)
	e.operator(schema, typ, btreeOperators[2], h.Eq)
	class := qualified(schema, className(h.GoType, e.g, "hash_ops"))
	fmt.Fprintf(e.b, "CREATE OPERATOR FAMILY %s USING hash;\n", class)
	fmt.Fprintf(e.b, "CREATE OPERATOR CLASS %s DEFAULT FOR TYPE %s USING hash FAMILY %s AS\n", class, typ, class)
	fmt.Fprintf(e.b, "\tOPERATOR 1 %s (%s, %s),\n", operatorName(schema, "="), typ, typ)
	fmt.Fprintf(e.b, "\tFUNCTION 1 %s(%s);\n", e.functionName(h.Hash), typ)
}

func (e *emitter) functionName(name string) string {
	p := e.g.index[Key{KindFunction, name}]
	return qualified(e.g.nodes[p].schema, name)
}

// className names an operator class after the SQL name of a declared type,
// or after the Go type name of a mapped one.
func className(goType string, g *Graph, suffix string) string {
	base := goType
	if p, ok := g.declared[goType]; ok {
		base = g.nodes[p].entity.Key().Name
	}
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	b.WriteString("_")
	b.WriteString(suffix)
	return b.String()
}

func operatorName(schema, op string) string {
	if schema == "" {
		return op
	}
	return quoteIdentifier(schema) + "." + op
}

// operatorRef names a related operator inside an operator definition.
func operatorRef(schema, op string) string {
	if schema == "" {
		return op
	}
	return "OPERATOR(" + quoteIdentifier(schema) + "." + op + ")"
}
