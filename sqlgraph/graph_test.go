package sqlgraph

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

var demoControl = Control{Name: "demo", Version: "1.0", Comment: "demo extension", Schema: "demo"}

func demoEntities() []Entity {
	return []Entity{
		Schema{Name: "util", Comment: "helpers"},
		Enum{Name: "color", GoType: "main.Color", Variants: []string{"red", "green"}},
		Type{Name: "pair", Schema: "util", GoType: "main.Pair", Fields: []Field{
			{Name: "a", GoType: "datum.Int32"},
			{Name: "c", GoType: "main.Color"},
		}},
		Function{
			Name: "series",
			Args: []Arg{
				{Name: "start", GoType: "datum.Int64"},
				{Name: "stop", GoType: "datum.Int64"},
				{Name: "step", GoType: "datum.Int64", Default: "1"},
			},
			Returns:    Returns{Kind: ReturnsSetOf, GoType: "datum.Int64"},
			Strict:     true,
			Volatility: Immutable,
			Comment:    "it's a series",
		},
		Function{
			Name:    "make_pair",
			Schema:  "util",
			Args:    []Arg{{Name: "a", GoType: "datum.Int32"}, {Name: "c", GoType: "main.Color"}},
			Returns: Returns{Kind: ReturnsOne, GoType: "main.Pair"},
		},
		Function{
			Name:    "color_cmp",
			Args:    []Arg{{Name: "a", GoType: "main.Color"}, {Name: "b", GoType: "main.Color"}},
			Returns: Returns{Kind: ReturnsOne, GoType: "datum.Int32"},
		},
		CustomSQL{
			Name:     "grant_series",
			SQL:      "GRANT EXECUTE ON FUNCTION demo.series(bigint, bigint, bigint) TO PUBLIC;",
			Requires: []Key{{KindFunction, "series"}},
		},
	}
}

var demoOrder = []Key{
	{KindSchema, "util"},
	{KindEnum, "color"},
	{KindType, "pair"},
	{KindFunction, "color_cmp"},
	{KindFunction, "make_pair"},
	{KindFunction, "series"},
	{KindCustomSQL, "grant_series"},
}

func keysOf(g *Graph) []Key {
	var keys []Key
	for _, e := range g.Entities() {
		keys = append(keys, e.Key())
	}
	return keys
}

func TestBuildOrder(t *testing.T) {
	entities := demoEntities()
	reversed := slices.Clone(entities)
	slices.Reverse(reversed)
	rotated := append(slices.Clone(entities[3:]), entities[:3]...)

	tests := []struct {
		name     string
		entities []Entity
	}{
		{"declared order", entities},
		{"reversed", reversed},
		{"rotated", rotated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(demoControl, DefaultTypeMappings(), tt.entities)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if got := keysOf(g); !slices.Equal(got, demoOrder) {
				t.Errorf("order = %v, want %v", got, demoOrder)
			}
		})
	}
}

func TestDependenciesPrecedeDependents(t *testing.T) {
	g, err := Build(demoControl, DefaultTypeMappings(), demoEntities())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	pos := make(map[Key]int)
	for i, k := range keysOf(g) {
		pos[k] = i
	}
	for _, k := range keysOf(g) {
		deps, ok := g.Dependencies(k)
		if !ok {
			t.Fatalf("Dependencies(%s) not found", k)
		}
		for _, d := range deps {
			if pos[d] >= pos[k] {
				t.Errorf("%s defined at %d, before its dependency %s at %d", k, pos[k], d, pos[d])
			}
		}
	}

	deps, _ := g.Dependencies(Key{KindFunction, "make_pair"})
	want := []Key{{KindSchema, "util"}, {KindEnum, "color"}, {KindType, "pair"}}
	if !slices.Equal(deps, want) {
		t.Errorf("make_pair depends on %v, want %v", deps, want)
	}
	if _, ok := g.Dependencies(Key{KindFunction, "missing"}); ok {
		t.Error("Dependencies of an unknown entity reported ok")
	}
	if n := g.Count(KindFunction); n != 3 {
		t.Errorf("Count(Function) = %d, want 3", n)
	}
}

func TestBuildErrors(t *testing.T) {
	fn := func(name string, args ...Arg) Function {
		return Function{Name: name, Args: args, Returns: Returns{Kind: ReturnsVoid}}
	}

	tests := []struct {
		name     string
		control  Control
		entities []Entity
		want     error
	}{
		{"missing name", Control{Version: "1"}, nil, ErrInvalidControl},
		{"missing version", Control{Name: "x"}, nil, ErrInvalidControl},
		{"relocatable", Control{Name: "x", Version: "1", Relocatable: true}, nil, ErrRelocatable},
		{"unnamed entity", demoControl, []Entity{Schema{}}, ErrInvalidEntity},
		{"nil entity", demoControl, []Entity{nil}, ErrInvalidEntity},
		{"duplicate", demoControl, []Entity{fn("f"), fn("f")}, ErrDuplicateEntity},
		{
			"duplicate go type", demoControl,
			[]Entity{
				Enum{Name: "a", GoType: "main.E", Variants: []string{"x"}},
				Enum{Name: "b", GoType: "main.E", Variants: []string{"x"}},
			},
			ErrDuplicateEntity,
		},
		{"enum without variants", demoControl, []Entity{Enum{Name: "e", GoType: "main.E"}}, ErrInvalidEntity},
		{"unknown schema", demoControl, []Entity{Function{Name: "f", Schema: "nowhere", Returns: Returns{Kind: ReturnsVoid}}}, ErrUnknownReference},
		{"unknown go type", demoControl, []Entity{fn("f", Arg{Name: "a", GoType: "main.Missing"})}, ErrUnknownReference},
		{"missing go type", demoControl, []Entity{Function{Name: "f"}}, ErrInvalidEntity},
		{"table without columns", demoControl, []Entity{Function{Name: "f", Returns: Returns{Kind: ReturnsTable}}}, ErrInvalidEntity},
		{
			"unknown requirement", demoControl,
			[]Entity{CustomSQL{Name: "s", Requires: []Key{{KindFunction, "f"}}}},
			ErrUnknownReference,
		},
		{
			"unknown ord function", demoControl,
			[]Entity{Ord{GoType: "datum.Int32", Lt: "lt"}},
			ErrUnknownReference,
		},
		{
			"cycle", demoControl,
			[]Entity{
				CustomSQL{Name: "a", Requires: []Key{{KindCustomSQL, "b"}}},
				CustomSQL{Name: "b", Requires: []Key{{KindCustomSQL, "a"}}},
				fn("free"),
			},
			ErrCycle,
		},
		{
			"self cycle", demoControl,
			[]Entity{CustomSQL{Name: "a", Requires: []Key{{KindCustomSQL, "a"}}}},
			ErrCycle,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(tt.control, DefaultTypeMappings(), tt.entities)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Build error = %v, want %v", err, tt.want)
			}
			if g != nil {
				t.Error("Build returned a graph with an error")
			}
		})
	}
}

func TestCycleNamesMembers(t *testing.T) {
	_, err := Build(demoControl, nil, []Entity{
		CustomSQL{Name: "a", Requires: []Key{{KindCustomSQL, "b"}}},
		CustomSQL{Name: "b", Requires: []Key{{KindCustomSQL, "a"}}},
		CustomSQL{Name: "c"},
	})
	if err == nil {
		t.Fatal("expected a cycle error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "CustomSQL(a), CustomSQL(b)") {
		t.Errorf("error %q does not name the cycle", msg)
	}
	if strings.Contains(msg, "CustomSQL(c)") {
		t.Errorf("error %q names an entity outside the cycle", msg)
	}
}

func TestSQL(t *testing.T) {
	g, err := Build(demoControl, DefaultTypeMappings(), demoEntities())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	sql := g.SQL()

	want := []string{
		"-- demo 1.0\n-- demo extension\n",
		`\echo Use "CREATE EXTENSION demo" to load this file. \quit`,
		"CREATE SCHEMA IF NOT EXISTS util;\nCOMMENT ON SCHEMA util IS 'helpers';\n",
		"CREATE TYPE demo.color AS ENUM (\n\t'red',\n\t'green'\n);\n",
		"CREATE TYPE util.pair AS (\n\ta integer,\n\tc demo.color\n);\n",
		"CREATE FUNCTION demo.series(start bigint, stop bigint, step bigint DEFAULT 1) RETURNS SETOF bigint\n" +
			"STRICT IMMUTABLE\nLANGUAGE c\nAS 'MODULE_PATHNAME', 'series';\n" +
			"COMMENT ON FUNCTION demo.series(bigint, bigint, bigint) IS 'it''s a series';\n",
		"CREATE FUNCTION util.make_pair(a integer, c demo.color) RETURNS util.pair\nVOLATILE\nLANGUAGE c\n",
		"-- CustomSQL(grant_series)\nGRANT EXECUTE ON FUNCTION demo.series(bigint, bigint, bigint) TO PUBLIC;\n",
	}
	for _, w := range want {
		if !strings.Contains(sql, w) {
			t.Errorf("SQL missing %q\n%s", w, sql)
		}
	}

	// Statements follow definition order.
	last := -1
	for _, k := range demoOrder {
		i := strings.Index(sql, "-- "+k.String()+"\n")
		if i < 0 {
			t.Fatalf("no section for %s", k)
		}
		if i < last {
			t.Errorf("section %s is out of order", k)
		}
		last = i
	}
}

func TestSQLFunctionShapes(t *testing.T) {
	entities := []Entity{
		Function{
			Name: "rows",
			Returns: Returns{Kind: ReturnsTable, Columns: []Field{
				{Name: "id", GoType: "datum.Int64"},
				{Name: "user", GoType: "datum.Text"},
			}},
		},
		Function{
			Name:     "add_one",
			Args:     []Arg{{Name: "x", GoType: "int32"}},
			Returns:  Returns{Kind: ReturnsOne, GoType: "int32"},
			Language: "sql",
			Body:     "  SELECT x + 1  ",
		},
		Function{Name: "Touch", Symbol: "touch_impl", Returns: Returns{Kind: ReturnsVoid}},
	}
	g, err := Build(Control{Name: "shapes", Version: "0.1"}, DefaultTypeMappings(), entities)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	sql := g.SQL()
	want := []string{
		`CREATE FUNCTION rows() RETURNS TABLE (id bigint, "user" text)`,
		"CREATE FUNCTION add_one(x integer) RETURNS integer\nVOLATILE\nLANGUAGE sql\nAS $pgext$\nSELECT x + 1\n$pgext$;\n",
		"CREATE FUNCTION \"Touch\"() RETURNS void\nVOLATILE\nLANGUAGE c\nAS 'MODULE_PATHNAME', 'touch_impl';\n",
	}
	for _, w := range want {
		if !strings.Contains(sql, w) {
			t.Errorf("SQL missing %q\n%s", w, sql)
		}
	}
}

func TestSQLOperatorClasses(t *testing.T) {
	cmpFn := func(name, result string) Function {
		return Function{
			Name:       name,
			Args:       []Arg{{Name: "a", GoType: "main.Color"}, {Name: "b", GoType: "main.Color"}},
			Returns:    Returns{Kind: ReturnsOne, GoType: result},
			Strict:     true,
			Volatility: Immutable,
		}
	}
	entities := []Entity{
		Enum{Name: "color", GoType: "main.Color", Variants: []string{"red", "green"}},
		cmpFn("color_lt", "datum.Bool"),
		cmpFn("color_le", "datum.Bool"),
		cmpFn("color_eq", "datum.Bool"),
		cmpFn("color_ge", "datum.Bool"),
		cmpFn("color_gt", "datum.Bool"),
		cmpFn("color_cmp", "datum.Int32"),
		Function{
			Name:       "color_hash",
			Args:       []Arg{{Name: "a", GoType: "main.Color"}},
			Returns:    Returns{Kind: ReturnsOne, GoType: "datum.Int32"},
			Strict:     true,
			Volatility: Immutable,
		},
		Hash{GoType: "main.Color", Eq: "color_eq", Hash: "color_hash"},
		Ord{GoType: "main.Color", Lt: "color_lt", Le: "color_le", Eq: "color_eq", Ge: "color_ge", Gt: "color_gt", Cmp: "color_cmp"},
	}
	g, err := Build(demoControl, DefaultTypeMappings(), entities)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	deps, _ := g.Dependencies(Key{KindOrd, "main.Color"})
	if len(deps) != 7 {
		t.Errorf("Ord depends on %v, want the enum and six functions", deps)
	}

	sql := g.SQL()
	if n := strings.Count(sql, "CREATE OPERATOR demo.= ("); n != 1 {
		t.Errorf("equality operator created %d times", n)
	}
	want := []string{
		"CREATE OPERATOR demo.< (\n\tLEFTARG = demo.color,\n\tRIGHTARG = demo.color,\n\tFUNCTION = demo.color_lt,\n" +
			"\tCOMMUTATOR = OPERATOR(demo.>),\n\tNEGATOR = OPERATOR(demo.>=),\n\tRESTRICT = scalarltsel,\n\tJOIN = scalarltjoinsel\n);\n",
		"CREATE OPERATOR FAMILY demo.color_btree_ops USING btree;\n",
		"CREATE OPERATOR CLASS demo.color_btree_ops DEFAULT FOR TYPE demo.color USING btree FAMILY demo.color_btree_ops AS\n" +
			"\tOPERATOR 1 demo.<,\n\tOPERATOR 2 demo.<=,\n\tOPERATOR 3 demo.=,\n\tOPERATOR 4 demo.>=,\n\tOPERATOR 5 demo.>,\n" +
			"\tFUNCTION 1 demo.color_cmp(demo.color, demo.color);\n",
		"CREATE OPERATOR CLASS demo.color_hash_ops DEFAULT FOR TYPE demo.color USING hash FAMILY demo.color_hash_ops AS\n" +
			"\tOPERATOR 1 demo.= (demo.color, demo.color),\n\tFUNCTION 1 demo.color_hash(demo.color);\n",
	}
	for _, w := range want {
		if !strings.Contains(sql, w) {
			t.Errorf("SQL missing %q\n%s", w, sql)
		}
	}
}

func TestDOT(t *testing.T) {
	g, err := Build(demoControl, DefaultTypeMappings(), demoEntities())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	dot := g.DOT()
	want := []string{
		"digraph {\n",
		`    label = "demo 1.0"`,
		`    0 [ label = "Schema(util)" shape = folder ]`,
		`    2 [ label = "Type(pair)" shape = box ]`,
		`    6 [ label = "CustomSQL(grant_series)" shape = note ]`,
		"    0 -> 2 [ ]\n",
		"    1 -> 2 [ ]\n",
		"    2 -> 4 [ ]\n",
		"    5 -> 6 [ ]\n",
	}
	for _, w := range want {
		if !strings.Contains(dot, w) {
			t.Errorf("DOT missing %q\n%s", w, dot)
		}
	}
	if n := strings.Count(dot, "->"); n != 7 {
		t.Errorf("DOT has %d edges, want 7\n%s", n, dot)
	}
	if !strings.HasSuffix(dot, "}\n") {
		t.Error("DOT is not terminated")
	}
}

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"series", "series"},
		{"_x1", "_x1"},
		{"MakePair", `"MakePair"`},
		{"user", `"user"`},
		{"1abc", `"1abc"`},
		{`a"b`, `"a""b"`},
		{"", `""`},
	}
	for _, tt := range tests {
		if got := quoteIdentifier(tt.in); got != tt.want {
			t.Errorf("quoteIdentifier(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

type color int

func TestTypeNames(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{TypeName[int32](), "int32"},
		{TypeName[[]byte](), "[]uint8"},
		{TypeName[color](), "sqlgraph.color"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("TypeName = %s, want %s", tt.got, tt.want)
		}
	}

	m := DefaultTypeMappings().Merge(TypeMappings{"sqlgraph.color": "integer", "string": "varchar"})
	if m["sqlgraph.color"] != "integer" || m["string"] != "varchar" || m["int64"] != "bigint" {
		t.Errorf("Merge = %v", m)
	}
	if DefaultTypeMappings()["string"] != "text" {
		t.Error("Merge modified its receiver")
	}
}

func TestSymbols(t *testing.T) {
	if got := SymbolName(KindFunction, "make_pair"); got != "PgextInternalsFunctionMakePair" {
		t.Errorf("SymbolName = %s", got)
	}
	if got := SymbolName(KindOrd, "main.Color"); got != "PgextInternalsOrdMainColor" {
		t.Errorf("SymbolName = %s", got)
	}

	tests := []struct {
		sym  string
		kind Kind
		ok   bool
	}{
		{"PgextInternalsFunctionMakePair", KindFunction, true},
		{"PgextInternalsCustomSQLGrants", KindCustomSQL, true},
		{"PgextInternalsSchemaUtil", KindSchema, true},
		{"PgextInternalsSchema", 0, false},
		{"PgextInternalsWidgetX", 0, false},
		{MarkerSymbol, 0, false},
		{"main.main", 0, false},
	}
	for _, tt := range tests {
		kind, ok := ParseSymbol(tt.sym)
		if ok != tt.ok || kind != tt.kind {
			t.Errorf("ParseSymbol(%s) = %v, %v; want %v, %v", tt.sym, kind, ok, tt.kind, tt.ok)
		}
	}

	for _, k := range Kinds() {
		if strings.HasPrefix(k.String(), "Kind(") {
			t.Errorf("kind %d has no name", int(k))
		}
	}
	if Kind(42).String() != "Kind(42)" {
		t.Errorf("unknown kind = %s", Kind(42))
	}
}
