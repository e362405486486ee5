package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"plugin"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugr-lab/pgext-go/sqlgraph"
)

// The symbol table of testdata/ext is scanned in place of a built plugin
// (binaries built by go test carry none), and the fake table below resolves
// the same symbols the way plugin.Open would.

func PgextMarker() sqlgraph.Control {
	return sqlgraph.Control{Name: "probe", Version: "0.1", Schema: "probe"}
}

func PgextTypeMappings() sqlgraph.TypeMappings {
	return sqlgraph.TypeMappings{"main.Weight": "numeric"}
}

func PgextInternalsSchemaProbeUtil() sqlgraph.Entity {
	return sqlgraph.Schema{Name: "probe_util"}
}

func PgextInternalsFunctionProbeSeries() sqlgraph.Entity {
	return sqlgraph.Function{
		Name:    "probe_series",
		Schema:  "probe_util",
		Args:    []sqlgraph.Arg{{Name: "n", GoType: "datum.Int64"}},
		Returns: sqlgraph.Returns{Kind: sqlgraph.ReturnsSetOf, GoType: "main.Weight"},
		Strict:  true,
	}
}

type fakeTable map[string]plugin.Symbol

func (f fakeTable) Lookup(name string) (plugin.Symbol, error) {
	if s, ok := f[name]; ok {
		return s, nil
	}
	return nil, errors.New("plugin: symbol " + name + " not found")
}

func probeTable() fakeTable {
	return fakeTable{
		"PgextMarker":                       PgextMarker,
		"PgextTypeMappings":                 PgextTypeMappings,
		"PgextInternalsSchemaProbeUtil":     PgextInternalsSchemaProbeUtil,
		"PgextInternalsFunctionProbeSeries": PgextInternalsFunctionProbeSeries,
	}
}

var fixture struct {
	once sync.Once
	dir  string
	path string
	err  error
}

func TestMain(m *testing.M) {
	code := m.Run()
	if fixture.dir != "" {
		os.RemoveAll(fixture.dir)
	}
	os.Exit(code)
}

// fixtureBinary builds testdata/ext once and returns the executable.
func fixtureBinary(t *testing.T) string {
	t.Helper()
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skipf("no symbol scanner for %s binaries", runtime.GOOS)
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not in PATH")
	}

	fixture.once.Do(func() {
		fixture.dir, fixture.err = os.MkdirTemp("", "pgext-schema-fixture-")
		if fixture.err != nil {
			return
		}
		fixture.path = filepath.Join(fixture.dir, "ext")
		cmd := exec.Command(goBin, "build", "-o", fixture.path, ".")
		cmd.Dir = filepath.Join("testdata", "ext")
		cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
		if out, err := cmd.CombinedOutput(); err != nil {
			fixture.err = fmt.Errorf("go build: %w\n%s", err, out)
		}
	})
	require.NoError(t, fixture.err)
	return fixture.path
}

func Test_scanSymbols(t *testing.T) {
	exe := fixtureBinary(t)

	symbols, err := scanSymbols(exe)
	require.NoError(t, err)
	assert.Contains(t, symbols, "PgextMarker")
	assert.Contains(t, symbols, "PgextInternalsSchemaProbeUtil")
	assert.Contains(t, symbols, "PgextInternalsFunctionProbeSeries")
	assert.NotContains(t, symbols, "PgextTypeMappings")
	assert.IsNonDecreasing(t, symbols)

	seen := map[string]bool{}
	for _, s := range symbols {
		assert.False(t, seen[s], "duplicate symbol %s", s)
		seen[s] = true
	}
}

func Test_scanSymbolsNotBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(path, []byte("not a binary"), 0o600))

	_, err := scanSymbols(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an ELF or Mach-O binary")
}

func Test_unqualify(t *testing.T) {
	tbl := []struct {
		in, out string
	}{
		{"main.PgextMarker", "PgextMarker"},
		{"_main.PgextMarker", "PgextMarker"},
		{"github.com/acme/ext.PgextInternalsFunctionAdd", "PgextInternalsFunctionAdd"},
		{"main.PgextInternalsFunctionAdd.abi0", "PgextInternalsFunctionAdd"},
		{"main.PgextInternalsFunctionAdd.func1", "func1"},
		{"_PgextMarker", "PgextMarker"},
	}
	for _, tt := range tbl {
		assert.Equal(t, tt.out, unqualify(tt.in), tt.in)
	}
}

func Test_countKinds(t *testing.T) {
	counts := countKinds([]string{
		"PgextMarker",
		"PgextInternalsSchemaA",
		"PgextInternalsFunctionA",
		"PgextInternalsFunctionB",
		"PgextInternalsCustomSQLGrants",
	})
	assert.Equal(t, map[sqlgraph.Kind]int{
		sqlgraph.KindSchema:    1,
		sqlgraph.KindFunction:  2,
		sqlgraph.KindCustomSQL: 1,
	}, counts)
	assert.Equal(t, "4 SQL entities: 1 schema, 0 enum, 0 type, 2 function, 0 ord, 0 hash, 1 customsql",
		summarize(counts))
}

func Test_loadEntities(t *testing.T) {
	symbols := []string{"PgextInternalsFunctionProbeSeries", "PgextInternalsSchemaProbeUtil", "PgextMarker"}

	t.Run("probe extension", func(t *testing.T) {
		control, mappings, entities, err := loadEntities(probeTable(), symbols)
		require.NoError(t, err)
		assert.Equal(t, "probe", control.Name)
		assert.Equal(t, "numeric", mappings["main.Weight"])
		assert.Equal(t, "bigint", mappings["datum.Int64"])
		require.Len(t, entities, 2)
		assert.Equal(t, sqlgraph.Key{Kind: sqlgraph.KindFunction, Name: "probe_series"}, entities[0].Key())
		assert.Equal(t, sqlgraph.Key{Kind: sqlgraph.KindSchema, Name: "probe_util"}, entities[1].Key())
	})

	t.Run("no marker", func(t *testing.T) {
		_, _, _, err := loadEntities(probeTable(), symbols[:2])
		assert.ErrorIs(t, err, errNotExtension)
	})

	t.Run("wrong marker type", func(t *testing.T) {
		tbl := probeTable()
		tbl["PgextMarker"] = func() string { return "probe" }
		_, _, _, err := loadEntities(tbl, symbols)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "want func() sqlgraph.Control")
	})

	t.Run("wrong entity type", func(t *testing.T) {
		tbl := probeTable()
		tbl["PgextInternalsSchemaProbeUtil"] = func() sqlgraph.Schema { return sqlgraph.Schema{Name: "x"} }
		_, _, _, err := loadEntities(tbl, symbols)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "want func() sqlgraph.Entity")
	})

	t.Run("missing entity", func(t *testing.T) {
		_, _, _, err := loadEntities(probeTable(), append(symbols, "PgextInternalsEnumGone"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "can't look up PgextInternalsEnumGone")
	})

	t.Run("without type mappings", func(t *testing.T) {
		tbl := probeTable()
		delete(tbl, "PgextTypeMappings")
		_, mappings, _, err := loadEntities(tbl, symbols)
		require.NoError(t, err)
		assert.Equal(t, sqlgraph.DefaultTypeMappings(), mappings)
	})
}

func Test_buildArgs(t *testing.T) {
	tbl := []struct {
		name string
		opts options
		want []string
	}{
		{"debug", options{Pkg: "./ext"}, []string{"build", "-buildmode=plugin", "-o", "x.so", "-gcflags=all=-N -l", "./ext"}},
		{"release", options{Release: true}, []string{"build", "-buildmode=plugin", "-o", "x.so", "-trimpath", "."}},
		{"test", options{Pkg: ".", Test: true, Release: true},
			[]string{"build", "-buildmode=plugin", "-o", "x.so", "-tags", "pgext_test", "-trimpath", "."}},
	}
	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildArgs(tt.opts, "x.so"))
		})
	}
}

func Test_sqlPath(t *testing.T) {
	control := sqlgraph.Control{Name: "probe", Version: "0.1"}
	assert.Equal(t, filepath.Join("sql", "probe-0.1.sql"), sqlPath("", control))
	assert.Equal(t, "out.sql", sqlPath("out.sql", control))
}

func Test_run(t *testing.T) {
	exe := fixtureBinary(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "sql", "probe.sql")
	dot := filepath.Join(dir, "graph", "probe.dot")

	var status bytes.Buffer
	g := generator{
		out: &status,
		open: func(path string) (symbolTable, error) {
			assert.Equal(t, exe, path)
			return probeTable(), nil
		},
	}
	err := g.run(context.Background(), options{Lib: exe, Out: out, Dot: dot})
	require.NoError(t, err)

	sql, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(sql), "CREATE SCHEMA IF NOT EXISTS probe_util;")
	assert.Contains(t, string(sql), "CREATE FUNCTION probe_util.probe_series(n bigint) RETURNS SETOF numeric\nSTRICT VOLATILE")

	graph, err := os.ReadFile(dot)
	require.NoError(t, err)
	assert.Contains(t, string(graph), "0 -> 1 [ ]")

	assert.Contains(t, status.String(), "Discovered")
	assert.Contains(t, status.String(), "2 SQL entities: 1 schema, 0 enum, 0 type, 1 function")
	assert.Contains(t, status.String(), "SQL entities to "+out)
	assert.Contains(t, status.String(), "SQL entity graph to "+dot)
	assert.NotContains(t, status.String(), "Building")
}

func Test_runFailures(t *testing.T) {
	exe := fixtureBinary(t)

	t.Run("open fails", func(t *testing.T) {
		g := generator{out: &bytes.Buffer{}, open: func(string) (symbolTable, error) {
			return nil, errors.New("plugin was built with a different version of package")
		}}
		err := g.run(context.Background(), options{Lib: exe, Out: filepath.Join(t.TempDir(), "x.sql")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "can't load")
	})

	t.Run("relocatable", func(t *testing.T) {
		tbl := probeTable()
		tbl["PgextMarker"] = func() sqlgraph.Control {
			return sqlgraph.Control{Name: "probe", Version: "0.1", Relocatable: true}
		}
		g := generator{out: &bytes.Buffer{}, open: func(string) (symbolTable, error) { return tbl, nil }}
		out := filepath.Join(t.TempDir(), "x.sql")
		err := g.run(context.Background(), options{Lib: exe, Out: out})
		assert.ErrorIs(t, err, sqlgraph.ErrRelocatable)
		assert.NoFileExists(t, out)
	})

	t.Run("missing library", func(t *testing.T) {
		g := generator{out: &bytes.Buffer{}, open: openPlugin}
		err := g.run(context.Background(), options{Lib: filepath.Join(t.TempDir(), "none.so")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "can't read symbols")
	})
}
