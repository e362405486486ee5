package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hugr-lab/pgext-go/oid"
)

func testFunction(t *testing.T, name string) Function {
	t.Helper()
	f, err := NewScalarFunction(FunctionDef{
		Name:    name,
		Params:  []Param{{"v", oid.TextOid}},
		Returns: []Column{{"v", oid.TextOid}},
		Fn:      echo,
	})
	if err != nil {
		t.Fatal(err)
	}
	return f
}

// TestStaticCatalogSchemas tests retrieving schemas from static catalog.
func TestStaticCatalogSchemas(t *testing.T) {
	cat := NewStaticCatalog()
	if err := cat.AddSchema("schema2", "Second schema", nil); err != nil {
		t.Fatal(err)
	}
	if err := cat.AddSchema("schema1", "First schema", nil); err != nil {
		t.Fatal(err)
	}

	schemas, err := cat.Schemas(context.Background())
	if err != nil {
		t.Fatalf("Schemas() failed: %v", err)
	}
	if len(schemas) != 2 {
		t.Fatalf("Expected 2 schemas, got %d", len(schemas))
	}
	if schemas[0].Name() != "schema1" || schemas[1].Comment() != "Second schema" {
		t.Errorf("schemas out of order: %s, %s", schemas[0].Name(), schemas[1].Name())
	}
}

// TestStaticCatalogSchemaLookup tests looking up specific schemas.
func TestStaticCatalogSchemaLookup(t *testing.T) {
	cat := NewStaticCatalog()
	if err := cat.AddSchema("test", "Test schema", nil); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	schema, err := cat.Schema(ctx, "test")
	if err != nil {
		t.Fatalf("Schema() failed: %v", err)
	}
	if schema == nil || schema.Name() != "test" {
		t.Fatalf("Expected schema 'test', got %v", schema)
	}

	schema, err = cat.Schema(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("Schema() failed for nonexistent: %v", err)
	}
	if schema != nil {
		t.Error("Expected nil for nonexistent schema")
	}
}

func TestStaticSchemaFunctions(t *testing.T) {
	cat := NewStaticCatalog()
	err := cat.AddSchema("util", "", []Function{
		testFunction(t, "upper"),
		testFunction(t, "echo"),
		testFunction(t, "lower"),
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	schema, _ := cat.Schema(ctx, "util")

	funcs, err := schema.Functions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range funcs {
		names = append(names, f.Name())
	}
	if len(names) != 3 || names[0] != "echo" || names[1] != "lower" || names[2] != "upper" {
		t.Errorf("functions = %v", names)
	}

	f, err := schema.Function(ctx, "lower")
	if err != nil || f == nil || f.Name() != "lower" {
		t.Errorf("Function(lower) = %v, %v", f, err)
	}
	if f, _ := schema.Function(ctx, "missing"); f != nil {
		t.Errorf("Function(missing) = %v", f.Name())
	}
}

func TestStaticCatalogErrors(t *testing.T) {
	cat := NewStaticCatalog()
	if err := cat.AddSchema("", "", nil); !errors.Is(err, ErrInvalidFunction) {
		t.Errorf("empty name: %v", err)
	}
	if err := cat.AddSchema("a", "", nil); err != nil {
		t.Fatal(err)
	}
	if err := cat.AddSchema("a", "", nil); !errors.Is(err, ErrInvalidFunction) {
		t.Errorf("duplicate schema: %v", err)
	}
	err := cat.AddSchema("b", "", []Function{testFunction(t, "f"), testFunction(t, "f")})
	if !errors.Is(err, ErrInvalidFunction) {
		t.Errorf("duplicate function: %v", err)
	}
}

// TestStaticCatalogConcurrency tests concurrent access to the catalog.
func TestStaticCatalogConcurrency(t *testing.T) {
	cat := NewStaticCatalog()
	if err := cat.AddSchema("s", "", []Function{testFunction(t, "echo")}); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			schema, err := cat.Schema(ctx, "s")
			if err != nil || schema == nil {
				t.Errorf("Schema() = %v, %v", schema, err)
				return
			}
			f, _ := schema.Function(ctx, "echo")
			rdr, err := f.Invoke(ctx, []any{"x"}, 1)
			if err != nil {
				t.Errorf("Invoke() = %v", err)
				return
			}
			rdr.Release()
		}()
	}
	wg.Wait()
}
