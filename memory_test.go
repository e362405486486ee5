package pgext

import (
	"context"
	"sync"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/pgext-go/callconv"
	"github.com/hugr-lab/pgext-go/catalog"
	"github.com/hugr-lab/pgext-go/datum"
	"github.com/hugr-lab/pgext-go/oid"
	"github.com/hugr-lab/pgext-go/pgsys"
)

func lookup(t *testing.T, ext *Extension, schema, name string) catalog.Function {
	t.Helper()
	ctx := context.Background()
	s, err := ext.Catalog.Schema(ctx, schema)
	if err != nil || s == nil {
		t.Fatalf("schema %s: %v", schema, err)
	}
	fn, err := s.Function(ctx, name)
	if err != nil || fn == nil {
		t.Fatalf("function %s: %v", name, err)
	}
	return fn
}

// count runs fn in batches of 7 rows and counts the rows.
func count(fn catalog.Function, params ...any) (rows int64, err error) {
	rdr, err := fn.Invoke(context.Background(), params, 7)
	if err != nil {
		return 0, err
	}
	defer rdr.Release()
	for rdr.Next() {
		rows += rdr.RecordBatch().NumRows()
	}
	return rows, rdr.Err()
}

func invoke(t *testing.T, ext *Extension, schema, name string, params ...any) (int64, error) {
	t.Helper()
	return count(lookup(t, ext, schema, name), params...)
}

// TestMemoryLeaks checks that memory contexts and record batches of a call
// are returned to the allocator.
func TestMemoryLeaks(t *testing.T) {
	allocator := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer allocator.AssertSize(t, 0)

	ext := testExtension(t, allocator)

	t.Run("SetOf", func(t *testing.T) {
		rows, err := invoke(t, ext, "util", "series", int64(1), int64(100))
		if err != nil || rows != 100 {
			t.Fatalf("rows = %d, err = %v", rows, err)
		}
	})

	t.Run("Table", func(t *testing.T) {
		rows, err := invoke(t, ext, "util", "pairs")
		if err != nil || rows != 2 {
			t.Fatalf("rows = %d, err = %v", rows, err)
		}
	})

	t.Run("Scalar", func(t *testing.T) {
		rows, err := invoke(t, ext, "public", "answer")
		if err != nil || rows != 1 {
			t.Fatalf("rows = %d, err = %v", rows, err)
		}
	})

	t.Run("NullArgument", func(t *testing.T) {
		rows, err := invoke(t, ext, "util", "series", nil, int64(3))
		if err != nil || rows != 0 {
			t.Fatalf("rows = %d, err = %v", rows, err)
		}
	})
}

func TestMemoryLeaksInConcurrentCalls(t *testing.T) {
	allocator := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer allocator.AssertSize(t, 0)

	series := lookup(t, testExtension(t, allocator), "util", "series")

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, err := count(series, int64(0), int64(i*10))
			if err != nil || rows != int64(i*10+1) {
				t.Errorf("call %d: rows = %d, err = %v", i, rows, err)
			}
		}()
	}
	wg.Wait()
}

func TestNoMemoryLeaksWithErrors(t *testing.T) {
	allocator := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer allocator.AssertSize(t, 0)

	// Fails after producing some rows, so partial batches are discarded.
	failing := callconv.Wrap(func(fcinfo *pgsys.FunctionCallInfo) callconv.SetOf[datum.Int64] {
		n := 0
		return callconv.NewSetOf(callconv.FromFunc(func() (datum.Int64, bool) {
			n++
			if n > 20 {
				pgsys.Ereport(pgsys.ERROR, pgsys.ErrcodeNumericValueOutOfRange, "value out of range")
			}
			return datum.Int64(n), true
		}))
	})

	ext, err := NewExtensionBuilder(testControl).
		Schema("util").
		SetOf(catalog.FunctionDef{
			Name:      "failing",
			Returns:   []catalog.Column{{Name: "n", Type: oid.Int8Oid}},
			Fn:        failing,
			Allocator: allocator,
		}).
		SetOf(seriesDef(allocator)).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := invoke(t, ext, "util", "failing"); err == nil {
		t.Fatal("expected an engine error")
	}
	if _, err := invoke(t, ext, "util", "series", "one", int64(2)); err == nil {
		t.Fatal("expected a parameter error")
	}
}
