package serialize

import (
	"bytes"
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/pgext-go/catalog"
	"github.com/hugr-lab/pgext-go/oid"
	"github.com/hugr-lab/pgext-go/pgsys"
)

func nop(fcinfo *pgsys.FunctionCallInfo) pgsys.Datum { return pgsys.ReturnNull(fcinfo) }

func testCatalog(t *testing.T) catalog.Catalog {
	t.Helper()
	series, err := catalog.NewSetReturningFunction(catalog.FunctionDef{
		Name:    "series",
		Comment: "integers",
		Params:  []catalog.Param{{Name: "start", Type: oid.Int8Oid}, {Name: "stop", Type: oid.Int8Oid}},
		Returns: []catalog.Column{{Name: "value", Type: oid.Int8Oid}},
		Strict:  true,
		Fn:      nop,
	})
	if err != nil {
		t.Fatal(err)
	}
	now, err := catalog.NewScalarFunction(catalog.FunctionDef{
		Name:    "now_utc",
		Returns: []catalog.Column{{Type: oid.TimestamptzOid}},
		Fn:      nop,
	})
	if err != nil {
		t.Fatal(err)
	}

	cat := catalog.NewStaticCatalog()
	if err := cat.AddSchema("util", "helpers", []catalog.Function{series}); err != nil {
		t.Fatal(err)
	}
	if err := cat.AddSchema("clock", "", []catalog.Function{now}); err != nil {
		t.Fatal(err)
	}
	return cat
}

func TestSerializeCatalog(t *testing.T) {
	alloc := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer alloc.AssertSize(t, 0)

	data, err := SerializeCatalog(context.Background(), testCatalog(t), alloc)
	if err != nil {
		t.Fatalf("SerializeCatalog failed: %v", err)
	}

	record, err := ReadCatalog(data, alloc)
	if err != nil {
		t.Fatalf("ReadCatalog failed: %v", err)
	}
	defer record.Release()

	if !record.Schema().Equal(FunctionsSchema) {
		t.Fatalf("schema = %s", record.Schema())
	}
	if record.NumRows() != 2 {
		t.Fatalf("expected 2 functions, got %d", record.NumRows())
	}

	schemas := record.Column(0).(*array.String)
	names := record.Column(2).(*array.String)
	comments := record.Column(3).(*array.String)
	kinds := record.Column(4).(*array.String)
	strict := record.Column(5).(*array.Boolean)

	// Schemas come in name order.
	if schemas.Value(0) != "clock" || names.Value(0) != "now_utc" || kinds.Value(0) != "scalar" {
		t.Errorf("row 0 = %s.%s %s", schemas.Value(0), names.Value(0), kinds.Value(0))
	}
	if !comments.IsNull(0) || strict.Value(0) {
		t.Error("now_utc has no comment and is not strict")
	}
	if names.Value(1) != "series" || kinds.Value(1) != "setof" || !strict.Value(1) || comments.Value(1) != "integers" {
		t.Errorf("row 1 = %s %s", names.Value(1), kinds.Value(1))
	}

	params, err := flight.DeserializeSchema(record.Column(6).(*array.Binary).Value(1), alloc)
	if err != nil {
		t.Fatal(err)
	}
	if params.NumFields() != 2 || params.Field(1).Name != "stop" {
		t.Errorf("parameters = %s", params)
	}
	result, err := flight.DeserializeSchema(record.Column(7).(*array.Binary).Value(0), alloc)
	if err != nil {
		t.Fatal(err)
	}
	want := &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
	if result.NumFields() != 1 || !arrow.TypeEqual(result.Field(0).Type, want) {
		t.Errorf("result = %s", result)
	}
}

func TestCompressRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte("series")},
		{"repetitive", bytes.Repeat([]byte("util.series "), 1000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed, err := CompressCatalog(tt.data)
			if err != nil {
				t.Fatal(err)
			}
			if len(tt.data) > 1000 && len(compressed) >= len(tt.data) {
				t.Errorf("no compression: %d -> %d", len(tt.data), len(compressed))
			}
			got, err := DecompressCatalog(compressed)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, tt.data) {
				t.Errorf("round trip changed the data")
			}
		})
	}
}

func TestDecompressGarbage(t *testing.T) {
	if _, err := DecompressCatalog([]byte("not zstd")); err == nil {
		t.Error("garbage decompressed")
	}
}
