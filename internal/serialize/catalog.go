// Package serialize provides catalog serialization to Arrow IPC format.
// Used by ListFlights RPC to serialize and compress the function listing.
package serialize

import (
	"bytes"
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/pgext-go/catalog"
)

// FunctionsSchema is the layout of the function listing: one row per
// function, with its parameter and result schemas serialized as IPC
// schema messages.
var FunctionsSchema = arrow.NewSchema([]arrow.Field{
	{Name: "schema_name", Type: arrow.BinaryTypes.String},
	{Name: "schema_comment", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "function_name", Type: arrow.BinaryTypes.String},
	{Name: "comment", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "result_kind", Type: arrow.BinaryTypes.String},
	{Name: "strict", Type: arrow.FixedWidthTypes.Boolean},
	{Name: "parameters", Type: arrow.BinaryTypes.Binary},
	{Name: "result", Type: arrow.BinaryTypes.Binary},
}, nil)

// SerializeCatalog writes every function of the catalog as one Arrow IPC
// stream with a single record.
func SerializeCatalog(ctx context.Context, cat catalog.Catalog, allocator memory.Allocator) ([]byte, error) {
	schemas, err := cat.Schemas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get schemas: %w", err)
	}

	builder := array.NewRecordBuilder(allocator, FunctionsSchema)
	defer builder.Release()

	schemaName := builder.Field(0).(*array.StringBuilder)
	schemaComment := builder.Field(1).(*array.StringBuilder)
	functionName := builder.Field(2).(*array.StringBuilder)
	comment := builder.Field(3).(*array.StringBuilder)
	kind := builder.Field(4).(*array.StringBuilder)
	strict := builder.Field(5).(*array.BooleanBuilder)
	params := builder.Field(6).(*array.BinaryBuilder)
	result := builder.Field(7).(*array.BinaryBuilder)

	for _, schema := range schemas {
		functions, err := schema.Functions(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get functions for schema %s: %w", schema.Name(), err)
		}
		for _, fn := range functions {
			sig := fn.Signature()
			schemaName.Append(schema.Name())
			appendOptional(schemaComment, schema.Comment())
			functionName.Append(fn.Name())
			appendOptional(comment, fn.Comment())
			kind.Append(sig.Kind.String())
			strict.Append(sig.Strict)
			params.Append(flight.SerializeSchema(arrow.NewSchema(sig.Parameters, nil), allocator))
			result.Append(flight.SerializeSchema(sig.Result, allocator))
		}
	}

	record := builder.NewRecordBatch()
	defer record.Release()

	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(FunctionsSchema), ipc.WithAllocator(allocator))
	if err := writer.Write(record); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write IPC record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close IPC writer: %w", err)
	}

	return buf.Bytes(), nil
}

// ReadCatalog reads a listing written by SerializeCatalog. The caller
// releases the record.
func ReadCatalog(data []byte, allocator memory.Allocator) (arrow.RecordBatch, error) {
	reader, err := ipc.NewReader(bytes.NewReader(data), ipc.WithAllocator(allocator))
	if err != nil {
		return nil, fmt.Errorf("failed to open IPC stream: %w", err)
	}
	defer reader.Release()

	if !reader.Next() {
		if err := reader.Err(); err != nil {
			return nil, fmt.Errorf("failed to read IPC record: %w", err)
		}
		return nil, fmt.Errorf("catalog stream has no record")
	}
	record := reader.RecordBatch()
	record.Retain()
	return record, nil
}

func appendOptional(b *array.StringBuilder, s string) {
	if s == "" {
		b.AppendNull()
		return
	}
	b.Append(s)
}
