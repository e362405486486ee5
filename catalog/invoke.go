package catalog

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/pgext-go/pgsys"
)

// Invoke runs the function under the backend lock in a memory context of its
// own. Results are copied into Arrow batches before the context is deleted,
// so the reader outlives the call.
func (f *engineFunction) Invoke(ctx context.Context, params []any, batchSize int) (array.RecordReader, error) {
	if len(params) != len(f.params) {
		return nil, fmt.Errorf("%w: %s takes %d parameters, got %d", ErrInvalidParameters, f.def.Name, len(f.params), len(params))
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	b := newBatchBuilder(f.alloc, f.sig.Result, f.result, batchSize)
	defer b.release()

	var err error
	pgsys.WithBackend(func() {
		mcx := pgsys.NewMemoryContext("call "+f.def.Name, f.alloc)
		defer mcx.Delete()
		if rep := pgsys.CatchReport(func() {
			mcx.Run(func() { err = f.call(ctx, mcx, params, b) })
		}); rep != nil {
			err = rep
		}
	})
	if err != nil {
		f.logger.Debug("function call failed", "function", f.def.Name, "error", err)
		return nil, err
	}

	records := b.finish()
	defer func() {
		for _, r := range records {
			r.Release()
		}
	}()
	f.logger.Debug("function call finished",
		"function", f.def.Name,
		"rows", b.total,
		"batches", len(records),
	)
	return array.NewRecordReader(f.sig.Result, records)
}

func (f *engineFunction) call(ctx context.Context, mcx *pgsys.MemoryContext, params []any, b *batchBuilder) error {
	args := make([]pgsys.NullableDatum, len(params))
	hasNull := false
	for i, v := range params {
		if v == nil {
			args[i] = pgsys.NullArg()
			hasNull = true
			continue
		}
		d, err := f.params[i].datumOf(v)
		if err != nil {
			return fmt.Errorf("%s parameter %s: %w", f.def.Name, f.def.Params[i].Name, err)
		}
		args[i] = pgsys.Arg(d)
	}

	// A strict function is not called with a null argument: the scalar
	// result is null and the set is empty.
	if f.def.Strict && hasNull {
		if f.def.Kind == ResultScalar {
			b.appendNull()
		}
		return nil
	}

	flinfo := pgsys.NewFmgrInfo(f.def.Name, mcx)
	switch f.def.Kind {
	case ResultScalar:
		if err := ctx.Err(); err != nil {
			return &pgsys.ErrorReport{Level: pgsys.ERROR, Code: pgsys.ErrcodeQueryCanceled, Message: err.Error()}
		}
		fcinfo := pgsys.NewCallInfo(flinfo, args...)
		d, err := pgsys.FunctionCallInvoke(f.def.Fn, fcinfo)
		if err != nil {
			return err
		}
		if fcinfo.IsNull {
			b.appendNull()
		} else {
			b.appendValue(d)
		}
		return nil

	case ResultSetOf:
		return pgsys.ExecSetReturning(ctx, f.def.Fn, flinfo, args, nil, func(d pgsys.Datum, isNull bool) error {
			if isNull {
				b.appendNull()
			} else {
				b.appendValue(d)
			}
			return nil
		})

	default:
		return pgsys.ExecSetReturning(ctx, f.def.Fn, flinfo, args, f.sig.Result, func(d pgsys.Datum, isNull bool) error {
			if isNull {
				b.appendNull()
				return nil
			}
			tup := pgsys.DatumGetHeapTuple(d)
			if tup.NAtts() != len(f.result) {
				return &pgsys.ErrorReport{
					Level:   pgsys.ERROR,
					Code:    pgsys.ErrcodeDatatypeMismatch,
					Message: fmt.Sprintf("function %s returned %d columns, expected %d", f.def.Name, tup.NAtts(), len(f.result)),
				}
			}
			b.appendRow(tup)
			return nil
		})
	}
}

// batchBuilder collects result rows into records of a fixed size.
type batchBuilder struct {
	rb      *array.RecordBuilder
	columns []typeInfo
	size    int
	rows    int
	total   int
	records []arrow.RecordBatch
}

func newBatchBuilder(alloc memory.Allocator, schema *arrow.Schema, columns []typeInfo, size int) *batchBuilder {
	return &batchBuilder{
		rb:      array.NewRecordBuilder(alloc, schema),
		columns: columns,
		size:    size,
	}
}

// appendNull appends a row of nulls.
func (b *batchBuilder) appendNull() {
	for i := range b.columns {
		b.rb.Field(i).AppendNull()
	}
	b.next()
}

func (b *batchBuilder) appendValue(d pgsys.Datum) {
	b.columns[0].appendTo(b.rb.Field(0), d)
	b.next()
}

func (b *batchBuilder) appendRow(tup *pgsys.HeapTuple) {
	for i, c := range b.columns {
		d, isNull := tup.Attr(i)
		if isNull {
			b.rb.Field(i).AppendNull()
			continue
		}
		c.appendTo(b.rb.Field(i), d)
	}
	b.next()
}

func (b *batchBuilder) next() {
	b.rows++
	b.total++
	if b.rows == b.size {
		b.flush()
	}
}

func (b *batchBuilder) flush() {
	if b.rows == 0 {
		return
	}
	b.records = append(b.records, b.rb.NewRecordBatch())
	b.rows = 0
}

// finish hands the built records to the caller.
func (b *batchBuilder) finish() []arrow.RecordBatch {
	b.flush()
	out := b.records
	b.records = nil
	return out
}

func (b *batchBuilder) release() {
	for _, r := range b.records {
		r.Release()
	}
	b.records = nil
	b.rb.Release()
}
