package flight

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/pgext-go/auth"
	"github.com/hugr-lab/pgext-go/internal/recovery"
)

// DoGet runs the function call named by the ticket and streams its rows.
//
// The call runs to completion inside the engine before the first batch is
// sent. Engine errors are reported with the code internal/recovery assigns
// to their SQLSTATE; cancelling the call stops both the engine and the
// stream.
func (s *Server) DoGet(ticket *flight.Ticket, stream flight.FlightService_DoGetServer) error {
	ctx := EnrichContextMetadata(stream.Context())

	td, err := DecodeTicket(ticket.GetTicket())
	if err != nil {
		s.logger.Error("Failed to decode ticket", "error", err)
		return status.Errorf(codes.InvalidArgument, "%v", err)
	}

	logger := s.logger.With(
		"schema", td.Schema,
		"function", td.Function,
		"identity", auth.IdentityFromContext(ctx),
		"trace_id", TraceIDFromContext(ctx),
	)
	logger.Debug("DoGet request", "param_count", len(td.Params))

	fn, err := s.lookupFunction(ctx, td.Schema, td.Function)
	if err != nil {
		return err
	}

	reader, err := recovery.RecoverToValue(logger, "Invoke", func() (array.RecordReader, error) {
		return fn.Invoke(ctx, td.Params, s.batchSize)
	})
	if err != nil {
		logger.Debug("Function call failed", "code", status.Code(err), "error", err)
		return err
	}
	defer reader.Release()

	batches, rows, err := s.stream(ctx, reader, stream)
	if err != nil {
		logger.Error("DoGet streaming failed",
			"batches_sent", batches,
			"rows_sent", rows,
			"error", err,
		)
		return recovery.Status(err)
	}

	logger.Debug("DoGet completed successfully",
		"batches_sent", batches,
		"total_rows", rows,
	)
	return nil
}

// stream pipes the reader into the Flight stream: one goroutine pulls
// batches, the other writes them, and the first error stops both.
func (s *Server) stream(ctx context.Context, reader array.RecordReader, stream flight.FlightService_DoGetServer) (batches int, rows int64, err error) {
	writer := flight.NewRecordWriter(stream, ipc.WithSchema(reader.Schema()), ipc.WithAllocator(s.allocator))

	g, gctx := errgroup.WithContext(ctx)
	records := make(chan arrow.RecordBatch, 1)

	g.Go(func() error {
		defer close(records)
		for reader.Next() {
			rec := reader.RecordBatch()
			rec.Retain()
			select {
			case records <- rec:
			case <-gctx.Done():
				rec.Release()
				return gctx.Err()
			}
		}
		return reader.Err()
	})

	g.Go(func() error {
		for rec := range records {
			err := writer.Write(rec)
			rows += rec.NumRows()
			rec.Release()
			if err != nil {
				return status.Errorf(codes.Internal, "failed to write batch %d: %v", batches+1, err)
			}
			batches++
		}
		return nil
	})

	err = g.Wait()
	// The writer may have stopped with a batch still buffered.
	for rec := range records {
		rec.Release()
	}
	if cerr := writer.Close(); err == nil && cerr != nil {
		err = status.Errorf(codes.Internal, "failed to close stream: %v", cerr)
	}
	return batches, rows, err
}
