package flight

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/pgext-go/catalog"
)

// GetFlightInfo resolves a function call to its result schema and ticket.
//
// Two descriptor forms are accepted:
//   - PATH [schema, function]: describes the function. The returned ticket
//     carries no parameters, so the endpoint is only present for functions
//     that take none.
//   - CMD: the command is an encoded ticket (see EncodeTicket) with the
//     call's parameters. The parameter count is checked here and the same
//     ticket is returned.
func (s *Server) GetFlightInfo(ctx context.Context, desc *flight.FlightDescriptor) (*flight.FlightInfo, error) {
	ctx = EnrichContextMetadata(ctx)

	td, err := ticketFromDescriptor(desc)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.logger.Debug("GetFlightInfo request",
		"schema", td.Schema,
		"function", td.Function,
		"param_count", len(td.Params),
		"trace_id", TraceIDFromContext(ctx),
	)

	fn, err := s.lookupFunction(ctx, td.Schema, td.Function)
	if err != nil {
		return nil, err
	}
	if desc.GetType() == flight.DescriptorCMD {
		if want := len(fn.Signature().Parameters); len(td.Params) != want {
			return nil, status.Errorf(codes.InvalidArgument, "%s.%s expects %d parameters, got %d",
				td.Schema, td.Function, want, len(td.Params))
		}
	}

	return s.functionInfo(desc, td, fn)
}

func ticketFromDescriptor(desc *flight.FlightDescriptor) (TicketData, error) {
	switch desc.GetType() {
	case flight.DescriptorPATH:
		path := desc.GetPath()
		if len(path) != 2 || path[0] == "" || path[1] == "" {
			return TicketData{}, fmt.Errorf("%w: path must contain exactly 2 elements: [schema_name, function_name]", ErrInvalidDescriptor)
		}
		return TicketData{Schema: path[0], Function: path[1]}, nil
	case flight.DescriptorCMD:
		td, err := DecodeTicket(desc.GetCmd())
		if err != nil {
			return TicketData{}, fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
		}
		return *td, nil
	}
	return TicketData{}, fmt.Errorf("%w: unsupported descriptor type %s", ErrInvalidDescriptor, desc.GetType())
}

// functionInfo builds the FlightInfo of a call. Calls whose parameter
// count does not match the signature get no endpoint.
func (s *Server) functionInfo(desc *flight.FlightDescriptor, td TicketData, fn catalog.Function) (*flight.FlightInfo, error) {
	sig := fn.Signature()
	info := &flight.FlightInfo{
		Schema:           flight.SerializeSchema(sig.Result, s.allocator),
		FlightDescriptor: desc,
		TotalRecords:     -1,
		TotalBytes:       -1,
	}
	if sig.Kind == catalog.ResultScalar {
		info.TotalRecords = 1
	}
	if len(td.Params) != len(sig.Parameters) {
		return info, nil
	}

	ticket, err := EncodeTicket(td)
	if err != nil {
		s.logger.Error("Failed to encode ticket",
			"schema", td.Schema,
			"function", td.Function,
			"error", err,
		)
		return nil, status.Errorf(codes.Internal, "failed to encode ticket: %v", err)
	}
	info.Endpoint = []*flight.FlightEndpoint{s.endpoint(ticket)}
	return info, nil
}

// lookupFunction resolves schema.function, reporting NotFound as a status.
func (s *Server) lookupFunction(ctx context.Context, schemaName, name string) (catalog.Function, error) {
	schema, err := s.catalog.Schema(ctx, schemaName)
	if err != nil {
		s.logger.Error("Failed to get schema from catalog",
			"schema", schemaName,
			"error", err,
		)
		return nil, status.Errorf(codes.Internal, "failed to get schema: %v", err)
	}
	if schema == nil {
		return nil, status.Errorf(codes.NotFound, "schema not found: %s", schemaName)
	}

	fn, err := schema.Function(ctx, name)
	if err != nil {
		s.logger.Error("Failed to get function from schema",
			"schema", schemaName,
			"function", name,
			"error", err,
		)
		return nil, status.Errorf(codes.Internal, "failed to get function: %v", err)
	}
	if fn == nil {
		return nil, status.Errorf(codes.NotFound, "function not found: %s.%s", schemaName, name)
	}
	return fn, nil
}
