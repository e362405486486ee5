package flight

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/pgext-go/internal/serialize"
)

// ListFlightsCommand is the descriptor command of the catalog listing.
const ListFlightsCommand = "ListFlights"

// ListFlights describes the catalog.
//
// The first FlightInfo carries the whole function listing: its ticket is
// the listing serialized as Arrow IPC (see serialize.FunctionsSchema) and
// compressed with zstd. One FlightInfo per function follows, with a PATH
// descriptor [schema, function], the result schema and, for functions
// without parameters, a ready-to-use ticket.
//
// A non-empty criteria expression restricts the per-function entries to
// the schema it names.
func (s *Server) ListFlights(criteria *flight.Criteria, stream flight.FlightService_ListFlightsServer) error {
	ctx := EnrichContextMetadata(stream.Context())

	s.logger.Debug("ListFlights called", "trace_id", TraceIDFromContext(ctx))

	catalogData, err := serialize.SerializeCatalog(ctx, s.catalog, s.allocator)
	if err != nil {
		s.logger.Error("Failed to serialize catalog", "error", err)
		return status.Errorf(codes.Internal, "failed to serialize catalog: %v", err)
	}

	compressed, err := serialize.CompressCatalog(catalogData)
	if err != nil {
		s.logger.Error("Failed to compress catalog", "error", err)
		return status.Errorf(codes.Internal, "failed to compress catalog: %v", err)
	}

	s.logger.Debug("Catalog serialized",
		"uncompressed_bytes", len(catalogData),
		"compressed_bytes", len(compressed),
	)

	listing := &flight.FlightInfo{
		FlightDescriptor: &flight.FlightDescriptor{
			Type: flight.DescriptorCMD,
			Cmd:  []byte(ListFlightsCommand),
		},
		Endpoint:     []*flight.FlightEndpoint{s.endpoint(compressed)},
		TotalRecords: -1,
		TotalBytes:   int64(len(compressed)),
	}
	if err := stream.Send(listing); err != nil {
		s.logger.Error("Failed to send FlightInfo", "error", err)
		return status.Errorf(codes.Internal, "failed to send flight info: %v", err)
	}

	sent, err := s.sendFunctionInfos(ctx, string(criteria.GetExpression()), stream)
	if err != nil {
		return err
	}

	s.logger.Debug("ListFlights completed successfully",
		"compressed_bytes", len(compressed),
		"functions", sent,
	)
	return nil
}

func (s *Server) sendFunctionInfos(ctx context.Context, only string, stream flight.FlightService_ListFlightsServer) (int, error) {
	schemas, err := s.catalog.Schemas(ctx)
	if err != nil {
		return 0, status.Errorf(codes.Internal, "failed to get schemas: %v", err)
	}

	sent := 0
	for _, schema := range schemas {
		if only != "" && schema.Name() != only {
			continue
		}
		functions, err := schema.Functions(ctx)
		if err != nil {
			return sent, status.Errorf(codes.Internal, "failed to get functions for schema %s: %v", schema.Name(), err)
		}
		for _, fn := range functions {
			desc := &flight.FlightDescriptor{
				Type: flight.DescriptorPATH,
				Path: []string{schema.Name(), fn.Name()},
			}
			info, err := s.functionInfo(desc, TicketData{Schema: schema.Name(), Function: fn.Name()}, fn)
			if err != nil {
				return sent, err
			}
			if err := stream.Send(info); err != nil {
				return sent, status.Errorf(codes.Internal, "failed to send flight info: %v", err)
			}
			sent++
		}
	}
	return sent, nil
}
