// Package flight serves an extension catalog over Arrow Flight: ListFlights
// describes the functions, GetFlightInfo resolves a call and DoGet runs it
// and streams its rows as record batches.
package flight

import (
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"

	"github.com/hugr-lab/pgext-go/catalog"
)

// Server implements the Flight service handlers.
// Embeds BaseFlightServer for forward compatibility with protocol changes.
type Server struct {
	flight.BaseFlightServer

	catalog   catalog.Catalog
	allocator memory.Allocator
	logger    *slog.Logger
	address   string // public address advertised in FlightEndpoint locations
	batchSize int
}

// NewServer creates a new Flight server for the catalog.
// Set-returning functions are streamed in batches of batchSize rows;
// zero selects catalog.DefaultBatchSize.
func NewServer(cat catalog.Catalog, allocator memory.Allocator, logger *slog.Logger, address string, batchSize int) *Server {
	if allocator == nil {
		allocator = memory.DefaultAllocator
	}
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = catalog.DefaultBatchSize
	}
	return &Server{
		catalog:   cat,
		allocator: allocator,
		logger:    logger,
		address:   address,
		batchSize: batchSize,
	}
}

// RegisterFlightServer registers the Flight service on the provided gRPC server.
func RegisterFlightServer(grpcServer *grpc.Server, flightServer *Server) {
	flight.RegisterFlightServiceServer(grpcServer, flightServer)
}

func (s *Server) endpoint(ticket []byte) *flight.FlightEndpoint {
	ep := &flight.FlightEndpoint{Ticket: &flight.Ticket{Ticket: ticket}}
	if s.address != "" {
		ep.Location = []*flight.Location{{Uri: s.address}}
	}
	return ep
}
