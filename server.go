package pgext

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"

	"github.com/hugr-lab/pgext-go/flight"
)

// NewServer registers the extension's Flight service on the provided gRPC
// server.
//
// The function:
//  1. Validates the Config
//  2. Creates the Flight service implementation
//  3. Registers it on grpcServer
//
// Does NOT start the gRPC server - user controls lifecycle via grpcServer.Serve().
// Authentication needs the interceptors of ServerOptions:
//
//	config := pgext.Config{
//	    Catalog: ext.Catalog,
//	    Auth:    pgext.BearerAuth(validateToken),
//	}
//	grpcServer := grpc.NewServer(pgext.ServerOptions(config)...)
//	if err := pgext.NewServer(grpcServer, config); err != nil {
//	    log.Fatal(err)
//	}
//	lis, _ := net.Listen("tcp", ":50051")
//	grpcServer.Serve(lis)
func NewServer(grpcServer *grpc.Server, config Config) error {
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	allocator := config.Allocator
	if allocator == nil {
		allocator = memory.DefaultAllocator
	}
	logger := loggerFor(config)

	flightServer := flight.NewServer(config.Catalog, allocator, logger, config.Address, config.BatchSize)
	flight.RegisterFlightServer(grpcServer, flightServer)

	logger.Info("Extension Flight server registered",
		"has_auth", config.Auth != nil,
		"max_message_size", config.MaxMessageSize,
		"batch_size", config.BatchSize,
	)
	return nil
}

// validateConfig checks that required Config fields are valid.
func validateConfig(config Config) error {
	if config.Catalog == nil {
		return fmt.Errorf("catalog is required")
	}
	if config.MaxMessageSize < 0 {
		return fmt.Errorf("max message size must not be negative, got %d", config.MaxMessageSize)
	}
	if config.BatchSize < 0 {
		return fmt.Errorf("batch size must not be negative, got %d", config.BatchSize)
	}
	return nil
}

func loggerFor(config Config) *slog.Logger {
	switch {
	case config.Logger != nil:
		return config.Logger
	case config.LogLevel != nil:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: *config.LogLevel}))
	}
	return slog.Default()
}

// ServerOptions returns gRPC server options with authentication interceptors
// and message size limits.
func ServerOptions(config Config) []grpc.ServerOption {
	var opts []grpc.ServerOption

	if config.Auth != nil {
		opts = append(opts,
			grpc.ChainUnaryInterceptor(flight.UnaryServerInterceptor(config.Auth)),
			grpc.ChainStreamInterceptor(flight.StreamServerInterceptor(config.Auth)),
		)
	}

	if config.MaxMessageSize > 0 {
		opts = append(opts,
			grpc.MaxRecvMsgSize(config.MaxMessageSize),
			grpc.MaxSendMsgSize(config.MaxMessageSize),
		)
	}

	return opts
}
