package pgext

import (
	"errors"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/pgext-go/auth"
	"github.com/hugr-lab/pgext-go/catalog"
)

// Config contains configuration for serving an extension over Arrow Flight.
type Config struct {
	// Catalog provides the schemas and functions to serve, usually built
	// with NewExtensionBuilder.
	// REQUIRED: MUST NOT be nil.
	Catalog catalog.Catalog

	// Auth provides authentication logic.
	// OPTIONAL: If nil, no authentication (all requests allowed).
	Auth auth.Authenticator

	// Allocator for Arrow memory management: record batches streamed to
	// clients and catalog listings.
	// OPTIONAL: Uses memory.DefaultAllocator if nil.
	Allocator memory.Allocator

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	// If LogLevel is set and Logger is nil, a text logger with that level
	// writing to stderr is created.
	Logger *slog.Logger

	// LogLevel sets the logging level.
	// OPTIONAL: If nil, uses Info level.
	// Ignored when Logger is provided.
	LogLevel *slog.Level

	// MaxMessageSize sets maximum gRPC message size in bytes.
	// OPTIONAL: If 0, uses gRPC default (4MB).
	MaxMessageSize int

	// Address is the server's public address (e.g., "grpc://localhost:50051").
	// OPTIONAL: If empty, FlightEndpoint locations will not include URI.
	Address string

	// BatchSize is the number of rows per record batch when streaming the
	// result of a set-returning function.
	// OPTIONAL: If 0, uses catalog.DefaultBatchSize.
	BatchSize int
}

// Standard errors returned by pgext package.
var (
	// ErrUnauthorized indicates authentication failed.
	// Return this from Authenticator.Authenticate() for invalid tokens.
	ErrUnauthorized = auth.ErrUnauthenticated

	// ErrInvalidConfig indicates Config validation failed.
	ErrInvalidConfig = errors.New("invalid server config")

	// ErrInvalidParameters indicates function call parameters are invalid.
	ErrInvalidParameters = catalog.ErrInvalidParameters

	// ErrInvalidExtension indicates an extension definition was rejected
	// by ExtensionBuilder.Build.
	ErrInvalidExtension = errors.New("invalid extension")
)
