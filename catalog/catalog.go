// Package catalog describes the functions an extension exposes to remote
// callers.
//
// A Catalog holds schemas and a Schema holds functions. Every function
// carries an Arrow signature and runs through the engine's calling
// convention: arguments become datums in a memory context created for the
// call, and results are collected into Arrow record batches.
//
//   - Static catalogs: built once, through NewStaticCatalog or the root
//     package's ExtensionBuilder, and never modified.
//   - Custom catalogs: any implementation of Catalog, for example one that
//     loads extensions at runtime.
//
// All interfaces are goroutine-safe and support context-based cancellation.
package catalog

import (
	"context"
)

// Catalog is the top-level container of an extension's schemas.
// All methods MUST be goroutine-safe.
type Catalog interface {
	// Schemas returns all schemas, ordered by name.
	// Returns empty slice (not nil) if no schemas available.
	// MUST respect context cancellation and deadlines.
	Schemas(ctx context.Context) ([]Schema, error)

	// Schema returns a specific schema by name.
	// Returns (nil, nil) if schema doesn't exist (not an error).
	// Returns (nil, err) if lookup fails for other reasons.
	Schema(ctx context.Context, name string) (Schema, error)
}

// Schema groups the functions of one SQL schema.
// Implementations MUST be goroutine-safe.
type Schema interface {
	// Name returns the schema name. MUST return non-empty string.
	Name() string

	// Comment returns optional schema documentation.
	Comment() string

	// Functions returns all functions in this schema, ordered by name.
	// Returns empty slice (not nil) if no functions available.
	Functions(ctx context.Context) ([]Function, error)

	// Function returns a specific function by name.
	// Returns (nil, nil) if the function doesn't exist.
	Function(ctx context.Context, name string) (Function, error)
}
