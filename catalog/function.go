package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/pgext-go/oid"
	"github.com/hugr-lab/pgext-go/pgsys"
)

var (
	// ErrInvalidParameters is returned when request parameters do not match
	// a function signature.
	ErrInvalidParameters = errors.New("invalid function parameters")
	// ErrUnsupportedType is returned for engine types without an Arrow
	// mapping.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrInvalidFunction is returned by the constructors for incomplete
	// definitions.
	ErrInvalidFunction = errors.New("invalid function definition")
)

// DefaultBatchSize is the number of rows per record batch when a caller
// passes zero.
const DefaultBatchSize = 1024

// ResultKind is the shape of a function result.
type ResultKind int

const (
	// ResultScalar functions return one value per call.
	ResultScalar ResultKind = iota
	// ResultSetOf functions return a set of values of one type.
	ResultSetOf
	// ResultTable functions return a set of rows.
	ResultTable
)

func (k ResultKind) String() string {
	switch k {
	case ResultScalar:
		return "scalar"
	case ResultSetOf:
		return "setof"
	case ResultTable:
		return "table"
	}
	return fmt.Sprintf("ResultKind(%d)", int(k))
}

// Param is a named, typed function parameter.
type Param struct {
	Name string
	Type oid.BuiltinOid
}

// Column is a named, typed result column.
type Column = Param

// FunctionSignature describes the parameters and result of a function in
// Arrow terms.
type FunctionSignature struct {
	// Parameters lists one field per parameter, in call order.
	Parameters []arrow.Field
	// Result is the schema of the returned batches.
	Result *arrow.Schema
	Kind   ResultKind
	Strict bool
}

// Function is a callable extension function.
// Implementations MUST be goroutine-safe.
type Function interface {
	// Name returns the SQL function name.
	Name() string

	// Comment returns optional function documentation.
	Comment() string

	// Signature returns the Arrow signature.
	Signature() FunctionSignature

	// Invoke calls the function with MessagePack-decoded parameters and
	// returns its results in batches of at most batchSize rows.
	// Caller MUST call reader.Release().
	Invoke(ctx context.Context, params []any, batchSize int) (array.RecordReader, error)
}

// FunctionDef defines a function backed by an engine-callable entry point,
// usually one produced by the callconv package.
type FunctionDef struct {
	Name    string
	Comment string
	Params  []Param
	// Returns lists the result columns. Scalar and set-of functions have
	// exactly one.
	Returns []Column
	Kind    ResultKind
	Strict  bool
	Fn      pgsys.PGFunction

	// Allocator backs both the call memory contexts and the result batches.
	// Defaults to memory.DefaultAllocator.
	Allocator memory.Allocator
	Logger    *slog.Logger
}

type engineFunction struct {
	def    FunctionDef
	params []typeInfo
	result []typeInfo
	sig    FunctionSignature
	alloc  memory.Allocator
	logger *slog.Logger
}

// NewFunction validates a definition and returns the function.
func NewFunction(def FunctionDef) (Function, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidFunction)
	}
	if def.Fn == nil {
		return nil, fmt.Errorf("%w: %s has no entry point", ErrInvalidFunction, def.Name)
	}
	switch def.Kind {
	case ResultScalar, ResultSetOf:
		if len(def.Returns) != 1 {
			return nil, fmt.Errorf("%w: %s must return exactly one column", ErrInvalidFunction, def.Name)
		}
	case ResultTable:
		if len(def.Returns) == 0 {
			return nil, fmt.Errorf("%w: %s returns no columns", ErrInvalidFunction, def.Name)
		}
	default:
		return nil, fmt.Errorf("%w: %s has result kind %s", ErrInvalidFunction, def.Name, def.Kind)
	}

	f := &engineFunction{
		def:    def,
		alloc:  def.Allocator,
		logger: def.Logger,
		sig:    FunctionSignature{Kind: def.Kind, Strict: def.Strict},
	}
	if f.alloc == nil {
		f.alloc = memory.DefaultAllocator
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}

	for _, p := range def.Params {
		info, err := lookupType(p.Type)
		if err != nil {
			return nil, fmt.Errorf("%s parameter %s: %w", def.Name, p.Name, err)
		}
		f.params = append(f.params, info)
		f.sig.Parameters = append(f.sig.Parameters, arrow.Field{Name: p.Name, Type: info.arrow(), Nullable: true})
	}

	fields := make([]arrow.Field, 0, len(def.Returns))
	for _, c := range def.Returns {
		info, err := lookupType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("%s column %s: %w", def.Name, c.Name, err)
		}
		name := c.Name
		if name == "" {
			name = def.Name
		}
		f.result = append(f.result, info)
		fields = append(fields, arrow.Field{Name: name, Type: info.arrow(), Nullable: true})
	}
	f.sig.Result = arrow.NewSchema(fields, nil)
	return f, nil
}

// NewSetReturningFunction defines a set-of or table function.
func NewSetReturningFunction(def FunctionDef) (Function, error) {
	if def.Kind == ResultScalar {
		def.Kind = ResultSetOf
		if len(def.Returns) > 1 {
			def.Kind = ResultTable
		}
	}
	return NewFunction(def)
}

// NewScalarFunction defines a function returning one value per call.
func NewScalarFunction(def FunctionDef) (Function, error) {
	def.Kind = ResultScalar
	return NewFunction(def)
}

func (f *engineFunction) Name() string                 { return f.def.Name }
func (f *engineFunction) Comment() string              { return f.def.Comment }
func (f *engineFunction) Signature() FunctionSignature { return f.sig }

// Params returns the engine parameter types.
func (f *engineFunction) Params() []Param { return f.def.Params }

// Returns returns the engine result columns.
func (f *engineFunction) Returns() []Column { return f.def.Returns }
