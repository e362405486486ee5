package pgext

import (
	"errors"
	"fmt"

	"github.com/hugr-lab/pgext-go/catalog"
	"github.com/hugr-lab/pgext-go/sqlgraph"
)

// Extension is the result of ExtensionBuilder.Build: the functions to
// serve, and the SQL definition of the same functions for the engine.
type Extension struct {
	// Catalog serves the functions through NewServer.
	Catalog catalog.Catalog
	// Entities are the sqlgraph entities the definition file is built
	// from, in declaration order.
	Entities []sqlgraph.Entity
	// Graph is the resolved definition; Graph.SQL() is the extension
	// script.
	Graph *sqlgraph.Graph
}

// ExtensionBuilder builds an Extension using fluent API.
// Not thread-safe - use only during initialization.
type ExtensionBuilder struct {
	control  sqlgraph.Control
	mappings sqlgraph.TypeMappings
	schemas  []*SchemaBuilder
	built    bool
}

// NewExtensionBuilder creates a builder for the extension described by
// control.
//
// Example:
//
//	ext, err := pgext.NewExtensionBuilder(sqlgraph.Control{Name: "util", Version: "1.0"}).
//	    Schema("util").
//	        Comment("helpers").
//	        SetOf(seriesDef).
//	        Scalar(answerDef).
//	    Build()
func NewExtensionBuilder(control sqlgraph.Control) *ExtensionBuilder {
	return &ExtensionBuilder{
		control:  control,
		mappings: sqlgraph.DefaultTypeMappings(),
	}
}

// TypeMappings adds Go type to SQL type mappings used by the definition.
func (eb *ExtensionBuilder) TypeMappings(m sqlgraph.TypeMappings) *ExtensionBuilder {
	eb.mappings = eb.mappings.Merge(m)
	return eb
}

// Schema starts defining a new schema.
// Schema name MUST be non-empty and unique within the extension.
func (eb *ExtensionBuilder) Schema(name string) *SchemaBuilder {
	sb := &SchemaBuilder{name: name, extension: eb}
	eb.schemas = append(eb.schemas, sb)
	return sb
}

// Build finalizes the extension. Can only be called once.
// Every function definition error is reported, joined.
func (eb *ExtensionBuilder) Build() (*Extension, error) {
	if eb.built {
		return nil, fmt.Errorf("%w: extension already built", ErrInvalidExtension)
	}
	eb.built = true

	cat := catalog.NewStaticCatalog()
	var entities []sqlgraph.Entity
	var errs []error
	for _, sb := range eb.schemas {
		functions := make([]catalog.Function, 0, len(sb.functions))
		for _, fd := range sb.functions {
			fn, err := fd.build(fd.def)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s.%s: %w", sb.name, fd.def.Name, err))
				continue
			}
			functions = append(functions, fn)
		}
		if err := cat.AddSchema(sb.name, sb.comment, functions); err != nil {
			errs = append(errs, err)
			continue
		}

		if sb.name != "public" {
			entities = append(entities, sqlgraph.Schema{Name: sb.name, Comment: sb.comment})
		}
		for _, fn := range functions {
			e, err := functionEntity(sb.name, fn)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s.%s: %w", sb.name, fn.Name(), err))
				continue
			}
			entities = append(entities, e)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExtension, err)
	}

	graph, err := sqlgraph.Build(eb.control, eb.mappings, entities)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExtension, err)
	}
	return &Extension{Catalog: cat, Entities: entities, Graph: graph}, nil
}

// functionEntity describes fn for the definition file. The C symbol is the
// function name.
func functionEntity(schema string, fn catalog.Function) (sqlgraph.Function, error) {
	described, ok := fn.(interface {
		Params() []catalog.Param
		Returns() []catalog.Column
	})
	if !ok {
		return sqlgraph.Function{}, fmt.Errorf("function %T has no engine signature", fn)
	}

	e := sqlgraph.Function{
		Name:    fn.Name(),
		Schema:  schema,
		Strict:  fn.Signature().Strict,
		Comment: fn.Comment(),
	}
	for _, p := range described.Params() {
		goType, err := catalog.GoTypeName(p.Type)
		if err != nil {
			return e, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		e.Args = append(e.Args, sqlgraph.Arg{Name: p.Name, GoType: goType})
	}

	result := fn.Signature().Result
	columns := make([]sqlgraph.Field, 0, len(described.Returns()))
	for i, c := range described.Returns() {
		goType, err := catalog.GoTypeName(c.Type)
		if err != nil {
			return e, fmt.Errorf("result %s: %w", c.Name, err)
		}
		columns = append(columns, sqlgraph.Field{Name: result.Field(i).Name, GoType: goType})
	}
	switch fn.Signature().Kind {
	case catalog.ResultScalar:
		e.Returns = sqlgraph.Returns{Kind: sqlgraph.ReturnsOne, GoType: columns[0].GoType}
	case catalog.ResultSetOf:
		e.Returns = sqlgraph.Returns{Kind: sqlgraph.ReturnsSetOf, GoType: columns[0].GoType}
	case catalog.ResultTable:
		e.Returns = sqlgraph.Returns{Kind: sqlgraph.ReturnsTable, Columns: columns}
	}
	return e, nil
}

// SchemaBuilder builds a schema within an extension.
// Not thread-safe - use only during initialization.
type SchemaBuilder struct {
	name      string
	comment   string
	functions []functionDef
	extension *ExtensionBuilder
}

type functionDef struct {
	def   catalog.FunctionDef
	build func(catalog.FunctionDef) (catalog.Function, error)
}

// Comment sets optional schema documentation.
func (sb *SchemaBuilder) Comment(comment string) *SchemaBuilder {
	sb.comment = comment
	return sb
}

// SetOf adds a set-returning function. A single result column makes it
// SETOF that column's type, several make it RETURNS TABLE.
func (sb *SchemaBuilder) SetOf(def catalog.FunctionDef) *SchemaBuilder {
	sb.functions = append(sb.functions, functionDef{def: def, build: catalog.NewSetReturningFunction})
	return sb
}

// Scalar adds a function returning one value per call.
func (sb *SchemaBuilder) Scalar(def catalog.FunctionDef) *SchemaBuilder {
	sb.functions = append(sb.functions, functionDef{def: def, build: catalog.NewScalarFunction})
	return sb
}

// Schema starts a new schema definition (returns to ExtensionBuilder).
func (sb *SchemaBuilder) Schema(name string) *SchemaBuilder {
	return sb.extension.Schema(name)
}

// Build finalizes the extension (returns to ExtensionBuilder).
func (sb *SchemaBuilder) Build() (*Extension, error) {
	return sb.extension.Build()
}
