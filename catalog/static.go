package catalog

import (
	"cmp"
	"context"
	"fmt"
	"slices"
)

// staticCatalog is an immutable catalog built once at startup.
type staticCatalog struct {
	schemas []*staticSchema
}

// NewStaticCatalog creates an empty static catalog. Schemas are added with
// AddSchema before the catalog is served.
func NewStaticCatalog() *staticCatalog {
	return &staticCatalog{}
}

// AddSchema adds a schema with its functions. Function names must be unique
// within the schema.
func (c *staticCatalog) AddSchema(name, comment string, functions []Function) error {
	if name == "" {
		return fmt.Errorf("%w: schema name is empty", ErrInvalidFunction)
	}
	if slices.ContainsFunc(c.schemas, func(s *staticSchema) bool { return s.name == name }) {
		return fmt.Errorf("%w: schema %s defined twice", ErrInvalidFunction, name)
	}

	funcs := slices.Clone(functions)
	slices.SortFunc(funcs, func(a, b Function) int { return cmp.Compare(a.Name(), b.Name()) })
	for i := 1; i < len(funcs); i++ {
		if funcs[i].Name() == funcs[i-1].Name() {
			return fmt.Errorf("%w: function %s.%s defined twice", ErrInvalidFunction, name, funcs[i].Name())
		}
	}

	c.schemas = append(c.schemas, &staticSchema{name: name, comment: comment, functions: funcs})
	slices.SortFunc(c.schemas, func(a, b *staticSchema) int { return cmp.Compare(a.name, b.name) })
	return nil
}

func (c *staticCatalog) Schemas(ctx context.Context) ([]Schema, error) {
	result := make([]Schema, 0, len(c.schemas))
	for _, s := range c.schemas {
		result = append(result, s)
	}
	return result, nil
}

func (c *staticCatalog) Schema(ctx context.Context, name string) (Schema, error) {
	for _, s := range c.schemas {
		if s.name == name {
			return s, nil
		}
	}
	return nil, nil // Not found, not an error
}

type staticSchema struct {
	name      string
	comment   string
	functions []Function
}

func (s *staticSchema) Name() string    { return s.name }
func (s *staticSchema) Comment() string { return s.comment }

func (s *staticSchema) Functions(ctx context.Context) ([]Function, error) {
	return slices.Clone(s.functions), nil
}

func (s *staticSchema) Function(ctx context.Context, name string) (Function, error) {
	i, ok := slices.BinarySearchFunc(s.functions, name, func(f Function, name string) int {
		return cmp.Compare(f.Name(), name)
	})
	if !ok {
		return nil, nil
	}
	return s.functions[i], nil
}
