package sqlgraph

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrInvalidControl   = errors.New("invalid extension control")
	ErrRelocatable      = errors.New("relocatable extensions are not supported")
	ErrInvalidEntity    = errors.New("invalid entity")
	ErrDuplicateEntity  = errors.New("duplicate entity")
	ErrUnknownReference = errors.New("unknown reference")
	ErrCycle            = errors.New("dependency cycle")
)

type node struct {
	entity Entity
	// schema the entity is created in, after defaulting.
	schema string
	// deps are positions in Graph.nodes, ascending.
	deps []int
}

// Graph is an extension's entities in definition order.
type Graph struct {
	control  Control
	mappings TypeMappings
	nodes    []node
	index    map[Key]int
	// declared maps the Go type of each Enum and Type entity to its node.
	declared map[string]int
}

type builder struct {
	control  Control
	mappings TypeMappings
	entities []Entity
	byKey    map[Key]int
	byGoType map[string]int
}

// Build resolves the references between entities and orders them so that
// each comes after everything it depends on. Entities that do not depend on
// one another are ordered by kind, then by name, so the order is the same
// for any permutation of the input.
//
// Schemas other than public, pg_catalog and the control's own schema must
// be declared. Go types must be declared by an Enum or Type entity or
// appear in mappings.
func Build(control Control, mappings TypeMappings, entities []Entity) (*Graph, error) {
	if control.Name == "" {
		return nil, fmt.Errorf("%w: extension name is required", ErrInvalidControl)
	}
	if control.Version == "" {
		return nil, fmt.Errorf("%w: extension %s has no version", ErrInvalidControl, control.Name)
	}
	if control.Relocatable {
		return nil, fmt.Errorf("%w: %s", ErrRelocatable, control.Name)
	}

	b := &builder{
		control:  control,
		mappings: mappings,
		entities: entities,
		byKey:    make(map[Key]int, len(entities)),
		byGoType: make(map[string]int),
	}
	if err := b.index(); err != nil {
		return nil, err
	}

	deps := make([][]int, len(entities))
	for i, e := range entities {
		d, err := b.dependencies(e)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Key(), err)
		}
		slices.Sort(d)
		deps[i] = slices.Compact(d)
	}

	order, err := b.sort(deps)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		control:  control,
		mappings: mappings,
		nodes:    make([]node, len(order)),
		index:    make(map[Key]int, len(order)),
		declared: make(map[string]int, len(b.byGoType)),
	}
	pos := make([]int, len(entities))
	for p, i := range order {
		pos[i] = p
	}
	for p, i := range order {
		e := entities[i]
		n := node{entity: e, schema: b.schemaOf(e)}
		for _, d := range deps[i] {
			n.deps = append(n.deps, pos[d])
		}
		slices.Sort(n.deps)
		g.nodes[p] = n
		g.index[e.Key()] = p
	}
	for goType, i := range b.byGoType {
		g.declared[goType] = pos[i]
	}
	return g, nil
}

func (b *builder) index() error {
	for i, e := range b.entities {
		if e == nil {
			return fmt.Errorf("%w: nil entity at %d", ErrInvalidEntity, i)
		}
		k := e.Key()
		if k.Name == "" {
			return fmt.Errorf("%w: %s entity at %d has no name", ErrInvalidEntity, k.Kind, i)
		}
		if _, ok := b.byKey[k]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateEntity, k)
		}
		b.byKey[k] = i

		var goType string
		switch e := e.(type) {
		case Enum:
			goType = e.GoType
		case Type:
			goType = e.GoType
		default:
			continue
		}
		if goType == "" {
			return fmt.Errorf("%w: %s has no Go type", ErrInvalidEntity, k)
		}
		if j, ok := b.byGoType[goType]; ok {
			return fmt.Errorf("%w: Go type %s declared by %s and %s",
				ErrDuplicateEntity, goType, b.entities[j].Key(), k)
		}
		b.byGoType[goType] = i
	}
	return nil
}

func (b *builder) schemaOf(e Entity) string {
	var s string
	switch e := e.(type) {
	case Enum:
		s = e.Schema
	case Type:
		s = e.Schema
	case Function:
		s = e.Schema
	case Ord:
		return b.typeSchema(e.GoType)
	case Hash:
		return b.typeSchema(e.GoType)
	default:
		return ""
	}
	if s == "" {
		return b.control.Schema
	}
	return s
}

// typeSchema is the schema of a declared type, or the control's schema for
// a mapped one.
func (b *builder) typeSchema(goType string) string {
	if i, ok := b.byGoType[goType]; ok {
		return b.schemaOf(b.entities[i])
	}
	return b.control.Schema
}

func (b *builder) dependencies(e Entity) ([]int, error) {
	var deps []int
	add := func(i int, err error) error {
		if err != nil {
			return err
		}
		if i >= 0 {
			deps = append(deps, i)
		}
		return nil
	}

	switch e := e.(type) {
	case Schema:
	case Enum:
		if len(e.Variants) == 0 {
			return nil, fmt.Errorf("%w: enum has no variants", ErrInvalidEntity)
		}
		if err := add(b.schemaRef(b.schemaOf(e))); err != nil {
			return nil, err
		}
	case Type:
		if len(e.Fields) == 0 {
			return nil, fmt.Errorf("%w: type has no fields", ErrInvalidEntity)
		}
		if err := add(b.schemaRef(b.schemaOf(e))); err != nil {
			return nil, err
		}
		for _, f := range e.Fields {
			if err := add(b.typeRef(f.GoType)); err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
		}
	case Function:
		if err := add(b.schemaRef(b.schemaOf(e))); err != nil {
			return nil, err
		}
		for _, a := range e.Args {
			if err := add(b.typeRef(a.GoType)); err != nil {
				return nil, fmt.Errorf("argument %s: %w", a.Name, err)
			}
		}
		switch e.Returns.Kind {
		case ReturnsOne, ReturnsSetOf:
			if err := add(b.typeRef(e.Returns.GoType)); err != nil {
				return nil, fmt.Errorf("result: %w", err)
			}
		case ReturnsTable:
			if len(e.Returns.Columns) == 0 {
				return nil, fmt.Errorf("%w: table result has no columns", ErrInvalidEntity)
			}
			for _, c := range e.Returns.Columns {
				if err := add(b.typeRef(c.GoType)); err != nil {
					return nil, fmt.Errorf("column %s: %w", c.Name, err)
				}
			}
		case ReturnsVoid:
		default:
			return nil, fmt.Errorf("%w: return kind %d", ErrInvalidEntity, e.Returns.Kind)
		}
		for _, k := range e.Requires {
			if err := add(b.keyRef(k)); err != nil {
				return nil, err
			}
		}
	case Ord:
		if err := add(b.typeRef(e.GoType)); err != nil {
			return nil, err
		}
		for _, fn := range []string{e.Lt, e.Le, e.Eq, e.Ge, e.Gt, e.Cmp} {
			if err := add(b.keyRef(Key{KindFunction, fn})); err != nil {
				return nil, err
			}
		}
	case Hash:
		if err := add(b.typeRef(e.GoType)); err != nil {
			return nil, err
		}
		for _, fn := range []string{e.Eq, e.Hash} {
			if err := add(b.keyRef(Key{KindFunction, fn})); err != nil {
				return nil, err
			}
		}
	case CustomSQL:
		for _, k := range e.Requires {
			if err := add(b.keyRef(k)); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%w: unsupported entity %T", ErrInvalidEntity, e)
	}
	return deps, nil
}

func (b *builder) schemaRef(name string) (int, error) {
	if i, ok := b.byKey[Key{KindSchema, name}]; ok {
		return i, nil
	}
	switch name {
	case "", "public", "pg_catalog", b.control.Schema:
		return -1, nil
	}
	return -1, fmt.Errorf("%w: schema %s", ErrUnknownReference, name)
}

func (b *builder) typeRef(goType string) (int, error) {
	if goType == "" {
		return -1, fmt.Errorf("%w: missing Go type", ErrInvalidEntity)
	}
	if i, ok := b.byGoType[goType]; ok {
		return i, nil
	}
	if _, ok := b.mappings[goType]; ok {
		return -1, nil
	}
	return -1, fmt.Errorf("%w: Go type %s", ErrUnknownReference, goType)
}

func (b *builder) keyRef(k Key) (int, error) {
	if i, ok := b.byKey[k]; ok {
		return i, nil
	}
	return -1, fmt.Errorf("%w: %s", ErrUnknownReference, k)
}

func (b *builder) less(i, j int) int {
	ki, kj := b.entities[i].Key(), b.entities[j].Key()
	if ki.Kind != kj.Kind {
		return int(ki.Kind) - int(kj.Kind)
	}
	return strings.Compare(ki.Name, kj.Name)
}

// sort orders entity indexes so that dependencies come first, picking the
// least ready entity at each step.
func (b *builder) sort(deps [][]int) ([]int, error) {
	pending := make([]int, len(deps))
	dependents := make([][]int, len(deps))
	for i, d := range deps {
		pending[i] = len(d)
		for _, j := range d {
			dependents[j] = append(dependents[j], i)
		}
	}

	var ready []int
	for i, n := range pending {
		if n == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, len(deps))
	for len(ready) > 0 {
		slices.SortFunc(ready, b.less)
		i := ready[0]
		ready = ready[1:]
		order = append(order, i)
		for _, j := range dependents[i] {
			pending[j]--
			if pending[j] == 0 {
				ready = append(ready, j)
			}
		}
	}

	if len(order) < len(deps) {
		var stuck []string
		for i, n := range pending {
			if n > 0 {
				stuck = append(stuck, b.entities[i].Key().String())
			}
		}
		slices.Sort(stuck)
		return nil, fmt.Errorf("%w among %s", ErrCycle, strings.Join(stuck, ", "))
	}
	return order, nil
}

// Control returns the extension the graph was built for.
func (g *Graph) Control() Control { return g.control }

// Len returns the number of entities.
func (g *Graph) Len() int { return len(g.nodes) }

// Entities returns the entities in definition order.
func (g *Graph) Entities() []Entity {
	out := make([]Entity, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.entity
	}
	return out
}

// Count returns the number of entities of kind k.
func (g *Graph) Count(k Kind) int {
	n := 0
	for _, nd := range g.nodes {
		if nd.entity.Key().Kind == k {
			n++
		}
	}
	return n
}

// Dependencies returns the entities k directly depends on, in definition
// order.
func (g *Graph) Dependencies(k Key) ([]Key, bool) {
	p, ok := g.index[k]
	if !ok {
		return nil, false
	}
	out := make([]Key, 0, len(g.nodes[p].deps))
	for _, d := range g.nodes[p].deps {
		out = append(out, g.nodes[d].entity.Key())
	}
	return out, true
}

// sqlType is the SQL name of a Go type: the qualified name of its Enum or
// Type entity, or its mapping.
func (g *Graph) sqlType(goType string) string {
	if p, ok := g.declared[goType]; ok {
		n := g.nodes[p]
		return qualified(n.schema, n.entity.Key().Name)
	}
	return g.mappings[goType]
}
