package main

import (
	"debug/elf"
	"debug/macho"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hugr-lab/pgext-go/sqlgraph"
)

var errNotExtension = errors.New("no " + sqlgraph.MarkerSymbol + " symbol found, is this an extension plugin?")

// scanSymbols lists the entity and marker symbols defined in an ELF or
// Mach-O binary, without package qualifiers, sorted and de-duplicated.
func scanSymbols(path string) ([]string, error) {
	names, err := elfSymbols(path)
	if err != nil {
		var machoErr error
		names, machoErr = machoSymbols(path)
		if machoErr != nil {
			return nil, fmt.Errorf("not an ELF or Mach-O binary: %w", errors.Join(err, machoErr))
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, name := range names {
		name = unqualify(name)
		if name != sqlgraph.MarkerSymbol && !strings.HasPrefix(name, sqlgraph.SymbolPrefix) {
			continue
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out, nil
}

func elfSymbols(path string) ([]string, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	syms, err := f.Symbols()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(syms))
	for _, s := range syms {
		names = append(names, s.Name)
	}
	// Plugins export through the dynamic table as well.
	if dyn, err := f.DynamicSymbols(); err == nil {
		for _, s := range dyn {
			names = append(names, s.Name)
		}
	}
	return names, nil
}

func machoSymbols(path string) ([]string, error) {
	f, err := macho.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if f.Symtab == nil {
		return nil, errors.New("no symbol table")
	}
	names := make([]string, 0, len(f.Symtab.Syms))
	for _, s := range f.Symtab.Syms {
		names = append(names, s.Name)
	}
	return names, nil
}

// unqualify strips the package path and ABI suffix from a Go symbol name.
func unqualify(name string) string {
	name = strings.TrimSuffix(name, ".abi0")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return strings.TrimPrefix(name, "_")
}

func countKinds(symbols []string) map[sqlgraph.Kind]int {
	counts := make(map[sqlgraph.Kind]int)
	for _, s := range symbols {
		if k, ok := sqlgraph.ParseSymbol(s); ok {
			counts[k]++
		}
	}
	return counts
}

func summarize(counts map[sqlgraph.Kind]int) string {
	total := 0
	parts := make([]string, 0, len(sqlgraph.Kinds()))
	for _, k := range sqlgraph.Kinds() {
		total += counts[k]
		parts = append(parts, fmt.Sprintf("%d %s", counts[k], strings.ToLower(k.String())))
	}
	return fmt.Sprintf("%d SQL entities: %s", total, strings.Join(parts, ", "))
}

// loadEntities calls the marker, the optional type mappings and each entity
// symbol. Type mappings from the plugin extend the default ones.
func loadEntities(table symbolTable, symbols []string) (sqlgraph.Control, sqlgraph.TypeMappings, []sqlgraph.Entity, error) {
	var control sqlgraph.Control
	if !slices.Contains(symbols, sqlgraph.MarkerSymbol) {
		return control, nil, nil, errNotExtension
	}
	sym, err := table.Lookup(sqlgraph.MarkerSymbol)
	if err != nil {
		return control, nil, nil, fmt.Errorf("%w: %w", errNotExtension, err)
	}
	marker, ok := sym.(func() sqlgraph.Control)
	if !ok {
		return control, nil, nil, fmt.Errorf("%s has type %T, want func() sqlgraph.Control", sqlgraph.MarkerSymbol, sym)
	}
	control = marker()

	mappings := sqlgraph.DefaultTypeMappings()
	if sym, err := table.Lookup(sqlgraph.TypeMappingsSymbol); err == nil {
		fn, ok := sym.(func() sqlgraph.TypeMappings)
		if !ok {
			return control, nil, nil, fmt.Errorf("%s has type %T, want func() sqlgraph.TypeMappings", sqlgraph.TypeMappingsSymbol, sym)
		}
		mappings = mappings.Merge(fn())
	}

	var entities []sqlgraph.Entity
	for _, name := range symbols {
		if _, ok := sqlgraph.ParseSymbol(name); !ok {
			continue
		}
		sym, err := table.Lookup(name)
		if err != nil {
			return control, nil, nil, fmt.Errorf("can't look up %s: %w", name, err)
		}
		fn, ok := sym.(func() sqlgraph.Entity)
		if !ok {
			return control, nil, nil, fmt.Errorf("%s has type %T, want func() sqlgraph.Entity", name, sym)
		}
		e := fn()
		if e == nil {
			return control, nil, nil, fmt.Errorf("%s returned no entity", name)
		}
		entities = append(entities, e)
	}
	return control, mappings, entities, nil
}
