// Command pgext-schema generates the SQL definition script of an extension.
//
// It builds the extension package as a Go plugin, finds the entity
// declarations exported by the plugin, loads them and writes the ordered
// definitions as SQL, and optionally as a Graphviz graph.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"plugin"
	"syscall"

	"github.com/fatih/color"
	"github.com/jessevdk/go-flags"

	"github.com/hugr-lab/pgext-go/sqlgraph"
)

type options struct {
	Pkg     string `short:"p" long:"pkg" env:"PGEXT_PKG" description:"extension package to build" default:"."`
	Lib     string `short:"l" long:"lib" env:"PGEXT_LIB" description:"prebuilt extension plugin, skips the build"`
	Out     string `short:"o" long:"out" description:"SQL output file (default: sql/<extension>-<version>.sql)"`
	Dot     string `short:"d" long:"dot" description:"Graphviz output file"`
	Test    bool   `long:"test" description:"build with the pgext_test tag"`
	Release bool   `long:"release" description:"build without debug information"`
	Dbg     bool   `long:"dbg" description:"debug mode"`
}

var revision = "latest"

func main() {
	fmt.Printf("pgext-schema %s\n", revision)

	var opts options
	p := flags.NewParser(&opts, flags.PrintErrors|flags.PassDoubleDash|flags.HelpFlag)
	if _, err := p.Parse(); err != nil {
		os.Exit(1)
	}
	setupLog(opts.Dbg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g := generator{out: color.Output, open: openPlugin}
	if err := g.run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgHiRed, color.Bold).Sprint("error:"), err)
		cancel()
		os.Exit(1)
	}
}

func setupLog(dbg bool) {
	level := slog.LevelWarn
	if dbg {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// symbolTable is the part of a loaded plugin the generator needs.
type symbolTable interface {
	Lookup(name string) (plugin.Symbol, error)
}

func openPlugin(path string) (symbolTable, error) {
	return plugin.Open(path)
}

type generator struct {
	out  io.Writer
	open func(path string) (symbolTable, error)
}

func (g generator) status(verb, msg string) {
	fmt.Fprintf(g.out, "%s %s\n", color.New(color.FgGreen, color.Bold).Sprintf("%12s", verb), msg)
}

func (g generator) run(ctx context.Context, opts options) error {
	lib := opts.Lib
	if lib == "" {
		dir, err := os.MkdirTemp("", "pgext-schema-")
		if err != nil {
			return fmt.Errorf("can't create build directory: %w", err)
		}
		defer os.RemoveAll(dir)

		lib = filepath.Join(dir, "extension.so")
		g.status("Building", opts.Pkg)
		if err := buildPlugin(ctx, opts, lib); err != nil {
			return err
		}
	}

	symbols, err := scanSymbols(lib)
	if err != nil {
		return fmt.Errorf("can't read symbols of %s: %w", lib, err)
	}
	slog.Debug("scanned plugin", "lib", lib, "symbols", len(symbols))
	g.status("Discovered", summarize(countKinds(symbols)))

	table, err := g.open(lib)
	if err != nil {
		return fmt.Errorf("can't load %s: %w", lib, err)
	}
	control, mappings, entities, err := loadEntities(table, symbols)
	if err != nil {
		return err
	}

	graph, err := sqlgraph.Build(control, mappings, entities)
	if err != nil {
		return fmt.Errorf("can't build entity graph: %w", err)
	}

	out := sqlPath(opts.Out, control)
	g.status("Writing", "SQL entities to "+out)
	if err := writeFile(out, graph.SQL()); err != nil {
		return err
	}
	if opts.Dot != "" {
		g.status("Writing", "SQL entity graph to "+opts.Dot)
		if err := writeFile(opts.Dot, graph.DOT()); err != nil {
			return err
		}
	}
	return nil
}

func buildArgs(opts options, out string) []string {
	args := []string{"build", "-buildmode=plugin", "-o", out}
	if opts.Test {
		args = append(args, "-tags", "pgext_test")
	}
	if opts.Release {
		args = append(args, "-trimpath")
	} else {
		args = append(args, "-gcflags=all=-N -l")
	}
	pkg := opts.Pkg
	if pkg == "" {
		pkg = "."
	}
	return append(args, pkg)
}

func buildPlugin(ctx context.Context, opts options, out string) error {
	args := buildArgs(opts, out)
	slog.Debug("building plugin", "args", args)
	cmd := exec.CommandContext(ctx, "go", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("go build failed: %w\n%s", err, output)
	}
	return nil
}

// sqlPath is the requested output path or sql/<extension>-<version>.sql.
func sqlPath(out string, control sqlgraph.Control) string {
	if out != "" {
		return out
	}
	return filepath.Join("sql", fmt.Sprintf("%s-%s.sql", control.Name, control.Version))
}

func writeFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("can't create directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("can't write %s: %w", path, err)
	}
	return nil
}
