// choromap renders choropleth maps from a YAML application file.
//
// Usage:
//
//	choromap render -f config.yaml -o out.svg|out.png|out.html
//	choromap serve -f config.yaml
//	choromap preview -f config.yaml [data-file]
//	choromap preview world.topo.json
//	choromap validate -f config.yaml
//
// Exit codes:
//   - 0: success
//   - 1: the command failed (config, topology, render or server error)
//   - 2: usage error
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"choromap/internal/config"
	"choromap/internal/datamap"
	"choromap/internal/geom"
	xlog "choromap/internal/log"
	"choromap/internal/render"
	"choromap/internal/server"
	"choromap/internal/tui"
)

var Version = "dev"

const cacheCleanupInterval = time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  choromap render -f config.yaml -o out.svg|out.png|out.html")
	fmt.Fprintln(w, "  choromap serve -f config.yaml")
	fmt.Fprintln(w, "  choromap preview -f config.yaml [data-file]")
	fmt.Fprintln(w, "  choromap preview topology.json")
	fmt.Fprintln(w, "  choromap validate -f config.yaml")
	fmt.Fprintln(w, "  choromap version")
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "render":
		return runRender(ctx, rest, stdout, stderr)
	case "serve":
		return runServe(ctx, rest, stderr)
	case "preview":
		return runPreview(ctx, rest, stderr)
	case "validate":
		return runValidate(rest, stdout, stderr)
	case "version", "-version", "--version":
		fmt.Fprintln(stdout, Version)
		return 0
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	}
	fmt.Fprintf(stderr, "Error: unknown command %q\n\n", cmd)
	usage(stderr)
	return 2
}

// flags returns a flag set with the shared -f/--file option.
func flags(name string, stderr io.Writer, file *string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(file, "file", "", "path to YAML configuration file")
	fs.StringVar(file, "f", "", "path to YAML configuration file (shorthand)")
	return fs
}

func loadConfig(file string, stderr io.Writer) (*config.File, bool) {
	cfg, err := config.Load(file)
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error in %s:\n", file)
		fmt.Fprintf(stderr, "  %v\n", err)
		return nil, false
	}
	return cfg, true
}

func configureLog(cfg *config.File, out io.Writer) {
	xlog.Configure(xlog.Config{Level: cfg.Log.Level, Console: cfg.Log.Console, Output: out})
}

// buildMap draws the configured map with its overlays.
func buildMap(ctx context.Context, cfg *config.File) (*datamap.Map, error) {
	opts := cfg.Map
	var options []datamap.Option
	if cfg.Topology != "" {
		b, err := geom.LoadBoundaries(ctx, cfg.Topology)
		if err != nil {
			return nil, fmt.Errorf("load topology: %w", err)
		}
		options = append(options, datamap.WithBoundaries(b))
	}
	dm, err := datamap.New(ctx, opts, options...)
	if err != nil {
		return nil, err
	}
	if err := dm.ApplyOverlays(ctx, cfg.Data, cfg.Overlays); err != nil {
		return nil, err
	}
	return dm, nil
}

func runRender(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var file, out string
	var animate bool
	fs := flags("render", stderr, &file)
	fs.StringVar(&out, "o", "-", "output file (.svg, .png or .html); - writes SVG to stdout")
	fs.BoolVar(&animate, "animate", false, "emit pending transitions as SVG animations")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if file == "" {
		fmt.Fprintln(stderr, "Error: --file is required")
		fmt.Fprintln(stderr, "")
		usage(stderr)
		return 2
	}
	format := "svg"
	if out != "-" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
	}
	if format != "svg" && format != "png" && format != "html" {
		fmt.Fprintf(stderr, "Error: unsupported output format %q\n", format)
		return 2
	}

	cfg, ok := loadConfig(file, stderr)
	if !ok {
		return 1
	}
	configureLog(cfg, stderr)
	logger := xlog.WithComponent("cli")

	start := time.Now()
	dm, err := buildMap(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Render error: %v\n", err)
		return 1
	}

	w := stdout
	if out != "-" {
		f, err := os.Create(filepath.Clean(out))
		if err != nil {
			fmt.Fprintf(stderr, "Render error: %v\n", err)
			return 1
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "png":
		err = render.WritePNG(w, dm.Scene(), 0, 0)
	case "html":
		err = render.WriteHTML(w, dm.Scene(), "choromap: "+dm.Options().Scope, dm.LegendHTML())
	default:
		err = render.WriteSVG(w, dm.Scene(), render.SVGOptions{Animate: animate, Titles: true})
	}
	if err != nil {
		fmt.Fprintf(stderr, "Render error: %v\n", err)
		return 1
	}
	logger.Info().
		Str(xlog.FieldPath, out).
		Str(xlog.FieldFormat, format).
		Dur(xlog.FieldDuration, time.Since(start)).
		Msg("map rendered")
	return 0
}

func runServe(ctx context.Context, args []string, stderr io.Writer) int {
	var file string
	fs := flags("serve", stderr, &file)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	cfg := ptr(config.DefaultFile())
	if file != "" {
		var ok bool
		if cfg, ok = loadConfig(file, stderr); !ok {
			return 1
		}
	} else {
		config.ApplyEnv(cfg, os.Getenv)
	}
	configureLog(cfg, stderr)

	cache := server.NewMemoryCache(cacheCleanupInterval, cfg.Server.CacheEntries)
	defer cache.Close()
	srv := server.New(*cfg, server.NewStore(server.Sources(*cfg)), cache)
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger := xlog.WithComponent("cli")
		logger.Error().Err(err).Msg("server stopped")
		return 1
	}
	return 0
}

// runPreview opens the terminal previewer. Without -f the positional
// argument is a topology drawn with default options; with -f it is a data
// file applied on launch.
func runPreview(ctx context.Context, args []string, stderr io.Writer) int {
	var file string
	fs := flags("preview", stderr, &file)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	path := fs.Arg(0)
	if file == "" && path == "" {
		fmt.Fprintln(stderr, "Error: --file or a topology path is required")
		fmt.Fprintln(stderr, "")
		usage(stderr)
		return 2
	}

	cfg := ptr(config.DefaultFile())
	if file != "" {
		var ok bool
		if cfg, ok = loadConfig(file, stderr); !ok {
			return 1
		}
	} else {
		cfg.Topology = path
		path = ""
	}
	// the terminal belongs to the previewer
	configureLog(cfg, io.Discard)

	dm, err := buildMap(ctx, cfg)
	if errors.Is(err, datamap.ErrUnknownScope) && file == "" {
		dm, err = firstObject(ctx, cfg)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Preview error: %v\n", err)
		return 1
	}

	m := tui.New(dm)
	if path != "" {
		m = tui.NewWithPath(dm, path)
	}
	if err := tui.Run(m); err != nil {
		fmt.Fprintf(stderr, "Preview error: %v\n", err)
		return 1
	}
	return 0
}

// firstObject retries a bare topology against its first object when it has
// no object named after the default scope.
func firstObject(ctx context.Context, cfg *config.File) (*datamap.Map, error) {
	b, err := geom.LoadBoundaries(ctx, cfg.Topology)
	if err != nil {
		return nil, err
	}
	t, ok := b.(*geom.Topology)
	if !ok || len(t.ObjectNames()) == 0 {
		return nil, datamap.ErrUnknownScope
	}
	opts := cfg.Map
	opts.Scope = t.ObjectNames()[0]
	return datamap.New(ctx, opts, datamap.WithBoundaries(b))
}

func runValidate(args []string, stdout, stderr io.Writer) int {
	var file string
	fs := flags("validate", stderr, &file)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if file == "" {
		fmt.Fprintln(stderr, "Error: --file is required")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Usage:")
		fmt.Fprintln(stderr, "  choromap validate -f config.yaml")
		return 2
	}
	if _, ok := loadConfig(file, stderr); !ok {
		return 1
	}
	fmt.Fprintf(stdout, "✓ %s is valid\n", file)
	return 0
}

func ptr[T any](v T) *T { return &v }
