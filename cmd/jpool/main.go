// jpool - decode, validate and query JSON files
//
// Usage:
//
//	jpool [flags] <file|-> [query]
//
// The file is memory mapped and decoded. With no flags the command only
// reports whether the document is valid. A query such as
// `store.books[0].title` prints the selected value.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/tidwall/pretty"

	"github.com/dhawalhost/jpool"
)

type config struct {
	path      string
	query     string
	dump      bool
	pretty    bool
	indent    string
	sortKeys  bool
	color     bool
	stats     bool
	benchmark bool
	maxDepth  int
	logger    *slog.Logger
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("jpool", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var cfg config
	fs.BoolVar(&cfg.dump, "dump", false, "print the document as compact JSON")
	fs.BoolVar(&cfg.pretty, "pretty", false, "print the document as indented JSON")
	fs.StringVar(&cfg.indent, "indent", "  ", "indentation used by -pretty")
	fs.BoolVar(&cfg.sortKeys, "sort", false, "sort object keys in output")
	fs.BoolVar(&cfg.color, "color", false, "colorize output")
	fs.BoolVar(&cfg.stats, "stats", false, "print pool metrics as JSON")
	fs.BoolVar(&cfg.benchmark, "benchmark", false, "time the decode")
	fs.IntVar(&cfg.maxDepth, "max-depth", jpool.DefaultMaxDepth, "maximum nesting depth")
	profile := fs.String("profile", "wide", "node profile: narrow, medium or wide")
	ext := fs.Bool("ext", false, "use extended text offsets for large inputs")
	verbose := fs.Bool("v", false, "log pool activity to stderr")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: jpool [flags] <file|-> [query]")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "file   - path to a JSON file, or '-' to read stdin")
		fmt.Fprintln(stderr, "query  - path of the value to print, e.g. store.books[0].title")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return 2
	}
	cfg.path = fs.Arg(0)
	cfg.query = fs.Arg(1)

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	cfg.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var err error
	switch {
	case *profile == "narrow" && *ext:
		err = process[uint8, uint16](cfg, stdin, stdout)
	case *profile == "narrow":
		err = process[uint8, uint8](cfg, stdin, stdout)
	case *profile == "medium" && *ext:
		err = process[uint16, uint32](cfg, stdin, stdout)
	case *profile == "medium":
		err = process[uint16, uint16](cfg, stdin, stdout)
	case *profile == "wide" && *ext:
		err = process[uint32, uint64](cfg, stdin, stdout)
	case *profile == "wide":
		err = process[uint32, uint32](cfg, stdin, stdout)
	default:
		fmt.Fprintf(stderr, "jpool: unknown profile %q\n", *profile)
		return 2
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func readInput(path string, stdin io.Reader) ([]byte, func() error, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		return data, func() error { return nil }, err
	}
	m, err := jpool.MapFile(path)
	if err != nil {
		return nil, nil, err
	}
	return m.Bytes(), m.Close, nil
}

func process[I jpool.Index, O jpool.Offset](cfg config, stdin io.Reader, stdout io.Writer) error {
	data, closeInput, err := readInput(cfg.path, stdin)
	if err != nil {
		return err
	}
	defer closeInput()

	p, err := jpool.NewPool[I, O](jpool.CapacityHint(len(data)),
		jpool.WithMaxDepth(cfg.maxDepth),
		jpool.WithLogger(cfg.logger),
	)
	if err != nil {
		return err
	}
	defer p.Free()

	start := time.Now()
	if err := p.Decode(data); err != nil {
		return err
	}
	elapsed := time.Since(start)

	perNode := 0
	if p.Used() > 0 {
		perNode = len(data) / p.Used()
	}
	fmt.Fprintf(stdout, "JSON valid [file:%s size:%d nodes:%d bytes/node:%d]\n",
		cfg.path, len(data), p.Used(), perNode)

	root, _ := p.Root()
	switch {
	case cfg.benchmark:
		fmt.Fprintf(stdout, "Elapsed time seconds:%f\n", elapsed.Seconds())
	case cfg.query != "":
		i, err := p.Query(root, cfg.query)
		if err != nil {
			return err
		}
		if err := emit(p, i, cfg, stdout); err != nil {
			return err
		}
	case cfg.dump || cfg.pretty:
		if err := emit(p, root, cfg, stdout); err != nil {
			return err
		}
	}

	if cfg.stats {
		out, err := gojson.MarshalIndent(p.Metrics(), "", "  ")
		if err != nil {
			return err
		}
		out = append(out, '\n')
		if _, err := stdout.Write(out); err != nil {
			return err
		}
	}
	return nil
}

func emit[I jpool.Index, O jpool.Offset](p *jpool.Pool[I, O], i I, cfg config, w io.Writer) error {
	opts := &jpool.FormatOptions{SortKeys: cfg.sortKeys}
	if cfg.pretty {
		opts.Indent = cfg.indent
	}
	out := p.AppendJSON(nil, i, opts)
	if cfg.color {
		out = pretty.Color(out, nil)
	}
	out = append(out, '\n')
	_, err := w.Write(out)
	return err
}
