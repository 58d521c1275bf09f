package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/raymyers/subcc/pkg/cabs"
	"github.com/raymyers/subcc/pkg/config"
	"github.com/raymyers/subcc/pkg/diag"
	"github.com/raymyers/subcc/pkg/parser"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

var version = "0.1.0"

var (
	// ErrParse is returned when at least one input failed to parse
	ErrParse = errors.New("parsing failed")
	// ErrWarningsAsErrors is returned under --werror when warnings were reported
	ErrWarningsAsErrors = errors.New("warnings treated as errors")
)

// options holds the raw command line flags
type options struct {
	dParse   bool
	dSymbols bool
	dTypes   bool
	werror   bool
	maxDepth int
	config   string
	color    string
	verbose  bool
	watch    bool
}

// settings is the merged result of the config file and the flags
type settings struct {
	parser   parser.Options
	werror   bool
	color    bool
	dParse   bool
	dSymbols bool
	dTypes   bool
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	// Normalize CompCert-style single-dash flags to double-dash for pflag compatibility
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

// singleDashFlags lists the flags that also accept the single-dash spelling
var singleDashFlags = []string{"dparse", "dsymbols", "dtypes", "werror"}

// normalizeFlags converts single-dash flags like -dparse to --dparse
func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		for _, flagName := range singleDashFlags {
			if arg == "-"+flagName {
				result[i] = "--" + flagName
				break
			}
		}
		if result[i] == "" {
			result[i] = arg
		}
	}
	return result
}

func addFlags(fs *pflag.FlagSet, o *options) {
	fs.BoolVar(&o.dParse, "dparse", false, "Dump the typed AST after parsing")
	fs.BoolVar(&o.dSymbols, "dsymbols", false, "Dump the global variable table and the literal pool")
	fs.BoolVar(&o.dTypes, "dtypes", false, "Annotate dumped expressions with their types")
	fs.BoolVar(&o.werror, "werror", false, "Treat warnings as errors")
	fs.IntVar(&o.maxDepth, "max-depth", parser.DefaultMaxDepth, "Maximum statement and expression nesting")
	fs.StringVar(&o.config, "config", "", "Config file (default "+config.DefaultFile+" if present)")
	fs.StringVar(&o.color, "color", config.ColorAuto, "Colorize diagnostics: auto, always or never")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "Log parser decisions to stderr")
	fs.BoolVar(&o.watch, "watch", false, "Parse again whenever an input file changes")
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	var opts options
	rootCmd := &cobra.Command{
		Use:   "subcc [flags] file...",
		Short: "subcc parses a C subset into a typed AST",
		Long: `subcc is the front end of a small C compiler. It parses a C subset,
resolves names and types, and reports the typed AST, the global
variable table and the string literal pool of each input.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			s, err := newSettings(cmd.Flags(), &opts, errOut)
			if err != nil {
				fmt.Fprintf(errOut, "subcc: %v\n", err)
				return err
			}
			if opts.watch {
				return watchFiles(cmd.Context(), args, s, out, errOut)
			}
			return compileFiles(cmd.Context(), args, s, out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	addFlags(rootCmd.Flags(), &opts)
	rootCmd.AddCommand(newVersionCmd(out))
	return rootCmd
}

func newVersionCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of subcc",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := semver.NewVersion(version)
			if err != nil {
				return fmt.Errorf("invalid build version %q: %w", version, err)
			}
			fmt.Fprintf(out, "subcc %s\n", v)
			return nil
		},
	}
}

// newSettings loads the config file and lets explicitly set flags
// override it
func newSettings(fs *pflag.FlagSet, o *options, errOut io.Writer) (*settings, error) {
	cfg, err := config.Load(o.config)
	if err != nil {
		return nil, err
	}
	if fs.Changed("max-depth") {
		cfg.MaxDepth = o.maxDepth
	}
	if fs.Changed("werror") {
		cfg.Werror = o.werror
	}
	if fs.Changed("color") {
		cfg.Color = o.color
	}
	if err := cfg.Validate(version); err != nil {
		return nil, err
	}

	popts := cfg.ParserOptions()
	if o.verbose {
		popts.Logger = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return &settings{
		parser:   popts,
		werror:   cfg.Werror,
		color:    useColor(cfg.Color, errOut),
		dParse:   o.dParse,
		dSymbols: o.dSymbols,
		dTypes:   o.dTypes,
	}, nil
}

type result struct {
	file string
	prog *cabs.Program
	err  error
}

// parseFiles parses every file concurrently. Each parse owns its parser,
// so results only depend on the file contents.
func parseFiles(ctx context.Context, files []string, opts parser.Options) ([]result, error) {
	results := make([]result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = parseFile(file, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func parseFile(filename string, opts parser.Options) result {
	content, err := os.ReadFile(filename)
	if err != nil {
		return result{file: filename, err: err}
	}
	if opts.Logger != nil {
		opts.Logger = opts.Logger.With("file", filename)
	}
	prog, err := parser.ParseString(string(content), opts)
	return result{file: filename, prog: prog, err: err}
}

// compileFiles parses the inputs and reports them in command line order
func compileFiles(ctx context.Context, files []string, s *settings, out, errOut io.Writer) error {
	results, err := parseFiles(ctx, files, s.parser)
	if err != nil {
		return err
	}

	failed, warnings := 0, 0
	for _, r := range results {
		if r.err != nil {
			failed++
			if _, ok := diag.KindOf(r.err); !ok {
				fmt.Fprintf(errOut, "subcc: error reading %s: %v\n", r.file, r.err)
				continue
			}
			fmt.Fprintln(errOut, formatDiagnostic(r.file, diag.FromError(r.err), s.color))
			continue
		}
		for _, w := range r.prog.Warnings {
			fmt.Fprintln(errOut, formatDiagnostic(r.file, w, s.color))
		}
		warnings += len(r.prog.Warnings)

		if s.dSymbols {
			cabs.NewPrinter(out).PrintSymbols(r.prog)
		}
		if s.dParse {
			if err := doParse(r, s.dTypes, out, errOut); err != nil {
				return err
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrParse, failed, len(files))
	}
	if s.werror && warnings > 0 {
		fmt.Fprintf(errOut, "subcc: %d warnings treated as errors\n", warnings)
		return ErrWarningsAsErrors
	}
	return nil
}

// doParse writes the AST to a .parsed.c file (matching CompCert behavior)
// and to out
func doParse(r result, types bool, out, errOut io.Writer) error {
	outputFilename := parsedOutputFilename(r.file)
	outFile, err := os.Create(outputFilename)
	if err != nil {
		fmt.Fprintf(errOut, "subcc: error creating %s: %v\n", outputFilename, err)
		return err
	}
	defer outFile.Close()

	for _, w := range []io.Writer{outFile, out} {
		printer := cabs.NewPrinter(w)
		printer.Types = types
		printer.PrintProgram(r.prog)
	}
	return nil
}

// parsedOutputFilename returns the output filename for -dparse
// input.c -> input.parsed.c
func parsedOutputFilename(filename string) string {
	ext := ".c"
	if strings.HasSuffix(filename, ext) {
		return filename[:len(filename)-len(ext)] + ".parsed.c"
	}
	return filename + ".parsed.c"
}

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[1;31m"
	ansiYellow = "\x1b[1;33m"
)

// formatDiagnostic renders d as "<file>: <level>: line L, col C: msg"
func formatDiagnostic(file string, d diag.Diagnostic, color bool) string {
	text := d.String()
	if color {
		level := d.Level.String()
		code := ansiYellow
		if d.Level == diag.LevelError {
			code = ansiRed
		}
		text = code + level + ansiReset + strings.TrimPrefix(text, level)
	}
	return file + ": " + text
}

// useColor resolves the color mode for w
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f.Fd())
}
