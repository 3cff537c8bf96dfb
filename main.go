// ffiscan audits a Rust source tree for foreign-function interop and unsafe
// code and classifies the repository as FFI-related or pure Rust.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/ffiscan/internal/audit"
	"github.com/phobologic/ffiscan/internal/discover"
	"github.com/phobologic/ffiscan/internal/report"
)

var version = "dev"

const usageLine = "Usage: ffiscan [flags] <path>"

// errUsage is returned after the usage line has already been printed.
var errUsage = errors.New("missing path argument")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

type options struct {
	format      string
	extended    bool
	top         int
	exclude     []string
	gitignore   bool
	progress    bool
	color       bool
	verbose     bool
	showVersion bool
}

func run(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "ffiscan [flags] <path>",
		Short: "Audit a Rust source tree for FFI and unsafe code",
		Long: `ffiscan walks a directory tree, parses every .rs file with tree-sitter and
counts extern "C" blocks, #[link] and #[no_mangle] attributes, unsafe functions
and "unsafe {" occurrences. The repository is classified as FFI-related when
any extern "C" block, #[link] or #[no_mangle] attribute is found.

Unreadable files, files that are not valid UTF-8 and files that fail to parse
are never reported as errors: their lines are still counted where readable.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd.Context(), args, opts, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", "text", "output format: "+strings.Join(report.Formats, ", "))
	f.BoolVar(&opts.extended, "extended", false, "add derived figures (files, failures, density, usage roles) to structured output")
	f.IntVar(&opts.top, "top", 0, "with --extended, list the N files carrying the most signals")
	f.StringArrayVar(&opts.exclude, "exclude", nil, "glob of relative paths to skip (repeatable)")
	f.BoolVar(&opts.gitignore, "gitignore", false, "skip paths matched by the root .gitignore")
	f.BoolVar(&opts.progress, "progress", false, "show a progress bar on stderr")
	f.BoolVar(&opts.color, "color", false, "style the text classification line")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log per-file diagnostics to stderr")
	f.BoolVarP(&opts.showVersion, "version", "V", false, "show version and exit")

	return cmd
}

func execute(ctx context.Context, args []string, opts options, stdout, stderr io.Writer) error {
	if opts.showVersion {
		_, _ = fmt.Fprintf(stdout, "ffiscan %s\n", version)
		return nil
	}

	if len(args) != 1 {
		_, _ = fmt.Fprintln(stderr, usageLine)
		return errUsage
	}

	renderer, err := report.ForFormat(opts.format, report.Options{
		Extended: opts.extended,
		Color:    opts.color,
	})
	if err != nil {
		return err
	}

	auditOpts := audit.Options{
		Discover: discover.Options{
			Exclude:          opts.exclude,
			RespectGitignore: opts.gitignore,
		},
		TopN:   opts.top,
		Logger: newLogger(stderr, opts.verbose),
	}
	if opts.progress {
		auditOpts.Progress = newBarProgress(stderr)
	}

	rep, err := audit.Run(ctx, args[0], auditOpts)
	if err != nil {
		return err
	}

	return renderer.Render(stdout, rep)
}

func newLogger(stderr io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
