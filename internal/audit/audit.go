// Package audit runs the enumerate, parse, scan and aggregate pipeline over
// one directory tree.
package audit

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/phobologic/ffiscan/internal/aggregate"
	"github.com/phobologic/ffiscan/internal/discover"
	"github.com/phobologic/ffiscan/internal/lang"
	"github.com/phobologic/ffiscan/internal/model"
	"github.com/phobologic/ffiscan/internal/parse"
	"github.com/phobologic/ffiscan/internal/scan"
)

// Progress receives per-file progress. All methods are called from the
// goroutine running the audit.
type Progress interface {
	Start(total int)
	Advance(path string)
	Finish()
}

// Options configures a run. The zero value uses the default scanner, no
// hotspots, no progress and a discarding logger.
type Options struct {
	Discover discover.Options
	Scanner  *scan.Scanner
	TopN     int
	Logger   *slog.Logger
	Progress Progress
}

// Run audits root. Files are processed one at a time; each file's content
// is released before the next is read. Unreadable, undecodable and
// unparseable files never fail the run. The returned error is limited to
// invalid options.
func Run(ctx context.Context, root string, opts Options) (model.Report, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	scanner := opts.Scanner
	if scanner == nil {
		scanner = scan.Default()
	}

	files, err := discover.Files(root, opts.Discover)
	if err != nil {
		return model.Report{}, fmt.Errorf("discovering files: %w", err)
	}
	log.Debug("discovered files", "root", root, "count", len(files), "detectors", scanner.Detectors())

	if opts.Progress != nil {
		opts.Progress.Start(len(files))
		defer opts.Progress.Finish()
	}

	parser := lang.Languages[lang.Rust].NewParser()
	defer parser.Close()

	agg := aggregate.New(opts.TopN)
	for _, f := range files {
		sf := parse.File(ctx, parser, f.AbsPath)
		if sf.DecodeErr != nil {
			log.Debug("content treated as empty", "path", f.Path, "error", sf.DecodeErr)
		}
		if sf.ParseErr != nil {
			log.Debug("skipping construct extraction", "path", f.Path, "error", sf.ParseErr)
		}

		logInteropItems(ctx, log, f.Path, sf.Items)

		sig := scanner.ScanFile(sf)
		agg.Add(f, sf, sig)

		if opts.Progress != nil {
			opts.Progress.Advance(f.Path)
		}
	}

	stats := agg.Stats()
	log.Debug("audit complete",
		"files", len(files),
		"total_lines", stats.TotalLines,
		"classification", stats.Classification)

	return model.Report{
		Root:   root,
		Stats:  stats,
		Extras: agg.Extras(),
	}, nil
}

// logInteropItems records where each foreign block and #[link] or
// #[no_mangle] attribute was found.
func logInteropItems(ctx context.Context, log *slog.Logger, path string, items []parse.Item) {
	if !log.Enabled(ctx, slog.LevelDebug) {
		return
	}
	for _, item := range items {
		if fb, ok := item.(*parse.ForeignBlock); ok {
			log.Debug("foreign block", "path", path, "line", fb.Line(), "abi", fb.ABI, "unsafe", fb.Unsafe)
		}
		for _, attr := range item.Attributes() {
			if !attr.Is("link") && !attr.Is("no_mangle") {
				continue
			}
			log.Debug("interop attribute",
				"path", path,
				"line", attr.Line,
				"attribute", attr.Path,
				"args", attr.Args,
				"item", item.Kind(),
				"name", itemName(item))
		}
	}
}

func itemName(item parse.Item) string {
	switch it := item.(type) {
	case *parse.Function:
		return it.Name
	case *parse.Module:
		return it.Name
	}
	return ""
}
