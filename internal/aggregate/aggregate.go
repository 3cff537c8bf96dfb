// Package aggregate folds per-file signals into repository-wide statistics.
package aggregate

import (
	"github.com/phobologic/ffiscan/internal/discover"
	"github.com/phobologic/ffiscan/internal/model"
	"github.com/phobologic/ffiscan/internal/parse"
	"github.com/phobologic/ffiscan/internal/ranking"
	"github.com/phobologic/ffiscan/internal/usage"
)

// Aggregator accumulates one run's statistics. Every operation it performs
// is a sum or a maximum, so the order files are added in does not matter.
type Aggregator struct {
	stats model.RepoStats

	files          int
	depthSum       int
	parseFailures  int
	decodeFailures int
	usage          map[string]int
	hotspots       *ranking.Keeper
}

// New returns an empty Aggregator. topN > 0 keeps that many hotspot files.
func New(topN int) *Aggregator {
	u := make(map[string]int)
	for _, role := range usage.Roles() {
		u[role] = 0
	}
	return &Aggregator{
		usage:    u,
		hotspots: ranking.NewKeeper(topN),
	}
}

// Add folds one file into the totals.
func (a *Aggregator) Add(entry discover.FileEntry, sf *parse.SourceFile, sig model.FileSignals) {
	a.stats.TotalLines += sf.Lines
	a.stats.ExternC += sig.ExternC
	a.stats.LinkAttr += sig.LinkAttr
	a.stats.NoMangle += sig.NoMangle
	a.stats.UnsafeBlocks += sig.UnsafeBlocks
	a.stats.UnsafeFns += sig.UnsafeFns
	if sig.Flagged {
		a.stats.FFIFiles++
	}
	if entry.Depth > a.stats.MaxDepth {
		a.stats.MaxDepth = entry.Depth
	}

	a.files++
	a.depthSum += entry.Depth
	if sf.DecodeErr != nil {
		a.decodeFailures++
	}
	if !sf.Parsed() {
		a.parseFailures++
	}
	a.usage[usage.Classify(entry.Path)]++
	a.hotspots.Offer(entry.Path, sig)
}

// Stats returns the aggregate with its classification filled in.
func (a *Aggregator) Stats() model.RepoStats {
	s := a.stats
	s.Classification = model.Classify(s)
	return s
}

// Extras returns the derived figures for extended reports.
func (a *Aggregator) Extras() model.Extras {
	e := model.Extras{
		Files:          a.files,
		ParseFailures:  a.parseFailures,
		DecodeFailures: a.decodeFailures,
		Usage:          make(map[string]int, len(a.usage)),
		Hotspots:       a.hotspots.Hotspots(),
	}
	for k, v := range a.usage {
		e.Usage[k] = v
	}
	if a.files > 0 {
		e.AverageFileDepth = float64(a.depthSum) / float64(a.files)
	}
	if a.stats.TotalLines > 0 {
		ffi := a.stats.ExternC + a.stats.LinkAttr + a.stats.NoMangle
		e.FFIDensityPerKLOC = float64(ffi) / float64(a.stats.TotalLines) * 1000
	}
	return e
}
