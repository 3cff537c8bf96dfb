// Package ranking selects the files carrying the most interop and unsafety
// signals.
package ranking

import (
	"sort"

	"github.com/phobologic/ffiscan/internal/model"
)

// FileScore pairs a file path with its signals.
type FileScore struct {
	Path    string
	Signals model.FileSignals
}

// SelectHotspots returns up to maxFiles files with a non-zero score, ordered
// by score descending and path ascending. maxFiles <= 0 selects nothing.
func SelectHotspots(files []FileScore, maxFiles int) []model.Hotspot {
	if maxFiles <= 0 {
		return nil
	}

	var candidates []FileScore
	for _, f := range files {
		if f.Signals.Score() > 0 {
			candidates = append(candidates, f)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := candidates[i].Signals.Score(), candidates[j].Signals.Score()
		if si != sj {
			return si > sj
		}
		return candidates[i].Path < candidates[j].Path
	})

	if len(candidates) > maxFiles {
		candidates = candidates[:maxFiles]
	}

	hotspots := make([]model.Hotspot, len(candidates))
	for i, c := range candidates {
		s := c.Signals
		hotspots[i] = model.Hotspot{
			Path:         c.Path,
			Score:        s.Score(),
			ExternC:      s.ExternC,
			LinkAttr:     s.LinkAttr,
			NoMangle:     s.NoMangle,
			UnsafeBlocks: s.UnsafeBlocks,
			UnsafeFns:    s.UnsafeFns,
		}
	}
	return hotspots
}

// Keeper retains the best maxFiles candidates seen so far, so the caller
// does not have to hold every file's signals until the end of a run.
type Keeper struct {
	max   int
	files []FileScore
}

// NewKeeper returns a Keeper bounded to maxFiles entries.
func NewKeeper(maxFiles int) *Keeper {
	return &Keeper{max: maxFiles}
}

// Offer considers one file.
func (k *Keeper) Offer(path string, sig model.FileSignals) {
	if k.max <= 0 || sig.Score() == 0 {
		return
	}
	k.files = append(k.files, FileScore{Path: path, Signals: sig})
	if len(k.files) > 2*k.max {
		k.compact()
	}
}

// Hotspots returns the selected files in rank order.
func (k *Keeper) Hotspots() []model.Hotspot {
	return SelectHotspots(k.files, k.max)
}

func (k *Keeper) compact() {
	top := SelectHotspots(k.files, k.max)
	k.files = k.files[:0]
	for _, h := range top {
		k.files = append(k.files, FileScore{
			Path: h.Path,
			Signals: model.FileSignals{
				ExternC:      h.ExternC,
				LinkAttr:     h.LinkAttr,
				NoMangle:     h.NoMangle,
				UnsafeBlocks: h.UnsafeBlocks,
				UnsafeFns:    h.UnsafeFns,
			},
		})
	}
}
