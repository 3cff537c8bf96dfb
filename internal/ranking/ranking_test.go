package ranking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/ffiscan/internal/model"
)

func TestSelectHotspots(t *testing.T) {
	t.Parallel()

	files := []FileScore{
		{Path: "b.rs", Signals: model.FileSignals{ExternC: 1, NoMangle: 1}},
		{Path: "quiet.rs", Signals: model.FileSignals{Flagged: true}},
		{Path: "a.rs", Signals: model.FileSignals{UnsafeBlocks: 2}},
		{Path: "c.rs", Signals: model.FileSignals{UnsafeFns: 5}},
	}

	got := SelectHotspots(files, 10)
	require.Len(t, got, 3)
	assert.Equal(t, "c.rs", got[0].Path)
	assert.Equal(t, 5, got[0].Score)
	// a.rs and b.rs tie on score; path breaks the tie
	assert.Equal(t, "a.rs", got[1].Path)
	assert.Equal(t, "b.rs", got[2].Path)
	assert.Equal(t, 1, got[2].ExternC)
	assert.Equal(t, 1, got[2].NoMangle)
}

func TestSelectHotspotsLimit(t *testing.T) {
	t.Parallel()

	files := []FileScore{
		{Path: "a.rs", Signals: model.FileSignals{ExternC: 1}},
		{Path: "b.rs", Signals: model.FileSignals{ExternC: 3}},
	}

	got := SelectHotspots(files, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "b.rs", got[0].Path)

	assert.Nil(t, SelectHotspots(files, 0))
}

func TestKeeperMatchesSelectHotspots(t *testing.T) {
	t.Parallel()

	var all []FileScore
	k := NewKeeper(3)
	for i := range 20 {
		sig := model.FileSignals{UnsafeBlocks: (i * 7) % 11, LinkAttr: i % 3}
		path := fmt.Sprintf("f%02d.rs", i)
		all = append(all, FileScore{Path: path, Signals: sig})
		k.Offer(path, sig)
	}

	assert.Equal(t, SelectHotspots(all, 3), k.Hotspots())
}

func TestKeeperDisabled(t *testing.T) {
	t.Parallel()

	k := NewKeeper(0)
	k.Offer("a.rs", model.FileSignals{ExternC: 1})
	assert.Empty(t, k.Hotspots())
}
