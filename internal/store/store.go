// Package store caches derived chart data (radar values and predicted
// meters) between runs, keyed by the chart's content hash. Recomputing
// them means decompressing every chart in a pack, which is exactly the
// work the cache exists to skip.
package store

import "git.lost.host/meutraa/strum/internal/song"

type Store interface {
	Init(path string) error
	Deinit()

	// Save the derived values of this chart
	Save(st *song.Steps)

	// Load cached values into the chart, true on a hit
	Load(st *song.Steps) bool
}
