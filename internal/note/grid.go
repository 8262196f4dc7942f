package note

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// Grid holds the structured note data for one chart: a fixed number of
// tracks, each a sparse mapping from row to Note. Within one track notes
// never overlap; a held note's tail row is head row + Duration.
type Grid struct {
	tracks []map[int]Note

	// Players > 1 marks a composite (routine) grid whose notes carry
	// per-player tags.
	Players int
}

func NewGrid(numTracks int) *Grid {
	g := &Grid{Players: 1}
	g.SetNumTracks(numTracks)
	return g
}

// SetNumTracks resizes in place, truncating or zero-filling.
func (g *Grid) SetNumTracks(n int) {
	for len(g.tracks) < n {
		g.tracks = append(g.tracks, map[int]Note{})
	}
	g.tracks = g.tracks[:n]
}

func (g *Grid) NumTracks() int {
	return len(g.tracks)
}

func (g *Grid) Clear() {
	for i := range g.tracks {
		g.tracks[i] = map[int]Note{}
	}
}

func (g *Grid) IsComposite() bool {
	return g.Players > 1
}

// GetNote returns the note at the given track and row, or an empty note.
func (g *Grid) GetNote(track, row int) Note {
	if track < 0 || track >= len(g.tracks) {
		return Note{}
	}
	return g.tracks[track][row]
}

// SetNote places or clears a note. Setting an empty note deletes.
func (g *Grid) SetNote(track, row int, n Note) {
	if track < 0 || track >= len(g.tracks) || row < 0 {
		return
	}
	if n.IsEmpty() {
		delete(g.tracks[track], row)
		return
	}
	g.tracks[track][row] = n
}

// AddHold places a held note spanning [start, end] rows. end <= start
// degrades to the unheld variant of the same kind.
func (g *Grid) AddHold(track, start, end int, kind Kind) {
	if end <= start {
		g.SetNote(track, start, Note{Kind: kind})
		return
	}
	g.SetNote(track, start, Note{Kind: kind, Duration: end - start})
}

// Place inserts a note of the given category, picking the held variant
// when end > start. Used by both classifiers.
func (g *Grid) Place(track, start, end int, cat Category) {
	d := 0
	if end > start {
		d = end - start
	}
	kind := cat.ForDuration(d)
	if kind == Empty {
		return
	}
	g.SetNote(track, start, Note{Kind: kind, Duration: d})
}

// Rows returns the sorted rows occupied in one track.
func (g *Grid) Rows(track int) []int {
	if track < 0 || track >= len(g.tracks) {
		return nil
	}
	rows := make([]int, 0, len(g.tracks[track]))
	for r := range g.tracks[track] {
		rows = append(rows, r)
	}
	sort.Ints(rows)
	return rows
}

// OccupiedRows returns the sorted union of rows across every track.
func (g *Grid) OccupiedRows() []int {
	seen := map[int]struct{}{}
	for t := range g.tracks {
		for r := range g.tracks[t] {
			seen[r] = struct{}{}
		}
	}
	rows := make([]int, 0, len(seen))
	for r := range seen {
		rows = append(rows, r)
	}
	sort.Ints(rows)
	return rows
}

// LastRow is the final occupied row, including hold tails. -1 when empty.
func (g *Grid) LastRow() int {
	last := -1
	for t := range g.tracks {
		for r, n := range g.tracks[t] {
			last = max(last, r+n.Duration)
		}
	}
	return last
}

// NotesAtRow returns the notes present at a row, indexed by track.
// Tracks with no note hold an empty Note.
func (g *Grid) NotesAtRow(row int) []Note {
	notes := make([]Note, len(g.tracks))
	for t := range g.tracks {
		notes[t] = g.tracks[t][row]
	}
	return notes
}

// NumNotesAtRow counts head notes at a row across all tracks.
func (g *Grid) NumNotesAtRow(row int) int {
	c := 0
	for t := range g.tracks {
		if g.tracks[t][row].Kind.IsHead() {
			c++
		}
	}
	return c
}

// Copy returns a deep copy.
func (g *Grid) Copy() *Grid {
	out := NewGrid(len(g.tracks))
	out.Players = g.Players
	for t := range g.tracks {
		for r, n := range g.tracks[t] {
			out.tracks[t][r] = n
		}
	}
	return out
}

// Equal reports whether two grids hold identical notes.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || len(g.tracks) != len(other.tracks) || g.Players != other.Players {
		return false
	}
	for t := range g.tracks {
		if len(g.tracks[t]) != len(other.tracks[t]) {
			return false
		}
		for r, n := range g.tracks[t] {
			if other.tracks[t][r] != n {
				return false
			}
		}
	}
	return true
}

func max[A constraints.Ordered](a, b A) A {
	if a > b {
		return a
	}
	return b
}

func min[A constraints.Ordered](a, b A) A {
	if a < b {
		return a
	}
	return b
}
