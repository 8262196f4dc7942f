package note

// LoadTransformed builds a grid of newNumTracks columns by copying each new
// column's notes from mapping[new] = original column. Out-of-range or
// negative entries leave the column blank.
func LoadTransformed(src *Grid, newNumTracks int, mapping []int) *Grid {
	out := NewGrid(newNumTracks)
	for t := 0; t < newNumTracks; t++ {
		if t >= len(mapping) {
			break
		}
		from := mapping[t]
		if from < 0 || from >= src.NumTracks() {
			continue
		}
		for _, row := range src.Rows(from) {
			out.SetNote(t, row, src.GetNote(from, row))
		}
	}
	return out
}

// LoadTransformedSlidingWindow remaps a grid onto a different column count
// with a window that slides one column per measure, so reductions do not
// collapse everything onto the same lanes.
func LoadTransformedSlidingWindow(src *Grid, newNumTracks int) *Grid {
	out := NewGrid(newNumTracks)
	for t := 0; t < src.NumTracks(); t++ {
		for _, row := range src.Rows(t) {
			offset := row / rowsPerMeasure
			dest := (t + offset) % newNumTracks
			n := src.GetNote(t, row)
			if out.GetNote(dest, row).IsEmpty() {
				out.SetNote(dest, row, n)
			}
		}
	}
	return out
}

// DeStretch removes full-hand rows produced by window wraps during a
// column reduction: when every column of a row is occupied, only the
// lowest column's note survives.
func DeStretch(g *Grid) {
	for _, row := range g.OccupiedRows() {
		if g.NumNotesAtRow(row) < g.NumTracks() || g.NumTracks() < 2 {
			continue
		}
		for t := 1; t < g.NumTracks(); t++ {
			g.SetNote(t, row, Note{})
		}
	}
}

// LoadTransformedLights derives a cabinet-lights chart: the first four
// columns blink with activity in the corresponding quarter of the source
// columns, the rest light on jump rows.
func LoadTransformedLights(src *Grid, newNumTracks int) *Grid {
	out := NewGrid(newNumTracks)
	quarters := 4
	if newNumTracks < quarters {
		quarters = newNumTracks
	}
	per := src.NumTracks() / quarters
	if per < 1 {
		per = 1
	}
	for _, row := range src.OccupiedRows() {
		jump := src.NumNotesAtRow(row) >= 2
		for t := 0; t < src.NumTracks(); t++ {
			n := src.GetNote(t, row)
			if !n.Kind.IsHead() {
				continue
			}
			dest := min(t/per, quarters-1)
			out.SetNote(dest, row, Note{Kind: Tap})
		}
		if jump {
			for t := quarters; t < newNumTracks; t++ {
				out.SetNote(t, row, Note{Kind: Tap})
			}
		}
	}
	return out
}

// SplitComposite de-interleaves a composite grid into one grid per player.
// A non-composite input comes back whole.
func SplitComposite(src *Grid) []*Grid {
	if !src.IsComposite() {
		return []*Grid{src.Copy()}
	}
	out := make([]*Grid, src.Players)
	for p := range out {
		out[p] = NewGrid(src.NumTracks())
	}
	for t := 0; t < src.NumTracks(); t++ {
		for _, row := range src.Rows(t) {
			n := src.GetNote(t, row)
			if n.Player < 0 || n.Player >= len(out) {
				continue
			}
			cp := n
			cp.Player = 0
			out[n.Player].SetNote(t, row, cp)
		}
	}
	return out
}

// ShiftTracks rotates note columns left by the given amount, used to peel
// the second half out of couple-type charts.
func ShiftTracks(g *Grid, shift int) {
	nt := g.NumTracks()
	if nt == 0 {
		return
	}
	shift = ((shift % nt) + nt) % nt
	if shift == 0 {
		return
	}
	rotated := make([]map[int]Note, nt)
	for t := 0; t < nt; t++ {
		rotated[t] = g.tracks[(t+shift)%nt]
	}
	g.tracks = rotated
}

// AutogenProcedural synthesizes a chart deterministically from a source
// grid. The seed (taken from the parent's note count) staggers the column
// cycle so different parents come out different, while the same parent
// always generates the same thing.
func AutogenProcedural(src *Grid, newNumTracks, seed int) *Grid {
	out := NewGrid(newNumTracks)
	i := 0
	for _, row := range src.OccupiedRows() {
		if src.NumNotesAtRow(row) == 0 {
			continue
		}
		dest := (seed + i) % newNumTracks
		out.SetNote(dest, row, Note{Kind: Tap})
		i++
	}
	return out
}
