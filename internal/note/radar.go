package note

import "math"

// RadarCategory indexes the difficulty/density metrics derived from note
// content. The first five feed the meter predictor.
type RadarCategory int

const (
	RadarStream RadarCategory = iota
	RadarVoltage
	RadarAir
	RadarFreeze
	RadarChaos
	RadarTapsAndHolds
	NumRadarCategories
)

var radarNames = [NumRadarCategories]string{
	"Stream", "Voltage", "Air", "Freeze", "Chaos", "TapsAndHolds",
}

func (c RadarCategory) String() string {
	if c < 0 || c >= NumRadarCategories {
		return "Invalid"
	}
	return radarNames[c]
}

type RadarValues [NumRadarCategories]float64

func (rv *RadarValues) Zero() {
	*rv = RadarValues{}
}

// CalculateRadarValues aggregates the per-category densities of a grid
// over the song length. Lengths under a second are clamped to keep the
// ratios finite for broken charts.
func (g *Grid) CalculateRadarValues(musicLengthSeconds float64) RadarValues {
	var rv RadarValues
	seconds := math.Max(musicLengthSeconds, 1)

	taps := 0   // rows with at least one head
	heads := 0  // individual heads
	jumps := 0  // rows with two or more heads
	holds := 0  // held heads
	chaos := 0  // heads off the eighth-note grid
	peak := 0   // most heads in any one measure
	perMeasure := map[int]int{}

	for _, row := range g.OccupiedRows() {
		c := g.NumNotesAtRow(row)
		if c == 0 {
			continue
		}
		taps++
		heads += c
		if c >= 2 {
			jumps++
		}
		if row%(RowsPerBeat/2) != 0 {
			chaos += c
		}
		m := row / rowsPerMeasure
		perMeasure[m] += c
		peak = max(peak, perMeasure[m])
		for t := 0; t < g.NumTracks(); t++ {
			n := g.GetNote(t, row)
			if n.Kind.IsHeld() && n.Duration > 0 {
				holds++
			}
		}
	}

	rv[RadarStream] = clamp01(float64(taps) / seconds / 7)
	rv[RadarVoltage] = clamp01(float64(peak) / 16)
	rv[RadarAir] = clamp01(float64(jumps) / seconds)
	rv[RadarFreeze] = clamp01(float64(holds) / seconds)
	rv[RadarChaos] = clamp01(float64(chaos) / seconds / 1.5)
	rv[RadarTapsAndHolds] = float64(heads)
	return rv
}

func clamp01(f float64) float64 {
	return math.Min(math.Max(f, 0), 1)
}
