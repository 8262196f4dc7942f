package note

import (
	"math"
	"testing"
)

func TestCalculateRadarValues(t *testing.T) {
	g := NewGrid(6)
	g.SetNote(0, 0, Note{Kind: Tap})
	g.SetNote(1, 0, Note{Kind: Tap})          // jump row
	g.SetNote(2, 48, Note{Kind: GemHold, Duration: 48})
	g.SetNote(3, 108, Note{Kind: Hopo})        // off the eighth grid
	g.SetNote(4, rowsPerMeasure, Note{Kind: Gem})

	rv := g.CalculateRadarValues(10)

	close := func(got, want float64) bool { return math.Abs(got-want) < 1e-9 }

	if !close(rv[RadarTapsAndHolds], 5) {
		t.Log("taps and holds", rv[RadarTapsAndHolds])
		t.Fail()
	}
	if !close(rv[RadarStream], 4.0/10/7) {
		t.Log("stream", rv[RadarStream])
		t.Fail()
	}
	if !close(rv[RadarAir], 1.0/10) {
		t.Log("air", rv[RadarAir])
		t.Fail()
	}
	if !close(rv[RadarFreeze], 1.0/10) {
		t.Log("freeze", rv[RadarFreeze])
		t.Fail()
	}
	if !close(rv[RadarChaos], 1.0/10/1.5) {
		t.Log("chaos", rv[RadarChaos])
		t.Fail()
	}
	if !close(rv[RadarVoltage], 4.0/16) {
		t.Log("voltage", rv[RadarVoltage])
		t.Fail()
	}
}

func TestRadarClampsShortSongs(t *testing.T) {
	g := NewGrid(6)
	for i := 0; i < 40; i++ {
		g.SetNote(i%6, i*12, Note{Kind: Tap})
	}
	rv := g.CalculateRadarValues(0)
	for c := RadarStream; c <= RadarChaos; c++ {
		if rv[c] < 0 || rv[c] > 1 {
			t.Log(c, "out of range:", rv[c])
			t.Fail()
		}
	}
}
