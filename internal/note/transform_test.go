package note

import "testing"

func TestLoadTransformedMapping(t *testing.T) {
	src := NewGrid(6)
	src.SetNote(0, 0, Note{Kind: Tap})
	src.SetNote(5, 48, Note{Kind: Gem})

	out := LoadTransformed(src, 4, []int{5, 0, -1, 9})
	if n := out.GetNote(0, 48); n.Kind != Gem {
		t.Log("expected gem moved to column 0, got", n)
		t.Fail()
	}
	if n := out.GetNote(1, 0); n.Kind != Tap {
		t.Log("expected tap moved to column 1, got", n)
		t.Fail()
	}
	// unmapped and out-of-range columns stay blank
	for _, col := range []int{2, 3} {
		if rows := out.Rows(col); len(rows) != 0 {
			t.Log("column", col, "rows", rows)
			t.Fail()
		}
	}
}

func TestSlidingWindowReduction(t *testing.T) {
	src := NewGrid(6)
	src.SetNote(4, 0, Note{Kind: Tap})
	src.SetNote(5, 48, Note{Kind: Tap})
	src.SetNote(4, rowsPerMeasure, Note{Kind: Tap})

	out := LoadTransformedSlidingWindow(src, 4)
	if n := out.GetNote(0, 0); n.Kind != Tap {
		t.Log("expected wrap of column 4 onto 0, got", n)
		t.Fail()
	}
	if n := out.GetNote(1, 48); n.Kind != Tap {
		t.Log("expected wrap of column 5 onto 1, got", n)
		t.Fail()
	}
	// one measure in, the window has slid one column
	if n := out.GetNote(1, rowsPerMeasure); n.Kind != Tap {
		t.Log("expected slid wrap onto 1, got", n)
		t.Fail()
	}
}

func TestDeStretch(t *testing.T) {
	g := NewGrid(4)
	for col := 0; col < 4; col++ {
		g.SetNote(col, 0, Note{Kind: Tap})
	}
	g.SetNote(0, 48, Note{Kind: Tap})
	g.SetNote(1, 48, Note{Kind: Tap})

	DeStretch(g)
	if g.NumNotesAtRow(0) != 1 || g.GetNote(0, 0).Kind != Tap {
		t.Log("full-hand row should keep only the lowest column")
		t.Fail()
	}
	if g.NumNotesAtRow(48) != 2 {
		t.Log("partial rows must be left alone")
		t.Fail()
	}
}

func TestLightsTransform(t *testing.T) {
	src := NewGrid(4)
	src.SetNote(0, 0, Note{Kind: Tap})
	src.SetNote(3, 0, Note{Kind: Tap})
	src.SetNote(2, 96, Note{Kind: Gem})

	out := LoadTransformedLights(src, 8)
	// the jump row lights the marquee columns too
	for col := 4; col < 8; col++ {
		if out.GetNote(col, 0).Kind != Tap {
			t.Log("expected jump light on column", col)
			t.Fail()
		}
	}
	if out.GetNote(2, 96).Kind != Tap {
		t.Log("expected activity light for column 2")
		t.Fail()
	}
	if out.GetNote(4, 96).Kind != Empty {
		t.Log("single note must not light the marquee")
		t.Fail()
	}
}

func TestSplitComposite(t *testing.T) {
	g := NewGrid(8)
	g.Players = 2
	g.SetNote(0, 0, Note{Kind: Tap, Player: 0})
	g.SetNote(1, 0, Note{Kind: Gem, Player: 1})

	parts := SplitComposite(g)
	if len(parts) != 2 {
		t.Fatal("expected one grid per player, got", len(parts))
	}
	if parts[0].GetNote(0, 0).Kind != Tap || parts[0].GetNote(1, 0).Kind != Empty {
		t.Log("player 0 grid wrong")
		t.Fail()
	}
	if parts[1].GetNote(1, 0).Kind != Gem || parts[1].GetNote(0, 0).Kind != Empty {
		t.Log("player 1 grid wrong")
		t.Fail()
	}
}

func TestShiftTracks(t *testing.T) {
	g := NewGrid(8)
	g.SetNote(4, 0, Note{Kind: Tap})
	ShiftTracks(g, 4)
	if g.GetNote(0, 0).Kind != Tap {
		t.Log("expected note rotated from column 4 to 0")
		t.Fail()
	}
}

func TestAutogenProceduralDeterminism(t *testing.T) {
	src := NewGrid(6)
	src.SetNote(0, 0, Note{Kind: Tap})
	src.SetNote(1, 48, Note{Kind: Tap})
	src.SetNote(2, 96, Note{Kind: Tap})

	a := AutogenProcedural(src, 4, 7)
	b := AutogenProcedural(src, 4, 7)
	if !a.Equal(b) {
		t.Log("same source and seed must generate the same chart")
		t.Fail()
	}
	c := AutogenProcedural(src, 4, 8)
	if a.Equal(c) {
		t.Log("different seeds should stagger the columns")
		t.Fail()
	}
}
