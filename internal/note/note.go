package note

import "math"

// RowsPerBeat is the fixed discretization of the beat axis. Source files
// carry their own tick resolution; everything in memory uses rows.
const RowsPerBeat = 48

// BeatToRow discretizes a beat position to the common row axis.
func BeatToRow(beat float64) int {
	return int(math.Round(beat * RowsPerBeat))
}

// RowToBeat is the inverse of BeatToRow.
func RowToBeat(row int) float64 {
	return float64(row) / RowsPerBeat
}

type Kind uint8

const (
	Empty Kind = iota
	Tap
	Hold
	Roll
	Gem
	GemHold
	Hopo
	HopoHold
	Mine
	Lift
	Fake
)

// Category groups the kinds the classifiers deal in: tap/hold, gem/gemhold,
// hopo/hopohold. Held variants are selected by duration.
type Category int

const (
	CategoryInvalid Category = iota
	CategoryTap
	CategoryGem
	CategoryHopo
)

// ForDuration returns the kind for this category, held variant if the
// note spans more than one row.
func (c Category) ForDuration(duration int) Kind {
	held := duration > 0
	switch c {
	case CategoryTap:
		if held {
			return Hold
		}
		return Tap
	case CategoryGem:
		if held {
			return GemHold
		}
		return Gem
	case CategoryHopo:
		if held {
			return HopoHold
		}
		return Hopo
	}
	return Empty
}

func (k Kind) IsHopo() bool {
	return k == Hopo || k == HopoHold
}

func (k Kind) IsHead() bool {
	switch k {
	case Tap, Hold, Roll, Gem, GemHold, Hopo, HopoHold:
		return true
	}
	return false
}

func (k Kind) IsHeld() bool {
	switch k {
	case Hold, Roll, GemHold, HopoHold:
		return true
	}
	return false
}

// Note is a single placed note. Duration is in rows; 0 for an unheld note.
// Player tags the owning player in composite (routine) grids.
type Note struct {
	Kind     Kind
	Duration int
	Player   int
}

func (n Note) IsEmpty() bool {
	return n.Kind == Empty
}

// Category reports which classifier category this note belongs to.
func (n Note) Category() Category {
	switch n.Kind {
	case Tap, Hold, Roll:
		return CategoryTap
	case Gem, GemHold:
		return CategoryGem
	case Hopo, HopoHold:
		return CategoryHopo
	}
	return CategoryInvalid
}
