package note

import (
	"strings"
)

// The compact text encoding is measure oriented: one line per discretized
// time unit, one character per track, measures joined by ',' and players of
// a composite grid joined by '&'. It is the canonical compressed-in-memory
// representation and must round-trip losslessly.

const rowsPerMeasure = RowsPerBeat * 4

const tailChar = '3'

func charForKind(k Kind) byte {
	switch k {
	case Tap:
		return '1'
	case Hold:
		return '2'
	case Roll:
		return '4'
	case Gem:
		return 'G'
	case GemHold:
		return 'g'
	case Hopo:
		return 'H'
	case HopoHold:
		return 'h'
	case Mine:
		return 'M'
	case Lift:
		return 'L'
	case Fake:
		return 'F'
	}
	return '0'
}

func kindForChar(c byte) Kind {
	switch c {
	case '1':
		return Tap
	case '2':
		return Hold
	case '4':
		return Roll
	case 'G':
		return Gem
	case 'g':
		return GemHold
	case 'H':
		return Hopo
	case 'h':
		return HopoHold
	case 'M':
		return Mine
	case 'L':
		return Lift
	case 'F':
		return Fake
	}
	return Empty
}

// held heads that never see a tail decay to their unheld pair
func unheldPair(k Kind) Kind {
	switch k {
	case Hold:
		return Tap
	case GemHold:
		return Gem
	case HopoHold:
		return Hopo
	}
	return k
}

// Serialize encodes the grid to the compact text form.
func (g *Grid) Serialize() string {
	if !g.IsComposite() {
		return g.serializePlayer(0)
	}
	parts := make([]string, g.Players)
	for p := 0; p < g.Players; p++ {
		parts[p] = g.serializePlayer(p)
	}
	return strings.Join(parts, "&\n")
}

func (g *Grid) serializePlayer(player int) string {
	nt := g.NumTracks()

	// row -> track -> char, heads and tails flattened together
	marks := map[int][]byte{}
	mark := func(row, track int, c byte) {
		line, ok := marks[row]
		if !ok {
			line = bytesOfZeros(nt)
			marks[row] = line
		}
		line[track] = c
	}

	last := 0
	for t := 0; t < nt; t++ {
		for _, row := range g.Rows(t) {
			n := g.tracks[t][row]
			if g.IsComposite() && n.Player != player {
				continue
			}
			mark(row, t, charForKind(n.Kind))
			if n.Kind.IsHeld() && n.Duration > 0 {
				mark(row+n.Duration, t, tailChar)
			}
			last = max(last, row+n.Duration)
		}
	}

	measures := last/rowsPerMeasure + 1
	var sb strings.Builder
	for m := 0; m < measures; m++ {
		if m > 0 {
			sb.WriteString(",\n")
		}
		step := measureStep(marks, m)
		for row := m * rowsPerMeasure; row < (m+1)*rowsPerMeasure; row += step {
			if line, ok := marks[row]; ok {
				sb.Write(line)
			} else {
				sb.Write(bytesOfZeros(nt))
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// measureStep picks the coarsest row step that still lands on every
// occupied row of the measure. Empty measures collapse to quarter notes.
func measureStep(marks map[int][]byte, measure int) int {
	step := rowsPerMeasure / 4
	for row := range marks {
		if row < measure*rowsPerMeasure || row >= (measure+1)*rowsPerMeasure {
			continue
		}
		step = gcd(step, row-measure*rowsPerMeasure)
	}
	if step < 1 {
		step = 1
	}
	return step
}

func bytesOfZeros(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = '0'
	}
	return b
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Deserialize decodes the compact text form into a fresh grid of the given
// track count. composite splits the input on '&' into player-tagged parts.
// Malformed lines are skipped, stray tails ignored.
func Deserialize(data string, numTracks int, composite bool) *Grid {
	g := NewGrid(numTracks)
	parts := []string{data}
	if composite {
		parts = strings.Split(data, "&")
		g.Players = len(parts)
	}
	for p, part := range parts {
		deserializePlayer(g, part, p)
	}
	return g
}

func deserializePlayer(g *Grid, data string, player int) {
	nt := g.NumTracks()

	// open held heads per track, value is the head row
	open := make([]int, nt)
	headKind := make([]Kind, nt)
	for i := range open {
		open[i] = -1
	}

	for m, measure := range strings.Split(strings.ReplaceAll(data, "\r", ""), ",") {
		var lines []string
		for _, l := range strings.Split(measure, "\n") {
			l = strings.TrimSpace(l)
			if l == "" || strings.HasPrefix(l, "//") {
				continue
			}
			lines = append(lines, l)
		}
		if len(lines) == 0 {
			continue
		}
		step := rowsPerMeasure / len(lines)
		if step < 1 {
			step = 1
		}
		for i, line := range lines {
			row := m*rowsPerMeasure + i*step
			for t := 0; t < nt && t < len(line); t++ {
				c := line[t]
				if c == '0' {
					continue
				}
				if c == tailChar {
					if open[t] >= 0 {
						g.SetNote(t, open[t], Note{
							Kind:     headKind[t],
							Duration: row - open[t],
							Player:   player,
						})
						open[t] = -1
					}
					continue
				}
				kind := kindForChar(c)
				if kind == Empty {
					continue
				}
				if kind.IsHeld() {
					open[t] = row
					headKind[t] = kind
					// placed now in case the tail never arrives
					g.SetNote(t, row, Note{Kind: unheldPair(kind), Player: player})
					continue
				}
				g.SetNote(t, row, Note{Kind: kind, Player: player})
			}
		}
	}
}
