package parser

import (
	"os"
	"path/filepath"
	"strings"

	"git.lost.host/meutraa/strum/internal/event"
	"git.lost.host/meutraa/strum/internal/note"
	"git.lost.host/meutraa/strum/internal/song"
	"git.lost.host/meutraa/strum/internal/timing"
)

// ChartLoader reads the bracket-sectioned guitar text format: a [Song]
// header, a [SyncTrack] tempo map, [Events] section labels and one note
// section per difficulty.
type ChartLoader struct{}

const chartNumFrets = 5

var chartDifficultySections = map[string]song.Difficulty{
	"[EasySingle]":   song.DifficultyEasy,
	"[MediumSingle]": song.DifficultyMedium,
	"[HardSingle]":   song.DifficultyHard,
	"[ExpertSingle]": song.DifficultyChallenge,
}

type chartHeader struct {
	title       string
	artist      string
	charter     string
	offset      float64
	resolution  int
	meter       int
	sampleStart float64
	sampleEnd   float64
	music       string

	timingStub timing.Data
}

// wholeString rejoins a quoted value that Fields split apart and strips
// the quotes.
func wholeString(words []string) string {
	s := strings.Join(words, " ")
	s = strings.TrimPrefix(s, "\"")
	return strings.TrimSuffix(s, "\"")
}

func parseChartHeader(sc *lineScanner, h *chartHeader) {
	for {
		words, ok := sc.next()
		if !ok || len(words) == 0 {
			return
		}
		switch words[0][0] {
		case '{':
			continue
		case '}':
			return
		}
		if len(words) < 3 {
			continue
		}
		val := words[2:]
		switch words[0] {
		case "Name":
			h.title = wholeString(val)
		case "Artist":
			h.artist = wholeString(val)
		case "Charter":
			h.charter = wholeString(val)
		case "Offset":
			h.offset = -atof(val[0])
		case "Resolution":
			h.resolution = atoi(val[0])
		case "Difficulty":
			h.meter = atoi(val[0])
		case "PreviewStart":
			h.sampleStart = atof(val[0])
		case "PreviewEnd":
			h.sampleEnd = atof(val[0])
		case "MusicStream":
			h.music = wholeString(val)
		}
	}
}

func parseChartSyncTrack(sc *lineScanner, td *timing.Data, resolution int) {
	for {
		words, ok := sc.next()
		if !ok || len(words) == 0 {
			return
		}
		switch words[0][0] {
		case '{':
			continue
		case '}':
			return
		}
		if len(words) < 4 {
			continue
		}
		tick := atoi(words[0])
		switch words[2] {
		case "B":
			// value is milli-BPM
			td.AddBPMSegment(timing.BPMSegment{
				Beat: float64(tick) / float64(resolution),
				BPM:  atof(words[3]) / 1000.0,
			})
		case "TS":
			td.AddTimeSignatureSegment(timing.TimeSignatureSegment{
				Row:         chartRow(tick, resolution),
				Numerator:   atoi(words[3]),
				Denominator: 4,
			})
		}
	}
}

func parseChartEvents(sc *lineScanner, td *timing.Data, resolution int) {
	for {
		words, ok := sc.next()
		if !ok || len(words) == 0 {
			return
		}
		switch words[0][0] {
		case '{':
			continue
		case '}':
			return
		}
		// 103872 = E "section Guitar Solo"
		if len(words) < 4 || words[2] != "E" {
			continue
		}
		label := strings.Trim(strings.Join(words[3:], " "), "\"")
		if !strings.HasPrefix(label, "section ") {
			continue
		}
		td.AddLabelSegment(timing.LabelSegment{
			Row:   chartRow(atoi(words[0]), resolution),
			Label: strings.TrimPrefix(label, "section "),
		})
	}
}

// readChartNoteEvents turns a note section into an event list: fret notes
// with explicit lengths, plus forced and tap row markers. Fret 5 is the
// legacy forced marker and never a playable note.
func readChartNoteEvents(sc *lineScanner) []event.Event {
	var evs []event.Event
	for {
		words, ok := sc.next()
		if !ok || len(words) == 0 {
			return evs
		}
		switch words[0][0] {
		case '{':
			continue
		case '}':
			return evs
		}
		if len(words) < 4 {
			continue
		}
		tick := atoi(words[0])
		switch words[2] {
		case "N":
			fret := atoi(words[3])
			if fret == 5 {
				evs = append(evs, event.Event{
					Tick:   tick,
					Kind:   event.Marker,
					Marker: event.MarkerForcedRow,
				})
				continue
			}
			if fret < 0 || fret >= chartNumFrets {
				continue
			}
			length := 0
			if len(words) >= 5 {
				length = atoi(words[4])
			}
			evs = append(evs, event.Event{
				Tick:   tick,
				Kind:   event.Note,
				Pitch:  fret,
				Length: length,
			})
		case "E":
			switch words[3] {
			case "*":
				evs = append(evs, event.Event{
					Tick:   tick,
					Kind:   event.Marker,
					Marker: event.MarkerForcedRow,
				})
			case "T":
				evs = append(evs, event.Event{
					Tick:   tick,
					Kind:   event.Marker,
					Marker: event.MarkerTapRow,
				})
			}
		}
	}
}

func chartRow(tick, resolution int) int {
	return note.BeatToRow(float64(tick) / float64(resolution))
}

// classifyChart runs the strum/hammer-on state machine over one
// difficulty's events. Authoring tools are sloppy about exact ticks, so
// every same-row comparison tolerates a one tick drift.
func classifyChart(evs []event.Event, resolution, hopoWindow int) *note.Grid {
	grid := note.NewGrid(chartNumFrets)

	row := func(tick int) int { return chartRow(tick, resolution) }

	var prevMark, prevLen [chartNumFrets]int
	var prevHopo [chartNumFrets]bool
	for i := range prevMark {
		prevMark[i] = -1
		prevLen[i] = -1
	}
	prevTrack := -1
	lastForcedRow := -1
	lastTapRow := -1
	lastChordRow := -1

	near := func(a, b int) bool {
		d := a - b
		if d < 0 {
			d = -d
		}
		return d <= 1
	}

	for _, ev := range evs {
		if ev.Kind == event.Marker {
			switch ev.Marker {
			case event.MarkerForcedRow:
				// Flip every note already on this row between strummed
				// and hammer-on, keeping its length.
				lastForcedRow = ev.Tick
				r := row(ev.Tick)
				for t := 0; t < chartNumFrets; t++ {
					n := grid.GetNote(t, r)
					if n.IsEmpty() {
						continue
					}
					cat := note.CategoryHopo
					if n.Kind.IsHopo() {
						cat = note.CategoryGem
					}
					grid.Place(t, r, r+n.Duration, cat)
				}
			case event.MarkerTapRow:
				lastTapRow = ev.Tick
				r := row(ev.Tick)
				for t := 0; t < chartNumFrets; t++ {
					n := grid.GetNote(t, r)
					if n.IsEmpty() {
						continue
					}
					grid.Place(t, r, r+n.Duration, note.CategoryTap)
				}
			}
			continue
		}
		if ev.Kind != event.Note {
			continue
		}

		track := ev.Pitch
		tick := ev.Tick
		length := ev.Length

		// An unterminated sustain runs into this note; shorten it by a
		// thirty-second so the fret is free again in time.
		if prevMark[track] >= 0 && prevMark[track]+prevLen[track]+1 >= tick {
			newLen := tick - prevMark[track] - resolution/8
			prevLen[track] = newLen
			cat := note.CategoryGem
			if prevHopo[track] {
				cat = note.CategoryHopo
			}
			r := row(prevMark[track])
			grid.SetNote(track, r, note.Note{})
			grid.Place(track, r, row(prevMark[track]+newLen), cat)
		}

		// A note landing on the same row as an earlier hammer-on turns
		// that note back into a strum: chords are never hammer-ons.
		for k := 0; k < chartNumFrets; k++ {
			if k == track || !prevHopo[k] || !near(tick, prevMark[k]) {
				continue
			}
			lastChordRow = tick
			grid.Place(k, row(prevMark[k]), row(prevMark[k]+prevLen[k]), note.CategoryGem)
			prevHopo[k] = false
		}

		if lastTapRow >= 0 && near(lastTapRow, tick) {
			grid.Place(track, row(tick), row(tick+length), note.CategoryTap)
			prevHopo[track] = false
		} else {
			hopo := false
			for k := 0; k < chartNumFrets; k++ {
				if prevMark[k] >= 0 && track != prevTrack && abs(tick-prevMark[k])-1 <= hopoWindow {
					hopo = true
				}
				if near(tick, prevMark[k]) || (lastChordRow >= 0 && near(lastChordRow, tick)) {
					hopo = false
					break
				}
				if prevTrack >= 0 && prevTrack != track &&
					prevMark[track] >= 0 && prevMark[prevTrack] >= 0 &&
					near(prevMark[track], prevMark[prevTrack]) {
					hopo = false
					break
				}
			}
			if lastForcedRow >= 0 && near(lastForcedRow, tick) {
				hopo = !hopo
			}
			cat := note.CategoryGem
			if hopo {
				cat = note.CategoryHopo
			}
			grid.Place(track, row(tick), row(tick+length), cat)
			prevHopo[track] = hopo
		}

		prevMark[track] = tick
		prevLen[track] = length
		prevTrack = track
	}
	return grid
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (p *ChartLoader) parse(path string, out *song.Song, target *song.Steps) bool {
	data, err := os.ReadFile(path)
	if nil != err {
		return false
	}

	dir := filepath.Dir(path)
	cfg := loadSongINI(dir)

	h := chartHeader{resolution: 192}
	var header *chartHeader
	type pending struct {
		difficulty song.Difficulty
		events     []event.Event
	}
	var sections []pending

	sc := newLineScanner(string(data))
	for {
		words, ok := sc.next()
		if !ok {
			break
		}
		if len(words) == 0 || words[0][0] != '[' {
			continue
		}
		name := words[0]
		switch {
		case strings.HasPrefix(name, "[Song"):
			parseChartHeader(sc, &h)
			header = &h
		case strings.HasPrefix(name, "[SyncTrack"):
			td := &h.timingStub
			parseChartSyncTrack(sc, td, h.resolution)
		case strings.HasPrefix(name, "[Events"):
			parseChartEvents(sc, &h.timingStub, h.resolution)
		default:
			diff, isNotes := chartDifficultySections[name]
			if !isNotes {
				continue
			}
			sections = append(sections, pending{diff, readChartNoteEvents(sc)})
		}
	}
	if header == nil {
		return false
	}

	hopoWindow := chartHopoWindow(h.resolution, cfg)

	if out != nil {
		out.Title = h.title
		out.Artist = h.artist
		out.Credit = h.charter
		out.MusicFile = h.music
		out.MusicSampleStartSeconds = h.sampleStart
		if h.sampleEnd > h.sampleStart {
			out.MusicSampleLengthSeconds = h.sampleEnd - h.sampleStart
		}
		out.SongFileName = path
		out.Timing = h.timingStub
		out.Timing.Offset = h.offset

		for _, sec := range sections {
			st := out.CreateSteps()
			st.Type = song.StepsTypeGuitarSolo
			st.TypeStr = st.Type.Info().Name
			st.ChartStyle = "Guitar"
			st.Difficulty = sec.difficulty
			st.Description = h.charter
			st.Credit = h.charter
			st.Meter = h.meter
			st.Filename = path
			st.SavedToDisk = true
			st.SetNoteData(classifyChart(sec.events, h.resolution, hopoWindow))
			st.TidyUpData()
			out.AddSteps(st)
		}
		return true
	}

	// target mode: fill one record's note data
	if target.Type != song.StepsTypeGuitarSolo {
		return false
	}
	for _, sec := range sections {
		if sec.difficulty != target.Difficulty {
			continue
		}
		target.SetNoteData(classifyChart(sec.events, h.resolution, hopoWindow))
		return true
	}
	return false
}

func (p *ChartLoader) LoadFromDir(dir string, out *song.Song) bool {
	path := findFile(dir, ".chart")
	if "" == path {
		return false
	}
	return p.parse(path, out, nil)
}

func (p *ChartLoader) LoadNoteData(path string, out *song.Steps) bool {
	return p.parse(path, nil, out)
}

var _ song.Loader = (*ChartLoader)(nil)
