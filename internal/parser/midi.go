package parser

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gitlab.com/gomidi/midi/v2/smf"

	"git.lost.host/meutraa/strum/internal/event"
	"git.lost.host/meutraa/strum/internal/note"
	"git.lost.host/meutraa/strum/internal/song"
	"git.lost.host/meutraa/strum/internal/timing"
)

// MIDILoader reads guitar charts authored as standard MIDI files, with
// real tracks named by instrument and per-difficulty fret notes packed
// into pitch windows.
type MIDILoader struct{}

// hopoRules selects which ruleset classifies fret changes.
type hopoRules int

const (
	ghRules hopoRules = iota
	rbRules
)

const defaultResolution = 480

// readSMF parses a MIDI file. The decoder panics on some truncated files,
// so recover and report those as plain errors.
func readSMF(path string) (s *smf.SMF, e error) {
	defer func() {
		if r := recover(); nil != r {
			s, e = nil, fmt.Errorf("unable to read midi: %v", r)
		}
	}()

	dat, err := os.ReadFile(path)
	if nil != err {
		return nil, err
	}
	return smf.ReadFrom(bytes.NewReader(dat))
}

func smfResolution(s *smf.SMF) int {
	if metric, ok := s.TimeFormat.(smf.MetricTicks); ok {
		return int(metric.Resolution())
	}
	return defaultResolution
}

// midiSong is the organized form of one MIDI file: role-keyed event
// tracks plus the chart-wide flags the classifier needs.
type midiSong struct {
	stream    *event.Stream
	rules     hopoRules
	guitarSix bool
	bassSix   bool
}

func convertTrack(tr smf.Track) (name string, evs []event.Event, timed bool) {
	abs := 0
	for _, e := range tr {
		abs += int(e.Delta)
		msg := e.Message

		var ch, key, vel uint8
		var num, den, cpc, dsq uint8
		var text string
		var bpm float64
		var data []byte
		switch {
		case msg.GetMetaTrackName(&text):
			if "" == name {
				name = text
			}
		case msg.GetMetaTempo(&bpm):
			evs = append(evs, event.Event{Tick: abs, Kind: event.Tempo, BPM: bpm})
			timed = true
		case msg.GetMetaTimeSig(&num, &den, &cpc, &dsq):
			evs = append(evs, event.Event{
				Tick: abs, Kind: event.TimeSignature,
				Numerator: int(num), Denominator: int(den),
			})
			timed = true
		case msg.GetMetaLyric(&text):
			evs = append(evs, event.Event{Tick: abs, Kind: event.Lyric, Text: text})
		case msg.GetMetaText(&text):
			evs = append(evs, event.Event{Tick: abs, Kind: event.Text, Text: text})
		case msg.GetNoteOn(&ch, &key, &vel):
			evs = append(evs, event.Event{
				Tick: abs, Kind: event.NoteOn,
				Pitch: int(key), Velocity: int(vel),
			})
		case msg.GetNoteOff(&ch, &key, &vel):
			evs = append(evs, event.Event{Tick: abs, Kind: event.NoteOff, Pitch: int(key)})
		case msg.GetSysEx(&data):
			cp := make([]byte, len(data))
			copy(cp, data)
			evs = append(evs, event.Event{Tick: abs, Kind: event.Sysex, Data: cp})
		}
	}
	return name, evs, timed
}

// organizeMIDI sorts the file's tracks into roles by name. A lone track
// with no name is treated as both the tempo track and a guitar chart,
// which is how the oldest rips were laid out.
func organizeMIDI(s *smf.SMF) *midiSong {
	ms := &midiSong{stream: event.NewStream(smfResolution(s)), rules: ghRules}

	add := func(role event.TrackRole, evs []event.Event) {
		cur := ms.stream.Tracks[role]
		cur = append(cur, evs...)
		sort.SliceStable(cur, func(i, j int) bool { return cur[i].Tick < cur[j].Tick })
		ms.stream.Tracks[role] = cur
	}

	if len(s.Tracks) == 1 {
		_, evs, _ := convertTrack(s.Tracks[0])
		add(event.RoleBeat, evs)
		add(event.RoleGuitar, evs)
		return ms
	}

	for _, tr := range s.Tracks {
		name, evs, timed := convertTrack(tr)
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "PART GUITAR", "PART_GUITAR", "T1 GEMS", "PART LEAD":
			add(event.RoleGuitar, evs)
		case "PART GUITAR GHL":
			ms.guitarSix = true
			add(event.RoleGuitar, evs)
		case "PART BASS", "PART_BASS", "PART RHYTHM", "PART_RHYTHM":
			add(event.RoleBass, evs)
		case "PART BASS GHL":
			ms.bassSix = true
			add(event.RoleBass, evs)
		case "PART DRUMS", "PART_DRUMS", "BAND DRUMS":
			ms.rules = rbRules
			add(event.RoleDrums, evs)
		case "PART VOCALS", "PART_VOCALS", "HARM1", "HARM2", "HARM3":
			ms.rules = rbRules
			add(event.RoleVocals, evs)
		case "EVENTS":
			add(event.RoleEvents, evs)
		case "VENUE":
			add(event.RoleVenue, evs)
		case "BEAT":
			add(event.RoleBeat, evs)
		default:
			if timed {
				add(event.RoleBeat, evs)
			}
		}
	}
	return ms
}

var midiDifficultyBase = map[song.Difficulty]int{
	song.DifficultyBeginner:  60,
	song.DifficultyEasy:      60,
	song.DifficultyMedium:    72,
	song.DifficultyHard:      84,
	song.DifficultyChallenge: 96,
}

// difficultyWindow returns the pitch range holding one difficulty's
// notes. Six-fret charts start two pitches lower to fit the extra fret
// and the open-note lane.
func difficultyWindow(d song.Difficulty, sixFret bool) (low, high int) {
	base, ok := midiDifficultyBase[d]
	if !ok {
		base = 96
	}
	high = base + 6
	if sixFret {
		return base - 2, high
	}
	return base, high
}

var sysexDifficultyCode = map[song.Difficulty]byte{
	song.DifficultyBeginner:  0x00,
	song.DifficultyEasy:      0x00,
	song.DifficultyMedium:    0x01,
	song.DifficultyHard:      0x02,
	song.DifficultyChallenge: 0x03,
}

// translateSysex decodes a phase-shift style payload into a section
// toggle marker, MarkerNone when the payload is not ours. Payloads
// arrive with or without the framing bytes depending on the writer.
func translateSysex(data []byte, d song.Difficulty) event.MarkerType {
	if len(data) > 0 && data[0] == 0xF0 {
		data = data[1:]
	}
	if len(data) > 0 && data[len(data)-1] == 0xF7 {
		data = data[:len(data)-1]
	}
	if len(data) < 7 {
		return event.MarkerNone
	}
	if data[0] != 0x50 || data[1] != 0x53 || data[2] != 0x00 || data[3] != 0x00 {
		return event.MarkerNone
	}

	on := data[6] == 0x01
	off := data[6] == 0x00
	if !on && !off {
		return event.MarkerNone
	}

	switch {
	case data[4] == 0xFF && data[5] == 0x04:
		if on {
			return event.MarkerTapOn
		}
		return event.MarkerTapOff
	case data[5] == 0x01 && data[4] == sysexDifficultyCode[d]:
		if on {
			return event.MarkerOpenOn
		}
		return event.MarkerOpenOff
	}
	return event.MarkerNone
}

// ghrbState is the classifier's running state over one difficulty.
type ghrbState struct {
	prevMark       []int
	prevTrack      int
	lastForcedHopo int
	lastForcedGem  int
	lastChordRow   int
	inTap          bool
	inOpen         bool
}

func newGHRBState(cols int) *ghrbState {
	st := &ghrbState{
		prevMark:       make([]int, cols),
		prevTrack:      -1,
		lastForcedHopo: -1,
		lastForcedGem:  -1,
		lastChordRow:   -1,
	}
	for i := range st.prevMark {
		st.prevMark[i] = -1
	}
	return st
}

func (st *ghrbState) checkHopo(col, tick, window int, rules hopoRules) bool {
	if st.lastForcedGem >= 0 && st.lastForcedGem == tick {
		return false
	}
	if st.lastForcedHopo >= 0 && st.lastForcedHopo == tick {
		return true
	}
	if st.lastChordRow >= 0 && st.lastChordRow == tick {
		return false
	}

	hopo := false
	prevNoteMark := -1
	for k, mark := range st.prevMark {
		if mark < 0 {
			continue
		}
		if k != col && tick-mark <= window {
			hopo = true
		}
		if mark > prevNoteMark {
			prevNoteMark = mark
		}
	}
	// a fret repeated straight after a chord containing it is strummed
	if rules == rbRules && st.prevTrack >= 0 &&
		st.prevMark[col] >= 0 && st.prevMark[col] == prevNoteMark {
		hopo = false
	}
	return hopo
}

type ghrbChart struct {
	grid       *note.Grid
	state      *ghrbState
	cols       int
	resolution int
	window     int
	rules      hopoRules
}

func (c *ghrbChart) row(tick int) int {
	return note.BeatToRow(float64(tick) / float64(c.resolution))
}

// addNote places one sustained pitch-window note. The marker lanes above
// the frets rewrite whatever already sits on their row instead of adding
// anything themselves.
func (c *ghrbChart) addNote(idx, startTick, endTick int) {
	// short sustains are authoring noise; long ones release a little
	// early so the fret is free for the next note
	realEnd := startTick
	if endTick-startTick > c.resolution/2 {
		realEnd = endTick - c.resolution/8
	}

	col := idx
	if c.cols == 7 && col < 7 {
		col--
	}

	st := c.state
	r := c.row(startTick)
	endRow := c.row(realEnd)

	forcedHopo := (c.cols == 6 && col == 5) || (c.cols == 7 && col == 7)
	forcedGem := (c.cols == 6 && col == 6) || (c.cols == 7 && col == 8)

	switch {
	case forcedHopo:
		st.lastForcedHopo = startTick
		taps := c.grid.NotesAtRow(r)
		highest := -1
		for t := range taps {
			if !taps[t].IsEmpty() {
				highest = t
			}
		}
		if highest < 0 {
			return
		}
		// a forced chord collapses to a hammer-on on its highest fret
		for t := range taps {
			if t != highest && !taps[t].IsEmpty() {
				c.grid.SetNote(t, r, note.Note{})
			}
		}
		c.grid.Place(highest, r, r+taps[highest].Duration, note.CategoryHopo)

	case forcedGem:
		st.lastForcedGem = startTick
		taps := c.grid.NotesAtRow(r)
		for t := range taps {
			if !taps[t].IsEmpty() {
				c.grid.Place(t, r, r+taps[t].Duration, note.CategoryGem)
			}
		}

	default:
		if st.inOpen || (col == -1 && c.cols == 7) {
			col = c.cols - 1
		}
		if col < 0 || col >= c.cols {
			return
		}

		if st.inTap {
			c.grid.Place(col, r, endRow, note.CategoryTap)
		} else {
			taps := c.grid.NotesAtRow(r)
			highest := -1
			for t := range taps {
				if !taps[t].IsEmpty() {
					highest = t
				}
			}
			if highest >= 0 {
				wasHopo := taps[highest].Kind.IsHopo()
				if st.lastForcedHopo == startTick {
					// forcing already collapsed this chord; only a
					// higher fret may replace the survivor
					if col < highest {
						return
					}
					c.grid.SetNote(highest, r, note.Note{})
					cat := note.CategoryGem
					if wasHopo {
						cat = note.CategoryHopo
					}
					c.grid.Place(col, r, endRow, cat)
				} else {
					if wasHopo {
						c.grid.Place(highest, r, r+taps[highest].Duration, note.CategoryGem)
					}
					c.grid.Place(col, r, endRow, note.CategoryGem)
				}
				st.lastChordRow = startTick
			} else {
				cat := note.CategoryGem
				if st.checkHopo(col, startTick, c.window, c.rules) {
					cat = note.CategoryHopo
				}
				c.grid.Place(col, r, endRow, cat)
			}
		}
		st.prevMark[col] = startTick
		st.prevTrack = col
	}
}

// getGHRBNotes classifies one instrument track at one difficulty.
func getGHRBNotes(evs []event.Event, d song.Difficulty, resolution, window int, rules hopoRules, sixFret bool) *note.Grid {
	cols := 6
	if sixFret {
		cols = 7
	}
	low, high := difficultyWindow(d, sixFret)

	chart := &ghrbChart{
		grid:       note.NewGrid(cols),
		state:      newGHRBState(cols),
		cols:       cols,
		resolution: resolution,
		window:     window,
		rules:      rules,
	}

	inProgress := make([]int, high-low+1)
	for i := range inProgress {
		inProgress[i] = -1
	}

	for _, ev := range evs {
		switch ev.Kind {
		case event.Sysex:
			switch translateSysex(ev.Data, d) {
			case event.MarkerTapOn:
				chart.state.inTap = true
			case event.MarkerTapOff:
				chart.state.inTap = false
			case event.MarkerOpenOn:
				chart.state.inOpen = true
			case event.MarkerOpenOff:
				chart.state.inOpen = false
			}
		case event.NoteOn:
			if ev.Pitch < low || ev.Pitch > high {
				continue
			}
			idx := ev.Pitch - low
			if ev.Velocity == 0 {
				// running-status note-off
				if inProgress[idx] >= 0 && ev.Tick > inProgress[idx] {
					chart.addNote(idx, inProgress[idx], ev.Tick)
				}
				inProgress[idx] = -1
				continue
			}
			if inProgress[idx] < 0 {
				inProgress[idx] = ev.Tick
			}
		case event.NoteOff:
			if ev.Pitch < low || ev.Pitch > high {
				continue
			}
			idx := ev.Pitch - low
			if inProgress[idx] >= 0 && ev.Tick > inProgress[idx] {
				chart.addNote(idx, inProgress[idx], ev.Tick)
			}
			inProgress[idx] = -1
		}
	}
	return chart.grid
}

func parseBeatTrack(td *timing.Data, evs []event.Event, resolution int) {
	for _, ev := range evs {
		switch ev.Kind {
		case event.Tempo:
			td.AddBPMSegment(timing.BPMSegment{
				Beat: float64(ev.Tick) / float64(resolution),
				BPM:  ev.BPM,
			})
		case event.TimeSignature:
			den := ev.Denominator
			if den == 0 {
				den = 4
			}
			td.AddTimeSignatureSegment(timing.TimeSignatureSegment{
				Row:         chartRow(ev.Tick, resolution),
				Numerator:   ev.Numerator,
				Denominator: den,
			})
		}
	}
}

func parseEventsTrack(td *timing.Data, evs []event.Event, resolution int) {
	for _, ev := range evs {
		if ev.Kind != event.Text && ev.Kind != event.Lyric {
			continue
		}
		label, ok := sectionLabel(ev.Text)
		if !ok {
			continue
		}
		td.AddLabelSegment(timing.LabelSegment{
			Row:   chartRow(ev.Tick, resolution),
			Label: label,
		})
	}
}

// sectionLabel extracts "Guitar Solo" from "[section Guitar Solo]" or
// "[prc_guitar_solo]".
func sectionLabel(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "[") || !strings.HasSuffix(text, "]") {
		return "", false
	}
	text = strings.Trim(text, "[]")
	switch {
	case strings.HasPrefix(text, "section "):
		return strings.TrimPrefix(text, "section "), true
	case strings.HasPrefix(text, "prc_"):
		return strings.ReplaceAll(strings.TrimPrefix(text, "prc_"), "_", " "), true
	}
	return "", false
}

// getMusicFiles maps the loose ogg stems next to the chart onto the song.
func getMusicFiles(dir string, out *song.Song) {
	entries, err := os.ReadDir(dir)
	if nil != err {
		return
	}
	var oggs []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".ogg") {
			oggs = append(oggs, e.Name())
		}
	}
	if len(oggs) == 1 {
		out.MusicFile = oggs[0]
		return
	}
	for _, name := range oggs {
		switch strings.ToLower(name) {
		case "song.ogg", "album.ogg":
			out.MusicFile = name
		case "guitar.ogg":
			out.InstrumentTrackFiles[song.InstrumentTrackGuitar] = name
		case "rhythm.ogg", "bass.ogg":
			out.InstrumentTrackFiles[song.InstrumentTrackBass] = name
		}
	}
	// a guitar stem with no backing track is the whole mix
	if "" == out.MusicFile {
		out.MusicFile = out.InstrumentTrackFiles[song.InstrumentTrackGuitar]
		out.InstrumentTrackFiles[song.InstrumentTrackGuitar] = ""
	}
}

var midiChartedDifficulties = []song.Difficulty{
	song.DifficultyEasy,
	song.DifficultyMedium,
	song.DifficultyHard,
	song.DifficultyChallenge,
}

func (p *MIDILoader) LoadFromDir(dir string, out *song.Song) bool {
	path := findFile(dir, ".mid")
	if "" == path {
		return false
	}
	s, err := readSMF(path)
	if nil != err {
		return false
	}

	ms := organizeMIDI(s)
	resolution := ms.stream.Resolution
	cfg := loadSongINI(dir)
	window := midiHopoWindow(resolution, cfg)

	out.SongFileName = path
	out.Title = cfg.name
	if "" == out.Title {
		out.Title = filepath.Base(dir)
	}
	out.Artist = cfg.artist
	out.Credit = cfg.charter

	parseBeatTrack(&out.Timing, ms.stream.Track(event.RoleBeat), resolution)
	parseEventsTrack(&out.Timing, ms.stream.Track(event.RoleEvents), resolution)
	getMusicFiles(dir, out)

	if WriteLyrics && ms.stream.HasTrack(event.RoleVocals) && "" == findFile(dir, ".lrc") {
		lrc := filepath.Join(dir, "lyrics.lrc")
		if writeLyricsFile(lrc, &out.Timing, resolution, ms.stream.Track(event.RoleVocals)) {
			out.LyricsFile = lrc
		}
	}

	type instrument struct {
		role   event.TrackRole
		six    bool
		solo   song.StepsType
		solo6  song.StepsType
		credit string
	}
	instruments := []instrument{
		{event.RoleGuitar, ms.guitarSix, song.StepsTypeGuitarSolo, song.StepsTypeGuitarSolo6, "Guitar"},
		{event.RoleBass, ms.bassSix, song.StepsTypeGuitarBackup, song.StepsTypeGuitarBackup6, "Bass"},
	}

	loaded := false
	for _, inst := range instruments {
		if !ms.stream.HasTrack(inst.role) {
			continue
		}
		evs := ms.stream.Track(inst.role)
		for _, d := range midiChartedDifficulties {
			grid := getGHRBNotes(evs, d, resolution, window, ms.rules, inst.six)
			if grid.LastRow() < 0 {
				continue
			}
			st := out.CreateSteps()
			st.Type = inst.solo
			if inst.six {
				st.Type = inst.solo6
			}
			st.TypeStr = st.Type.Info().Name
			st.ChartStyle = inst.credit
			st.Difficulty = d
			st.Description = cfg.charter
			st.Filename = path
			st.SavedToDisk = true
			st.SetNoteData(grid)
			st.TidyUpData()
			out.AddSteps(st)
			loaded = true
		}
	}
	return loaded
}

func (p *MIDILoader) LoadNoteData(path string, out *song.Steps) bool {
	s, err := readSMF(path)
	if nil != err {
		return false
	}
	ms := organizeMIDI(s)
	resolution := ms.stream.Resolution
	cfg := loadSongINI(filepath.Dir(path))
	window := midiHopoWindow(resolution, cfg)

	role := event.RoleGuitar
	six := ms.guitarSix
	switch out.Type {
	case song.StepsTypeGuitarSolo, song.StepsTypeGuitarSolo6:
	case song.StepsTypeGuitarBackup, song.StepsTypeGuitarBackup6:
		role = event.RoleBass
		six = ms.bassSix
	default:
		return false
	}
	if !ms.stream.HasTrack(role) {
		return false
	}
	out.SetNoteData(getGHRBNotes(ms.stream.Track(role), out.Difficulty, resolution, window, ms.rules, six))
	return true
}

var _ song.Loader = (*MIDILoader)(nil)
