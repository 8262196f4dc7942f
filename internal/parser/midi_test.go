package parser

import (
	"os"
	"path/filepath"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"git.lost.host/meutraa/strum/internal/event"
	"git.lost.host/meutraa/strum/internal/note"
	"git.lost.host/meutraa/strum/internal/song"
)

func TestTranslateSysex(t *testing.T) {
	tap := []byte{0x50, 0x53, 0x00, 0x00, 0xFF, 0x04, 0x01}
	tapOff := []byte{0x50, 0x53, 0x00, 0x00, 0xFF, 0x04, 0x00}
	openExpert := []byte{0x50, 0x53, 0x00, 0x00, 0x03, 0x01, 0x01}
	openExpertOff := []byte{0x50, 0x53, 0x00, 0x00, 0x03, 0x01, 0x00}
	framed := append(append([]byte{0xF0}, openExpert...), 0xF7)

	for _, tc := range []struct {
		data     []byte
		diff     song.Difficulty
		expected event.MarkerType
	}{
		{tap, song.DifficultyChallenge, event.MarkerTapOn},
		{tap, song.DifficultyEasy, event.MarkerTapOn},
		{tapOff, song.DifficultyChallenge, event.MarkerTapOff},
		{openExpert, song.DifficultyChallenge, event.MarkerOpenOn},
		{openExpertOff, song.DifficultyChallenge, event.MarkerOpenOff},
		{framed, song.DifficultyChallenge, event.MarkerOpenOn},
		// open markers are per difficulty
		{openExpert, song.DifficultyEasy, event.MarkerNone},
		{[]byte{0x01, 0x02}, song.DifficultyChallenge, event.MarkerNone},
		{[]byte{0x50, 0x53, 0x00, 0x00, 0xFF, 0x04, 0x02}, song.DifficultyChallenge, event.MarkerNone},
		{[]byte{0x51, 0x53, 0x00, 0x00, 0x03, 0x01, 0x01}, song.DifficultyChallenge, event.MarkerNone},
	} {
		if got := translateSysex(tc.data, tc.diff); got != tc.expected {
			t.Log("data", tc.data, "diff", tc.diff, "got", got, "expected", tc.expected)
			t.Fail()
		}
	}
}

func TestDifficultyWindow(t *testing.T) {
	for _, tc := range []struct {
		diff      song.Difficulty
		six       bool
		low, high int
	}{
		{song.DifficultyEasy, false, 60, 66},
		{song.DifficultyMedium, false, 72, 78},
		{song.DifficultyHard, false, 84, 90},
		{song.DifficultyChallenge, false, 96, 102},
		{song.DifficultyEasy, true, 58, 66},
		{song.DifficultyChallenge, true, 94, 102},
	} {
		low, high := difficultyWindow(tc.diff, tc.six)
		if low != tc.low || high != tc.high {
			t.Log(tc.diff, "six", tc.six, "got", low, high)
			t.Fail()
		}
	}
}

func noteSpan(tick, pitch, length int) []event.Event {
	return []event.Event{
		{Tick: tick, Kind: event.NoteOn, Pitch: pitch, Velocity: 100},
		{Tick: tick + length, Kind: event.NoteOff, Pitch: pitch},
	}
}

func TestGHRBNotesWindowRule(t *testing.T) {
	var evs []event.Event
	evs = append(evs, noteSpan(0, 96, 10)...)
	evs = append(evs, noteSpan(160, 97, 10)...)  // inside the window
	evs = append(evs, noteSpan(1000, 98, 10)...) // outside

	g := getGHRBNotes(evs, song.DifficultyChallenge, 480, 170, ghRules, false)

	if n := g.GetNote(0, 0); n.Kind != note.Gem {
		t.Log("first note", n)
		t.Fail()
	}
	if n := g.GetNote(1, 16); n.Kind != note.Hopo {
		t.Log("window note", n)
		t.Fail()
	}
	if n := g.GetNote(2, 100); n.Kind != note.Gem {
		t.Log("distant note", n)
		t.Fail()
	}
}

func TestGHRBNotesVelocityZeroIsOff(t *testing.T) {
	evs := []event.Event{
		{Tick: 0, Kind: event.NoteOn, Pitch: 96, Velocity: 100},
		{Tick: 300, Kind: event.NoteOn, Pitch: 96, Velocity: 0},
	}
	g := getGHRBNotes(evs, song.DifficultyChallenge, 480, 170, ghRules, false)

	// 300 ticks exceeds the half-beat hold threshold, minus the release
	n := g.GetNote(0, 0)
	if n.Kind != note.GemHold || n.Duration != note.BeatToRow(240.0/480) {
		t.Log("got", n)
		t.Fail()
	}
}

func TestGHRBNotesShortSustainCollapses(t *testing.T) {
	evs := noteSpan(0, 96, 200)
	g := getGHRBNotes(evs, song.DifficultyChallenge, 480, 170, ghRules, false)
	if n := g.GetNote(0, 0); n.Kind != note.Gem || n.Duration != 0 {
		t.Log("got", n)
		t.Fail()
	}
}

func TestGHRBNotesChordsAreStrums(t *testing.T) {
	var evs []event.Event
	evs = append(evs, noteSpan(0, 96, 10)...)
	evs = append(evs, noteSpan(100, 97, 10)...) // would be a hammer-on
	evs = append(evs, noteSpan(100, 98, 10)...) // chord partner
	g := getGHRBNotes(evs, song.DifficultyChallenge, 480, 170, ghRules, false)

	r := note.BeatToRow(100.0 / 480)
	if n := g.GetNote(1, r); n.Kind != note.Gem {
		t.Log("column 1", n)
		t.Fail()
	}
	if n := g.GetNote(2, r); n.Kind != note.Gem {
		t.Log("column 2", n)
		t.Fail()
	}
}

func TestGHRBNotesTapSection(t *testing.T) {
	evs := []event.Event{
		{Tick: 0, Kind: event.Sysex, Data: []byte{0x50, 0x53, 0x00, 0x00, 0xFF, 0x04, 0x01}},
	}
	evs = append(evs, noteSpan(0, 96, 10)...)
	g := getGHRBNotes(evs, song.DifficultyChallenge, 480, 170, ghRules, false)
	if n := g.GetNote(0, 0); n.Kind != note.Tap {
		t.Log("got", n)
		t.Fail()
	}
}

func TestGHRBNotesOpenSection(t *testing.T) {
	evs := []event.Event{
		{Tick: 0, Kind: event.Sysex, Data: []byte{0x50, 0x53, 0x00, 0x00, 0x03, 0x01, 0x01}},
	}
	evs = append(evs, noteSpan(0, 96, 10)...)
	g := getGHRBNotes(evs, song.DifficultyChallenge, 480, 170, ghRules, false)
	if n := g.GetNote(5, 0); n.Kind != note.Gem {
		t.Log("expected open note on the last column, got", n)
		t.Fail()
	}
}

func TestGHRBNotesForcedHopoMarker(t *testing.T) {
	var evs []event.Event
	evs = append(evs, noteSpan(1000, 96, 10)...)  // far from anything, a strum
	evs = append(evs, noteSpan(1000, 101, 20)...) // forced hammer-on lane
	g := getGHRBNotes(evs, song.DifficultyChallenge, 480, 170, ghRules, false)

	r := note.BeatToRow(1000.0 / 480)
	if n := g.GetNote(0, r); n.Kind != note.Hopo {
		t.Log("got", n)
		t.Fail()
	}
}

func TestGHRBNotesRBChordFollow(t *testing.T) {
	var evs []event.Event
	evs = append(evs, noteSpan(0, 96, 10)...)
	evs = append(evs, noteSpan(0, 97, 10)...)
	evs = append(evs, noteSpan(100, 97, 10)...) // same fret straight after its chord

	g := getGHRBNotes(evs, song.DifficultyChallenge, 480, 170, rbRules, false)
	if n := g.GetNote(1, note.BeatToRow(100.0/480)); n.Kind != note.Gem {
		t.Log("got", n)
		t.Fail()
	}

	g = getGHRBNotes(evs, song.DifficultyChallenge, 480, 170, ghRules, false)
	if n := g.GetNote(1, note.BeatToRow(100.0/480)); n.Kind != note.Hopo {
		t.Log("under the older rules got", n)
		t.Fail()
	}
}

func writeFixtureMIDI(t *testing.T, dir string, trackName string) string {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)

	var beat smf.Track
	beat.Add(0, smf.MetaTrackSequenceName("tempo"))
	beat.Add(0, smf.MetaTempo(120))
	beat.Add(0, smf.MetaMeter(4, 4))
	beat.Close(0)
	s.Add(beat)

	var guitar smf.Track
	guitar.Add(0, smf.MetaTrackSequenceName(trackName))
	guitar.Add(0, midi.NoteOn(0, 96, 100))
	guitar.Add(60, midi.NoteOff(0, 96))
	guitar.Add(100, midi.NoteOn(0, 97, 100))
	guitar.Add(60, midi.NoteOff(0, 97))
	guitar.Close(0)
	s.Add(guitar)

	path := filepath.Join(dir, "notes.mid")
	if err := s.WriteFile(path); nil != err {
		t.Fatal(err)
	}
	return path
}

func TestMIDILoadFromDir(t *testing.T) {
	dir := t.TempDir()
	writeFixtureMIDI(t, dir, "PART GUITAR")

	s := &song.Song{Dir: dir}
	if !(&MIDILoader{}).LoadFromDir(dir, s) {
		t.Fatal("unable to load fixture midi")
	}

	if bpms := s.Timing.BPMSegments(); len(bpms) != 1 || bpms[0].BPM != 120 {
		t.Log("bpms", bpms)
		t.Fail()
	}

	steps := s.Steps()
	if len(steps) != 1 {
		t.Fatal("expected only the charted difficulty, got", len(steps))
	}
	st := steps[0]
	if st.Type != song.StepsTypeGuitarSolo || st.Difficulty != song.DifficultyChallenge {
		t.Log("type", st.Type, "difficulty", st.Difficulty)
		t.Fail()
	}

	g := st.GetNoteData()
	if n := g.GetNote(0, 0); n.Kind != note.Gem {
		t.Log("first note", n)
		t.Fail()
	}
	if n := g.GetNote(1, 16); n.Kind != note.Hopo {
		t.Log("second note", n)
		t.Fail()
	}
}

func TestMIDILoadNoteData(t *testing.T) {
	dir := t.TempDir()
	path := writeFixtureMIDI(t, dir, "PART BASS")

	s := &song.Song{}
	st := s.CreateSteps()
	st.Type = song.StepsTypeGuitarBackup
	st.Difficulty = song.DifficultyChallenge
	if !(&MIDILoader{}).LoadNoteData(path, st) {
		t.Fatal("unable to load note data")
	}
	if len(st.GetNoteData().OccupiedRows()) != 2 {
		t.Fatal("wrong note count")
	}
}

func TestMIDILoadSingleTrack(t *testing.T) {
	dir := t.TempDir()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)

	// the oldest rips put the tempo map and the chart in one track with
	// whatever name the authoring tool felt like
	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName("whatever"))
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, midi.NoteOn(0, 96, 100))
	tr.Add(60, midi.NoteOff(0, 96))
	tr.Add(100, midi.NoteOn(0, 97, 100))
	tr.Add(60, midi.NoteOff(0, 97))
	tr.Close(0)
	s.Add(tr)
	if err := s.WriteFile(filepath.Join(dir, "notes.mid")); nil != err {
		t.Fatal(err)
	}

	out := &song.Song{Dir: dir}
	if !(&MIDILoader{}).LoadFromDir(dir, out) {
		t.Fatal("unable to load single-track midi")
	}
	if bpms := out.Timing.BPMSegments(); len(bpms) != 1 || bpms[0].BPM != 120 {
		t.Log("bpms", bpms)
		t.Fail()
	}

	steps := out.Steps()
	if len(steps) != 1 {
		t.Fatal("expected one guitar chart, got", len(steps))
	}
	g := steps[0].GetNoteData()
	if n := g.GetNote(0, 0); n.Kind != note.Gem {
		t.Log("first note", n)
		t.Fail()
	}
	if n := g.GetNote(1, 16); n.Kind != note.Hopo {
		t.Log("second note", n)
		t.Fail()
	}
}

func TestMIDILoadTruncated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.mid")
	// a valid header promising tracks the file does not hold
	data := []byte{
		0x4d, 0x54, 0x68, 0x64, 0x00, 0x00, 0x00, 0x06,
		0x00, 0x01, 0x8a, 0x02, 0xaa,
	}
	if err := os.WriteFile(path, data, 0644); nil != err {
		t.Fatal(err)
	}

	if s, err := readSMF(path); nil == err || nil != s {
		t.Log("smf", s, "err", err)
		t.Fail()
	}
	if (&MIDILoader{}).LoadFromDir(dir, &song.Song{Dir: dir}) {
		t.Fatal("expected the truncated file to fail loading")
	}
}
