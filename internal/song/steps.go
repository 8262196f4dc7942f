package song

import (
	"crypto/sha256"
	"encoding/binary"
	"log"
	"path/filepath"
	"strings"

	"git.lost.host/meutraa/strum/internal/note"
	"git.lost.host/meutraa/strum/internal/timing"
)

// NumPlayers bounds the per-player cached radar values.
const NumPlayers = 2

// Steps is a single chart of a song. There can be too much note data to
// keep every chart decompressed, so most records hold only the compact
// text encoding, or nothing at all while the data is still on disk.
// Decompression happens on first read access and Compress reclaims the
// memory afterwards. Callers serialize access; there is no locking here.
type Steps struct {
	song *Song
	id   int

	// parentID >= 0 marks this record autogenerated: it has no data of
	// its own and derives everything from the parent through a
	// deterministic transform. Resolved through the song arena, never a
	// raw pointer.
	parentID int

	Type    StepsType
	TypeStr string

	Difficulty  Difficulty
	Description string
	ChartStyle  string
	Credit      string
	Meter       int

	Filename          string
	MusicFile         string
	SavedToDisk       bool
	LoadedFromProfile bool

	// Per-steps timing override; nil falls back to the song's.
	Timing *timing.Data

	displayBPM      DisplayBPM
	specifiedBPMMin float64
	specifiedBPMMax float64

	// representation state
	grid       *note.Grid
	gridFilled bool
	compressed string

	// caches, invalidated by SetNoteData
	hash        uint64
	radar       [NumPlayers]note.RadarValues
	radarLoaded bool
}

func (st *Steps) ID() int         { return st.id }
func (st *Steps) Song() *Song     { return st.song }
func (st *Steps) IsAutogen() bool { return st.parentID >= 0 }

// Parent resolves the autogen parent through the song arena.
func (st *Steps) Parent() *Steps {
	if st.parentID < 0 || st.song == nil {
		return nil
	}
	return st.song.StepsByID(st.parentID)
}

// real returns the record the data actually belongs to.
func (st *Steps) real() *Steps {
	if p := st.Parent(); p != nil {
		return p
	}
	return st
}

func (st *Steps) GetTimingData() *timing.Data {
	if st.Timing != nil && !st.Timing.Empty() {
		return st.Timing
	}
	if st.song != nil {
		return &st.song.Timing
	}
	return st.Timing
}

func (st *Steps) SetDisplayBPM(d DisplayBPM)     { st.displayBPM = d }
func (st *Steps) GetDisplayBPM() DisplayBPM      { return st.displayBPM }
func (st *Steps) SetSpecifiedBPM(lo, hi float64) { st.specifiedBPMMin, st.specifiedBPMMax = lo, hi }

// GetDisplayBpms returns the BPM range to show for this chart.
func (st *Steps) GetDisplayBpms() (minBPM, maxBPM float64) {
	if st.displayBPM == DisplayBPMSpecified {
		return st.specifiedBPMMin, st.specifiedBPMMax
	}
	return st.GetTimingData().ActualBPM()
}

// IsNoteDataEmpty reports whether there is nothing in memory yet.
func (st *Steps) IsNoteDataEmpty() bool {
	return st.compressed == "" && !st.gridFilled
}

// SetNoteData replaces the live grid. The record detaches from any
// autogen parent and every cache is invalidated.
func (st *Steps) SetNoteData(g *note.Grid) {
	st.DeAutogen(false)
	st.grid = g.Copy()
	st.gridFilled = true
	st.compressed = ""
	st.hash = 0
}

// SetCompressed stores the compact text encoding without decoding it.
func (st *Steps) SetCompressed(data string) {
	st.grid = nil
	st.gridFilled = false
	st.compressed = data
	st.hash = 0
}

// GetCompressed returns the compact encoding, producing it from the live
// grid if needed. The encoding is cached.
func (st *Steps) GetCompressed() string {
	if st.compressed == "" {
		if !st.gridFilled {
			return ""
		}
		st.compressed = st.grid.Serialize()
	}
	return st.compressed
}

// GetNoteData decompresses on demand and returns a copy of the grid.
// Records with no data come back as an empty grid of the right width.
func (st *Steps) GetNoteData() *note.Grid {
	st.Decompress()
	if st.gridFilled {
		return st.grid.Copy()
	}
	return note.NewGrid(st.Type.NumTracks())
}

// loadFromFile dispatches to the registered loader for this record's
// file, honoring the documented fallbacks: ssc/ats fall back to the sm
// loader on a renamed path, edit tries ssc then sm.
func (st *Steps) loadFromFile() bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(st.Filename), "."))
	switch ext {
	case "", "ssc", "ats":
		if l := LoaderForExtension("ssc"); l != nil && l.LoadNoteData(st.Filename, st) {
			return true
		}
		// users edit the .sm and delete or break the .ssc; give them
		// some leeway and look for a replacement
		backup := strings.Replace(st.Filename, ".ssc", ".sm", 1)
		if l := LoaderForExtension("sm"); l != nil {
			return l.LoadNoteData(backup, st)
		}
		return false
	case "edit":
		if l := LoaderForExtension("ssc"); l != nil && l.LoadNoteData(st.Filename, st) {
			return true
		}
		if l := LoaderForExtension("sm"); l != nil {
			return l.LoadNoteData(st.Filename, st)
		}
		return false
	default:
		l := LoaderForExtension(ext)
		if l == nil {
			return false
		}
		return l.LoadNoteData(st.Filename, st)
	}
}

// Decompress brings the record to the live-grid state. Autogen records
// decompress the parent and apply their transform; on-disk records load
// the compressed form through the format loaders first.
func (st *Steps) Decompress() {
	if st.gridFilled {
		return
	}

	if p := st.Parent(); p != nil {
		parentGrid := p.GetNoteData()
		newTracks := st.Type.NumTracks()
		switch {
		case st.Type.IsLights():
			st.grid = note.LoadTransformedLights(parentGrid, newTracks)
		case st.Type.IsKickbox():
			// note count makes a useful "random" input: different
			// parents come out different, the same parent is stable
			seed := int(p.GetRadarValues(0)[note.RadarTapsAndHolds])
			st.grid = note.AutogenProcedural(parentGrid, newTracks, seed)
		default:
			st.grid = note.LoadTransformedSlidingWindow(parentGrid, newTracks)
			note.DeStretch(st.grid)
		}
		st.gridFilled = true
		return
	}

	if st.Filename != "" && st.compressed == "" {
		// data is on disk and not in memory yet
		if !st.loadFromFile() {
			log.Printf("unable to load the %v chart's note data from %q", st.Difficulty, st.Filename)
			return
		}
	}

	if st.compressed == "" {
		// no data is no data
		return
	}

	composite := st.Type.Info().Category == CategoryRoutine
	st.grid = note.Deserialize(st.compressed, st.Type.NumTracks(), composite)
	st.gridFilled = true
}

// Compress drops the record back to its most compact resident form.
func (st *Steps) Compress() {
	// lights charts stay live; they are regenerated constantly
	if st.Type.IsLights() {
		st.compressed = ""
		return
	}

	// still in use in the editor
	if InStepEditor {
		return
	}

	if st.Filename != "" && !st.LoadedFromProfile {
		// disk remains the source of truth; clear everything resident
		st.grid = nil
		st.gridFilled = false
		st.compressed = ""
		return
	}

	if st.compressed == "" {
		if !st.gridFilled {
			return
		}
		st.compressed = st.grid.Serialize()
	}
	st.grid = nil
	st.gridFilled = false
}

// GetHash is a stable hash of the compact encoding. Autogen records
// answer with the parent's hash; records with no data answer 0. The
// value is cached until SetNoteData invalidates it.
func (st *Steps) GetHash() uint64 {
	if p := st.Parent(); p != nil {
		return p.GetHash()
	}
	if st.hash != 0 {
		return st.hash
	}
	data := st.GetCompressed()
	if data == "" {
		return 0
	}
	sum := sha256.Sum256([]byte(data))
	st.hash = binary.BigEndian.Uint64(sum[:8])
	return st.hash
}

// GetRadarValues returns the cached per-player radar values.
func (st *Steps) GetRadarValues(player int) note.RadarValues {
	r := st.real()
	if player < 0 || player >= NumPlayers {
		player = 0
	}
	return r.radar[player]
}

// SetCachedRadarValues installs values loaded from a persisted cache.
// The next CalculateRadarValues call is skipped once so the loaded values
// survive the tidy pass.
func (st *Steps) SetCachedRadarValues(v [NumPlayers]note.RadarValues) {
	st.DeAutogen(false)
	st.radar = v
	st.radarLoaded = true
}

// CalculateRadarValues recomputes the per-player radar values from the
// note data. Autogen records defer to their parent.
func (st *Steps) CalculateRadarValues(musicLengthSeconds float64) {
	if st.IsAutogen() {
		return
	}
	if st.radarLoaded {
		st.radarLoaded = false
		return
	}

	g := st.GetNoteData()
	for pn := range st.radar {
		st.radar[pn].Zero()
	}

	switch {
	case g.IsComposite():
		parts := note.SplitComposite(g)
		for pn := 0; pn < len(parts) && pn < NumPlayers; pn++ {
			st.radar[pn] = parts[pn].CalculateRadarValues(musicLengthSeconds)
		}
	case st.Type.Info().Category == CategoryCouple:
		tracks := g.NumTracks() / 2
		p1 := g.Copy()
		p1.SetNumTracks(tracks)
		st.radar[0] = p1.CalculateRadarValues(musicLengthSeconds)
		note.ShiftTracks(g, tracks)
		g.SetNumTracks(tracks)
		st.radar[1] = g.CalculateRadarValues(musicLengthSeconds)
	default:
		st.radar[0] = g.CalculateRadarValues(musicLengthSeconds)
		for pn := 1; pn < NumPlayers; pn++ {
			st.radar[pn] = st.radar[0]
		}
	}
}

// PredictMeter estimates a numeric meter from the radar values with a
// fixed linear model plus two nonlinear cross terms.
func (st *Steps) PredictMeter() float64 {
	meter := 0.775

	radarCoeffs := [...]float64{10.1, 5.27, -0.905, -1.10, 2.86}
	rv := st.GetRadarValues(0)
	for r, coeff := range radarCoeffs {
		meter += rv[r] * coeff
	}

	difficultyCoeffs := map[Difficulty]float64{
		DifficultyBeginner:  -0.877,
		DifficultyEasy:      -0.877,
		DifficultyMedium:    0,
		DifficultyHard:      0.722,
		DifficultyChallenge: 0.722,
	}
	meter += difficultyCoeffs[st.Difficulty]

	sv := rv[note.RadarStream] * rv[note.RadarVoltage]
	chaosSquare := rv[note.RadarChaos] * rv[note.RadarChaos]
	meter += -6.35 * sv
	meter += -2.58 * chaosSquare
	if meter < 1 {
		meter = 1
	}
	return meter
}

// TidyUpData normalizes a freshly loaded record: canonical type name,
// difficulty inferred from the description or meter, meter predicted
// when unset.
func (st *Steps) TidyUpData() {
	if st.Type == StepsTypeInvalid {
		// Leave it invalid so the song can handle it specially; blindly
		// defaulting would silently delete unrecognized charts on save.
		name := ""
		if st.song != nil {
			name = st.song.SongFileName
		}
		log.Printf("detected steps with unknown style %q in %q", st.TypeStr, name)
	} else if st.TypeStr == "" {
		st.TypeStr = st.Type.String()
	}

	if st.Difficulty == DifficultyInvalid {
		st.Difficulty = ParseDifficulty(st.Description)
	}
	if st.Difficulty == DifficultyInvalid {
		switch {
		case st.Meter == 1:
			st.Difficulty = DifficultyBeginner
		case st.Meter <= 3:
			st.Difficulty = DifficultyEasy
		case st.Meter <= 6:
			st.Difficulty = DifficultyMedium
		default:
			st.Difficulty = DifficultyHard
		}
	}
	if st.Meter < 1 {
		st.Meter = int(st.PredictMeter())
	}
}

// AutogenFrom turns this record into a derived view of the parent.
func (st *Steps) AutogenFrom(parent *Steps, to StepsType) {
	st.parentID = parent.id
	st.song = parent.song
	st.Type = to
	st.TypeStr = to.String()
	st.Timing = parent.Timing
	st.grid = nil
	st.gridFilled = false
	st.compressed = ""
	st.hash = 0
}

// DeAutogen detaches from the parent, copying its descriptive fields so
// the record keeps looking the same. With copyNoteData the transformed
// grid is materialized first.
func (st *Steps) DeAutogen(copyNoteData bool) {
	p := st.Parent()
	if p == nil {
		st.parentID = -1
		return
	}
	if copyNoteData {
		st.Decompress()
	}
	st.Description = p.Description
	st.ChartStyle = p.ChartStyle
	st.Difficulty = p.Difficulty
	st.Meter = p.Meter
	st.Credit = p.Credit
	st.radar = p.radar
	st.parentID = -1
	if copyNoteData {
		st.Compress()
	}
}

// CopyFrom clones another record's data into this one, retargeted to a
// possibly different steps type.
func (st *Steps) CopyFrom(src *Steps, to StepsType, musicLengthSeconds float64) {
	st.Type = to
	st.TypeStr = to.String()
	g := src.GetNoteData()
	g.SetNumTracks(to.NumTracks())
	st.parentID = -1
	st.Timing = src.Timing
	st.song = src.song
	st.SetNoteData(g)
	st.Description = src.Description
	st.Difficulty = src.Difficulty
	st.Meter = src.Meter
	st.CalculateRadarValues(musicLengthSeconds)
}

// CreateBlank resets to an empty grid of the type's width.
func (st *Steps) CreateBlank(to StepsType) {
	st.Type = to
	st.TypeStr = to.String()
	st.SetNoteData(note.NewGrid(to.NumTracks()))
}

func (st *Steps) SetDifficultyAndDescription(d Difficulty, description string) {
	st.DeAutogen(false)
	st.Difficulty = d
	st.Description = description
}
