package song

import (
	"path/filepath"

	"git.lost.host/meutraa/strum/internal/timing"
)

// InStepEditor is set by the editor while a chart is being worked on;
// Compress refuses to drop live note data while it is up.
var InStepEditor bool

// InstrumentTrack selects a per-instrument audio stem.
type InstrumentTrack int

const (
	InstrumentTrackGuitar InstrumentTrack = iota
	InstrumentTrackBass
	NumInstrumentTracks
)

// Song owns a chart collection and the song-wide timing data. It is also
// the arena the autogen parent ids resolve through, so a rebuilt
// collection can never leave a Steps pointing at freed data.
type Song struct {
	Title  string
	Artist string
	Credit string

	Dir          string
	SongFileName string

	MusicFile            string
	InstrumentTrackFiles [NumInstrumentTracks]string
	LyricsFile           string

	MusicSampleStartSeconds  float64
	MusicSampleLengthSeconds float64

	// Timing is the song-wide tempo map; individual Steps may carry
	// their own override.
	Timing timing.Data

	steps  []*Steps
	nextID int
}

// CreateSteps allocates a record owned by this song. It is not part of
// the collection until AddSteps.
func (s *Song) CreateSteps() *Steps {
	st := &Steps{
		song:     s,
		id:       -1,
		parentID: -1,
		Type:     StepsTypeInvalid,
	}
	return st
}

func (s *Song) AddSteps(st *Steps) {
	st.song = s
	st.id = s.nextID
	s.nextID++
	s.steps = append(s.steps, st)
}

func (s *Song) Steps() []*Steps {
	return s.steps
}

// StepsByID resolves an arena id; nil when the record is gone.
func (s *Song) StepsByID(id int) *Steps {
	for _, st := range s.steps {
		if st.id == id {
			return st
		}
	}
	return nil
}

// RemoveSteps drops a record from the collection. Children autogenerated
// from it will simply find no parent and decompress to nothing.
func (s *Song) RemoveSteps(st *Steps) {
	for i, cur := range s.steps {
		if cur == st {
			s.steps = append(s.steps[:i], s.steps[i+1:]...)
			return
		}
	}
}

// AssetPath resolves a song-relative asset file name.
func (s *Song) AssetPath(file string) string {
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(s.Dir, file)
}
