// Package event is the normalized timed-event stream the readers produce
// before classification. Both the MIDI reader and the .chart text reader
// emit these; the consumers never see source bytes.
package event

type Kind int

const (
	NoteOn Kind = iota
	NoteOff
	// Note carries an explicit duration, used by the text reader where a
	// line encodes start and length together.
	Note
	Tempo
	TimeSignature
	Text
	Lyric
	Marker
	// Sysex carries a raw payload whose meaning depends on the difficulty
	// being classified, so it is decoded by the consumer.
	Sysex
)

// MarkerType tags section-toggle markers decoded from sysex payloads or
// synthetic text-chart events.
type MarkerType int

const (
	MarkerNone MarkerType = iota
	MarkerTapOn
	MarkerTapOff
	MarkerOpenOn
	MarkerOpenOff
	// Row markers flag a single row rather than toggling a section.
	MarkerForcedRow
	MarkerTapRow
)

// Event is one element of a track's stream, ordered by Tick.
type Event struct {
	Tick int
	Kind Kind

	// NoteOn/NoteOff/Note
	Pitch    int
	Velocity int
	Length   int

	// Tempo
	BPM float64

	// TimeSignature
	Numerator   int
	Denominator int

	// Text/Lyric
	Text string

	// Marker
	Marker MarkerType

	// Sysex
	Data []byte
}

// TrackRole classifies what a source track is for.
type TrackRole int

const (
	RoleUnknown TrackRole = iota
	RoleBeat
	RoleGuitar
	RoleBass
	RoleDrums
	RoleVocals
	RoleEvents
	RoleVenue
)

var roleNames = map[TrackRole]string{
	RoleUnknown: "unknown",
	RoleBeat:    "beat",
	RoleGuitar:  "guitar",
	RoleBass:    "bass",
	RoleDrums:   "drums",
	RoleVocals:  "vocals",
	RoleEvents:  "events",
	RoleVenue:   "venue",
}

func (r TrackRole) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return "unknown"
}

// Stream is the consumer contract shared by both readers: per-role ordered
// event tracks plus the source resolution in ticks per beat.
type Stream struct {
	Resolution int
	Tracks     map[TrackRole][]Event
}

func NewStream(resolution int) *Stream {
	return &Stream{
		Resolution: resolution,
		Tracks:     map[TrackRole][]Event{},
	}
}

func (s *Stream) Track(role TrackRole) []Event {
	return s.Tracks[role]
}

func (s *Stream) HasTrack(role TrackRole) bool {
	return len(s.Tracks[role]) > 0
}
