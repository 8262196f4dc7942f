package parser

import (
	"os"
	"strings"

	"git.lost.host/meutraa/strum/internal/note"
	"git.lost.host/meutraa/strum/internal/song"
	"git.lost.host/meutraa/strum/internal/timing"
)

// SMLoader reads .sm simfiles. Note data is kept in its packed text form
// and only expanded to a grid on demand.
type SMLoader struct{}

// SSCLoader reads .ssc files. The tag subset consumed here is shared with
// .sm, but the type is kept separate so the edit fallback chain can tell
// the two apart.
type SSCLoader struct {
	SMLoader
}

type smSection struct {
	typeStr     string
	description string
	difficulty  string
	meter       string
	radar       string
	noteData    string
}

type smFile struct {
	title        string
	artist       string
	credit       string
	music        string
	offset       float64
	sampleStart  float64
	sampleLength float64
	bpms         []string
	sections     []smSection
}

func parseSMFile(path string) (*smFile, bool) {
	data, err := os.ReadFile(path)
	if nil != err {
		return nil, false
	}

	str := strings.ReplaceAll(string(data), "\r", "")
	parts := strings.Split(str, "#NOTES:")

	f := &smFile{}
	for _, mdl := range strings.Split(parts[0], "\n#") {
		mdl = strings.TrimSpace(mdl)
		i := strings.Index(mdl, ":")
		if i < 0 {
			continue
		}
		key := strings.TrimPrefix(strings.ToUpper(mdl[:i]), "#")
		val := strings.TrimSuffix(mdl[i+1:], ";")
		switch key {
		case "TITLE":
			f.title = val
		case "ARTIST":
			f.artist = val
		case "CREDIT":
			f.credit = val
		case "MUSIC":
			f.music = val
		case "OFFSET":
			f.offset = -atof(val)
		case "SAMPLESTART":
			f.sampleStart = atof(val)
		case "SAMPLELENGTH":
			f.sampleLength = atof(val)
		case "BPMS":
			val = strings.ReplaceAll(val, "\n", "")
			f.bpms = strings.Split(val, ",")
		}
	}

	for _, section := range parts[1:] {
		lines := strings.SplitN(section, "\n", 7)
		if len(lines) < 7 {
			continue
		}
		trim := func(s string) string {
			return strings.TrimSuffix(strings.TrimSpace(s), ":")
		}
		f.sections = append(f.sections, smSection{
			typeStr:     trim(lines[1]),
			description: trim(lines[2]),
			difficulty:  trim(lines[3]),
			meter:       trim(lines[4]),
			radar:       trim(lines[5]),
			noteData:    strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(lines[6]), ";")),
		})
	}
	return f, true
}

func (f *smFile) applyTo(out *song.Song) {
	out.Title = f.title
	out.Artist = f.artist
	out.Credit = f.credit
	out.MusicFile = f.music
	out.MusicSampleStartSeconds = f.sampleStart
	out.MusicSampleLengthSeconds = f.sampleLength

	out.Timing.Offset = f.offset
	for _, pair := range f.bpms {
		as := strings.SplitN(pair, "=", 2)
		if len(as) != 2 {
			continue
		}
		out.Timing.AddBPMSegment(timing.BPMSegment{Beat: atof(as[0]), BPM: atof(as[1])})
	}
}

func parseRadarCSV(csv string) (note.RadarValues, bool) {
	var rv note.RadarValues
	fields := strings.Split(csv, ",")
	if len(fields) < int(note.RadarChaos)+1 {
		return rv, false
	}
	for i := range rv {
		if i >= len(fields) {
			break
		}
		rv[i] = atof(fields[i])
	}
	return rv, true
}

func (p *SMLoader) LoadFromDir(dir string, out *song.Song) bool {
	path := findFile(dir, ".sm")
	if "" == path && "" == findFile(dir, ".ssc") {
		path = findFile(dir, ".sma")
	}
	return p.loadFromFile(path, out)
}

func (p *SMLoader) loadFromFile(path string, out *song.Song) bool {
	if "" == path {
		return false
	}
	f, ok := parseSMFile(path)
	if !ok {
		return false
	}

	out.SongFileName = path
	f.applyTo(out)

	for _, section := range f.sections {
		st := out.CreateSteps()
		st.TypeStr = section.typeStr
		st.Type = song.ParseStepsType(section.typeStr)
		st.Description = section.description
		st.Difficulty = song.ParseDifficulty(section.difficulty)
		st.Meter = atoi(section.meter)
		st.Filename = path
		st.SavedToDisk = true
		st.SetCompressed(section.noteData)
		if rv, ok := parseRadarCSV(section.radar); ok {
			st.SetCachedRadarValues([song.NumPlayers]note.RadarValues{rv, rv})
		}
		st.TidyUpData()
		out.AddSteps(st)
	}
	return true
}

func (p *SMLoader) LoadNoteData(path string, out *song.Steps) bool {
	f, ok := parseSMFile(path)
	if !ok {
		return false
	}
	for _, section := range f.sections {
		if song.ParseStepsType(section.typeStr) != out.Type {
			continue
		}
		if song.ParseDifficulty(section.difficulty) != out.Difficulty {
			continue
		}
		if "" != out.Description && section.description != out.Description {
			continue
		}
		out.SetCompressed(section.noteData)
		return true
	}
	return false
}

func (p *SSCLoader) LoadFromDir(dir string, out *song.Song) bool {
	return p.loadFromFile(findFile(dir, ".ssc"), out)
}

var _ song.Loader = (*SMLoader)(nil)
var _ song.Loader = (*SSCLoader)(nil)
