package parser

import (
	"path/filepath"

	"gopkg.in/ini.v1"
)

// songINI holds the subset of song.ini that affects parsing. hopoFreq is
// -1 when the file or key is absent, in which case each reader falls back
// to its own default window.
type songINI struct {
	name     string
	artist   string
	charter  string
	hopoFreq int
	eighth   bool
}

func loadSongINI(dir string) songINI {
	out := songINI{hopoFreq: -1}
	cfg, err := ini.Load(filepath.Join(dir, "song.ini"))
	if nil != err {
		return out
	}
	sec := cfg.Section("song")
	out.name = sec.Key("name").String()
	out.artist = sec.Key("artist").String()
	out.charter = sec.Key("frets").String()
	if sec.HasKey("hopo_frequency") {
		out.hopoFreq = sec.Key("hopo_frequency").MustInt(-1)
	} else if sec.HasKey("hopofreq") {
		out.hopoFreq = sec.Key("hopofreq").MustInt(-1)
	}
	out.eighth = sec.Key("eighthnote_hopo").MustBool(false)
	return out
}

// chartHopoWindow gives the tick window within which a fret change becomes
// a hammer-on for the text chart reader. The default is a sixteenth.
func chartHopoWindow(resolution int, cfg songINI) int {
	w := resolution / 4
	switch cfg.hopoFreq {
	case 0:
		w = resolution / 2
	case 1:
		w = resolution * 3 / 8
	case 2:
		w = resolution / 4
	case 3:
		w = resolution * 3 / 16
	case 4:
		w = resolution / 8
	}
	if cfg.eighth {
		w /= 2
	}
	return w
}

// midiHopoWindow is the same setting for MIDI charts, which historically
// use a wider window with a fixed ten tick fudge.
func midiHopoWindow(resolution int, cfg songINI) int {
	w := resolution/3 + 10
	switch cfg.hopoFreq {
	case 0:
		w = resolution/6 + 10
	case 1:
		w = resolution/4 + 10
	case 2:
		w = resolution/3 + 10
	case 3:
		w = resolution/2 + 10
	case 4:
		w = resolution*2/3 + 10
	case 5:
		w = resolution + 10
	}
	if cfg.eighth {
		w /= 2
	}
	return w
}
