// Package parser holds the format loaders. Each loader registers itself
// with the song package's extension registry from init, so importing this
// package for side effects is enough to wire up dispatch, the same way
// sql drivers register themselves.
//
// Loaders are deliberately lenient: community-authored charts are full of
// malformed lines, stray braces and broken numbers, so bad tokens parse
// to zero and bad lines are skipped. Failure is a boolean, not an error.
package parser

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"git.lost.host/meutraa/strum/internal/song"
)

func init() {
	sm := &SMLoader{}
	song.RegisterLoader("sm", sm)
	// SMA is an SM superset for the subset consumed here
	song.RegisterLoader("sma", sm)
	ssc := &SSCLoader{}
	song.RegisterLoader("ssc", ssc)
	song.RegisterLoader("ats", ssc)
	song.RegisterLoader("chart", &ChartLoader{})
	song.RegisterLoader("mid", &MIDILoader{})
}

// atoi and atof parse like the charts expect: garbage is zero.
func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if nil != err {
		return 0
	}
	return n
}

func atof(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if nil != err {
		return 0
	}
	return f
}

// findFile returns the first file in dir with the given extension.
func findFile(dir, ext string) string {
	entries, err := os.ReadDir(dir)
	if nil != err {
		return ""
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ext) {
			return filepath.Join(dir, e.Name())
		}
	}
	return ""
}

// lineScanner feeds tokenized lines to the section parsers. Tabs are
// stripped before splitting on spaces, matching how charts are authored.
type lineScanner struct {
	lines []string
	pos   int
}

func newLineScanner(data string) *lineScanner {
	data = strings.ReplaceAll(data, "\r", "")
	return &lineScanner{lines: strings.Split(data, "\n")}
}

// next returns the words of the next line. ok is false at end of input.
func (s *lineScanner) next() (words []string, ok bool) {
	if s.pos >= len(s.lines) {
		return nil, false
	}
	line := strings.ReplaceAll(s.lines[s.pos], "\t", " ")
	s.pos++
	return strings.Fields(line), true
}
