package parser

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"git.lost.host/meutraa/strum/internal/event"
	"git.lost.host/meutraa/strum/internal/timing"
)

// WriteLyrics enables the .lrc export when a vocals track is present.
// Set from the command line before any song loads.
var WriteLyrics = true

// Phrase markers in a vocals track: note-on opens a lyric line, note-off
// closes it.
const (
	phrasePitch    = 105
	phrasePitchAlt = 106
)

func lrcTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	mins := int(seconds) / 60
	return fmt.Sprintf("[%02d:%05.2f]", mins, seconds-float64(mins*60))
}

// lrcSyllable cleans one lyric event for display. Pitch-shift and section
// tokens are dropped entirely.
func lrcSyllable(text string) (string, bool) {
	if "" == text || strings.HasPrefix(text, "+") || strings.HasPrefix(text, "[") {
		return "", false
	}
	text = strings.TrimSuffix(text, "#")
	text = strings.TrimSuffix(text, "^")
	return text, text != ""
}

// writeLyricsFile renders a vocals track to a timestamped .lrc file.
// Syllables within a phrase join on the trailing dash convention; a long
// silence between phrases emits an empty timestamped line so players
// blank the display.
func writeLyricsFile(path string, td *timing.Data, resolution int, evs []event.Event) bool {
	f, err := os.Create(path)
	if nil != err {
		return false
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	elapsed := func(tick int) float64 {
		return td.ElapsedTimeFromBeat(float64(tick) / float64(resolution))
	}

	curLine := ""
	phraseOpen := false
	lastPhraseEnd := 0
	wrote := false

	for _, ev := range evs {
		switch ev.Kind {
		case event.Lyric, event.Text:
			if !phraseOpen {
				continue
			}
			syl, ok := lrcSyllable(ev.Text)
			if !ok {
				continue
			}
			if strings.HasSuffix(curLine, "-") {
				curLine = strings.TrimSuffix(curLine, "-")
			} else if !strings.HasSuffix(curLine, "]") {
				curLine += " "
			}
			curLine += syl
		case event.NoteOn, event.NoteOff:
			if ev.Pitch != phrasePitch && ev.Pitch != phrasePitchAlt {
				continue
			}
			on := ev.Kind == event.NoteOn && ev.Velocity > 0
			if on {
				if phraseOpen {
					continue
				}
				if wrote && ev.Tick-lastPhraseEnd >= resolution*4 {
					fmt.Fprintln(w, lrcTime(elapsed(lastPhraseEnd)))
				}
				curLine = lrcTime(elapsed(ev.Tick))
				phraseOpen = true
			} else if phraseOpen {
				fmt.Fprintln(w, curLine)
				lastPhraseEnd = ev.Tick
				phraseOpen = false
				wrote = true
			}
		}
	}
	if phraseOpen && curLine != "" {
		fmt.Fprintln(w, curLine)
		wrote = true
	}
	if err := w.Flush(); nil != err {
		return false
	}
	return wrote
}
