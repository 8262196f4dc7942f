// Package testdata carries small in-source fixtures shared by the
// package tests.
package testdata

import (
	"os"
	"path/filepath"
)

// Chart is a small guitar chart exercising the header, a tempo change,
// a sustain, a forced row and a tap row.
const Chart = `[Song]
{
  Name = "Fixture"
  Artist = "Nobody"
  Charter = "tester"
  Offset = 0
  Resolution = 192
  Difficulty = 4
  MusicStream = "song.ogg"
}
[SyncTrack]
{
  0 = TS 4
  0 = B 120000
  768 = B 150000
}
[Events]
{
  0 = E "section Intro"
}
[ExpertSingle]
{
  0 = N 0 0
  192 = N 0 96
  240 = N 1 0
  480 = N 2 0
  480 = E *
  960 = N 3 0
  960 = E T
}
`

// PackedNotes is a six lane chart in packed text form: quarters in the
// first measure, a hammer-on and a short hold in the second.
const PackedNotes = `100000
000000
G00000
000000
,
H00000
000000
200000
300000`

// SM is a minimal simfile holding PackedNotes at a single difficulty.
const SM = `#TITLE:Fixture;
#ARTIST:Nobody;
#MUSIC:song.ogg;
#OFFSET:0.000;
#BPMS:0.000=120.000;
#NOTES:
     guitar-solo:
     tester:
     Expert:
     4:
     0.1,0.2,0.3,0.4,0.5:
` + PackedNotes + `
;
`

// WriteSongDir lays Chart out as a song directory.
func WriteSongDir(dir string) (string, error) {
	p := filepath.Join(dir, "notes.chart")
	return p, os.WriteFile(p, []byte(Chart), 0o644)
}

// WriteSMDir lays SM out as a song directory.
func WriteSMDir(dir string) (string, error) {
	p := filepath.Join(dir, "fixture.sm")
	return p, os.WriteFile(p, []byte(SM), 0o644)
}
