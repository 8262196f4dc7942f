package config

import (
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	Directory    = kingpin.Arg("directory", "Song or pack directory").Required().ExistingDir()
	CachePath    = kingpin.Flag("cache", "Chart cache database").Default("./charts.db").Short('c').String()
	NoCache      = kingpin.Flag("no-cache", "Skip the chart cache").Bool()
	ExportLyrics = kingpin.Flag("lyrics", "Write .lrc files from vocal tracks").Default("true").Bool()
	ShowRadar    = kingpin.Flag("radar", "Print radar values per chart").Short('R').Bool()
)

func init() {
	kingpin.Version("0.2.0")
	kingpin.Parse()
}
