package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"

	"git.lost.host/meutraa/strum/internal/audio"
	"git.lost.host/meutraa/strum/internal/config"
	"git.lost.host/meutraa/strum/internal/note"
	"git.lost.host/meutraa/strum/internal/parser"
	"git.lost.host/meutraa/strum/internal/song"
	"git.lost.host/meutraa/strum/internal/store"
)

// loadOrder decides which chart file wins when a directory carries more
// than one format.
var loadOrder = []string{".ssc", ".sm", ".sma", ".chart", ".mid"}

func main() {
	if err := run(); nil != err {
		log.Fatalln(err)
	}
}

func findSongs(root string) (map[string]string, error) {
	// dir -> best chart file
	songs := map[string]string{}
	rank := func(p string) int {
		ext := path.Ext(p)
		for i, e := range loadOrder {
			if e == ext {
				return i
			}
		}
		return len(loadOrder)
	}
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if nil != err || info.IsDir() {
			return err
		}
		if nil == song.LoaderForPath(p) {
			return nil
		}
		dir := filepath.Dir(p)
		if cur, ok := songs[dir]; !ok || rank(p) < rank(cur) {
			songs[dir] = p
		}
		return nil
	})
	return songs, err
}

func run() error {
	// Ensure our Default implementations are used as interfaces
	var db store.Store = &store.DefaultStore{}
	var prober audio.Prober = &audio.DefaultProber{}

	parser.WriteLyrics = *config.ExportLyrics

	if !*config.NoCache {
		if err := db.Init(*config.CachePath); nil != err {
			return fmt.Errorf("unable to open chart cache: %w", err)
		}
		defer db.Deinit()
	}

	songs, err := findSongs(*config.Directory)
	if nil != err {
		return fmt.Errorf("unable to walk song directory: %w", err)
	}
	if len(songs) == 0 {
		return errors.New("unable to find any chart files in given directory")
	}

	dirs := make([]string, 0, len(songs))
	for dir := range songs {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		chartFile := songs[dir]
		loader := song.LoaderForPath(chartFile)

		s := &song.Song{Dir: dir}
		if !loader.LoadFromDir(dir, s) {
			log.Printf("unable to load %v\n", chartFile)
			continue
		}

		musicLength := 0.0
		if "" != s.MusicFile {
			length, err := prober.Duration(s.AssetPath(s.MusicFile))
			if nil != err {
				log.Printf("unable to probe %v: %v\n", s.MusicFile, err)
			} else {
				musicLength = length
			}
		}

		fmt.Printf("%v - %v (%v)\n", s.Artist, s.Title, dir)
		for i, st := range s.Steps() {
			cached := false
			if !*config.NoCache {
				cached = db.Load(st)
			}
			if !cached {
				st.CalculateRadarValues(musicLength)
				st.TidyUpData()
				if !*config.NoCache {
					db.Save(st)
				}
			}

			rv := st.GetRadarValues(0)
			fmt.Printf("%2v) %-15v %-9v %3v %5v notes\n",
				i, st.TypeStr, st.Difficulty, st.Meter, int(rv[note.RadarTapsAndHolds]))
			if *config.ShowRadar {
				fmt.Printf("     stream %.2f voltage %.2f air %.2f freeze %.2f chaos %.2f\n",
					rv[note.RadarStream], rv[note.RadarVoltage], rv[note.RadarAir],
					rv[note.RadarFreeze], rv[note.RadarChaos])
			}

			// drop the expanded grid again now everything is derived
			st.Compress()
		}
	}

	return nil
}
