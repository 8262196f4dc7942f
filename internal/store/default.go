package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"

	"git.lost.host/meutraa/strum/internal/note"
	"git.lost.host/meutraa/strum/internal/song"
)

type DefaultStore struct {
	db *sql.DB
}

func (s *DefaultStore) Init(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	initStatement := `
	create table if not exists charts
	  (
		  id integer not null primary key,
		  sum text unique,
		  steps text,
		  meter integer,
		  radar bytearray
	  );
	`
	_, err = db.Exec(initStatement)
	if nil != err {
		return err
	}

	s.db = db
	return nil
}

func (s *DefaultStore) Deinit() {
	if nil != s.db {
		s.db.Close()
	}
}

func hashKey(st *song.Steps) string {
	return fmt.Sprintf("%016x", st.GetHash())
}

func (s *DefaultStore) Save(st *song.Steps) {
	if st.GetHash() == 0 {
		return
	}
	sum := hashKey(st)
	var radar [song.NumPlayers]note.RadarValues
	for p := 0; p < song.NumPlayers; p++ {
		radar[p] = st.GetRadarValues(p)
	}
	data, err := json.Marshal(radar)
	if nil != err {
		log.Println("unable to marshal radar values", err)
		return
	}
	_, err = s.db.Exec("insert or replace into charts(sum, steps, meter, radar) values(?, ?, ?, ?)",
		sum, st.TypeStr, st.Meter, data)
	if nil != err {
		log.Println("unable to save chart cache")
		return
	}
}

func (s *DefaultStore) Load(st *song.Steps) bool {
	var meter int
	var data []byte
	err := s.db.QueryRow("select meter, radar from charts where sum = ?", hashKey(st)).
		Scan(&meter, &data)
	if err == sql.ErrNoRows {
		return false
	}
	if nil != err {
		log.Println("unable to load chart cache", err)
		return false
	}
	var radar [song.NumPlayers]note.RadarValues
	if err := json.Unmarshal(data, &radar); nil != err {
		log.Println("unable to unmarshal cached radar values")
		return false
	}
	st.SetCachedRadarValues(radar)
	if st.Meter < 1 {
		st.Meter = meter
	}
	return true
}

var _ Store = (*DefaultStore)(nil)
