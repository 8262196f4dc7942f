// Package audio answers how long a song's music file plays for, which the
// radar densities are normalized against.
package audio

type Prober interface {
	// Duration reports the playing time of an audio file in seconds.
	Duration(path string) (float64, error)
}
