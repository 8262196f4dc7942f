// Package timing holds the tempo map consumed by the loaders: BPM,
// time-signature and label segments keyed by beat, plus the song offset.
// It only answers beat/time conversions; segment math beyond that lives
// with the gameplay side.
package timing

import "sort"

type BPMSegment struct {
	Beat float64
	BPM  float64
}

type TimeSignatureSegment struct {
	Row         int
	Numerator   int
	Denominator int
}

type LabelSegment struct {
	Row   int
	Label string
}

type Data struct {
	// Offset is the time of beat zero, in seconds. Positive moves the
	// chart later.
	Offset float64

	bpms   []BPMSegment
	sigs   []TimeSignatureSegment
	labels []LabelSegment
}

func (d *Data) AddBPMSegment(s BPMSegment) {
	d.bpms = append(d.bpms, s)
	sort.SliceStable(d.bpms, func(i, j int) bool { return d.bpms[i].Beat < d.bpms[j].Beat })
}

func (d *Data) AddTimeSignatureSegment(s TimeSignatureSegment) {
	d.sigs = append(d.sigs, s)
	sort.SliceStable(d.sigs, func(i, j int) bool { return d.sigs[i].Row < d.sigs[j].Row })
}

func (d *Data) AddLabelSegment(s LabelSegment) {
	d.labels = append(d.labels, s)
	sort.SliceStable(d.labels, func(i, j int) bool { return d.labels[i].Row < d.labels[j].Row })
}

func (d *Data) BPMSegments() []BPMSegment                     { return d.bpms }
func (d *Data) TimeSignatureSegments() []TimeSignatureSegment { return d.sigs }
func (d *Data) LabelSegments() []LabelSegment                 { return d.labels }

func (d *Data) Empty() bool {
	return len(d.bpms) == 0 && len(d.sigs) == 0 && len(d.labels) == 0
}

// BPMAtBeat returns the tempo in effect at a beat. 120 with no segments.
func (d *Data) BPMAtBeat(beat float64) float64 {
	bpm := 120.0
	for _, s := range d.bpms {
		if beat >= s.Beat {
			bpm = s.BPM
		} else {
			break
		}
	}
	return bpm
}

// ActualBPM reports the minimum and maximum tempo over all segments.
func (d *Data) ActualBPM() (minBPM, maxBPM float64) {
	if len(d.bpms) == 0 {
		return 120, 120
	}
	minBPM, maxBPM = d.bpms[0].BPM, d.bpms[0].BPM
	for _, s := range d.bpms[1:] {
		if s.BPM < minBPM {
			minBPM = s.BPM
		}
		if s.BPM > maxBPM {
			maxBPM = s.BPM
		}
	}
	return minBPM, maxBPM
}

// ElapsedTimeFromBeat converts a beat position to elapsed seconds, walking
// the tempo segments.
func (d *Data) ElapsedTimeFromBeat(beat float64) float64 {
	seconds := d.Offset
	curBeat := 0.0
	curBPM := 120.0
	if len(d.bpms) > 0 && d.bpms[0].Beat <= 0 {
		curBPM = d.bpms[0].BPM
	}
	for _, s := range d.bpms {
		if s.Beat >= beat {
			break
		}
		if s.Beat > curBeat {
			seconds += (s.Beat - curBeat) * 60.0 / curBPM
			curBeat = s.Beat
		}
		curBPM = s.BPM
	}
	seconds += (beat - curBeat) * 60.0 / curBPM
	return seconds
}

// BeatFromElapsedTime is the inverse of ElapsedTimeFromBeat.
func (d *Data) BeatFromElapsedTime(seconds float64) float64 {
	remaining := seconds - d.Offset
	curBeat := 0.0
	curBPM := 120.0
	if len(d.bpms) > 0 && d.bpms[0].Beat <= 0 {
		curBPM = d.bpms[0].BPM
	}
	for _, s := range d.bpms {
		if s.Beat <= curBeat {
			curBPM = s.BPM
			continue
		}
		span := (s.Beat - curBeat) * 60.0 / curBPM
		if span >= remaining {
			break
		}
		remaining -= span
		curBeat = s.Beat
		curBPM = s.BPM
	}
	return curBeat + remaining*curBPM/60.0
}
