package song

import "strings"

type Difficulty int

const (
	DifficultyInvalid Difficulty = iota
	DifficultyBeginner
	DifficultyEasy
	DifficultyMedium
	DifficultyHard
	DifficultyChallenge
	DifficultyEdit
)

var difficultyNames = map[Difficulty]string{
	DifficultyInvalid:   "Invalid",
	DifficultyBeginner:  "Beginner",
	DifficultyEasy:      "Easy",
	DifficultyMedium:    "Medium",
	DifficultyHard:      "Hard",
	DifficultyChallenge: "Expert",
	DifficultyEdit:      "Edit",
}

func (d Difficulty) String() string {
	if s, ok := difficultyNames[d]; ok {
		return s
	}
	return "Invalid"
}

// ParseDifficulty infers a difficulty from free text, the way chart
// descriptions and section names spell them.
func ParseDifficulty(s string) Difficulty {
	switch {
	case strings.Contains(s, "Expert"), strings.Contains(s, "Challenge"):
		return DifficultyChallenge
	case strings.Contains(s, "Hard"):
		return DifficultyHard
	case strings.Contains(s, "Medium"):
		return DifficultyMedium
	case strings.Contains(s, "Easy"):
		return DifficultyEasy
	case strings.Contains(s, "Beginner"):
		return DifficultyBeginner
	case strings.Contains(s, "Edit"):
		return DifficultyEdit
	}
	return DifficultyInvalid
}

type StepsType int

const (
	StepsTypeInvalid StepsType = iota
	StepsTypeGuitarSolo
	StepsTypeGuitarBackup
	StepsTypeGuitarSolo6
	StepsTypeGuitarBackup6
	StepsTypeDanceSingle
	StepsTypeDanceDouble
	StepsTypeDanceCouple
	StepsTypeDanceRoutine
	StepsTypeLightsCabinet
	StepsTypeKickboxHuman
)

// StepsTypeCategory drives how radar values are computed and whether the
// compressed encoding carries multiple players.
type StepsTypeCategory int

const (
	CategorySingle StepsTypeCategory = iota
	CategoryCouple
	CategoryRoutine
)

type StepsTypeInfo struct {
	Name      string
	NumTracks int
	Category  StepsTypeCategory
}

var stepsTypeInfos = map[StepsType]StepsTypeInfo{
	StepsTypeGuitarSolo:    {"guitar-solo", 6, CategorySingle},
	StepsTypeGuitarBackup:  {"guitar-backup", 6, CategorySingle},
	StepsTypeGuitarSolo6:   {"guitar-solo6", 7, CategorySingle},
	StepsTypeGuitarBackup6: {"guitar-backup6", 7, CategorySingle},
	StepsTypeDanceSingle:   {"dance-single", 4, CategorySingle},
	StepsTypeDanceDouble:   {"dance-double", 8, CategorySingle},
	StepsTypeDanceCouple:   {"dance-couple", 8, CategoryCouple},
	StepsTypeDanceRoutine:  {"dance-routine", 8, CategoryRoutine},
	StepsTypeLightsCabinet: {"lights-cabinet", 8, CategorySingle},
	StepsTypeKickboxHuman:  {"kickbox-human", 4, CategorySingle},
}

func (t StepsType) Info() StepsTypeInfo {
	if info, ok := stepsTypeInfos[t]; ok {
		return info
	}
	return StepsTypeInfo{Name: "", NumTracks: 0, Category: CategorySingle}
}

func (t StepsType) String() string {
	return t.Info().Name
}

func (t StepsType) NumTracks() int {
	return t.Info().NumTracks
}

// Lights data is cheap and always wanted live; it is never compressed.
func (t StepsType) IsLights() bool {
	return t == StepsTypeLightsCabinet
}

// Kickbox autogen is procedural rather than a column remap.
func (t StepsType) IsKickbox() bool {
	return t == StepsTypeKickboxHuman
}

// ParseStepsType maps a canonical type name back to its StepsType.
// Unknown names stay invalid so callers can special-case them.
func ParseStepsType(name string) StepsType {
	for t, info := range stepsTypeInfos {
		if info.Name == name {
			return t
		}
	}
	return StepsTypeInvalid
}

type DisplayBPM int

const (
	DisplayBPMActual DisplayBPM = iota
	DisplayBPMSpecified
	DisplayBPMRandom
)

func (d DisplayBPM) String() string {
	switch d {
	case DisplayBPMActual:
		return "Actual"
	case DisplayBPMSpecified:
		return "Specified"
	case DisplayBPMRandom:
		return "Random"
	}
	return "Actual"
}
