package ratingquiz

import (
	"fmt"
	"slices"
	"strings"
)

type DifficultyProfile struct {
	Label     string  `json:"label"`
	Display   string  `json:"display"`
	MaxGap    float64 `json:"maxGap"`
	MinRating float64 `json:"minRating"`
}

// Profiles lists the selectable difficulties, hardest first.
var Profiles = []DifficultyProfile{
	{Label: "Extremely Hard", Display: "Extremely Hard (diff < 1)", MaxGap: 1, MinRating: -43},
	{Label: "Hard", Display: "Hard (diff < 2.5)", MaxGap: 2.5, MinRating: -10},
	{Label: "Medium", Display: "Medium (diff < 4.5)", MaxGap: 4.5, MinRating: 0},
	{Label: "Easy", Display: "Easy (diff < 8.5)", MaxGap: 8.5, MinRating: 10},
}

// RoundCounts lists the selectable game lengths.
var RoundCounts = []int{5, 8, 10, 15, 20}

const (
	DefaultDifficulty = "Medium"
	DefaultRounds     = 5
)

// Resolve looks up a profile by label or display string.
func Resolve(label string) (DifficultyProfile, error) {
	label = strings.TrimSpace(label)
	for _, p := range Profiles {
		if strings.EqualFold(label, p.Label) || strings.EqualFold(label, p.Display) {
			return p, nil
		}
	}
	return DifficultyProfile{}, fmt.Errorf("%w: %q", ErrUnknownDifficulty, label)
}

func ValidRoundCount(n int) bool {
	return slices.Contains(RoundCounts, n)
}

// Settings are the player's current selections.
type Settings struct {
	Difficulty string `json:"difficulty"`
	Rounds     int    `json:"rounds"`
}

// DefaultSettings matches the first screen of a fresh session.
func DefaultSettings() Settings {
	return Settings{Difficulty: DefaultDifficulty, Rounds: DefaultRounds}
}

// Profile validates the settings and returns the selected profile.
func (s Settings) Profile() (DifficultyProfile, error) {
	p, err := Resolve(s.Difficulty)
	if err != nil {
		return DifficultyProfile{}, err
	}
	if !ValidRoundCount(s.Rounds) {
		return DifficultyProfile{}, fmt.Errorf("%w: %d", ErrInvalidRounds, s.Rounds)
	}
	return p, nil
}
