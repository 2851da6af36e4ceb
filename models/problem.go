package models

import "time"

// Problem difficulty levels.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Problem topics form a closed set; anything unrecognized is stored as TopicOther.
const (
	TopicArrays       = "arrays"
	TopicStrings      = "strings"
	TopicLinkedLists  = "linked_lists"
	TopicTrees        = "trees"
	TopicGraphs       = "graphs"
	TopicDP           = "dynamic_programming"
	TopicGreedy       = "greedy"
	TopicBacktracking = "backtracking"
	TopicMath         = "math"
	TopicOther        = "other"
)

// ValidDifficulty reports whether s is a known difficulty level.
func ValidDifficulty(s string) bool {
	switch s {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// NormalizeTopic maps s onto the closed topic set, falling back to TopicOther.
func NormalizeTopic(s string) string {
	switch s {
	case TopicArrays, TopicStrings, TopicLinkedLists, TopicTrees, TopicGraphs,
		TopicDP, TopicGreedy, TopicBacktracking, TopicMath:
		return s
	}
	return TopicOther
}

// Problem is one logged problem solve. Date is the user-local calendar date
// (UTC midnight normalized) the solve counts toward; a day with at least one
// Problem row is a completed day.
type Problem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	URL        string    `gorm:"size:512" json:"url"`
	Difficulty string    `gorm:"size:16;not null" json:"difficulty"`
	Topic      string    `gorm:"size:32;not null" json:"topic"`
	Notes      string    `gorm:"type:text" json:"notes"`
	Date       time.Time `gorm:"index;not null" json:"date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
