package database

import (
	"time"

	"gorm.io/gorm"
)

// User is the tracked account. The app is single-tenant: exactly one row
// exists (DefaultUserID), seeded on first boot.
type User struct {
	gorm.Model
	Name               string `gorm:"default:User"`
	Coins              int    `gorm:"default:0"`
	BuddyName          string
	BuddyContact       string
	LastAdvisorConsult *time.Time
	Streak             int    `gorm:"default:0"`
	LastActiveDate     string // "YYYY-MM-DD", empty until first activity
	Age                int
	Weight             float64
	Height             float64
	HealthGoals        string
	MedicalConditions  string `gorm:"default:'[]'"` // JSON-encoded []string
}

// MoodLog is an append-only mood entry, rating 1-5.
type MoodLog struct {
	gorm.Model
	UserID uint
	Rating int
	Notes  string
}

// FitnessLog is an append-only activity entry.
type FitnessLog struct {
	gorm.Model
	UserID   uint
	Steps    int
	Duration int // minutes
	Calories int
}

// Medication is a scheduled medication. LastTaken is the raw timestamp of
// the last take action; "taken today" is derived from it, never stored.
type Medication struct {
	gorm.Model
	UserID       uint
	Name         string
	Frequency    string
	Time         string // "HH:MM"
	LastTaken    *time.Time
	SnoozedUntil string // "HH:MM", empty when no snooze is active
}

// Friend is a leaderboard entry. Score is assigned at creation and never
// mutated afterwards.
type Friend struct {
	gorm.Model
	UserID uint
	Name   string
	Score  int
}

// BuddyAlert is raised on sustained low mood.
type BuddyAlert struct {
	gorm.Model
	UserID uint
	Status string `gorm:"default:pending"`
}

const (
	AlertStatusPending   = "pending"
	AlertStatusResponded = "responded"
)
