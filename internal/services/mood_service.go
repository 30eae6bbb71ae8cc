package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitalityhub/vitality-helper/internal/apperrors"
	"github.com/vitalityhub/vitality-helper/internal/database"
	"github.com/vitalityhub/vitality-helper/internal/logger"
	"gorm.io/gorm"
)

// Mood alert monitor constants: an alert fires when the last lowMoodWindow
// entries are all at or below lowMoodThreshold.
const (
	lowMoodThreshold = 2
	lowMoodWindow    = 3
)

// MoodService records mood entries and raises buddy alerts on sustained
// low mood.
type MoodService struct {
	db     *gorm.DB
	streak *StreakService
}

func NewMoodService(db *gorm.DB, streak *StreakService) *MoodService {
	return &MoodService{db: db, streak: streak}
}

// ShouldTriggerAlert applies the low-mood rule to the most recent ratings
// (newest first). Fewer than lowMoodWindow entries never trigger.
func ShouldTriggerAlert(recentRatings []int) bool {
	if len(recentRatings) != lowMoodWindow {
		return false
	}
	for _, r := range recentRatings {
		if r > lowMoodThreshold {
			return false
		}
	}
	return true
}

// LogMood appends a mood entry, updates the streak, and checks the buddy
// alert condition. Returns whether an alert was raised.
func (s *MoodService) LogMood(ctx context.Context, userID uint, rating int, notes string) (bool, error) {
	if rating < 1 || rating > 5 {
		return false, apperrors.NewValidationError("rating must be between 1 and 5")
	}

	log := &database.MoodLog{
		UserID: userID,
		Rating: rating,
		Notes:  notes,
	}
	if err := s.db.WithContext(ctx).Create(log).Error; err != nil {
		return false, fmt.Errorf("failed to create mood log: %w", err)
	}

	if err := s.streak.UpdateStreak(ctx, userID, time.Now()); err != nil {
		return false, err
	}

	return s.checkLowMoodAlert(ctx, userID)
}

// checkLowMoodAlert inspects the most recent entries and inserts a pending
// buddy alert when they are all low. No dedup window: every qualifying
// submission raises a fresh alert.
func (s *MoodService) checkLowMoodAlert(ctx context.Context, userID uint) (bool, error) {
	var recent []database.MoodLog
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(lowMoodWindow).
		Find(&recent).Error; err != nil {
		return false, fmt.Errorf("failed to get recent moods: %w", err)
	}

	ratings := make([]int, 0, len(recent))
	for _, m := range recent {
		ratings = append(ratings, m.Rating)
	}
	if !ShouldTriggerAlert(ratings) {
		return false, nil
	}

	alert := &database.BuddyAlert{
		UserID: userID,
		Status: database.AlertStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(alert).Error; err != nil {
		return false, fmt.Errorf("failed to create buddy alert: %w", err)
	}

	logger.Warn("buddy alert raised", "user_id", userID, "alert_id", alert.ID)
	return true, nil
}

// Latest returns the most recent mood log, or nil when none exist.
func (s *MoodService) Latest(ctx context.Context, userID uint) (*database.MoodLog, error) {
	var log database.MoodLog
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest mood: %w", err)
	}
	return &log, nil
}

// GetHistory returns the most recent mood logs, newest first.
func (s *MoodService) GetHistory(ctx context.Context, userID uint, limit int) ([]database.MoodLog, error) {
	var logs []database.MoodLog
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to get mood history: %w", err)
	}
	return logs, nil
}
