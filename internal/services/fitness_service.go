package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vitalityhub/vitality-helper/internal/database"
	"github.com/vitalityhub/vitality-helper/internal/logger"
	"gorm.io/gorm"
)

// Reward engine constants: a flat bonus for a single submission crossing
// the daily step threshold, plus a lump bonus each time the lifetime step
// total crosses a milestone boundary.
const (
	StepBonusThreshold = 5000
	StepBonusCoins     = 10
	MilestoneSteps     = 100000
	MilestoneCoins     = 100
)

// FitnessService records activity submissions and computes coin rewards.
type FitnessService struct {
	db     *gorm.DB
	streak *StreakService
}

func NewFitnessService(db *gorm.DB, streak *StreakService) *FitnessService {
	return &FitnessService{db: db, streak: streak}
}

// StepReward computes the coins earned by a single submission of newSteps,
// given the lifetime total including that submission.
//
// The milestone bonus is computed on cumulative totals, not per session, so
// the award is invariant to how the same steps are split across
// submissions: floor(total/M) - floor((total-new)/M) milestones crossed,
// each worth MilestoneCoins.
func StepReward(newSteps, totalSteps int) int {
	coins := 0
	if newSteps >= StepBonusThreshold {
		coins += StepBonusCoins
	}

	previousTotal := totalSteps - newSteps
	crossed := totalSteps/MilestoneSteps - previousTotal/MilestoneSteps
	if crossed > 0 {
		coins += crossed * MilestoneCoins
	}
	return coins
}

// LogActivity appends a fitness log, updates the streak, and credits the
// step reward. Returns the number of coins added.
//
// The sum-then-credit runs in one transaction so a concurrent submission
// cannot observe a partial total or lose a coin increment.
func (s *FitnessService) LogActivity(ctx context.Context, userID uint, steps, duration, calories int) (int, error) {
	if steps < 0 {
		steps = 0
	}
	if duration < 0 {
		duration = 0
	}
	if calories < 0 {
		calories = 0
	}

	var coinsAdded int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		log := &database.FitnessLog{
			UserID:   userID,
			Steps:    steps,
			Duration: duration,
			Calories: calories,
		}
		if err := tx.Create(log).Error; err != nil {
			return fmt.Errorf("failed to create fitness log: %w", err)
		}

		var total int64
		if err := tx.Model(&database.FitnessLog{}).
			Where("user_id = ?", userID).
			Select("COALESCE(SUM(steps), 0)").
			Scan(&total).Error; err != nil {
			return fmt.Errorf("failed to sum steps: %w", err)
		}

		coinsAdded = StepReward(steps, int(total))
		return creditCoins(tx, userID, coinsAdded)
	})
	if err != nil {
		return 0, err
	}

	if err := s.streak.UpdateStreak(ctx, userID, time.Now()); err != nil {
		return 0, err
	}

	logger.Info("fitness logged", "user_id", userID, "steps", steps, "coins_added", coinsAdded)
	return coinsAdded, nil
}

// StepsOnDay sums the steps logged on the calendar day containing "day".
func (s *FitnessService) StepsOnDay(ctx context.Context, userID uint, day time.Time) (int, error) {
	year, month, dayOfMonth := day.Date()
	start := time.Date(year, month, dayOfMonth, 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var total int64
	if err := s.db.WithContext(ctx).Model(&database.FitnessLog{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start, end).
		Select("COALESCE(SUM(steps), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum steps for day: %w", err)
	}
	return int(total), nil
}

// GetHistory returns the most recent fitness logs, newest first.
func (s *FitnessService) GetHistory(ctx context.Context, userID uint, limit int) ([]database.FitnessLog, error) {
	var logs []database.FitnessLog
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to get fitness history: %w", err)
	}
	return logs, nil
}
