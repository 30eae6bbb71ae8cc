package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vitalityhub/vitality-helper/internal/database"
	"github.com/vitalityhub/vitality-helper/internal/logger"
	"gorm.io/gorm"
)

// StreakService maintains the consecutive-active-days counter. Every
// activity type (mood, fitness, medication) funnels through UpdateStreak,
// which is idempotent per calendar day.
type StreakService struct {
	db *gorm.DB
}

func NewStreakService(db *gorm.DB) *StreakService {
	return &StreakService{db: db}
}

// NextStreak decides how an activity on "today" affects the stored streak.
// It returns the new streak value and whether stored state changes at all.
//
//   - lastActive == today: no change (already counted today)
//   - lastActive is exactly one calendar day before today: streak + 1
//   - anything else (no prior date, gap of 2+ days, a future date from
//     clock skew, or a malformed stored date): reset to 1
func NextStreak(today, lastActive string, streak int) (int, bool) {
	if lastActive == today {
		return streak, false
	}
	if lastActive != "" {
		if days, ok := calendarDaysBetween(lastActive, today); ok && days == 1 {
			return streak + 1, true
		}
	}
	return 1, true
}

// UpdateStreak applies the streak rule for an activity happening at "now"
// and persists the result. Safe to call multiple times per day.
func (s *StreakService) UpdateStreak(ctx context.Context, userID uint, now time.Time) error {
	var user database.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return fmt.Errorf("failed to get user for streak update: %w", err)
	}

	today := DateString(now)
	newStreak, changed := NextStreak(today, user.LastActiveDate, user.Streak)
	if !changed {
		return nil
	}

	if err := s.db.WithContext(ctx).Model(&database.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"streak":           newStreak,
			"last_active_date": today,
		}).Error; err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}

	logger.Debug("streak updated", "user_id", userID, "streak", newStreak, "date", today)
	return nil
}
