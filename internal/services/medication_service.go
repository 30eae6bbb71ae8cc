package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vitalityhub/vitality-helper/internal/apperrors"
	"github.com/vitalityhub/vitality-helper/internal/database"
	"github.com/vitalityhub/vitality-helper/internal/logger"
	"gorm.io/gorm"
)

const clockLayout = "15:04"

// MedicationService manages the medication schedule. A medication is never
// stored as "taken" or "due": taken-today is derived from LastTaken falling
// on the current calendar date, so the state reverts to due automatically
// at midnight.
type MedicationService struct {
	db     *gorm.DB
	streak *StreakService
}

func NewMedicationService(db *gorm.DB, streak *StreakService) *MedicationService {
	return &MedicationService{db: db, streak: streak}
}

// TakenOn reports whether a medication with the given last-taken timestamp
// counts as taken on the given calendar day.
func TakenOn(lastTaken *time.Time, day time.Time) bool {
	return lastTaken != nil && SameCalendarDay(*lastTaken, day)
}

// ReminderTime returns the wall-clock time the external reminder check
// should fire at: an active snooze overrides the regular schedule.
func ReminderTime(med *database.Medication) string {
	if med.SnoozedUntil != "" {
		return med.SnoozedUntil
	}
	return med.Time
}

// IsDue reports whether a medication is due at "now": not yet taken today
// and its reminder time has passed.
func IsDue(med *database.Medication, now time.Time) bool {
	if TakenOn(med.LastTaken, now) {
		return false
	}
	reminder, err := time.Parse(clockLayout, ReminderTime(med))
	if err != nil {
		return false
	}
	return now.Hour()*60+now.Minute() >= reminder.Hour()*60+reminder.Minute()
}

func (s *MedicationService) Add(ctx context.Context, userID uint, name, frequency, timeOfDay string) (*database.Medication, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("medication name is required")
	}
	if _, err := time.Parse(clockLayout, timeOfDay); err != nil {
		return nil, apperrors.NewValidationError("time must be in HH:MM format")
	}

	med := &database.Medication{
		UserID:    userID,
		Name:      name,
		Frequency: frequency,
		Time:      timeOfDay,
	}
	if err := s.db.WithContext(ctx).Create(med).Error; err != nil {
		return nil, fmt.Errorf("failed to create medication: %w", err)
	}
	return med, nil
}

func (s *MedicationService) Update(ctx context.Context, userID, medID uint, name, frequency, timeOfDay string) error {
	if _, err := time.Parse(clockLayout, timeOfDay); err != nil {
		return apperrors.NewValidationError("time must be in HH:MM format")
	}

	result := s.db.WithContext(ctx).Model(&database.Medication{}).
		Where("id = ? AND user_id = ?", medID, userID).
		Updates(map[string]interface{}{
			"name":      name,
			"frequency": frequency,
			"time":      timeOfDay,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update medication: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("medication not found")
	}
	return nil
}

func (s *MedicationService) Delete(ctx context.Context, userID, medID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", medID, userID).
		Delete(&database.Medication{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete medication: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("medication not found")
	}
	return nil
}

func (s *MedicationService) List(ctx context.Context, userID uint) ([]database.Medication, error) {
	var meds []database.Medication
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("time ASC").
		Find(&meds).Error; err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return meds, nil
}

// Take marks a medication taken now. Taking always clears any active
// snooze, and counts as activity for the streak.
func (s *MedicationService) Take(ctx context.Context, userID, medID uint) error {
	now := time.Now()
	result := s.db.WithContext(ctx).Model(&database.Medication{}).
		Where("id = ? AND user_id = ?", medID, userID).
		Updates(map[string]interface{}{
			"last_taken":    now,
			"snoozed_until": "",
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark medication taken: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("medication not found")
	}

	if err := s.streak.UpdateStreak(ctx, userID, now); err != nil {
		return err
	}

	logger.Info("medication taken", "user_id", userID, "medication_id", medID)
	return nil
}

// Snooze sets a one-shot alternate reminder time. It does not touch the
// taken state.
func (s *MedicationService) Snooze(ctx context.Context, userID, medID uint, until string) error {
	if _, err := time.Parse(clockLayout, until); err != nil {
		return apperrors.NewValidationError("snooze time must be in HH:MM format")
	}

	result := s.db.WithContext(ctx).Model(&database.Medication{}).
		Where("id = ? AND user_id = ?", medID, userID).
		Update("snoozed_until", until)
	if result.Error != nil {
		return fmt.Errorf("failed to snooze medication: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("medication not found")
	}
	return nil
}
