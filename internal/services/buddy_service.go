package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitalityhub/vitality-helper/internal/apperrors"
	"github.com/vitalityhub/vitality-helper/internal/database"
	"github.com/vitalityhub/vitality-helper/internal/logger"
	"gorm.io/gorm"
)

// BuddyResponseCoins is credited to the user when their buddy responds to
// an alert.
const BuddyResponseCoins = 5

// BuddyService manages buddy alerts raised by the mood monitor.
type BuddyService struct {
	db *gorm.DB
}

func NewBuddyService(db *gorm.DB) *BuddyService {
	return &BuddyService{db: db}
}

// PendingAlerts returns unresolved alerts, oldest first.
func (s *BuddyService) PendingAlerts(ctx context.Context, userID uint) ([]database.BuddyAlert, error) {
	var alerts []database.BuddyAlert
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, database.AlertStatusPending).
		Order("created_at ASC").
		Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending alerts: %w", err)
	}
	return alerts, nil
}

// Respond resolves a pending alert and credits the response reward. With
// alertID zero the oldest pending alert is resolved (the single-user UI
// never knows alert ids). Responding with no pending alert is a not-found,
// not a free coin mint.
func (s *BuddyService) Respond(ctx context.Context, userID, alertID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var alert database.BuddyAlert
		query := tx.Where("user_id = ? AND status = ?", userID, database.AlertStatusPending)
		if alertID != 0 {
			query = query.Where("id = ?", alertID)
		}
		if err := query.Order("created_at ASC").First(&alert).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFoundError("no pending buddy alert")
			}
			return fmt.Errorf("failed to find pending alert: %w", err)
		}

		if err := tx.Model(&database.BuddyAlert{}).
			Where("id = ?", alert.ID).
			Update("status", database.AlertStatusResponded).Error; err != nil {
			return fmt.Errorf("failed to resolve alert: %w", err)
		}

		return creditCoins(tx, userID, BuddyResponseCoins)
	})
	if err != nil {
		return err
	}

	logger.Info("buddy alert responded", "user_id", userID)
	return nil
}
