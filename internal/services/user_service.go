package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vitalityhub/vitality-helper/internal/apperrors"
	"github.com/vitalityhub/vitality-helper/internal/database"
	"gorm.io/gorm"
)

// AdvisorConsultCost is the coin price of one advisor consultation.
const AdvisorConsultCost = 1000

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type ProfileUpdate struct {
	Name              string
	Age               int
	Weight            float64
	Height            float64
	HealthGoals       string
	BuddyName         string
	BuddyContact      string
	MedicalConditions []string
}

func (s *UserService) GetUser(ctx context.Context, userID uint) (*database.User, error) {
	var user database.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) error {
	conditions, err := json.Marshal(update.MedicalConditions)
	if err != nil {
		return fmt.Errorf("failed to encode medical conditions: %w", err)
	}

	result := s.db.WithContext(ctx).Model(&database.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"name":               update.Name,
			"age":                update.Age,
			"weight":             update.Weight,
			"height":             update.Height,
			"health_goals":       update.HealthGoals,
			"buddy_name":         update.BuddyName,
			"buddy_contact":      update.BuddyContact,
			"medical_conditions": string(conditions),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update profile: %w", result.Error)
	}
	return nil
}

// Conditions decodes the user's serialized medical condition tags. A
// malformed value degrades to an empty list rather than failing the caller.
func Conditions(user *database.User) []string {
	if user == nil || user.MedicalConditions == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(user.MedicalConditions), &tags); err != nil {
		return nil
	}
	return tags
}

// RedeemConsultation spends coins for an advisor consultation and stamps
// the redemption time. Fails without mutating state when the balance is
// too low.
func (s *UserService) RedeemConsultation(ctx context.Context, userID uint) error {
	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := spendCoins(tx, userID, AdvisorConsultCost); err != nil {
			return err
		}
		if err := tx.Model(&database.User{}).Where("id = ?", userID).
			Update("last_advisor_consult", now).Error; err != nil {
			return fmt.Errorf("failed to stamp consultation: %w", err)
		}
		return nil
	})
}

// creditCoins is the single additive coin-mutation path. The increment is
// expressed in SQL so concurrent credits cannot lose updates.
func creditCoins(db *gorm.DB, userID uint, amount int) error {
	if amount <= 0 {
		return nil
	}
	if err := db.Model(&database.User{}).Where("id = ?", userID).
		Update("coins", gorm.Expr("coins + ?", amount)).Error; err != nil {
		return fmt.Errorf("failed to credit coins: %w", err)
	}
	return nil
}

// spendCoins deducts a positive amount, guarded so the balance can never
// go below zero.
func spendCoins(db *gorm.DB, userID uint, amount int) error {
	if amount <= 0 {
		return apperrors.NewValidationError("spend amount must be positive")
	}
	result := db.Model(&database.User{}).
		Where("id = ? AND coins >= ?", userID, amount).
		Update("coins", gorm.Expr("coins - ?", amount))
	if result.Error != nil {
		return fmt.Errorf("failed to spend coins: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewValidationError(fmt.Sprintf("not enough coins: %d required", amount))
	}
	return nil
}
