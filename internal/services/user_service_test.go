package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalityhub/vitality-helper/internal/apperrors"
	"github.com/vitalityhub/vitality-helper/internal/database"
)

func TestUpdateProfileRoundTrip(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 100)
	svc := NewUserService(db)
	ctx := context.Background()

	err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{
		Name:              "Alexandra",
		Age:               34,
		Weight:            68.5,
		Height:            171,
		HealthGoals:       "run a 10k",
		BuddyName:         "Sam",
		BuddyContact:      "sam@example.com",
		MedicalConditions: []string{"Diabetes", "Anxiety"},
	})
	require.NoError(t, err)

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alexandra", got.Name)
	assert.Equal(t, 34, got.Age)
	assert.Equal(t, "Sam", got.BuddyName)
	assert.Equal(t, []string{"Diabetes", "Anxiety"}, Conditions(got))
	// Coins are not a profile field and must survive the update.
	assert.Equal(t, 100, got.Coins)
}

func TestConditionsDegradeOnMalformedValue(t *testing.T) {
	assert.Nil(t, Conditions(nil))
	assert.Nil(t, Conditions(&database.User{MedicalConditions: ""}))
	assert.Nil(t, Conditions(&database.User{MedicalConditions: "not json"}))
	assert.Empty(t, Conditions(&database.User{MedicalConditions: "[]"}))
}

func TestRedeemConsultation(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, AdvisorConsultCost+500)
	svc := NewUserService(db)
	ctx := context.Background()

	require.NoError(t, svc.RedeemConsultation(ctx, user.ID))

	got := reloadUser(t, db, user.ID)
	assert.Equal(t, 500, got.Coins)
	assert.NotNil(t, got.LastAdvisorConsult)
}

func TestRedeemConsultationInsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, AdvisorConsultCost-1)
	svc := NewUserService(db)

	err := svc.RedeemConsultation(context.Background(), user.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)

	// The failed spend must not mutate anything.
	got := reloadUser(t, db, user.ID)
	assert.Equal(t, AdvisorConsultCost-1, got.Coins)
	assert.Nil(t, got.LastAdvisorConsult)
}

func TestCreditCoins(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 10)

	require.NoError(t, creditCoins(db, user.ID, 25))
	assert.Equal(t, 35, reloadUser(t, db, user.ID).Coins)

	// Zero and negative deltas are no-ops, never errors.
	require.NoError(t, creditCoins(db, user.ID, 0))
	require.NoError(t, creditCoins(db, user.ID, -5))
	assert.Equal(t, 35, reloadUser(t, db, user.ID).Coins)
}
