package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalityhub/vitality-helper/internal/apperrors"
	"github.com/vitalityhub/vitality-helper/internal/database"
	"gorm.io/gorm"
)

func TestShouldTriggerAlert(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    bool
	}{
		{"three low moods", []int{1, 2, 2}, true},
		{"all at threshold", []int{2, 2, 2}, true},
		{"one recent recovery", []int{3, 1, 1}, false},
		{"older high rating", []int{1, 2, 3}, false},
		{"only two entries", []int{1, 1}, false},
		{"single entry", []int{1}, false},
		{"no entries", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldTriggerAlert(tt.ratings))
		})
	}
}

// seedMoodAt inserts a mood log with an explicit timestamp so ordering in
// the alert window is unambiguous.
func seedMoodAt(t *testing.T, db *gorm.DB, userID uint, rating int, at time.Time) {
	t.Helper()
	log := &database.MoodLog{UserID: userID, Rating: rating}
	log.CreatedAt = at
	require.NoError(t, db.Create(log).Error)
}

func TestLogMoodTriggersAlertOnThreeLow(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0)
	svc := NewMoodService(db, NewStreakService(db))
	ctx := context.Background()

	now := time.Now()
	seedMoodAt(t, db, user.ID, 1, now.Add(-2*time.Hour))
	seedMoodAt(t, db, user.ID, 2, now.Add(-time.Hour))

	triggered, err := svc.LogMood(ctx, user.ID, 2, "rough day")
	require.NoError(t, err)
	assert.True(t, triggered)

	var count int64
	require.NoError(t, db.Model(&database.BuddyAlert{}).
		Where("user_id = ? AND status = ?", user.ID, database.AlertStatusPending).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestLogMoodNoAlertWhenRecentMoodRecovers(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0)
	svc := NewMoodService(db, NewStreakService(db))

	now := time.Now()
	seedMoodAt(t, db, user.ID, 1, now.Add(-2*time.Hour))
	seedMoodAt(t, db, user.ID, 2, now.Add(-time.Hour))

	triggered, err := svc.LogMood(context.Background(), user.ID, 3, "feeling better")
	require.NoError(t, err)
	assert.False(t, triggered)

	var count int64
	require.NoError(t, db.Model(&database.BuddyAlert{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestLogMoodInsufficientHistoryNeverTriggers(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0)
	svc := NewMoodService(db, NewStreakService(db))
	ctx := context.Background()

	triggered, err := svc.LogMood(ctx, user.ID, 1, "")
	require.NoError(t, err)
	assert.False(t, triggered)

	triggered, err = svc.LogMood(ctx, user.ID, 1, "")
	require.NoError(t, err)
	assert.False(t, triggered)
}

// A fresh qualifying window fires again: there is no dedup cooldown.
func TestLogMoodAlertFiresAgainOnNextWindow(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0)
	svc := NewMoodService(db, NewStreakService(db))
	ctx := context.Background()

	now := time.Now()
	seedMoodAt(t, db, user.ID, 1, now.Add(-2*time.Hour))
	seedMoodAt(t, db, user.ID, 1, now.Add(-time.Hour))

	triggered, err := svc.LogMood(ctx, user.ID, 2, "")
	require.NoError(t, err)
	assert.True(t, triggered)

	// The next low entry forms a fresh qualifying window of its own.
	triggered, err = svc.LogMood(ctx, user.ID, 1, "")
	require.NoError(t, err)
	assert.True(t, triggered)

	var count int64
	require.NoError(t, db.Model(&database.BuddyAlert{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestLogMoodValidatesRating(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0)
	svc := NewMoodService(db, NewStreakService(db))
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.LogMood(ctx, user.ID, rating, "")
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	}

	var count int64
	require.NoError(t, db.Model(&database.MoodLog{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestLatestMood(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0)
	svc := NewMoodService(db, NewStreakService(db))
	ctx := context.Background()

	latest, err := svc.Latest(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	now := time.Now()
	seedMoodAt(t, db, user.ID, 2, now.Add(-time.Hour))
	seedMoodAt(t, db, user.ID, 5, now)

	latest, err = svc.Latest(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 5, latest.Rating)
}
