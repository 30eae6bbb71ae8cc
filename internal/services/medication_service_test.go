package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalityhub/vitality-helper/internal/apperrors"
	"github.com/vitalityhub/vitality-helper/internal/database"
)

func TestTakenOnDerivation(t *testing.T) {
	takenAt := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	// Any later time on the same calendar date counts as taken.
	assert.True(t, TakenOn(&takenAt, time.Date(2025, 3, 10, 9, 31, 0, 0, time.UTC)))
	assert.True(t, TakenOn(&takenAt, time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)))

	// The next calendar date reverts to not-taken even though the stored
	// timestamp is unchanged.
	assert.False(t, TakenOn(&takenAt, time.Date(2025, 3, 11, 0, 1, 0, 0, time.UTC)))

	assert.False(t, TakenOn(nil, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)))
}

func TestIsDue(t *testing.T) {
	takenToday := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	takenYesterday := time.Date(2025, 3, 9, 8, 0, 0, 0, time.UTC)
	noon := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		med  database.Medication
		want bool
	}{
		{"due after scheduled time", database.Medication{Time: "09:00", LastTaken: &takenYesterday}, true},
		{"not due before scheduled time", database.Medication{Time: "18:00"}, false},
		{"taken today suppresses due", database.Medication{Time: "09:00", LastTaken: &takenToday}, false},
		{"snooze overrides schedule", database.Medication{Time: "09:00", SnoozedUntil: "14:00"}, false},
		{"elapsed snooze is due", database.Medication{Time: "18:00", SnoozedUntil: "11:00"}, true},
		{"malformed time never due", database.Medication{Time: "soon"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDue(&tt.med, noon))
		})
	}
}

func TestTakeClearsSnoozeAndCountsActivity(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0)
	svc := NewMedicationService(db, NewStreakService(db))
	ctx := context.Background()

	med, err := svc.Add(ctx, user.ID, "Metformin", "daily", "08:00")
	require.NoError(t, err)

	require.NoError(t, svc.Snooze(ctx, user.ID, med.ID, "08:15"))
	require.NoError(t, svc.Take(ctx, user.ID, med.ID))

	var got database.Medication
	require.NoError(t, db.First(&got, med.ID).Error)
	require.NotNil(t, got.LastTaken)
	assert.True(t, TakenOn(got.LastTaken, time.Now()))
	assert.Empty(t, got.SnoozedUntil, "taking must clear any active snooze")

	assert.Equal(t, 1, reloadUser(t, db, user.ID).Streak)
}

func TestSnoozeDoesNotTouchTakenState(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0)
	svc := NewMedicationService(db, NewStreakService(db))
	ctx := context.Background()

	med, err := svc.Add(ctx, user.ID, "Lisinopril", "daily", "20:00")
	require.NoError(t, err)
	require.NoError(t, svc.Take(ctx, user.ID, med.ID))

	require.NoError(t, svc.Snooze(ctx, user.ID, med.ID, "20:30"))

	var got database.Medication
	require.NoError(t, db.First(&got, med.ID).Error)
	assert.NotNil(t, got.LastTaken)
	assert.Equal(t, "20:30", got.SnoozedUntil)
}

func TestMedicationNotFoundErrors(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0)
	svc := NewMedicationService(db, NewStreakService(db))
	ctx := context.Background()

	assertNotFound := func(err error) {
		t.Helper()
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
	}

	assertNotFound(svc.Take(ctx, user.ID, 999))
	assertNotFound(svc.Snooze(ctx, user.ID, 999, "10:00"))
	assertNotFound(svc.Delete(ctx, user.ID, 999))
	assertNotFound(svc.Update(ctx, user.ID, 999, "X", "daily", "10:00"))
}

func TestAddValidatesInput(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0)
	svc := NewMedicationService(db, NewStreakService(db))
	ctx := context.Background()

	_, err := svc.Add(ctx, user.ID, "", "daily", "08:00")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)

	_, err = svc.Add(ctx, user.ID, "Aspirin", "daily", "8 in the morning")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
}

func TestDeleteScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, 0)
	svc := NewMedicationService(db, NewStreakService(db))
	ctx := context.Background()

	med, err := svc.Add(ctx, user.ID, "Aspirin", "daily", "08:00")
	require.NoError(t, err)

	// A different owner id must not reach the row.
	err = svc.Delete(ctx, user.ID+1, med.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)

	require.NoError(t, svc.Delete(ctx, user.ID, med.ID))
}
