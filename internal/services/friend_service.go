package services

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/vitalityhub/vitality-helper/internal/apperrors"
	"github.com/vitalityhub/vitality-helper/internal/database"
	"gorm.io/gorm"
)

// FriendService manages the support-network list and the leaderboard.
type FriendService struct {
	db *gorm.DB
}

func NewFriendService(db *gorm.DB) *FriendService {
	return &FriendService{db: db}
}

// LeaderboardEntry is one leaderboard row. The tracked user appears with
// "(You)" appended and their coin balance as points.
type LeaderboardEntry struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// Add creates a friend with a pre-existing leaderboard score in [0, 99].
// Scores are assigned once and never mutated afterwards.
func (s *FriendService) Add(ctx context.Context, userID uint, name string) (*database.Friend, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("friend name is required")
	}

	friend := &database.Friend{
		UserID: userID,
		Name:   name,
		Score:  rand.Intn(100),
	}
	if err := s.db.WithContext(ctx).Create(friend).Error; err != nil {
		return nil, fmt.Errorf("failed to create friend: %w", err)
	}
	return friend, nil
}

func (s *FriendService) Delete(ctx context.Context, userID, friendID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", friendID, userID).
		Delete(&database.Friend{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete friend: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("friend not found")
	}
	return nil
}

func (s *FriendService) List(ctx context.Context, userID uint) ([]database.Friend, error) {
	var friends []database.Friend
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&friends).Error; err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return friends, nil
}

// Leaderboard merges the user (as "{name} (You)" with coins as points) with
// all friends, descending by points. Ties keep input order: user first,
// then friends by creation.
func (s *FriendService) Leaderboard(ctx context.Context, userID uint) ([]LeaderboardEntry, error) {
	var user database.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	friends, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	return MergeLeaderboard(user.Name, user.Coins, friends), nil
}

// MergeLeaderboard builds the ordered board from the user row and the
// friend list. Stable sort preserves relative order on equal points.
func MergeLeaderboard(userName string, userCoins int, friends []database.Friend) []LeaderboardEntry {
	board := make([]LeaderboardEntry, 0, len(friends)+1)
	board = append(board, LeaderboardEntry{
		Name:   fmt.Sprintf("%s (You)", userName),
		Points: userCoins,
	})
	for _, f := range friends {
		board = append(board, LeaderboardEntry{Name: f.Name, Points: f.Score})
	}

	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Points > board[j].Points
	})
	return board
}
