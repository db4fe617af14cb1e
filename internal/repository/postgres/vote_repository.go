package postgres

import (
	"context"
	"fmt"
	"time"

	"cosound/business/taste"
	"cosound/domain"

	"gorm.io/gorm"
)

type VoteRepository struct {
	DB *gorm.DB
}

var _ taste.VoteRepository = (*VoteRepository)(nil)

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{DB: db}
}

// Save appends one immutable vote fact. Votes are never updated or deleted.
func (r *VoteRepository) Save(ctx context.Context, vote *domain.Vote) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(vote).Error; err != nil {
		return fmt.Errorf("failed to save vote: %w", err)
	}

	return nil
}

func (r *VoteRepository) CountSince(ctx context.Context, userID uint, since time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var count int64
	if err := r.DB.WithContext(ctx).
		Model(&domain.Vote{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count recent votes: %w", err)
	}

	return count, nil
}

func (r *VoteRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var count int64
	if err := r.DB.WithContext(ctx).
		Model(&domain.Vote{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}

	return count, nil
}
