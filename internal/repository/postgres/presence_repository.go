package postgres

import (
	"context"
	"fmt"
	"time"

	"cosound/business/presence"
	"cosound/domain"

	"gorm.io/gorm"
)

type PresenceRepository struct {
	DB *gorm.DB
}

var _ presence.SessionRepository = (*PresenceRepository)(nil)

func NewPresenceRepository(db *gorm.DB) *PresenceRepository {
	return &PresenceRepository{DB: db}
}

func (r *PresenceRepository) Create(ctx context.Context, session *domain.PresenceSession) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create presence session: %w", err)
	}

	return nil
}

func (r *PresenceRepository) DeactivateActive(ctx context.Context, userID uint) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).
		Model(&domain.PresenceSession{}).
		Where("user_id = ? AND status = ?", userID, domain.SessionActive).
		Update("status", domain.SessionInactive).Error; err != nil {
		return fmt.Errorf("failed to deactivate sessions: %w", err)
	}

	return nil
}

// ActiveUserIDs applies the expiry predicate at read time; expired rows stay
// in place but stop counting.
func (r *PresenceRepository) ActiveUserIDs(ctx context.Context, now time.Time) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var ids []uint
	if err := r.DB.WithContext(ctx).
		Model(&domain.PresenceSession{}).
		Where("status = ? AND expires_at > ?", domain.SessionActive, now).
		Distinct().
		Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to query active sessions: %w", err)
	}

	return ids, nil
}
