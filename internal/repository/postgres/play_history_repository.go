package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cosound/business/recommend"
	"cosound/domain"

	"gorm.io/gorm"
)

type PlayHistoryRepository struct {
	DB *gorm.DB
}

var _ recommend.PlayHistoryRepository = (*PlayHistoryRepository)(nil)

func NewPlayHistoryRepository(db *gorm.DB) *PlayHistoryRepository {
	return &PlayHistoryRepository{DB: db}
}

func (r *PlayHistoryRepository) Append(ctx context.Context, entry *domain.PlayHistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append play history: %w", err)
	}

	return nil
}

func (r *PlayHistoryRepository) LastPlayedAt(ctx context.Context) (map[uint]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	type lastPlay struct {
		TrackID  uint
		PlayedAt time.Time
	}

	var rows []lastPlay
	if err := r.DB.WithContext(ctx).
		Model(&domain.PlayHistoryEntry{}).
		Select("track_id, MAX(played_at) AS played_at").
		Group("track_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query play history: %w", err)
	}

	last := make(map[uint]time.Time, len(rows))
	for _, row := range rows {
		last[row.TrackID] = row.PlayedAt
	}

	return last, nil
}

func (r *PlayHistoryRepository) Latest(ctx context.Context) (domain.PlayHistoryEntry, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.PlayHistoryEntry{}, false, fmt.Errorf("context error: %w", err)
	}

	var entry domain.PlayHistoryEntry
	if err := r.DB.WithContext(ctx).
		Order("played_at DESC, id DESC").
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PlayHistoryEntry{}, false, nil
		}
		return domain.PlayHistoryEntry{}, false, fmt.Errorf("failed to query latest play: %w", err)
	}

	return entry, true, nil
}
