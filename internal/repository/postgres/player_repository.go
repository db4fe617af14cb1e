package postgres

import (
	"context"
	"errors"
	"fmt"

	"cosound/domain"

	"gorm.io/gorm"
)

// PlayerRepository backs the playback-client API key check.
type PlayerRepository struct {
	DB *gorm.DB
}

func NewPlayerRepository(db *gorm.DB) *PlayerRepository {
	return &PlayerRepository{DB: db}
}

func (r *PlayerRepository) FindByToken(ctx context.Context, token string) (domain.Player, error) {
	if err := ctx.Err(); err != nil {
		return domain.Player{}, fmt.Errorf("context error: %w", err)
	}

	var p domain.Player
	if err := r.DB.WithContext(ctx).First(&p, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Player{}, gorm.ErrRecordNotFound
		}
		return domain.Player{}, fmt.Errorf("failed to find player: %w", err)
	}

	return p, nil
}
