package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cosound/business/recommend"
	"cosound/business/taste"
	"cosound/domain"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type preferenceRow struct {
	UserID    uint            `gorm:"column:user_id;primaryKey"`
	Vector    pgvector.Vector `gorm:"column:vector;type:vector(5)"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (preferenceRow) TableName() string {
	return "user_preference"
}

type PreferenceRepository struct {
	DB *gorm.DB
}

var _ taste.PreferenceRepository = (*PreferenceRepository)(nil)
var _ recommend.PreferenceRepository = (*PreferenceRepository)(nil)

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{DB: db}
}

// Get never fails for a well-formed user id: a user with no stored row gets
// the zero vector.
func (r *PreferenceRepository) Get(ctx context.Context, userID uint) (domain.TasteVector, error) {
	if err := ctx.Err(); err != nil {
		return domain.TasteVector{}, fmt.Errorf("context error: %w", err)
	}

	var row preferenceRow
	err := r.DB.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.TasteVector{}, nil
	}
	if err != nil {
		return domain.TasteVector{}, fmt.Errorf("failed to query user_preference: %w", err)
	}

	return fromPgVector(row.Vector)
}

func (r *PreferenceRepository) Set(ctx context.Context, userID uint, vector domain.TasteVector) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	row := preferenceRow{
		UserID:    userID,
		Vector:    toPgVector(vector),
		UpdatedAt: time.Now(),
	}

	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"vector", "updated_at"}),
		},
	).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to upsert user_preference: %w", err)
	}

	return nil
}

func (r *PreferenceRepository) AllUserIDs(ctx context.Context) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var ids []uint
	if err := r.DB.WithContext(ctx).
		Model(&preferenceRow{}).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list preference users: %w", err)
	}

	return ids, nil
}
