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
)

// trackRow keeps the pgvector column type out of the domain model.
type trackRow struct {
	ID        uint `gorm:"primaryKey"`
	Title     string
	Artist    string
	FileURL   string
	Embedding *pgvector.Vector `gorm:"type:vector(5)"`
	CreatedAt time.Time
}

func (trackRow) TableName() string {
	return "tracks"
}

func (row *trackRow) toDomain() (domain.Track, error) {
	track := domain.Track{
		ID:        row.ID,
		Title:     row.Title,
		Artist:    row.Artist,
		FileURL:   row.FileURL,
		CreatedAt: row.CreatedAt,
	}
	if row.Embedding != nil {
		vec, err := fromPgVector(*row.Embedding)
		if err != nil {
			return domain.Track{}, err
		}
		track.Embedding = &vec
	}
	return track, nil
}

type TrackRepository struct {
	DB *gorm.DB
}

var _ taste.TrackRepository = (*TrackRepository)(nil)
var _ recommend.TrackRepository = (*TrackRepository)(nil)

func NewTrackRepository(db *gorm.DB) *TrackRepository {
	return &TrackRepository{DB: db}
}

func (r *TrackRepository) FindByID(ctx context.Context, id uint) (domain.Track, error) {
	if err := ctx.Err(); err != nil {
		return domain.Track{}, fmt.Errorf("context error: %w", err)
	}

	var row trackRow
	if err := r.DB.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Track{}, fmt.Errorf("track %d: %w", id, gorm.ErrRecordNotFound)
		}
		return domain.Track{}, fmt.Errorf("failed to find track: %w", err)
	}

	return row.toDomain()
}

// FindEmbedded returns only tracks that carry an embedding; rows without one
// are invisible to ranking.
func (r *TrackRepository) FindEmbedded(ctx context.Context) ([]domain.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []trackRow
	if err := r.DB.WithContext(ctx).
		Where("embedding IS NOT NULL").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list embedded tracks: %w", err)
	}

	tracks := make([]domain.Track, 0, len(rows))
	for i := range rows {
		track, err := rows[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", rows[i].ID, err)
		}
		tracks = append(tracks, track)
	}

	return tracks, nil
}

func (r *TrackRepository) Create(ctx context.Context, track *domain.Track) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	row := trackRow{
		Title:   track.Title,
		Artist:  track.Artist,
		FileURL: track.FileURL,
	}
	if track.Embedding != nil {
		vec := toPgVector(*track.Embedding)
		row.Embedding = &vec
	}

	if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create track: %w", err)
	}
	track.ID = row.ID
	track.CreatedAt = row.CreatedAt

	return nil
}
