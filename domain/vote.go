package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Binary vote convention: callers normalize richer scales (stars, sliders)
// into this before the engine sees them.
const (
	VoteLike    = 1
	VoteDislike = -1
)

// Vote is an immutable append-only fact: one tap by one user. It is the
// authoritative engagement record and is never mutated or deleted by the
// engine, even when the derived preference update fails.
type Vote struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"column:user_id;not null" json:"user_id"`
	// TrackRef is the catalog id as text, or a free-text label in degraded
	// mode. Nil when the vote arrived with an unusable track reference.
	TrackRef  *string           `gorm:"column:track_ref" json:"track_ref"`
	Value     int               `gorm:"column:value;not null" json:"value"`
	Context   datatypes.JSONMap `gorm:"column:context;type:jsonb" json:"context"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Vote) TableName() string {
	return "votes"
}
