package domain

import "time"

// PlayHistoryEntry is an append-only fact written once per track selection.
// It exists to drive the recency penalty and the "now playing" read; retention
// is an external concern.
type PlayHistoryEntry struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	TrackID  uint      `gorm:"column:track_id;not null;index" json:"track_id"`
	PlayedAt time.Time `gorm:"column:played_at;not null;index" json:"played_at"`
}

func (PlayHistoryEntry) TableName() string {
	return "play_history"
}
