package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionActive   = "active"
	SessionInactive = "inactive"
)

// PresenceSession is one user's window of "in the room". Expiry is a read-time
// predicate: a session past ExpiresAt simply stops counting, nothing sweeps it.
type PresenceSession struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	StartedAt time.Time `gorm:"column:started_at;not null" json:"started_at"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
	Status    string    `gorm:"column:status;not null" json:"status"`
}

func (PresenceSession) TableName() string {
	return "presence_sessions"
}
