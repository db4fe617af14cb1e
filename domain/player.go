package domain

import "time"

// Player is a physical playback client (the dumb poller). It authenticates
// with its token and only ever reads "what's next" / "what's playing".
type Player struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"column:name;not null" json:"name"`
	Token     string `gorm:"column:token;unique;not null" json:"-"`
	CreatedAt time.Time
}

func (Player) TableName() string {
	return "players"
}
