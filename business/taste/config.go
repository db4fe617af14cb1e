package taste

import "time"

type Config struct {
	// Alpha is the learning rate of the vote update rule.
	Alpha float64
	// Softness damps the dislike push-away relative to the like pull.
	Softness float64
	// VoteCooldown rejects a second vote from the same user inside the
	// window. Zero disables the check.
	VoteCooldown time.Duration
	// TagTokenKey encrypts NFC tap tokens (AES, 16/24/32 bytes).
	TagTokenKey string
}

const (
	defaultAlpha    = 0.12
	defaultSoftness = 0.70
	defaultCooldown = 60 * time.Second
)

func DefaultConfig() Config {
	return Config{
		Alpha:        defaultAlpha,
		Softness:     defaultSoftness,
		VoteCooldown: defaultCooldown,
	}
}
