package recommend

import "time"

type Config struct {
	// PenaltyWeight is the score inflation for a track played this instant.
	PenaltyWeight float64
	// PenaltyHalfLife controls how fast the recency penalty decays.
	PenaltyHalfLife time.Duration
}

const (
	defaultPenaltyWeight   = 1.0
	defaultPenaltyHalfLife = 30 * time.Minute
)

func DefaultConfig() Config {
	return Config{
		PenaltyWeight:   defaultPenaltyWeight,
		PenaltyHalfLife: defaultPenaltyHalfLife,
	}
}
