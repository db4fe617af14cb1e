package domain

import "errors"

var (
	// ErrInvalidDimension rejects a vector whose length is not VectorDim.
	// Vectors are never coerced or padded.
	ErrInvalidDimension = errors.New("vector has wrong dimension")

	// ErrInvalidEmbedding means the referenced track has no usable embedding.
	// The vote fact is still recorded; only the vector update is skipped.
	ErrInvalidEmbedding = errors.New("track has no usable embedding")

	// ErrUnknownUser is a caller error on presence operations.
	ErrUnknownUser = errors.New("unknown user")

	// ErrVoteCooldown means the user voted again inside the cooldown window.
	ErrVoteCooldown = errors.New("vote cooldown active")

	// ErrInvalidTapToken covers malformed, tampered and expired tag tokens
	// alike; callers get no hint which.
	ErrInvalidTapToken = errors.New("invalid or expired tap token")

	// Structural "nothing to recommend" states. Business outcomes, not bugs;
	// callers fall back to default playback.
	ErrEmptyPopulation  = errors.New("no users to aggregate")
	ErrEmptyCatalog     = errors.New("no tracks with embeddings")
	ErrNoPreferenceData = errors.New("no preference data exists")
)
