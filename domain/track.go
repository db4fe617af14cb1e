package domain

import "time"

// Track is a catalog entity owned by the upload collaborator. The engine only
// reads it; embeddings are computed upstream, so Embedding is nil until the
// classifier has run.
type Track struct {
	ID        uint         `json:"id"`
	Title     string       `json:"title"`
	Artist    string       `json:"artist"`
	FileURL   string       `json:"file_url"`
	Embedding *TasteVector `json:"embedding,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// RankedTrack is one CatalogIndex result: base cosine distance plus recency
// penalty, ascending by AdjustedScore.
type RankedTrack struct {
	Track         Track   `json:"track"`
	Distance      float64 `json:"distance"`
	Penalty       float64 `json:"penalty"`
	AdjustedScore float64 `json:"adjusted_score"`
}
