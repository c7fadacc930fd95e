package models

import (
	"time"
)

// Video is a single search hit.
type Video struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

// Segment is one caption line as returned by the transcript provider.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Transcript is the concatenated caption text of a video.
type Transcript struct {
	VideoID   string    `json:"video_id"`
	Text      string    `json:"text"`
	FetchedAt time.Time `json:"fetched_at"`
}

// StructuredAnswer is the parsed form of an LLM reply.
type StructuredAnswer struct {
	Summary string `json:"summary"`
	// KeyPointsText is the raw block following the summary.
	KeyPointsText string   `json:"key_points_text,omitempty"`
	KeyPoints     []string `json:"key_points"`
}
