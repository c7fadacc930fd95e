package models

// SearchRequest is the body of POST /search_videos.
type SearchRequest struct {
	Query string `json:"query"`
}

// SummarizeRequest is the body of POST /summarize_video.
type SummarizeRequest struct {
	VideoURL  string `json:"video_url"`
	Translate bool   `json:"translate,omitempty"`
}

// ChatRequest is the body of POST /video_chat.
type ChatRequest struct {
	VideoURL  string `json:"video_url,omitempty"`
	Question  string `json:"question"`
	Translate bool   `json:"translate,omitempty"`
}

type SummaryResponse struct {
	VideoID           string   `json:"video_id"`
	Summary           string   `json:"summary"`
	KeyPoints         string   `json:"key_points"`
	Facts             []string `json:"facts"`
	Translated        bool     `json:"translated"`
	TranslationFailed bool     `json:"translation_failed,omitempty"`
}

type ChatResponse struct {
	VideoID           string   `json:"video_id,omitempty"`
	Summary           string   `json:"summary"`
	Facts             []string `json:"facts"`
	Timestamps        []string `json:"timestamps"`
	Translated        bool     `json:"translated"`
	TranslationFailed bool     `json:"translation_failed,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}
