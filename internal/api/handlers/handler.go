package handlers

import (
	"examprep/internal/db"
	"examprep/internal/gemini"
	"examprep/internal/youtube"
)

// Handler contains the API handlers dependencies. Gemini may be nil, in
// which case generation falls back to mock output. DB may be nil, in which
// case no history is recorded.
type Handler struct {
	Gemini  *gemini.Client
	DB      *db.DB
	Youtube *youtube.Fetcher
}

// NewHandler creates a new Handler
func NewHandler(geminiClient *gemini.Client, database *db.DB) *Handler {
	return &Handler{
		Gemini:  geminiClient,
		DB:      database,
		Youtube: youtube.New(),
	}
}
