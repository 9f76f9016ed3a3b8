package handlers

import (
	"github.com/dentlink/backend/internal/auth"
	"github.com/dentlink/backend/internal/feed"
	"github.com/dentlink/backend/internal/search"
	"github.com/dentlink/backend/internal/storage"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	feed     *feed.Service
	auth     *auth.Service
	uploader storage.ImageUploader
	search   *search.Client
}

// NewHandlers creates a new handlers instance
func NewHandlers(feedService *feed.Service, authService *auth.Service) *Handlers {
	return &Handlers{
		feed: feedService,
		auth: authService,
	}
}

// SetUploader sets the image uploader used by the upload endpoints
func (h *Handlers) SetUploader(uploader storage.ImageUploader) {
	h.uploader = uploader
}

// SetSearchClient enables Elasticsearch-backed practitioner search. Without
// it the search endpoint falls back to SQL pattern matching.
func (h *Handlers) SetSearchClient(searchClient *search.Client) {
	h.search = searchClient
}
