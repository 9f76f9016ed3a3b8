// Package feed builds the merged home feed: it resolves the viewer's network,
// fetches each content type from the database, wraps rows into a uniform
// envelope and ranks the merged set by recency or activity.
package feed

import (
	"time"

	"github.com/dentlink/backend/internal/models"
)

// ItemType tags the content kind carried by a feed item
type ItemType string

const (
	TypeCase         ItemType = "case"
	TypeThread       ItemType = "thread"
	TypeClinic       ItemType = "clinic"
	TypeProfessional ItemType = "professional"
)

// Filter selects which content types a feed request includes
type Filter string

const (
	FilterAll           Filter = "all"
	FilterCases         Filter = "cases"
	FilterThreads       Filter = "threads"
	FilterClinics       Filter = "clinics"
	FilterProfessionals Filter = "professionals"
)

// Sort selects the feed ordering
type Sort string

const (
	// SortLatest orders by created_at descending
	SortLatest Sort = "latest"
	// SortTrending orders by activity score descending
	SortTrending Sort = "trending"
	// SortMyNetwork is latest restricted to content from followed users.
	// An empty network yields an empty feed, never a fallback to global content.
	SortMyNetwork Sort = "my_network"
)

// ValidFilter reports whether f is a known filter value
func ValidFilter(f Filter) bool {
	switch f {
	case FilterAll, FilterCases, FilterThreads, FilterClinics, FilterProfessionals:
		return true
	}
	return false
}

// ValidSort reports whether s is a known sort value
func ValidSort(s Sort) bool {
	switch s {
	case SortLatest, SortTrending, SortMyNetwork:
		return true
	}
	return false
}

// ScoreWeights holds the tuning constants for the activity score. The
// defaults match current product tuning; they are configuration, not law.
type ScoreWeights struct {
	SaveWeight  int // multiplier for case saves
	ReplyWeight int // multiplier for thread replies
}

// DefaultScoreWeights is used when no weights are configured
var DefaultScoreWeights = ScoreWeights{SaveWeight: 2, ReplyWeight: 3}

// Item is the uniform envelope every content row is wrapped into before
// ranking. Ephemeral - built per request, never persisted.
type Item struct {
	ID            string      `json:"id"` // synthetic: "{type}-{contentID}"
	Type          ItemType    `json:"type"`
	Payload       interface{} `json:"payload"`
	CreatedAt     time.Time   `json:"created_at"`
	ActivityScore int         `json:"activity_score"`
}

// normalizeCase wraps a case row. Score: views + SaveWeight*saves.
func (s *Service) normalizeCase(c models.Case) Item {
	return Item{
		ID:            string(TypeCase) + "-" + c.ID,
		Type:          TypeCase,
		Payload:       c,
		CreatedAt:     c.CreatedAt,
		ActivityScore: c.ViewsCount + s.weights.SaveWeight*c.SavesCount,
	}
}

// normalizeThread wraps a thread row. Score: views + ReplyWeight*replies.
func (s *Service) normalizeThread(t models.ForumThread) Item {
	return Item{
		ID:            string(TypeThread) + "-" + t.ID,
		Type:          TypeThread,
		Payload:       t,
		CreatedAt:     t.CreatedAt,
		ActivityScore: t.ViewsCount + s.weights.ReplyWeight*t.RepliesCount,
	}
}

// normalizeClinic wraps a clinic row. Clinics carry no engagement counters.
func (s *Service) normalizeClinic(c models.Clinic) Item {
	return Item{
		ID:        string(TypeClinic) + "-" + c.ID,
		Type:      TypeClinic,
		Payload:   c,
		CreatedAt: c.CreatedAt,
	}
}

// normalizeProfessional wraps a practitioner row
func (s *Service) normalizeProfessional(u models.User) Item {
	return Item{
		ID:        string(TypeProfessional) + "-" + u.ID,
		Type:      TypeProfessional,
		Payload:   u,
		CreatedAt: u.CreatedAt,
	}
}
