package feed

import (
	"context"
	"sort"
	"sync"

	"github.com/dentlink/backend/internal/errors"
	"github.com/dentlink/backend/internal/metrics"
	"github.com/dentlink/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service computes feeds and sidebar aggregates from the database
type Service struct {
	db      *gorm.DB
	weights ScoreWeights
	log     *zap.Logger
}

// NewService creates a feed service. A nil logger disables diagnostics.
func NewService(db *gorm.DB, weights ScoreWeights, log *zap.Logger) *Service {
	if weights.SaveWeight == 0 && weights.ReplyWeight == 0 {
		weights = DefaultScoreWeights
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, weights: weights, log: log}
}

// ResolveFollowing returns the set of user IDs the given user follows.
// An unknown user simply has an empty set; store errors propagate.
func (s *Service) ResolveFollowing(ctx context.Context, userID string) (map[string]struct{}, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, err
	}
	following := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		following[id] = struct{}{}
	}
	return following, nil
}

// scopeIDs flattens a membership set for an IN clause
func scopeIDs(scope map[string]struct{}) []string {
	ids := make([]string, 0, len(scope))
	for id := range scope {
		ids = append(ids, id)
	}
	return ids
}

// fetchCases returns visible cases, newest first, with the author summary
// preloaded. A non-nil empty scope returns nothing - a scoped request must
// never fall back to unscoped results.
func (s *Service) fetchCases(ctx context.Context, scope map[string]struct{}, limit int) ([]models.Case, error) {
	if scope != nil && len(scope) == 0 {
		return nil, nil
	}
	q := s.db.WithContext(ctx).
		Preload("Author").
		Where("patient_consent = ? AND is_public = ?", true, true)
	if scope != nil {
		q = q.Where("author_id IN ?", scopeIDs(scope))
	}
	var cases []models.Case
	if err := q.Order("created_at DESC").Limit(limit).Find(&cases).Error; err != nil {
		return nil, err
	}
	return cases, nil
}

// fetchThreads returns forum threads, newest first
func (s *Service) fetchThreads(ctx context.Context, scope map[string]struct{}, limit int) ([]models.ForumThread, error) {
	if scope != nil && len(scope) == 0 {
		return nil, nil
	}
	q := s.db.WithContext(ctx).Preload("Author")
	if scope != nil {
		q = q.Where("author_id IN ?", scopeIDs(scope))
	}
	var threads []models.ForumThread
	if err := q.Order("created_at DESC").Limit(limit).Find(&threads).Error; err != nil {
		return nil, err
	}
	return threads, nil
}

// fetchClinics returns clinic pages, newest first
func (s *Service) fetchClinics(ctx context.Context, scope map[string]struct{}, limit int) ([]models.Clinic, error) {
	if scope != nil && len(scope) == 0 {
		return nil, nil
	}
	q := s.db.WithContext(ctx).Preload("Owner")
	if scope != nil {
		q = q.Where("owner_id IN ?", scopeIDs(scope))
	}
	var clinics []models.Clinic
	if err := q.Order("created_at DESC").Limit(limit).Find(&clinics).Error; err != nil {
		return nil, err
	}
	return clinics, nil
}

// fetchProfessionals returns practitioner profiles, newest first. When
// scoped, only followed practitioners are returned. The viewer never
// appears in their own feed.
func (s *Service) fetchProfessionals(ctx context.Context, scope map[string]struct{}, excludeID string, limit int) ([]models.User, error) {
	if scope != nil && len(scope) == 0 {
		return nil, nil
	}
	q := s.db.WithContext(ctx).Model(&models.User{})
	if scope != nil {
		q = q.Where("id IN ?", scopeIDs(scope))
	}
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var users []models.User
	if err := q.Order("created_at DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Rank orders items in place and returns the slice. Sorting is stable so
// ties keep their fetch order and pagination stays deterministic within a
// request.
func Rank(items []Item, by Sort) []Item {
	switch by {
	case SortTrending:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].ActivityScore > items[j].ActivityScore
		})
	default:
		// latest and my_network both order by recency; my_network differs
		// only in how the fetchers were scoped
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
	}
	return items
}

// Paginate slices out the requested page. An offset past the end yields an
// empty page, not an error. Negative arguments are rejected by GetFeedItems
// before anything is fetched.
func Paginate(items []Item, limit, offset int) []Item {
	if offset >= len(items) {
		return []Item{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// typeFetch is one slot in the fan-out: the type plus its fetch result
type typeFetch struct {
	itemType ItemType
	items    []Item
	err      error
}

// activeTypes maps a filter to the content types it selects
func activeTypes(filter Filter) []ItemType {
	switch filter {
	case FilterCases:
		return []ItemType{TypeCase}
	case FilterThreads:
		return []ItemType{TypeThread}
	case FilterClinics:
		return []ItemType{TypeClinic}
	case FilterProfessionals:
		return []ItemType{TypeProfessional}
	default:
		return []ItemType{TypeCase, TypeThread, TypeClinic, TypeProfessional}
	}
}

// fetchType runs one per-type fetch and normalizes the rows
func (s *Service) fetchType(ctx context.Context, t ItemType, scope map[string]struct{}, userID string, limit int) ([]Item, error) {
	switch t {
	case TypeCase:
		rows, err := s.fetchCases(ctx, scope, limit)
		if err != nil {
			return nil, err
		}
		items := make([]Item, 0, len(rows))
		for _, r := range rows {
			items = append(items, s.normalizeCase(r))
		}
		return items, nil
	case TypeThread:
		rows, err := s.fetchThreads(ctx, scope, limit)
		if err != nil {
			return nil, err
		}
		items := make([]Item, 0, len(rows))
		for _, r := range rows {
			items = append(items, s.normalizeThread(r))
		}
		return items, nil
	case TypeClinic:
		rows, err := s.fetchClinics(ctx, scope, limit)
		if err != nil {
			return nil, err
		}
		items := make([]Item, 0, len(rows))
		for _, r := range rows {
			items = append(items, s.normalizeClinic(r))
		}
		return items, nil
	default:
		rows, err := s.fetchProfessionals(ctx, scope, userID, limit)
		if err != nil {
			return nil, err
		}
		items := make([]Item, 0, len(rows))
		for _, r := range rows {
			items = append(items, s.normalizeProfessional(r))
		}
		return items, nil
	}
}

// GetFeedItems returns one page of the merged, ranked feed.
//
// The selected per-type fetchers run concurrently and fail soft: a failing
// type contributes an empty list and the rest of the feed still renders.
// Only a total failure (every requested type failed, which includes the
// single-type filters) surfaces as an error. Each type is over-fetched to
// offset+limit rows so a busy type cannot starve the others after the merge;
// the ranker does the final truncation.
func (s *Service) GetFeedItems(ctx context.Context, userID string, filter Filter, by Sort, limit, offset int) ([]Item, error) {
	if limit < 0 || offset < 0 {
		return nil, errors.BadRequest("limit and offset must be non-negative")
	}
	if !ValidFilter(filter) {
		return nil, errors.BadRequest("unknown filter: " + string(filter))
	}
	if !ValidSort(by) {
		return nil, errors.BadRequest("unknown sort: " + string(by))
	}
	if limit == 0 {
		return []Item{}, nil
	}

	var scope map[string]struct{}
	if by == SortMyNetwork {
		following, err := s.ResolveFollowing(ctx, userID)
		if err != nil {
			return nil, errors.UpstreamFetchFailure("failed to resolve network", err)
		}
		// No network yet: show nothing rather than everything. The caller
		// distinguishes this empty state from "no content exists".
		if len(following) == 0 {
			return []Item{}, nil
		}
		scope = following
	}

	types := activeTypes(filter)
	perTypeLimit := offset + limit

	results := make([]typeFetch, len(types))
	var wg sync.WaitGroup
	for i, t := range types {
		wg.Add(1)
		go func(slot int, t ItemType) {
			defer wg.Done()
			items, err := s.fetchType(ctx, t, scope, userID, perTypeLimit)
			results[slot] = typeFetch{itemType: t, items: items, err: err}
		}(i, t)
	}
	wg.Wait()

	merged := make([]Item, 0, len(types)*perTypeLimit)
	failed := 0
	var lastErr error
	for _, r := range results {
		if r.err != nil {
			failed++
			lastErr = r.err
			metrics.Get().FeedFetchFailures.WithLabelValues(string(r.itemType)).Inc()
			s.log.Warn("feed fetch failed, contributing empty list",
				zap.String("type", string(r.itemType)),
				zap.Error(r.err),
			)
			continue
		}
		merged = append(merged, r.items...)
	}
	if failed == len(types) {
		return nil, errors.UpstreamFetchFailure("all content fetches failed", lastErr)
	}

	return Paginate(Rank(merged, by), limit, offset), nil
}
