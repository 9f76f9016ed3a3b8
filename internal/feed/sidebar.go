package feed

import (
	"context"
	"sync"
	"time"

	"github.com/dentlink/backend/internal/models"
	"go.uber.org/zap"
)

// trendingWindow is the trailing window for procedure counts
const trendingWindow = 30 * 24 * time.Hour

// ProcedureCount is one row of the trending-procedures aggregate
type ProcedureCount struct {
	Procedure string `gorm:"column:procedure_type" json:"procedure"`
	Count     int    `json:"count"`
}

// Sidebar bundles the four independent summaries shown next to the feed
type Sidebar struct {
	SuggestedProfessionals []models.UserSummary `json:"suggested_professionals"`
	TrendingProcedures     []ProcedureCount     `json:"trending_procedures"`
	ActiveDiscussions      []models.ForumThread `json:"active_discussions"`
	RecentClinicActivity   []models.Clinic      `json:"recent_clinic_activity"`
}

// SuggestedProfessionals returns practitioners the user does not already
// follow, excluding the user themselves. No ranking beyond the store's
// natural order.
func (s *Service) SuggestedProfessionals(ctx context.Context, userID string, limit int) ([]models.UserSummary, error) {
	following, err := s.ResolveFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Model(&models.User{}).Where("id <> ?", userID)
	if len(following) > 0 {
		q = q.Where("id NOT IN ?", scopeIDs(following))
	}
	var users []models.User
	if err := q.Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}
	return summaries, nil
}

// TrendingProcedures counts case procedure types over the trailing 30 days,
// most frequent first. Only visible cases count.
func (s *Service) TrendingProcedures(ctx context.Context, limit int) ([]ProcedureCount, error) {
	cutoff := time.Now().UTC().Add(-trendingWindow)
	var counts []ProcedureCount
	err := s.db.WithContext(ctx).
		Model(&models.Case{}).
		Select("procedure_type, COUNT(*) as count").
		Where("created_at > ? AND patient_consent = ? AND is_public = ? AND procedure_type <> ''", cutoff, true, true).
		Group("procedure_type").
		Order("count DESC").
		Limit(limit).
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// ActiveDiscussions returns threads with the most recent activity first
func (s *Service) ActiveDiscussions(ctx context.Context, limit int) ([]models.ForumThread, error) {
	var threads []models.ForumThread
	err := s.db.WithContext(ctx).
		Preload("Author").
		Order("last_activity_at DESC").
		Limit(limit).
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	return threads, nil
}

// RecentClinicActivity returns the most recently updated clinic pages
func (s *Service) RecentClinicActivity(ctx context.Context, limit int) ([]models.Clinic, error) {
	var clinics []models.Clinic
	err := s.db.WithContext(ctx).
		Preload("Owner").
		Order("updated_at DESC").
		Limit(limit).
		Find(&clinics).Error
	if err != nil {
		return nil, err
	}
	return clinics, nil
}

// GetSidebar computes all four aggregates concurrently. Each one fails soft:
// a failed aggregate is logged and left empty while the other three return.
func (s *Service) GetSidebar(ctx context.Context, userID string, limit int) Sidebar {
	var sb Sidebar
	var wg sync.WaitGroup

	wg.Add(4)
	go func() {
		defer wg.Done()
		summaries, err := s.SuggestedProfessionals(ctx, userID, limit)
		if err != nil {
			s.log.Warn("suggested professionals fetch failed", zap.Error(err))
			return
		}
		sb.SuggestedProfessionals = summaries
	}()
	go func() {
		defer wg.Done()
		counts, err := s.TrendingProcedures(ctx, limit)
		if err != nil {
			s.log.Warn("trending procedures fetch failed", zap.Error(err))
			return
		}
		sb.TrendingProcedures = counts
	}()
	go func() {
		defer wg.Done()
		threads, err := s.ActiveDiscussions(ctx, limit)
		if err != nil {
			s.log.Warn("active discussions fetch failed", zap.Error(err))
			return
		}
		sb.ActiveDiscussions = threads
	}()
	go func() {
		defer wg.Done()
		clinics, err := s.RecentClinicActivity(ctx, limit)
		if err != nil {
			s.log.Warn("recent clinic activity fetch failed", zap.Error(err))
			return
		}
		sb.RecentClinicActivity = clinics
	}()
	wg.Wait()

	if sb.SuggestedProfessionals == nil {
		sb.SuggestedProfessionals = []models.UserSummary{}
	}
	if sb.TrendingProcedures == nil {
		sb.TrendingProcedures = []ProcedureCount{}
	}
	if sb.ActiveDiscussions == nil {
		sb.ActiveDiscussions = []models.ForumThread{}
	}
	if sb.RecentClinicActivity == nil {
		sb.RecentClinicActivity = []models.Clinic{}
	}
	return sb
}
