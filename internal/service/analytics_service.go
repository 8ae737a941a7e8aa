package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/launchlist/waitlist-service/internal/domain"
	"github.com/launchlist/waitlist-service/internal/repository"
)

const (
	defaultTrailingDays = 30
	maxTrailingDays     = 366
	recentSignupsLimit  = 10

	defaultPageSize = 50
	maxPageSize     = 200
	// maxPage keeps (page-1)*pageSize within int range.
	maxPage = math.MaxInt / maxPageSize
)

// AnalyticsService computes the admin dashboard aggregates.
type AnalyticsService struct {
	signups     repository.SignupRepository
	location    *time.Location
	defaultDays int
	logger      *zap.Logger
	now         func() time.Time
}

// NewAnalyticsService builds the service. loc is the reference timezone for
// calendar-day boundaries.
func NewAnalyticsService(signups repository.SignupRepository, loc *time.Location, defaultDays int, logger *zap.Logger) *AnalyticsService {
	return NewAnalyticsServiceWithClock(signups, loc, defaultDays, logger, time.Now)
}

// NewAnalyticsServiceWithClock is NewAnalyticsService with an injectable clock.
func NewAnalyticsServiceWithClock(signups repository.SignupRepository, loc *time.Location, defaultDays int, logger *zap.Logger, now func() time.Time) *AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	if defaultDays <= 0 {
		defaultDays = defaultTrailingDays
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		signups:     signups,
		location:    loc,
		defaultDays: defaultDays,
		logger:      logger,
		now:         now,
	}
}

// ComputeDashboard aggregates every dashboard figure from one consistent snapshot.
func (s *AnalyticsService) ComputeDashboard(ctx context.Context, trailingDays int) (*domain.DashboardSnapshot, error) {
	if trailingDays <= 0 {
		trailingDays = s.defaultDays
	}
	if trailingDays > maxTrailingDays {
		trailingDays = maxTrailingDays
	}

	now := s.now().In(s.location)
	today := startOfDay(now)
	timelineStart := today.AddDate(0, 0, -(trailingDays - 1))

	snapshot := &domain.DashboardSnapshot{GeneratedAt: now}
	var byDay []domain.DayCount

	err := s.signups.WithSnapshot(ctx, func(r repository.SignupReader) error {
		var err error
		if snapshot.Total, err = r.Count(ctx); err != nil {
			return fmt.Errorf("count total: %w", err)
		}
		if snapshot.Today, err = r.CountSince(ctx, today); err != nil {
			return fmt.Errorf("count today: %w", err)
		}
		if snapshot.ThisWeek, err = r.CountSince(ctx, now.Add(-7*24*time.Hour)); err != nil {
			return fmt.Errorf("count week: %w", err)
		}
		if snapshot.BySource, err = r.CountBySource(ctx); err != nil {
			return fmt.Errorf("count by source: %w", err)
		}
		if byDay, err = r.CountByDay(ctx, timelineStart, s.location.String()); err != nil {
			return fmt.Errorf("count by day: %w", err)
		}
		if snapshot.Recent, err = r.ListRecent(ctx, recentSignupsLimit, 0); err != nil {
			return fmt.Errorf("list recent: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("dashboard computation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrAnalyticsUnavailable, err)
	}

	snapshot.Timeline = fillTimeline(timelineStart, trailingDays, byDay)
	return snapshot, nil
}

// ListSignups returns one page of signups, newest first. page is 1-based.
func (s *AnalyticsService) ListSignups(ctx context.Context, page, pageSize int) (*domain.SignupPage, error) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	result := &domain.SignupPage{Page: page, PageSize: pageSize}
	err := s.signups.WithSnapshot(ctx, func(r repository.SignupReader) error {
		var err error
		if result.Total, err = r.Count(ctx); err != nil {
			return fmt.Errorf("count total: %w", err)
		}
		if result.Items, err = r.ListRecent(ctx, pageSize, (page-1)*pageSize); err != nil {
			return fmt.Errorf("list signups: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("signup listing failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrAnalyticsUnavailable, err)
	}
	return result, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// fillTimeline returns exactly days ascending entries starting at start, taking
// counts from byDay and zero elsewhere.
func fillTimeline(start time.Time, days int, byDay []domain.DayCount) []domain.DayCount {
	counts := make(map[string]int64, len(byDay))
	for _, dc := range byDay {
		counts[dc.Date] = dc.Count
	}

	out := make([]domain.DayCount, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format(domain.DateLayout)
		out = append(out, domain.DayCount{Date: date, Count: counts[date]})
	}
	return out
}
