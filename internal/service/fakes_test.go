package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/launchlist/waitlist-service/internal/domain"
	"github.com/launchlist/waitlist-service/internal/events"
	"github.com/launchlist/waitlist-service/internal/repository"
)

// memorySignupRepository mimics the Postgres store, including the unique email index.
type memorySignupRepository struct {
	mu      sync.Mutex
	records []domain.SignupRecord
	now     func() time.Time
	failAll error
}

func newMemorySignupRepository(now func() time.Time) *memorySignupRepository {
	return &memorySignupRepository{now: now}
}

func (m *memorySignupRepository) add(email, source string, createdAt time.Time) {
	rec := domain.SignupRecord{ID: uuid.NewString(), Email: email, CreatedAt: createdAt}
	if source != "" {
		rec.Source = &source
	}
	m.records = append(m.records, rec)
}

func (m *memorySignupRepository) Create(_ context.Context, rec *domain.SignupRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return m.failAll
	}
	for _, existing := range m.records {
		if existing.Email == rec.Email {
			return domain.ErrDuplicateSignup
		}
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = m.now()
	m.records = append(m.records, *rec)
	return nil
}

func (m *memorySignupRepository) WithSnapshot(_ context.Context, fn func(repository.SignupReader) error) error {
	m.mu.Lock()
	if m.failAll != nil {
		m.mu.Unlock()
		return m.failAll
	}
	frozen := &memorySignupRepository{records: append([]domain.SignupRecord(nil), m.records...)}
	m.mu.Unlock()
	return fn(frozen)
}

func (m *memorySignupRepository) snapshot() ([]domain.SignupRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	return append([]domain.SignupRecord(nil), m.records...), nil
}

func (m *memorySignupRepository) Count(context.Context) (int64, error) {
	recs, err := m.snapshot()
	return int64(len(recs)), err
}

func (m *memorySignupRepository) CountSince(_ context.Context, since time.Time) (int64, error) {
	recs, err := m.snapshot()
	var n int64
	for _, r := range recs {
		if !r.CreatedAt.Before(since) {
			n++
		}
	}
	return n, err
}

func (m *memorySignupRepository) CountBySource(context.Context) ([]domain.SourceCount, error) {
	recs, err := m.snapshot()
	if err != nil {
		return nil, err
	}
	counts := map[string]int64{}
	for _, r := range recs {
		counts[r.SourceLabel()]++
	}
	out := make([]domain.SourceCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, domain.SourceCount{Source: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Source < out[j].Source
	})
	return out, nil
}

func (m *memorySignupRepository) CountByDay(_ context.Context, since time.Time, timezone string) ([]domain.DayCount, error) {
	recs, err := m.snapshot()
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	counts := map[string]int64{}
	for _, r := range recs {
		if r.CreatedAt.Before(since) {
			continue
		}
		counts[r.CreatedAt.In(loc).Format(domain.DateLayout)]++
	}
	out := make([]domain.DayCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, domain.DayCount{Date: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (m *memorySignupRepository) ListRecent(_ context.Context, limit, offset int) ([]domain.SignupRecord, error) {
	recs, err := m.snapshot()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
	if offset >= len(recs) {
		return []domain.SignupRecord{}, nil
	}
	end := offset + limit
	if end > len(recs) {
		end = len(recs)
	}
	return recs[offset:end], nil
}

type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
	err       error
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, event)
	return d.err
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.published))
	for _, e := range d.published {
		out = append(out, e.Type)
	}
	return out
}

var errStoreDown = errors.New("connection refused")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
