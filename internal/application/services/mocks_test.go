package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
)

type mockFacilitySearchRepo struct {
	mock.Mock
}

func (m *mockFacilitySearchRepo) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	args := m.Called(ctx, query, limit)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *mockFacilitySearchRepo) Index(ctx context.Context, facility *entities.Facility) error {
	return m.Called(ctx, facility).Error(0)
}

func (m *mockFacilitySearchRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockAnalyticsRepo struct {
	mock.Mock
}

func (m *mockAnalyticsRepo) Incr(ctx context.Context, counter string) error {
	return m.Called(ctx, counter).Error(0)
}

func (m *mockAnalyticsRepo) IncrGroup(ctx context.Context, group, member string) error {
	return m.Called(ctx, group, member).Error(0)
}

func (m *mockAnalyticsRepo) Snapshot(ctx context.Context) (*entities.AnalyticsStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*entities.AnalyticsStats)
	return stats, args.Error(1)
}

type mockHistoryRepo struct {
	mock.Mock
}

func (m *mockHistoryRepo) Save(ctx context.Context, entry *entities.TriageHistoryEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockHistoryRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]*entities.TriageHistoryEntry, error) {
	args := m.Called(ctx, sessionID, limit)
	entries, _ := args.Get(0).([]*entities.TriageHistoryEntry)
	return entries, args.Error(1)
}

// recordingPublisher captures published events on a channel
type recordingPublisher struct {
	events chan *entities.TriageEvent
	once   sync.Once
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(chan *entities.TriageEvent, 8)}
}

func (p *recordingPublisher) Publish(_ context.Context, event *entities.TriageEvent) error {
	p.events <- event
	return nil
}

func (p *recordingPublisher) Close() error {
	p.once.Do(func() { close(p.events) })
	return nil
}
