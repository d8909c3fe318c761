package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	"github.com/zatekoja/careroute/backend/internal/domain/providers"
)

type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Classify(ctx context.Context, text string) (*entities.ClassifierResult, error) {
	args := m.Called(ctx, text)
	result, _ := args.Get(0).(*entities.ClassifierResult)
	return result, args.Error(1)
}

func (m *mockClassifier) Name() string { return "mock" }

func TestMemoryAdapter_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryAdapter(10)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 60))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(61 * time.Second)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)

	require.NoError(t, m.Set(ctx, "forever", []byte("x"), 0))
	now = now.Add(1000 * time.Hour)
	_, err = m.Get(ctx, "forever")
	assert.NoError(t, err)

	require.NoError(t, m.Delete(ctx, "forever"))
	_, err = m.Get(ctx, "forever")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)
	assert.NoError(t, m.Ping(ctx))
}

func TestMemoryAdapter_BoundedSize(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryAdapter(2)

	require.NoError(t, m.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, m.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, m.Set(ctx, "c", []byte("3"), 0))
	assert.Len(t, m.entries, 2)

	// overwriting an existing key never evicts
	require.NoError(t, m.Set(ctx, "c", []byte("4"), 0))
	assert.Len(t, m.entries, 2)
	got, err := m.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, []byte("4"), got)
}

func TestCachedClassifier_HitsCacheForEquivalentText(t *testing.T) {
	next := new(mockClassifier)
	next.On("Classify", mock.Anything, "Chest  pain").Return(&entities.ClassifierResult{
		Urgency:     entities.UrgencyHigh,
		Specialties: []string{"Cardiology"},
	}, nil).Once()

	c := NewCachedClassifier(next, NewMemoryAdapter(10), time.Hour)
	first, err := c.Classify(context.Background(), "Chest  pain")
	require.NoError(t, err)
	second, err := c.Classify(context.Background(), "chest pain")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "mock+cache", c.Name())
	next.AssertNumberOfCalls(t, "Classify", 1)
}

func TestCachedClassifier_ErrorsAreNotCached(t *testing.T) {
	next := new(mockClassifier)
	next.On("Classify", mock.Anything, "fever").Return(nil, providers.ErrClassifierUnavailable).Once()
	next.On("Classify", mock.Anything, "fever").Return(&entities.ClassifierResult{Urgency: entities.UrgencyMedium}, nil).Once()

	c := NewCachedClassifier(next, NewMemoryAdapter(10), time.Hour)

	_, err := c.Classify(context.Background(), "fever")
	assert.True(t, errors.Is(err, providers.ErrClassifierUnavailable))

	result, err := c.Classify(context.Background(), "fever")
	require.NoError(t, err)
	assert.Equal(t, entities.UrgencyMedium, result.Urgency)
	next.AssertExpectations(t)
}

func TestClassifierCacheKey(t *testing.T) {
	assert.Equal(t, classifierCacheKey("m", " Severe\tHeadache "), classifierCacheKey("m", "severe headache"))
	assert.NotEqual(t, classifierCacheKey("a", "x"), classifierCacheKey("b", "x"))
}
