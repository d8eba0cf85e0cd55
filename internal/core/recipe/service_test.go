package recipe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_SessionsAreIndependent(t *testing.T) {
	p := &scriptedPipeline{batches: [][]Candidate{batch("A"), batch("B")}}
	svc := NewService(ServiceConfig{
		Ingredients: chicken(),
		Dinners:     &fakeDinners{},
		Pipeline:    p,
	})

	_, err := svc.Generate(context.Background(), "s1", SuggestionRequest{Count: 1})
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, svc.Snapshot("s1").State)
	assert.Equal(t, StateIdle, svc.Snapshot("s2").State)
	assert.Same(t, svc.Aggregator("s1"), svc.Aggregator("s1"))
	assert.NotSame(t, svc.Aggregator("s1"), svc.Aggregator("s2"))
	assert.Equal(t, 2, svc.SessionCount())
}

func TestService_EvictIdleSessions(t *testing.T) {
	svc := NewService(ServiceConfig{
		Ingredients: chicken(),
		Dinners:     &fakeDinners{},
		Pipeline:    &scriptedPipeline{},
		SessionTTL:  time.Minute,
	})
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	svc.Aggregator("old")
	now = now.Add(2 * time.Minute)
	svc.Aggregator("fresh")

	assert.Equal(t, 1, svc.Evict())
	assert.Equal(t, 1, svc.SessionCount())
	assert.Equal(t, StateIdle, svc.Snapshot("old").State)
}

func TestService_Accept(t *testing.T) {
	sink := &recordingSink{}
	svc := NewService(ServiceConfig{History: sink})
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC) }

	entry, err := svc.Accept(context.Background(), sampleRecipe())
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19", entry.Date.Format("2006-01-02"))
	assert.Len(t, sink.entries, 1)
}
