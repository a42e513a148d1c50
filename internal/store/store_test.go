package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"amoebot/internal/election"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger", "trials.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0)

	first := &Trial{Shape: "ring", Size: 2, Seed: 1, CreatedAt: base, Duration: 3 * time.Millisecond}
	first.FromMetrics(election.Metrics{Particles: 12, Agents: 24, Cycles: 2, Activations: 900, Rounds: 60, Leaders: 1, Terminated: true})
	require.NoError(t, s.Record(ctx, first))
	_, err := uuid.Parse(first.ID)
	require.NoError(t, err, "Record should assign a UUID")

	second := &Trial{ID: "fixed", SweepID: "sw", Shape: "line", Size: 3, Fill: 0.5, Seed: 2, CreatedAt: base.Add(time.Second)}
	require.NoError(t, s.Record(ctx, second))

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "fixed", all[0].ID, "newest first")
	assert.Equal(t, first.ID, all[1].ID)
	assert.Equal(t, int64(900), all[1].Activations)
	assert.True(t, all[1].Terminated)
	assert.Equal(t, 3*time.Millisecond, all[1].Duration)
	assert.True(t, base.Equal(all[1].CreatedAt))

	rings, err := s.List(ctx, Filter{Shape: "ring"})
	require.NoError(t, err)
	require.Len(t, rings, 1)

	sweep, err := s.List(ctx, Filter{SweepID: "sw", Limit: 5})
	require.NoError(t, err)
	require.Len(t, sweep, 1)
	assert.Equal(t, 0.5, sweep[0].Fill)

	limited, err := s.List(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	assert.Error(t, s.Record(ctx, &Trial{ID: "fixed", Shape: "line"}), "duplicate IDs are rejected")
}

func TestSummarize(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	for i, act := range []int64{100, 300} {
		tr := &Trial{SweepID: "a", Shape: "pair", Seed: int64(i)}
		tr.FromMetrics(election.Metrics{Activations: act, Leaders: 1, Terminated: true})
		require.NoError(t, s.Record(ctx, tr))
	}
	require.NoError(t, s.Record(ctx, &Trial{SweepID: "a", Shape: "ring", Err: "budget exhausted", Activations: 50}))
	require.NoError(t, s.Record(ctx, &Trial{SweepID: "b", Shape: "ring", Leaders: 1, Terminated: true}))

	sums, err := s.Summarize(ctx, "a")
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.Equal(t, ShapeSummary{Shape: "pair", Trials: 2, Failures: 0, MeanActivation: 200, MaxActivation: 300}, sums[0])
	assert.Equal(t, "ring", sums[1].Shape)
	assert.Equal(t, 1, sums[1].Failures)

	all, err := s.Summarize(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, all[1].Trials)
}

func TestClosedStore(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Record(context.Background(), &Trial{Shape: "pair"}), ErrClosed)
	_, err := s.List(context.Background(), Filter{})
	assert.ErrorIs(t, err, ErrClosed)
}
