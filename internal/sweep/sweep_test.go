package sweep

import (
	"context"
	"errors"
	"sync"
	"testing"

	"amoebot/internal/election"
	"amoebot/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type memRecorder struct {
	mu     sync.Mutex
	trials []store.Trial
	fail   error
}

func (m *memRecorder) Record(_ context.Context, t *store.Trial) error {
	if m.fail != nil {
		return m.fail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trials = append(m.trials, *t)
	return nil
}

func TestPlan(t *testing.T) {
	jobs := Plan([]string{"line", "ring"}, 3, 0.5, 2, 10)
	require.Len(t, jobs, 4)
	assert.Equal(t, Job{Shape: "line", Size: 3, Fill: 0.5, Seed: 11}, jobs[0])
	assert.Equal(t, Job{Shape: "ring", Size: 3, Fill: 0.5, Seed: 12}, jobs[3])
	assert.Empty(t, Plan([]string{"line"}, 3, 0.5, 0, 0))
}

func TestSweepElectsOneLeaderPerTrial(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &memRecorder{}
	jobs := Plan([]string{"pair", "line", "triangle", "hexagon", "ring", "blob"}, 3, 0.6, 4, 0)
	report, err := Run(context.Background(), jobs, Options{Workers: 3, Budget: 5_000_000, Recorder: rec})
	require.NoError(t, err)

	assert.Zero(t, report.Failures)
	require.Len(t, report.Trials, len(jobs))
	for i, tr := range report.Trials {
		assert.Equal(t, jobs[i].Shape, tr.Shape)
		assert.Equal(t, jobs[i].Seed, tr.Seed)
		assert.Equal(t, 1, tr.Leaders, "%s seed %d", tr.Shape, tr.Seed)
		assert.True(t, tr.Terminated)
		assert.Equal(t, report.SweepID, tr.SweepID)
	}
	assert.Len(t, rec.trials, len(jobs))
}

func TestBudgetExhaustionIsATrialFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	report, err := Run(context.Background(), Plan([]string{"hexagon"}, 2, 0, 2, 0), Options{Workers: 2, Budget: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Failures)
	for _, tr := range report.Trials {
		assert.Contains(t, tr.Err, election.ErrBudgetExhausted.Error())
		assert.False(t, tr.Terminated)
	}
}

func TestUnknownShapeIsATrialFailure(t *testing.T) {
	tr, err := RunTrial(context.Background(), Job{Shape: "spiral", Size: 2, Seed: 1}, 0, nil)
	require.NoError(t, err)
	assert.True(t, Failed(tr))
	assert.NotEmpty(t, tr.Err)
}

func TestRecorderErrorAbortsSweep(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("disk full")
	_, err := Run(context.Background(), Plan([]string{"pair"}, 2, 0, 8, 0), Options{Workers: 2, Recorder: &memRecorder{fail: boom}})
	assert.ErrorIs(t, err, boom)
}

func TestCancelledSweep(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, Plan([]string{"blob"}, 6, 0.6, 6, 0), Options{Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}
