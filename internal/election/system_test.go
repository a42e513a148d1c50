package election

import (
	"context"
	"encoding/json"
	"testing"

	"amoebot/internal/lattice"
	"amoebot/internal/shapes"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewSystemRejectsBadConfigurations(t *testing.T) {
	_, err := NewSystem(nil)
	assert.ErrorIs(t, err, ErrEmptySystem)

	_, err = NewSystem([]lattice.Node{{X: 0}, {X: 1}, {X: 0}})
	assert.ErrorIs(t, err, ErrDuplicateNode)

	_, err = NewSystem([]lattice.Node{{X: 0}, {X: 2}})
	assert.ErrorIs(t, err, ErrDisconnected)
}

func TestRunHonoursContextAndBudget(t *testing.T) {
	s, err := NewSystem(shapes.Line(3))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Run(ctx, 0), context.Canceled)
	assert.Zero(t, s.Activations())

	err = s.Run(context.Background(), 1)
	assert.ErrorIs(t, err, ErrBudgetExhausted)
	assert.Equal(t, int64(1), s.Activations())
}

func TestRoundsNeverOutpaceActivations(t *testing.T) {
	s, err := NewSystem(shapes.Hexagon(2), WithSeed(3))
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background(), 2_000_000))

	n := int64(len(s.Particles()))
	assert.Positive(t, s.Rounds())
	assert.LessOrEqual(t, s.Rounds()*n, s.Activations())
}

func TestMetricsAfterRun(t *testing.T) {
	s, err := NewSystem(shapes.Ring(2, 1), WithSeed(6))
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background(), 2_000_000))

	m := s.Metrics()
	assert.Equal(t, 12, m.Particles)
	assert.Equal(t, 2, m.Cycles)
	assert.Equal(t, 1, m.Leaders)
	assert.True(t, m.Terminated)
	assert.Equal(t, 1, m.States[Leader.String()])
	assert.Equal(t, m.Agents-1, m.States[Finished.String()])

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	var back Metrics
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, m, back)
}

func TestDumpIsDeterministic(t *testing.T) {
	dump := func() Dump {
		s, err := NewSystem(shapes.Triangle(3), WithSeed(12))
		require.NoError(t, err)
		for i := 0; i < 150; i++ {
			s.Activate()
		}
		return s.Dump()
	}
	a, b := dump(), dump()
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("dumps differ (-a +b):\n%s", diff)
	}
	assert.Len(t, a.Particles, 6)
	assert.Equal(t, int64(150), a.Activations)
}

func TestTransitionsAreLogged(t *testing.T) {
	obs, logs := observer.New(zap.DebugLevel)
	s, err := NewSystem(shapes.Line(2), WithSeed(2), WithLogger(zap.New(obs)))
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background(), 100_000))

	assert.NotZero(t, logs.FilterMessage("election terminated").Len())
	promoted := 0
	for _, e := range logs.FilterMessage("agent state").All() {
		if e.ContextMap()["to"] == Leader.String() {
			promoted++
		}
	}
	assert.Equal(t, 1, promoted)
}

func TestNewAgentRejectsInteriorDirection(t *testing.T) {
	s, err := NewSystem(shapes.Line(2))
	require.NoError(t, err)
	p := s.particles[0]
	expectInvariant(t, func() { newAgent(p, 1, lattice.East, p.occupied) })
	expectInvariant(t, func() { newAgent(p, 1, lattice.West, p.occupied) })
}
