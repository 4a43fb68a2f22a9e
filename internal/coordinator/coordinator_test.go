package coordinator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freifunk/gluon-census/internal/census"
	"github.com/freifunk/gluon-census/internal/exporter"
	"github.com/freifunk/gluon-census/internal/formats"
	"github.com/freifunk/gluon-census/internal/status"
)

func recordedRun(ids ...string) *census.Run {
	run := census.NewRun()
	nodes := make([]formats.CanonicalNode, len(ids))
	for i, id := range ids {
		nodes[i] = formats.CanonicalNode{ID: id, Base: "gluon-v2023.2", Model: "m"}
	}
	run.Record("ffa", formats.Meshviewer, nodes)
	return run
}

func TestJitteredInterval(t *testing.T) {
	t.Parallel()

	base := 10 * time.Minute
	for range 100 {
		got := jitteredInterval(base)
		assert.GreaterOrEqual(t, got, 9*time.Minute)
		assert.Less(t, got, 11*time.Minute)
	}
	assert.Equal(t, time.Duration(5), jitteredInterval(5))
}

func TestCoordinator_Stop_BeforeStart(t *testing.T) {
	t.Parallel()

	c := New(func(context.Context) (*census.Run, error) { return census.NewRun(), nil }, time.Minute)
	assert.NoError(t, c.Stop())
	assert.Nil(t, c.Latest())
	assert.Equal(t, status.RunPhasePending, c.Status().Phase)
	assert.Equal(t, "1m0s", c.Status().Schedule)
}

func TestCoordinator_RunsAndPublishes(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	published := make(chan *Snapshot, 10)
	c := New(func(context.Context) (*census.Run, error) {
		n := calls.Add(1)
		if n == 2 {
			return nil, errors.New("interrupted")
		}
		return recordedRun("a", "b"), nil
	}, 20*time.Millisecond, WithSnapshotHook(func(s *Snapshot) { published <- s }))

	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(context.Background()) }()

	first := <-published
	assert.Equal(t, 2, first.Summary.Unique)
	v, err := first.Registry.Value(exporter.MetricModel, prometheus.Labels{exporter.LabelCommunity: "ffa", exporter.LabelModel: "m"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	second := <-published
	assert.NotEqual(t, first.Summary.RunID, second.Summary.RunID, "every run starts from scratch")
	assert.Same(t, second, c.Latest())
	assert.GreaterOrEqual(t, calls.Load(), int32(3))

	require.NoError(t, c.Stop())
	require.NoError(t, <-errCh)

	st := c.Status()
	assert.Equal(t, status.RunPhaseComplete, st.Phase)
	assert.Equal(t, second.Summary.RunID, st.LastRunID)
	assert.NotNil(t, st.LastRunTime)
}

func TestCoordinator_FailureKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := New(func(context.Context) (*census.Run, error) {
		return nil, context.Canceled
	}, time.Hour).(*defaultCoordinator)

	prev := &Snapshot{Summary: census.Summary{RunID: "previous"}}
	c.latest.Store(prev)

	c.runOnce(ctx)

	assert.Same(t, prev, c.Latest())
	st := c.Status()
	assert.Equal(t, status.RunPhaseFailed, st.Phase)
	assert.Equal(t, 1, st.AttemptCount)
	assert.Contains(t, st.Message, "context canceled")
}

func TestCoordinator_StopsWithContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	c := New(func(context.Context) (*census.Run, error) { return census.NewRun(), nil }, time.Hour)

	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(ctx) }()

	require.Eventually(t, func() bool { return c.Latest() != nil }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("coordinator did not stop")
	}
}

func TestCoordinator_Trigger(t *testing.T) {
	t.Parallel()

	published := make(chan *Snapshot, 10)
	c := New(func(context.Context) (*census.Run, error) {
		return recordedRun("a"), nil
	}, time.Hour, WithSnapshotHook(func(s *Snapshot) { published <- s }))

	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(context.Background()) }()

	first := <-published

	c.Trigger()
	c.Trigger()

	select {
	case second := <-published:
		assert.NotEqual(t, first.Summary.RunID, second.Summary.RunID)
	case <-time.After(time.Second):
		t.Fatal("trigger did not start a census")
	}

	require.NoError(t, c.Stop())
	require.NoError(t, <-errCh)
	assert.LessOrEqual(t, len(published), 1, "pending triggers are merged")
}
