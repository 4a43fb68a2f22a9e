package coordinator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"

	"github.com/freifunk/gluon-census/internal/census"
	"github.com/freifunk/gluon-census/internal/exporter"
	"github.com/freifunk/gluon-census/internal/status"
)

// intervalJitter is the fraction by which each interval is randomly shifted
const intervalJitter = 0.1

// CensusFunc performs one complete census
type CensusFunc func(ctx context.Context) (*census.Run, error)

// Snapshot is the published outcome of one completed census
type Snapshot struct {
	Summary  census.Summary
	Registry *exporter.Registry
}

// Coordinator manages periodic census execution
type Coordinator interface {
	// Start runs a census immediately and then on every tick.
	// Blocks until the context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop stops the loop and waits for it to return
	Stop() error

	// Trigger requests a census ahead of the next tick. Requests made
	// while one is already pending are merged.
	Trigger()

	// Latest returns the last completed census, nil before the first
	Latest() *Snapshot

	// Status returns the state of the loop
	Status() *status.RunStatus
}

type defaultCoordinator struct {
	collect  CensusFunc
	interval time.Duration

	latest atomic.Pointer[Snapshot]

	mu         sync.Mutex
	status     *status.RunStatus
	cancelFunc context.CancelFunc
	done       chan struct{}
	trigger    chan struct{}

	onSnapshot func(*Snapshot)
}

// Option configures the coordinator
type Option func(*defaultCoordinator)

// WithSnapshotHook calls fn with every newly published snapshot
func WithSnapshotHook(fn func(*Snapshot)) Option {
	return func(c *defaultCoordinator) {
		c.onSnapshot = fn
	}
}

// New creates a coordinator running collect every interval
func New(collect CensusFunc, interval time.Duration, opts ...Option) Coordinator {
	c := &defaultCoordinator{
		collect:  collect,
		interval: interval,
		done:     make(chan struct{}),
		trigger:  make(chan struct{}, 1),
		status: &status.RunStatus{
			Phase:    status.RunPhasePending,
			Schedule: interval.String(),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// jitteredInterval returns base shifted by up to ±10%
func jitteredInterval(base time.Duration) time.Duration {
	jitter := time.Duration(float64(base) * intervalJitter)
	if jitter <= 0 {
		return base
	}
	//nolint:gosec // G404: Non-cryptographic randomness is sufficient for scheduling jitter
	return base + time.Duration(rand.Int64N(int64(2*jitter))) - jitter
}

func (c *defaultCoordinator) Start(ctx context.Context) error {
	log := logr.FromContextOrDiscard(ctx)

	coordCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancelFunc = cancel
	c.mu.Unlock()
	defer func() {
		cancel()
		close(c.done)
		log.Info("Census coordinator shutting down")
	}()

	log.Info("Starting census coordinator", "interval", c.interval)

	c.runOnce(coordCtx)

	timer := time.NewTimer(jitteredInterval(c.interval))
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			c.runOnce(coordCtx)
			timer.Reset(jitteredInterval(c.interval))
		case <-c.trigger:
			log.Info("Census triggered ahead of schedule")
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			c.runOnce(coordCtx)
			timer.Reset(jitteredInterval(c.interval))
		case <-coordCtx.Done():
			return nil
		}
	}
}

func (c *defaultCoordinator) Stop() error {
	c.mu.Lock()
	cancel := c.cancelFunc
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-c.done
	}
	return nil
}

func (c *defaultCoordinator) Trigger() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

func (c *defaultCoordinator) Latest() *Snapshot {
	return c.latest.Load()
}

func (c *defaultCoordinator) Status() *status.RunStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status.Copy()
}

func (c *defaultCoordinator) updateStatus(fn func(*status.RunStatus)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.status)
}

// runOnce performs one census and publishes it when it completed
func (c *defaultCoordinator) runOnce(ctx context.Context) {
	log := logr.FromContextOrDiscard(ctx)
	start := time.Now()

	c.updateStatus(func(s *status.RunStatus) {
		s.Phase = status.RunPhaseRunning
		s.Message = "Census in progress"
		s.LastAttempt = &start
	})

	snap, err := c.census(ctx)
	if err != nil {
		log.Error(err, "Census failed")
		c.updateStatus(func(s *status.RunStatus) {
			s.Phase = status.RunPhaseFailed
			s.Message = err.Error()
			s.AttemptCount++
		})
		return
	}

	c.latest.Store(snap)
	finished := snap.Summary.FinishedAt
	c.updateStatus(func(s *status.RunStatus) {
		s.Phase = status.RunPhaseComplete
		s.Message = fmt.Sprintf("Census completed: %d unique nodes, %d duplicates skipped",
			snap.Summary.Unique, snap.Summary.Duplicates)
		s.LastRunTime = &finished
		s.LastRunID = snap.Summary.RunID
		s.AttemptCount = 0
	})
	if c.onSnapshot != nil {
		c.onSnapshot(snap)
	}
}

func (c *defaultCoordinator) census(ctx context.Context) (*Snapshot, error) {
	run, err := c.collect(ctx)
	if err != nil {
		return nil, err
	}

	reg := exporter.NewRegistry()
	if err := reg.Flush(run); err != nil {
		return nil, fmt.Errorf("failed to flush census: %w", err)
	}

	summary := run.Summary()
	summary.Log(logr.FromContextOrDiscard(ctx))

	return &Snapshot{Summary: summary, Registry: reg}, nil
}
