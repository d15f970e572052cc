package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/A25-CS060-teamAsah/backend/models"
	"github.com/A25-CS060-teamAsah/backend/services"
	"github.com/sirupsen/logrus"
)

// ErrSweepInProgress is returned by TriggerManually when a sweep is
// already running.
var ErrSweepInProgress = errors.New("auto-predict sweep already in progress")

// AutoPredictJob fires sweeps on a fixed interval. Ticks that land
// while a sweep is still running are skipped entirely, not queued;
// sweeps scan for unscored customers, so a lost tick self-corrects on
// the next one. All run state lives on the instance and resets on
// restart.
type AutoPredictJob struct {
	service  *services.AutoPredictService
	cache    *services.CacheStore
	gateway  *services.ScoringGateway
	interval time.Duration
	enabled  bool

	mu        sync.Mutex
	isRunning bool
	lastRun   *models.SweepSummary
	lastRunAt time.Time
	totalRuns int64

	stop     chan struct{}
	stopOnce sync.Once
}

// JobStatus is the scheduler state exposed by the status endpoint.
type JobStatus struct {
	Enabled         bool                 `json:"enabled"`
	IsRunning       bool                 `json:"is_running"`
	IntervalSeconds int                  `json:"interval_seconds"`
	TotalRuns       int64                `json:"total_runs"`
	LastRunAt       *time.Time           `json:"last_run_at,omitempty"`
	NextRunAt       *time.Time           `json:"next_run_at,omitempty"`
	LastRun         *models.SweepSummary `json:"last_run,omitempty"`
}

func NewAutoPredictJob(service *services.AutoPredictService, cache *services.CacheStore, gateway *services.ScoringGateway, interval time.Duration, enabled bool) *AutoPredictJob {
	return &AutoPredictJob{
		service:  service,
		cache:    cache,
		gateway:  gateway,
		interval: interval,
		enabled:  enabled,
		stop:     make(chan struct{}),
	}
}

// Start launches the scheduling loop in a goroutine
func (j *AutoPredictJob) Start() {
	logrus.WithField("interval", j.interval).Info("Auto-predict job started")

	go func() {
		ticker := time.NewTicker(j.interval)
		statsTicker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		defer statsTicker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := j.runOnce("scheduled"); err != nil && !errors.Is(err, ErrSweepInProgress) {
					logrus.WithError(err).Error("Scheduled auto-predict sweep failed")
				}
			case <-statsTicker.C:
				stats := j.cache.Stats()
				logrus.WithFields(logrus.Fields{
					"entries":  stats.Entries,
					"hits":     stats.Hits,
					"misses":   stats.Misses,
					"hit_rate": stats.HitRate,
				}).Info("Prediction cache stats")
				j.gateway.LogMetricsSummary()
			case <-j.stop:
				return
			}
		}
	}()
}

// Stop terminates the scheduling loop
func (j *AutoPredictJob) Stop() {
	j.stopOnce.Do(func() {
		close(j.stop)
		logrus.Info("Auto-predict job stopped")
	})
}

// TriggerManually runs a sweep immediately. Returns ErrSweepInProgress
// instead of queuing when one is already running.
func (j *AutoPredictJob) TriggerManually() (*models.SweepSummary, error) {
	return j.runOnce("manual")
}

// Status returns a snapshot of the scheduler state
func (j *AutoPredictJob) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()

	status := JobStatus{
		Enabled:         j.enabled,
		IsRunning:       j.isRunning,
		IntervalSeconds: int(j.interval.Seconds()),
		TotalRuns:       j.totalRuns,
		LastRun:         j.lastRun,
	}
	if !j.lastRunAt.IsZero() {
		lastRunAt := j.lastRunAt
		nextRunAt := j.lastRunAt.Add(j.interval)
		status.LastRunAt = &lastRunAt
		status.NextRunAt = &nextRunAt
	}
	return status
}

// runOnce fires a sweep under the overlap guard. The guard is a plain
// flag checked and set under the mutex, so at most one sweep runs at a
// time regardless of whether the trigger was a tick or manual.
func (j *AutoPredictJob) runOnce(trigger string) (*models.SweepSummary, error) {
	j.mu.Lock()
	if j.isRunning {
		j.mu.Unlock()
		logrus.WithField("trigger", trigger).Debug("Auto-predict sweep skipped, previous run still in flight")
		return nil, ErrSweepInProgress
	}
	j.isRunning = true
	j.totalRuns++
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		j.isRunning = false
		j.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	summary, err := j.service.RunSweep(ctx)

	j.mu.Lock()
	j.lastRunAt = time.Now()
	if summary != nil {
		j.lastRun = summary
	}
	j.mu.Unlock()

	return summary, err
}
