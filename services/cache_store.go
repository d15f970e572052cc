package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/A25-CS060-teamAsah/backend/models"
	"github.com/sirupsen/logrus"
)

// CacheStore is an in-process TTL cache for prediction results plus the
// pending markers that guard concurrent scoring of the same customer.
// Everything here is process-lifetime state and is lost on restart.
type CacheStore struct {
	mu          sync.RWMutex
	predictions map[string]*predictionEntry
	pending     map[string]time.Time
	lastSweep   *models.SweepSummary

	defaultTTL    time.Duration
	pendingTTL    time.Duration
	checkInterval time.Duration

	hits   int64
	misses int64

	stopCleanup chan struct{}
	stopOnce    sync.Once
}

type predictionEntry struct {
	result    *models.PredictionResult
	expiresAt time.Time
}

// CacheStats is the snapshot returned by the cache stats endpoint.
type CacheStats struct {
	Entries      int    `json:"entries"`
	PendingCount int    `json:"pending_count"`
	Hits         int64  `json:"hits"`
	Misses       int64  `json:"misses"`
	HitRate      string `json:"hit_rate"`
}

// NewCacheStore creates a cache and starts its background cleanup loop
func NewCacheStore(defaultTTL, checkInterval, pendingTTL time.Duration) *CacheStore {
	store := &CacheStore{
		predictions:   make(map[string]*predictionEntry),
		pending:       make(map[string]time.Time),
		defaultTTL:    defaultTTL,
		pendingTTL:    pendingTTL,
		checkInterval: checkInterval,
		stopCleanup:   make(chan struct{}),
	}

	go store.cleanupLoop()

	logrus.WithFields(logrus.Fields{
		"default_ttl":    defaultTTL,
		"pending_ttl":    pendingTTL,
		"check_interval": checkInterval,
	}).Info("Cache store initialized")

	return store
}

// GetPrediction returns the cached result for a customer if present and
// not expired. Expired entries are treated as misses and removed lazily.
func (s *CacheStore) GetPrediction(customerID string) (*models.PredictionResult, bool) {
	s.mu.RLock()
	entry, exists := s.predictions[customerID]
	s.mu.RUnlock()

	if exists && time.Now().Before(entry.expiresAt) {
		s.mu.Lock()
		s.hits++
		s.mu.Unlock()
		return entry.result, true
	}

	s.mu.Lock()
	if exists {
		delete(s.predictions, customerID)
	}
	s.misses++
	s.mu.Unlock()
	return nil, false
}

// SetPrediction caches a result under the default TTL
func (s *CacheStore) SetPrediction(customerID string, result *models.PredictionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predictions[customerID] = &predictionEntry{
		result:    result,
		expiresAt: time.Now().Add(s.defaultTTL),
	}
}

// InvalidatePrediction drops the cached result for a customer. Called on
// update and delete so stale scores are never served.
func (s *CacheStore) InvalidatePrediction(customerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.predictions, customerID)
}

// TryMarkPending marks a customer as being scored. Returns false when a
// live marker already exists. Check and mark happen under one lock, so
// within this process the guard is exclusive; it stays soft only across
// restarts, where a stale marker expires rather than being cleaned up.
func (s *CacheStore) TryMarkPending(customerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expiry, exists := s.pending[customerID]; exists && time.Now().Before(expiry) {
		return false
	}
	s.pending[customerID] = time.Now().Add(s.pendingTTL)
	return true
}

// ClearPending removes the pending marker for a customer
func (s *CacheStore) ClearPending(customerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, customerID)
}

// IsPending reports whether a live pending marker exists for a customer
func (s *CacheStore) IsPending(customerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expiry, exists := s.pending[customerID]
	return exists && time.Now().Before(expiry)
}

// SetLastSweep records the most recent sweep summary. Unlike prediction
// entries this never expires.
func (s *CacheStore) SetLastSweep(summary *models.SweepSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSweep = summary
}

// LastSweep returns the most recent sweep summary, or nil if no sweep
// has completed since startup.
func (s *CacheStore) LastSweep() *models.SweepSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSweep
}

// Stats returns a point-in-time snapshot of cache effectiveness
func (s *CacheStore) Stats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := s.hits + s.misses
	hitRate := "0%"
	if total > 0 {
		hitRate = fmt.Sprintf("%.2f%%", float64(s.hits)/float64(total)*100)
	}

	return CacheStats{
		Entries:      len(s.predictions),
		PendingCount: len(s.pending),
		Hits:         s.hits,
		Misses:       s.misses,
		HitRate:      hitRate,
	}
}

// cleanupLoop periodically removes expired predictions and pending markers
func (s *CacheStore) cleanupLoop() {
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.removeExpired()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *CacheStore) removeExpired() {
	now := time.Now()
	removed := 0

	s.mu.Lock()
	for id, entry := range s.predictions {
		if now.After(entry.expiresAt) {
			delete(s.predictions, id)
			removed++
		}
	}
	for id, expiry := range s.pending {
		if now.After(expiry) {
			delete(s.pending, id)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		logrus.WithField("removed", removed).Debug("Cache cleanup removed expired entries")
	}
}

// Stop terminates the background cleanup loop
func (s *CacheStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCleanup)
	})
}
