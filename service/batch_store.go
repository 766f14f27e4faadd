package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovansuong/bao-cao-doanh-thu/dto"
	"github.com/vovansuong/bao-cao-doanh-thu/logger"
)

// ErrBatchNotFound is returned when a batch ID is unknown or has expired.
var ErrBatchNotFound = errors.New("batch not found")

type storedBatch struct {
	data      []byte
	createdAt time.Time
}

// BatchStore holds serialized result sets between the recognize and export
// steps. Entries are immutable; they leave the store on Delete, on expiry or
// when the store is full and they are the oldest.
type BatchStore struct {
	mu         sync.RWMutex
	batches    map[string]storedBatch
	ttl        time.Duration // 0 = never expire
	maxBatches int           // 0 = unlimited
	now        func() time.Time
	log        zerolog.Logger
}

func NewBatchStore(ttl time.Duration, maxBatches int) *BatchStore {
	if maxBatches < 0 {
		maxBatches = 0
	}
	return &BatchStore{
		batches:    make(map[string]storedBatch),
		ttl:        ttl,
		maxBatches: maxBatches,
		now:        time.Now,
		log:        logger.WithComponent("batch-store"),
	}
}

// Put serializes rs under rs.ID.
func (s *BatchStore) Put(rs *dto.ResultSet) error {
	if rs.ID == "" {
		return fmt.Errorf("result set has no ID")
	}

	data, err := json.Marshal(rs)
	if err != nil {
		return fmt.Errorf("failed to serialize result set: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.batches[rs.ID] = storedBatch{data: data, createdAt: s.now()}
	s.cleanupIfNeeded()
	return nil
}

// Get returns a fresh copy of the stored result set.
func (s *BatchStore) Get(id string) (*dto.ResultSet, error) {
	s.mu.RLock()
	b, ok := s.batches[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrBatchNotFound
	}
	if s.expired(b) {
		s.Delete(id)
		return nil, ErrBatchNotFound
	}

	var rs dto.ResultSet
	if err := json.Unmarshal(b.data, &rs); err != nil {
		return nil, fmt.Errorf("failed to deserialize result set %s: %w", id, err)
	}
	return &rs, nil
}

func (s *BatchStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.batches, id)
}

// Count returns the number of batches in the store
func (s *BatchStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.batches)
}

func (s *BatchStore) expired(b storedBatch) bool {
	return s.ttl > 0 && s.now().Sub(b.createdAt) > s.ttl
}

// cleanupIfNeeded drops expired batches, then the oldest ones beyond
// maxBatches. Must be called with lock held.
func (s *BatchStore) cleanupIfNeeded() {
	for id, b := range s.batches {
		if s.expired(b) {
			delete(s.batches, id)
		}
	}

	if s.maxBatches <= 0 || len(s.batches) <= s.maxBatches {
		return
	}

	ids := make([]string, 0, len(s.batches))
	for id := range s.batches {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return s.batches[ids[i]].createdAt.Before(s.batches[ids[j]].createdAt)
	})

	removeCount := len(ids) - s.maxBatches
	for _, id := range ids[:removeCount] {
		s.log.Info().Str("batch_id", id).Msg("Evicting old batch")
		delete(s.batches, id)
	}
}
