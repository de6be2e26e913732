package badger

import (
	"errors"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/answerd/internal/common"
	"github.com/bobmcallan/answerd/internal/stocks"
)

// PriceRecord is one cached price series, keyed by symbol and window.
type PriceRecord struct {
	Key       string `badgerhold:"key"`
	Points    []stocks.PricePoint
	FetchedAt time.Time
}

// PriceStore persists fetched price series in BadgerDB. It implements
// stocks.SeriesCache.
type PriceStore struct {
	db     *BadgerDB
	logger *common.Logger
}

// NewPriceStore creates a price series store backed by BadgerDB.
func NewPriceStore(db *BadgerDB, logger *common.Logger) *PriceStore {
	return &PriceStore{
		db:     db,
		logger: logger,
	}
}

// Get returns the cached series and its fetch time. Freshness is the
// caller's concern.
func (s *PriceStore) Get(key string) ([]stocks.PricePoint, time.Time, bool) {
	var record PriceRecord
	err := s.db.Store().Get(key, &record)
	if err != nil {
		if !errors.Is(err, badgerhold.ErrNotFound) {
			s.logger.Warn().Err(err).Str("key", key).Msg("Failed to read cached price series")
		}
		return nil, time.Time{}, false
	}
	return record.Points, record.FetchedAt, true
}

// Put stores the series under the key, stamping the fetch time.
func (s *PriceStore) Put(key string, points []stocks.PricePoint) error {
	record := PriceRecord{
		Key:       key,
		Points:    points,
		FetchedAt: time.Now(),
	}
	if err := s.db.Store().Upsert(key, &record); err != nil {
		return fmt.Errorf("failed to store price series %s: %w", key, err)
	}
	return nil
}

// Prune deletes every cached series older than maxAge and returns the
// number removed.
func (s *PriceStore) Prune(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	var stale []PriceRecord
	if err := s.db.Store().Find(&stale, badgerhold.Where("FetchedAt").Lt(cutoff)); err != nil {
		return 0, fmt.Errorf("failed to scan stale price series: %w", err)
	}
	for _, record := range stale {
		if err := s.db.Store().Delete(record.Key, PriceRecord{}); err != nil {
			return 0, fmt.Errorf("failed to delete price series %s: %w", record.Key, err)
		}
	}
	return len(stale), nil
}
