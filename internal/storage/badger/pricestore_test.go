package badger

import (
	"testing"
	"time"

	"github.com/bobmcallan/answerd/internal/common"
	"github.com/bobmcallan/answerd/internal/config"
	"github.com/bobmcallan/answerd/internal/stocks"
)

func newTestDB(t *testing.T) *BadgerDB {
	t.Helper()
	db, err := NewBadgerDB(common.NewSilentLogger(), &config.BadgerConfig{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("NewBadgerDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPriceStoreRoundTrip(t *testing.T) {
	store := NewPriceStore(newTestDB(t), common.NewSilentLogger())

	points := []stocks.PricePoint{
		{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Close: 100},
		{Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Close: 110},
	}
	if err := store.Put("AAPL|1mo", points); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, fetchedAt, ok := store.Get("AAPL|1mo")
	if !ok {
		t.Fatal("expected cached series to be found")
	}
	if len(got) != 2 || got[1].Close != 110 {
		t.Errorf("unexpected points %+v", got)
	}
	if time.Since(fetchedAt) > time.Minute {
		t.Errorf("expected recent fetch time, got %v", fetchedAt)
	}
}

func TestPriceStoreMiss(t *testing.T) {
	store := NewPriceStore(newTestDB(t), common.NewSilentLogger())

	if _, _, ok := store.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestPriceStorePrune(t *testing.T) {
	db := newTestDB(t)
	store := NewPriceStore(db, common.NewSilentLogger())

	stale := PriceRecord{
		Key:       "OLD|1mo",
		Points:    []stocks.PricePoint{{Close: 1}},
		FetchedAt: time.Now().Add(-48 * time.Hour),
	}
	if err := db.Store().Upsert(stale.Key, &stale); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := store.Put("FRESH|1mo", []stocks.PricePoint{{Close: 2}}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	removed, err := store.Prune(24 * time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 pruned record, got %d", removed)
	}
	if _, _, ok := store.Get("OLD|1mo"); ok {
		t.Error("expected stale record to be gone")
	}
	if _, _, ok := store.Get("FRESH|1mo"); !ok {
		t.Error("expected fresh record to survive")
	}
}
