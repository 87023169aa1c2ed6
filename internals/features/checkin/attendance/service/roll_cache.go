package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type rollEntry struct {
	count    int64
	loadedAt time.Time
}

// RollCache: jumlah hadir per jadwal untuk layar roll yang polling.
// Insert dari proses ini langsung menambah counter; data instance lain
// ikut terbaca setelah TTL lewat dan counter dimuat ulang dari DB.
//
// gens naik di setiap Add. Hasil Load yang berjalan bersamaan dengan Add
// tidak disimpan, supaya count sebelum insert tidak menimpa count sesudahnya.
type RollCache struct {
	TTL  time.Duration
	Now  func() time.Time
	Load func(ctx context.Context, occurrenceID uuid.UUID) (int64, error)

	mu      sync.Mutex
	entries map[uuid.UUID]*rollEntry
	gens    map[uuid.UUID]uint64
}

func NewRollCache(ttl time.Duration, load func(context.Context, uuid.UUID) (int64, error)) *RollCache {
	return &RollCache{
		TTL:     ttl,
		Now:     time.Now,
		Load:    load,
		entries: make(map[uuid.UUID]*rollEntry),
		gens:    make(map[uuid.UUID]uint64),
	}
}

func (rc *RollCache) Count(ctx context.Context, occurrenceID uuid.UUID) (int64, error) {
	now := rc.Now()

	rc.mu.Lock()
	if e, ok := rc.entries[occurrenceID]; ok && now.Sub(e.loadedAt) < rc.TTL {
		n := e.count
		rc.mu.Unlock()
		return n, nil
	}
	gen := rc.gens[occurrenceID]
	rc.mu.Unlock()

	n, err := rc.Load(ctx, occurrenceID)
	if err != nil {
		return 0, err
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.gens[occurrenceID] != gen {
		// ada insert selama Load; jangan cache, Count berikutnya baca DB lagi
		delete(rc.entries, occurrenceID)
		return n, nil
	}
	rc.entries[occurrenceID] = &rollEntry{count: n, loadedAt: now}
	return n, nil
}

// Add dipanggil setelah insert sukses. Jadwal yang belum pernah dimuat dibiarkan,
// Count berikutnya akan membaca DB yang sudah berisi insert tsb.
func (rc *RollCache) Add(occurrenceID uuid.UUID, delta int64) {
	rc.mu.Lock()
	rc.gens[occurrenceID]++
	if e, ok := rc.entries[occurrenceID]; ok {
		e.count += delta
	}
	rc.mu.Unlock()
}

// Forget membuang counter jadwal yang dihapus.
func (rc *RollCache) Forget(occurrenceID uuid.UUID) {
	rc.mu.Lock()
	delete(rc.entries, occurrenceID)
	delete(rc.gens, occurrenceID)
	rc.mu.Unlock()
}
