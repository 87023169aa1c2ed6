package store

import (
	"context"
	"sync"
	"time"

	"gerejaku_backend/internals/features/checkin/tokens/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type memKey struct {
	occurrenceID uuid.UUID
	kind         model.TokenKind
}

// MemoryStore: store in-process untuk deployment satu instance dan test.
// Token yang kedaluwarsa dibuang saat lookup, saat rotasi, atau oleh Sweep.
type MemoryStore struct {
	mu         sync.RWMutex
	current    map[memKey]string
	superseded map[memKey][]string
	byToken    map[string]*Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		current:    make(map[memKey]string),
		superseded: make(map[memKey][]string),
		byToken:    make(map[string]*Entry),
	}
}

func (s *MemoryStore) Put(ctx context.Context, e Entry, graceUntil time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.byToken[e.Token]; dup {
		return errors.New("checkin token value collision")
	}

	key := memKey{e.OccurrenceID, e.Kind}
	if prevTok, ok := s.current[key]; ok {
		if prev := s.byToken[prevTok]; prev != nil {
			at := e.IssuedAt
			prev.SupersededAt = &at
			if prev.ExpiresAt.After(graceUntil) {
				prev.ExpiresAt = graceUntil
			}
			s.superseded[key] = append(s.superseded[key], prevTok)
		}
	}

	// lazy eviction token lama milik jadwal yang sama
	alive := s.superseded[key][:0]
	for _, tok := range s.superseded[key] {
		if old := s.byToken[tok]; old != nil && old.ValidAt(e.IssuedAt) {
			alive = append(alive, tok)
			continue
		}
		delete(s.byToken, tok)
	}
	if len(alive) == 0 {
		delete(s.superseded, key)
	} else {
		s.superseded[key] = alive
	}

	stored := e
	stored.SupersededAt = nil
	s.byToken[e.Token] = &stored
	s.current[key] = e.Token
	return nil
}

func (s *MemoryStore) Current(ctx context.Context, occurrenceID uuid.UUID, kind model.TokenKind, now time.Time) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	key := memKey{occurrenceID, kind}

	s.mu.RLock()
	tok, ok := s.current[key]
	var e *Entry
	if ok {
		e = s.byToken[tok]
	}
	if e != nil && e.ValidAt(now) {
		out := *e
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	if ok {
		s.mu.Lock()
		if cur, still := s.current[key]; still && cur == tok {
			if e := s.byToken[tok]; e == nil || !e.ValidAt(now) {
				delete(s.byToken, tok)
				delete(s.current, key)
			}
		}
		s.mu.Unlock()
	}
	return Entry{}, ErrTokenNotFound
}

func (s *MemoryStore) Validate(ctx context.Context, token string, now time.Time) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}

	s.mu.RLock()
	e, ok := s.byToken[token]
	if ok && e.ValidAt(now) {
		out := *e
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	if ok {
		s.mu.Lock()
		if e, still := s.byToken[token]; still && !e.ValidAt(now) {
			s.evictLocked(token, e)
		}
		s.mu.Unlock()
	}
	return Entry{}, ErrTokenNotFound
}

func (s *MemoryStore) Sweep(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for tok, e := range s.byToken {
		if !e.ValidAt(now) {
			s.evictLocked(tok, e)
			n++
		}
	}
	return n, nil
}

// Len: jumlah token yang masih disimpan (termasuk yang belum sempat di-evict).
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byToken)
}

func (s *MemoryStore) evictLocked(tok string, e *Entry) {
	delete(s.byToken, tok)
	key := memKey{e.OccurrenceID, e.Kind}
	if s.current[key] == tok {
		delete(s.current, key)
		return
	}
	list := s.superseded[key]
	for i, t := range list {
		if t == tok {
			s.superseded[key] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(s.superseded[key]) == 0 {
		delete(s.superseded, key)
	}
}
