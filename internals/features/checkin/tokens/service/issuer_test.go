package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gerejaku_backend/internals/configs"
	"gerejaku_backend/internals/features/checkin/checkinerr"
	"gerejaku_backend/internals/features/checkin/tokens/model"
	"gerejaku_backend/internals/features/checkin/tokens/store"
	occRepo "gerejaku_backend/internals/features/services/occurrences/repository"
	"gerejaku_backend/internals/testutil"

	"github.com/google/uuid"
)

func newTestIssuer(t *testing.T, st store.Store) (*Issuer, *testutil.Clock, uuid.UUID) {
	t.Helper()
	db := testutil.OpenDB(t)
	occ := testutil.SeedOccurrence(t, db, testutil.Sunday07, 2*time.Hour)
	clock := testutil.NewClock(testutil.Sunday07.Add(-10 * time.Minute))

	iss := NewIssuer(st, occRepo.NewOccurrenceRepository(db), configs.DefaultCheckinConfig())
	iss.Now = clock.Now
	return iss, clock, occ.ServiceOccurrenceID
}

func TestIssuer_StaticTokenIsStableUntilExpiry(t *testing.T) {
	st := store.NewMemoryStore()
	iss, clock, occID := newTestIssuer(t, st)
	ctx := context.Background()

	first, err := iss.StaticToken(ctx, occID)
	if err != nil {
		t.Fatalf("StaticToken() error = %v", err)
	}
	if first.Kind != model.TokenKindStatic {
		t.Errorf("kind = %s, want STATIC", first.Kind)
	}

	clock.Advance(time.Hour)
	again, err := iss.StaticToken(ctx, occID)
	if err != nil {
		t.Fatalf("StaticToken() error = %v", err)
	}
	if again.Token != first.Token {
		t.Errorf("static token changed within an hour: %s -> %s", first.Token, again.Token)
	}
	if again.RefreshAfter != 23*time.Hour {
		t.Errorf("RefreshAfter = %s, want 23h", again.RefreshAfter)
	}
	if _, err := st.Validate(ctx, first.Token, clock.Now()); err != nil {
		t.Errorf("static token should validate after 1h: %v", err)
	}
}

func TestIssuer_RotatingTokenLifecycle(t *testing.T) {
	st := store.NewMemoryStore()
	iss, clock, occID := newTestIssuer(t, st)
	ctx := context.Background()
	start := clock.Now()

	a, err := iss.RotatingToken(ctx, occID)
	if err != nil {
		t.Fatalf("RotatingToken() error = %v", err)
	}
	if !a.ExpiresAt.Equal(start.Add(60 * time.Second)) {
		t.Errorf("ExpiresAt = %s, want start+60s", a.ExpiresAt)
	}
	if a.RefreshAfter != 55*time.Second {
		t.Errorf("RefreshAfter = %s, want 55s", a.RefreshAfter)
	}

	// reload layar beberapa detik kemudian tetap dapat kode yang sama
	clock.Advance(3 * time.Second)
	same, _ := iss.RotatingToken(ctx, occID)
	if same.Token != a.Token {
		t.Errorf("token rotated too early: %s -> %s", a.Token, same.Token)
	}

	clock.Advance(52 * time.Second) // start+55s
	b, err := iss.RotatingToken(ctx, occID)
	if err != nil {
		t.Fatalf("RotatingToken() error = %v", err)
	}
	if b.Token == a.Token {
		t.Fatal("token should rotate after one poll interval")
	}

	// token lama masih diterima selama grace
	clock.Advance(4 * time.Second) // start+59s
	if _, err := st.Validate(ctx, a.Token, clock.Now()); err != nil {
		t.Errorf("superseded token should validate within grace: %v", err)
	}

	clock.Advance(11 * time.Second) // start+70s
	if _, err := st.Validate(ctx, a.Token, clock.Now()); !errors.Is(err, store.ErrTokenNotFound) {
		t.Errorf("Validate(old token at 70s) error = %v, want ErrTokenNotFound", err)
	}
	if _, err := st.Validate(ctx, b.Token, clock.Now()); err != nil {
		t.Errorf("current token should validate at 70s: %v", err)
	}
}

func TestIssuer_RotationClampsPreviousToken(t *testing.T) {
	st := store.NewMemoryStore()
	iss, clock, occID := newTestIssuer(t, st)
	ctx := context.Background()
	start := clock.Now()

	a, _ := iss.RotatingToken(ctx, occID)
	clock.Advance(20 * time.Second)
	if _, err := iss.RotatingToken(ctx, occID); err != nil {
		t.Fatalf("RotatingToken() error = %v", err)
	}

	e, err := st.Validate(ctx, a.Token, clock.Now())
	if err != nil {
		t.Fatalf("Validate(previous) error = %v", err)
	}
	if want := start.Add(25 * time.Second); !e.ExpiresAt.Equal(want) {
		t.Errorf("previous ExpiresAt = %s, want %s (rotation + grace)", e.ExpiresAt, want)
	}
	if e.SupersededAt == nil {
		t.Error("previous token should be marked superseded")
	}
}

func TestIssuer_RejectsUnknownOrEndedOccurrence(t *testing.T) {
	iss, clock, occID := newTestIssuer(t, store.NewMemoryStore())
	ctx := context.Background()

	tests := []struct {
		name    string
		occID   uuid.UUID
		advance time.Duration
	}{
		{"Given unknown occurrence When issuing Then not found", uuid.New(), 0},
		{"Given ended occurrence When issuing Then not found", occID, 3 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.Advance(tt.advance)
			if _, err := iss.RotatingToken(ctx, tt.occID); !errors.Is(err, checkinerr.ErrOccurrenceNotFound) {
				t.Errorf("RotatingToken() error = %v, want ErrOccurrenceNotFound", err)
			}
			if _, err := iss.StaticToken(ctx, tt.occID); !errors.Is(err, checkinerr.ErrOccurrenceNotFound) {
				t.Errorf("StaticToken() error = %v, want ErrOccurrenceNotFound", err)
			}
		})
	}
}

func TestIssuer_ConcurrentPollsShareOneToken(t *testing.T) {
	iss, _, occID := newTestIssuer(t, store.NewMemoryStore())
	ctx := context.Background()

	const n = 20
	tokens := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := iss.RotatingToken(ctx, occID)
			if err != nil {
				t.Errorf("RotatingToken() error = %v", err)
				return
			}
			tokens[i] = got.Token
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if tokens[i] != tokens[0] {
			t.Fatalf("concurrent polls got different tokens: %s vs %s", tokens[0], tokens[i])
		}
	}
}

func TestIssuer_GormStoreRoundTrip(t *testing.T) {
	db := testutil.OpenDB(t)
	occ := testutil.SeedOccurrence(t, db, testutil.Sunday07, 2*time.Hour)
	clock := testutil.NewClock(testutil.Sunday07)
	st := store.NewGormStore(db)

	iss := NewIssuer(st, occRepo.NewOccurrenceRepository(db), configs.DefaultCheckinConfig())
	iss.Now = clock.Now
	ctx := context.Background()

	a, err := iss.RotatingToken(ctx, occ.ServiceOccurrenceID)
	if err != nil {
		t.Fatalf("RotatingToken() error = %v", err)
	}
	clock.Advance(55 * time.Second)
	b, err := iss.RotatingToken(ctx, occ.ServiceOccurrenceID)
	if err != nil {
		t.Fatalf("RotatingToken() error = %v", err)
	}
	if a.Token == b.Token {
		t.Fatal("expected rotation")
	}
	e, err := st.Validate(ctx, b.Token, clock.Now())
	if err != nil {
		t.Fatalf("Validate(current) error = %v", err)
	}
	if e.OccurrenceID != occ.ServiceOccurrenceID {
		t.Errorf("OccurrenceID = %s, want %s", e.OccurrenceID, occ.ServiceOccurrenceID)
	}
}

func TestIssuer_StampsTokenWithTimeAfterLock(t *testing.T) {
	iss, clock, occID := newTestIssuer(t, store.NewMemoryStore())
	ctx := context.Background()

	// tahan lock seolah ada poll lain yang sedang menerbitkan token
	unlock := iss.locks.Lock(model.CurrentKey(occID, model.TokenKindRotating))

	started := make(chan struct{})
	var once sync.Once
	iss.Now = func() time.Time {
		once.Do(func() { close(started) })
		return clock.Now()
	}

	done := make(chan Issued, 1)
	go func() {
		got, err := iss.RotatingToken(ctx, occID)
		if err != nil {
			t.Errorf("RotatingToken() error = %v", err)
		}
		done <- got
	}()

	<-started
	clock.Advance(10 * time.Second)
	unlock()

	got := <-done
	if want := clock.Now(); !got.IssuedAt.Equal(want) {
		t.Errorf("IssuedAt = %s, want %s (time after acquiring lock)", got.IssuedAt, want)
	}
	if want := clock.Now().Add(iss.PollInterval + iss.Grace); !got.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %s, want %s", got.ExpiresAt, want)
	}
}
