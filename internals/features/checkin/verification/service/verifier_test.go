package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gerejaku_backend/internals/configs"
	attendanceModel "gerejaku_backend/internals/features/checkin/attendance/model"
	attendanceService "gerejaku_backend/internals/features/checkin/attendance/service"
	"gerejaku_backend/internals/features/checkin/checkinerr"
	tokenModel "gerejaku_backend/internals/features/checkin/tokens/model"
	tokenService "gerejaku_backend/internals/features/checkin/tokens/service"
	"gerejaku_backend/internals/features/checkin/tokens/store"
	memberRepo "gerejaku_backend/internals/features/members/repository"
	occRepo "gerejaku_backend/internals/features/services/occurrences/repository"
	"gerejaku_backend/internals/testutil"

	"github.com/google/uuid"
)

type fixture struct {
	clock    *testutil.Clock
	store    *store.MemoryStore
	issuer   *tokenService.Issuer
	verifier *Verifier
	occID    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	occ := testutil.SeedOccurrence(t, db, testutil.Sunday07, 2*time.Hour)
	clock := testutil.NewClock(testutil.Sunday07.Add(5 * time.Minute))
	st := store.NewMemoryStore()
	occurrences := occRepo.NewOccurrenceRepository(db)

	iss := tokenService.NewIssuer(st, occurrences, configs.DefaultCheckinConfig())
	iss.Now = clock.Now

	rec := attendanceService.NewRecorder(db, memberRepo.NewMemberRepository(db), occurrences, 30*time.Second)
	rec.Now = clock.Now

	v := NewVerifier(st, occurrences, rec, 0)
	v.Now = clock.Now
	return &fixture{clock: clock, store: st, issuer: iss, verifier: v, occID: occ.ServiceOccurrenceID}
}

func visitor(name, phone string) Claim {
	return Claim{Name: name, Phone: phone, Category: attendanceModel.CategoryVisitor}
}

func TestVerify_RotatingRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, err := f.issuer.RotatingToken(ctx, f.occID)
	if err != nil {
		t.Fatalf("RotatingToken() error = %v", err)
	}
	res, err := f.verifier.Verify(ctx, tok.Token, visitor("Maria", "0812"))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if res.State != StateRecorded || res.Duplicate {
		t.Errorf("state = %s dup=%v, want RECORDED", res.State, res.Duplicate)
	}
	if res.Method != attendanceModel.MethodQRRotating || res.Record.ServiceAttendanceOccurrenceID != f.occID {
		t.Errorf("result = %+v, want QR_ROTATING for occurrence %s", res, f.occID)
	}

	again, err := f.verifier.Verify(ctx, tok.Token, visitor("Maria", "0812"))
	if err != nil {
		t.Fatalf("second Verify() error = %v", err)
	}
	if again.State != StateDuplicate || !again.Duplicate || again.Record.ServiceAttendanceID != res.Record.ServiceAttendanceID {
		t.Errorf("second result = %+v, want DUPLICATE with original record", again)
	}
}

func TestVerify_StaticTokenAfterOneHour(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tok, _ := f.issuer.StaticToken(ctx, f.occID)
	f.clock.Advance(time.Hour)
	res, err := f.verifier.Verify(ctx, tok.Token, visitor("Paulus", ""))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if res.Method != attendanceModel.MethodQRStatic {
		t.Errorf("method = %s, want QR_STATIC", res.Method)
	}
}

func TestVerify_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, f *fixture) (string, Claim)
		wantErr error
	}{
		{
			name: "Given empty token When verifying Then invalid token",
			prepare: func(t *testing.T, f *fixture) (string, Claim) {
				return "", visitor("Maria", "")
			},
			wantErr: checkinerr.ErrInvalidToken,
		},
		{
			name: "Given malformed token When verifying Then invalid token",
			prepare: func(t *testing.T, f *fixture) (string, Claim) {
				return "hello-world", visitor("Maria", "")
			},
			wantErr: checkinerr.ErrInvalidToken,
		},
		{
			name: "Given well-formed unknown token When verifying Then expired",
			prepare: func(t *testing.T, f *fixture) (string, Claim) {
				tok, _ := tokenService.MintToken(nil, tokenModel.TokenKindRotating, 32)
				return tok, visitor("Maria", "")
			},
			wantErr: checkinerr.ErrExpiredToken,
		},
		{
			name: "Given rotating token scanned after 70s When verifying Then expired",
			prepare: func(t *testing.T, f *fixture) (string, Claim) {
				tok, _ := f.issuer.RotatingToken(context.Background(), f.occID)
				f.clock.Advance(70 * time.Second)
				return tok.Token, visitor("Maria", "")
			},
			wantErr: checkinerr.ErrExpiredToken,
		},
		{
			name: "Given token for another occurrence id When verifying Then invalid token",
			prepare: func(t *testing.T, f *fixture) (string, Claim) {
				tok, _ := f.issuer.RotatingToken(context.Background(), f.occID)
				other := uuid.New()
				c := visitor("Maria", "")
				c.OccurrenceID = &other
				return tok.Token, c
			},
			wantErr: checkinerr.ErrInvalidToken,
		},
		{
			name: "Given token whose occurrence vanished When verifying Then occurrence not found",
			prepare: func(t *testing.T, f *fixture) (string, Claim) {
				now := f.clock.Now()
				tok, _ := tokenService.MintToken(nil, tokenModel.TokenKindRotating, 32)
				_ = f.store.Put(context.Background(), store.Entry{
					OccurrenceID: uuid.New(), Kind: tokenModel.TokenKindRotating, Token: tok,
					IssuedAt: now, ExpiresAt: now.Add(time.Minute),
				}, now)
				return tok, visitor("Maria", "")
			},
			wantErr: checkinerr.ErrOccurrenceNotFound,
		},
		{
			name: "Given blank name When verifying Then invalid identity",
			prepare: func(t *testing.T, f *fixture) (string, Claim) {
				tok, _ := f.issuer.RotatingToken(context.Background(), f.occID)
				return tok.Token, visitor("  ", "0812")
			},
			wantErr: checkinerr.ErrInvalidIdentity,
		},
		{
			name: "Given unknown category When verifying Then invalid identity",
			prepare: func(t *testing.T, f *fixture) (string, Claim) {
				tok, _ := f.issuer.RotatingToken(context.Background(), f.occID)
				return tok.Token, Claim{Name: "Maria", Category: "CHOIR"}
			},
			wantErr: checkinerr.ErrInvalidIdentity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tok, claim := tt.prepare(t, f)
			res, err := f.verifier.Verify(context.Background(), tok, claim)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Verify() error = %v, want %v", err, tt.wantErr)
			}
			if res.State != StateRejected {
				t.Errorf("state = %s, want REJECTED", res.State)
			}
		})
	}
}

func TestVerify_LateWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tok, _ := f.issuer.StaticToken(ctx, f.occID)

	// ibadah 07:00-09:00; jam 10:00
	f.clock.Advance(3 * time.Hour)

	if _, err := f.verifier.Verify(ctx, tok.Token, visitor("Tamu Sore", "")); err != nil {
		t.Fatalf("late check-in with window 0 should be accepted, got %v", err)
	}

	f.verifier.LateWindow = 30 * time.Minute
	if _, err := f.verifier.Verify(ctx, tok.Token, visitor("Tamu Malam", "")); !errors.Is(err, checkinerr.ErrOccurrenceClosed) {
		t.Errorf("Verify() after late window error = %v, want ErrOccurrenceClosed", err)
	}
}

func TestVerify_ConcurrentSamePhone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tok, _ := f.issuer.RotatingToken(ctx, f.occID)

	const n = 50
	var recorded, dups int64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.verifier.Verify(ctx, tok.Token, visitor("Maria", "0812 3456"))
			if err != nil {
				t.Errorf("Verify() error = %v", err)
				return
			}
			switch res.State {
			case StateRecorded:
				atomic.AddInt64(&recorded, 1)
			case StateDuplicate:
				atomic.AddInt64(&dups, 1)
			}
		}()
	}
	wg.Wait()

	if recorded != 1 || dups != n-1 {
		t.Errorf("recorded=%d duplicates=%d, want 1 and %d", recorded, dups, n-1)
	}
}
