package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gerejaku_backend/internals/features/checkin/attendance/model"
	"gerejaku_backend/internals/features/checkin/checkinerr"
	memberRepo "gerejaku_backend/internals/features/members/repository"
	occRepo "gerejaku_backend/internals/features/services/occurrences/repository"
	"gerejaku_backend/internals/testutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newTestRecorder(t *testing.T) (*Recorder, *gorm.DB, uuid.UUID) {
	t.Helper()
	db := testutil.OpenDB(t)
	occ := testutil.SeedOccurrence(t, db, testutil.Sunday07, 2*time.Hour)
	rec := NewRecorder(db, memberRepo.NewMemberRepository(db), occRepo.NewOccurrenceRepository(db), 30*time.Second)
	return rec, db, occ.ServiceOccurrenceID
}

func publicInput(occID uuid.UUID, name, phone string) PublicInput {
	return PublicInput{
		OccurrenceID: occID,
		Name:         name,
		Phone:        phone,
		Category:     model.CategoryVisitor,
		Method:       model.MethodQRRotating,
	}
}

func TestRecordPublic_ConcurrentSamePhone(t *testing.T) {
	rec, db, occID := newTestRecorder(t)
	ctx := context.Background()

	const n = 50
	var created, dups int64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, dup, err := rec.RecordPublic(ctx, publicInput(occID, "Maria", "0812-3456-7890"))
			if err != nil {
				t.Errorf("RecordPublic() error = %v", err)
				return
			}
			if dup {
				atomic.AddInt64(&dups, 1)
			} else {
				atomic.AddInt64(&created, 1)
			}
		}()
	}
	wg.Wait()

	if created != 1 || dups != n-1 {
		t.Errorf("created=%d duplicates=%d, want 1 and %d", created, dups, n-1)
	}
	var rows int64
	db.Model(&model.ServiceAttendanceModel{}).Count(&rows)
	if rows != 1 {
		t.Errorf("attendance rows = %d, want 1", rows)
	}
}

func TestRecordPublic_DedupKeys(t *testing.T) {
	tests := []struct {
		name    string
		first   PublicInput
		second  PublicInput
		wantDup bool
	}{
		{
			name:    "Given same phone with different formatting When checking in twice Then duplicate",
			first:   PublicInput{Name: "Maria", Phone: "0812 3456 7890"},
			second:  PublicInput{Name: "Maria K.", Phone: "0812-3456-7890"},
			wantDup: true,
		},
		{
			name:    "Given no phone and same folded name When checking in twice Then duplicate",
			first:   PublicInput{Name: "José  Siregar"},
			second:  PublicInput{Name: " jose siregar "},
			wantDup: true,
		},
		{
			name:    "Given different phones When checking in Then two records",
			first:   PublicInput{Name: "Maria", Phone: "0812"},
			second:  PublicInput{Name: "Maria", Phone: "0813"},
			wantDup: false,
		},
		{
			name:    "Given name-only then same name with phone When checking in Then two records",
			first:   PublicInput{Name: "Budi"},
			second:  PublicInput{Name: "Budi", Phone: "0812"},
			wantDup: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _, occID := newTestRecorder(t)
			ctx := context.Background()

			first := publicInput(occID, tt.first.Name, tt.first.Phone)
			second := publicInput(occID, tt.second.Name, tt.second.Phone)

			r1, dup, err := rec.RecordPublic(ctx, first)
			if err != nil || dup {
				t.Fatalf("first RecordPublic() dup=%v err=%v", dup, err)
			}
			r2, dup, err := rec.RecordPublic(ctx, second)
			if err != nil {
				t.Fatalf("second RecordPublic() error = %v", err)
			}
			if dup != tt.wantDup {
				t.Errorf("duplicate = %v, want %v", dup, tt.wantDup)
			}
			if tt.wantDup && r2.ServiceAttendanceID != r1.ServiceAttendanceID {
				t.Errorf("duplicate should return the existing record")
			}
		})
	}
}

func TestRecordPublic_RejectsInvalidIdentity(t *testing.T) {
	rec, _, occID := newTestRecorder(t)
	ctx := context.Background()

	bad := []PublicInput{
		publicInput(occID, "   ", "0812"),
		{OccurrenceID: occID, Name: "Maria", Category: "GUEST", Method: model.MethodQRStatic},
		{OccurrenceID: occID, Name: "Maria", Category: model.CategoryMember, Method: model.MethodManual},
	}
	for i, in := range bad {
		if _, _, err := rec.RecordPublic(ctx, in); !errors.Is(err, checkinerr.ErrInvalidIdentity) {
			t.Errorf("case %d: error = %v, want ErrInvalidIdentity", i, err)
		}
	}
}

func TestRecordPublic_DeadlineIsRetryable(t *testing.T) {
	rec, _, occID := newTestRecorder(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := rec.RecordPublic(ctx, publicInput(occID, "Maria", "0812"))
	if !errors.Is(err, checkinerr.ErrPersistence) {
		t.Fatalf("error = %v, want ErrPersistence", err)
	}
	if !checkinerr.IsRetryable(err) {
		t.Error("persistence failure should be retryable")
	}
}

func TestRecordManual(t *testing.T) {
	rec, db, occID := newTestRecorder(t)
	ctx := context.Background()
	member := testutil.SeedMember(t, db, "Yohanes Tarigan", "0812-1111")

	first, err := rec.RecordManual(ctx, ManualInput{OccurrenceID: occID, MemberID: member.MemberID})
	if err != nil {
		t.Fatalf("RecordManual() error = %v", err)
	}
	if first.ServiceAttendanceMethod != model.MethodManual || first.ServiceAttendanceCategory != model.CategoryMember {
		t.Errorf("record = %+v, want MANUAL/MEMBER", first)
	}

	again, err := rec.RecordManual(ctx, ManualInput{OccurrenceID: occID, MemberID: member.MemberID})
	if !errors.Is(err, checkinerr.ErrDuplicateCheckIn) {
		t.Fatalf("second RecordManual() error = %v, want ErrDuplicateCheckIn", err)
	}
	if again == nil || again.ServiceAttendanceID != first.ServiceAttendanceID {
		t.Error("conflict should carry the existing record")
	}

	for _, m := range []model.Method{model.MethodQRRotating, model.MethodQRStatic} {
		if _, err := rec.RecordManual(ctx, ManualInput{OccurrenceID: occID, MemberID: member.MemberID, Method: m}); !errors.Is(err, checkinerr.ErrInvalidIdentity) {
			t.Errorf("manual with method %s error = %v, want ErrInvalidIdentity", m, err)
		}
	}
	if _, err := rec.RecordManual(ctx, ManualInput{OccurrenceID: occID, MemberID: uuid.New()}); !errors.Is(err, checkinerr.ErrMemberNotFound) {
		t.Errorf("unknown member error = %v, want ErrMemberNotFound", err)
	}
	if _, err := rec.RecordManual(ctx, ManualInput{OccurrenceID: uuid.New(), MemberID: member.MemberID}); !errors.Is(err, checkinerr.ErrOccurrenceNotFound) {
		t.Errorf("unknown occurrence error = %v, want ErrOccurrenceNotFound", err)
	}
}

// Kunci manual (member id) tidak dicocokkan dengan kunci publik (telepon):
// jemaat yang scan QR lalu dicatat manual punya dua record.
func TestRecordManual_NotReconciledWithPublicPhone(t *testing.T) {
	rec, db, occID := newTestRecorder(t)
	ctx := context.Background()
	member := testutil.SeedMember(t, db, "Yohanes Tarigan", "0812-1111")

	if _, dup, err := rec.RecordPublic(ctx, publicInput(occID, "Yohanes", "0812-1111")); err != nil || dup {
		t.Fatalf("RecordPublic() dup=%v err=%v", dup, err)
	}
	if _, err := rec.RecordManual(ctx, ManualInput{OccurrenceID: occID, MemberID: member.MemberID}); err != nil {
		t.Fatalf("RecordManual() error = %v, want success", err)
	}

	sum, err := rec.Summary(ctx, occID)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if sum.Total != 2 || sum.ByMethod[model.MethodManual] != 1 || sum.ByMethod[model.MethodQRRotating] != 1 {
		t.Errorf("summary = %+v, want 2 records (1 manual, 1 rotating)", sum)
	}
}

func TestListAndRollCount(t *testing.T) {
	rec, _, occID := newTestRecorder(t)
	ctx := context.Background()

	// muat cache dulu supaya Add dari insert ikut terhitung
	if n, err := rec.RollCount(ctx, occID); err != nil || n != 0 {
		t.Fatalf("RollCount() = %d, %v; want 0", n, err)
	}

	for _, name := range []string{"Andreas", "Beatrix", "Clara"} {
		if _, _, err := rec.RecordPublic(ctx, publicInput(occID, name, "")); err != nil {
			t.Fatalf("RecordPublic(%s) error = %v", name, err)
		}
	}
	member := PublicInput{OccurrenceID: occID, Name: "Daniel", Category: model.CategoryMember, Method: model.MethodQRStatic}
	if _, _, err := rec.RecordPublic(ctx, member); err != nil {
		t.Fatalf("RecordPublic(member) error = %v", err)
	}

	if n, _ := rec.RollCount(ctx, occID); n != 4 {
		t.Errorf("RollCount() = %d, want 4 (read-your-writes)", n)
	}

	rows, total, err := rec.List(ctx, occID, ListFilter{Category: model.CategoryVisitor, Limit: 2})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 || len(rows) != 2 {
		t.Errorf("List(visitor, limit 2) = %d rows of %d, want 2 of 3", len(rows), total)
	}

	rows, total, _ = rec.List(ctx, occID, ListFilter{Q: "bea", Limit: 10})
	if total != 1 || rows[0].ServiceAttendanceName != "Beatrix" {
		t.Errorf("List(q=bea) = %+v (total %d), want Beatrix", rows, total)
	}
}

func TestRollCache_RefreshesAfterTTL(t *testing.T) {
	clock := testutil.NewClock(testutil.Sunday07)
	var loads int64
	rc := NewRollCache(30*time.Second, func(context.Context, uuid.UUID) (int64, error) {
		return atomic.AddInt64(&loads, 1) * 10, nil
	})
	rc.Now = clock.Now
	occ := uuid.New()
	ctx := context.Background()

	n, _ := rc.Count(ctx, occ)
	rc.Add(occ, 1)
	if got, _ := rc.Count(ctx, occ); got != n+1 {
		t.Errorf("Count() after Add = %d, want %d", got, n+1)
	}

	clock.Advance(31 * time.Second)
	if got, _ := rc.Count(ctx, occ); got != 20 {
		t.Errorf("Count() after TTL = %d, want 20 (reloaded)", got)
	}
}

func TestRollCache_InsertDuringLoadIsNotLost(t *testing.T) {
	var dbCount int64 = 4
	entered := make(chan struct{})
	release := make(chan struct{})
	var blockOnce sync.Once

	rc := NewRollCache(30*time.Second, func(context.Context, uuid.UUID) (int64, error) {
		n := atomic.LoadInt64(&dbCount)
		blockOnce.Do(func() {
			close(entered)
			<-release
		})
		return n, nil
	})
	occ := uuid.New()
	ctx := context.Background()

	done := make(chan int64)
	go func() {
		n, _ := rc.Count(ctx, occ)
		done <- n
	}()

	<-entered
	// insert selesai selagi Load masih membawa angka lama
	atomic.StoreInt64(&dbCount, 5)
	rc.Add(occ, 1)
	close(release)
	<-done

	if got, _ := rc.Count(ctx, occ); got != 5 {
		t.Errorf("Count() after insert = %d, want 5", got)
	}
}

func TestRollCache_Forget(t *testing.T) {
	var loads int64
	rc := NewRollCache(time.Hour, func(context.Context, uuid.UUID) (int64, error) {
		return atomic.AddInt64(&loads, 1), nil
	})
	occ := uuid.New()
	ctx := context.Background()

	_, _ = rc.Count(ctx, occ)
	rc.Forget(occ)
	if got, _ := rc.Count(ctx, occ); got != 2 {
		t.Errorf("Count() after Forget = %d, want 2 (reloaded)", got)
	}
}
