package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	attendanceModel "gerejaku_backend/internals/features/checkin/attendance/model"
	attendanceService "gerejaku_backend/internals/features/checkin/attendance/service"
	"gerejaku_backend/internals/features/checkin/checkinerr"
	tokenModel "gerejaku_backend/internals/features/checkin/tokens/model"
	tokenService "gerejaku_backend/internals/features/checkin/tokens/service"
	"gerejaku_backend/internals/features/checkin/tokens/store"
	occModel "gerejaku_backend/internals/features/services/occurrences/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type State string

const (
	StateReceived         State = "RECEIVED"
	StateTokenValidated   State = "TOKEN_VALIDATED"
	StateIdentityResolved State = "IDENTITY_RESOLVED"
	StateRecorded         State = "RECORDED"
	StateDuplicate        State = "DUPLICATE"
	StateRejected         State = "REJECTED"
)

type TokenValidator interface {
	Validate(ctx context.Context, token string, now time.Time) (store.Entry, error)
}

type OccurrenceFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*occModel.ServiceOccurrenceModel, error)
}

type PublicRecorder interface {
	RecordPublic(ctx context.Context, in attendanceService.PublicInput) (*attendanceModel.ServiceAttendanceModel, bool, error)
}

// Claim: identitas yang diisi sendiri oleh pemindai QR.
type Claim struct {
	OccurrenceID *uuid.UUID
	Name         string
	Phone        string
	Category     attendanceModel.Category
	Notes        string
	Meta         attendanceService.Meta
}

type Result struct {
	State        State
	OccurrenceID uuid.UUID
	Method       attendanceModel.Method
	Record       *attendanceModel.ServiceAttendanceModel
	Duplicate    bool
}

type Verifier struct {
	Tokens      TokenValidator
	Occurrences OccurrenceFinder
	Recorder    PublicRecorder
	// LateWindow 0 = check-in tetap diterima setelah ibadah selesai.
	LateWindow time.Duration
	Now        func() time.Time
}

func NewVerifier(tokens TokenValidator, occurrences OccurrenceFinder, rec PublicRecorder, lateWindow time.Duration) *Verifier {
	return &Verifier{Tokens: tokens, Occurrences: occurrences, Recorder: rec, LateWindow: lateWindow, Now: time.Now}
}

// Verify menjalankan satu percobaan check-in publik. Tidak ada retry otomatis;
// error yang dikembalikan selalu salah satu sentinel checkinerr (boleh ter-wrap).
func (v *Verifier) Verify(ctx context.Context, token string, claim Claim) (Result, error) {
	res := Result{State: StateReceived}
	now := v.Now()

	token = strings.TrimSpace(token)
	kind, ok := tokenService.WellFormed(token)
	if !ok {
		return v.reject(res, checkinerr.ErrInvalidToken)
	}

	entry, err := v.Tokens.Validate(ctx, token, now)
	switch {
	case errors.Is(err, store.ErrTokenNotFound):
		return v.reject(res, checkinerr.ErrExpiredToken)
	case err != nil:
		return v.reject(res, errors.Join(checkinerr.ErrPersistence, err))
	}
	if entry.Kind != kind {
		return v.reject(res, checkinerr.ErrInvalidToken)
	}
	if claim.OccurrenceID != nil && *claim.OccurrenceID != entry.OccurrenceID {
		log.Printf("[CHECKIN WARN] token occurrence=%s tidak cocok dengan occurrence_id=%s", entry.OccurrenceID, *claim.OccurrenceID)
		return v.reject(res, checkinerr.ErrInvalidToken)
	}
	res.State = StateTokenValidated
	res.OccurrenceID = entry.OccurrenceID
	res.Method = methodFor(entry.Kind)

	occ, err := v.Occurrences.FindByID(ctx, entry.OccurrenceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// token masih hidup tapi jadwalnya hilang: data tidak konsisten
		log.Printf("[CHECKIN ERROR] token valid untuk occurrence=%s yang tidak ditemukan", entry.OccurrenceID)
		return v.reject(res, checkinerr.ErrOccurrenceNotFound)
	}
	if err != nil {
		return v.reject(res, errors.Join(checkinerr.ErrPersistence, err))
	}
	if v.LateWindow > 0 && now.After(occ.ServiceOccurrenceEndsAt.Add(v.LateWindow)) {
		return v.reject(res, checkinerr.ErrOccurrenceClosed)
	}

	name := strings.TrimSpace(claim.Name)
	category := attendanceModel.Category(strings.ToUpper(strings.TrimSpace(string(claim.Category))))
	if category == "" {
		category = attendanceModel.CategoryVisitor
	}
	if name == "" || !category.Valid() {
		return v.reject(res, checkinerr.ErrInvalidIdentity)
	}
	res.State = StateIdentityResolved

	rec, dup, err := v.Recorder.RecordPublic(ctx, attendanceService.PublicInput{
		OccurrenceID: entry.OccurrenceID,
		Name:         name,
		Phone:        claim.Phone,
		Category:     category,
		Notes:        claim.Notes,
		Method:       res.Method,
		Meta:         claim.Meta,
	})
	if err != nil {
		return v.reject(res, err)
	}

	res.Record = rec
	res.Duplicate = dup
	res.State = StateRecorded
	if dup {
		res.State = StateDuplicate
	}
	log.Printf("[CHECKIN] state=%s occurrence=%s method=%s", res.State, res.OccurrenceID, res.Method)
	return res, nil
}

func (v *Verifier) reject(res Result, err error) (Result, error) {
	from := res.State
	res.State = StateRejected
	if checkinerr.IsRetryable(err) {
		log.Printf("[CHECKIN ERROR] rejected at %s: %v", from, err)
	} else {
		log.Printf("[CHECKIN] rejected at %s: %v", from, err)
	}
	return res, err
}

func methodFor(kind tokenModel.TokenKind) attendanceModel.Method {
	if kind == tokenModel.TokenKindStatic {
		return attendanceModel.MethodQRStatic
	}
	return attendanceModel.MethodQRRotating
}
