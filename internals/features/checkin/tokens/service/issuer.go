package service

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"gerejaku_backend/internals/configs"
	"gerejaku_backend/internals/features/checkin/checkinerr"
	"gerejaku_backend/internals/features/checkin/tokens/model"
	"gerejaku_backend/internals/features/checkin/tokens/store"
	occModel "gerejaku_backend/internals/features/services/occurrences/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxRotationAttempts = 3

type OccurrenceFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*occModel.ServiceOccurrenceModel, error)
}

// Issued: token yang diiklankan ke layar QR.
type Issued struct {
	OccurrenceID uuid.UUID
	Kind         model.TokenKind
	Token        string
	IssuedAt     time.Time
	ExpiresAt    time.Time
	// RefreshAfter: kapan layar sebaiknya polling lagi.
	RefreshAfter time.Duration
}

type Issuer struct {
	Store       store.Store
	Occurrences OccurrenceFinder

	PollInterval time.Duration
	Grace        time.Duration
	StaticTTL    time.Duration
	TokenBytes   int

	Now    func() time.Time
	Random io.Reader

	locks keyedMutex
}

func NewIssuer(st store.Store, occ OccurrenceFinder, cfg configs.CheckinConfig) *Issuer {
	return &Issuer{
		Store:        st,
		Occurrences:  occ,
		PollInterval: cfg.TokenPollInterval,
		Grace:        cfg.RotationGrace,
		StaticTTL:    cfg.StaticTTL,
		TokenBytes:   cfg.TokenBytes,
		Now:          time.Now,
	}
}

// RotatingToken mengembalikan token rotating aktif selama sisa umurnya masih
// menutup satu interval polling; kalau tidak, token baru diterbitkan dan token
// lama hanya berlaku sampai now+Grace.
func (i *Issuer) RotatingToken(ctx context.Context, occurrenceID uuid.UUID) (Issued, error) {
	return i.issue(ctx, occurrenceID, model.TokenKindRotating)
}

// StaticToken: token untuk QR cetak. Dipakai ulang sampai kedaluwarsa, tidak ikut berputar saat polling.
func (i *Issuer) StaticToken(ctx context.Context, occurrenceID uuid.UUID) (Issued, error) {
	return i.issue(ctx, occurrenceID, model.TokenKindStatic)
}

func (i *Issuer) issue(ctx context.Context, occurrenceID uuid.UUID, kind model.TokenKind) (Issued, error) {
	now := i.Now()

	occ, err := i.Occurrences.FindByID(ctx, occurrenceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Issued{}, checkinerr.ErrOccurrenceNotFound
	}
	if err != nil {
		return Issued{}, errors.Join(checkinerr.ErrPersistence, err)
	}
	if occ.HasEnded(now) {
		return Issued{}, checkinerr.ErrOccurrenceNotFound
	}

	unlock := i.locks.Lock(model.CurrentKey(occurrenceID, kind))
	defer unlock()
	// bisa menunggu lama di lock; stempel token pakai waktu setelah lock didapat
	now = i.Now()

	for attempt := 0; attempt < maxRotationAttempts; attempt++ {
		cur, err := i.Store.Current(ctx, occurrenceID, kind, now)
		switch {
		case err == nil:
			if i.reusable(cur, now) {
				return i.toIssued(cur, now), nil
			}
		case errors.Is(err, store.ErrTokenNotFound):
		default:
			return Issued{}, errors.Join(checkinerr.ErrPersistence, err)
		}

		tok, err := MintToken(i.Random, kind, i.TokenBytes)
		if err != nil {
			return Issued{}, err
		}
		next := store.Entry{
			OccurrenceID: occurrenceID,
			Kind:         kind,
			Token:        tok,
			IssuedAt:     now,
			ExpiresAt:    now.Add(i.ttl(kind)),
		}
		err = i.Store.Put(ctx, next, now.Add(i.Grace))
		if errors.Is(err, store.ErrRotationConflict) {
			// instance lain menang; baca ulang token aktif miliknya
			log.Printf("[CHECKIN] rotasi paralel occurrence=%s kind=%s, pakai token pemenang", occurrenceID, kind)
			continue
		}
		if err != nil {
			return Issued{}, errors.Join(checkinerr.ErrPersistence, err)
		}
		log.Printf("[CHECKIN] token %s baru occurrence=%s exp=%s", kind, occurrenceID, next.ExpiresAt.Format(time.RFC3339))
		return i.toIssued(next, now), nil
	}
	return Issued{}, errors.Join(checkinerr.ErrPersistence, store.ErrRotationConflict)
}

func (i *Issuer) ttl(kind model.TokenKind) time.Duration {
	if kind == model.TokenKindStatic {
		return i.StaticTTL
	}
	return i.PollInterval + i.Grace
}

func (i *Issuer) reusable(cur store.Entry, now time.Time) bool {
	if !cur.ValidAt(now) {
		return false
	}
	if cur.Kind == model.TokenKindStatic {
		return true
	}
	return cur.ExpiresAt.Sub(now) >= i.PollInterval
}

func (i *Issuer) toIssued(e store.Entry, now time.Time) Issued {
	refresh := i.PollInterval
	if e.Kind == model.TokenKindStatic {
		refresh = e.ExpiresAt.Sub(now)
	}
	return Issued{
		OccurrenceID: e.OccurrenceID,
		Kind:         e.Kind,
		Token:        e.Token,
		IssuedAt:     e.IssuedAt,
		ExpiresAt:    e.ExpiresAt,
		RefreshAfter: refresh,
	}
}
