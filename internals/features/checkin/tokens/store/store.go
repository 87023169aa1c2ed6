// Package store menyimpan token QR check-in: token aktif per jadwal ibadah
// dan lookup balik token → jadwal untuk endpoint check-in publik.
package store

import (
	"context"
	"time"

	"gerejaku_backend/internals/features/checkin/tokens/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	// ErrTokenNotFound: token tidak ada atau sudah lewat masa berlaku.
	ErrTokenNotFound = errors.New("checkin token not found")
	// ErrRotationConflict: instance lain sudah lebih dulu menerbitkan token aktif.
	ErrRotationConflict = errors.New("checkin token rotated concurrently")
)

type Entry struct {
	OccurrenceID uuid.UUID
	Kind         model.TokenKind
	Token        string
	IssuedAt     time.Time
	ExpiresAt    time.Time
	SupersededAt *time.Time
}

// ValidAt: token dianggap mati tepat di ExpiresAt.
func (e Entry) ValidAt(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Store hanya ditulis oleh Issuer (dan sweep); verifier cukup Validate.
type Store interface {
	// Put menjadikan e token aktif untuk (occurrence, kind). Token aktif sebelumnya
	// ditandai superseded dan masa berlakunya dipangkas ke graceUntil (tidak pernah diperpanjang).
	Put(ctx context.Context, e Entry, graceUntil time.Time) error
	// Current: token aktif yang belum kedaluwarsa, atau ErrTokenNotFound.
	Current(ctx context.Context, occurrenceID uuid.UUID, kind model.TokenKind, now time.Time) (Entry, error)
	// Validate: lookup balik token (rotating maupun static) yang masih berlaku.
	Validate(ctx context.Context, token string, now time.Time) (Entry, error)
	// Sweep menghapus token yang kedaluwarsa sebelum now, mengembalikan jumlah yang dihapus.
	Sweep(ctx context.Context, now time.Time) (int64, error)
}
