// Package checkinerr berisi error bertipe untuk alur check-in QR.
// Service mengembalikan sentinel di bawah (boleh di-wrap); controller
// memetakan ke HTTP lewat Resolve supaya detail storage tidak bocor ke publik.
package checkinerr

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired or unknown")
	ErrOccurrenceNotFound = errors.New("service occurrence not found")
	ErrOccurrenceClosed   = errors.New("service occurrence closed for check-in")
	ErrInvalidIdentity    = errors.New("invalid identity claim")
	ErrDuplicateCheckIn   = errors.New("already checked in")
	ErrMemberNotFound     = errors.New("member not found")
	ErrPersistence        = errors.New("attendance storage unavailable")
)

// Problem: hasil pemetaan error ke HTTP.
type Problem struct {
	Status  int
	Code    string
	Message string
}

// Resolve memetakan error service ke status + pesan untuk user.
// context.DeadlineExceeded / Canceled diperlakukan sebagai ErrPersistence (retryable).
func Resolve(err error) Problem {
	switch {
	case errors.Is(err, ErrInvalidToken):
		return Problem{fiber.StatusBadRequest, "INVALID_TOKEN", "QR tidak valid"}
	case errors.Is(err, ErrExpiredToken):
		return Problem{fiber.StatusGone, "EXPIRED_TOKEN", "QR sudah kedaluwarsa, silakan scan ulang kode yang tampil di layar"}
	case errors.Is(err, ErrOccurrenceNotFound):
		return Problem{fiber.StatusNotFound, "OCCURRENCE_NOT_FOUND", "Jadwal ibadah tidak ditemukan"}
	case errors.Is(err, ErrOccurrenceClosed):
		return Problem{fiber.StatusForbidden, "OCCURRENCE_CLOSED", "Check-in untuk ibadah ini sudah ditutup"}
	case errors.Is(err, ErrInvalidIdentity):
		return Problem{fiber.StatusUnprocessableEntity, "VALIDATION_ERROR", "Nama wajib diisi dan kategori harus MEMBER atau VISITOR"}
	case errors.Is(err, ErrDuplicateCheckIn):
		return Problem{fiber.StatusConflict, "CONFLICT", "Sudah tercatat hadir"}
	case errors.Is(err, ErrMemberNotFound):
		return Problem{fiber.StatusNotFound, "MEMBER_NOT_FOUND", "Jemaat tidak ditemukan"}
	case errors.Is(err, ErrPersistence),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return Problem{fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Sistem sedang sibuk, silakan coba lagi"}
	default:
		return Problem{fiber.StatusInternalServerError, "INTERNAL_ERROR", "Terjadi kesalahan pada server"}
	}
}

// IsRetryable: klien boleh mengulang request yang sama.
func IsRetryable(err error) bool {
	return Resolve(err).Status == fiber.StatusServiceUnavailable
}
