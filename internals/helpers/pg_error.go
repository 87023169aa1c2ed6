package helper

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation: true kalau err berasal dari unique constraint
// (pgx, lib/pq, atau sudah diterjemahkan GORM TranslateError).
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == pgUniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	// fallback string check (driver lain, mis. sqlite di test)
	lo := strings.ToLower(err.Error())
	return strings.Contains(lo, "duplicate key") || strings.Contains(lo, "unique constraint")
}
