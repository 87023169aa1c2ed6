package dto

import (
	"math"
	"time"

	"gerejaku_backend/internals/features/checkin/tokens/model"
	"gerejaku_backend/internals/features/checkin/tokens/service"

	"github.com/google/uuid"
)

// TokenResponse: payload untuk layar QR / cetak QR.
type TokenResponse struct {
	OccurrenceID        uuid.UUID       `json:"occurrence_id"`
	Kind                model.TokenKind `json:"kind"`
	Token               string          `json:"token"`
	IssuedAt            time.Time       `json:"issued_at"`
	ExpiresAt           time.Time       `json:"expires_at"`
	RefreshAfterSeconds int             `json:"refresh_after_seconds"`
}

func FromIssued(i service.Issued) TokenResponse {
	return TokenResponse{
		OccurrenceID:        i.OccurrenceID,
		Kind:                i.Kind,
		Token:               i.Token,
		IssuedAt:            i.IssuedAt,
		ExpiresAt:           i.ExpiresAt,
		RefreshAfterSeconds: int(math.Ceil(i.RefreshAfter.Seconds())),
	}
}
