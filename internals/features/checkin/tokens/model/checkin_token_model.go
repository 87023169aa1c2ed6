package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TokenKind string

const (
	TokenKindRotating TokenKind = "ROTATING"
	TokenKindStatic   TokenKind = "STATIC"
)

func (k TokenKind) Valid() bool {
	return k == TokenKindRotating || k == TokenKindStatic
}

// CheckinTokenModel: token QR per jadwal ibadah.
// CurrentKey terisi "<occurrence>:<kind>" selama token jadi token aktif, NULL setelah
// digantikan. Unique index-nya yang menjamin maksimal satu token aktif per jenis.
type CheckinTokenModel struct {
	CheckinTokenID           uuid.UUID `gorm:"type:uuid;primaryKey;column:checkin_token_id" json:"checkin_token_id"`
	CheckinTokenOccurrenceID uuid.UUID `gorm:"type:uuid;not null;index;column:checkin_token_occurrence_id" json:"checkin_token_occurrence_id"`
	CheckinTokenKind         TokenKind `gorm:"type:varchar(16);not null;column:checkin_token_kind" json:"checkin_token_kind"`
	CheckinTokenValue        string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_checkin_tokens_value;column:checkin_token_value" json:"-"`
	CheckinTokenCurrentKey   *string   `gorm:"type:varchar(64);uniqueIndex:ux_checkin_tokens_current;column:checkin_token_current_key" json:"-"`

	CheckinTokenIssuedAt     time.Time  `gorm:"not null;column:checkin_token_issued_at" json:"checkin_token_issued_at"`
	CheckinTokenExpiresAt    time.Time  `gorm:"not null;index;column:checkin_token_expires_at" json:"checkin_token_expires_at"`
	CheckinTokenSupersededAt *time.Time `gorm:"column:checkin_token_superseded_at" json:"checkin_token_superseded_at,omitempty"`
}

func (CheckinTokenModel) TableName() string { return "checkin_tokens" }

func (m *CheckinTokenModel) BeforeCreate(tx *gorm.DB) error {
	if m.CheckinTokenID == uuid.Nil {
		m.CheckinTokenID = uuid.New()
	}
	return nil
}

func CurrentKey(occurrenceID uuid.UUID, kind TokenKind) string {
	return occurrenceID.String() + ":" + string(kind)
}
