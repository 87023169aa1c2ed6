package store

import (
	"context"
	"time"

	"gerejaku_backend/internals/features/checkin/tokens/model"
	helper "gerejaku_backend/internals/helpers"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore: store bersama di Postgres sehingga instance mana pun bisa memvalidasi
// token yang diterbitkan instance lain. Token aktif dijaga unik lewat
// ux_checkin_tokens_current; rotasi paralel dari dua instance berakhir dengan
// ErrRotationConflict di salah satunya.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Put(ctx context.Context, e Entry, graceUntil time.Time) error {
	key := model.CurrentKey(e.OccurrenceID, e.Kind)
	issuedAt := e.IssuedAt.UTC()
	graceUntil = graceUntil.UTC()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("checkin_token_current_key = ?", key)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var prev model.CheckinTokenModel
		err := q.Take(&prev).Error
		switch {
		case err == nil:
			if err := tx.Model(&model.CheckinTokenModel{}).
				Where("checkin_token_id = ?", prev.CheckinTokenID).
				Updates(map[string]any{
					"checkin_token_current_key":   nil,
					"checkin_token_superseded_at": issuedAt,
				}).Error; err != nil {
				return errors.Wrap(err, "supersede checkin token")
			}
			// clamp hanya boleh memperpendek masa berlaku
			if err := tx.Model(&model.CheckinTokenModel{}).
				Where("checkin_token_id = ? AND checkin_token_expires_at > ?", prev.CheckinTokenID, graceUntil).
				Update("checkin_token_expires_at", graceUntil).Error; err != nil {
				return errors.Wrap(err, "clamp superseded checkin token")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return errors.Wrap(err, "load current checkin token")
		}

		row := model.CheckinTokenModel{
			CheckinTokenOccurrenceID: e.OccurrenceID,
			CheckinTokenKind:         e.Kind,
			CheckinTokenValue:        e.Token,
			CheckinTokenCurrentKey:   &key,
			CheckinTokenIssuedAt:     issuedAt,
			CheckinTokenExpiresAt:    e.ExpiresAt.UTC(),
		}
		if err := tx.Create(&row).Error; err != nil {
			if helper.IsUniqueViolation(err) {
				return ErrRotationConflict
			}
			return errors.Wrap(err, "insert checkin token")
		}
		return nil
	})
}

func (s *GormStore) Current(ctx context.Context, occurrenceID uuid.UUID, kind model.TokenKind, now time.Time) (Entry, error) {
	var row model.CheckinTokenModel
	err := s.DB.WithContext(ctx).
		Where("checkin_token_current_key = ? AND checkin_token_expires_at > ?", model.CurrentKey(occurrenceID, kind), now.UTC()).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Entry{}, ErrTokenNotFound
	}
	if err != nil {
		return Entry{}, errors.Wrap(err, "current checkin token")
	}
	return toEntry(row), nil
}

func (s *GormStore) Validate(ctx context.Context, token string, now time.Time) (Entry, error) {
	var row model.CheckinTokenModel
	err := s.DB.WithContext(ctx).
		Where("checkin_token_value = ? AND checkin_token_expires_at > ?", token, now.UTC()).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Entry{}, ErrTokenNotFound
	}
	if err != nil {
		return Entry{}, errors.Wrap(err, "validate checkin token")
	}
	return toEntry(row), nil
}

func (s *GormStore) Sweep(ctx context.Context, now time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("checkin_token_expires_at <= ?", now.UTC()).
		Delete(&model.CheckinTokenModel{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "sweep checkin tokens")
	}
	return res.RowsAffected, nil
}

func toEntry(row model.CheckinTokenModel) Entry {
	return Entry{
		OccurrenceID: row.CheckinTokenOccurrenceID,
		Kind:         row.CheckinTokenKind,
		Token:        row.CheckinTokenValue,
		IssuedAt:     row.CheckinTokenIssuedAt,
		ExpiresAt:    row.CheckinTokenExpiresAt,
		SupersededAt: row.CheckinTokenSupersededAt,
	}
}
