package repository

import (
	"context"

	"gerejaku_backend/internals/features/members/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemberRepository struct {
	DB *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{DB: db}
}

// FindActiveByID mengembalikan gorm.ErrRecordNotFound kalau jemaat tidak ada / nonaktif.
func (r *MemberRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*model.MemberModel, error) {
	var m model.MemberModel
	err := r.DB.WithContext(ctx).
		Where("member_id = ? AND member_is_active = ?", id, true).
		Take(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}
