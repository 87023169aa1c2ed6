package repository

import (
	"context"
	"time"

	"gerejaku_backend/internals/features/services/occurrences/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OccurrenceRepository struct {
	DB *gorm.DB
}

func NewOccurrenceRepository(db *gorm.DB) *OccurrenceRepository {
	return &OccurrenceRepository{DB: db}
}

// FindByID: gorm.ErrRecordNotFound kalau tidak ada / sudah soft delete.
func (r *OccurrenceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceOccurrenceModel, error) {
	var m model.ServiceOccurrenceModel
	if err := r.DB.WithContext(ctx).
		Where("service_occurrence_id = ?", id).
		Take(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

type ListFilter struct {
	From       *time.Time
	To         *time.Time
	TemplateID *uuid.UUID
	Offset     int
	Limit      int
}

func (r *OccurrenceRepository) List(ctx context.Context, f ListFilter) ([]model.ServiceOccurrenceModel, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.ServiceOccurrenceModel{})
	if f.From != nil {
		q = q.Where("service_occurrence_starts_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("service_occurrence_starts_at < ?", *f.To)
	}
	if f.TemplateID != nil {
		q = q.Where("service_occurrence_template_id = ?", *f.TemplateID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.ServiceOccurrenceModel
	if err := q.Order("service_occurrence_starts_at DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *OccurrenceRepository) Create(ctx context.Context, m *model.ServiceOccurrenceModel) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *OccurrenceRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*model.ServiceOccurrenceModel, error) {
	res := r.DB.WithContext(ctx).
		Model(&model.ServiceOccurrenceModel{}).
		Where("service_occurrence_id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *OccurrenceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).
		Where("service_occurrence_id = ?", id).
		Delete(&model.ServiceOccurrenceModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HasAttendance: dipakai untuk menjaga jadwal yang sudah punya kehadiran tetap immutable.
func (r *OccurrenceRepository) HasAttendance(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Table("service_attendances").
		Where("service_attendance_occurrence_id = ?", id).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}
