package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceOccurrenceModel: satu jadwal ibadah konkret (mis. Ibadah Minggu 07.00, 2026-10-18).
// Template (jenis ibadah berulang) dikelola modul penjadwalan.
type ServiceOccurrenceModel struct {
	ServiceOccurrenceID         uuid.UUID  `gorm:"type:uuid;primaryKey;column:service_occurrence_id" json:"service_occurrence_id"`
	ServiceOccurrenceTemplateID *uuid.UUID `gorm:"type:uuid;index;column:service_occurrence_template_id" json:"service_occurrence_template_id,omitempty"`
	ServiceOccurrenceTitle      string     `gorm:"type:varchar(160);not null;column:service_occurrence_title" json:"service_occurrence_title"`

	ServiceOccurrenceStartsAt time.Time `gorm:"not null;index;column:service_occurrence_starts_at" json:"service_occurrence_starts_at"`
	ServiceOccurrenceEndsAt   time.Time `gorm:"not null;column:service_occurrence_ends_at" json:"service_occurrence_ends_at"`

	ServiceOccurrenceCreatedAt time.Time      `gorm:"column:service_occurrence_created_at;autoCreateTime" json:"service_occurrence_created_at"`
	ServiceOccurrenceUpdatedAt time.Time      `gorm:"column:service_occurrence_updated_at;autoUpdateTime" json:"service_occurrence_updated_at"`
	ServiceOccurrenceDeletedAt gorm.DeletedAt `gorm:"column:service_occurrence_deleted_at;index" json:"service_occurrence_deleted_at,omitempty"`
}

func (ServiceOccurrenceModel) TableName() string { return "service_occurrences" }

func (m *ServiceOccurrenceModel) BeforeCreate(tx *gorm.DB) error {
	if m.ServiceOccurrenceID == uuid.Nil {
		m.ServiceOccurrenceID = uuid.New()
	}
	return nil
}

// HasEnded: ibadah sudah lewat jam selesai.
func (m ServiceOccurrenceModel) HasEnded(now time.Time) bool {
	return now.After(m.ServiceOccurrenceEndsAt)
}
