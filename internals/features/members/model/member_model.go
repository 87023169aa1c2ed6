package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemberModel: proyeksi read-only tabel jemaat. CRUD anggota ada di modul lain;
// check-in hanya butuh id, nama, telepon dan status aktif.
type MemberModel struct {
	MemberID       uuid.UUID `gorm:"type:uuid;primaryKey;column:member_id" json:"member_id"`
	MemberFullName string    `gorm:"type:varchar(160);not null;column:member_full_name" json:"member_full_name"`
	MemberPhone    *string   `gorm:"type:varchar(32);column:member_phone" json:"member_phone,omitempty"`
	MemberIsActive bool      `gorm:"not null;default:true;column:member_is_active" json:"member_is_active"`

	MemberCreatedAt time.Time      `gorm:"column:member_created_at;autoCreateTime" json:"member_created_at"`
	MemberDeletedAt gorm.DeletedAt `gorm:"column:member_deleted_at;index" json:"-"`
}

func (MemberModel) TableName() string { return "members" }

func (m *MemberModel) BeforeCreate(tx *gorm.DB) error {
	if m.MemberID == uuid.Nil {
		m.MemberID = uuid.New()
	}
	return nil
}
