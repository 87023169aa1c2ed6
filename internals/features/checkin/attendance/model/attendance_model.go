package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryMember  Category = "MEMBER"
	CategoryVisitor Category = "VISITOR"
)

func (c Category) Valid() bool { return c == CategoryMember || c == CategoryVisitor }

type Method string

const (
	MethodQRRotating Method = "QR_ROTATING"
	MethodQRStatic   Method = "QR_STATIC"
	MethodManual     Method = "MANUAL"
)

func (m Method) Valid() bool {
	return m == MethodQRRotating || m == MethodQRStatic || m == MethodManual
}

// ServiceAttendanceModel: satu kehadiran jemaat/tamu pada satu jadwal ibadah.
// Tidak pernah di-update setelah insert. Dedup dijaga ux_service_attendances_dedup.
type ServiceAttendanceModel struct {
	ServiceAttendanceID           uuid.UUID  `gorm:"type:uuid;primaryKey;column:service_attendance_id" json:"service_attendance_id"`
	ServiceAttendanceOccurrenceID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:ux_service_attendances_dedup,priority:1;column:service_attendance_occurrence_id" json:"service_attendance_occurrence_id"`
	ServiceAttendanceMemberID     *uuid.UUID `gorm:"type:uuid;index;column:service_attendance_member_id" json:"service_attendance_member_id,omitempty"`

	ServiceAttendanceName     string   `gorm:"type:varchar(160);not null;column:service_attendance_name" json:"service_attendance_name"`
	ServiceAttendancePhone    *string  `gorm:"type:varchar(32);column:service_attendance_phone" json:"service_attendance_phone,omitempty"`
	ServiceAttendanceCategory Category `gorm:"type:varchar(16);not null;column:service_attendance_category" json:"service_attendance_category"`
	ServiceAttendanceNotes    *string  `gorm:"type:text;column:service_attendance_notes" json:"service_attendance_notes,omitempty"`
	ServiceAttendanceMethod   Method   `gorm:"type:varchar(16);not null;column:service_attendance_method" json:"service_attendance_method"`

	// member:<uuid> | phone:<hash> | name:<hash>
	ServiceAttendanceDedupKey string `gorm:"type:varchar(96);not null;uniqueIndex:ux_service_attendances_dedup,priority:2;column:service_attendance_dedup_key" json:"-"`

	ServiceAttendanceCheckedInAt time.Time      `gorm:"not null;index;column:service_attendance_checked_in_at" json:"service_attendance_checked_in_at"`
	ServiceAttendanceMeta        datatypes.JSON `gorm:"column:service_attendance_meta" json:"service_attendance_meta,omitempty"`
	ServiceAttendanceCreatedAt   time.Time      `gorm:"column:service_attendance_created_at;autoCreateTime" json:"service_attendance_created_at"`
}

func (ServiceAttendanceModel) TableName() string { return "service_attendances" }

func (m *ServiceAttendanceModel) BeforeCreate(tx *gorm.DB) error {
	if m.ServiceAttendanceID == uuid.Nil {
		m.ServiceAttendanceID = uuid.New()
	}
	return nil
}
