package dto

import (
	"strings"
	"time"

	attendanceModel "gerejaku_backend/internals/features/checkin/attendance/model"
	"gerejaku_backend/internals/features/checkin/verification/service"

	"github.com/google/uuid"
)

// PublicCheckInRequest: body POST /api/public/checkin.
// Token & nama kosong sengaja tidak divalidasi di sini; verifier yang menolak
// dengan error bertipe (INVALID_TOKEN / VALIDATION_ERROR).
type PublicCheckInRequest struct {
	OccurrenceID *uuid.UUID `json:"occurrence_id"`
	Token        string     `json:"token"`
	Name         string     `json:"name" validate:"max=160"`
	Phone        string     `json:"phone" validate:"max=32"`
	Category     string     `json:"category"`
	Notes        string     `json:"notes" validate:"max=500"`
}

func (r *PublicCheckInRequest) Normalize() {
	r.Token = strings.TrimSpace(r.Token)
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Category = strings.ToUpper(strings.TrimSpace(r.Category))
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r PublicCheckInRequest) ToClaim() service.Claim {
	return service.Claim{
		OccurrenceID: r.OccurrenceID,
		Name:         r.Name,
		Phone:        r.Phone,
		Category:     attendanceModel.Category(r.Category),
		Notes:        r.Notes,
	}
}

// PublicCheckInResponse sengaja tanpa telepon/catatan.
type PublicCheckInResponse struct {
	AttendanceID     uuid.UUID                `json:"attendance_id"`
	OccurrenceID     uuid.UUID                `json:"occurrence_id"`
	Name             string                   `json:"name"`
	Category         attendanceModel.Category `json:"category"`
	Method           attendanceModel.Method   `json:"method"`
	CheckedInAt      time.Time                `json:"checked_in_at"`
	AlreadyCheckedIn bool                     `json:"already_checked_in"`
}

func FromResult(res service.Result) PublicCheckInResponse {
	out := PublicCheckInResponse{
		OccurrenceID:     res.OccurrenceID,
		Method:           res.Method,
		AlreadyCheckedIn: res.Duplicate,
	}
	if r := res.Record; r != nil {
		out.AttendanceID = r.ServiceAttendanceID
		out.Name = r.ServiceAttendanceName
		out.Category = r.ServiceAttendanceCategory
		out.CheckedInAt = r.ServiceAttendanceCheckedInAt
	}
	return out
}
