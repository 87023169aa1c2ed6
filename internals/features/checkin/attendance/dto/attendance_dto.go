package dto

import (
	"strings"
	"time"

	"gerejaku_backend/internals/features/checkin/attendance/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ManualCheckInRequest struct {
	MemberID uuid.UUID    `json:"member_id" validate:"required"`
	Method   model.Method `json:"method" validate:"omitempty,oneof=MANUAL"`
}

func (r *ManualCheckInRequest) Normalize() {
	r.Method = model.Method(strings.ToUpper(strings.TrimSpace(string(r.Method))))
}

// ListAttendanceQuery: ?category=&method=&q=&page=&per_page=
type ListAttendanceQuery struct {
	Category string `query:"category" validate:"omitempty,oneof=MEMBER VISITOR"`
	Method   string `query:"method" validate:"omitempty,oneof=MANUAL QR_ROTATING QR_STATIC"`
	Q        string `query:"q" validate:"omitempty,max=80"`
}

func (q *ListAttendanceQuery) Normalize() {
	q.Category = strings.ToUpper(strings.TrimSpace(q.Category))
	q.Method = strings.ToUpper(strings.TrimSpace(q.Method))
	q.Q = strings.TrimSpace(q.Q)
}

type AttendanceResponse struct {
	ID           uuid.UUID      `json:"id"`
	OccurrenceID uuid.UUID      `json:"occurrence_id"`
	MemberID     *uuid.UUID     `json:"member_id,omitempty"`
	Name         string         `json:"name"`
	Phone        *string        `json:"phone,omitempty"`
	Category     model.Category `json:"category"`
	Notes        *string        `json:"notes,omitempty"`
	Method       model.Method   `json:"method"`
	CheckedInAt  time.Time      `json:"checked_in_at"`
	Meta         datatypes.JSON `json:"meta,omitempty"`
}

func FromModel(m model.ServiceAttendanceModel) AttendanceResponse {
	return AttendanceResponse{
		ID:           m.ServiceAttendanceID,
		OccurrenceID: m.ServiceAttendanceOccurrenceID,
		MemberID:     m.ServiceAttendanceMemberID,
		Name:         m.ServiceAttendanceName,
		Phone:        m.ServiceAttendancePhone,
		Category:     m.ServiceAttendanceCategory,
		Notes:        m.ServiceAttendanceNotes,
		Method:       m.ServiceAttendanceMethod,
		CheckedInAt:  m.ServiceAttendanceCheckedInAt,
		Meta:         m.ServiceAttendanceMeta,
	}
}

func FromModels(rows []model.ServiceAttendanceModel) []AttendanceResponse {
	out := make([]AttendanceResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}

// RollIncludes: info tambahan untuk layar roll yang polling.
type RollIncludes struct {
	RollCount        int64 `json:"roll_count"`
	PollAfterSeconds int   `json:"poll_after_seconds"`
}
