package dto

import (
	"strings"
	"time"

	"gerejaku_backend/internals/features/services/occurrences/model"

	"github.com/google/uuid"
)

type CreateOccurrenceRequest struct {
	TemplateID *uuid.UUID `json:"template_id"`
	Title      string     `json:"title" validate:"required,min=3,max=160"`
	StartsAt   time.Time  `json:"starts_at" validate:"required"`
	EndsAt     time.Time  `json:"ends_at" validate:"required,gtfield=StartsAt"`
}

func (r *CreateOccurrenceRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
}

func (r CreateOccurrenceRequest) ToModel() model.ServiceOccurrenceModel {
	return model.ServiceOccurrenceModel{
		ServiceOccurrenceTemplateID: r.TemplateID,
		ServiceOccurrenceTitle:      r.Title,
		ServiceOccurrenceStartsAt:   r.StartsAt.UTC(),
		ServiceOccurrenceEndsAt:     r.EndsAt.UTC(),
	}
}

// PatchOccurrenceRequest: field nil = tidak diubah.
type PatchOccurrenceRequest struct {
	Title    *string    `json:"title" validate:"omitempty,min=3,max=160"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

func (r *PatchOccurrenceRequest) Normalize() {
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		r.Title = &t
	}
}

func (r PatchOccurrenceRequest) IsEmpty() bool {
	return r.Title == nil && r.StartsAt == nil && r.EndsAt == nil
}

// Apply mengembalikan map kolom untuk Updates + jam mulai/selesai hasil akhir (untuk validasi urutan).
func (r PatchOccurrenceRequest) Apply(cur model.ServiceOccurrenceModel) (map[string]any, time.Time, time.Time) {
	updates := map[string]any{}
	starts, ends := cur.ServiceOccurrenceStartsAt, cur.ServiceOccurrenceEndsAt
	if r.Title != nil {
		updates["service_occurrence_title"] = *r.Title
	}
	if r.StartsAt != nil {
		starts = r.StartsAt.UTC()
		updates["service_occurrence_starts_at"] = starts
	}
	if r.EndsAt != nil {
		ends = r.EndsAt.UTC()
		updates["service_occurrence_ends_at"] = ends
	}
	return updates, starts, ends
}

// ListOccurrenceQuery: ?from=&to=&template_id=&page=&per_page=
type ListOccurrenceQuery struct {
	From       string `query:"from"`
	To         string `query:"to"`
	TemplateID string `query:"template_id"`
}

type OccurrenceResponse struct {
	ID         uuid.UUID  `json:"id"`
	TemplateID *uuid.UUID `json:"template_id,omitempty"`
	Title      string     `json:"title"`
	StartsAt   time.Time  `json:"starts_at"`
	EndsAt     time.Time  `json:"ends_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func FromModel(m model.ServiceOccurrenceModel) OccurrenceResponse {
	return OccurrenceResponse{
		ID:         m.ServiceOccurrenceID,
		TemplateID: m.ServiceOccurrenceTemplateID,
		Title:      m.ServiceOccurrenceTitle,
		StartsAt:   m.ServiceOccurrenceStartsAt,
		EndsAt:     m.ServiceOccurrenceEndsAt,
		CreatedAt:  m.ServiceOccurrenceCreatedAt,
		UpdatedAt:  m.ServiceOccurrenceUpdatedAt,
	}
}

func FromModels(rows []model.ServiceOccurrenceModel) []OccurrenceResponse {
	out := make([]OccurrenceResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}
