package controller

import (
	"errors"
	"log"
	"strings"
	"time"

	"gerejaku_backend/internals/constants"
	"gerejaku_backend/internals/features/services/occurrences/dto"
	"gerejaku_backend/internals/features/services/occurrences/repository"
	helper "gerejaku_backend/internals/helpers"
	helperAuth "gerejaku_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OccurrenceController struct {
	Repo *repository.OccurrenceRepository

	// OnDeleted (opsional) dipanggil setelah jadwal terhapus, mis. membuang cache roll.
	OnDeleted func(id uuid.UUID)
}

func NewOccurrenceController(db *gorm.DB) *OccurrenceController {
	return &OccurrenceController{Repo: repository.NewOccurrenceRepository(db)}
}

// POST /api/a/service-occurrences
func (h *OccurrenceController) Create(c *fiber.Ctx) error {
	var req dto.CreateOccurrenceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := helper.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	m := req.ToModel()
	if err := h.Repo.Create(c.UserContext(), &m); err != nil {
		log.Printf("[OCCURRENCE] create error: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat jadwal ibadah")
	}
	return helper.JsonCreated(c, "Jadwal ibadah dibuat", dto.FromModel(m))
}

// GET /api/a/service-occurrences/:id
func (h *OccurrenceController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	m, err := h.Repo.FindByID(c.UserContext(), id)
	if err != nil {
		return notFoundOr500(c, err, "Gagal mengambil jadwal ibadah")
	}
	return helper.JsonOK(c, "Detail jadwal ibadah", dto.FromModel(*m))
}

// GET /api/a/service-occurrences?from=&to=&template_id=&page=&per_page=
func (h *OccurrenceController) List(c *fiber.Ctx) error {
	var q dto.ListOccurrenceQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Query tidak valid")
	}

	var f repository.ListFilter
	if s := strings.TrimSpace(q.From); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "from harus RFC3339")
		}
		f.From = &t
	}
	if s := strings.TrimSpace(q.To); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "to harus RFC3339")
		}
		f.To = &t
	}
	if s := strings.TrimSpace(q.TemplateID); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "template_id tidak valid")
		}
		f.TemplateID = &id
	}

	paging := helper.ResolvePaging(c, 20, 200)
	f.Offset, f.Limit = paging.Offset, paging.Limit

	rows, total, err := h.Repo.List(c.UserContext(), f)
	if err != nil {
		log.Printf("[OCCURRENCE] list error: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil jadwal ibadah")
	}
	pg := helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage)
	return helper.JsonList(c, "Daftar jadwal ibadah", dto.FromModels(rows), &pg)
}

// PATCH /api/a/service-occurrences/:id[?force=true]
// Jadwal yang sudah punya kehadiran hanya boleh dikoreksi admin dengan force=true.
func (h *OccurrenceController) Patch(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.PatchOccurrenceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := helper.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	if req.IsEmpty() {
		return helper.JsonError(c, fiber.StatusBadRequest, "Tidak ada field yang diubah")
	}

	ctx := c.UserContext()
	cur, err := h.Repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr500(c, err, "Gagal mengambil jadwal ibadah")
	}

	has, err := h.Repo.HasAttendance(ctx, id)
	if err != nil {
		log.Printf("[OCCURRENCE] has attendance error: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal cek kehadiran")
	}
	if has {
		force := strings.EqualFold(c.Query("force"), "true")
		if !force || !helperAuth.HasRole(c, constants.AdminOnly...) {
			return helper.JsonError(c, fiber.StatusConflict, "Jadwal sudah memiliki data kehadiran; koreksi hanya oleh admin dengan force=true")
		}
		log.Printf("[OCCURRENCE] koreksi admin occurrence=%s by=%v", id, c.Locals("user_id"))
	}

	updates, starts, ends := req.Apply(*cur)
	if !ends.After(starts) {
		return helper.JsonValidationError(c, map[string][]string{"ends_at": {"gtfield"}})
	}

	m, err := h.Repo.Update(ctx, id, updates)
	if err != nil {
		return notFoundOr500(c, err, "Gagal memperbarui jadwal ibadah")
	}
	return helper.JsonUpdated(c, "Jadwal ibadah diperbarui", dto.FromModel(*m))
}

// DELETE /api/a/service-occurrences/:id (admin, soft delete)
func (h *OccurrenceController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	has, err := h.Repo.HasAttendance(ctx, id)
	if err != nil {
		log.Printf("[OCCURRENCE] has attendance error: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal cek kehadiran")
	}
	if has {
		return helper.JsonError(c, fiber.StatusConflict, "Jadwal yang sudah memiliki data kehadiran tidak bisa dihapus")
	}

	if err := h.Repo.Delete(ctx, id); err != nil {
		return notFoundOr500(c, err, "Gagal menghapus jadwal ibadah")
	}
	if h.OnDeleted != nil {
		h.OnDeleted(id)
	}
	return helper.JsonDeleted(c, "Jadwal ibadah dihapus", fiber.Map{"id": id})
}

func notFoundOr500(c *fiber.Ctx, err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.JsonError(c, fiber.StatusNotFound, "Jadwal ibadah tidak ditemukan")
	}
	log.Printf("[OCCURRENCE] %s: %v", msg, err)
	return helper.JsonError(c, fiber.StatusInternalServerError, msg)
}
