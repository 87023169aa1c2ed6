package controller

import (
	"errors"
	"log"
	"time"

	"gerejaku_backend/internals/features/checkin/attendance/dto"
	"gerejaku_backend/internals/features/checkin/attendance/model"
	"gerejaku_backend/internals/features/checkin/attendance/service"
	"gerejaku_backend/internals/features/checkin/checkinerr"
	helper "gerejaku_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
)

type AttendanceController struct {
	Recorder     *service.Recorder
	PollInterval time.Duration
}

func NewAttendanceController(rec *service.Recorder, pollInterval time.Duration) *AttendanceController {
	return &AttendanceController{Recorder: rec, PollInterval: pollInterval}
}

// POST /api/a/checkin/occurrences/:occurrence_id/manual
func (h *AttendanceController) ManualCheckIn(c *fiber.Ctx) error {
	occID, err := helper.ParseUUIDParam(c, "occurrence_id")
	if err != nil {
		return err
	}

	var req dto.ManualCheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := helper.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	meta := service.Meta{IP: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
	if staffID, err := helper.GetUserIDFromToken(c); err == nil {
		meta.RecordedBy = staffID.String()
	}

	rec, err := h.Recorder.RecordManual(c.UserContext(), service.ManualInput{
		OccurrenceID: occID,
		MemberID:     req.MemberID,
		Method:       req.Method,
		Meta:         meta,
	})
	if errors.Is(err, checkinerr.ErrDuplicateCheckIn) && rec != nil {
		return helper.JsonConflict(c, "Jemaat sudah tercatat hadir", dto.FromModel(*rec))
	}
	if err != nil {
		return respondError(c, "manual", err)
	}
	return helper.JsonCreated(c, "Kehadiran dicatat", dto.FromModel(*rec))
}

// GET /api/a/checkin/occurrences/:occurrence_id/attendance?category=&method=&q=&page=&per_page=
func (h *AttendanceController) ListAttendance(c *fiber.Ctx) error {
	occID, err := helper.ParseUUIDParam(c, "occurrence_id")
	if err != nil {
		return err
	}

	var q dto.ListAttendanceQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Query tidak valid")
	}
	q.Normalize()
	if err := helper.Validator.Struct(q); err != nil {
		return helper.ValidationError(c, err)
	}
	paging := helper.ResolvePaging(c, 50, 500)

	ctx := c.UserContext()
	rows, total, err := h.Recorder.List(ctx, occID, service.ListFilter{
		Category: model.Category(q.Category),
		Method:   model.Method(q.Method),
		Q:        q.Q,
		Offset:   paging.Offset,
		Limit:    paging.Limit,
	})
	if err != nil {
		return respondError(c, "list", err)
	}
	count, err := h.Recorder.RollCount(ctx, occID)
	if err != nil {
		return respondError(c, "roll", err)
	}

	pg := helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage)
	return helper.JsonListEx(c, "Daftar hadir", dto.FromModels(rows), &pg, dto.RollIncludes{
		RollCount:        count,
		PollAfterSeconds: int(h.PollInterval.Seconds()),
	})
}

// GET /api/a/checkin/occurrences/:occurrence_id/attendance/summary
func (h *AttendanceController) Summary(c *fiber.Ctx) error {
	occID, err := helper.ParseUUIDParam(c, "occurrence_id")
	if err != nil {
		return err
	}
	sum, err := h.Recorder.Summary(c.UserContext(), occID)
	if err != nil {
		return respondError(c, "summary", err)
	}
	return helper.JsonOK(c, "Ringkasan kehadiran", sum)
}

func respondError(c *fiber.Ctx, op string, err error) error {
	p := checkinerr.Resolve(err)
	if p.Status >= 500 {
		log.Printf("[CHECKIN] %s reqid=%v error: %v", op, c.Locals("reqid"), err)
		if p.Status == fiber.StatusServiceUnavailable {
			c.Set(fiber.HeaderRetryAfter, "1")
		}
	}
	return helper.JsonErrorWithCode(c, p.Status, p.Code, p.Message)
}
