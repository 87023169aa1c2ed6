package controller

import (
	"context"
	"log"
	"time"

	"gerejaku_backend/internals/features/checkin/attendance/service"
	"gerejaku_backend/internals/features/checkin/checkinerr"
	"gerejaku_backend/internals/features/checkin/verification/dto"
	verification "gerejaku_backend/internals/features/checkin/verification/service"
	helper "gerejaku_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
)

type CheckInController struct {
	Verifier *verification.Verifier
	Timeout  time.Duration
}

func NewCheckInController(v *verification.Verifier, timeout time.Duration) *CheckInController {
	return &CheckInController{Verifier: v, Timeout: timeout}
}

// POST /api/public/checkin
func (h *CheckInController) CheckIn(c *fiber.Ctx) error {
	var req dto.PublicCheckInRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := helper.Validator.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	ctx := c.UserContext()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	claim := req.ToClaim()
	claim.Meta = service.Meta{IP: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
	if staffID, err := helper.GetUserIDFromToken(c); err == nil {
		claim.Meta.RecordedBy = staffID.String()
	}

	res, err := h.Verifier.Verify(ctx, req.Token, claim)
	if err != nil {
		p := checkinerr.Resolve(err)
		if p.Status >= 500 {
			// detail storage hanya ke log, tidak ke klien publik
			log.Printf("[CHECKIN ERROR] reqid=%v: %v", c.Locals("reqid"), err)
			if p.Status == fiber.StatusServiceUnavailable {
				c.Set(fiber.HeaderRetryAfter, "1")
			}
		}
		return helper.JsonErrorWithCode(c, p.Status, p.Code, p.Message)
	}

	if res.Duplicate {
		return helper.JsonOK(c, "Anda sudah tercatat hadir", dto.FromResult(res))
	}
	return helper.JsonCreated(c, "Check-in berhasil, selamat beribadah", dto.FromResult(res))
}
