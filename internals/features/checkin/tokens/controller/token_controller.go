package controller

import (
	"context"
	"log"

	"gerejaku_backend/internals/features/checkin/checkinerr"
	"gerejaku_backend/internals/features/checkin/tokens/dto"
	"gerejaku_backend/internals/features/checkin/tokens/service"
	helper "gerejaku_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TokenController struct {
	Issuer *service.Issuer
}

func NewTokenController(iss *service.Issuer) *TokenController {
	return &TokenController{Issuer: iss}
}

// GET /api/a/checkin/occurrences/:occurrence_id/rotating-token
func (h *TokenController) GetRotatingToken(c *fiber.Ctx) error {
	return h.serve(c, h.Issuer.RotatingToken)
}

// GET /api/a/checkin/occurrences/:occurrence_id/static-token
func (h *TokenController) GetStaticToken(c *fiber.Ctx) error {
	return h.serve(c, h.Issuer.StaticToken)
}

func (h *TokenController) serve(c *fiber.Ctx, issue func(context.Context, uuid.UUID) (service.Issued, error)) error {
	occID, err := helper.ParseUUIDParam(c, "occurrence_id")
	if err != nil {
		return err
	}

	issued, err := issue(c.UserContext(), occID)
	if err != nil {
		p := checkinerr.Resolve(err)
		if p.Status >= 500 {
			log.Printf("[CHECKIN-TOKEN] occurrence=%s error: %v", occID, err)
		}
		return helper.JsonErrorWithCode(c, p.Status, p.Code, p.Message)
	}

	// token tidak boleh di-cache proxy / etag
	c.Set(fiber.HeaderCacheControl, "no-store")
	return helper.JsonOK(c, "Token check-in", dto.FromIssued(issued))
}
