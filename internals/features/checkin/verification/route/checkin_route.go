package route

import (
	"time"

	checkinController "gerejaku_backend/internals/features/checkin/verification/controller"
	"gerejaku_backend/internals/features/checkin/verification/service"

	"github.com/gofiber/fiber/v2"
)

/*
Public route: check-in dari scan QR, tanpa login.
Mount contoh: CheckInPublicRoutes(app.Group("/api/public"), verifier, 3*time.Second, limiter)
*/
func CheckInPublicRoutes(r fiber.Router, v *service.Verifier, timeout time.Duration, guards ...fiber.Handler) {
	ctl := checkinController.NewCheckInController(v, timeout)
	handlers := append(append([]fiber.Handler{}, guards...), ctl.CheckIn)
	r.Post("/checkin", handlers...) // POST /api/public/checkin
}
