package route

import (
	tokenController "gerejaku_backend/internals/features/checkin/tokens/controller"
	"gerejaku_backend/internals/features/checkin/tokens/service"

	"github.com/gofiber/fiber/v2"
)

/*
Staff routes: token QR per jadwal ibadah.
Mount contoh: TokenAdminRoutes(app.Group("/api/a"), issuer)
*/
func TokenAdminRoutes(r fiber.Router, iss *service.Issuer) {
	ctl := tokenController.NewTokenController(iss)
	occ := r.Group("/checkin/occurrences/:occurrence_id")
	occ.Get("/rotating-token", ctl.GetRotatingToken) // GET /api/a/checkin/occurrences/:occurrence_id/rotating-token
	occ.Get("/static-token", ctl.GetStaticToken)     // GET /api/a/checkin/occurrences/:occurrence_id/static-token
}
