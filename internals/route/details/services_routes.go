// internals/route/details/services_routes.go
package details

import (
	OccurrenceRoutes "gerejaku_backend/internals/features/services/occurrences/route"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

/* ===================== STAFF ===================== */
func ServicesAdminRoutes(r fiber.Router, db *gorm.DB, checkin *CheckinDeps) {
	OccurrenceRoutes.OccurrenceAdminRoutes(r, db, checkin.Recorder.Roll.Forget)
}
