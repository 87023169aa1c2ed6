package route

import (
	"gerejaku_backend/internals/constants"
	occurrenceController "gerejaku_backend/internals/features/services/occurrences/controller"
	authMiddleware "gerejaku_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

/*
Staff routes: jadwal ibadah. Hapus hanya admin.
Mount contoh: OccurrenceAdminRoutes(app.Group("/api/a"), db, rec.Roll.Forget)
*/
func OccurrenceAdminRoutes(r fiber.Router, db *gorm.DB, onDeleted func(uuid.UUID)) {
	ctl := occurrenceController.NewOccurrenceController(db)
	ctl.OnDeleted = onDeleted
	adminOnly := authMiddleware.OnlyRoles(constants.RoleErrorAdmin("hapus jadwal"), constants.AdminOnly...)

	occ := r.Group("/service-occurrences")
	occ.Post("/", ctl.Create)                 // POST   /api/a/service-occurrences
	occ.Get("/", ctl.List)                    // GET    /api/a/service-occurrences?from=&to=&template_id=
	occ.Get("/:id", ctl.Get)                  // GET    /api/a/service-occurrences/:id
	occ.Patch("/:id", ctl.Patch)              // PATCH  /api/a/service-occurrences/:id?force=true
	occ.Delete("/:id", adminOnly, ctl.Delete) // DELETE /api/a/service-occurrences/:id
}
