// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"gerejaku_backend/internals/constants"
	authMiddleware "gerejaku_backend/internals/middlewares/auth"
	routeDetails "gerejaku_backend/internals/route/details"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB, checkin *routeDetails.CheckinDeps) {
	startTime = time.Now()

	log.Println("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, db)

	// ===================== GROUPS =====================

	// PUBLIC → tanpa login
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public")

	// STAFF → JWT wajib + role petugas (CHECKIN_STAFF_ROLES)
	log.Println("[INFO] Setting up ADMIN group (Auth + RoleCheck)...")
	admin := app.Group("/api/a",
		authMiddleware.AuthMiddleware(""),
		authMiddleware.OnlyRoles(constants.RoleErrorStaff("check-in"), checkin.Config.StaffRoles...),
	)

	// ===================== MOUNT ROUTES =====================

	log.Println("[INFO] Mounting Checkin routes...")
	routeDetails.CheckinPublicRoutes(public, checkin)
	routeDetails.CheckinAdminRoutes(admin, checkin)

	log.Println("[INFO] Mounting Services routes...")
	routeDetails.ServicesAdminRoutes(admin, db, checkin)
}
