package route

import (
	"time"

	attendanceController "gerejaku_backend/internals/features/checkin/attendance/controller"
	"gerejaku_backend/internals/features/checkin/attendance/service"

	"github.com/gofiber/fiber/v2"
)

/*
Staff routes: check-in manual + roll kehadiran.
Mount contoh: AttendanceAdminRoutes(app.Group("/api/a"), recorder, 30*time.Second)
*/
func AttendanceAdminRoutes(r fiber.Router, rec *service.Recorder, rollPoll time.Duration) {
	ctl := attendanceController.NewAttendanceController(rec, rollPoll)
	occ := r.Group("/checkin/occurrences/:occurrence_id")
	occ.Post("/manual", ctl.ManualCheckIn)      // POST /api/a/checkin/occurrences/:occurrence_id/manual
	occ.Get("/attendance", ctl.ListAttendance)  // GET  /api/a/checkin/occurrences/:occurrence_id/attendance
	occ.Get("/attendance/summary", ctl.Summary) // GET  /api/a/checkin/occurrences/:occurrence_id/attendance/summary
}
