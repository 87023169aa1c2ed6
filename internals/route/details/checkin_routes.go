// internals/route/details/checkin_routes.go
package details

import (
	"log"

	"gerejaku_backend/internals/configs"
	AttendanceRoutes "gerejaku_backend/internals/features/checkin/attendance/route"
	attendanceService "gerejaku_backend/internals/features/checkin/attendance/service"
	TokenRoutes "gerejaku_backend/internals/features/checkin/tokens/route"
	tokenService "gerejaku_backend/internals/features/checkin/tokens/service"
	"gerejaku_backend/internals/features/checkin/tokens/store"
	CheckInRoutes "gerejaku_backend/internals/features/checkin/verification/route"
	verification "gerejaku_backend/internals/features/checkin/verification/service"
	memberRepo "gerejaku_backend/internals/features/members/repository"
	occRepo "gerejaku_backend/internals/features/services/occurrences/repository"
	"gerejaku_backend/internals/middlewares"
	authMiddleware "gerejaku_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CheckinDeps: komponen check-in QR yang dipakai bersama route & scheduler.
// Store harus satu instance per proses (MemoryStore menyimpan token di RAM).
type CheckinDeps struct {
	Config   configs.CheckinConfig
	Store    store.Store
	Issuer   *tokenService.Issuer
	Recorder *attendanceService.Recorder
	Verifier *verification.Verifier
}

func NewCheckinDeps(db *gorm.DB, cfg configs.CheckinConfig) *CheckinDeps {
	var st store.Store
	switch cfg.TokenStore {
	case configs.TokenStoreMemory:
		log.Println("[WARN] CHECKIN_TOKEN_STORE=memory: token hanya valid di instance ini")
		st = store.NewMemoryStore()
	default:
		st = store.NewGormStore(db)
	}

	occurrences := occRepo.NewOccurrenceRepository(db)
	rec := attendanceService.NewRecorder(db, memberRepo.NewMemberRepository(db), occurrences, cfg.RollPollInterval)

	return &CheckinDeps{
		Config:   cfg,
		Store:    st,
		Issuer:   tokenService.NewIssuer(st, occurrences, cfg),
		Recorder: rec,
		Verifier: verification.NewVerifier(st, occurrences, rec, cfg.LateWindow),
	}
}

/* ===================== PUBLIC ===================== */
// Check-in scan QR: tanpa login (SecondAuth opsional), rate limit per IP, timeout pendek.
func CheckinPublicRoutes(r fiber.Router, d *CheckinDeps) {
	CheckInRoutes.CheckInPublicRoutes(r, d.Verifier, d.Config.PublicTimeout,
		middlewares.CheckInRateLimiter(d.Config.PublicRateMax),
		authMiddleware.SecondAuthMiddleware(""),
	)
}

/* ===================== STAFF ===================== */
// Token QR + check-in manual + roll. r sudah dijaga Auth + role petugas.
func CheckinAdminRoutes(r fiber.Router, d *CheckinDeps) {
	TokenRoutes.TokenAdminRoutes(r, d.Issuer)
	AttendanceRoutes.AttendanceAdminRoutes(r, d.Recorder, d.Config.RollPollInterval)
}
