package middlewares

import (
	"time"

	helper "gerejaku_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Global limiter: untuk semua endpoint biasa
func GlobalRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, "Terlalu banyak permintaan. Silakan coba lagi nanti.")
		},
	})
}

// CheckInRateLimiter: endpoint check-in publik (tanpa login) per IP.
// Satu keluarga di belakang NAT gereja bisa scan bareng, jadi jangan terlalu ketat.
func CheckInRateLimiter(max int) fiber.Handler {
	if max <= 0 {
		max = 20
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "checkin:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderRetryAfter, "60")
			return helper.JsonError(c, fiber.StatusTooManyRequests, "Terlalu banyak percobaan check-in. Tunggu sebentar lalu scan ulang.")
		},
	})
}
