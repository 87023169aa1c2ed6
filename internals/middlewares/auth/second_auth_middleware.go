package auth

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// SecondAuthMiddleware: JWT opsional untuk route publik. Token valid → Locals user
// terisi (mis. petugas yang ikut scan QR tercatat sebagai recorded_by);
// tidak ada / tidak valid → lanjut sebagai anonymous, tidak pernah menolak request.
func SecondAuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return c.Next()
		}

		claims, userID, status, _ := verifyStaffToken(tokenString, secret)
		if status != 0 {
			log.Println("[INFO] Token opsional tidak valid, lanjut sebagai anonymous")
			return c.Next()
		}

		c.Locals("user_id", userID.String())
		storeBasicClaimsToLocals(c, claims)
		return c.Next()
	}
}
