// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"log"
	"time"

	"gerejaku_backend/internals/configs"
	helper "gerejaku_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const expirySkew = 30 * time.Second

// AuthMiddleware memverifikasi JWT petugas (diterbitkan layanan auth terpisah).
// secret kosong → configs.JWTSecret.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1) Ambil Authorization (atau cookie)
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
		}

		// 2) Signature + exp + user_id
		claims, userID, status, msg := verifyStaffToken(tokenString, secret)
		if status != 0 {
			return helper.JsonError(c, status, msg)
		}
		c.Locals("user_id", userID.String())

		// 3) role & nama petugas
		storeBasicClaimsToLocals(c, claims)
		return c.Next()
	}
}

// verifyStaffToken: status 0 berarti token valid.
func verifyStaffToken(tokenString, secret string) (jwt.MapClaims, uuid.UUID, int, string) {
	secretKey := secret
	if secretKey == "" {
		secretKey = configs.JWTSecret
	}
	if secretKey == "" {
		log.Println("[ERROR] JWT_SECRET kosong")
		return nil, uuid.Nil, fiber.StatusInternalServerError, "Missing JWT Secret"
	}

	claims := jwt.MapClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true, ValidMethods: []string{"HS256", "HS384", "HS512"}}
	if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	}); err != nil {
		log.Println("[ERROR] Gagal parse token:", err)
		return nil, uuid.Nil, fiber.StatusUnauthorized, "Unauthorized - Token parse error"
	}

	if err := validateTokenExpiry(claims, time.Now(), expirySkew); err != nil {
		log.Println("[ERROR] Exp validation:", err)
		return nil, uuid.Nil, fiber.StatusUnauthorized, "Unauthorized - Token expired"
	}

	userID, err := extractUserID(claims)
	if err != nil {
		log.Println("[ERROR] user_id:", err)
		return nil, uuid.Nil, fiber.StatusUnauthorized, "Unauthorized - Invalid or missing user ID"
	}
	return claims, userID, 0, ""
}
