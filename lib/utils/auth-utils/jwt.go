package authutils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"procurement-backend/lib/utils/helpers"
)

// GetToken signs an HS256 token carrying the caller identity.
func GetToken(secret, userID, email, name string, ttl time.Duration, now time.Time) (tokenString string, err error) {
	claims := jwt.MapClaims{
		"name":  name,
		"sub":   userID,
		"email": email,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func GetClaims(ctx *fiber.Ctx) jwt.MapClaims {
	token, ok := ctx.Locals("user").(*jwt.Token)
	if !ok {
		return jwt.MapClaims{}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return jwt.MapClaims{}
	}
	return claims
}

// GetActor names the caller: the email claim, or the subject when there is none.
func GetActor(ctx *fiber.Ctx) string {
	claims := GetClaims(ctx)
	if email, ok := claims["email"].(string); ok && helpers.NormalizeEmail(email) != "" {
		return helpers.NormalizeEmail(email)
	}
	if sub, ok := claims["sub"].(string); ok {
		return sub
	}
	return ""
}
