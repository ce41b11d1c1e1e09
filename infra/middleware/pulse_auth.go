package middleware

import (
	"errors"
	"fmt"
	"strings"

	"pulse_server/pkg/apperr"
	"pulse_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthConfig configures bearer authentication.
type AuthConfig struct {
	Secret string
	// DevUserID is used for requests without a token when set. Development only.
	DevUserID string
}

// JWTAuth validates HS256 bearer tokens and stores the subject as user_id.
func JWTAuth(cfg AuthConfig) fiber.Handler {
	var devUser uuid.UUID
	if cfg.DevUserID != "" {
		id, err := uuid.Parse(cfg.DevUserID)
		if err != nil {
			logger.Warn("invalid DEV_USER_ID %q, dev fallback disabled", cfg.DevUserID)
		} else {
			devUser = id
		}
	}

	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c.Get("Authorization"))

		if tokenString == "" {
			if devUser != uuid.Nil {
				setUser(c, devUser)
				return c.Next()
			}
			return apperr.Unauthorized("missing authorization")
		}

		if cfg.Secret == "" {
			return apperr.Unauthorized("authentication not configured")
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unsupported signing method: %v", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuedAt())

		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return apperr.TokenExpired()
			}
			logger.WithError(err).Warn("JWT validation failed")
			return apperr.InvalidToken("invalid token")
		}
		if !token.Valid {
			return apperr.InvalidToken("invalid token")
		}

		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			return apperr.InvalidToken("missing user id in token")
		}
		userID, err := uuid.Parse(sub)
		if err != nil {
			return apperr.InvalidToken("invalid user id format")
		}

		if email, ok := claims["email"].(string); ok {
			c.Locals("user_email", email)
		}
		setUser(c, userID)
		return c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func setUser(c *fiber.Ctx, userID uuid.UUID) {
	c.Locals("user_id", userID)
	c.SetUserContext(logger.ContextWithUserID(c.UserContext(), userID.String()))
}

// GetUserID returns the authenticated user.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userID, ok := c.Locals("user_id").(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, apperr.Unauthorized("")
	}
	return userID, nil
}
