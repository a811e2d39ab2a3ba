package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InstallationRequired resolves the installation of the request from its
// signed cookie and issues a fresh installation when none is present.
func (handler *Handler) InstallationRequired(c *fiber.Ctx) error {
	claims, err := handler.authenticateInstallation(c)
	switch {
	case err != nil:
		installationID := uuid.NewString()
		if err := handler.setInstallationCookie(c, installationID); err != nil {
			handler.logger.Error("issue installation cookie failed", zap.Error(err))
			return apiError(c, fiber.StatusInternalServerError, "failed to issue installation")
		}
		c.Locals(contextInstallationKey, installationID)
		c.Locals(contextIssuedKey, true)
	case claims.IssuedAt == nil || handler.clock().Sub(claims.IssuedAt.Time) > installationTokenRefresh:
		if err := handler.setInstallationCookie(c, claims.InstallationID); err != nil {
			handler.logger.Warn("refresh installation cookie failed", zap.Error(err))
		}
		c.Locals(contextInstallationKey, claims.InstallationID)
	default:
		c.Locals(contextInstallationKey, claims.InstallationID)
	}
	return c.Next()
}

// issuedThisRequest reports whether the installation cookie was minted by the
// current request rather than presented by the client.
func issuedThisRequest(c *fiber.Ctx) bool {
	issued, _ := c.Locals(contextIssuedKey).(bool)
	return issued
}

func (handler *Handler) authenticateInstallation(c *fiber.Ctx) (*installationClaims, error) {
	rawToken := strings.TrimSpace(c.Cookies(installationCookieName))
	if rawToken == "" {
		return nil, errors.New("missing installation cookie")
	}
	return handler.parseInstallationToken(rawToken)
}

func (handler *Handler) parseInstallationToken(rawToken string) (*installationClaims, error) {
	claims := &installationClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return handler.secretKey, nil
	}, jwt.WithTimeFunc(handler.clock))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.ExpiresAt == nil {
		return nil, errors.New("token without expiry")
	}
	if _, err := uuid.Parse(claims.InstallationID); err != nil {
		return nil, errors.New("invalid installation id")
	}
	return claims, nil
}

func (handler *Handler) buildInstallationToken(installationID string, issuedAt time.Time) (string, error) {
	claims := installationClaims{
		InstallationID: installationID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(installationTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(handler.secretKey)
}

func (handler *Handler) setInstallationCookie(c *fiber.Ctx, installationID string) error {
	issuedAt := handler.clock()
	token, err := handler.buildInstallationToken(installationID, issuedAt)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     installationCookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  issuedAt.Add(installationTokenTTL),
	})
	return nil
}
