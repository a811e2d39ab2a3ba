package api

import (
	"github.com/gofiber/fiber/v2"
)

const (
	installationCookieName = "waterline_installation"
	languageCookieName     = "waterline_lang"
	contextInstallationKey = "installation_id"
	contextIssuedKey       = "installation_issued"
	contextLanguageKey     = "current_language"
)

func currentInstallation(c *fiber.Ctx) (string, bool) {
	installationID, ok := c.Locals(contextInstallationKey).(string)
	return installationID, ok && installationID != ""
}

func (handler *Handler) currentLanguage(c *fiber.Ctx) string {
	if language, ok := c.Locals(contextLanguageKey).(string); ok && language != "" {
		return language
	}
	return handler.i18n.DefaultLanguage()
}
