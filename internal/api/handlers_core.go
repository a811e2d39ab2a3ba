package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/waterline/internal/hydration"
	"go.uber.org/zap"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "installations": handler.registry.Len()})
}

// installationManager resolves the loaded state of the request installation.
// On failure the error response has already been written.
func (handler *Handler) installationManager(c *fiber.Ctx) (*hydration.Manager, bool, error) {
	installationID, ok := currentInstallation(c)
	if !ok {
		return nil, false, apiError(c, fiber.StatusUnauthorized, "installation required")
	}
	manager, err := handler.registry.Manager(c.UserContext(), installationID)
	if err != nil {
		return nil, false, handler.stateError(c, err)
	}
	return manager, true, nil
}

func (handler *Handler) stateError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, hydration.ErrIntakeTooLarge):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, hydration.ErrNotReady):
		return apiError(c, fiber.StatusServiceUnavailable, "state is still loading")
	case errors.Is(err, hydration.ErrClosed), errors.Is(err, hydration.ErrRegistryClosed):
		return apiError(c, fiber.StatusServiceUnavailable, "service is shutting down")
	default:
		handler.logger.Error("resolve hydration state failed", zap.Error(err))
		return apiError(c, fiber.StatusInternalServerError, "failed to load state")
	}
}

func (handler *Handler) storageToast(language string, warning string) *toast {
	if warning == "" {
		return nil
	}
	return &toast{Description: handler.i18n.Translate(language, "toast.storage.warning"), Variant: "warning"}
}
