package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/waterline/internal/models"
	"github.com/terraincognita07/waterline/internal/reminders"
)

// generateInput overrides the stored settings for one generation request.
type generateInput struct {
	DailyGoal     *int    `json:"dailyGoal,omitempty"`
	WakeUpTime    *string `json:"wakeUpTime,omitempty"`
	BedTime       *string `json:"bedTime,omitempty"`
	ActivityLevel *string `json:"activityLevel,omitempty"`
	Climate       *string `json:"climate,omitempty"`
}

func (input generateInput) apply(request reminders.Request) reminders.Request {
	if input.DailyGoal != nil {
		request.DailyGoal = *input.DailyGoal
	}
	if input.WakeUpTime != nil {
		request.WakeUpTime = *input.WakeUpTime
	}
	if input.BedTime != nil {
		request.BedTime = *input.BedTime
	}
	if input.ActivityLevel != nil {
		request.ActivityLevel = *input.ActivityLevel
	}
	if input.Climate != nil {
		request.Climate = *input.Climate
	}
	return request
}

// GenerateReminders refuses callers without an established installation
// cookie, so a client cannot dodge the per-installation limit by dropping it.
func (handler *Handler) GenerateReminders(c *fiber.Ctx) error {
	if issuedThisRequest(c) {
		return apiError(c, fiber.StatusUnauthorized, "installation cookie required")
	}
	manager, ok, err := handler.installationManager(c)
	if !ok {
		return err
	}
	installationID, _ := currentInstallation(c)
	language := handler.currentLanguage(c)

	input := generateInput{}
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &input); err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid generation payload")
		}
	}
	request := input.apply(reminders.RequestFromSettings(manager.Settings()))
	if err := request.Validate(); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	now := handler.clock()
	if !handler.limiter.allow(installationID, now) || !handler.ipLimiter.allow(c.IP(), now) {
		return apiToastError(c, fiber.StatusTooManyRequests, "too many generation requests", toast{
			Title:       handler.i18n.Translate(language, "toast.reminders.failed.title"),
			Description: handler.i18n.Translate(language, "toast.reminders.limited.description"),
		})
	}

	generated, err := handler.coordinator.Run(c.UserContext(), installationID, request, func(ctx context.Context, list []models.Reminder) error {
		_, err := manager.UpdateReminders(ctx, list)
		return err
	})
	switch {
	case errors.Is(err, reminders.ErrGenerationPending):
		return apiToastError(c, fiber.StatusConflict, err.Error(), toast{
			Description: handler.i18n.Translate(language, "toast.reminders.pending.description"),
		})
	case err != nil:
		return apiToastError(c, fiber.StatusBadGateway, "reminder generation failed", toast{
			Title:       handler.i18n.Translate(language, "toast.reminders.failed.title"),
			Description: handler.i18n.Translate(language, "toast.reminders.failed.description"),
		})
	}

	snapshot := manager.Snapshot(handler.now())
	return c.JSON(fiber.Map{
		"reminders": generated,
		"status":    handler.coordinator.Status(installationID),
		"toast": toast{
			Title:       handler.i18n.Translate(language, "toast.reminders.generated.title"),
			Description: handler.i18n.Translatef(language, "toast.reminders.generated.description", len(generated)),
		},
		"storageWarning": handler.storageToast(language, snapshot.StorageWarning),
	})
}

func (handler *Handler) ReminderStatus(c *fiber.Ctx) error {
	installationID, ok := currentInstallation(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "installation required")
	}
	return c.JSON(handler.coordinator.Status(installationID))
}
