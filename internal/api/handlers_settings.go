package api

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/waterline/internal/hydration"
	"github.com/terraincognita07/waterline/internal/models"
	"github.com/terraincognita07/waterline/internal/photo"
)

type settingsResponse struct {
	Settings       models.UserSettings `json:"settings"`
	Toast          *toast              `json:"toast,omitempty"`
	StorageWarning *toast              `json:"storageWarning,omitempty"`
}

type remindersInput struct {
	Reminders []models.Reminder `json:"reminders"`
}

func (handler *Handler) GetSettings(c *fiber.Ctx) error {
	manager, ok, err := handler.installationManager(c)
	if !ok {
		return err
	}
	return c.JSON(settingsResponse{Settings: manager.Settings()})
}

func (handler *Handler) UpdateSettings(c *fiber.Ctx) error {
	manager, ok, err := handler.installationManager(c)
	if !ok {
		return err
	}

	patch := hydration.SettingsPatch{}
	if err := json.Unmarshal(c.Body(), &patch); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid settings payload")
	}
	if patch.Empty() {
		return apiError(c, fiber.StatusBadRequest, "no settings to update")
	}
	if err := hydration.ValidateSettingsPatch(patch, handler.now()); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	return handler.applySettingsPatch(c, manager, patch)
}

func (handler *Handler) UploadPhoto(c *fiber.Ctx) error {
	manager, ok, err := handler.installationManager(c)
	if !ok {
		return err
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "photo file is required")
	}
	if fileHeader.Size > int64(handler.maxPhotoBytes) {
		return apiError(c, fiber.StatusRequestEntityTooLarge, photo.ErrTooLarge.Error())
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "failed to read photo")
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, int64(handler.maxPhotoBytes)+1))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "failed to read photo")
	}
	encoded, err := photo.EncodeDataURI(raw, handler.maxPhotoBytes)
	switch {
	case errors.Is(err, photo.ErrNotImage):
		return apiError(c, fiber.StatusUnsupportedMediaType, photo.ErrNotImage.Error())
	case errors.Is(err, photo.ErrTooLarge):
		return apiError(c, fiber.StatusRequestEntityTooLarge, photo.ErrTooLarge.Error())
	case err != nil:
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	return handler.applySettingsPatch(c, manager, hydration.SettingsPatch{ProfilePhoto: &encoded})
}

func (handler *Handler) DeletePhoto(c *fiber.Ctx) error {
	manager, ok, err := handler.installationManager(c)
	if !ok {
		return err
	}
	cleared := ""
	return handler.applySettingsPatch(c, manager, hydration.SettingsPatch{ProfilePhoto: &cleared})
}

func (handler *Handler) ReplaceReminders(c *fiber.Ctx) error {
	manager, ok, err := handler.installationManager(c)
	if !ok {
		return err
	}

	input := remindersInput{}
	if err := json.Unmarshal(c.Body(), &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid reminders payload")
	}
	if input.Reminders == nil {
		input.Reminders = []models.Reminder{}
	}
	if err := hydration.ValidateReminders(input.Reminders); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	return handler.applySettingsPatch(c, manager, hydration.SettingsPatch{Reminders: &input.Reminders})
}

func (handler *Handler) applySettingsPatch(c *fiber.Ctx, manager *hydration.Manager, patch hydration.SettingsPatch) error {
	settings, err := manager.UpdateSettings(c.UserContext(), patch)
	if err != nil {
		return handler.stateError(c, err)
	}

	language := handler.currentLanguage(c)
	snapshot := manager.Snapshot(handler.now())
	return c.JSON(settingsResponse{
		Settings: settings,
		Toast: &toast{
			Title:       handler.i18n.Translate(language, "toast.settings.saved.title"),
			Description: handler.i18n.Translate(language, "toast.settings.saved.description"),
		},
		StorageWarning: handler.storageToast(language, snapshot.StorageWarning),
	})
}
