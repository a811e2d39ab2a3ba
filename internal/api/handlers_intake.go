package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/waterline/internal/hydration"
	"github.com/terraincognita07/waterline/internal/models"
)

type intakeInput struct {
	Amount int `json:"amount"`
}

type intakeResponse struct {
	Added          bool                 `json:"added"`
	Record         *models.IntakeRecord `json:"record,omitempty"`
	TotalToday     int                  `json:"totalToday"`
	Progress       float64              `json:"progress"`
	Toast          toast                `json:"toast"`
	StorageWarning *toast               `json:"storageWarning,omitempty"`
}

func (handler *Handler) ListIntake(c *fiber.Ctx) error {
	manager, ok, err := handler.installationManager(c)
	if !ok {
		return err
	}

	now := handler.now()
	records := manager.History()
	if c.Query("scope") == "today" {
		records = hydration.TodaysIntake(records, now, handler.location)
	}
	return c.JSON(fiber.Map{"records": records, "count": len(records)})
}

func (handler *Handler) AddIntake(c *fiber.Ctx) error {
	manager, ok, err := handler.installationManager(c)
	if !ok {
		return err
	}

	input := intakeInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid intake payload")
	}

	language := handler.currentLanguage(c)
	record, added, err := manager.AddIntake(c.UserContext(), input.Amount)
	if err != nil {
		return handler.stateError(c, err)
	}

	snapshot := manager.Snapshot(handler.now())
	response := intakeResponse{
		Added:          added,
		TotalToday:     snapshot.TotalToday,
		Progress:       snapshot.Progress,
		StorageWarning: handler.storageToast(language, snapshot.StorageWarning),
	}
	if !added {
		response.Toast = toast{Description: handler.i18n.Translate(language, "toast.intake.ignored.description")}
		return c.JSON(response)
	}

	response.Record = &record
	response.Toast = toast{
		Title:       handler.i18n.Translate(language, "toast.intake.logged.title"),
		Description: handler.i18n.Translatef(language, "toast.intake.logged.description", record.Amount),
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}
