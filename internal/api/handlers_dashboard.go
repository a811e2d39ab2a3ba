package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/waterline/internal/hydration"
	"github.com/terraincognita07/waterline/internal/models"
)

type dashboardResponse struct {
	Phase            hydration.Phase       `json:"phase"`
	Date             string                `json:"date"`
	Title            string                `json:"title"`
	TotalToday       int                   `json:"totalToday"`
	DailyGoal        int                   `json:"dailyGoal"`
	Progress         float64               `json:"progress"`
	Remaining        int                   `json:"remaining"`
	GlassesRemaining int                   `json:"glassesRemaining"`
	Encouragement    string                `json:"encouragement"`
	TodaysIntake     []models.IntakeRecord `json:"todaysIntake"`
	PresetAmounts    []int                 `json:"presetAmounts"`
	StorageWarning   *toast                `json:"storageWarning,omitempty"`
}

func (handler *Handler) GetDashboard(c *fiber.Ctx) error {
	manager, ok, err := handler.installationManager(c)
	if !ok {
		return err
	}
	now := handler.now()
	snapshot := manager.Snapshot(now)
	return c.JSON(handler.buildDashboard(handler.currentLanguage(c), snapshot, now.Format("2006-01-02")))
}

func (handler *Handler) buildDashboard(language string, snapshot hydration.Snapshot, date string) dashboardResponse {
	goal := snapshot.Settings.DailyGoal
	remaining := hydration.Remaining(snapshot.TotalToday, goal)
	glasses := hydration.GlassesRemaining(remaining)

	encouragement := handler.i18n.Translate(language, "dashboard.encouragement.done")
	if remaining > 0 {
		encouragement = handler.i18n.Translatef(language, "dashboard.encouragement.remaining",
			handler.i18n.FormatMilliliters(language, remaining), glasses)
	}

	return dashboardResponse{
		Phase:            snapshot.Phase,
		Date:             date,
		Title:            handler.i18n.Translate(language, "dashboard.title"),
		TotalToday:       snapshot.TotalToday,
		DailyGoal:        goal,
		Progress:         snapshot.Progress,
		Remaining:        remaining,
		GlassesRemaining: glasses,
		Encouragement:    encouragement,
		TodaysIntake:     snapshot.TodaysIntake,
		PresetAmounts:    append([]int(nil), presetAmounts...),
		StorageWarning:   handler.storageToast(language, snapshot.StorageWarning),
	}
}
