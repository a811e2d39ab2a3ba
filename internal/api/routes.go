package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)
	app.Get("/lang/:lang", handler.SetLanguage)
	if handler.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(handler.metrics.Handler()))
	}

	api := app.Group("/api", handler.InstallationRequired)
	api.Get("/dashboard", handler.GetDashboard)

	intake := api.Group("/intake")
	intake.Get("", handler.ListIntake)
	intake.Post("", handler.AddIntake)

	api.Get("/history", handler.GetHistory)

	settings := api.Group("/settings")
	settings.Get("", handler.GetSettings)
	settings.Patch("", handler.UpdateSettings)
	settings.Post("/photo", handler.UploadPhoto)
	settings.Delete("/photo", handler.DeletePhoto)

	reminders := api.Group("/reminders")
	reminders.Put("", handler.ReplaceReminders)
	reminders.Post("/generate", handler.GenerateReminders)
	reminders.Get("/status", handler.ReminderStatus)

	export := api.Group("/export")
	export.Get("/summary", handler.ExportSummary)
	export.Get("/csv", handler.ExportCSV)
	export.Get("/json", handler.ExportJSON)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
