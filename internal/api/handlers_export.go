package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/waterline/internal/models"
	"github.com/terraincognita07/waterline/internal/services"
)

func (handler *Handler) ExportSummary(c *fiber.Ctx) error {
	records, _, ok, err := handler.exportRecords(c)
	if !ok {
		return err
	}
	return c.JSON(handler.exports.BuildSummary(records))
}

func (handler *Handler) ExportJSON(c *fiber.Ctx) error {
	records, goal, ok, err := handler.exportRecords(c)
	if !ok {
		return err
	}
	now := handler.now()

	document := handler.exports.BuildDocument(records, goal, now)
	serialized, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}

	setExportAttachmentHeaders(c, fiber.MIMEApplicationJSON, buildExportFilename(now, "json"))
	return c.Send(serialized)
}

func (handler *Handler) ExportCSV(c *fiber.Ctx) error {
	records, goal, ok, err := handler.exportRecords(c)
	if !ok {
		return err
	}
	now := handler.now()

	var output bytes.Buffer
	switch strings.ToLower(strings.TrimSpace(c.Query("kind"))) {
	case "", "entries":
		err = handler.exports.WriteCSV(&output, records)
	case "daily":
		err = handler.exports.WriteDailyCSV(&output, records, goal)
	default:
		return apiError(c, fiber.StatusBadRequest, "invalid export kind")
	}
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to build export")
	}

	setExportAttachmentHeaders(c, "text/csv", buildExportFilename(now, "csv"))
	return c.Send(output.Bytes())
}

func (handler *Handler) exportRecords(c *fiber.Ctx) ([]models.IntakeRecord, int, bool, error) {
	manager, ok, err := handler.installationManager(c)
	if !ok {
		return nil, 0, false, err
	}
	from, to, err := services.ParseExportRange(c.Query("from"), c.Query("to"), handler.location)
	if err != nil {
		return nil, 0, false, apiError(c, fiber.StatusBadRequest, err.Error())
	}
	records := handler.exports.FilterRange(manager.History(), from, to)
	return records, manager.Settings().DailyGoal, true, nil
}

func setExportAttachmentHeaders(c *fiber.Ctx, contentType string, filename string) {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
}

func buildExportFilename(now time.Time, extension string) string {
	return fmt.Sprintf("waterline-export-%s.%s", now.Format("2006-01-02"), extension)
}
