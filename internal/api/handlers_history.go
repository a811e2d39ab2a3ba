package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/waterline/internal/history"
)

type historyResponse struct {
	history.Series
	EmptyMessage string `json:"emptyMessage,omitempty"`
}

func (handler *Handler) GetHistory(c *fiber.Ctx) error {
	manager, ok, err := handler.installationManager(c)
	if !ok {
		return err
	}

	reference := handler.now()
	if rawDate := strings.TrimSpace(c.Query("date")); rawDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", rawDate, handler.location)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid date")
		}
		reference = parsed.Add(12 * time.Hour)
	}

	rawView := strings.TrimSpace(c.Query("view"))
	if rawView == "" {
		rawView = string(history.GranularityWeek)
	}
	granularity, _ := history.ParseGranularity(rawView)

	series := history.BuildSeries(manager.History(), granularity, reference, handler.location)
	language := handler.currentLanguage(c)
	handler.localizeBuckets(language, granularity, series.Buckets)
	if series.Best != nil {
		for _, bucket := range series.Buckets {
			if bucket.Start.Equal(series.Best.Start) {
				best := bucket
				series.Best = &best
				break
			}
		}
	}

	response := historyResponse{Series: series}
	if !series.HasData {
		response.EmptyMessage = handler.i18n.Translate(language, "history.empty")
	}
	return c.JSON(response)
}

func (handler *Handler) localizeBuckets(language string, granularity history.Granularity, buckets []history.Bucket) {
	switch granularity {
	case history.GranularityWeek:
		for index := range buckets {
			buckets[index].Label = handler.i18n.Weekday(language, buckets[index].Start.In(handler.location).Weekday())
		}
	case history.GranularityMonth:
		for index := range buckets {
			buckets[index].Label = handler.i18n.Translatef(language, "history.label.week", index+1)
		}
	}
}
