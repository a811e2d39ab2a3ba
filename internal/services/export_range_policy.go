package services

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/waterline/internal/hydration"
)

var (
	ErrExportFromDateInvalid = errors.New("export invalid from date")
	ErrExportToDateInvalid   = errors.New("export invalid to date")
	ErrExportRangeInvalid    = errors.New("export invalid range")
)

func ParseExportRange(rawFrom string, rawTo string, location *time.Location) (*time.Time, *time.Time, error) {
	from, err := parseExportDate(rawFrom, location)
	if err != nil {
		return nil, nil, ErrExportFromDateInvalid
	}
	to, err := parseExportDate(rawTo, location)
	if err != nil {
		return nil, nil, ErrExportToDateInvalid
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, ErrExportRangeInvalid
	}
	return from, to, nil
}

func parseExportDate(raw string, location *time.Location) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(exportDateLayout, trimmed, location)
	if err != nil {
		return nil, err
	}
	normalized := hydration.DateAtLocation(parsed, location)
	return &normalized, nil
}
