// Package history buckets intake records into chart series.
package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/waterline/internal/models"
)

type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

const (
	hoursPerDay = 24
	daysPerWeek = 7
)

// Bucket is one labelled half-open window [Start, End).
type Bucket struct {
	Label  string    `json:"label"`
	Intake int       `json:"intake"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// ParseGranularity maps a view name to a granularity. Unknown names are
// returned as-is and aggregate to an empty series.
func ParseGranularity(raw string) (Granularity, bool) {
	granularity := Granularity(strings.ToLower(strings.TrimSpace(raw)))
	switch granularity {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return granularity, true
	default:
		return granularity, false
	}
}

// Aggregate sums record amounts into the buckets of granularity around now.
// Records outside every bucket are ignored. The input is not modified.
func Aggregate(records []models.IntakeRecord, granularity Granularity, now time.Time, location *time.Location) []Bucket {
	if location == nil {
		location = time.Local
	}

	var buckets []Bucket
	switch granularity {
	case GranularityDay:
		buckets = dayBuckets(now, location)
	case GranularityWeek:
		buckets = weekBuckets(now, location)
	case GranularityMonth:
		buckets = monthBuckets(now, location)
	default:
		return []Bucket{}
	}

	for _, record := range records {
		for index := range buckets {
			if !record.Timestamp.Before(buckets[index].Start) && record.Timestamp.Before(buckets[index].End) {
				buckets[index].Intake += record.Amount
				break
			}
		}
	}
	return buckets
}

func dayBuckets(now time.Time, location *time.Location) []Bucket {
	start := startOfDay(now, location)
	buckets := make([]Bucket, 0, hoursPerDay)
	for hour := 0; hour < hoursPerDay; hour++ {
		// Wall-clock hours keep DST days at 24 buckets.
		bucketStart := time.Date(start.Year(), start.Month(), start.Day(), hour, 0, 0, 0, location)
		buckets = append(buckets, Bucket{
			Label: HourLabel(hour),
			Start: bucketStart,
			End:   time.Date(start.Year(), start.Month(), start.Day(), hour+1, 0, 0, 0, location),
		})
	}
	return buckets
}

func weekBuckets(now time.Time, location *time.Location) []Bucket {
	monday := StartOfWeek(now, location)
	buckets := make([]Bucket, 0, daysPerWeek)
	for offset := 0; offset < daysPerWeek; offset++ {
		day := monday.AddDate(0, 0, offset)
		buckets = append(buckets, Bucket{
			Label: day.Format("Mon"),
			Start: day,
			End:   day.AddDate(0, 0, 1),
		})
	}
	return buckets
}

// monthBuckets returns one bucket per Monday-start week intersecting the
// month of now. The first and last windows may reach into adjacent months.
func monthBuckets(now time.Time, location *time.Location) []Bucket {
	local := now.In(location)
	firstOfMonth := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, location)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)

	buckets := make([]Bucket, 0, 6)
	for weekStart := StartOfWeek(firstOfMonth, location); !weekStart.After(lastOfMonth); weekStart = weekStart.AddDate(0, 0, daysPerWeek) {
		buckets = append(buckets, Bucket{
			Label: fmt.Sprintf("Week %d", len(buckets)+1),
			Start: weekStart,
			End:   weekStart.AddDate(0, 0, daysPerWeek),
		})
	}
	return buckets
}

// StartOfWeek returns local midnight of the Monday on or before value.
func StartOfWeek(value time.Time, location *time.Location) time.Time {
	day := startOfDay(value, location)
	offset := (int(day.Weekday()) + 6) % daysPerWeek
	return day.AddDate(0, 0, -offset)
}

// HourLabel renders hour 0..23 in 12-hour form, e.g. "12AM" or "3PM".
func HourLabel(hour int) string {
	return time.Date(2000, time.January, 1, hour, 0, 0, 0, time.UTC).Format("3PM")
}

func startOfDay(value time.Time, location *time.Location) time.Time {
	local := value.In(location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, location)
}
