package history

import (
	"time"

	"github.com/terraincognita07/waterline/internal/models"
)

// Series is the chart payload of the history view.
type Series struct {
	Granularity Granularity `json:"granularity"`
	Reference   string      `json:"reference"`
	Buckets     []Bucket    `json:"buckets"`
	Total       int         `json:"total"`
	Best        *Bucket     `json:"best,omitempty"`
	HasData     bool        `json:"hasData"`
}

func BuildSeries(records []models.IntakeRecord, granularity Granularity, now time.Time, location *time.Location) Series {
	if location == nil {
		location = time.Local
	}
	buckets := Aggregate(records, granularity, now, location)
	series := Series{
		Granularity: granularity,
		Reference:   now.In(location).Format("2006-01-02"),
		Buckets:     buckets,
		HasData:     len(records) > 0,
	}

	for index := range buckets {
		series.Total += buckets[index].Intake
		if buckets[index].Intake > 0 && (series.Best == nil || buckets[index].Intake > series.Best.Intake) {
			best := buckets[index]
			series.Best = &best
		}
	}
	return series
}
