package services

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/terraincognita07/waterline/internal/hydration"
	"github.com/terraincognita07/waterline/internal/models"
)

const exportDateLayout = "2006-01-02"

var ExportCSVHeaders = []string{
	"ID",
	"Date",
	"Time",
	"Amount (ml)",
	"Timestamp",
}

var ExportDailyCSVHeaders = []string{
	"Date",
	"Entries",
	"Total (ml)",
	"Current goal (ml)",
	"Goal reached",
}

type ExportService struct {
	location *time.Location
}

type ExportSummary struct {
	TotalEntries int    `json:"total_entries"`
	TotalAmount  int    `json:"total_amount_ml"`
	HasData      bool   `json:"has_data"`
	DateFrom     string `json:"date_from,omitempty"`
	DateTo       string `json:"date_to,omitempty"`
}

type ExportJSONEntry struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Amount    int    `json:"amount_ml"`
	Timestamp string `json:"timestamp"`
}

// ExportDailyTotal judges every day against the goal in force at export
// time. Past goals are not stored, so Goal and GoalReached are not history.
type ExportDailyTotal struct {
	Date        string `json:"date"`
	Entries     int    `json:"entries"`
	Total       int    `json:"total_ml"`
	Goal        int    `json:"goal_ml"`
	GoalReached bool   `json:"goal_reached"`
}

// ExportDocument is the full JSON download.
type ExportDocument struct {
	ExportedAt  string             `json:"exported_at"`
	CurrentGoal int                `json:"current_goal_ml"`
	Summary     ExportSummary      `json:"summary"`
	Entries     []ExportJSONEntry  `json:"entries"`
	DailyTotals []ExportDailyTotal `json:"daily_totals"`
}

func NewExportService(location *time.Location) *ExportService {
	if location == nil {
		location = time.Local
	}
	return &ExportService{location: location}
}

// FilterRange keeps records whose local date lies within [from, to]. Nil
// bounds are open.
func (service *ExportService) FilterRange(records []models.IntakeRecord, from *time.Time, to *time.Time) []models.IntakeRecord {
	filtered := make([]models.IntakeRecord, 0, len(records))
	for _, record := range records {
		day := hydration.DateAtLocation(record.Timestamp, service.location)
		if from != nil && day.Before(*from) {
			continue
		}
		if to != nil && day.After(*to) {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}

func (service *ExportService) BuildSummary(records []models.IntakeRecord) ExportSummary {
	if len(records) == 0 {
		return ExportSummary{}
	}

	first := records[0].Timestamp
	last := records[0].Timestamp
	total := 0
	for _, record := range records {
		total += record.Amount
		if record.Timestamp.Before(first) {
			first = record.Timestamp
		}
		if record.Timestamp.After(last) {
			last = record.Timestamp
		}
	}

	return ExportSummary{
		TotalEntries: len(records),
		TotalAmount:  total,
		HasData:      true,
		DateFrom:     hydration.DateAtLocation(first, service.location).Format(exportDateLayout),
		DateTo:       hydration.DateAtLocation(last, service.location).Format(exportDateLayout),
	}
}

// BuildJSONEntries keeps the insertion order of records.
func (service *ExportService) BuildJSONEntries(records []models.IntakeRecord) []ExportJSONEntry {
	entries := make([]ExportJSONEntry, 0, len(records))
	for _, record := range records {
		local := record.Timestamp.In(service.location)
		entries = append(entries, ExportJSONEntry{
			ID:        record.ID,
			Date:      local.Format(exportDateLayout),
			Time:      local.Format("15:04"),
			Amount:    record.Amount,
			Timestamp: record.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	return entries
}

// BuildDailyTotals sums records per local date, oldest first. Each day is
// compared with goal, the current daily goal.
func (service *ExportService) BuildDailyTotals(records []models.IntakeRecord, goal int) []ExportDailyTotal {
	byDate := make(map[string]*ExportDailyTotal)
	for _, record := range records {
		date := hydration.DateAtLocation(record.Timestamp, service.location).Format(exportDateLayout)
		total, ok := byDate[date]
		if !ok {
			total = &ExportDailyTotal{Date: date, Goal: goal}
			byDate[date] = total
		}
		total.Entries++
		total.Total += record.Amount
	}

	totals := make([]ExportDailyTotal, 0, len(byDate))
	for _, total := range byDate {
		total.GoalReached = goal > 0 && total.Total >= goal
		totals = append(totals, *total)
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Date < totals[j].Date
	})
	return totals
}

func (service *ExportService) BuildDocument(records []models.IntakeRecord, goal int, exportedAt time.Time) ExportDocument {
	return ExportDocument{
		ExportedAt:  exportedAt.In(service.location).Format(time.RFC3339),
		CurrentGoal: goal,
		Summary:     service.BuildSummary(records),
		Entries:     service.BuildJSONEntries(records),
		DailyTotals: service.BuildDailyTotals(records, goal),
	}
}

func (entry ExportJSONEntry) Columns() []string {
	return []string{
		entry.ID,
		entry.Date,
		entry.Time,
		strconv.Itoa(entry.Amount),
		entry.Timestamp,
	}
}

func (total ExportDailyTotal) Columns() []string {
	return []string{
		total.Date,
		strconv.Itoa(total.Entries),
		strconv.Itoa(total.Total),
		strconv.Itoa(total.Goal),
		csvYesNo(total.GoalReached),
	}
}

func (service *ExportService) WriteCSV(output io.Writer, records []models.IntakeRecord) error {
	writer := csv.NewWriter(output)
	if err := writer.Write(ExportCSVHeaders); err != nil {
		return err
	}
	for _, entry := range service.BuildJSONEntries(records) {
		if err := writer.Write(entry.Columns()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func (service *ExportService) WriteDailyCSV(output io.Writer, records []models.IntakeRecord, goal int) error {
	writer := csv.NewWriter(output)
	if err := writer.Write(ExportDailyCSVHeaders); err != nil {
		return err
	}
	for _, total := range service.BuildDailyTotals(records, goal) {
		if err := writer.Write(total.Columns()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func csvYesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}
