package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDashboardDefaultsForNewInstallation(t *testing.T) {
	env := newTestApp(t, testAppOptions{})

	dashboard := decodeJSON[dashboardResponse](t, env.do(t, http.MethodGet, "/api/dashboard", ""))
	if dashboard.Phase != "ready" {
		t.Fatalf("expected ready phase, got %q", dashboard.Phase)
	}
	if dashboard.DailyGoal != 2000 || dashboard.TotalToday != 0 || dashboard.Progress != 0 {
		t.Fatalf("unexpected defaults: %+v", dashboard)
	}
	if dashboard.Date != "2026-10-14" {
		t.Fatalf("expected local date, got %q", dashboard.Date)
	}
	if len(dashboard.PresetAmounts) != 3 || dashboard.PresetAmounts[0] != 250 {
		t.Fatalf("unexpected presets: %v", dashboard.PresetAmounts)
	}
	if dashboard.TodaysIntake == nil {
		t.Fatal("expected empty todays intake list, got null")
	}
}

func TestDashboardExampleScenario(t *testing.T) {
	env := newTestApp(t, testAppOptions{})
	cookie := env.installation(t)

	for _, body := range []string{`{"amount":250}`, `{"amount":500}`} {
		response := env.do(t, http.MethodPost, "/api/intake", body, cookie)
		assertStatus(t, response, http.StatusCreated)
		response.Body.Close()
	}

	dashboard := decodeJSON[dashboardResponse](t, env.do(t, http.MethodGet, "/api/dashboard", "", cookie))
	if dashboard.TotalToday != 750 {
		t.Fatalf("expected total 750, got %d", dashboard.TotalToday)
	}
	if dashboard.Progress != 37.5 {
		t.Fatalf("expected progress 37.5, got %v", dashboard.Progress)
	}
	if dashboard.Remaining != 1250 || dashboard.GlassesRemaining != 5 {
		t.Fatalf("expected 1250 ml and 5 glasses remaining, got %d and %d", dashboard.Remaining, dashboard.GlassesRemaining)
	}
	if dashboard.Encouragement != "Only 1,250 ml to go. About 5 more small glasses!" {
		t.Fatalf("unexpected encouragement %q", dashboard.Encouragement)
	}
	if len(dashboard.TodaysIntake) != 2 {
		t.Fatalf("expected two records today, got %d", len(dashboard.TodaysIntake))
	}
}

func TestDashboardGoalReachedAndIndonesian(t *testing.T) {
	env := newTestApp(t, testAppOptions{})
	cookie := env.installation(t)

	response := env.do(t, http.MethodPost, "/api/intake", `{"amount":2500}`, cookie)
	response.Body.Close()

	request := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	request.Header.Set("Accept-Language", "id-ID,id;q=0.9")
	request.AddCookie(cookie)
	dashboard := decodeJSON[dashboardResponse](t, env.send(t, request))

	if dashboard.Progress != 100 || dashboard.Remaining != 0 {
		t.Fatalf("expected clamped progress, got %+v", dashboard)
	}
	if dashboard.Title != "Target Hari Ini" {
		t.Fatalf("expected indonesian title, got %q", dashboard.Title)
	}
	if dashboard.Encouragement != "Target tercapai! Kerja bagus untuk tetap terhidrasi." {
		t.Fatalf("unexpected encouragement %q", dashboard.Encouragement)
	}
}

func TestDashboardExcludesYesterday(t *testing.T) {
	env := newTestApp(t, testAppOptions{})
	cookie := env.installation(t)

	response := env.do(t, http.MethodPost, "/api/intake", `{"amount":500}`, cookie)
	response.Body.Close()
	env.clock.Advance(24 * time.Hour)

	dashboard := decodeJSON[dashboardResponse](t, env.do(t, http.MethodGet, "/api/dashboard", "", cookie))
	if dashboard.TotalToday != 0 {
		t.Fatalf("expected yesterday to be excluded, got %d", dashboard.TotalToday)
	}
	if dashboard.Date != "2026-10-15" {
		t.Fatalf("expected next day, got %q", dashboard.Date)
	}
}

func TestDashboardReportsStorageWarning(t *testing.T) {
	env := newTestApp(t, testAppOptions{})
	cookie := env.installation(t)
	env.backend.FailWrites(errors.New("disk full"))

	response := env.do(t, http.MethodPost, "/api/intake", `{"amount":300}`, cookie)
	assertStatus(t, response, http.StatusCreated)
	intake := decodeJSON[intakeResponse](t, response)
	if intake.StorageWarning == nil {
		t.Fatal("expected storage warning on failed write")
	}

	dashboard := decodeJSON[dashboardResponse](t, env.do(t, http.MethodGet, "/api/dashboard", "", cookie))
	if dashboard.TotalToday != 300 {
		t.Fatalf("expected in-memory state to keep the record, got %d", dashboard.TotalToday)
	}
	if dashboard.StorageWarning == nil {
		t.Fatal("expected dashboard storage warning")
	}

	env.backend.FailWrites(nil)
	response = env.do(t, http.MethodPost, "/api/intake", `{"amount":100}`, cookie)
	intake = decodeJSON[intakeResponse](t, response)
	if intake.StorageWarning != nil {
		t.Fatal("expected warning to clear after a successful write")
	}
}
