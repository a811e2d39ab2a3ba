package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/terraincognita07/waterline/internal/models"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestUpdateSettingsMergesFields(t *testing.T) {
	env := newTestApp(t, testAppOptions{})
	cookie := env.installation(t)

	response := env.do(t, http.MethodPatch, "/api/settings", `{"dailyGoal":2500,"name":"Rani"}`, cookie)
	assertStatus(t, response, http.StatusOK)
	payload := decodeJSON[settingsResponse](t, response)
	if payload.Settings.DailyGoal != 2500 || payload.Settings.Name != "Rani" {
		t.Fatalf("unexpected settings %+v", payload.Settings)
	}
	if payload.Settings.WakeUpTime != models.DefaultWakeUpTime {
		t.Fatalf("expected untouched wake up time, got %q", payload.Settings.WakeUpTime)
	}
	if payload.Toast == nil || payload.Toast.Title != "Settings Saved" {
		t.Fatalf("expected saved toast, got %+v", payload.Toast)
	}

	dashboard := decodeJSON[dashboardResponse](t, env.do(t, http.MethodGet, "/api/dashboard", "", cookie))
	if dashboard.DailyGoal != 2500 {
		t.Fatalf("expected dashboard to follow new goal, got %d", dashboard.DailyGoal)
	}
}

func TestUpdateSettingsValidation(t *testing.T) {
	env := newTestApp(t, testAppOptions{})
	cookie := env.installation(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "zero goal", body: `{"dailyGoal":0}`},
		{name: "bad wake up", body: `{"wakeUpTime":"25:00"}`},
		{name: "unknown activity", body: `{"activityLevel":"couch"}`},
		{name: "future birth date", body: `{"dateOfBirth":"2030-01-01"}`},
		{name: "empty patch", body: `{}`},
		{name: "malformed", body: `{"dailyGoal":`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			response := env.do(t, http.MethodPatch, "/api/settings", tc.body, cookie)
			assertStatus(t, response, http.StatusBadRequest)
			response.Body.Close()
		})
	}

	current := decodeJSON[settingsResponse](t, env.do(t, http.MethodGet, "/api/settings", "", cookie))
	if diff := cmp.Diff(models.DefaultSettings(), current.Settings); diff != "" {
		t.Fatalf("settings changed after rejected patches (-want +got):\n%s", diff)
	}
}

func photoRequest(t *testing.T, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("photo", "avatar.bin")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	request := httptest.NewRequest(http.MethodPost, "/api/settings/photo", &body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	return request
}

func TestUploadAndDeletePhoto(t *testing.T) {
	env := newTestApp(t, testAppOptions{})
	cookie := env.installation(t)

	request := photoRequest(t, pngHeader)
	request.AddCookie(cookie)
	response := env.send(t, request)
	assertStatus(t, response, http.StatusOK)
	payload := decodeJSON[settingsResponse](t, response)
	if !strings.HasPrefix(payload.Settings.ProfilePhoto, "data:image/png;base64,") {
		t.Fatalf("expected png data uri, got %q", payload.Settings.ProfilePhoto)
	}

	response = env.do(t, http.MethodDelete, "/api/settings/photo", "", cookie)
	assertStatus(t, response, http.StatusOK)
	payload = decodeJSON[settingsResponse](t, response)
	if payload.Settings.ProfilePhoto != "" {
		t.Fatalf("expected cleared photo, got %q", payload.Settings.ProfilePhoto)
	}
}

func TestUploadPhotoRejectsNonImage(t *testing.T) {
	env := newTestApp(t, testAppOptions{})
	cookie := env.installation(t)

	request := photoRequest(t, []byte("just some text, not a picture"))
	request.AddCookie(cookie)
	response := env.send(t, request)
	assertStatus(t, response, http.StatusUnsupportedMediaType)
	response.Body.Close()
}

func TestUploadPhotoRequiresFile(t *testing.T) {
	env := newTestApp(t, testAppOptions{})
	cookie := env.installation(t)

	response := env.do(t, http.MethodPost, "/api/settings/photo", `{}`, cookie)
	assertStatus(t, response, http.StatusBadRequest)
	response.Body.Close()
}

func TestReplaceReminders(t *testing.T) {
	env := newTestApp(t, testAppOptions{})
	cookie := env.installation(t)

	response := env.do(t, http.MethodPut, "/api/reminders", `{"reminders":[{"time":"08:00","message":"drink"}]}`, cookie)
	assertStatus(t, response, http.StatusOK)
	payload := decodeJSON[settingsResponse](t, response)
	expected := []models.Reminder{{Time: "08:00", Message: "drink"}}
	if diff := cmp.Diff(expected, payload.Settings.Reminders); diff != "" {
		t.Fatalf("reminders mismatch (-want +got):\n%s", diff)
	}

	response = env.do(t, http.MethodPut, "/api/reminders", `{"reminders":[{"time":"8am","message":"drink"}]}`, cookie)
	assertStatus(t, response, http.StatusBadRequest)
	response.Body.Close()

	response = env.do(t, http.MethodPut, "/api/reminders", `{"reminders":[]}`, cookie)
	payload = decodeJSON[settingsResponse](t, response)
	if payload.Settings.Reminders == nil || len(payload.Settings.Reminders) != 0 {
		t.Fatalf("expected empty reminder list, got %#v", payload.Settings.Reminders)
	}
}
