package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/waterline/internal/hydration"
	"github.com/terraincognita07/waterline/internal/i18n"
	"github.com/terraincognita07/waterline/internal/metrics"
	"github.com/terraincognita07/waterline/internal/reminders"
	"github.com/terraincognita07/waterline/internal/store"
)

const testSecretKey = "test-secret-key-with-at-least-32-characters"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *testClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *testClock) Advance(duration time.Duration) {
	clock.mu.Lock()
	clock.now = clock.now.Add(duration)
	clock.mu.Unlock()
}

type testApp struct {
	app      *fiber.App
	handler  *Handler
	backend  *store.MemoryBackend
	registry *hydration.Registry
	clock    *testClock
	metrics  *metrics.Metrics
}

type testAppOptions struct {
	generator          reminders.Generator
	remindersPerMinute int
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, reminders.Request) (reminders.Response, error) {
	return reminders.Response{}, errors.New("model unavailable")
}

type gatedGenerator struct {
	started chan struct{}
	release chan struct{}
}

func (generator *gatedGenerator) Generate(ctx context.Context, request reminders.Request) (reminders.Response, error) {
	close(generator.started)
	select {
	case <-generator.release:
	case <-ctx.Done():
		return reminders.Response{}, ctx.Err()
	}
	return reminders.ScheduleGenerator{}.Generate(ctx, request)
}

func newTestApp(t *testing.T, options testAppOptions) *testApp {
	t.Helper()

	clock := &testClock{now: time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)}
	backend := store.NewMemoryBackend()
	appMetrics := metrics.New()
	generator := options.generator
	if generator == nil {
		generator = reminders.ScheduleGenerator{}
	}
	coordinator := reminders.NewCoordinator(generator, reminders.CoordinatorOptions{
		Timeout:  5 * time.Second,
		Clock:    clock.Now,
		Observer: appMetrics,
	})
	registry := hydration.NewRegistry(backend, appMetrics, hydration.Options{
		Clock:    clock.Now,
		Location: time.UTC,
		Observer: appMetrics,
		OnEvict:  coordinator.Forget,
	})
	t.Cleanup(registry.Close)

	i18nManager, err := i18n.NewEmbeddedManager(i18n.LangEN)
	if err != nil {
		t.Fatalf("init i18n: %v", err)
	}

	handler, err := NewHandler(registry, coordinator, i18nManager, Options{
		SecretKey:          testSecretKey,
		Location:           time.UTC,
		RemindersPerMinute: options.remindersPerMinute,
		Clock:              clock.Now,
		Metrics:            appMetrics,
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	app.Use(appMetrics.Middleware())
	app.Use(handler.LanguageMiddleware)
	RegisterRoutes(app, handler)

	return &testApp{
		app:      app,
		handler:  handler,
		backend:  backend,
		registry: registry,
		clock:    clock,
		metrics:  appMetrics,
	}
}

func (env *testApp) do(t *testing.T, method string, path string, body string, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	return env.send(t, request)
}

func (env *testApp) send(t *testing.T, request *http.Request) *http.Response {
	t.Helper()
	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", request.Method, request.URL.Path, err)
	}
	return response
}

// installation issues a fresh installation cookie through the dashboard.
func (env *testApp) installation(t *testing.T) *http.Cookie {
	t.Helper()
	response := env.do(t, http.MethodGet, "/api/dashboard", "")
	defer response.Body.Close()
	cookie := responseCookie(response, installationCookieName)
	if cookie == nil {
		t.Fatal("expected installation cookie on first request")
	}
	return cookie
}

func responseCookie(response *http.Response, name string) *http.Cookie {
	for _, cookie := range response.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func decodeJSON[T any](t *testing.T, response *http.Response) T {
	t.Helper()
	defer response.Body.Close()

	var payload T
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return payload
}

func readBody(t *testing.T, response *http.Response) string {
	t.Helper()
	defer response.Body.Close()
	raw, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return string(raw)
}

func assertStatus(t *testing.T, response *http.Response, expected int) {
	t.Helper()
	if response.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, response.StatusCode)
	}
}
