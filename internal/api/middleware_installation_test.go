package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/terraincognita07/waterline/internal/hydration"
)

func TestInstallationCookieIssuedOnFirstRequest(t *testing.T) {
	env := newTestApp(t, testAppOptions{})

	cookie := env.installation(t)
	if !cookie.HttpOnly {
		t.Fatal("expected installation cookie to be http only")
	}
	if cookie.Path != "/" {
		t.Fatalf("expected cookie path /, got %q", cookie.Path)
	}
	if env.registry.Len() != 1 {
		t.Fatalf("expected one installation, got %d", env.registry.Len())
	}
}

func TestInstallationCookieIsReused(t *testing.T) {
	env := newTestApp(t, testAppOptions{})
	cookie := env.installation(t)

	response := env.do(t, http.MethodPost, "/api/intake", `{"amount":250}`, cookie)
	assertStatus(t, response, http.StatusCreated)
	if reissued := responseCookie(response, installationCookieName); reissued != nil {
		t.Fatal("did not expect a fresh installation cookie for a valid token")
	}
	response.Body.Close()

	dashboard := decodeJSON[dashboardResponse](t, env.do(t, http.MethodGet, "/api/dashboard", "", cookie))
	if dashboard.TotalToday != 250 {
		t.Fatalf("expected intake to persist across requests, got %d", dashboard.TotalToday)
	}
	if env.registry.Len() != 1 {
		t.Fatalf("expected one installation, got %d", env.registry.Len())
	}
}

func TestTamperedInstallationCookieStartsFreshInstallation(t *testing.T) {
	env := newTestApp(t, testAppOptions{})
	cookie := env.installation(t)

	tampered := &http.Cookie{Name: installationCookieName, Value: cookie.Value + "x"}
	response := env.do(t, http.MethodGet, "/api/dashboard", "", tampered)
	assertStatus(t, response, http.StatusOK)
	reissued := responseCookie(response, installationCookieName)
	response.Body.Close()
	if reissued == nil {
		t.Fatal("expected a new installation cookie for a tampered token")
	}
	if env.registry.Len() != 2 {
		t.Fatalf("expected two installations, got %d", env.registry.Len())
	}
}

func TestInstallationCookieRefreshesAfterRefreshWindow(t *testing.T) {
	env := newTestApp(t, testAppOptions{})
	cookie := env.installation(t)

	env.clock.Advance(installationTokenRefresh + time.Hour)
	response := env.do(t, http.MethodGet, "/api/dashboard", "", cookie)
	assertStatus(t, response, http.StatusOK)
	refreshed := responseCookie(response, installationCookieName)
	response.Body.Close()
	if refreshed == nil {
		t.Fatal("expected refreshed installation cookie")
	}
	if refreshed.Value == cookie.Value {
		t.Fatal("expected refreshed token to differ")
	}

	claims, err := env.handler.parseInstallationToken(refreshed.Value)
	if err != nil {
		t.Fatalf("parse refreshed token: %v", err)
	}
	original, err := env.handler.parseInstallationToken(cookie.Value)
	if err != nil {
		t.Fatalf("parse original token: %v", err)
	}
	if claims.InstallationID != original.InstallationID {
		t.Fatalf("expected installation id to survive refresh, got %q and %q", claims.InstallationID, original.InstallationID)
	}
	if env.registry.Len() != 1 {
		t.Fatalf("expected one installation, got %d", env.registry.Len())
	}
}

func TestExpiredInstallationCookieStartsFreshInstallation(t *testing.T) {
	env := newTestApp(t, testAppOptions{})
	cookie := env.installation(t)

	env.clock.Advance(installationTokenTTL + time.Hour)
	response := env.do(t, http.MethodGet, "/api/dashboard", "", cookie)
	assertStatus(t, response, http.StatusOK)
	reissued := responseCookie(response, installationCookieName)
	response.Body.Close()
	if reissued == nil {
		t.Fatal("expected a new installation cookie for an expired token")
	}
	claims, err := env.handler.parseInstallationToken(reissued.Value)
	if err != nil {
		t.Fatalf("parse reissued token: %v", err)
	}
	if env.registry.Len() != 1 {
		t.Fatalf("expected the stale installation to be evicted, got %d", env.registry.Len())
	}
	if _, err := env.handler.parseInstallationToken(cookie.Value); err == nil {
		t.Fatal("expected original token to be expired")
	}
	if claims.InstallationID == "" {
		t.Fatal("expected reissued token to carry an installation id")
	}
}

func TestIdleCookielessInstallationsAreEvicted(t *testing.T) {
	env := newTestApp(t, testAppOptions{})

	for range 50 {
		response := env.do(t, http.MethodGet, "/api/dashboard", "")
		assertStatus(t, response, http.StatusOK)
		response.Body.Close()
	}
	if env.registry.Len() != 50 {
		t.Fatalf("expected 50 live installations, got %d", env.registry.Len())
	}

	env.clock.Advance(hydration.DefaultIdleTTL + time.Minute)
	if removed := env.registry.PruneIdle(); removed != 50 {
		t.Fatalf("expected 50 evictions, got %d", removed)
	}
	if env.registry.Len() != 0 {
		t.Fatalf("expected no live installations, got %d", env.registry.Len())
	}
}

func TestEvictedInstallationReloadsFromStore(t *testing.T) {
	env := newTestApp(t, testAppOptions{})
	cookie := env.installation(t)

	response := env.do(t, http.MethodPost, "/api/intake", `{"amount":400}`, cookie)
	assertStatus(t, response, http.StatusCreated)
	response.Body.Close()

	env.clock.Advance(hydration.DefaultIdleTTL + time.Minute)
	env.registry.PruneIdle()

	dashboard := decodeJSON[dashboardResponse](t, env.do(t, http.MethodGet, "/api/dashboard", "", cookie))
	if dashboard.TotalToday != 400 {
		t.Fatalf("expected persisted intake after eviction, got %d", dashboard.TotalToday)
	}
}
