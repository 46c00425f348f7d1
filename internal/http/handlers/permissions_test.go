package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pixelmint/backend/internal/domain"
)

func TestMyPermissions(t *testing.T) {
	repos := newFakeRepos()
	app := newTestApp(repos)
	rec := httptest.NewRecorder()

	app.MyPermissions(rec, authedRequest(http.MethodGet, "/v1/me/permissions", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var perms domain.UserPermissions
	if err := json.Unmarshal(rec.Body.Bytes(), &perms); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if perms.PlanCode != domain.PlanFree {
		t.Fatalf("plan = %q, want %q", perms.PlanCode, domain.PlanFree)
	}
	if perms.Credits.AvailableCredits != 20 {
		t.Fatalf("credits = %d, want 20", perms.Credits.AvailableCredits)
	}
	if !perms.Features.Enabled(domain.FeatureImageGenerate) {
		t.Fatal("image_generate should be enabled on free plan")
	}
	if perms.Features.Enabled(domain.FeatureVideoGenerate) {
		t.Fatal("video_generate should be disabled on free plan")
	}
}

func TestMyPermissionsRequiresAuth(t *testing.T) {
	app := newTestApp(newFakeRepos())
	rec := httptest.NewRecorder()
	app.MyPermissions(rec, httptest.NewRequest(http.MethodGet, "/v1/me/permissions", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRefreshPermissionsSeesNewBalance(t *testing.T) {
	repos := newFakeRepos()
	app := newTestApp(repos)

	// Warm the cache.
	rec := httptest.NewRecorder()
	app.MyPermissions(rec, authedRequest(http.MethodGet, "/v1/me/permissions", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("warmup status = %d", rec.Code)
	}

	repos.mu.Lock()
	repos.balance = 99
	repos.mu.Unlock()

	rec = httptest.NewRecorder()
	app.RefreshPermissions(rec, authedRequest(http.MethodPost, "/v1/me/permissions/refresh", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var perms domain.UserPermissions
	if err := json.Unmarshal(rec.Body.Bytes(), &perms); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if perms.Credits.AvailableCredits != 99 {
		t.Fatalf("credits = %d after refresh, want 99", perms.Credits.AvailableCredits)
	}
}

func TestCheckFeatureEndpoint(t *testing.T) {
	app := newTestApp(newFakeRepos())

	rec := httptest.NewRecorder()
	app.CheckFeature(rec, authedRequest(http.MethodGet, "/v1/me/permissions/check?feature=image_generate&quantity=2", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp featureCheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Result.Allowed {
		t.Fatalf("result = %+v, want allowed", resp.Result)
	}
	if resp.Cost != 2 {
		t.Fatalf("cost = %d, want 2", resp.Cost)
	}

	rec = httptest.NewRecorder()
	app.CheckFeature(rec, authedRequest(http.MethodGet, "/v1/me/permissions/check?feature=bogus", ""))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d for unknown feature, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestMyUsage(t *testing.T) {
	repos := newFakeRepos()
	repos.usage = 3
	app := newTestApp(repos)
	rec := httptest.NewRecorder()

	app.MyUsage(rec, authedRequest(http.MethodGet, "/v1/me/usage", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp usageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.UsedToday != 3 {
		t.Fatalf("used = %d, want 3", resp.UsedToday)
	}
	if resp.DailyLimit == nil || *resp.DailyLimit != 5 {
		t.Fatalf("daily limit = %v, want 5", resp.DailyLimit)
	}
}
