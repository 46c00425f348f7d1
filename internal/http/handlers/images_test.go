package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pixelmint/backend/internal/domain"
	"github.com/pixelmint/backend/internal/middleware"
)

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(middleware.ContextWithUserID(req.Context(), "u1"))
}

func TestImagesGenerateRequiresAuth(t *testing.T) {
	app := newTestApp(newFakeRepos())
	req := httptest.NewRequest(http.MethodPost, "/v1/images/generate", strings.NewReader(`{"prompt":"a cat"}`))
	rec := httptest.NewRecorder()

	app.ImagesGenerate(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestImagesGenerateHappyPath(t *testing.T) {
	repos := newFakeRepos()
	app := newTestApp(repos)
	rec := httptest.NewRecorder()

	app.ImagesGenerate(rec, authedRequest(http.MethodPost, "/v1/images/generate", `{"prompt":"a cat","quantity":2,"width":512,"height":512}`))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusAccepted, rec.Body.String())
	}
	var resp taskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.CreditsConsumed != 2 {
		t.Fatalf("credits consumed = %d, want 2", resp.CreditsConsumed)
	}
	if resp.RemainingCredits != 18 {
		t.Fatalf("remaining = %d, want 18", resp.RemainingCredits)
	}
	if resp.Status != string(domain.TaskQueued) {
		t.Fatalf("status = %q, want %q", resp.Status, domain.TaskQueued)
	}
	task, ok := repos.tasks[resp.TaskID]
	if !ok {
		t.Fatal("task record not persisted")
	}
	if task.CreditsSpent != 2 || task.Quantity != 2 {
		t.Fatalf("task record = %+v, want 2 credits and quantity 2", task)
	}
}

func TestImagesGenerateInsufficientCredits(t *testing.T) {
	repos := newFakeRepos()
	repos.balance = 1
	app := newTestApp(repos)
	rec := httptest.NewRecorder()

	app.ImagesGenerate(rec, authedRequest(http.MethodPost, "/v1/images/generate", `{"prompt":"a cat","quantity":4}`))

	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusPaymentRequired)
	}
	if len(repos.tasks) != 0 {
		t.Fatal("task recorded despite failed debit")
	}
}

func TestImagesGenerateFeatureDisabled(t *testing.T) {
	repos := newFakeRepos()
	app := newTestApp(repos)
	rec := httptest.NewRecorder()

	app.ImagesGenerate(rec, authedRequest(http.MethodPost, "/v1/images/generate", `{"feature":"video_generate","prompt":"a cat"}`))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestImagesGenerateDailyLimit(t *testing.T) {
	repos := newFakeRepos()
	repos.usage = 5 // at the free-plan ceiling
	app := newTestApp(repos)
	rec := httptest.NewRecorder()

	app.ImagesGenerate(rec, authedRequest(http.MethodPost, "/v1/images/generate", `{"prompt":"a cat"}`))

	// The consume taxonomy folds the daily ceiling into the credit outcome.
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusPaymentRequired)
	}
	if len(repos.tasks) != 0 {
		t.Fatal("task recorded despite daily limit")
	}
}

func TestImagesGenerateValidation(t *testing.T) {
	app := newTestApp(newFakeRepos())

	tests := []struct {
		name string
		body string
	}{
		{name: "empty prompt", body: `{"prompt":"  "}`},
		{name: "unknown feature", body: `{"feature":"mind_reading","prompt":"x"}`},
		{name: "broken json", body: `{`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			app.ImagesGenerate(rec, authedRequest(http.MethodPost, "/v1/images/generate", tc.body))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}
