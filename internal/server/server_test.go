package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-jobalert/internal/app"
	"go-jobalert/internal/dedup"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	summary *app.RunSummary
	err     error
	seen    dedup.SeenSet
}

func (f *fakeRunner) RunOnce(context.Context) (*app.RunSummary, error) { return f.summary, f.err }

func (f *fakeRunner) Seen(context.Context) dedup.SeenSet { return f.seen }

func serve(t *testing.T, runner Runner, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	NewRouter(runner).ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := serve(t, &fakeRunner{}, http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestSeen(t *testing.T) {
	runner := &fakeRunner{seen: dedup.NewSeenSet("https://b.example.com", "https://a.example.com")}

	w := serve(t, runner, http.MethodGet, "/api/seen")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count int      `json:"count"`
		Links []string `json:"links"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, body.Links)
}

func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		runner   *fakeRunner
		wantCode int
		wantBody string
	}{
		{
			name:     "ok",
			runner:   &fakeRunner{summary: &app.RunSummary{Employers: 3, NewLinks: 2}},
			wantCode: http.StatusOK,
			wantBody: `"new_links":2`,
		},
		{
			name:     "already running",
			runner:   &fakeRunner{err: app.ErrRunInProgress},
			wantCode: http.StatusConflict,
			wantBody: "already in progress",
		},
		{
			name:     "roster failure",
			runner:   &fakeRunner{err: errors.New("failed to load employers")},
			wantCode: http.StatusInternalServerError,
			wantBody: "failed to load employers",
		},
		{
			name:     "save failure keeps summary",
			runner:   &fakeRunner{summary: &app.RunSummary{Employers: 1}, err: errors.New("disk full")},
			wantCode: http.StatusInternalServerError,
			wantBody: `"summary"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, tt.runner, http.MethodPost, "/api/run")

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
