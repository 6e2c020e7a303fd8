package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"signaly.chapter42.de/a/internal/data"
	"signaly.chapter42.de/a/internal/registry"
	"signaly.chapter42.de/a/internal/scheduler"
)

type okRunner struct{}

func (okRunner) Run(ctx context.Context) (string, error) {
	return "https://gist.githubusercontent.com/user/abc123/raw/feed.json", nil
}

func setupRouter(reg *registry.Registry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := scheduler.New(time.Hour, okRunner{}, reg)
	s.Start(context.Background())

	router := gin.New()
	router.POST("/runs", NewTriggerHandler(s))
	router.GET("/runs", NewListRunsHandler(reg))
	router.GET("/runs/latest", NewLatestRunHandler(reg))
	router.GET("/healthz", NewHealthHandler())
	return router
}

func TestTriggerRun(t *testing.T) {
	reg := registry.New()
	router := setupRouter(reg)

	// Manueller Trigger ohne Parameter
	req, _ := http.NewRequest("POST", "/runs", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusAccepted, resp.Code)
	var response map[string]string
	json.Unmarshal(resp.Body.Bytes(), &response)
	assert.NotEmpty(t, response["uid"])
	assert.Equal(t, "Lauf gestartet", response["message"])

	// Der Lauf taucht in der Registry auf, als manueller Trigger
	assert.Eventually(t, func() bool {
		run, ok := reg.Latest()
		return ok && run.Status == data.RunSucceeded
	}, 2*time.Second, 5*time.Millisecond)

	run, _ := reg.Latest()
	assert.Equal(t, response["uid"], run.UID)
	assert.Equal(t, data.TriggerManual, run.Trigger)
	assert.Equal(t, "https://gist.githubusercontent.com/user/abc123/raw/feed.json", run.OutputURL)
}

func TestLatestRunEmpty(t *testing.T) {
	router := setupRouter(registry.New())

	req, _ := http.NewRequest("GET", "/runs/latest", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListRuns(t *testing.T) {
	reg := registry.New()
	router := setupRouter(reg)

	uid := reg.Begin(data.TriggerSchedule)
	reg.Finish(uid, data.RunSucceeded, "https://example.invalid/feed", "")

	req, _ := http.NewRequest("GET", "/runs", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	var response struct {
		Runs []data.Run `json:"runs"`
	}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	assert.Len(t, response.Runs, 1)
	assert.Equal(t, uid, response.Runs[0].UID)
	assert.Equal(t, "https://example.invalid/feed", response.Runs[0].OutputURL)
}

func TestHealthz(t *testing.T) {
	router := setupRouter(registry.New())

	req, _ := http.NewRequest("GET", "/healthz", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
}
