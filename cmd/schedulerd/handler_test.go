package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/schedulengine/internal/runqueue"
	"github.com/noah-isme/schedulengine/internal/scheduler"
	"github.com/noah-isme/schedulengine/internal/transport"
	"github.com/noah-isme/schedulengine/pkg/config"
)

func testScenario() transport.GenerateRequest {
	return transport.GenerateRequest{
		Teachers: []transport.TeacherInput{
			{Name: "Ada", Availability: transport.AvailabilityInput{Days: [5]uint8{0x7F, 0x7F, 0x7F, 0x7F, 0x7F}}},
		},
		Classes: []transport.ClassInput{
			{
				Name: "5A",
				Lessons: []transport.LessonInput{
					{Kind: "normal", Subjects: []string{"Math"}, Teachers: []string{"Ada"}, PeriodsPerWeek: 4},
				},
			},
		},
		Config: &transport.SchedulerConfigInput{
			MaxESIterations:        200,
			MaxAnnealingIterations: 200,
			Seed:                   7,
		},
	}
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{APIPrefix: "/v1"}
	cfg.RunQueue.Workers = 1
	cfg.RunQueue.SubmitWait = 0

	queue := runqueue.New(cfg.RunQueue.Workers, cfg.RunQueue.SubmitWait, zap.NewNop(), nil)
	h := newHandler(queue, validator.New(), cfg, zap.NewNop(), nil)

	r := gin.New()
	api := r.Group(cfg.APIPrefix)
	api.POST("/timetables", h.generate)
	return r
}

// TestGenerateHandlerRoundTripsAScenario is the gateway round-trip
// property (P9): posting a scenario to the handler returns a
// GenerateResponse whose slots reconstruct the grid the engine produced,
// with zero hard cost and every requested period placed.
func TestGenerateHandlerRoundTripsAScenario(t *testing.T) {
	r := newTestRouter(t)

	scenario := testScenario()
	body, err := json.Marshal(scenario)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/timetables", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp transport.GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 0, resp.HardCost)
	assert.Equal(t, 0, resp.UnscheduledCount)
	assert.Len(t, resp.Slots, 4)
	for _, slot := range resp.Slots {
		assert.Equal(t, "5A", slot.Class)
		assert.Equal(t, []string{"Math"}, slot.Subjects)
		assert.Equal(t, []string{"Ada"}, slot.Teachers)
	}

	classes, err := scenario.ToDomain()
	require.NoError(t, err)
	direct, err := scheduler.New(classes, scenario.Config.ToConfig(), zap.NewNop(), nil).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, transport.FromResult(direct).Slots, resp.Slots)
}

func TestGenerateHandlerRejectsInvalidRequestBody(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/timetables", bytes.NewReader([]byte(`{"teachers": []}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateHandlerRejectsUnknownTeacherReference(t *testing.T) {
	r := newTestRouter(t)

	scenario := testScenario()
	scenario.Classes[0].Lessons[0].Teachers = []string{"Nobody"}

	body, err := json.Marshal(scenario)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/timetables", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
