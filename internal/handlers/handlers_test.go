package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"time"

	"github.com/JonnyWalker81/cadence/backend/internal/models"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockSessionService is a mock implementation of SessionService for testing
type mockSessionService struct {
	createReq  *models.CreateEventRequest
	updateReq  *models.UpdateEventRequest
	rangeStart time.Time
	rangeEnd   time.Time
	sessions   []models.Event
	err        error
}

func (m *mockSessionService) CreateSession(ctx context.Context, userID string, req *models.CreateEventRequest) (*models.Event, error) {
	m.createReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Event{ID: "s-new", UserID: userID, Timestamp: req.Timestamp, EndDate: req.EndDate, Notes: req.Notes}, nil
}

func (m *mockSessionService) GetSessions(ctx context.Context, userID string, startDate, endDate time.Time) ([]models.Event, error) {
	m.rangeStart, m.rangeEnd = startDate, endDate
	if m.err != nil {
		return nil, m.err
	}
	return m.sessions, nil
}

func (m *mockSessionService) UpdateSession(ctx context.Context, userID, sessionID string, req *models.UpdateEventRequest) (*models.Event, error) {
	m.updateReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Event{ID: sessionID, UserID: userID, EndDate: req.EndDate.ToPtr()}, nil
}

// mockPredictionService is a mock implementation of PredictionService for testing
type mockPredictionService struct {
	lastNow     time.Time
	prediction  *models.PredictionResponse
	insights    *models.InsightsResponse
	summary     *models.ModelSummary
	err         error
	invalidated []string
}

func (m *mockPredictionService) PredictNext(ctx context.Context, userID string, now time.Time) (*models.PredictionResponse, error) {
	m.lastNow = now
	return m.prediction, m.err
}

func (m *mockPredictionService) GetInsights(ctx context.Context, userID string) (*models.InsightsResponse, error) {
	return m.insights, m.err
}

func (m *mockPredictionService) GetModelSummary(ctx context.Context, userID string) (*models.ModelSummary, error) {
	return m.summary, m.err
}

func (m *mockPredictionService) InvalidateModel(ctx context.Context, userID string) {
	m.invalidated = append(m.invalidated, userID)
}

// newTestContext builds an authenticated gin context for a request
func newTestContext(method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", "user-1")
	c.Set("request_id", "req-test")
	return c, w
}

func decodeBody(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

func fieldErrors(body map[string]interface{}) map[string]string {
	out := make(map[string]string)
	list, _ := body["errors"].([]interface{})
	for _, item := range list {
		fe := item.(map[string]interface{})
		out[fe["field"].(string)] = fe["code"].(string)
	}
	return out
}
