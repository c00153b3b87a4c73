package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/traindiary/backend/internal/telemetry/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type summaryServiceMock struct {
	summary *Summary
	records []SummaryRecord
	scores  []DailyGRScore
	err     error

	computeCalls int
	persistCalls int
	lastRequest  SummaryRequest
}

func (m *summaryServiceMock) ComputeSummary(_ context.Context, req SummaryRequest) (*Summary, error) {
	m.computeCalls++
	m.lastRequest = req
	if m.err != nil {
		return nil, m.err
	}
	return m.summary, nil
}

func (m *summaryServiceMock) ComputeAndPersistSummary(_ context.Context, req SummaryRequest) (*Summary, error) {
	m.persistCalls++
	m.lastRequest = req
	if m.err != nil {
		return nil, m.err
	}
	return m.summary, nil
}

func (m *summaryServiceMock) ListSummaries(_ context.Context, _ int) ([]SummaryRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func (m *summaryServiceMock) DailyGRScores(_ context.Context, _, _, _ int) ([]DailyGRScore, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.scores, nil
}

func TestHandler_GetSummary(t *testing.T) {
	service := &summaryServiceMock{
		summary: &Summary{
			TotalWorkouts: 3,
			TotalGRScore:  21.5,
			DailyData:     []DailySummary{},
		},
	}
	handler := NewHandler(service, metrics.NewTestManager())

	req := httptest.NewRequest(http.MethodGet, "/summary?user_id=1&period_type=weekly&period_start=2024-03-04", nil)
	rr := httptest.NewRecorder()
	handler.HandleGetSummary(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, service.computeCalls)
	assert.Equal(t, SummaryRequest{
		UserID:      1,
		PeriodType:  "weekly",
		PeriodStart: "2024-03-04",
	}, service.lastRequest)

	var summary Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, 3, summary.TotalWorkouts)
	assert.Equal(t, 21.5, summary.TotalGRScore)
}

func TestHandler_GetSummary_MissingUserID(t *testing.T) {
	service := &summaryServiceMock{}
	handler := NewHandler(service, metrics.NewTestManager())

	req := httptest.NewRequest(http.MethodGet, "/summary?period_type=weekly&period_start=2024-03-04", nil)
	rr := httptest.NewRecorder()
	handler.HandleGetSummary(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, service.computeCalls)
}

func TestHandler_GetSummary_ErrorMapping(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "validation error",
			err:            &ValidationError{Field: "period_type", Reason: "unknown"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "user not found",
			err:            ErrUserNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "data access error",
			err:            &DataAccessError{Op: "fetch workouts", Err: errors.New("timeout")},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "persistence error",
			err:            &PersistenceError{Err: errors.New("disk full")},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewHandler(&summaryServiceMock{err: tc.err}, metrics.NewTestManager())

			req := httptest.NewRequest(http.MethodGet, "/summary?user_id=1&period_type=weekly&period_start=2024-03-04", nil)
			rr := httptest.NewRecorder()
			handler.HandleGetSummary(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
		})
	}
}

func TestHandler_GenerateSummary(t *testing.T) {
	service := &summaryServiceMock{
		summary: &Summary{TotalWorkouts: 2, DailyData: []DailySummary{}},
	}
	handler := NewHandler(service, metrics.NewTestManager())

	reqBody, err := json.Marshal(SummaryRequest{
		UserID:      1,
		PeriodType:  "monthly",
		PeriodStart: "2024-03-01",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/summary", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.HandleGenerateSummary(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 1, service.persistCalls)
	assert.Equal(t, "monthly", service.lastRequest.PeriodType)
}

func TestHandler_GenerateSummary_InvalidContentType(t *testing.T) {
	service := &summaryServiceMock{}
	handler := NewHandler(service, metrics.NewTestManager())

	req := httptest.NewRequest(http.MethodPost, "/summary", bytes.NewReader([]byte("{}")))
	rr := httptest.NewRecorder()
	handler.HandleGenerateSummary(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, service.persistCalls)
}

func TestHandler_GenerateSummary_PersistFails(t *testing.T) {
	service := &summaryServiceMock{err: &PersistenceError{Err: errors.New("constraint")}}
	handler := NewHandler(service, metrics.NewTestManager())

	reqBody, err := json.Marshal(SummaryRequest{
		UserID:      1,
		PeriodType:  "weekly",
		PeriodStart: "2024-03-04",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/summary", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.HandleGenerateSummary(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHandler_ListSummaries(t *testing.T) {
	service := &summaryServiceMock{
		records: []SummaryRecord{
			{UserID: 1, PeriodType: PeriodWeekly, TotalWorkouts: 4},
		},
	}
	handler := NewHandler(service, metrics.NewTestManager())

	req := httptest.NewRequest(http.MethodGet, "/summary/list?user_id=1", nil)
	rr := httptest.NewRecorder()
	handler.HandleListSummaries(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var records []SummaryRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, 4, records[0].TotalWorkouts)
}

func TestHandler_DailyGRScores(t *testing.T) {
	service := &summaryServiceMock{
		scores: []DailyGRScore{
			{Date: "2024-03-05", GRScore: 7},
			{Date: "2024-03-07", GRScore: 12},
		},
	}
	handler := NewHandler(service, metrics.NewTestManager())

	req := httptest.NewRequest(http.MethodGet, "/progress/daily?user_id=1&year=2024&month=3", nil)
	rr := httptest.NewRecorder()
	handler.HandleDailyGRScores(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var scores []DailyGRScore
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &scores))
	require.Len(t, scores, 2)
	assert.Equal(t, 7, scores[0].GRScore)
}

func TestHandler_DailyGRScores_BadParams(t *testing.T) {
	handler := NewHandler(&summaryServiceMock{}, metrics.NewTestManager())

	req := httptest.NewRequest(http.MethodGet, "/progress/daily?user_id=1&year=2024&month=abc", nil)
	rr := httptest.NewRecorder()
	handler.HandleDailyGRScores(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
