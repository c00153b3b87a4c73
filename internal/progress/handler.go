package progress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/traindiary/backend/internal/telemetry/metrics"
	"github.com/traindiary/backend/internal/telemetry/tracing"
	"github.com/traindiary/backend/pkg"

	log "github.com/sirupsen/logrus"
)

type summaryService interface {
	ComputeSummary(ctx context.Context, req SummaryRequest) (*Summary, error)
	ComputeAndPersistSummary(ctx context.Context, req SummaryRequest) (*Summary, error)
	ListSummaries(ctx context.Context, userID int) ([]SummaryRecord, error)
	DailyGRScores(ctx context.Context, userID, year, month int) ([]DailyGRScore, error)
}

type Handler struct {
	service summaryService
	metrics *metrics.Manager
}

func NewHandler(service summaryService, metrics *metrics.Manager) *Handler {
	return &Handler{
		service: service,
		metrics: metrics,
	}
}

// HandleGetSummary computes the summary for the requested period and returns
// it without persisting anything.
func (handler *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.summary")
	defer span.End()

	req, ok := summaryRequestFromQuery(w, r)
	if !ok {
		return
	}

	computeStart := time.Now()
	summary, err := handler.service.ComputeSummary(ctx, req)
	if err != nil {
		handler.writeSummaryError(w, err)
		return
	}
	handler.metrics.HistSummaryComputeDuration.Observe(time.Since(computeStart).Seconds())
	handler.metrics.CounterSummariesComputed.Inc()

	summaryJson, err := json.Marshal(summary)
	if err != nil {
		log.Errorf("failed to marshal summary: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, summaryJson, http.StatusOK)
}

// HandleGenerateSummary computes the summary and upserts the period totals.
// A failed upsert fails the request, nothing is returned in that case.
func (handler *Handler) HandleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.generate")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("generate summary, unmarshal json params: %s", err)
		http.Error(w, "generate summary failed", http.StatusBadRequest)
		return
	}

	computeStart := time.Now()
	summary, err := handler.service.ComputeAndPersistSummary(ctx, req)
	if err != nil {
		handler.writeSummaryError(w, err)
		return
	}
	handler.metrics.HistSummaryComputeDuration.Observe(time.Since(computeStart).Seconds())
	handler.metrics.CounterSummariesComputed.Inc()
	handler.metrics.CounterSummariesPersisted.Inc()

	summaryJson, err := json.Marshal(summary)
	if err != nil {
		log.Errorf("failed to marshal summary: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf(
		"summary generated for user %d, %s from %s",
		req.UserID, req.PeriodType, req.PeriodStart,
	)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, summaryJson, http.StatusCreated)
}

// HandleListSummaries returns the persisted summary rows for the user,
// newest period first.
func (handler *Handler) HandleListSummaries(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.list")
	defer span.End()

	userID, ok := intQueryParam(w, r, "user_id")
	if !ok {
		return
	}

	records, err := handler.service.ListSummaries(ctx, userID)
	if err != nil {
		handler.writeSummaryError(w, err)
		return
	}

	recordsJson, err := json.Marshal(records)
	if err != nil {
		log.Errorf("failed to marshal summaries: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, recordsJson, http.StatusOK)
}

// HandleDailyGRScores returns whole-number scores per scored day of one
// calendar month.
func (handler *Handler) HandleDailyGRScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.daily")
	defer span.End()

	userID, ok := intQueryParam(w, r, "user_id")
	if !ok {
		return
	}
	year, ok := intQueryParam(w, r, "year")
	if !ok {
		return
	}
	month, ok := intQueryParam(w, r, "month")
	if !ok {
		return
	}

	scores, err := handler.service.DailyGRScores(ctx, userID, year, month)
	if err != nil {
		handler.writeSummaryError(w, err)
		return
	}

	scoresJson, err := json.Marshal(scores)
	if err != nil {
		log.Errorf("failed to marshal daily scores: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, scoresJson, http.StatusOK)
}

func (handler *Handler) writeSummaryError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		log.Tracef("summary request rejected: %s", err)
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrUserNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	default:
		log.Errorf("summary request failed: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func summaryRequestFromQuery(w http.ResponseWriter, r *http.Request) (SummaryRequest, bool) {
	userID, ok := intQueryParam(w, r, "user_id")
	if !ok {
		return SummaryRequest{}, false
	}
	return SummaryRequest{
		UserID:      userID,
		PeriodType:  r.URL.Query().Get("period_type"),
		PeriodStart: r.URL.Query().Get("period_start"),
	}, true
}

func intQueryParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	valStr := r.URL.Query().Get(name)
	if valStr == "" {
		http.Error(w, "error, "+name+" empty", http.StatusBadRequest)
		return 0, false
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		http.Error(w, "error, "+name+" NaN", http.StatusBadRequest)
		return 0, false
	}
	return val, true
}
