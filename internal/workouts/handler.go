package workouts

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

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type workoutsRepo interface {
	AddSession(ctx context.Context, session Session) (*Session, error)
	GetSession(ctx context.Context, id int) (*Session, error)
	ListSessions(ctx context.Context, userID int, from, to time.Time) ([]Session, error)
	DeleteSession(ctx context.Context, id int) error
	AddDetail(ctx context.Context, detail SessionDetail) (*SessionDetail, error)
	ListDetails(ctx context.Context, sessionID int) ([]SessionDetail, error)
	AddLog(ctx context.Context, exerciseLog ExerciseLog) (*ExerciseLog, error)
	ListLogs(ctx context.Context, detailID int) ([]ExerciseLog, error)
	DetailLogCounts(ctx context.Context, sessionID int) ([]DetailLogCount, error)
	MarkCompleted(ctx context.Context, sessionID int) error
}

type DeleteSessionResponse struct {
	DeletedID int `json:"deletedId"`
}

type CompleteSessionResponse struct {
	CompletedID int `json:"completedId"`
}

type Handler struct {
	repo    workoutsRepo
	metrics *metrics.Manager
}

func NewHandler(repo workoutsRepo, metrics *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metrics,
	}
}

func (handler *Handler) HandleAddSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addSession")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var session Session
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		log.Tracef("new session, unmarshal json params: %s", err)
		http.Error(w, "add session failed", http.StatusBadRequest)
		return
	}

	if session.UserID <= 0 {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}
	if session.ScheduledDate.IsZero() {
		http.Error(w, "error, scheduled date empty", http.StatusBadRequest)
		return
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	addedSession, err := handler.repo.AddSession(ctx, session)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			http.Error(w, "error, unknown user", http.StatusBadRequest)
			return
		}
		log.Errorf("failed to add session for user %d: %s", session.UserID, err)
		http.Error(w, "error, failed to add session", http.StatusInternalServerError)
		return
	}

	sessionJson, err := json.Marshal(addedSession)
	if err != nil {
		log.Errorf("failed to marshal session: %s", err)
		http.Error(w, "error, failed to add session", http.StatusInternalServerError)
		return
	}

	log.Debugf("new workout session added: user %d, session %d", addedSession.UserID, addedSession.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, sessionJson, http.StatusCreated)
}

func (handler *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.getSession")
	defer span.End()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	session, err := handler.repo.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get session %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	sessionJson, err := json.Marshal(session)
	if err != nil {
		log.Errorf("failed to marshal session: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, sessionJson, http.StatusOK)
}

func (handler *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.listSessions")
	defer span.End()

	userID, err := strconv.Atoi(r.URL.Query().Get("user_id"))
	if err != nil || userID <= 0 {
		http.Error(w, "error, invalid user_id", http.StatusBadRequest)
		return
	}

	// default range: past month up to a month ahead, sessions get scheduled in advance
	from := time.Now().AddDate(0, -1, 0)
	to := time.Now().AddDate(0, 1, 0)
	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		from, err = time.ParseInLocation(dateLayout, fromStr, time.UTC)
		if err != nil {
			http.Error(w, "error, invalid from date", http.StatusBadRequest)
			return
		}
	}
	if toStr := r.URL.Query().Get("to"); toStr != "" {
		to, err = time.ParseInLocation(dateLayout, toStr, time.UTC)
		if err != nil {
			http.Error(w, "error, invalid to date", http.StatusBadRequest)
			return
		}
	}

	sessions, err := handler.repo.ListSessions(ctx, userID, from, to)
	if err != nil {
		log.Errorf("list sessions for user %d: %s", userID, err)
		http.Error(w, "failed to get sessions", http.StatusInternalServerError)
		return
	}

	sessionsJson, err := json.Marshal(sessions)
	if err != nil {
		log.Errorf("marshal sessions error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, sessionsJson, http.StatusOK)
}

func (handler *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.deleteSession")
	defer span.End()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := handler.repo.DeleteSession(ctx, id); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete session %d: %s", id, err)
		http.Error(w, "session not deleted", http.StatusInternalServerError)
		return
	}

	deleteRespJson, err := json.Marshal(DeleteSessionResponse{DeletedID: id})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}

// HandleCompleteSession marks a session done. Allowed only when the session
// has at least one detail and every detail has at least one log, so completed
// sessions always carry scoreable work.
func (handler *Handler) HandleCompleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.completeSession")
	defer span.End()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	session, err := handler.repo.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get session %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if session.Completed {
		http.Error(w, "session already completed", http.StatusConflict)
		return
	}

	counts, err := handler.repo.DetailLogCounts(ctx, id)
	if err != nil {
		log.Errorf("failed to get detail log counts for session %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if len(counts) == 0 {
		http.Error(w, "session has no exercises", http.StatusBadRequest)
		return
	}
	for _, c := range counts {
		if c.LogCount == 0 {
			log.Debugf("session %d, detail %d has no logs, completion refused", id, c.DetailID)
			http.Error(w, "session has unlogged exercises", http.StatusBadRequest)
			return
		}
	}

	if err := handler.repo.MarkCompleted(ctx, id); err != nil {
		log.Errorf("failed to complete session %d: %s", id, err)
		http.Error(w, "session not completed", http.StatusInternalServerError)
		return
	}
	handler.metrics.CounterSessionsCompleted.Inc()

	completeRespJson, err := json.Marshal(CompleteSessionResponse{CompletedID: id})
	if err != nil {
		log.Errorf("failed to marshal complete response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	log.Debugf("workout session %d completed", id)
	pkg.WriteJSONResponseOK(w, string(completeRespJson))
}

func (handler *Handler) HandleAddDetail(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addDetail")
	defer span.End()

	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var detail SessionDetail
	if err := json.NewDecoder(r.Body).Decode(&detail); err != nil {
		log.Tracef("new session detail, unmarshal json params: %s", err)
		http.Error(w, "add session detail failed", http.StatusBadRequest)
		return
	}
	detail.SessionID = sessionID

	if detail.ExerciseID <= 0 {
		http.Error(w, "error, exercise id empty", http.StatusBadRequest)
		return
	}

	if _, err := handler.repo.GetSession(ctx, sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get session %d: %s", sessionID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	addedDetail, err := handler.repo.AddDetail(ctx, detail)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			http.Error(w, "error, unknown exercise", http.StatusBadRequest)
			return
		}
		log.Errorf("failed to add detail to session %d: %s", sessionID, err)
		http.Error(w, "error, failed to add session detail", http.StatusInternalServerError)
		return
	}

	detailJson, err := json.Marshal(addedDetail)
	if err != nil {
		log.Errorf("failed to marshal session detail: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, detailJson, http.StatusCreated)
}

func (handler *Handler) HandleListDetails(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.listDetails")
	defer span.End()

	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	details, err := handler.repo.ListDetails(ctx, sessionID)
	if err != nil {
		log.Errorf("list details for session %d: %s", sessionID, err)
		http.Error(w, "failed to get session details", http.StatusInternalServerError)
		return
	}

	detailsJson, err := json.Marshal(details)
	if err != nil {
		log.Errorf("marshal session details error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, detailsJson, http.StatusOK)
}

func (handler *Handler) HandleAddLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addLog")
	defer span.End()

	detailID, ok := pathID(w, r, "detailId")
	if !ok {
		return
	}

	var exerciseLog ExerciseLog
	if err := json.NewDecoder(r.Body).Decode(&exerciseLog); err != nil {
		log.Tracef("new exercise log, unmarshal json params: %s", err)
		http.Error(w, "add exercise log failed", http.StatusBadRequest)
		return
	}
	exerciseLog.SessionDetailID = detailID

	if exerciseLog.ActualSets <= 0 || exerciseLog.ActualReps <= 0 {
		http.Error(w, "error, sets and reps must be positive", http.StatusBadRequest)
		return
	}
	if exerciseLog.WeightKg < 0 {
		http.Error(w, "error, weight must not be negative", http.StatusBadRequest)
		return
	}
	if exerciseLog.CreatedAt.IsZero() {
		exerciseLog.CreatedAt = time.Now()
	}

	addedLog, err := handler.repo.AddLog(ctx, exerciseLog)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			http.Error(w, "error, unknown session detail", http.StatusBadRequest)
			return
		}
		log.Errorf("failed to add log to detail %d: %s", detailID, err)
		http.Error(w, "error, failed to add exercise log", http.StatusInternalServerError)
		return
	}

	logJson, err := json.Marshal(addedLog)
	if err != nil {
		log.Errorf("failed to marshal exercise log: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, logJson, http.StatusCreated)
}

func (handler *Handler) HandleListLogs(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.listLogs")
	defer span.End()

	detailID, ok := pathID(w, r, "detailId")
	if !ok {
		return
	}

	logs, err := handler.repo.ListLogs(ctx, detailID)
	if err != nil {
		log.Errorf("list logs for detail %d: %s", detailID, err)
		http.Error(w, "failed to get exercise logs", http.StatusInternalServerError)
		return
	}

	logsJson, err := json.Marshal(logs)
	if err != nil {
		log.Errorf("marshal exercise logs error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, logsJson, http.StatusOK)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	idStr := mux.Vars(r)[name]
	if idStr == "" {
		http.Error(w, "error, "+name+" empty", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, "+name+" NaN", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
