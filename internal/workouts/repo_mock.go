package workouts

import (
	"context"
	"time"
)

type repoMock struct {
	sessions map[int]*Session
	details  map[int]*SessionDetail
	logs     map[int]*ExerciseLog

	nextSessionID int
	nextDetailID  int
	nextLogID     int
}

func NewMockWorkoutsRepo() *repoMock {
	return &repoMock{
		sessions:      make(map[int]*Session),
		details:       make(map[int]*SessionDetail),
		logs:          make(map[int]*ExerciseLog),
		nextSessionID: 1,
		nextDetailID:  1,
		nextLogID:     1,
	}
}

func (r *repoMock) AddSession(_ context.Context, session Session) (*Session, error) {
	session.ID = r.nextSessionID
	r.nextSessionID++
	session.Completed = false
	r.sessions[session.ID] = &session
	return &session, nil
}

func (r *repoMock) GetSession(_ context.Context, id int) (*Session, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (r *repoMock) ListSessions(_ context.Context, userID int, from, to time.Time) ([]Session, error) {
	sessions := make([]Session, 0)
	for _, s := range r.sessions {
		if s.UserID == userID && !s.ScheduledDate.Before(from) && s.ScheduledDate.Before(to) {
			sessions = append(sessions, *s)
		}
	}
	return sessions, nil
}

func (r *repoMock) DeleteSession(_ context.Context, id int) error {
	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	for detailID, d := range r.details {
		if d.SessionID != id {
			continue
		}
		for logID, l := range r.logs {
			if l.SessionDetailID == detailID {
				delete(r.logs, logID)
			}
		}
		delete(r.details, detailID)
	}
	delete(r.sessions, id)
	return nil
}

func (r *repoMock) AddDetail(_ context.Context, detail SessionDetail) (*SessionDetail, error) {
	detail.ID = r.nextDetailID
	r.nextDetailID++
	r.details[detail.ID] = &detail
	return &detail, nil
}

func (r *repoMock) ListDetails(_ context.Context, sessionID int) ([]SessionDetail, error) {
	details := make([]SessionDetail, 0)
	for _, d := range r.details {
		if d.SessionID == sessionID {
			details = append(details, *d)
		}
	}
	return details, nil
}

func (r *repoMock) AddLog(_ context.Context, exerciseLog ExerciseLog) (*ExerciseLog, error) {
	exerciseLog.ID = r.nextLogID
	r.nextLogID++
	r.logs[exerciseLog.ID] = &exerciseLog
	return &exerciseLog, nil
}

func (r *repoMock) ListLogs(_ context.Context, detailID int) ([]ExerciseLog, error) {
	logs := make([]ExerciseLog, 0)
	for _, l := range r.logs {
		if l.SessionDetailID == detailID {
			logs = append(logs, *l)
		}
	}
	return logs, nil
}

func (r *repoMock) DetailLogCounts(_ context.Context, sessionID int) ([]DetailLogCount, error) {
	counts := make([]DetailLogCount, 0)
	for _, d := range r.details {
		if d.SessionID != sessionID {
			continue
		}
		count := DetailLogCount{DetailID: d.ID}
		for _, l := range r.logs {
			if l.SessionDetailID == d.ID {
				count.LogCount++
			}
		}
		counts = append(counts, count)
	}
	return counts, nil
}

func (r *repoMock) MarkCompleted(_ context.Context, sessionID int) error {
	session, ok := r.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	session.Completed = true
	return nil
}
