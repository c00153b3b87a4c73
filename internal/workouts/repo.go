package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/traindiary/backend/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) AddSession(ctx context.Context, session Session) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx, `
		INSERT INTO workout_session (user_id, session_type, scheduled_date, completed, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
		RETURNING id;`,
		session.UserID, session.SessionType, session.ScheduledDate, session.CreatedAt,
	).Scan(&session.ID)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	session.Completed = false

	return &session, nil
}

func (r *Repo) GetSession(ctx context.Context, id int) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.getSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var session Session
	err = r.db.QueryRow(ctx, `
		SELECT id, user_id, COALESCE(session_type, ''), scheduled_date, completed, created_at
		FROM workout_session
		WHERE id = $1;`, id,
	).Scan(
		&session.ID, &session.UserID, &session.SessionType,
		&session.ScheduledDate, &session.Completed, &session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return &session, nil
}

// ListSessions returns the user's sessions scheduled in [from, to).
func (r *Repo) ListSessions(ctx context.Context, userID int, from, to time.Time) (_ []Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listSessions")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, COALESCE(session_type, ''), scheduled_date, completed, created_at
		FROM workout_session
		WHERE user_id = $1 AND scheduled_date >= $2 AND scheduled_date < $3
		ORDER BY scheduled_date;`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]Session, 0)
	for rows.Next() {
		var s Session
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.SessionType, &s.ScheduledDate, &s.Completed, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// DeleteSession removes the session with its details and logs, in one
// transaction.
func (r *Repo) DeleteSession(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.deleteSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("%w [rollback: %s]", err, rollbackErr)
			}
		}
	}()

	if _, err = tx.Exec(ctx, `
		DELETE FROM exercise_log
		WHERE session_detail_id IN (SELECT id FROM session_detail WHERE session_id = $1);`, id,
	); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM session_detail WHERE session_id = $1;`, id); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM workout_session WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return tx.Commit(ctx)
}

func (r *Repo) AddDetail(ctx context.Context, detail SessionDetail) (_ *SessionDetail, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addDetail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx, `
		INSERT INTO session_detail (session_id, exercise_id, target_sets, target_reps)
		VALUES ($1, $2, $3, $4)
		RETURNING id;`,
		detail.SessionID, detail.ExerciseID, detail.TargetSets, detail.TargetReps,
	).Scan(&detail.ID)
	if err != nil {
		return nil, fmt.Errorf("insert session detail: %w", err)
	}

	return &detail, nil
}

func (r *Repo) ListDetails(ctx context.Context, sessionID int) (_ []SessionDetail, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listDetails")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, exercise_id, COALESCE(target_sets, 0), COALESCE(target_reps, 0)
		FROM session_detail
		WHERE session_id = $1
		ORDER BY id;`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]SessionDetail, 0)
	for rows.Next() {
		var d SessionDetail
		if err := rows.Scan(&d.ID, &d.SessionID, &d.ExerciseID, &d.TargetSets, &d.TargetReps); err != nil {
			return nil, fmt.Errorf("scan detail row: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return details, nil
}

func (r *Repo) AddLog(ctx context.Context, exerciseLog ExerciseLog) (_ *ExerciseLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addLog")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx, `
		INSERT INTO exercise_log
			(session_detail_id, actual_sets, actual_reps, weight_kg, duration_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;`,
		exerciseLog.SessionDetailID, exerciseLog.ActualSets, exerciseLog.ActualReps,
		exerciseLog.WeightKg, exerciseLog.DurationSeconds, exerciseLog.CreatedAt,
	).Scan(&exerciseLog.ID)
	if err != nil {
		return nil, fmt.Errorf("insert exercise log: %w", err)
	}

	return &exerciseLog, nil
}

func (r *Repo) ListLogs(ctx context.Context, detailID int) (_ []ExerciseLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listLogs")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT id, session_detail_id, actual_sets, actual_reps, weight_kg,
			COALESCE(duration_seconds, 0), created_at
		FROM exercise_log
		WHERE session_detail_id = $1
		ORDER BY id;`, detailID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]ExerciseLog, 0)
	for rows.Next() {
		var l ExerciseLog
		if err := rows.Scan(
			&l.ID, &l.SessionDetailID, &l.ActualSets, &l.ActualReps,
			&l.WeightKg, &l.DurationSeconds, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan log row: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return logs, nil
}

// DetailLogCounts returns, per detail of the session, how many logs exist.
func (r *Repo) DetailLogCounts(ctx context.Context, sessionID int) (_ []DetailLogCount, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.detailLogCounts")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT sd.id, COUNT(el.id)
		FROM session_detail sd
			LEFT JOIN exercise_log el ON el.session_detail_id = sd.id
		WHERE sd.session_id = $1
		GROUP BY sd.id
		ORDER BY sd.id;`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]DetailLogCount, 0)
	for rows.Next() {
		var c DetailLogCount
		if err := rows.Scan(&c.DetailID, &c.LogCount); err != nil {
			return nil, fmt.Errorf("scan detail log count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *Repo) MarkCompleted(ctx context.Context, sessionID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.markCompleted")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx,
		`UPDATE workout_session SET completed = TRUE WHERE id = $1;`, sessionID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}
