package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/traindiary/backend/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// CompletedWorkouts returns one row per exercise log of every completed
// session scheduled in [from, to), joined to the exercise metadata. Sessions
// that have no logs yet come back as a single row with nil log fields.
func (r *Repo) CompletedWorkouts(ctx context.Context, userID int, from, to time.Time) (_ []SessionLogRow, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.completedWorkouts")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT
			ws.id, ws.scheduled_date, COALESCE(ws.session_type, ''),
			e.name, e.category,
			el.actual_sets, el.actual_reps, el.weight_kg, el.duration_seconds
		FROM workout_session ws
			LEFT JOIN session_detail sd ON sd.session_id = ws.id
			LEFT JOIN exercise_log el ON el.session_detail_id = sd.id
			LEFT JOIN exercise e ON e.id = sd.exercise_id
		WHERE ws.user_id = $1
			AND ws.completed = TRUE
			AND ws.scheduled_date >= $2
			AND ws.scheduled_date < $3
		ORDER BY ws.scheduled_date;`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workoutRows := make([]SessionLogRow, 0)
	for rows.Next() {
		var row SessionLogRow
		if err := rows.Scan(
			&row.SessionID, &row.ScheduledDate, &row.SessionType,
			&row.ExerciseName, &row.ExerciseCategory,
			&row.ActualSets, &row.ActualReps, &row.WeightKg, &row.DurationSeconds,
		); err != nil {
			return nil, fmt.Errorf("scan workout row: %w", err)
		}
		workoutRows = append(workoutRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return workoutRows, nil
}

// MealsWithFoods returns one row per meal detail logged in [from, to),
// joined to the food's per-serving macros.
func (r *Repo) MealsWithFoods(ctx context.Context, userID int, from, to time.Time) (_ []MealDetailRow, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.mealsWithFoods")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT
			um.id, um.log_date, umd.amount_grams,
			f.calories, f.protein, f.carbs, f.fat, f.serving_type
		FROM user_meal um
			INNER JOIN user_meal_detail umd ON umd.meal_id = um.id
			INNER JOIN food f ON f.id = umd.food_id
		WHERE um.user_id = $1
			AND um.log_date >= $2
			AND um.log_date < $3
		ORDER BY um.log_date;`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mealRows := make([]MealDetailRow, 0)
	for rows.Next() {
		var row MealDetailRow
		if err := rows.Scan(
			&row.MealID, &row.LogDate, &row.AmountGrams,
			&row.CaloriesPerServing, &row.ProteinPerServing,
			&row.CarbsPerServing, &row.FatPerServing, &row.ServingType,
		); err != nil {
			return nil, fmt.Errorf("scan meal row: %w", err)
		}
		mealRows = append(mealRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return mealRows, nil
}

// UpsertSummary inserts the computed period totals, or overwrites the
// existing row for the same (user, period type, period start).
func (r *Repo) UpsertSummary(ctx context.Context, record SummaryRecord) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.upsertSummary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = r.db.Exec(ctx, `
		INSERT INTO user_progress_summary (
			user_id, period_type, period_start,
			total_workouts, total_calories_intake,
			avg_protein, avg_carbs, avg_fat,
			total_duration_minutes, total_gr_score, avg_gr_score,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id, period_type, period_start) DO UPDATE SET
			total_workouts = EXCLUDED.total_workouts,
			total_calories_intake = EXCLUDED.total_calories_intake,
			avg_protein = EXCLUDED.avg_protein,
			avg_carbs = EXCLUDED.avg_carbs,
			avg_fat = EXCLUDED.avg_fat,
			total_duration_minutes = EXCLUDED.total_duration_minutes,
			total_gr_score = EXCLUDED.total_gr_score,
			avg_gr_score = EXCLUDED.avg_gr_score,
			updated_at = EXCLUDED.updated_at;`,
		record.UserID, record.PeriodType, record.PeriodStart,
		record.TotalWorkouts, record.TotalCaloriesIntake,
		record.AvgProtein, record.AvgCarbs, record.AvgFat,
		record.TotalDurationMinutes, record.TotalGRScore, record.AvgGRScore,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}

	return nil
}

// ListSummaries returns all persisted summaries for the user, newest
// period first.
func (r *Repo) ListSummaries(ctx context.Context, userID int) (_ []SummaryRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.listSummaries")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT
			user_id, period_type, period_start,
			total_workouts, total_calories_intake,
			avg_protein, avg_carbs, avg_fat,
			total_duration_minutes, total_gr_score, avg_gr_score,
			updated_at
		FROM user_progress_summary
		WHERE user_id = $1
		ORDER BY period_start DESC;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]SummaryRecord, 0)
	for rows.Next() {
		var rec SummaryRecord
		if err := rows.Scan(
			&rec.UserID, &rec.PeriodType, &rec.PeriodStart,
			&rec.TotalWorkouts, &rec.TotalCaloriesIntake,
			&rec.AvgProtein, &rec.AvgCarbs, &rec.AvgFat,
			&rec.TotalDurationMinutes, &rec.TotalGRScore, &rec.AvgGRScore,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
