package progress

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/traindiary/backend/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

type progressRepo interface {
	CompletedWorkouts(ctx context.Context, userID int, from, to time.Time) ([]SessionLogRow, error)
	MealsWithFoods(ctx context.Context, userID int, from, to time.Time) ([]MealDetailRow, error)
	UpsertSummary(ctx context.Context, record SummaryRecord) error
	ListSummaries(ctx context.Context, userID int) ([]SummaryRecord, error)
}

type userChecker interface {
	Exists(ctx context.Context, id int) (bool, error)
}

type Service struct {
	repo  progressRepo
	users userChecker
}

func NewService(repo progressRepo, users userChecker) *Service {
	return &Service{
		repo:  repo,
		users: users,
	}
}

// ComputeSummary computes the aggregate for the requested period without
// persisting anything.
func (s *Service) ComputeSummary(ctx context.Context, req SummaryRequest) (_ *Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.progress.computeSummary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	periodType, periodStart, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("user.id", req.UserID))
	span.SetAttributes(attribute.String("period.type", string(periodType)))
	span.SetAttributes(attribute.String("period.start", req.PeriodStart))

	summary, err := s.compute(ctx, req.UserID, periodType, periodStart)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// ComputeAndPersistSummary computes the aggregate and upserts the period
// totals, keyed on (user id, period type, period start). Recomputing the same
// period overwrites the stored row, so generation is idempotent. A failed
// upsert fails the whole request - the computed payload is not returned, the
// caller must not assume durability it does not have.
func (s *Service) ComputeAndPersistSummary(ctx context.Context, req SummaryRequest) (_ *Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.progress.computeAndPersistSummary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	periodType, periodStart, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	summary, err := s.compute(ctx, req.UserID, periodType, periodStart)
	if err != nil {
		return nil, err
	}

	record := SummaryRecord{
		UserID:               req.UserID,
		PeriodType:           periodType,
		PeriodStart:          periodStart,
		TotalWorkouts:        summary.TotalWorkouts,
		TotalCaloriesIntake:  summary.TotalCaloriesIntake,
		AvgProtein:           summary.AvgProtein,
		AvgCarbs:             summary.AvgCarbs,
		AvgFat:               summary.AvgFat,
		TotalDurationMinutes: summary.TotalDurationMinutes,
		TotalGRScore:         summary.TotalGRScore,
		AvgGRScore:           summary.AvgGRScore,
		UpdatedAt:            time.Now(),
	}
	if err := s.repo.UpsertSummary(ctx, record); err != nil {
		return nil, &PersistenceError{Err: err}
	}

	return summary, nil
}

// ListSummaries returns the previously persisted summary rows for the user,
// newest period first.
func (s *Service) ListSummaries(ctx context.Context, userID int) (_ []SummaryRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.progress.listSummaries")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if userID <= 0 {
		return nil, &ValidationError{Field: "user_id", Reason: "must be a positive integer"}
	}

	records, err := s.repo.ListSummaries(ctx, userID)
	if err != nil {
		return nil, &DataAccessError{Op: "list summaries", Err: err}
	}
	return records, nil
}

// DailyGRScores returns the GR score for each day of the given calendar month
// that had at least one scored exercise log, scores rounded to whole numbers.
func (s *Service) DailyGRScores(ctx context.Context, userID, year, month int) (_ []DailyGRScore, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.progress.dailyGRScores")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if userID <= 0 {
		return nil, &ValidationError{Field: "user_id", Reason: "must be a positive integer"}
	}
	if month < 1 || month > 12 {
		return nil, &ValidationError{Field: "month", Reason: "must be 1-12"}
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, &DataAccessError{Op: "check user", Err: err}
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	workoutRows, err := s.repo.CompletedWorkouts(ctx, userID, monthStart, monthEnd)
	if err != nil {
		return nil, &DataAccessError{Op: "fetch workouts", Err: err}
	}

	dayLogs := make(map[string][]LogEntry)
	for _, row := range workoutRows {
		if row.ActualSets == nil || row.ActualReps == nil {
			continue
		}
		entry := LogEntry{
			ActualSets: *row.ActualSets,
			ActualReps: *row.ActualReps,
		}
		if row.WeightKg != nil {
			entry.WeightKg = *row.WeightKg
		}
		if row.ExerciseCategory != nil {
			entry.ExerciseCategory = *row.ExerciseCategory
		}
		day := row.ScheduledDate.Format(dateLayout)
		dayLogs[day] = append(dayLogs[day], entry)
	}

	scores := make([]DailyGRScore, 0)
	for d := monthStart; d.Before(monthEnd); d = d.AddDate(0, 0, 1) {
		day := d.Format(dateLayout)
		dayGR := CalculateSessionGR(dayLogs[day])
		if dayGR > 0 {
			scores = append(scores, DailyGRScore{
				Date:    day,
				GRScore: int(math.Round(dayGR)),
			})
		}
	}

	return scores, nil
}

// validate checks the raw request parameters and verifies the user exists,
// before any aggregation work is spent.
func (s *Service) validate(ctx context.Context, req SummaryRequest) (PeriodType, time.Time, error) {
	if req.UserID <= 0 {
		return "", time.Time{}, &ValidationError{Field: "user_id", Reason: "must be a positive integer"}
	}

	periodType := PeriodType(req.PeriodType)
	if !periodType.Valid() {
		return "", time.Time{}, &ValidationError{
			Field:  "period_type",
			Reason: fmt.Sprintf("must be %q or %q", PeriodWeekly, PeriodMonthly),
		}
	}

	if req.PeriodStart == "" {
		return "", time.Time{}, &ValidationError{Field: "period_start", Reason: "is required"}
	}
	periodStart, err := time.ParseInLocation(dateLayout, req.PeriodStart, time.UTC)
	if err != nil {
		return "", time.Time{}, &ValidationError{Field: "period_start", Reason: "must be an ISO date (YYYY-MM-DD)"}
	}

	exists, err := s.users.Exists(ctx, req.UserID)
	if err != nil {
		return "", time.Time{}, &DataAccessError{Op: "check user", Err: err}
	}
	if !exists {
		return "", time.Time{}, ErrUserNotFound
	}

	return periodType, periodStart, nil
}

// compute fetches the two independent datasets concurrently and reduces them.
func (s *Service) compute(
	ctx context.Context,
	userID int,
	periodType PeriodType,
	periodStart time.Time,
) (*Summary, error) {
	periodDays := periodType.Days()
	periodEnd := periodStart.AddDate(0, 0, periodDays)

	var (
		workoutRows []SessionLogRow
		mealRows    []MealDetailRow
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		rows, err := s.repo.CompletedWorkouts(groupCtx, userID, periodStart, periodEnd)
		if err != nil {
			return &DataAccessError{Op: "fetch workouts", Err: err}
		}
		workoutRows = rows
		return nil
	})
	group.Go(func() error {
		rows, err := s.repo.MealsWithFoods(groupCtx, userID, periodStart, periodEnd)
		if err != nil {
			return &DataAccessError{Op: "fetch meals", Err: err}
		}
		mealRows = rows
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return buildSummary(periodStart, periodDays, workoutRows, mealRows), nil
}
