package progress

import (
	"context"
	"fmt"
	"time"
)

type repoMock struct {
	workoutRows []SessionLogRow
	mealRows    []MealDetailRow
	records     map[string]SummaryRecord

	workoutsErr error
	mealsErr    error
	upsertErr   error
	listErr     error
}

func NewMockProgressRepo() *repoMock {
	return &repoMock{
		records: make(map[string]SummaryRecord),
	}
}

func (r *repoMock) CompletedWorkouts(_ context.Context, _ int, from, to time.Time) ([]SessionLogRow, error) {
	if r.workoutsErr != nil {
		return nil, r.workoutsErr
	}
	var rows []SessionLogRow
	for _, row := range r.workoutRows {
		if !row.ScheduledDate.Before(from) && row.ScheduledDate.Before(to) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (r *repoMock) MealsWithFoods(_ context.Context, _ int, from, to time.Time) ([]MealDetailRow, error) {
	if r.mealsErr != nil {
		return nil, r.mealsErr
	}
	var rows []MealDetailRow
	for _, row := range r.mealRows {
		if !row.LogDate.Before(from) && row.LogDate.Before(to) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (r *repoMock) UpsertSummary(_ context.Context, record SummaryRecord) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	key := fmt.Sprintf("%d|%s|%s", record.UserID, record.PeriodType, record.PeriodStart.Format(dateLayout))
	r.records[key] = record
	return nil
}

func (r *repoMock) ListSummaries(_ context.Context, userID int) ([]SummaryRecord, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var records []SummaryRecord
	for _, rec := range r.records {
		if rec.UserID == userID {
			records = append(records, rec)
		}
	}
	return records, nil
}

type userCheckerMock struct {
	existing map[int]bool
	err      error
}

func NewMockUserChecker(ids ...int) *userCheckerMock {
	existing := make(map[int]bool)
	for _, id := range ids {
		existing[id] = true
	}
	return &userCheckerMock{existing: existing}
}

func (u *userCheckerMock) Exists(_ context.Context, id int) (bool, error) {
	if u.err != nil {
		return false, u.err
	}
	return u.existing[id], nil
}
