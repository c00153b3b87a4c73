package progress

import "time"

type PeriodType string

const (
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"

	dateLayout = "2006-01-02"
)

// Days returns the fixed length of the period in calendar days.
// Monthly periods are a flat 30 days, not calendar-month-aware.
func (pt PeriodType) Days() int {
	if pt == PeriodWeekly {
		return 7
	}
	return 30
}

func (pt PeriodType) Valid() bool {
	return pt == PeriodWeekly || pt == PeriodMonthly
}

// SummaryRequest identifies one summary computation. PeriodType and
// PeriodStart arrive as raw strings and are validated by the service.
type SummaryRequest struct {
	UserID      int    `json:"user_id"`
	PeriodType  string `json:"period_type"`
	PeriodStart string `json:"period_start"`
}

// DailySummary is one calendar day's slice of the aggregate output. Every day
// of the period is present, zero-valued when nothing was logged.
type DailySummary struct {
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Workouts int     `json:"workouts"`
	GRScore  float64 `json:"gr_score"`
}

// Summary is the aggregate payload returned to the caller.
type Summary struct {
	TotalWorkouts        int            `json:"total_workouts"`
	TotalCaloriesIntake  float64        `json:"total_calories_intake"`
	AvgProtein           float64        `json:"avg_protein"`
	AvgCarbs             float64        `json:"avg_carbs"`
	AvgFat               float64        `json:"avg_fat"`
	TotalDurationMinutes float64        `json:"total_duration_minutes"`
	TotalGRScore         float64        `json:"total_gr_score"`
	AvgGRScore           float64        `json:"avg_gr_score"`
	DailyData            []DailySummary `json:"dailyData"`
}

// SummaryRecord is the persisted aggregate, one row per
// (user id, period type, period start).
type SummaryRecord struct {
	UserID               int        `json:"userId"`
	PeriodType           PeriodType `json:"periodType"`
	PeriodStart          time.Time  `json:"periodStart"`
	TotalWorkouts        int        `json:"totalWorkouts"`
	TotalCaloriesIntake  float64    `json:"totalCaloriesIntake"`
	AvgProtein           float64    `json:"avgProtein"`
	AvgCarbs             float64    `json:"avgCarbs"`
	AvgFat               float64    `json:"avgFat"`
	TotalDurationMinutes float64    `json:"totalDurationMinutes"`
	TotalGRScore         float64    `json:"totalGrScore"`
	AvgGRScore           float64    `json:"avgGrScore"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// SessionLogRow is one exercise log joined to its workout session and
// exercise metadata. A completed session without any logs yet still yields
// one row, with the log fields nil.
type SessionLogRow struct {
	SessionID        int
	ScheduledDate    time.Time
	SessionType      string
	ExerciseName     *string
	ExerciseCategory *string
	ActualSets       *int
	ActualReps       *int
	WeightKg         *float64
	DurationSeconds  *int
}

// MealDetailRow is one meal detail joined to its meal and food macros.
type MealDetailRow struct {
	MealID             int
	LogDate            time.Time
	AmountGrams        float64
	CaloriesPerServing float64
	ProteinPerServing  float64
	CarbsPerServing    float64
	FatPerServing      float64
	ServingType        *string
}

// DailyGRScore is one scored day of a calendar month.
type DailyGRScore struct {
	Date    string `json:"date"`
	GRScore int    `json:"gr_score"`
}
