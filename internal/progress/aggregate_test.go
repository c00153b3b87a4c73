package progress

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func day(t *testing.T, date string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation(dateLayout, date, time.UTC)
	require.NoError(t, err)
	return d
}

func TestServingMultiplier(t *testing.T) {
	testCases := []struct {
		name        string
		amountGrams float64
		servingType *string
		expected    float64
	}{
		{name: "plain grams label", amountGrams: 150, servingType: strPtr("100 g"), expected: 1.5},
		{name: "decimal grams label", amountGrams: 100, servingType: strPtr("62.5g serving"), expected: 1.6},
		{name: "no number in label", amountGrams: 150, servingType: strPtr("per piece"), expected: 150},
		{name: "nil label", amountGrams: 150, servingType: nil, expected: 150},
		{name: "exact serving", amountGrams: 100, servingType: strPtr("100 g"), expected: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, servingMultiplier(tc.amountGrams, tc.servingType), 0.001)
		})
	}
}

func TestBuildSummary_EmptyPeriod(t *testing.T) {
	periodStart := day(t, "2024-03-04")
	summary := buildSummary(periodStart, 7, nil, nil)

	assert.Zero(t, summary.TotalWorkouts)
	assert.Zero(t, summary.TotalCaloriesIntake)
	assert.Zero(t, summary.TotalGRScore)
	assert.Zero(t, summary.AvgGRScore)

	require.Len(t, summary.DailyData, 7)
	assert.Equal(t, "2024-03-04", summary.DailyData[0].Date)
	assert.Equal(t, "2024-03-10", summary.DailyData[6].Date)
	for _, ds := range summary.DailyData {
		assert.Zero(t, ds.Calories)
		assert.Zero(t, ds.Workouts)
		assert.Zero(t, ds.GRScore)
	}
}

func TestBuildSummary_DailySeriesIsDense(t *testing.T) {
	periodStart := day(t, "2024-03-01")
	summary := buildSummary(periodStart, 30, nil, []MealDetailRow{
		{
			MealID:             1,
			LogDate:            day(t, "2024-03-15"),
			AmountGrams:        200,
			CaloriesPerServing: 250,
			ProteinPerServing:  20,
			ServingType:        strPtr("100 g"),
		},
	})

	require.Len(t, summary.DailyData, 30)
	for i, ds := range summary.DailyData {
		assert.Equal(t, periodStart.AddDate(0, 0, i).Format(dateLayout), ds.Date)
		if ds.Date == "2024-03-15" {
			assert.Equal(t, float64(500), ds.Calories)
			assert.Equal(t, float64(40), ds.Protein)
		} else {
			assert.Zero(t, ds.Calories)
		}
	}
}

func TestBuildSummary_SessionWithoutLogsCountsAsWorkoutDay(t *testing.T) {
	periodStart := day(t, "2024-03-04")
	summary := buildSummary(periodStart, 7, []SessionLogRow{
		{SessionID: 1, ScheduledDate: day(t, "2024-03-05"), SessionType: "push"},
	}, nil)

	assert.Equal(t, 1, summary.TotalWorkouts)
	assert.Zero(t, summary.TotalGRScore)
	assert.Zero(t, summary.AvgGRScore)
	assert.Zero(t, summary.DailyData[1].Workouts)
}

func TestBuildSummary_WorkoutsCountDistinctDays(t *testing.T) {
	periodStart := day(t, "2024-03-04")
	rows := []SessionLogRow{
		{
			SessionID: 1, ScheduledDate: day(t, "2024-03-05"),
			ExerciseCategory: strPtr("Chest"), ActualSets: intPtr(3), ActualReps: intPtr(10),
			WeightKg: floatPtr(60), DurationSeconds: intPtr(90),
		},
		{
			SessionID: 1, ScheduledDate: day(t, "2024-03-05"),
			ExerciseCategory: strPtr("Arms"), ActualSets: intPtr(3), ActualReps: intPtr(12),
			WeightKg: floatPtr(20), DurationSeconds: intPtr(60),
		},
		{
			SessionID: 2, ScheduledDate: day(t, "2024-03-07"),
			ExerciseCategory: strPtr("Legs"), ActualSets: intPtr(4), ActualReps: intPtr(8),
			WeightKg: floatPtr(100), DurationSeconds: intPtr(120),
		},
	}

	summary := buildSummary(periodStart, 7, rows, nil)

	assert.Equal(t, 2, summary.TotalWorkouts)
	assert.Equal(t, float64(5), summary.TotalDurationMinutes)

	dayOneGR := CalculateGR(10, 3, 60, "Chest") + CalculateGR(12, 3, 20, "Arms")
	dayTwoGR := CalculateGR(8, 4, 100, "Legs")
	assert.InDelta(t, round2(dayOneGR+dayTwoGR), summary.TotalGRScore, 0.001)
	assert.InDelta(t, round2((dayOneGR+dayTwoGR)/2), summary.AvgGRScore, 0.001)

	assert.Equal(t, 1, summary.DailyData[1].Workouts)
	assert.InDelta(t, round2(dayOneGR), summary.DailyData[1].GRScore, 0.001)
	assert.Equal(t, 1, summary.DailyData[3].Workouts)
	assert.Zero(t, summary.DailyData[2].Workouts)
}

func TestBuildSummary_NutritionTotalsAndAverages(t *testing.T) {
	periodStart := day(t, "2024-03-04")
	mealRows := []MealDetailRow{
		{
			MealID: 1, LogDate: day(t, "2024-03-04"), AmountGrams: 150,
			CaloriesPerServing: 200, ProteinPerServing: 30, CarbsPerServing: 10, FatPerServing: 5,
			ServingType: strPtr("100 g"),
		},
		{
			MealID: 2, LogDate: day(t, "2024-03-06"), AmountGrams: 50,
			CaloriesPerServing: 400, ProteinPerServing: 12, CarbsPerServing: 60, FatPerServing: 14,
			ServingType: strPtr("100g"),
		},
	}

	summary := buildSummary(periodStart, 7, nil, mealRows)

	// 1.5 servings of meal one + 0.5 servings of meal two
	totalCalories := 200*1.5 + 400*0.5
	totalProtein := 30*1.5 + 12*0.5
	totalCarbs := 10*1.5 + 60*0.5
	totalFat := 5*1.5 + 14*0.5

	assert.Equal(t, math.Round(totalCalories), summary.TotalCaloriesIntake)
	assert.Equal(t, math.Round(totalProtein/7), summary.AvgProtein)
	assert.Equal(t, math.Round(totalCarbs/7), summary.AvgCarbs)
	assert.Equal(t, math.Round(totalFat/7), summary.AvgFat)

	assert.Equal(t, float64(300), summary.DailyData[0].Calories)
	assert.Equal(t, float64(200), summary.DailyData[2].Calories)
	assert.Zero(t, summary.DailyData[1].Calories)
}
