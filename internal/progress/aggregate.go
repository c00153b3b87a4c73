package progress

import (
	"math"
	"time"

	"github.com/traindiary/backend/internal/foods"
)

type macroTotals struct {
	calories float64
	protein  float64
	carbs    float64
	fat      float64
}

// servingMultiplier resolves how many reference servings the consumed amount
// represents. Foods with no parseable serving size count 1 gram per serving,
// so the multiplier stays well-defined.
func servingMultiplier(amountGrams float64, servingType *string) float64 {
	servingGrams := 1.0
	if servingType != nil {
		if grams, ok := foods.ParseServingGrams(*servingType); ok {
			servingGrams = grams
		}
	}
	return amountGrams / servingGrams
}

// buildSummary reduces the fetched workout and nutrition rows into the full
// aggregate: period totals plus a dense daily series covering every calendar
// day of the period, zero-filled where nothing was logged.
func buildSummary(
	periodStart time.Time,
	periodDays int,
	workoutRows []SessionLogRow,
	mealRows []MealDetailRow,
) *Summary {
	dayLogs := make(map[string][]LogEntry)
	sessionDays := make(map[string]bool)
	var totalDurationSeconds float64

	for _, row := range workoutRows {
		day := row.ScheduledDate.Format(dateLayout)
		sessionDays[day] = true

		// a completed session without logs still counts as a workout day,
		// but contributes nothing to the score
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
		dayLogs[day] = append(dayLogs[day], entry)

		if row.DurationSeconds != nil {
			totalDurationSeconds += float64(*row.DurationSeconds)
		}
	}

	dayMacros := make(map[string]macroTotals)
	for _, row := range mealRows {
		day := row.LogDate.Format(dateLayout)
		servings := servingMultiplier(row.AmountGrams, row.ServingType)

		m := dayMacros[day]
		m.calories += row.CaloriesPerServing * servings
		m.protein += row.ProteinPerServing * servings
		m.carbs += row.CarbsPerServing * servings
		m.fat += row.FatPerServing * servings
		dayMacros[day] = m
	}

	var periodMacros macroTotals
	for _, m := range dayMacros {
		periodMacros.calories += m.calories
		periodMacros.protein += m.protein
		periodMacros.carbs += m.carbs
		periodMacros.fat += m.fat
	}

	daily := make([]DailySummary, 0, periodDays)
	var totalGR float64
	var scoredDays int
	for i := 0; i < periodDays; i++ {
		day := periodStart.AddDate(0, 0, i).Format(dateLayout)
		ds := DailySummary{Date: day}

		if m, ok := dayMacros[day]; ok {
			ds.Calories = math.Round(m.calories)
			ds.Protein = math.Round(m.protein)
			ds.Carbs = math.Round(m.carbs)
			ds.Fat = math.Round(m.fat)
		}

		if logs := dayLogs[day]; len(logs) > 0 {
			dayGR := CalculateSessionGR(logs)
			ds.Workouts = 1
			ds.GRScore = round2(dayGR)
			totalGR += dayGR
			if dayGR > 0 {
				scoredDays++
			}
		}

		daily = append(daily, ds)
	}

	var avgGR float64
	if scoredDays > 0 {
		avgGR = round2(totalGR / float64(scoredDays))
	}

	return &Summary{
		TotalWorkouts:        len(sessionDays),
		TotalCaloriesIntake:  math.Round(periodMacros.calories),
		AvgProtein:           math.Round(periodMacros.protein / float64(periodDays)),
		AvgCarbs:             math.Round(periodMacros.carbs / float64(periodDays)),
		AvgFat:               math.Round(periodMacros.fat / float64(periodDays)),
		TotalDurationMinutes: math.Round(totalDurationSeconds / 60),
		TotalGRScore:         round2(totalGR),
		AvgGRScore:           avgGR,
		DailyData:            daily,
	}
}
