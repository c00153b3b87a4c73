package progress

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCalculateGR_RepsScoreBands(t *testing.T) {
	// sets and weight fixed, only reps vary: 3 sets -> 1.0, 10kg -> log2(11)
	base := math.Log2(11)

	testCases := []struct {
		name     string
		reps     int
		expected float64
	}{
		{name: "below low band", reps: 5, expected: 0.5 * base},
		{name: "low partial band start", reps: 6, expected: 0.75 * base},
		{name: "low partial band end", reps: 7, expected: 0.75 * base},
		{name: "ideal band start", reps: 8, expected: 1.0 * base},
		{name: "ideal band middle", reps: 10, expected: 1.0 * base},
		{name: "ideal band end", reps: 12, expected: 1.0 * base},
		{name: "high partial band start", reps: 13, expected: 0.75 * base},
		{name: "high partial band end", reps: 14, expected: 0.75 * base},
		{name: "above high band", reps: 15, expected: 0.5 * base},
		{name: "zero reps", reps: 0, expected: 0.5 * base},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gr := CalculateGR(tc.reps, 3, 10, "Core")
			assert.InDelta(t, round2(tc.expected), gr, 0.001)
		})
	}
}

func TestCalculateGR_SetsScoreBands(t *testing.T) {
	base := math.Log2(11)

	testCases := []struct {
		name     string
		sets     int
		expected float64
	}{
		{name: "single set", sets: 1, expected: 0.5 * base},
		{name: "two sets", sets: 2, expected: 0.75 * base},
		{name: "three sets", sets: 3, expected: 1.0 * base},
		{name: "four sets", sets: 4, expected: 1.0 * base},
		{name: "five sets", sets: 5, expected: 0.75 * base},
		{name: "six sets", sets: 6, expected: 0.5 * base},
		{name: "zero sets", sets: 0, expected: 0.5 * base},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gr := CalculateGR(10, tc.sets, 10, "Core")
			assert.InDelta(t, round2(tc.expected), gr, 0.001)
		})
	}
}

func TestCalculateGR_BodyweightScoresZero(t *testing.T) {
	// log2(0 + 1) = 0, so weight 0 always yields 0 regardless of the rest
	assert.Zero(t, CalculateGR(10, 3, 0, "Legs"))
	assert.Zero(t, CalculateGR(1, 1, 0, ""))
}

func TestCalculateGR_CategoryMultipliers(t *testing.T) {
	base := math.Log2(51)

	testCases := []struct {
		category   string
		multiplier float64
	}{
		{category: "Shoulders", multiplier: 1.3},
		{category: "Legs", multiplier: 1.25},
		{category: "Back", multiplier: 1.2},
		{category: "Chest", multiplier: 1.15},
		{category: "Arms", multiplier: 1.1},
		{category: "Core", multiplier: 1.0},
		{category: "Mobility", multiplier: 1.0},
		{category: "", multiplier: 1.0},
	}

	for _, tc := range testCases {
		t.Run("category "+tc.category, func(t *testing.T) {
			gr := CalculateGR(10, 3, 50, tc.category)
			assert.InDelta(t, round2(base*tc.multiplier), gr, 0.001)
		})
	}
}

func TestCalculateGR_KnownValue(t *testing.T) {
	// 8 reps x 3 sets x 60kg, Chest: 1.0 * 1.0 * log2(61) * 1.15
	expected := round2(math.Log2(61) * 1.15)
	assert.Equal(t, expected, CalculateGR(8, 3, 60, "Chest"))
}

func TestCalculateSessionGR(t *testing.T) {
	assert.Zero(t, CalculateSessionGR(nil))
	assert.Zero(t, CalculateSessionGR([]LogEntry{}))

	logs := []LogEntry{
		{ActualReps: 10, ActualSets: 3, WeightKg: 60, ExerciseCategory: "Chest"},
		{ActualReps: 12, ActualSets: 4, WeightKg: 80, ExerciseCategory: "Legs"},
		{ActualReps: 15, ActualSets: 5, WeightKg: 20, ExerciseCategory: "Arms"},
	}

	expected := CalculateGR(10, 3, 60, "Chest") +
		CalculateGR(12, 4, 80, "Legs") +
		CalculateGR(15, 5, 20, "Arms")
	assert.InDelta(t, expected, CalculateSessionGR(logs), 0.001)
}
