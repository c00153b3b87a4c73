package progress

import "math"

// Grind Rating (GR) is a synthetic workout-quality score for one logged set:
// GR = RepsScore x SetsScore x log2(weight + 1) x CategoryMultiplier

// categoryMultipliers is the fixed per-category weight table. Categories not
// listed here score with the neutral multiplier 1.0.
var categoryMultipliers = map[string]float64{
	"Shoulders": 1.3,
	"Legs":      1.25,
	"Back":      1.2,
	"Chest":     1.15,
	"Arms":      1.1,
	"Core":      1.0,
}

// LogEntry is one recorded execution of an exercise, as needed for scoring.
type LogEntry struct {
	ActualSets       int
	ActualReps       int
	WeightKg         float64
	ExerciseCategory string
}

// CalculateGR computes the Grind Rating of a single logged set,
// rounded to 2 decimal places.
func CalculateGR(reps, sets int, weightKg float64, category string) float64 {
	repsScore := 0.5
	switch {
	case reps >= 8 && reps <= 12:
		// ideal hypertrophy range
		repsScore = 1.0
	case (reps >= 6 && reps <= 7) || (reps >= 13 && reps <= 14):
		repsScore = 0.75
	}

	setsScore := 0.5
	switch {
	case sets >= 3 && sets <= 4:
		setsScore = 1.0
	case sets == 2 || sets == 5:
		setsScore = 0.75
	}

	// weight + 1 keeps bodyweight exercises (0 kg) well-defined: log2(1) = 0
	weightScore := math.Log2(weightKg + 1)

	multiplier, ok := categoryMultipliers[category]
	if !ok {
		multiplier = 1.0
	}

	return round2(repsScore * setsScore * weightScore * multiplier)
}

// CalculateSessionGR sums the GR scores of all given log entries.
// The sum is left unrounded. An empty list scores 0.
func CalculateSessionGR(logs []LogEntry) float64 {
	var total float64
	for _, l := range logs {
		total += CalculateGR(l.ActualReps, l.ActualSets, l.WeightKg, l.ExerciseCategory)
	}
	return total
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
