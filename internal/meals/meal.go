package meals

import (
	"errors"
	"time"
)

var ErrMealNotFound = errors.New("meal not found")

// Meal is one logged eating occasion with its food amounts.
type Meal struct {
	ID        int          `json:"id"`
	UserID    int          `json:"userId"`
	Name      string       `json:"name,omitempty"`
	LogDate   time.Time    `json:"logDate"`
	CreatedAt time.Time    `json:"createdAt"`
	Details   []MealDetail `json:"details,omitempty"`
}

// MealDetail is one food within a meal, amount in grams.
type MealDetail struct {
	ID          int     `json:"id"`
	MealID      int     `json:"mealId"`
	FoodID      int     `json:"foodId"`
	AmountGrams float64 `json:"amountGrams"`
}

// NutritionRow is one meal detail joined to its food, as needed for the
// nutrition breakdown.
type NutritionRow struct {
	FoodID      int
	FoodName    string
	AmountGrams float64
	Calories    float64
	Protein     float64
	Carbs       float64
	Fat         float64
	ServingType *string
}

// FoodNutrition is the resolved macro contribution of one food in a meal.
type FoodNutrition struct {
	FoodID      int     `json:"foodId"`
	FoodName    string  `json:"foodName"`
	AmountGrams float64 `json:"amountGrams"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
}

// MealNutrition is the full macro breakdown of one meal.
type MealNutrition struct {
	MealID        int             `json:"mealId"`
	Foods         []FoodNutrition `json:"foods"`
	TotalCalories float64         `json:"totalCalories"`
	TotalProtein  float64         `json:"totalProtein"`
	TotalCarbs    float64         `json:"totalCarbs"`
	TotalFat      float64         `json:"totalFat"`
}
