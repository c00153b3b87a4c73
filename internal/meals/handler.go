package meals

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/traindiary/backend/internal/foods"
	"github.com/traindiary/backend/internal/telemetry/metrics"
	"github.com/traindiary/backend/internal/telemetry/tracing"
	"github.com/traindiary/backend/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type mealsRepo interface {
	Add(ctx context.Context, meal Meal) (*Meal, error)
	Get(ctx context.Context, id int) (*Meal, error)
	List(ctx context.Context, userID int, from, to time.Time) ([]Meal, error)
	Nutrition(ctx context.Context, mealID int) ([]NutritionRow, error)
	Delete(ctx context.Context, id int) error
}

type DeleteMealResponse struct {
	DeletedID int `json:"deletedId"`
}

type Handler struct {
	repo    mealsRepo
	metrics *metrics.Manager
}

func NewHandler(repo mealsRepo, metrics *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metrics,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.meals.add")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var meal Meal
	if err := json.NewDecoder(r.Body).Decode(&meal); err != nil {
		log.Tracef("new meal, unmarshal json params: %s", err)
		http.Error(w, "add meal failed", http.StatusBadRequest)
		return
	}

	if meal.UserID <= 0 {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}
	if len(meal.Details) == 0 {
		http.Error(w, "error, meal without foods", http.StatusBadRequest)
		return
	}
	for _, d := range meal.Details {
		if d.FoodID <= 0 || d.AmountGrams <= 0 {
			http.Error(w, "error, invalid meal detail", http.StatusBadRequest)
			return
		}
	}
	if meal.LogDate.IsZero() {
		meal.LogDate = time.Now()
	}
	if meal.CreatedAt.IsZero() {
		meal.CreatedAt = time.Now()
	}

	addedMeal, err := handler.repo.Add(ctx, meal)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			http.Error(w, "error, unknown user or food", http.StatusBadRequest)
			return
		}
		log.Errorf("failed to add meal for user %d: %s", meal.UserID, err)
		http.Error(w, "error, failed to add meal", http.StatusInternalServerError)
		return
	}
	handler.metrics.CounterMealsLogged.Inc()

	mealJson, err := json.Marshal(addedMeal)
	if err != nil {
		log.Errorf("failed to marshal meal: %s", err)
		http.Error(w, "error, failed to add meal", http.StatusInternalServerError)
		return
	}

	log.Debugf("new meal logged: user %d, meal %d", addedMeal.UserID, addedMeal.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, mealJson, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.meals.get")
	defer span.End()

	id, ok := mealIDFromPath(w, r)
	if !ok {
		return
	}

	meal, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMealNotFound) {
			http.Error(w, "meal not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get meal %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	mealJson, err := json.Marshal(meal)
	if err != nil {
		log.Errorf("failed to marshal meal: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, mealJson, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.meals.list")
	defer span.End()

	userIDStr := r.URL.Query().Get("user_id")
	userID, err := strconv.Atoi(userIDStr)
	if err != nil || userID <= 0 {
		http.Error(w, "error, invalid user_id", http.StatusBadRequest)
		return
	}

	// default range: last 30 days up to tomorrow
	to := time.Now().AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -31)
	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		from, err = time.ParseInLocation(dateLayout, fromStr, time.UTC)
		if err != nil {
			http.Error(w, "error, invalid from date", http.StatusBadRequest)
			return
		}
	}
	if toStr := r.URL.Query().Get("to"); toStr != "" {
		to, err = time.ParseInLocation(dateLayout, toStr, time.UTC)
		if err != nil {
			http.Error(w, "error, invalid to date", http.StatusBadRequest)
			return
		}
	}

	meals, err := handler.repo.List(ctx, userID, from, to)
	if err != nil {
		log.Errorf("list meals for user %d: %s", userID, err)
		http.Error(w, "failed to get meals", http.StatusInternalServerError)
		return
	}

	mealsJson, err := json.Marshal(meals)
	if err != nil {
		log.Errorf("marshal meals error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, mealsJson, http.StatusOK)
}

// HandleNutrition resolves the meal's macro breakdown. Consumed amounts are
// grams, food macros are per serving, the serving gram size is parsed from
// the food's serving type label (1 g fallback).
func (handler *Handler) HandleNutrition(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.meals.nutrition")
	defer span.End()

	id, ok := mealIDFromPath(w, r)
	if !ok {
		return
	}

	nutritionRows, err := handler.repo.Nutrition(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMealNotFound) {
			http.Error(w, "meal not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get nutrition for meal %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	nutrition := MealNutrition{
		MealID: id,
		Foods:  make([]FoodNutrition, 0, len(nutritionRows)),
	}
	for _, row := range nutritionRows {
		servingGrams := 1.0
		if row.ServingType != nil {
			if grams, parseOk := foods.ParseServingGrams(*row.ServingType); parseOk {
				servingGrams = grams
			}
		}
		servings := row.AmountGrams / servingGrams

		foodNutrition := FoodNutrition{
			FoodID:      row.FoodID,
			FoodName:    row.FoodName,
			AmountGrams: row.AmountGrams,
			Calories:    round2(row.Calories * servings),
			Protein:     round2(row.Protein * servings),
			Carbs:       round2(row.Carbs * servings),
			Fat:         round2(row.Fat * servings),
		}
		nutrition.Foods = append(nutrition.Foods, foodNutrition)
		nutrition.TotalCalories += foodNutrition.Calories
		nutrition.TotalProtein += foodNutrition.Protein
		nutrition.TotalCarbs += foodNutrition.Carbs
		nutrition.TotalFat += foodNutrition.Fat
	}
	nutrition.TotalCalories = round2(nutrition.TotalCalories)
	nutrition.TotalProtein = round2(nutrition.TotalProtein)
	nutrition.TotalCarbs = round2(nutrition.TotalCarbs)
	nutrition.TotalFat = round2(nutrition.TotalFat)

	nutritionJson, err := json.Marshal(nutrition)
	if err != nil {
		log.Errorf("failed to marshal nutrition: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, nutritionJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.meals.delete")
	defer span.End()

	id, ok := mealIDFromPath(w, r)
	if !ok {
		return
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrMealNotFound) {
			http.Error(w, "meal not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete meal %d: %s", id, err)
		http.Error(w, "meal not deleted", http.StatusInternalServerError)
		return
	}

	deleteRespJson, err := json.Marshal(DeleteMealResponse{DeletedID: id})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}

func mealIDFromPath(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := mux.Vars(r)["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
