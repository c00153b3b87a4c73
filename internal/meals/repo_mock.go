package meals

import (
	"context"
	"time"
)

type repoMock struct {
	meals     map[int]*Meal
	nutrition map[int][]NutritionRow
	nextID    int
}

func NewMockMealsRepo() *repoMock {
	return &repoMock{
		meals:     make(map[int]*Meal),
		nutrition: make(map[int][]NutritionRow),
		nextID:    1,
	}
}

func (r *repoMock) Add(_ context.Context, meal Meal) (*Meal, error) {
	meal.ID = r.nextID
	r.nextID++
	for i := range meal.Details {
		meal.Details[i].MealID = meal.ID
		meal.Details[i].ID = i + 1
	}
	r.meals[meal.ID] = &meal
	return &meal, nil
}

func (r *repoMock) Get(_ context.Context, id int) (*Meal, error) {
	meal, ok := r.meals[id]
	if !ok {
		return nil, ErrMealNotFound
	}
	return meal, nil
}

func (r *repoMock) List(_ context.Context, userID int, from, to time.Time) ([]Meal, error) {
	meals := make([]Meal, 0)
	for _, m := range r.meals {
		if m.UserID == userID && !m.LogDate.Before(from) && m.LogDate.Before(to) {
			meals = append(meals, *m)
		}
	}
	return meals, nil
}

func (r *repoMock) Nutrition(_ context.Context, mealID int) ([]NutritionRow, error) {
	if _, ok := r.meals[mealID]; !ok {
		return nil, ErrMealNotFound
	}
	return r.nutrition[mealID], nil
}

func (r *repoMock) Delete(_ context.Context, id int) error {
	if _, ok := r.meals[id]; !ok {
		return ErrMealNotFound
	}
	delete(r.meals, id)
	delete(r.nutrition, id)
	return nil
}
