package meals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/traindiary/backend/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// Add stores the meal and all its details in one transaction.
func (r *Repo) Add(ctx context.Context, meal Meal) (_ *Meal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.meals.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("%w [rollback: %s]", err, rollbackErr)
			}
		}
	}()

	err = tx.QueryRow(ctx, `
		INSERT INTO user_meal (user_id, name, log_date, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id;`,
		meal.UserID, meal.Name, meal.LogDate, meal.CreatedAt,
	).Scan(&meal.ID)
	if err != nil {
		return nil, fmt.Errorf("insert meal: %w", err)
	}

	for i := range meal.Details {
		meal.Details[i].MealID = meal.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO user_meal_detail (meal_id, food_id, amount_grams)
			VALUES ($1, $2, $3)
			RETURNING id;`,
			meal.ID, meal.Details[i].FoodID, meal.Details[i].AmountGrams,
		).Scan(&meal.Details[i].ID)
		if err != nil {
			return nil, fmt.Errorf("insert meal detail: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &meal, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Meal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.meals.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var meal Meal
	err = r.db.QueryRow(ctx, `
		SELECT id, user_id, COALESCE(name, ''), log_date, created_at
		FROM user_meal
		WHERE id = $1;`, id,
	).Scan(&meal.ID, &meal.UserID, &meal.Name, &meal.LogDate, &meal.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMealNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, meal_id, food_id, amount_grams
		FROM user_meal_detail
		WHERE meal_id = $1
		ORDER BY id;`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var d MealDetail
		if err := rows.Scan(&d.ID, &d.MealID, &d.FoodID, &d.AmountGrams); err != nil {
			return nil, fmt.Errorf("scan meal detail: %w", err)
		}
		meal.Details = append(meal.Details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &meal, nil
}

// List returns the user's meals in [from, to), without details.
func (r *Repo) List(ctx context.Context, userID int, from, to time.Time) (_ []Meal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.meals.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, COALESCE(name, ''), log_date, created_at
		FROM user_meal
		WHERE user_id = $1 AND log_date >= $2 AND log_date < $3
		ORDER BY log_date;`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meals := make([]Meal, 0)
	for rows.Next() {
		var m Meal
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.LogDate, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan meal row: %w", err)
		}
		meals = append(meals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return meals, nil
}

// Nutrition returns the meal's details joined to food macros. ErrMealNotFound
// when the meal does not exist.
func (r *Repo) Nutrition(ctx context.Context, mealID int) (_ []NutritionRow, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.meals.nutrition")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_meal WHERE id = $1);`, mealID,
	).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrMealNotFound
	}

	rows, err := r.db.Query(ctx, `
		SELECT f.id, f.name, umd.amount_grams, f.calories, f.protein, f.carbs, f.fat, f.serving_type
		FROM user_meal_detail umd
			INNER JOIN food f ON f.id = umd.food_id
		WHERE umd.meal_id = $1
		ORDER BY umd.id;`, mealID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nutritionRows := make([]NutritionRow, 0)
	for rows.Next() {
		var row NutritionRow
		if err := rows.Scan(
			&row.FoodID, &row.FoodName, &row.AmountGrams,
			&row.Calories, &row.Protein, &row.Carbs, &row.Fat, &row.ServingType,
		); err != nil {
			return nil, fmt.Errorf("scan nutrition row: %w", err)
		}
		nutritionRows = append(nutritionRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return nutritionRows, nil
}

// Delete removes the meal and its details.
func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.meals.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := r.db.Exec(ctx,
		`DELETE FROM user_meal_detail WHERE meal_id = $1;`, id,
	); err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM user_meal WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMealNotFound
	}

	return nil
}
