package foods

import (
	"context"
	"errors"
	"fmt"

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

func (r *Repo) Add(ctx context.Context, food Food) (_ *Food, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.foods.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(ctx, `
		INSERT INTO food (name, calories, protein, carbs, fat, serving_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id;`,
		food.Name, food.Calories, food.Protein, food.Carbs, food.Fat, food.ServingType, food.CreatedAt,
	).Scan(&food.ID)
	if err != nil {
		return nil, fmt.Errorf("insert food: %w", err)
	}

	return &food, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Food, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.foods.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var food Food
	err = r.db.QueryRow(ctx, `
		SELECT id, name, calories, protein, carbs, fat, serving_type, created_at
		FROM food
		WHERE id = $1;`, id,
	).Scan(
		&food.ID, &food.Name, &food.Calories, &food.Protein,
		&food.Carbs, &food.Fat, &food.ServingType, &food.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFoodNotFound
		}
		return nil, err
	}

	return &food, nil
}

// Search returns foods whose name contains the given term, all foods when
// the term is empty.
func (r *Repo) Search(ctx context.Context, nameLike string) (_ []Food, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.foods.search")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, calories, protein, carbs, fat, serving_type, created_at
		FROM food
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		ORDER BY name;`, nameLike,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	foods := make([]Food, 0)
	for rows.Next() {
		var f Food
		if err := rows.Scan(
			&f.ID, &f.Name, &f.Calories, &f.Protein,
			&f.Carbs, &f.Fat, &f.ServingType, &f.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan food row: %w", err)
		}
		foods = append(foods, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return foods, nil
}

func (r *Repo) Update(ctx context.Context, food *Food) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.foods.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `
		UPDATE food
		SET name = $1, calories = $2, protein = $3, carbs = $4, fat = $5, serving_type = $6
		WHERE id = $7;`,
		food.Name, food.Calories, food.Protein, food.Carbs, food.Fat, food.ServingType, food.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFoodNotFound
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.foods.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `DELETE FROM food WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrFoodNotFound
	}

	return nil
}
