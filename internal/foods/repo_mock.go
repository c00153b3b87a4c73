package foods

import (
	"context"
	"strings"
)

type repoMock struct {
	foods  map[int]*Food
	nextID int
}

func NewMockFoodsRepo() *repoMock {
	return &repoMock{
		foods:  make(map[int]*Food),
		nextID: 1,
	}
}

func (r *repoMock) Add(_ context.Context, food Food) (*Food, error) {
	food.ID = r.nextID
	r.nextID++
	r.foods[food.ID] = &food
	return &food, nil
}

func (r *repoMock) Get(_ context.Context, id int) (*Food, error) {
	food, ok := r.foods[id]
	if !ok {
		return nil, ErrFoodNotFound
	}
	return food, nil
}

func (r *repoMock) Search(_ context.Context, nameLike string) ([]Food, error) {
	foods := make([]Food, 0)
	for _, f := range r.foods {
		if nameLike == "" || strings.Contains(strings.ToLower(f.Name), strings.ToLower(nameLike)) {
			foods = append(foods, *f)
		}
	}
	return foods, nil
}

func (r *repoMock) Update(ctx context.Context, food *Food) error {
	if _, err := r.Get(ctx, food.ID); err != nil {
		return err
	}
	r.foods[food.ID] = food
	return nil
}

func (r *repoMock) Delete(_ context.Context, id int) error {
	if _, ok := r.foods[id]; !ok {
		return ErrFoodNotFound
	}
	delete(r.foods, id)
	return nil
}
