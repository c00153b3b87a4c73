package exercises

import "context"

type repoMock struct {
	exercises map[int]*Exercise
	nextID    int
}

func NewMockExercisesRepo() *repoMock {
	return &repoMock{
		exercises: make(map[int]*Exercise),
		nextID:    1,
	}
}

func (r *repoMock) Add(_ context.Context, exercise Exercise) (*Exercise, error) {
	exercise.ID = r.nextID
	r.nextID++
	r.exercises[exercise.ID] = &exercise
	return &exercise, nil
}

func (r *repoMock) Get(_ context.Context, id int) (*Exercise, error) {
	exercise, ok := r.exercises[id]
	if !ok {
		return nil, ErrExerciseNotFound
	}
	return exercise, nil
}

func (r *repoMock) List(_ context.Context, category string) ([]Exercise, error) {
	exercises := make([]Exercise, 0)
	for _, e := range r.exercises {
		if category == "" || e.Category == category {
			exercises = append(exercises, *e)
		}
	}
	return exercises, nil
}

func (r *repoMock) Update(ctx context.Context, exercise *Exercise) error {
	if _, err := r.Get(ctx, exercise.ID); err != nil {
		return err
	}
	r.exercises[exercise.ID] = exercise
	return nil
}

func (r *repoMock) Delete(_ context.Context, id int) error {
	if _, ok := r.exercises[id]; !ok {
		return ErrExerciseNotFound
	}
	delete(r.exercises, id)
	return nil
}
