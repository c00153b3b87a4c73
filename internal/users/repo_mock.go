package users

import (
	"context"
)

type repoMock struct {
	users  map[int]*User
	nextID int
}

func NewMockUsersRepo() *repoMock {
	return &repoMock{
		users:  make(map[int]*User),
		nextID: 1,
	}
}

func (r *repoMock) Add(_ context.Context, user User) (*User, error) {
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = &user
	return &user, nil
}

func (r *repoMock) Get(_ context.Context, id int) (*User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *repoMock) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *repoMock) Exists(_ context.Context, id int) (bool, error) {
	_, ok := r.users[id]
	return ok, nil
}

func (r *repoMock) Update(ctx context.Context, user *User) error {
	if _, err := r.Get(ctx, user.ID); err != nil {
		return err
	}
	r.users[user.ID] = user
	return nil
}

func (r *repoMock) Delete(_ context.Context, id int) error {
	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *repoMock) List(context.Context) ([]User, error) {
	users := make([]User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, *u)
	}
	return users, nil
}
