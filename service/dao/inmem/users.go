package inmem

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/barscript/barscript/service/dao"
)

func NewUsersRepository() *UsersRepository {
	return &UsersRepository{
		byID:       make(map[uuid.UUID]dao.User),
		byUsername: make(map[string]uuid.UUID),
	}
}

type UsersRepository struct {
	byID       map[uuid.UUID]dao.User
	byUsername map[string]uuid.UUID
}

func (r *UsersRepository) Close() error { return nil }

func (r *UsersRepository) Create(ctx context.Context, u dao.User) (dao.User, error) {
	key := strings.ToLower(u.Username)
	if _, exists := r.byUsername[key]; exists {
		return dao.User{}, dao.ErrConstraintViolation
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return dao.User{}, fmt.Errorf("could not generate ID: %w", err)
	}

	now := time.Now()
	u.ID = id
	u.Created = now
	u.Modified = now

	r.byID[u.ID] = u
	r.byUsername[key] = u.ID
	return u, nil
}

func (r *UsersRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepository) GetByUsername(ctx context.Context, username string) (dao.User, error) {
	id, ok := r.byUsername[strings.ToLower(username)]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *UsersRepository) GetAll(ctx context.Context) ([]dao.User, error) {
	all := make([]dao.User, 0, len(r.byID))
	for _, u := range r.byID {
		all = append(all, u)
	}
	return all, nil
}

func (r *UsersRepository) Update(ctx context.Context, id uuid.UUID, u dao.User) (dao.User, error) {
	existing, ok := r.byID[id]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}

	if u.ID != id {
		if _, exists := r.byID[u.ID]; exists {
			return dao.User{}, dao.ErrConstraintViolation
		}
	}

	if !strings.EqualFold(existing.Username, u.Username) {
		if _, exists := r.byUsername[strings.ToLower(u.Username)]; exists {
			return dao.User{}, dao.ErrConstraintViolation
		}
		delete(r.byUsername, strings.ToLower(existing.Username))
		r.byUsername[strings.ToLower(u.Username)] = u.ID
	}

	u.Modified = time.Now()
	r.byID[u.ID] = u
	if u.ID != id {
		delete(r.byID, id)
		r.byUsername[strings.ToLower(u.Username)] = u.ID
	}
	return u, nil
}

func (r *UsersRepository) Delete(ctx context.Context, id uuid.UUID) (dao.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byUsername, strings.ToLower(u.Username))
	return u, nil
}
