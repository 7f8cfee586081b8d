package inmem

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/barscript/barscript/service/dao"
)

func NewScriptsRepository() *ScriptsRepository {
	return &ScriptsRepository{
		byID:     make(map[uuid.UUID]dao.Script),
		byUserID: make(map[uuid.UUID][]uuid.UUID),
	}
}

type ScriptsRepository struct {
	byID     map[uuid.UUID]dao.Script
	byUserID map[uuid.UUID][]uuid.UUID
}

func (r *ScriptsRepository) Close() error { return nil }

func (r *ScriptsRepository) Create(ctx context.Context, s dao.Script) (dao.Script, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return dao.Script{}, fmt.Errorf("could not generate ID: %w", err)
	}

	now := time.Now()
	s.ID = id
	s.Created = now
	s.Modified = now

	r.byID[s.ID] = s
	r.byUserID[s.UserID] = append(r.byUserID[s.UserID], s.ID)
	return s, nil
}

func (r *ScriptsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Script, error) {
	s, ok := r.byID[id]
	if !ok {
		return dao.Script{}, dao.ErrNotFound
	}
	return s, nil
}

func (r *ScriptsRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]dao.Script, error) {
	ids := r.byUserID[userID]
	all := make([]dao.Script, 0, len(ids))
	for _, id := range ids {
		all = append(all, r.byID[id])
	}
	return all, nil
}

func (r *ScriptsRepository) Update(ctx context.Context, id uuid.UUID, s dao.Script) (dao.Script, error) {
	if _, ok := r.byID[id]; !ok {
		return dao.Script{}, dao.ErrNotFound
	}
	s.Modified = time.Now()
	r.byID[id] = s
	return s, nil
}

func (r *ScriptsRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Script, error) {
	s, ok := r.byID[id]
	if !ok {
		return dao.Script{}, dao.ErrNotFound
	}
	delete(r.byID, id)

	ids := r.byUserID[s.UserID]
	for i, other := range ids {
		if other == id {
			r.byUserID[s.UserID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return s, nil
}
