package inmem

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/barscript/barscript/service/dao"
)

func NewRunsRepository() *RunsRepository {
	return &RunsRepository{
		byID:       make(map[uuid.UUID]dao.Run),
		byScriptID: make(map[uuid.UUID][]uuid.UUID),
	}
}

type RunsRepository struct {
	byID       map[uuid.UUID]dao.Run
	byScriptID map[uuid.UUID][]uuid.UUID
}

func (r *RunsRepository) Close() error { return nil }

func (r *RunsRepository) Create(ctx context.Context, run dao.Run) (dao.Run, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return dao.Run{}, fmt.Errorf("could not generate ID: %w", err)
	}

	run.ID = id
	run.Created = time.Now()

	r.byID[run.ID] = run
	r.byScriptID[run.ScriptID] = append(r.byScriptID[run.ScriptID], run.ID)
	return run, nil
}

func (r *RunsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Run, error) {
	run, ok := r.byID[id]
	if !ok {
		return dao.Run{}, dao.ErrNotFound
	}
	return run, nil
}

func (r *RunsRepository) GetAllByScript(ctx context.Context, scriptID uuid.UUID) ([]dao.Run, error) {
	ids := r.byScriptID[scriptID]
	all := make([]dao.Run, 0, len(ids))
	for _, id := range ids {
		all = append(all, r.byID[id])
	}
	return all, nil
}

func (r *RunsRepository) Update(ctx context.Context, id uuid.UUID, run dao.Run) (dao.Run, error) {
	if _, ok := r.byID[id]; !ok {
		return dao.Run{}, dao.ErrNotFound
	}
	r.byID[id] = run
	return run, nil
}

func (r *RunsRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Run, error) {
	run, ok := r.byID[id]
	if !ok {
		return dao.Run{}, dao.ErrNotFound
	}
	delete(r.byID, id)

	ids := r.byScriptID[run.ScriptID]
	for i, other := range ids {
		if other == id {
			r.byScriptID[run.ScriptID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return run, nil
}
