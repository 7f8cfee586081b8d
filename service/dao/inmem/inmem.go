// Package inmem provides an in-memory dao.Store, suitable for tests and for
// barserver instances that do not need persistence across restarts.
package inmem

import (
	"github.com/barscript/barscript/service/dao"
)

type store struct {
	users   *UsersRepository
	scripts *ScriptsRepository
	runs    *RunsRepository
}

// NewDatastore returns a dao.Store backed entirely by in-memory maps.
func NewDatastore() dao.Store {
	return &store{
		users:   NewUsersRepository(),
		scripts: NewScriptsRepository(),
		runs:    NewRunsRepository(),
	}
}

func (s *store) Users() dao.UserRepository     { return s.users }
func (s *store) Scripts() dao.ScriptRepository { return s.scripts }
func (s *store) Runs() dao.RunRepository       { return s.runs }

func (s *store) Close() error {
	return nil
}
