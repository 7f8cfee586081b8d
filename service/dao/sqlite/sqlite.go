// Package sqlite provides a modernc.org/sqlite-backed dao.Store.
package sqlite

import (
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"

	"github.com/barscript/barscript/service/dao"
	"github.com/barscript/barscript/service/serr"
)

type store struct {
	db *sql.DB

	users   *UsersDB
	scripts *ScriptsDB
	runs    *RunsDB
}

// NewDatastore opens (creating if needed) a sqlite file under storageDir and
// returns a dao.Store backed by it.
func NewDatastore(storageDir string) (dao.Store, error) {
	file := filepath.Join(storageDir, "bars.db")

	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapDBError(err)
	}

	st := &store{db: db}
	st.users = &UsersDB{db: db}
	st.scripts = &ScriptsDB{db: db}
	st.runs = &RunsDB{db: db}

	for _, initializer := range []interface{ init() error }{st.users, st.scripts, st.runs} {
		if err := initializer.init(); err != nil {
			return nil, err
		}
	}

	return st, nil
}

func (s *store) Users() dao.UserRepository     { return s.users }
func (s *store) Scripts() dao.ScriptRepository { return s.scripts }
func (s *store) Runs() dao.RunRepository       { return s.runs }

func (s *store) Close() error {
	return s.db.Close()
}

func convertToDB_UUID(u uuid.UUID) string {
	return u.String()
}

func convertToDB_Time(t time.Time) int64 {
	return t.Unix()
}

func convertToDB_ByteSlice(b []byte) string {
	if len(b) < 1 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(b)
}

func convertFromDB_UUID(s string, target *uuid.UUID) error {
	u, err := uuid.Parse(s)
	if err != nil {
		return serr.New("", err, dao.ErrDecodingFailure)
	}
	*target = u
	return nil
}

func convertFromDB_Time(i int64, target *time.Time) error {
	*target = time.Unix(i, 0)
	return nil
}

func convertFromDB_ByteSlice(s string, target *[]byte) error {
	if s == "" {
		*target = nil
		return nil
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return serr.New("", err, dao.ErrDecodingFailure)
	}
	*target = decoded
	return nil
}

func wrapDBError(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return dao.ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return dao.ErrNotFound
	}
	return err
}
