package sqlite

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/barscript/barscript/service/dao"
)

type ScriptsDB struct {
	db *sql.DB
}

func (r *ScriptsDB) init() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS scripts (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		source TEXT NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL
	);`)
	return wrapDBError(err)
}

func (r *ScriptsDB) Close() error { return nil }

func (r *ScriptsDB) Create(ctx context.Context, s dao.Script) (dao.Script, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return dao.Script{}, err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO scripts (id, user_id, name, source, created, modified) VALUES (?, ?, ?, ?, ?, ?)`,
		convertToDB_UUID(id), convertToDB_UUID(s.UserID), s.Name, s.Source,
		convertToDB_Time(s.Created), convertToDB_Time(s.Modified))
	if err != nil {
		return dao.Script{}, wrapDBError(err)
	}

	return r.GetByID(ctx, id)
}

func (r *ScriptsDB) scan(row interface {
	Scan(dest ...interface{}) error
}) (dao.Script, error) {
	var s dao.Script
	var id, userID string
	var created, modified int64

	if err := row.Scan(&id, &userID, &s.Name, &s.Source, &created, &modified); err != nil {
		return dao.Script{}, wrapDBError(err)
	}

	if err := convertFromDB_UUID(id, &s.ID); err != nil {
		return dao.Script{}, err
	}
	if err := convertFromDB_UUID(userID, &s.UserID); err != nil {
		return dao.Script{}, err
	}
	convertFromDB_Time(created, &s.Created)
	convertFromDB_Time(modified, &s.Modified)

	return s, nil
}

func (r *ScriptsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Script, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, source, created, modified FROM scripts WHERE id = ?`,
		convertToDB_UUID(id))
	return r.scan(row)
}

func (r *ScriptsDB) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]dao.Script, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, source, created, modified FROM scripts WHERE user_id = ?`,
		convertToDB_UUID(userID))
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Script
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, s)
	}
	return all, nil
}

func (r *ScriptsDB) Update(ctx context.Context, id uuid.UUID, s dao.Script) (dao.Script, error) {
	_, err := r.db.ExecContext(ctx,
		`UPDATE scripts SET id = ?, user_id = ?, name = ?, source = ?, modified = ? WHERE id = ?`,
		convertToDB_UUID(s.ID), convertToDB_UUID(s.UserID), s.Name, s.Source,
		convertToDB_Time(s.Modified), convertToDB_UUID(id))
	if err != nil {
		return dao.Script{}, wrapDBError(err)
	}
	return r.GetByID(ctx, s.ID)
}

func (r *ScriptsDB) Delete(ctx context.Context, id uuid.UUID) (dao.Script, error) {
	s, err := r.GetByID(ctx, id)
	if err != nil {
		return dao.Script{}, err
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM scripts WHERE id = ?`, convertToDB_UUID(id))
	if err != nil {
		return dao.Script{}, wrapDBError(err)
	}
	return s, nil
}
