package sqlite

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/barscript/barscript/service/dao"
)

type UsersDB struct {
	db *sql.DB
}

func (r *UsersDB) init() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL,
		last_login INTEGER NOT NULL,
		last_logout INTEGER NOT NULL
	);`)
	return wrapDBError(err)
}

func (r *UsersDB) Close() error { return nil }

func (r *UsersDB) Create(ctx context.Context, u dao.User) (dao.User, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return dao.User{}, err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password, role, created, modified, last_login, last_logout) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		convertToDB_UUID(id), u.Username, u.Password, u.Role.String(),
		convertToDB_Time(u.Created), convertToDB_Time(u.Modified),
		convertToDB_Time(u.LastLoginTime), convertToDB_Time(u.LastLogoutTime),
	)
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}

	return r.GetByID(ctx, id)
}

func (r *UsersDB) scanRow(row *sql.Row) (dao.User, error) {
	var u dao.User
	var id, role string
	var created, modified, lastLogin, lastLogout int64

	err := row.Scan(&id, &u.Username, &u.Password, &role, &created, &modified, &lastLogin, &lastLogout)
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}

	if err := convertFromDB_UUID(id, &u.ID); err != nil {
		return dao.User{}, err
	}
	u.Role = dao.Normal
	if role == dao.Admin.String() {
		u.Role = dao.Admin
	}
	convertFromDB_Time(created, &u.Created)
	convertFromDB_Time(modified, &u.Modified)
	convertFromDB_Time(lastLogin, &u.LastLoginTime)
	convertFromDB_Time(lastLogout, &u.LastLogoutTime)

	return u, nil
}

func (r *UsersDB) GetByID(ctx context.Context, id uuid.UUID) (dao.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password, role, created, modified, last_login, last_logout FROM users WHERE id = ?`,
		convertToDB_UUID(id))
	return r.scanRow(row)
}

func (r *UsersDB) GetByUsername(ctx context.Context, username string) (dao.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password, role, created, modified, last_login, last_logout FROM users WHERE username = ?`,
		username)
	return r.scanRow(row)
}

func (r *UsersDB) GetAll(ctx context.Context) ([]dao.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, username, password, role, created, modified, last_login, last_logout FROM users`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.User
	for rows.Next() {
		var u dao.User
		var id, role string
		var created, modified, lastLogin, lastLogout int64
		if err := rows.Scan(&id, &u.Username, &u.Password, &role, &created, &modified, &lastLogin, &lastLogout); err != nil {
			return nil, wrapDBError(err)
		}
		if err := convertFromDB_UUID(id, &u.ID); err != nil {
			return nil, err
		}
		u.Role = dao.Normal
		if role == dao.Admin.String() {
			u.Role = dao.Admin
		}
		convertFromDB_Time(created, &u.Created)
		convertFromDB_Time(modified, &u.Modified)
		convertFromDB_Time(lastLogin, &u.LastLoginTime)
		convertFromDB_Time(lastLogout, &u.LastLogoutTime)
		all = append(all, u)
	}
	return all, nil
}

func (r *UsersDB) Update(ctx context.Context, id uuid.UUID, u dao.User) (dao.User, error) {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET id = ?, username = ?, password = ?, role = ?, modified = ?, last_login = ?, last_logout = ? WHERE id = ?`,
		convertToDB_UUID(u.ID), u.Username, u.Password, u.Role.String(),
		convertToDB_Time(u.Modified), convertToDB_Time(u.LastLoginTime), convertToDB_Time(u.LastLogoutTime),
		convertToDB_UUID(id))
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}
	return r.GetByID(ctx, u.ID)
}

func (r *UsersDB) Delete(ctx context.Context, id uuid.UUID) (dao.User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return dao.User{}, err
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, convertToDB_UUID(id))
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}
	return u, nil
}
