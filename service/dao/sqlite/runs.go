package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dekarrin/rezi"
	"github.com/google/uuid"

	"github.com/barscript/barscript/service/dao"
	"github.com/barscript/barscript/service/serr"
)

type RunsDB struct {
	db *sql.DB
}

func (r *RunsDB) init() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT NOT NULL PRIMARY KEY,
		script_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		created INTEGER NOT NULL,
		completed INTEGER NOT NULL,
		bar_count INTEGER NOT NULL,
		fatal_error TEXT NOT NULL,
		result_data TEXT NOT NULL
	);`)
	return wrapDBError(err)
}

func (r *RunsDB) Close() error { return nil }

// resultPayload is the part of a Run that's encoded as a single REZI-wrapped
// blob rather than its own columns: unlike the fixed scalar fields, its shape
// (series count, trade count) varies per run.
type resultPayload struct {
	Plots  map[string][]float64
	Trades []dao.TradeRecord
}

func (p resultPayload) MarshalBinary() ([]byte, error) {
	return json.Marshal(p)
}

func (p *resultPayload) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, p)
}

func encodeResult(run dao.Run) string {
	payload := resultPayload{Plots: run.Plots, Trades: run.Trades}
	return convertToDB_ByteSlice(rezi.EncBinary(payload))
}

func decodeResult(s string, run *dao.Run) error {
	var raw []byte
	if err := convertFromDB_ByteSlice(s, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	var payload resultPayload
	n, err := rezi.DecBinary(raw, &payload)
	if err != nil {
		return serr.New("REZI decode run result", err, dao.ErrDecodingFailure)
	}
	if n != len(raw) {
		return serr.New(fmt.Sprintf("REZI decoded byte count mismatch; consumed %d/%d bytes", n, len(raw)), dao.ErrDecodingFailure)
	}

	run.Plots = payload.Plots
	run.Trades = payload.Trades
	return nil
}

func (r *RunsDB) Create(ctx context.Context, run dao.Run) (dao.Run, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return dao.Run{}, err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO runs (id, script_id, user_id, created, completed, bar_count, fatal_error, result_data) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		convertToDB_UUID(id), convertToDB_UUID(run.ScriptID), convertToDB_UUID(run.UserID),
		convertToDB_Time(run.Created), run.Completed, run.BarCount, run.FatalError, encodeResult(run))
	if err != nil {
		return dao.Run{}, wrapDBError(err)
	}

	return r.GetByID(ctx, id)
}

func (r *RunsDB) scan(row interface {
	Scan(dest ...interface{}) error
}) (dao.Run, error) {
	var run dao.Run
	var id, scriptID, userID, resultData string
	var created int64

	if err := row.Scan(&id, &scriptID, &userID, &created, &run.Completed, &run.BarCount, &run.FatalError, &resultData); err != nil {
		return dao.Run{}, wrapDBError(err)
	}

	if err := convertFromDB_UUID(id, &run.ID); err != nil {
		return dao.Run{}, err
	}
	if err := convertFromDB_UUID(scriptID, &run.ScriptID); err != nil {
		return dao.Run{}, err
	}
	if err := convertFromDB_UUID(userID, &run.UserID); err != nil {
		return dao.Run{}, err
	}
	convertFromDB_Time(created, &run.Created)

	if err := decodeResult(resultData, &run); err != nil {
		return dao.Run{}, err
	}

	return run, nil
}

func (r *RunsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Run, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, script_id, user_id, created, completed, bar_count, fatal_error, result_data FROM runs WHERE id = ?`,
		convertToDB_UUID(id))
	return r.scan(row)
}

func (r *RunsDB) GetAllByScript(ctx context.Context, scriptID uuid.UUID) ([]dao.Run, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, script_id, user_id, created, completed, bar_count, fatal_error, result_data FROM runs WHERE script_id = ?`,
		convertToDB_UUID(scriptID))
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Run
	for rows.Next() {
		run, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, run)
	}
	return all, nil
}

func (r *RunsDB) Update(ctx context.Context, id uuid.UUID, run dao.Run) (dao.Run, error) {
	_, err := r.db.ExecContext(ctx,
		`UPDATE runs SET completed = ?, bar_count = ?, fatal_error = ?, result_data = ? WHERE id = ?`,
		run.Completed, run.BarCount, run.FatalError, encodeResult(run), convertToDB_UUID(id))
	if err != nil {
		return dao.Run{}, wrapDBError(err)
	}
	return r.GetByID(ctx, id)
}

func (r *RunsDB) Delete(ctx context.Context, id uuid.UUID) (dao.Run, error) {
	run, err := r.GetByID(ctx, id)
	if err != nil {
		return dao.Run{}, err
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, convertToDB_UUID(id))
	if err != nil {
		return dao.Run{}, wrapDBError(err)
	}
	return run, nil
}
