package api

import (
	"net/http"

	"github.com/barscript/barscript/runtime"
	"github.com/barscript/barscript/service/dao"
	"github.com/barscript/barscript/service/result"
)

// HTTPCreateRun returns a handler that feeds the posted rows through the
// script's compiled engine and persists the resulting plots and trades.
func (api API) HTTPCreateRun() http.HandlerFunc {
	return api.Endpoint(api.epCreateRun)
}

func (api API) epCreateRun(req *http.Request) result.Result {
	s, res := api.loadOwnedScript(req)
	if res != nil {
		return *res
	}

	var in RunCreateRequest
	if err := parseJSON(req, &in); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if len(in.Rows) == 0 {
		return result.BadRequest("rows: must contain at least one bar", "empty row feed")
	}

	eng, diags := runtime.Compile(s.Source)
	if diags.HasErrors() {
		// the script was previously validated at creation time; a later
		// failure here means the stdlib/grammar it depends on changed
		// underneath it, which is itself worth recording as a run.
		run, err := api.DB.Runs().Create(req.Context(), dao.Run{
			ScriptID:   s.ID,
			UserID:     s.UserID,
			Completed:  false,
			FatalError: diags.Error(),
		})
		if err != nil {
			return result.InternalServerError(err.Error())
		}
		return result.Created(toRunModel(run), "run of script '%s' failed to compile", s.Name)
	}

	ctx := runtime.NewContext()
	rows := make([]runtime.Row, len(in.Rows))
	for i, rm := range in.Rows {
		rows[i] = runtime.Row{
			TimeMs: rm.TimeMs,
			Open:   rm.Open,
			High:   rm.High,
			Low:    rm.Low,
			Close:  rm.Close,
			Volume: rm.Volume,
		}
	}

	runErr := eng.Run(ctx, rows)

	run := dao.Run{
		ScriptID:  s.ID,
		UserID:    s.UserID,
		Completed: runErr == nil,
		BarCount:  ctx.BarIndex,
		Plots:     make(map[string][]float64),
	}
	if runErr != nil {
		run.FatalError = runErr.Error()
	}
	for _, title := range ctx.Plots.Titles() {
		run.Plots[title] = ctx.Plots.Series(title)
	}
	for _, t := range ctx.Book.Trades {
		run.Trades = append(run.Trades, dao.TradeRecord{
			EntryTime:  t.EntryTime,
			EntryPrice: t.EntryPrice,
			ExitTime:   t.ExitTime,
			ExitPrice:  t.ExitPrice,
			Quantity:   t.Quantity,
			PnL:        t.PnL,
			Direction:  t.Direction.String(),
		})
	}

	saved, err := api.DB.Runs().Create(req.Context(), run)
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	return result.Created(toRunModel(saved), "ran script '%s' over %d bar(s)", s.Name, saved.BarCount)
}

// HTTPGetRun returns a handler that fetches a single run by ID, as long as
// it belongs to a script owned by the calling user.
func (api API) HTTPGetRun() http.HandlerFunc {
	return api.Endpoint(api.epGetRun)
}

func (api API) epGetRun(req *http.Request) result.Result {
	_, res := api.loadOwnedScript(req)
	if res != nil {
		return *res
	}

	runID := requireIDParam(req, "runID")
	run, err := api.DB.Runs().GetByID(req.Context(), runID)
	if err != nil {
		return result.NotFound()
	}

	return result.OK(toRunModel(run))
}

// HTTPListRuns returns a handler that lists every run recorded for a
// script owned by the calling user.
func (api API) HTTPListRuns() http.HandlerFunc {
	return api.Endpoint(api.epListRuns)
}

func (api API) epListRuns(req *http.Request) result.Result {
	s, res := api.loadOwnedScript(req)
	if res != nil {
		return *res
	}

	all, err := api.DB.Runs().GetAllByScript(req.Context(), s.ID)
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	models := make([]RunModel, len(all))
	for i, r := range all {
		models[i] = toRunModel(r)
	}
	return result.OK(models, "listed %d run(s) for script '%s'", len(models), s.Name)
}

func toRunModel(r dao.Run) RunModel {
	trades := make([]TradeModel, len(r.Trades))
	for i, t := range r.Trades {
		trades[i] = TradeModel{
			EntryTime:  t.EntryTime,
			EntryPrice: t.EntryPrice,
			ExitTime:   t.ExitTime,
			ExitPrice:  t.ExitPrice,
			Quantity:   t.Quantity,
			PnL:        t.PnL,
			Direction:  t.Direction,
		}
	}

	return RunModel{
		ID:         r.ID.String(),
		ScriptID:   r.ScriptID.String(),
		Created:    r.Created.Format("2006-01-02T15:04:05Z07:00"),
		Completed:  r.Completed,
		BarCount:   r.BarCount,
		FatalError: r.FatalError,
		Plots:      r.Plots,
		Trades:     trades,
	}
}
