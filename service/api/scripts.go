package api

import (
	"errors"
	"net/http"

	"github.com/barscript/barscript/runtime"
	"github.com/barscript/barscript/service/dao"
	"github.com/barscript/barscript/service/middle"
	"github.com/barscript/barscript/service/result"
)

// HTTPCreateScript returns a handler that compiles and saves a new script
// for the calling user. Compile diagnostics are returned as an HTTP-400
// rather than persisting a script that can never run.
func (api API) HTTPCreateScript() http.HandlerFunc {
	return api.Endpoint(api.epCreateScript)
}

func (api API) epCreateScript(req *http.Request) result.Result {
	var in ScriptCreateRequest
	if err := parseJSON(req, &in); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if in.Name == "" {
		return result.BadRequest("name: property is empty or missing from request", "empty name")
	}

	if _, diags := runtime.Compile(in.Source); diags.HasErrors() {
		return result.BadRequest("script does not compile: "+diags.Error(), "compile error for script '%s': %s", in.Name, diags.Error())
	}

	user := req.Context().Value(middle.AuthUser).(dao.User)
	s, err := api.DB.Scripts().Create(req.Context(), dao.Script{
		UserID: user.ID,
		Name:   in.Name,
		Source: in.Source,
	})
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	return result.Created(toScriptModel(s), "user '%s' created script '%s'", user.Username, s.Name)
}

// HTTPGetScript returns a handler that fetches one of the calling user's
// scripts by ID.
func (api API) HTTPGetScript() http.HandlerFunc {
	return api.Endpoint(api.epGetScript)
}

func (api API) epGetScript(req *http.Request) result.Result {
	s, res := api.loadOwnedScript(req)
	if res != nil {
		return *res
	}
	return result.OK(toScriptModel(s))
}

// HTTPListScripts returns a handler that lists all of the calling user's
// scripts.
func (api API) HTTPListScripts() http.HandlerFunc {
	return api.Endpoint(api.epListScripts)
}

func (api API) epListScripts(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)
	all, err := api.DB.Scripts().GetAllByUser(req.Context(), user.ID)
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	models := make([]ScriptModel, len(all))
	for i, s := range all {
		models[i] = toScriptModel(s)
	}
	return result.OK(models, "listed %d script(s) for user '%s'", len(models), user.Username)
}

// HTTPDeleteScript returns a handler that deletes one of the calling user's
// scripts.
func (api API) HTTPDeleteScript() http.HandlerFunc {
	return api.Endpoint(api.epDeleteScript)
}

func (api API) epDeleteScript(req *http.Request) result.Result {
	s, res := api.loadOwnedScript(req)
	if res != nil {
		return *res
	}

	if _, err := api.DB.Scripts().Delete(req.Context(), s.ID); err != nil {
		return result.InternalServerError(err.Error())
	}
	return result.NoContent("deleted script '%s'", s.Name)
}

// loadOwnedScript fetches the script named by the URL's id parameter and
// confirms it belongs to the calling user, returning a Result to send back
// immediately if that fails.
func (api API) loadOwnedScript(req *http.Request) (dao.Script, *result.Result) {
	id := requireIDParam(req, "id")
	user := req.Context().Value(middle.AuthUser).(dao.User)

	s, err := api.DB.Scripts().GetByID(req.Context(), id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			r := result.NotFound()
			return dao.Script{}, &r
		}
		r := result.InternalServerError(err.Error())
		return dao.Script{}, &r
	}

	if s.UserID != user.ID {
		r := result.Forbidden("user '%s' tried to access script %s owned by another user", user.Username, s.ID)
		return dao.Script{}, &r
	}

	return s, nil
}

func toScriptModel(s dao.Script) ScriptModel {
	return ScriptModel{
		ID:       s.ID.String(),
		Name:     s.Name,
		Source:   s.Source,
		Created:  s.Created.Format("2006-01-02T15:04:05Z07:00"),
		Modified: s.Modified.Format("2006-01-02T15:04:05Z07:00"),
	}
}
