package api

import (
	"errors"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/barscript/barscript/service/dao"
	"github.com/barscript/barscript/service/middle"
	"github.com/barscript/barscript/service/result"
	"github.com/barscript/barscript/service/serr"
	"github.com/barscript/barscript/service/token"
)

// HTTPRegister returns a handler that creates a new account.
func (api API) HTTPRegister() http.HandlerFunc {
	return api.Endpoint(api.epRegister)
}

func (api API) epRegister(req *http.Request) result.Result {
	var in RegisterRequest
	if err := parseJSON(req, &in); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if in.Username == "" {
		return result.BadRequest("username: property is empty or missing from request", "empty username")
	}
	if len(in.Password) < 8 {
		return result.BadRequest("password: must be at least 8 characters", "password too short")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return result.InternalServerError("hash password: " + err.Error())
	}

	now := time.Now()
	u, err := api.DB.Users().Create(req.Context(), dao.User{
		Username:       in.Username,
		Password:       string(hash),
		Role:           dao.Normal,
		LastLoginTime:  now,
		LastLogoutTime: now,
	})
	if err != nil {
		if errors.Is(err, dao.ErrConstraintViolation) {
			return result.Conflict("a user with that username already exists", "username '%s' already registered", in.Username)
		}
		return result.InternalServerError(err.Error())
	}

	return result.Created(toUserModel(u), "registered user '%s'", u.Username)
}

// HTTPLogin returns a handler that authenticates a username/password pair
// and returns a bearer token for it.
func (api API) HTTPLogin() http.HandlerFunc {
	return api.Endpoint(api.epLogin)
}

func (api API) epLogin(req *http.Request) result.Result {
	var in LoginRequest
	if err := parseJSON(req, &in); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	u, err := api.DB.Users().GetByUsername(req.Context(), in.Username)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return result.Unauthorized(serr.ErrBadCredentials.Error(), "user '%s' not found", in.Username)
		}
		return result.InternalServerError(err.Error())
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)); err != nil {
		return result.Unauthorized(serr.ErrBadCredentials.Error(), "user '%s': bad password", in.Username)
	}

	u.LastLoginTime = time.Now()
	u, err = api.DB.Users().Update(req.Context(), u.ID, u)
	if err != nil {
		return result.InternalServerError("record login time: " + err.Error())
	}

	tok, err := token.Generate(api.Secret, u)
	if err != nil {
		return result.InternalServerError("generate token: " + err.Error())
	}

	return result.Created(LoginResponse{Token: tok, UserID: u.ID.String()}, "user '%s' logged in", u.Username)
}

// HTTPLogout returns a handler that invalidates every token previously
// issued to the calling user by bumping their signing salt.
func (api API) HTTPLogout() http.HandlerFunc {
	return api.Endpoint(api.epLogout)
}

func (api API) epLogout(req *http.Request) result.Result {
	u := req.Context().Value(middle.AuthUser).(dao.User)
	u.LastLogoutTime = time.Now()

	if _, err := api.DB.Users().Update(req.Context(), u.ID, u); err != nil {
		return result.InternalServerError("record logout time: " + err.Error())
	}

	return result.NoContent("user '%s' logged out", u.Username)
}

func toUserModel(u dao.User) UserModel {
	return UserModel{ID: u.ID.String(), Username: u.Username, Role: u.Role.String()}
}
