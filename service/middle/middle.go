// Package middle contains HTTP middleware for the run service.
package middle

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/barscript/barscript/service/dao"
	"github.com/barscript/barscript/service/result"
	"github.com/barscript/barscript/service/token"
)

type Middleware func(next http.Handler) http.Handler

type AuthKey int64

const (
	AuthLoggedIn AuthKey = iota
	AuthUser
)

type authHandler struct {
	db            dao.UserRepository
	secret        []byte
	required      bool
	unauthedDelay time.Duration
	next          http.Handler
}

func (ah *authHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var loggedIn bool
	var user dao.User

	tok, err := token.Get(req)
	if err != nil {
		if ah.required {
			r := result.Unauthorized("", err.Error())
			time.Sleep(ah.unauthedDelay)
			r.WriteResponse(w)
			r.Log(req)
			return
		}
	} else {
		lookupUser, err := token.Validate(req.Context(), tok, ah.secret, ah.db)
		if err != nil {
			if ah.required {
				r := result.Unauthorized("", err.Error())
				time.Sleep(ah.unauthedDelay)
				r.WriteResponse(w)
				r.Log(req)
				return
			}
		} else {
			user = lookupUser
			loggedIn = true
		}
	}

	ctx := req.Context()
	ctx = context.WithValue(ctx, AuthLoggedIn, loggedIn)
	ctx = context.WithValue(ctx, AuthUser, user)
	ah.next.ServeHTTP(w, req.WithContext(ctx))
}

// RequireAuth rejects any request without a valid bearer token for a known
// user before it reaches next.
func RequireAuth(db dao.UserRepository, secret []byte, unauthDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return &authHandler{db: db, secret: secret, unauthedDelay: unauthDelay, required: true, next: next}
	}
}

// OptionalAuth attaches AuthUser/AuthLoggedIn to the request context if a
// valid token is present, but never rejects the request for lacking one.
func OptionalAuth(db dao.UserRepository, secret []byte, unauthDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return &authHandler{db: db, secret: secret, unauthedDelay: unauthDelay, required: false, next: next}
	}
}

// DontPanic recovers from a panic in the wrapped handler and writes an
// HTTP-500 instead of crashing the server.
func DontPanic() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer panicTo500(w, r)
			next.ServeHTTP(w, r)
		})
	}
}

func panicTo500(w http.ResponseWriter, req *http.Request) (recovered bool) {
	if panicErr := recover(); panicErr != nil {
		r := result.TextErr(
			http.StatusInternalServerError,
			"An internal server error occurred",
			fmt.Sprintf("panic: %v\nSTACK TRACE: %s", panicErr, string(debug.Stack())),
		)
		r.WriteResponse(w)
		r.Log(req)
		return true
	}
	return false
}
