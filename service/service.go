// Package service wires together the run service's dao.Store and HTTP API
// into a runnable server.
package service

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/barscript/barscript/config"
	"github.com/barscript/barscript/service/api"
	"github.com/barscript/barscript/service/dao"
	"github.com/barscript/barscript/service/middle"
)

// Service is a running BarScript run service: an HTTP router backed by a
// persistence layer.
type Service struct {
	router chi.Router
	db     dao.Store
}

// New builds a Service from cfg, connecting to its configured DB.
func New(cfg config.Config) (*Service, error) {
	cfg = cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := cfg.DB.Connect()
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	return NewWithStore(db, []byte(cfg.TokenSecret), cfg.UnauthDelay()), nil
}

// NewWithStore builds a Service around an already-connected store, useful
// for tests that want an in-memory backend without going through config.
func NewWithStore(db dao.Store, secret []byte, unauthDelay time.Duration) *Service {
	a := api.API{DB: db, Secret: secret, UnauthDelay: unauthDelay}

	r := chi.NewRouter()
	r.Use(middle.DontPanic())

	r.Route(api.PathPrefix, func(r chi.Router) {
		r.Get("/info", a.HTTPGetInfo())
		r.Post("/register", a.HTTPRegister())
		r.Post("/login", a.HTTPLogin())

		r.Group(func(r chi.Router) {
			r.Use(middle.RequireAuth(db.Users(), secret, unauthDelay))

			r.Post("/logout", a.HTTPLogout())

			r.Post("/scripts", a.HTTPCreateScript())
			r.Get("/scripts", a.HTTPListScripts())
			r.Get("/scripts/{id}", a.HTTPGetScript())
			r.Delete("/scripts/{id}", a.HTTPDeleteScript())

			r.Post("/scripts/{id}/runs", a.HTTPCreateRun())
			r.Get("/scripts/{id}/runs", a.HTTPListRuns())
			r.Get("/scripts/{id}/runs/{runID}", a.HTTPGetRun())
		})
	})

	return &Service{router: r, db: db}
}

func (s *Service) Handler() http.Handler {
	return s.router
}

func (s *Service) Close() error {
	return s.db.Close()
}

// ServeForever blocks serving HTTP on addr until the process is killed or
// the server errors out.
func (s *Service) ServeForever(addr string) error {
	log.Printf("barserver listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}
