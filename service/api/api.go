// Package api provides the HTTP handlers for the BarScript run service.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/barscript/barscript/service/dao"
	"github.com/barscript/barscript/service/result"
	"github.com/barscript/barscript/service/serr"
)

// PathPrefix is the prefix every route in this package is mounted under.
const PathPrefix = "/api/v1"

// API holds everything an endpoint handler needs: the persistence layer, the
// secret used to sign auth tokens, and how long to stall unauthorized
// responses by.
type API struct {
	DB          dao.Store
	Secret      []byte
	UnauthDelay time.Duration
}

type EndpointFunc func(req *http.Request) result.Result

// Endpoint adapts an EndpointFunc into an http.HandlerFunc: it recovers
// panics into an HTTP-500, logs the outcome, and stalls responses that
// indicate a failed or forbidden auth attempt.
func (api API) Endpoint(ep EndpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer api.panicTo500(w, req)
		r := ep(req)

		if r.Status == 0 {
			result.InternalServerError("endpoint result was never populated").WriteResponse(w)
			return
		}

		if err := r.PrepareMarshaledResponse(); err != nil {
			result.InternalServerError("could not marshal JSON response: " + err.Error()).WriteResponse(w)
			return
		}

		r.Log(req)

		if r.Status == http.StatusUnauthorized || r.Status == http.StatusForbidden || r.Status == http.StatusInternalServerError {
			time.Sleep(api.UnauthDelay)
		}

		r.WriteResponse(w)
	}
}

func (api API) panicTo500(w http.ResponseWriter, req *http.Request) (recovered bool) {
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

func requireIDParam(r *http.Request, key string) uuid.UUID {
	id, err := getURLParam(r, key, uuid.Parse)
	if err != nil {
		panic(err.Error())
	}
	return id
}

func getURLParam[E any](r *http.Request, key string, parse func(string) (E, error)) (val E, err error) {
	valStr := chi.URLParam(r, key)
	if valStr == "" {
		return val, fmt.Errorf("parameter does not exist")
	}
	val, err = parse(valStr)
	if err != nil {
		return val, serr.New("", serr.ErrBadArgument)
	}
	return val, nil
}

// parseJSON decodes the JSON body of req into v, which must be a pointer.
func parseJSON(req *http.Request, v interface{}) error {
	contentType := req.Header.Get("Content-Type")
	if !strings.EqualFold(contentType, "application/json") {
		return fmt.Errorf("request content-type is not application/json")
	}

	bodyData, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}
	defer func() {
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewBuffer(bodyData))
	}()

	if err := json.Unmarshal(bodyData, v); err != nil {
		return serr.New("malformed JSON in request", err, serr.ErrBodyUnmarshal)
	}
	return nil
}
