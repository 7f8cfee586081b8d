// Package result holds the HTTP response envelope used by the run service's
// API handlers.
package result

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// Result is the outcome of an API endpoint call: an HTTP status, the body to
// marshal (or a redirect target), and an internal message used only for
// logging.
type Result struct {
	Status      int
	IsErr       bool
	IsJSON      bool
	InternalMsg string

	resp  interface{}
	redir string
	hdrs  [][2]string

	respJSONBytes []byte
}

func msgFrom(internalMsg []interface{}, fallback string) (string, []interface{}) {
	if len(internalMsg) == 0 {
		return fallback, nil
	}
	fmtStr, ok := internalMsg[0].(string)
	if !ok {
		return fallback, nil
	}
	return fmtStr, internalMsg[1:]
}

func OK(respObj interface{}, internalMsg ...interface{}) Result {
	fmtStr, args := msgFrom(internalMsg, "OK")
	return Response(http.StatusOK, respObj, fmtStr, args...)
}

func NoContent(internalMsg ...interface{}) Result {
	fmtStr, args := msgFrom(internalMsg, "no content")
	return Response(http.StatusNoContent, nil, fmtStr, args...)
}

func Created(respObj interface{}, internalMsg ...interface{}) Result {
	fmtStr, args := msgFrom(internalMsg, "created")
	return Response(http.StatusCreated, respObj, fmtStr, args...)
}

func Conflict(userMsg string, internalMsg ...interface{}) Result {
	fmtStr, args := msgFrom(internalMsg, "conflict")
	return Err(http.StatusConflict, userMsg, fmtStr, args...)
}

func BadRequest(userMsg string, internalMsg ...interface{}) Result {
	fmtStr, args := msgFrom(internalMsg, "bad request")
	return Err(http.StatusBadRequest, userMsg, fmtStr, args...)
}

func NotFound(internalMsg ...interface{}) Result {
	fmtStr, args := msgFrom(internalMsg, "not found")
	return Err(http.StatusNotFound, "The requested resource was not found", fmtStr, args...)
}

func Forbidden(internalMsg ...interface{}) Result {
	fmtStr, args := msgFrom(internalMsg, "forbidden")
	return Err(http.StatusForbidden, "You don't have permission to do that", fmtStr, args...)
}

func Unauthorized(userMsg string, internalMsg ...interface{}) Result {
	fmtStr, args := msgFrom(internalMsg, "unauthorized")
	if userMsg == "" {
		userMsg = "You are not authorized to do that"
	}
	return Err(http.StatusUnauthorized, userMsg, fmtStr, args...).
		WithHeader("WWW-Authenticate", `Bearer realm="barscript run service", charset="utf-8"`)
}

func InternalServerError(internalMsg ...interface{}) Result {
	fmtStr, args := msgFrom(internalMsg, "internal server error")
	return Err(http.StatusInternalServerError, "An internal server error occurred", fmtStr, args...)
}

func Response(status int, respObj interface{}, internalMsg string, v ...interface{}) Result {
	return Result{
		IsJSON:      true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp:        respObj,
	}
}

func Err(status int, userMsg, internalMsg string, v ...interface{}) Result {
	return Result{
		IsJSON:      true,
		IsErr:       true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp:        ErrorResponse{Error: userMsg, Status: status},
	}
}

func TextErr(status int, userMsg, internalMsg string, v ...interface{}) Result {
	return Result{
		IsErr:       true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp:        userMsg,
	}
}

func (r Result) WithHeader(name, val string) Result {
	r.hdrs = append(append([][2]string{}, r.hdrs...), [2]string{name, val})
	return r
}

// PrepareMarshaledResponse pre-marshals the JSON body so WriteResponse cannot
// fail partway through writing headers.
func (r *Result) PrepareMarshaledResponse() error {
	if r.respJSONBytes != nil {
		return nil
	}
	if r.IsJSON && r.Status != http.StatusNoContent && r.redir == "" {
		var err error
		r.respJSONBytes, err = json.Marshal(r.resp)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r Result) WriteResponse(w http.ResponseWriter) {
	if r.Status == 0 {
		panic("result not populated")
	}

	if err := r.PrepareMarshaledResponse(); err != nil {
		panic(fmt.Sprintf("could not marshal response: %s", err.Error()))
	}

	var respBytes []byte
	if r.IsJSON {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if r.redir == "" {
			respBytes = r.respJSONBytes
		}
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if r.Status != http.StatusNoContent && r.redir == "" {
			respBytes = []byte(fmt.Sprintf("%v", r.resp))
		}
	}

	if r.redir != "" {
		w.Header().Set("Location", r.redir)
	}
	for _, h := range r.hdrs {
		w.Header().Set(h[0], h[1])
	}

	w.WriteHeader(r.Status)
	if r.Status != http.StatusNoContent {
		w.Write(respBytes)
	}
}

// Log writes a one-line summary of the result against req to the standard
// logger.
func (r Result) Log(req *http.Request) {
	level := "INFO "
	if r.IsErr {
		level = "ERROR"
	}

	remoteIP := strings.SplitN(req.RemoteAddr, ":", 2)[0]
	log.Printf("%s %s %s %s: HTTP-%d %s", level, remoteIP, req.Method, req.URL.Path, r.Status, r.InternalMsg)
}
