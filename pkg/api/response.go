package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/batcomd/batcomd/pkg/intel"
)

// ErrorResponse is the JSON body for every error the API returns.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// statusCoder is implemented by domain errors that know their HTTP
// status.
type statusCoder interface {
	error
	StatusCode() int
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, &ErrorResponse{
		Error:  errorCode(status),
		Detail: detail,
	})
}

// writeDomainError maps a component error onto an HTTP response. Typed
// errors carry their own status; anything else is a 500.
func (a *API) writeDomainError(w http.ResponseWriter, err error) {
	var sc statusCoder
	if errors.As(err, &sc) {
		writeError(w, sc.StatusCode(), userMessage(sc))
		return
	}

	a.log.Error("unhandled error", "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error.")
}

// userMessage renders a typed error as the client-facing detail string.
func userMessage(err error) string {
	switch e := err.(type) {
	case *httpError:
		return e.Detail
	default:
		return capitalizeSentence(err.Error())
	}
}

// writeIntelError maps intel client failures. Transport failures are
// 503, upstream 404 stays 404, anything else relays as 502.
func writeIntelError(w http.ResponseWriter, err error, notFoundDetail string) {
	switch e := err.(type) {
	case *intel.UnavailableError:
		writeError(w, http.StatusServiceUnavailable,
			"External intel feed request failed: "+e.Cause.Error())
	case *intel.UpstreamError:
		writeError(w, http.StatusBadGateway, e.Error())
	default:
		if errors.Is(err, intel.ErrNotFound) {
			writeError(w, http.StatusNotFound, notFoundDetail)
			return
		}
		// Decode failures and the like; the internal error stays in
		// the log, not the response.
		writeError(w, http.StatusBadGateway, "External intel feed returned malformed data.")
	}
}

// httpError is a one-off error with an explicit status and detail,
// used by the identity chain.
type httpError struct {
	Status int
	Detail string
}

func (e *httpError) Error() string {
	return e.Detail
}

// StatusCode returns the HTTP status code for this error.
func (e *httpError) StatusCode() int {
	return e.Status
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusBadGateway:
		return "bad_gateway"
	case http.StatusServiceUnavailable:
		return "service_unavailable"
	default:
		return "internal_error"
	}
}

func capitalizeSentence(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	out := string(b)
	if out[len(out)-1] != '.' {
		out += "."
	}
	return out
}
