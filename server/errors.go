package server

import (
	"net/http"

	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/lenserr"
)

// statusFor maps an engine error to an HTTP status.
//
// Input errors are the caller's fault (400). Resolution errors mean the
// request was well formed but the rules leave it ambiguous (422). Load
// errors only come from reloads (409: the active snapshot was kept).
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrNoSnapshot):
		return http.StatusServiceUnavailable
	case errors.IsInvalidRequestError(err):
		return http.StatusBadRequest
	}

	le, ok := lenserr.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch le.Category() {
	case lenserr.CategoryInput:
		if le.Kind == lenserr.KindUnknownIntent || le.Kind == lenserr.KindUnknownTable {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	case lenserr.CategoryResolution:
		return http.StatusUnprocessableEntity
	case lenserr.CategoryLoad:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeEngineError writes err with its kind, context and hint when it is a
// structured engine error, or a plain message otherwise.
func (s *LensServer) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		s.logger.Errorw("Request failed", "path", r.URL.Path, "error", err)
	}

	if le, ok := lenserr.As(err); ok {
		writeJSON(w, status, le.ToMap())
		return
	}

	body := map[string]interface{}{"error": err.Error()}
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		body["hint"] = hints[0]
	}
	writeJSON(w, status, body)
}
