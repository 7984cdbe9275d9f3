package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/mergington/activities/internal/domain"
	"github.com/mergington/activities/internal/pkg/httputil"
	"github.com/mergington/activities/internal/pkg/logger"
	"github.com/mergington/activities/internal/roster"
)

const (
	opSignup     = "signup"
	opUnregister = "unregister"
)

// ListActivities returns every activity keyed by name.
//
//	GET /activities
func (h *Handlers) ListActivities(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, h.registry.List())
}

// GetActivity returns a single activity.
//
//	GET /activities/{activityName}
func (h *Handlers) GetActivity(w http.ResponseWriter, r *http.Request) {
	a, err := h.registry.Get(activityName(r))
	if err != nil {
		h.writeRosterError(w, "get", err)
		return
	}
	httputil.OK(w, a)
}

// Signup adds a student to an activity.
//
//	POST /activities/{activityName}/signup?email=
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, opSignup, h.registry.Signup)
}

// Unregister removes a student from an activity.
//
//	POST /activities/{activityName}/unregister?email=
func (h *Handlers) Unregister(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, opUnregister, h.registry.Unregister)
}

func (h *Handlers) mutate(w http.ResponseWriter, r *http.Request, op string,
	fn func(activity, email string) (domain.Confirmation, error)) {
	q := r.URL.Query()
	if !q.Has("email") {
		h.observeError(op, httputil.CodeValidation)
		httputil.Unprocessable(w, "email query parameter is required")
		return
	}
	name, email := activityName(r), q.Get("email")

	conf, err := fn(name, email)
	if err != nil {
		h.writeRosterError(w, op, err)
		return
	}

	logger.Info("roster updated", "operation", op, "activity", name, "email", email)
	httputil.OK(w, conf)
}

// writeRosterError maps registry errors to HTTP responses.
func (h *Handlers) writeRosterError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, roster.ErrNotFound):
		h.observeError(op, httputil.CodeNotFound)
		httputil.NotFound(w, err.Error())
	case errors.Is(err, roster.ErrAlreadyRegistered):
		h.observeError(op, httputil.CodeAlreadyRegistered)
		httputil.BadRequest(w, httputil.CodeAlreadyRegistered, err.Error())
	case errors.Is(err, roster.ErrNotRegistered):
		h.observeError(op, httputil.CodeNotRegistered)
		httputil.BadRequest(w, httputil.CodeNotRegistered, err.Error())
	default:
		h.observeError(op, httputil.CodeInternal)
		httputil.InternalError(w, err)
	}
}

func (h *Handlers) observeError(op, reason string) {
	if h.recorder != nil {
		h.recorder.ObserveError(op, reason)
	}
}

// activityName returns the decoded {activityName} path segment. chi matches
// against the escaped path when the URL carries one (e.g. %2F), so decode it
// here; otherwise the router already sees the decoded form.
func activityName(r *http.Request) string {
	name := chi.URLParam(r, "activityName")
	if r.URL.RawPath == "" {
		return name
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}
