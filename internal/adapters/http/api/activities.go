package api

import (
	"context"
	"net/http"

	"github.com/okian/mergington/pkg/logger"
)

// ActivitiesHandler serves the catalog and the roster mutations.
type ActivitiesHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewActivitiesHandler creates a new activities handler.
func NewActivitiesHandler(deps Dependencies, log logger.Logger) *ActivitiesHandler {
	return &ActivitiesHandler{deps: deps, log: log}
}

// HandleList handles GET /activities.
func (h *ActivitiesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_activities"
	catalog, err := h.deps.Activities(r.Context())
	if err != nil {
		h.fail(r.Context(), w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

// HandleSignup handles POST /activities/{name}/signup?email=.
func (h *ActivitiesHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	const op = "api.signup"
	h.mutate(w, r, op, h.deps.Signup)
}

// HandleUnregister handles DELETE /activities/{name}/unregister?email=.
func (h *ActivitiesHandler) HandleUnregister(w http.ResponseWriter, r *http.Request) {
	const op = "api.unregister"
	h.mutate(w, r, op, h.deps.Unregister)
}

func (h *ActivitiesHandler) mutate(w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context, name, email string) (string, error),
) {
	// PathValue is already unescaped, so "Basketball%20Club" arrives as "Basketball Club".
	name := r.PathValue("name")
	emails := r.URL.Query()["email"]
	if len(emails) == 0 {
		h.debug(r.Context(), NewKind(op, ErrUnprocessable))
		writeError(w, http.StatusUnprocessableEntity, detailMissingEmail)
		return
	}

	// A repeated parameter resolves to its last occurrence.
	msg, err := fn(r.Context(), name, emails[len(emails)-1])
	if err != nil {
		h.fail(r.Context(), w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

func (h *ActivitiesHandler) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	status, detail, expected := translate(err)
	switch {
	case expected:
		h.debug(ctx, WrapKind(op, ErrBadRequest, err))
	case h.log != nil:
		h.log.Error(ctx, "request failed", logger.Error(WrapKind(op, ErrInternal, err)))
	}
	writeError(w, status, detail)
}

func (h *ActivitiesHandler) debug(ctx context.Context, err error) {
	if h.log != nil {
		h.log.Debug(ctx, "request rejected", logger.Error(err))
	}
}
