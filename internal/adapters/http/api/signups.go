package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/squad/internal/domain/model"
)

// SignupDependencies defines the roster operations used by SignupsHandler.
type SignupDependencies interface {
	SubmitSignup(ctx context.Context, s model.Signup) (bool, error)
	Signups(ctx context.Context) []model.Signup
	ClearSignups(ctx context.Context) int
}

// SignupsHandler handles the current event roster.
type SignupsHandler struct {
	deps SignupDependencies
}

// NewSignupsHandler creates a new signups handler.
func NewSignupsHandler(deps SignupDependencies) *SignupsHandler {
	return &SignupsHandler{deps: deps}
}

type signupResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type signupListResponse struct {
	Count   int            `json:"count"`
	Signups []model.Signup `json:"signups"`
}

type clearResponse struct {
	Removed int `json:"removed"`
}

// HandlePost handles POST /signups. A repeated ID replaces the earlier record.
func (h *SignupsHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	var s model.Signup
	if err := decodeBody(r, &s); err != nil {
		writeServiceError(w, err)
		return
	}
	created, err := h.deps.SubmitSignup(r.Context(), s)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if created {
		writeJSON(w, http.StatusCreated, signupResponse{ID: strings.TrimSpace(s.ID), Status: "created"})
		return
	}
	writeJSON(w, http.StatusOK, signupResponse{ID: strings.TrimSpace(s.ID), Status: "updated"})
}

// HandleList handles GET /signups.
func (h *SignupsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list := h.deps.Signups(r.Context())
	if list == nil {
		list = []model.Signup{}
	}
	writeJSON(w, http.StatusOK, signupListResponse{Count: len(list), Signups: list})
}

// HandleClear handles DELETE /signups.
func (h *SignupsHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, clearResponse{Removed: h.deps.ClearSignups(r.Context())})
}
