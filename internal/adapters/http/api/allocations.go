package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/okian/squad/internal/adapters/export"
	"github.com/okian/squad/internal/adapters/repository"
	service "github.com/okian/squad/internal/app"
	"github.com/okian/squad/internal/domain/model"
)

// AllocationDependencies defines the allocation operations used by
// AllocationsHandler.
type AllocationDependencies interface {
	RequestAllocation(ctx context.Context, requestID string, roster []model.Signup) (service.Ticket, error)
	AllocateNow(ctx context.Context, roster []model.Signup) (repository.JobRecord, error)
	Allocation(ctx context.Context, id string) (repository.JobRecord, error)
	LatestAllocation(ctx context.Context) (repository.JobRecord, error)
}

// AllocationsHandler handles allocation jobs and their results.
type AllocationsHandler struct {
	deps AllocationDependencies
}

// NewAllocationsHandler creates a new allocations handler.
func NewAllocationsHandler(deps AllocationDependencies) *AllocationsHandler {
	return &AllocationsHandler{deps: deps}
}

// allocationRequest mirrors the OpenAPI schema for POST /allocations.
// Participants omitted means the current roster.
type allocationRequest struct {
	RequestID    string          `json:"request_id"`
	Participants *[]model.Signup `json:"participants"`
}

// HandlePost handles POST /allocations. With ?sync=true the engine runs
// inline and the job record is returned.
func (h *AllocationsHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	var req allocationRequest
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeServiceError(w, err)
		return
	}
	roster := participantsOrNil(req.Participants)

	inline, err := parseBool(r.URL.Query().Get("sync"))
	if err != nil {
		writeServiceError(w, WrapKind(ErrBadRequest, err))
		return
	}
	if inline {
		rec, err := h.deps.AllocateNow(r.Context(), roster)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, rec)
		case rec.Failure != nil:
			writeJSON(w, http.StatusUnprocessableEntity, rec)
		default:
			writeServiceError(w, err)
		}
		return
	}

	ticket, err := h.deps.RequestAllocation(r.Context(), req.RequestID, roster)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if ticket.Duplicate {
		writeJSON(w, http.StatusOK, ticket)
		return
	}
	w.Header().Set("Location", "/allocations/"+ticket.JobID)
	writeJSON(w, http.StatusAccepted, ticket)
}

// HandleGet handles GET /allocations/{id}.
func (h *AllocationsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.deps.Allocation(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleLatest handles GET /allocations/latest.
func (h *AllocationsHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	rec, err := h.deps.LatestAllocation(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleExport handles GET /allocations/{id}/export?format=text|json|yaml.
// The id "latest" selects the most recent successful job.
func (h *AllocationsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeServiceError(w, WrapKind(ErrBadRequest, err))
		return
	}

	var rec repository.JobRecord
	if id := r.PathValue("id"); id == "latest" {
		rec, err = h.deps.LatestAllocation(r.Context())
	} else {
		rec, err = h.deps.Allocation(r.Context(), id)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if rec.Result == nil {
		writeError(w, http.StatusConflict, "no_result", errors.New("job "+rec.ID+" is "+string(rec.Status)))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(rec.CompletedAt, format)+`"`)
	_ = export.Render(w, *rec.Result, format)
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
