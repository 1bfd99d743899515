package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rowanvale/chorewheel/internal/auth"
	"github.com/rowanvale/chorewheel/internal/generate"
	"github.com/rowanvale/chorewheel/internal/model"
	"github.com/rowanvale/chorewheel/internal/store"
	"github.com/rowanvale/chorewheel/internal/websocket"
)

type AssignmentHandler struct {
	store     *store.AssignmentStore
	generator *generate.Generator
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewAssignmentHandler(as *store.AssignmentStore, gen *generate.Generator, hub *websocket.Hub, logger *slog.Logger) *AssignmentHandler {
	return &AssignmentHandler{store: as, generator: gen, hub: hub, logger: logger}
}

type generateRequest struct {
	StartDate string `json:"start_date"`
	Days      int    `json:"days"`
}

// Generate creates assignments for the household's active tasks over a
// date range. Idempotent: reruns over the same range report skips, not
// duplicates.
func (h *AssignmentHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	start, err := time.ParseInLocation("2006-01-02", req.StartDate, time.UTC)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start_date must be YYYY-MM-DD"})
		return
	}

	summary, err := h.generator.Generate(auth.HouseholdID(r.Context()), start, req.Days)
	if errors.Is(err, generate.ErrInvalidRange) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		h.logger.Error("generate assignments", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to generate assignments"})
		return
	}

	if summary.Created > 0 {
		h.hub.Broadcast(websocket.NewMessage("assignment", "generated", 0, map[string]any{
			"created": summary.Created,
			"skipped": summary.Skipped,
		}))
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter store.ListFilter
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from must be YYYY-MM-DD"})
			return
		}
		filter.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "to must be YYYY-MM-DD"})
			return
		}
		filter.To = t
	}
	if v := q.Get("child_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid child_id"})
			return
		}
		filter.ChildID = &id
	}
	if v := q.Get("status"); v != "" {
		status := model.AssignmentStatus(v)
		if status != model.AssignmentPending && status != model.AssignmentCompleted {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		filter.Status = status
	}

	assignments, err := h.store.List(auth.HouseholdID(r.Context()), filter)
	if err != nil {
		h.logger.Error("list assignments", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list assignments"})
		return
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (h *AssignmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	existing := h.owned(w, r)
	if existing == nil {
		return
	}

	updated, err := h.store.Complete(existing.ID)
	if err != nil {
		h.logger.Error("complete assignment", "assignment_id", existing.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to complete assignment"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("assignment", "completed", updated.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

func (h *AssignmentHandler) UndoComplete(w http.ResponseWriter, r *http.Request) {
	existing := h.owned(w, r)
	if existing == nil {
		return
	}

	updated, err := h.store.UndoComplete(existing.ID)
	if err != nil {
		h.logger.Error("undo complete", "assignment_id", existing.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to undo completion"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("assignment", "uncompleted", updated.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

func (h *AssignmentHandler) owned(w http.ResponseWriter, r *http.Request) *model.Assignment {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil
	}
	a, err := h.store.GetOwned(id, auth.HouseholdID(r.Context()))
	if err != nil {
		h.logger.Error("get assignment", "assignment_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get assignment"})
		return nil
	}
	if a == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "assignment not found"})
		return nil
	}
	return a
}
