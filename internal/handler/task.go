package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rowanvale/chorewheel/internal/auth"
	"github.com/rowanvale/chorewheel/internal/model"
	"github.com/rowanvale/chorewheel/internal/rule"
	"github.com/rowanvale/chorewheel/internal/store"
	"github.com/rowanvale/chorewheel/internal/websocket"
)

type TaskHandler struct {
	store  *store.TaskStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{store: ts, hub: hub, logger: logger}
}

type taskRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	RuleType    string          `json:"rule_type"`
	RuleConfig  json.RawMessage `json:"rule_config"`
	Active      *bool           `json:"active"`
	SortOrder   int             `json:"sort_order"`
}

// validate checks the request at the boundary so generation only ever
// sees well-formed rule configs.
func (req *taskRequest) validate() string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if _, err := rule.Parse(req.RuleType, req.RuleConfig); err != nil {
		return err.Error()
	}
	return ""
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	task, err := h.store.Create(auth.HouseholdID(r.Context()), req.Title, req.Description, req.RuleType, req.RuleConfig, req.SortOrder)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create task"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("task", "created", task.ID, nil))
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.List(auth.HouseholdID(r.Context()))
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list tasks"})
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing := h.ownedTask(w, r)
	if existing == nil {
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	active := existing.Active
	if req.Active != nil {
		active = *req.Active
	}

	task, err := h.store.Update(existing.ID, req.Title, req.Description, req.RuleType, req.RuleConfig, active, req.SortOrder)
	if err != nil {
		h.logger.Error("update task", "task_id", existing.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update task"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("task", "updated", task.ID, nil))
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing := h.ownedTask(w, r)
	if existing == nil {
		return
	}

	if err := h.store.Delete(existing.ID); err != nil {
		h.logger.Error("delete task", "task_id", existing.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete task"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("task", "deleted", existing.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) ownedTask(w http.ResponseWriter, r *http.Request) *model.Task {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil
	}
	task, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("get task", "task_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get task"})
		return nil
	}
	if task == nil || task.HouseholdID != auth.HouseholdID(r.Context()) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return nil
	}
	return task
}
