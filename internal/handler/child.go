package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/rowanvale/chorewheel/internal/auth"
	"github.com/rowanvale/chorewheel/internal/model"
	"github.com/rowanvale/chorewheel/internal/store"
	"github.com/rowanvale/chorewheel/internal/websocket"
)

type ChildHandler struct {
	store  *store.ChildStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewChildHandler(cs *store.ChildStore, hub *websocket.Hub, logger *slog.Logger) *ChildHandler {
	return &ChildHandler{store: cs, hub: hub, logger: logger}
}

type childRequest struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	AvatarEmoji string `json:"avatar_emoji"`
	SortOrder   int    `json:"sort_order"`
}

func (h *ChildHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req childRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	child, err := h.store.Create(auth.HouseholdID(r.Context()), req.Name, req.Color, req.AvatarEmoji, req.SortOrder)
	if err != nil {
		h.logger.Error("create child", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create child"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("child", "created", child.ID, nil))
	writeJSON(w, http.StatusCreated, child)
}

func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	children, err := h.store.List(auth.HouseholdID(r.Context()))
	if err != nil {
		h.logger.Error("list children", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list children"})
		return
	}
	if children == nil {
		children = []model.Child{}
	}
	writeJSON(w, http.StatusOK, children)
}

func (h *ChildHandler) Update(w http.ResponseWriter, r *http.Request) {
	child := h.ownedChild(w, r)
	if child == nil {
		return
	}

	var req childRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	updated, err := h.store.Update(child.ID, req.Name, req.Color, req.AvatarEmoji, req.SortOrder)
	if err != nil {
		h.logger.Error("update child", "child_id", child.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update child"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("child", "updated", child.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

func (h *ChildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	child := h.ownedChild(w, r)
	if child == nil {
		return
	}

	if err := h.store.Delete(child.ID); err != nil {
		h.logger.Error("delete child", "child_id", child.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete child"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage("child", "deleted", child.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

type pinRequest struct {
	PIN string `json:"pin"`
}

func (h *ChildHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	child := h.ownedChild(w, r)
	if child == nil {
		return
	}

	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if len(req.PIN) < 4 || !isDigits(req.PIN) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "PIN must be at least 4 digits"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to hash PIN"})
		return
	}
	if err := h.store.SetPINHash(child.ID, string(hash)); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to set PIN"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ChildHandler) ClearPIN(w http.ResponseWriter, r *http.Request) {
	child := h.ownedChild(w, r)
	if child == nil {
		return
	}
	if err := h.store.SetPINHash(child.ID, ""); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to clear PIN"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChildHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	child := h.ownedChild(w, r)
	if child == nil {
		return
	}

	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	hash, err := h.store.GetPINHash(child.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get PIN"})
		return
	}
	if hash == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no PIN set for this child"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "incorrect PIN"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

// ownedChild loads the path's child and confirms it belongs to the
// caller's household, writing the error response itself otherwise.
func (h *ChildHandler) ownedChild(w http.ResponseWriter, r *http.Request) *model.Child {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil
	}
	child, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("get child", "child_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get child"})
		return nil
	}
	if child == nil || child.HouseholdID != auth.HouseholdID(r.Context()) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "child not found"})
		return nil
	}
	return child
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
