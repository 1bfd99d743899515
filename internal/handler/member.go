package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rowanvale/chorewheel/internal/auth"
	"github.com/rowanvale/chorewheel/internal/model"
	"github.com/rowanvale/chorewheel/internal/store"
)

// MemberHandler manages household membership. Mutations are admin-only;
// the router wraps them in RequireAdmin.
type MemberHandler struct {
	householdStore *store.HouseholdStore
	logger         *slog.Logger
}

func NewMemberHandler(hs *store.HouseholdStore, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{householdStore: hs, logger: logger}
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.householdStore.ListMembers(auth.HouseholdID(r.Context()))
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list members"})
		return
	}
	if members == nil {
		members = []model.HouseholdMember{}
	}
	writeJSON(w, http.StatusOK, members)
}

type memberRoleRequest struct {
	Role string `json:"role"`
}

func (h *MemberHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("user_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	var req memberRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Role != auth.RoleAdmin && req.Role != auth.RoleMember {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role must be admin or member"})
		return
	}

	householdID := auth.HouseholdID(r.Context())
	existing, err := h.householdStore.GetMember(householdID, userID)
	if err != nil {
		h.logger.Error("get member", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get member"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "member not found"})
		return
	}

	member, err := h.householdStore.UpdateMemberRole(householdID, userID, req.Role)
	if err != nil {
		h.logger.Error("update member role", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update role"})
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("user_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}
	if userID == auth.UserID(r.Context()) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cannot remove yourself"})
		return
	}

	if err := h.householdStore.RemoveMember(auth.HouseholdID(r.Context()), userID); err != nil {
		h.logger.Error("remove member", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to remove member"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
