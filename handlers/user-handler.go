package handlers

import (
	"encoding/json"
	"net/http"

	"task-manager/logging"
	"task-manager/models"
	"task-manager/services"
	"task-manager/utils"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// EnsureUser mirrors the identity provider's record for the caller.
func (h *UserHandler) EnsureUser(w http.ResponseWriter, r *http.Request) {
	callerID, err := utils.CallerIdentity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" {
		http.Error(w, "name and email are required", http.StatusBadRequest)
		return
	}

	user, err := h.service.EnsureUser(r.Context(), callerID, req.Name, req.Email, req.Image)
	if err != nil {
		logging.Logger.Errorf("Failed to ensure user %s: %v", callerID, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	if _, err := utils.CallerIdentity(r); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "name parameter is required", http.StatusBadRequest)
		return
	}

	users, err := h.service.SearchUsersByName(r.Context(), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	writeJSON(w, http.StatusOK, users)
}
