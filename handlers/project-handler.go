package handlers

import (
	"encoding/json"
	"net/http"

	"task-manager/logging"
	"task-manager/models"
	"task-manager/services"
	"task-manager/utils"

	"github.com/gorilla/mux"
)

type ProjectHandler struct {
	service *services.ProjectService
}

func NewProjectHandler(service *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	callerID, err := utils.CallerIdentity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Project name is required", http.StatusBadRequest)
		return
	}

	project, err := h.service.CreateProject(r.Context(), callerID, req.Name, req.Description)
	if err != nil {
		logging.Logger.Errorf("Failed to create project: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	callerID, err := utils.CallerIdentity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	projects, err := h.service.ListProjectsByAuthor(r.Context(), callerID)
	if err != nil {
		logging.Logger.Errorf("Failed to list projects for %s: %v", callerID, err)
		writeServiceError(w, err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}

	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) GetProjectByID(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]

	project, err := h.service.GetProjectByID(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	callerID, err := utils.CallerIdentity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	projectID := mux.Vars(r)["projectId"]

	if err := h.service.DeleteProject(r.Context(), projectID, callerID); err != nil {
		logging.Logger.Warnf("Failed to delete project %s: %v", projectID, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "project deleted"})
}

func (h *ProjectHandler) InviteUser(w http.ResponseWriter, r *http.Request) {
	callerID, err := utils.CallerIdentity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	projectID := mux.Vars(r)["projectId"]

	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	project, err := h.service.InviteUser(r.Context(), projectID, callerID, req.UserID)
	if err != nil {
		logging.Logger.Warnf("Invite of %s to project %s failed: %v", req.UserID, projectID, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) RespondToInvitation(w http.ResponseWriter, r *http.Request) {
	callerID, err := utils.CallerIdentity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	projectID := mux.Vars(r)["projectId"]

	var req struct {
		Status models.InvitationStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Status != models.InvitationAccepted && req.Status != models.InvitationRejected {
		http.Error(w, "status must be ACCEPTED or REJECTED", http.StatusBadRequest)
		return
	}

	invitation, err := h.service.RespondToInvitation(r.Context(), projectID, callerID, req.Status)
	if err != nil {
		logging.Logger.Warnf("Response to invitation on project %s failed: %v", projectID, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, invitation)
}

func (h *ProjectHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	callerID, err := utils.CallerIdentity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	projectID := mux.Vars(r)["projectId"]

	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	project, err := h.service.AddMember(r.Context(), projectID, callerID, req.UserID)
	if err != nil {
		logging.Logger.Warnf("Adding member %s to project %s failed: %v", req.UserID, projectID, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, project)
}
