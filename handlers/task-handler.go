package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"task-manager/logging"
	"task-manager/models"
	"task-manager/services"
	"task-manager/utils"

	"github.com/gorilla/mux"
)

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	if _, err := utils.CallerIdentity(r); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req struct {
		ProjectID   string            `json:"projectId"`
		Title       string            `json:"title"`
		Description string            `json:"description"`
		DueDate     time.Time         `json:"dueDate"`
		Status      models.TaskStatus `json:"status"`
		AssignedTo  []string          `json:"assignedTo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.ProjectID == "" || req.Title == "" {
		http.Error(w, "projectId and title are required", http.StatusBadRequest)
		return
	}

	task, err := h.service.CreateTask(r.Context(), req.ProjectID, req.Title, req.Description, req.DueDate, req.Status, req.AssignedTo)
	if err != nil {
		logging.Logger.Errorf("Failed to create task in project %s: %v", req.ProjectID, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) GetTasksByProject(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]

	tasks, err := h.service.GetTasksByProject(r.Context(), projectID)
	if err != nil {
		logging.Logger.Errorf("Failed to fetch tasks for project %s: %v", projectID, err)
		writeServiceError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	writeJSON(w, http.StatusOK, tasks)
}
