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

type NotificationHandler struct {
	service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (nh *NotificationHandler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	if _, err := utils.CallerIdentity(r); err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req struct {
		UserID    string `json:"userId"`
		Message   string `json:"message"`
		ProjectID string `json:"projectId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Message == "" {
		http.Error(w, "userId and message are required", http.StatusBadRequest)
		return
	}

	notification, err := nh.service.CreateNotification(r.Context(), req.UserID, req.Message, req.ProjectID)
	if err != nil {
		logging.Logger.Errorf("Failed to create notification for user %s: %v", req.UserID, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, notification)
}

func (nh *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	callerID, err := utils.CallerIdentity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	notifications, err := nh.service.GetNotificationsForUser(r.Context(), callerID)
	if err != nil {
		logging.Logger.Errorf("Failed to fetch notifications for user %s: %v", callerID, err)
		writeServiceError(w, err)
		return
	}
	// Always return a JSON array, even when empty.
	if notifications == nil {
		notifications = []models.Notification{}
	}

	writeJSON(w, http.StatusOK, notifications)
}

func (nh *NotificationHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	callerID, err := utils.CallerIdentity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	notificationID := mux.Vars(r)["notificationId"]

	notification, err := nh.service.MarkNotificationRead(r.Context(), notificationID, callerID)
	if err != nil {
		logging.Logger.Warnf("Failed to mark notification %s as read: %v", notificationID, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notification)
}

func (nh *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	callerID, err := utils.CallerIdentity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	notificationID := mux.Vars(r)["notificationId"]

	if err := nh.service.DeleteNotification(r.Context(), notificationID, callerID); err != nil {
		logging.Logger.Warnf("Failed to delete notification %s: %v", notificationID, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "notification deleted"})
}
