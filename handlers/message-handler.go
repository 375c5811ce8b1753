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

type MessageHandler struct {
	service *services.MessageService
}

func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	callerID, err := utils.CallerIdentity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req struct {
		Participants []string `json:"participants"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	conversation, err := h.service.CreateConversation(r.Context(), callerID, req.Participants)
	if err != nil {
		logging.Logger.Warnf("Failed to create conversation: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, conversation)
}

func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	callerID, err := utils.CallerIdentity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	conversationID := mux.Vars(r)["conversationId"]

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}

	message, err := h.service.SendMessage(r.Context(), conversationID, callerID, req.Content)
	if err != nil {
		logging.Logger.Warnf("Failed to send message in conversation %s: %v", conversationID, err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, message)
}

func (h *MessageHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	callerID, err := utils.CallerIdentity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	conversationID := mux.Vars(r)["conversationId"]

	messages, err := h.service.GetMessages(r.Context(), conversationID, callerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	writeJSON(w, http.StatusOK, messages)
}
