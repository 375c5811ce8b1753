package events

import "task-manager/models"

// Payload types carried on the bus. Subscribers type-switch on these to
// apply filter arguments before forwarding.

type InvitationReceived struct {
	Project *models.Project `json:"project"`
}

type InvitationStatusChanged struct {
	ProjectID  string            `json:"projectId"`
	Invitation models.Invitation `json:"invitation"`
}

type NotificationCreated struct {
	Notification *models.Notification `json:"notification"`
}

type ProjectUpdated struct {
	Project *models.Project `json:"project"`
}

type MessageReceived struct {
	ConversationID string          `json:"conversationId"`
	Message        *models.Message `json:"message"`
}
