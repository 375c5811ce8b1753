package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"task-manager/events"
	"task-manager/logging"
	"task-manager/utils"

	"github.com/gorilla/mux"
)

var knownTopics = map[string]bool{
	events.TopicInvitationReceived:      true,
	events.TopicInvitationStatusChanged: true,
	events.TopicNotificationCreated:     true,
	events.TopicProjectUpdated:          true,
	events.TopicMessageReceived:         true,
}

// eventFilter narrows a subscription to the entities the caller asked
// about. Empty fields match everything.
type eventFilter struct {
	projectID      string
	userID         string
	conversationID string
}

func (f eventFilter) matches(event events.Event) bool {
	switch payload := event.Payload.(type) {
	case events.InvitationReceived:
		return f.projectID == "" || payload.Project.ID.Hex() == f.projectID
	case events.InvitationStatusChanged:
		if f.projectID != "" && payload.ProjectID != f.projectID {
			return false
		}
		return f.userID == "" || payload.Invitation.UserID == f.userID
	case events.NotificationCreated:
		return f.userID == "" || payload.Notification.UserID == f.userID
	case events.ProjectUpdated:
		return f.projectID == "" || payload.Project.ID.Hex() == f.projectID
	case events.MessageReceived:
		return f.conversationID == "" || payload.ConversationID == f.conversationID
	default:
		return false
	}
}

// SubscriptionHandler is the per-connection gateway between external
// subscribers and the bus. Each request holds one bus registration per
// requested topic; all of them are released when the connection goes away.
type SubscriptionHandler struct {
	bus *events.Bus
}

func NewSubscriptionHandler(bus *events.Bus) *SubscriptionHandler {
	return &SubscriptionHandler{bus: bus}
}

// Subscribe streams matching events as server-sent events until the client
// disconnects. The path accepts a comma-separated topic list; filter
// arguments come from the query string.
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	callerID, err := utils.CallerIdentity(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	topics := strings.Split(mux.Vars(r)["topics"], ",")
	for _, topic := range topics {
		if !knownTopics[topic] {
			http.Error(w, fmt.Sprintf("unknown topic: %s", topic), http.StatusBadRequest)
			return
		}
	}

	filter := eventFilter{
		projectID:      r.URL.Query().Get("projectId"),
		userID:         r.URL.Query().Get("userId"),
		conversationID: r.URL.Query().Get("conversationId"),
	}
	// Notifications are personal; without an explicit filter a subscriber
	// sees only its own.
	if filter.userID == "" {
		for _, topic := range topics {
			if topic == events.TopicNotificationCreated {
				filter.userID = callerID
			}
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	merged := make(chan events.Event, 1)
	subscriptions := make([]*events.Subscription, 0, len(topics))
	for _, topic := range topics {
		sub := h.bus.Subscribe(topic)
		subscriptions = append(subscriptions, sub)
		go func(sub *events.Subscription) {
			for event := range sub.C {
				select {
				case merged <- event:
				case <-ctx.Done():
					return
				}
			}
		}(sub)
	}
	defer func() {
		for _, sub := range subscriptions {
			sub.Unsubscribe()
		}
	}()

	fmt.Fprintf(w, ": subscribed to %s\n\n", strings.Join(topics, ","))
	flusher.Flush()

	logging.Logger.Infof("Subscriber %s attached to %s", callerID, strings.Join(topics, ","))

	for {
		select {
		case <-ctx.Done():
			logging.Logger.Infof("Subscriber %s disconnected", callerID)
			return
		case event := <-merged:
			if !filter.matches(event) {
				continue
			}
			data, err := json.Marshal(event.Payload)
			if err != nil {
				logging.Logger.Errorf("Failed to marshal event on %s: %v", event.Topic, err)
				continue
			}
			fmt.Fprintf(w, "event: %s\n", event.Topic)
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
