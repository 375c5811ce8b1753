package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"task-manager/events"
	"task-manager/logging"
	"task-manager/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageStore is the slice of the message repository the service needs.
type MessageStore interface {
	InsertConversation(ctx context.Context, conversation *models.Conversation) error
	GetConversation(ctx context.Context, conversationID string) (*models.Conversation, error)
	InsertMessage(ctx context.Context, message *models.Message) error
	SetLastMessage(ctx context.Context, conversationID, messageID primitive.ObjectID, at time.Time) error
	ListMessages(ctx context.Context, conversationID primitive.ObjectID) ([]models.Message, error)
}

// MessageService handles conversations and message delivery. Messages ride
// the same bus as invitations and notifications, on message.received.
type MessageService struct {
	repo  MessageStore
	users UserResolver
	bus   *events.Bus

	Now func() time.Time
}

func NewMessageService(repo MessageStore, users UserResolver, bus *events.Bus) *MessageService {
	return &MessageService{
		repo:  repo,
		users: users,
		bus:   bus,
		Now:   time.Now,
	}
}

// CreateConversation starts a conversation between the creator and the given
// participants. Every participant must resolve to a known user.
func (s *MessageService) CreateConversation(ctx context.Context, creatorID string, participants []string) (*models.Conversation, error) {
	all := []string{creatorID}
	for _, p := range participants {
		if p != creatorID {
			all = append(all, p)
		}
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("a conversation needs at least two participants")
	}

	for _, p := range all {
		if _, err := s.users.GetByUUID(ctx, p); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, models.ErrUnknownUser
			}
			return nil, err
		}
	}

	now := s.Now()
	conversation := &models.Conversation{
		Participants: all,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.InsertConversation(ctx, conversation); err != nil {
		return nil, err
	}

	logging.Logger.Infof("Conversation %s created by %s", conversation.ID.Hex(), creatorID)
	return conversation, nil
}

// SendMessage appends a message to the conversation, moves the conversation
// pointer, and publishes message.received. Only participants may send.
func (s *MessageService) SendMessage(ctx context.Context, conversationID, senderID, content string) (*models.Message, error) {
	if content == "" {
		return nil, fmt.Errorf("message content is required")
	}

	conversation, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(senderID) {
		return nil, models.ErrForbidden
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      s.Now(),
	}
	if err := s.repo.InsertMessage(ctx, message); err != nil {
		return nil, err
	}
	if err := s.repo.SetLastMessage(ctx, conversation.ID, message.ID, message.CreatedAt); err != nil {
		return nil, err
	}

	s.bus.Publish(events.TopicMessageReceived, events.MessageReceived{
		ConversationID: conversationID,
		Message:        message,
	})

	return message, nil
}

// GetMessages returns the conversation's messages in insertion order, to
// participants only.
func (s *MessageService) GetMessages(ctx context.Context, conversationID, callerID string) ([]models.Message, error) {
	conversation, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(callerID) {
		return nil, models.ErrForbidden
	}
	return s.repo.ListMessages(ctx, conversation.ID)
}
