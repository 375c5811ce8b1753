package repositories

import (
	"context"
	"fmt"
	"time"

	"task-manager/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository persists conversations and their messages.
type MessageRepository struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
}

func NewMessageRepository(conversations, messages *mongo.Collection) *MessageRepository {
	return &MessageRepository{conversations: conversations, messages: messages}
}

func (r *MessageRepository) InsertConversation(ctx context.Context, conversation *models.Conversation) error {
	result, err := r.conversations.InsertOne(ctx, conversation)
	if err != nil {
		return fmt.Errorf("%w: failed to insert conversation: %v", models.ErrStorage, err)
	}
	conversation.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *MessageRepository) GetConversation(ctx context.Context, conversationID string) (*models.Conversation, error) {
	objectID, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return nil, models.ErrNotFound
	}

	var conversation models.Conversation
	err = r.conversations.FindOne(ctx, bson.M{"_id": objectID}).Decode(&conversation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch conversation: %v", models.ErrStorage, err)
	}
	return &conversation, nil
}

func (r *MessageRepository) InsertMessage(ctx context.Context, message *models.Message) error {
	result, err := r.messages.InsertOne(ctx, message)
	if err != nil {
		return fmt.Errorf("%w: failed to insert message: %v", models.ErrStorage, err)
	}
	message.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// SetLastMessage points the conversation at its most recent message.
func (r *MessageRepository) SetLastMessage(ctx context.Context, conversationID, messageID primitive.ObjectID, at time.Time) error {
	update := bson.M{"$set": bson.M{"lastMessageId": messageID, "updatedAt": at}}
	_, err := r.conversations.UpdateOne(ctx, bson.M{"_id": conversationID}, update)
	if err != nil {
		return fmt.Errorf("%w: failed to update conversation: %v", models.ErrStorage, err)
	}
	return nil
}

// ListMessages returns the conversation's messages in insertion order.
func (r *MessageRepository) ListMessages(ctx context.Context, conversationID primitive.ObjectID) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": 1})
	cursor, err := r.messages.Find(ctx, bson.M{"conversationId": conversationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list messages: %v", models.ErrStorage, err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("%w: failed to decode messages: %v", models.ErrStorage, err)
	}
	return messages, nil
}
