package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"task-manager/events"
	"task-manager/logging"
	"task-manager/models"
)

// NotificationStore is the slice of the notification repository the service
// needs. The Cassandra implementation requires the full record (recipient,
// created_at, id) to address a row, so MarkRead and Delete take the record
// fetched by GetByID.
type NotificationStore interface {
	Insert(ctx context.Context, notification *models.Notification) error
	ListForUser(ctx context.Context, userID string) ([]models.Notification, error)
	GetByID(ctx context.Context, notificationID string) (*models.Notification, error)
	MarkRead(ctx context.Context, notification *models.Notification) error
	Delete(ctx context.Context, notification *models.Notification) error
}

// NotificationService creates durable notifications and republishes them on
// the bus.
type NotificationService struct {
	repo  NotificationStore
	users UserResolver
	bus   *events.Bus

	Now func() time.Time
}

func NewNotificationService(repo NotificationStore, users UserResolver, bus *events.Bus) *NotificationService {
	return &NotificationService{
		repo:  repo,
		users: users,
		bus:   bus,
		Now:   time.Now,
	}
}

// CreateNotification stores a notification for the recipient and publishes
// it on notification.created. The recipient must resolve to a known user.
func (ns *NotificationService) CreateNotification(ctx context.Context, recipientID, message, projectID string) (*models.Notification, error) {
	if recipientID == "" || message == "" {
		return nil, fmt.Errorf("recipient and message are required")
	}

	if _, err := ns.users.GetByUUID(ctx, recipientID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnknownUser
		}
		return nil, err
	}

	notification := &models.Notification{
		UserID:    recipientID,
		Message:   message,
		ProjectID: projectID,
		CreatedAt: ns.Now(),
		IsRead:    false,
	}
	if err := ns.repo.Insert(ctx, notification); err != nil {
		return nil, err
	}

	ns.bus.Publish(events.TopicNotificationCreated, events.NotificationCreated{Notification: notification})

	logging.Logger.Infof("Notification %s created for user %s", notification.ID, recipientID)
	return notification, nil
}

func (ns *NotificationService) GetNotificationsForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	return ns.repo.ListForUser(ctx, userID)
}

// MarkNotificationRead flips the read flag. Only the recipient may do so.
// Read state is not a subscribed event, so nothing is published.
func (ns *NotificationService) MarkNotificationRead(ctx context.Context, notificationID, callerID string) (*models.Notification, error) {
	notification, err := ns.repo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if notification.UserID != callerID {
		return nil, models.ErrForbidden
	}

	if err := ns.repo.MarkRead(ctx, notification); err != nil {
		return nil, err
	}
	notification.IsRead = true
	return notification, nil
}

// DeleteNotification removes the notification. Only the recipient may do so.
func (ns *NotificationService) DeleteNotification(ctx context.Context, notificationID, callerID string) error {
	notification, err := ns.repo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.UserID != callerID {
		return models.ErrForbidden
	}

	return ns.repo.Delete(ctx, notification)
}
