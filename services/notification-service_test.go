package services

import (
	"context"
	"errors"
	"testing"

	"task-manager/events"
	"task-manager/models"
)

func newNotificationTestEnv(t *testing.T, userIDs ...string) (*NotificationService, *memNotificationStore, *events.Bus) {
	t.Helper()
	bus := events.NewBus()
	t.Cleanup(bus.Close)
	store := &memNotificationStore{}
	return NewNotificationService(store, newMemUserStore(userIDs...), bus), store, bus
}

func TestCreateNotification_PersistsAndPublishes(t *testing.T) {
	service, store, bus := newNotificationTestEnv(t, "bob")
	sub := bus.Subscribe(events.TopicNotificationCreated)

	notification, err := service.CreateNotification(context.Background(), "bob", "You have been invited", "project-1")
	if err != nil {
		t.Fatalf("CreateNotification failed: %v", err)
	}
	if notification.ID == "" {
		t.Fatal("expected an assigned notification id")
	}
	if notification.IsRead {
		t.Fatal("new notifications must be unread")
	}

	rows, _ := store.ListForUser(context.Background(), "bob")
	if len(rows) != 1 {
		t.Fatalf("expected one durable row, got %d", len(rows))
	}

	published := drainEvents(sub)
	if len(published) != 1 {
		t.Fatalf("expected one notification.created event, got %d", len(published))
	}
	payload := published[0].Payload.(events.NotificationCreated)
	if payload.Notification.ID != notification.ID {
		t.Fatalf("published notification does not match created one: %+v", payload)
	}
}

func TestCreateNotification_UnknownRecipient(t *testing.T) {
	service, _, _ := newNotificationTestEnv(t, "bob")

	_, err := service.CreateNotification(context.Background(), "nobody", "hello", "")
	if !errors.Is(err, models.ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}

func TestCreateNotification_RequiresRecipientAndMessage(t *testing.T) {
	service, _, _ := newNotificationTestEnv(t, "bob")

	if _, err := service.CreateNotification(context.Background(), "bob", "", ""); err == nil {
		t.Fatal("expected an error for an empty message")
	}
	if _, err := service.CreateNotification(context.Background(), "", "hello", ""); err == nil {
		t.Fatal("expected an error for an empty recipient")
	}
}

func TestMarkNotificationRead(t *testing.T) {
	service, store, bus := newNotificationTestEnv(t, "bob", "carol")

	created, err := service.CreateNotification(context.Background(), "bob", "hello", "")
	if err != nil {
		t.Fatalf("CreateNotification failed: %v", err)
	}

	sub := bus.Subscribe(events.TopicNotificationCreated)

	if _, err := service.MarkNotificationRead(context.Background(), created.ID, "carol"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for a non-recipient, got %v", err)
	}

	updated, err := service.MarkNotificationRead(context.Background(), created.ID, "bob")
	if err != nil {
		t.Fatalf("MarkNotificationRead failed: %v", err)
	}
	if !updated.IsRead {
		t.Fatal("expected IsRead to be set")
	}

	rows, _ := store.ListForUser(context.Background(), "bob")
	if !rows[0].IsRead {
		t.Fatal("expected the stored row to be read")
	}

	// Read state is not a subscribed event.
	if got := drainEvents(sub); len(got) != 0 {
		t.Fatalf("expected no events for mark-read, got %d", len(got))
	}

	if _, err := service.MarkNotificationRead(context.Background(), "0ae63b9a-0000-0000-0000-000000000000", "bob"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteNotification(t *testing.T) {
	service, store, _ := newNotificationTestEnv(t, "bob", "carol")

	created, err := service.CreateNotification(context.Background(), "bob", "hello", "")
	if err != nil {
		t.Fatalf("CreateNotification failed: %v", err)
	}

	if err := service.DeleteNotification(context.Background(), created.ID, "carol"); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for a non-recipient, got %v", err)
	}
	if err := service.DeleteNotification(context.Background(), created.ID, "bob"); err != nil {
		t.Fatalf("DeleteNotification failed: %v", err)
	}

	rows, _ := store.ListForUser(context.Background(), "bob")
	if len(rows) != 0 {
		t.Fatalf("expected no rows after delete, got %d", len(rows))
	}
}
