package services

import (
	"context"
	"errors"
	"testing"

	"task-manager/models"
)

func TestEnsureUser_CreatesOnceThenReturnsExisting(t *testing.T) {
	svc := NewUserService(newMemUserStore())

	created, err := svc.EnsureUser(context.Background(), "alice", "Alice", "alice@example.com", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Name != "Alice" {
		t.Fatalf("expected the new record, got %+v", created)
	}

	again, err := svc.EnsureUser(context.Background(), "alice", "Someone Else", "other@example.com", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Name != "Alice" || again.Email != "alice@example.com" {
		t.Fatalf("expected the first record back unchanged, got %+v", again)
	}
}

func TestGetUserByUUID_Unknown(t *testing.T) {
	svc := NewUserService(newMemUserStore("alice"))

	if _, err := svc.GetUserByUUID(context.Background(), "ghost"); !errors.Is(err, models.ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}

func TestSearchUsersByName_PrefixMatch(t *testing.T) {
	store := newMemUserStore("alice", "albert", "bob")
	svc := NewUserService(store)

	users, err := svc.SearchUsersByName(context.Background(), "al")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected two matches, got %d", len(users))
	}
	for _, user := range users {
		if user.UUID != "alice" && user.UUID != "albert" {
			t.Fatalf("unexpected match: %+v", user)
		}
	}
}
