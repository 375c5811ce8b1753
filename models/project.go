package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "Active"
	ProjectStatusInProcess ProjectStatus = "In Process"
	ProjectStatusDone      ProjectStatus = "Done"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationRejected InvitationStatus = "REJECTED"
)

// Invitation is a value object embedded in its Project; it is never stored
// on its own and never deleted, only transitioned out of PENDING.
type Invitation struct {
	UserID string           `json:"userId" bson:"userId"`
	Status InvitationStatus `json:"status" bson:"status"`
}

type Project struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	Status      ProjectStatus      `json:"status" bson:"status"`
	AuthorID    string             `json:"authorId" bson:"authorId"`
	Members     []string           `json:"members" bson:"members"`
	Invitations []Invitation       `json:"invitations" bson:"invitations"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// HasMember reports whether the user is already part of the project. The
// author counts as a member even though it is not duplicated in Members.
func (p *Project) HasMember(userID string) bool {
	if userID == p.AuthorID {
		return true
	}
	for _, m := range p.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// PendingInvitation returns the index of the PENDING invitation for the
// given user, or -1 if there is none. At most one can exist per user.
func (p *Project) PendingInvitation(userID string) int {
	for i, inv := range p.Invitations {
		if inv.UserID == userID && inv.Status == InvitationPending {
			return i
		}
	}
	return -1
}

// HasRejectedInvitation reports whether the user has previously rejected an
// invitation to this project.
func (p *Project) HasRejectedInvitation(userID string) bool {
	for _, inv := range p.Invitations {
		if inv.UserID == userID && inv.Status == InvitationRejected {
			return true
		}
	}
	return false
}
