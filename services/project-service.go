package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"task-manager/events"
	"task-manager/logging"
	"task-manager/models"
)

// ProjectStore is the slice of the project repository the service needs.
type ProjectStore interface {
	Insert(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, projectID string) (*models.Project, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.Project, error)
	Save(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, projectID string) error
}

// UserResolver resolves opaque user identities against the users collection.
type UserResolver interface {
	GetByUUID(ctx context.Context, uuid string) (*models.User, error)
}

// Notifier creates a durable notification and publishes it on the bus.
type Notifier interface {
	CreateNotification(ctx context.Context, recipientID, message, projectID string) (*models.Notification, error)
}

// InvitePolicy decides whether the inviter may issue invitations for the
// project. Which policy applies varies by deployment, so it is injected.
type InvitePolicy func(project *models.Project, inviterID string) bool

// AuthorOnly permits only the project author to invite.
func AuthorOnly(project *models.Project, inviterID string) bool {
	return project.AuthorID == inviterID
}

// AnyMember permits the author and every current member to invite.
func AnyMember(project *models.Project, inviterID string) bool {
	return project.HasMember(inviterID)
}

// ProjectService owns the project lifecycle and the invitation state
// machine. Mutations on the same project are linearized by a lock keyed by
// project id; mutations on different projects never contend.
type ProjectService struct {
	projects ProjectStore
	users    UserResolver
	notifier Notifier
	bus      *events.Bus

	// Policy decides who may invite; AllowReinvite controls whether a user
	// who rejected an earlier invitation may be invited again.
	Policy        InvitePolicy
	AllowReinvite bool

	Now func() time.Time

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewProjectService(projects ProjectStore, users UserResolver, notifier Notifier, bus *events.Bus) *ProjectService {
	return &ProjectService{
		projects:      projects,
		users:         users,
		notifier:      notifier,
		bus:           bus,
		Policy:        AuthorOnly,
		AllowReinvite: true,
		Now:           time.Now,
		locks:         make(map[string]*sync.Mutex),
	}
}

// lockProject acquires the per-project mutex and returns its release func.
func (s *ProjectService) lockProject(projectID string) func() {
	s.locksMu.Lock()
	lock, ok := s.locks[projectID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[projectID] = lock
	}
	s.locksMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (s *ProjectService) CreateProject(ctx context.Context, authorID, name, description string) (*models.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}

	now := s.Now()
	project := &models.Project{
		Name:        name,
		Description: description,
		Status:      models.ProjectStatusActive,
		AuthorID:    authorID,
		Members:     []string{},
		Invitations: []models.Invitation{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projects.Insert(ctx, project); err != nil {
		return nil, err
	}

	logging.Logger.Infof("Project %s created by %s", project.ID.Hex(), authorID)
	return project, nil
}

func (s *ProjectService) GetProjectByID(ctx context.Context, projectID string) (*models.Project, error) {
	return s.projects.GetByID(ctx, projectID)
}

func (s *ProjectService) ListProjectsByAuthor(ctx context.Context, authorID string) ([]models.Project, error) {
	return s.projects.ListByAuthor(ctx, authorID)
}

// DeleteProject removes the project. Only its author may do so.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID, callerID string) error {
	unlock := s.lockProject(projectID)
	defer unlock()

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project.AuthorID != callerID {
		return models.ErrForbidden
	}

	if err := s.projects.Delete(ctx, projectID); err != nil {
		return err
	}

	logging.Logger.Infof("Project %s deleted by %s", projectID, callerID)
	return nil
}

// InviteUser appends a PENDING invitation for the invitee. The check and the
// write run under the project lock, so two racing invites for the same user
// cannot both pass the duplicate check.
func (s *ProjectService) InviteUser(ctx context.Context, projectID, inviterID, inviteeID string) (*models.Project, error) {
	unlock := s.lockProject(projectID)
	defer unlock()

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if !s.Policy(project, inviterID) {
		return nil, models.ErrForbidden
	}

	invitee, err := s.users.GetByUUID(ctx, inviteeID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnknownUser
		}
		return nil, err
	}

	if project.HasMember(inviteeID) {
		return nil, models.ErrAlreadyMember
	}
	if project.PendingInvitation(inviteeID) >= 0 {
		return nil, models.ErrDuplicatePending
	}
	if !s.AllowReinvite && project.HasRejectedInvitation(inviteeID) {
		return nil, models.ErrInvalidState
	}

	project.Invitations = append(project.Invitations, models.Invitation{
		UserID: inviteeID,
		Status: models.InvitationPending,
	})
	project.UpdatedAt = s.Now()

	if err := s.projects.Save(ctx, project); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("You have been invited to join project %q", project.Name)
	if _, err := s.notifier.CreateNotification(ctx, invitee.UUID, message, projectID); err != nil {
		return nil, err
	}

	s.bus.Publish(events.TopicInvitationReceived, events.InvitationReceived{Project: project})

	logging.Logger.Infof("User %s invited to project %s by %s", inviteeID, projectID, inviterID)
	return project, nil
}

// RespondToInvitation transitions the responder's PENDING invitation.
// ACCEPTED also adds the responder to the member set; both changes land in a
// single save. A response to an already-resolved invitation fails with
// ErrInvalidState so callers can tell "already handled" from success.
func (s *ProjectService) RespondToInvitation(ctx context.Context, projectID, responderID string, decision models.InvitationStatus) (*models.Invitation, error) {
	if decision != models.InvitationAccepted && decision != models.InvitationRejected {
		return nil, models.ErrInvalidState
	}

	unlock := s.lockProject(projectID)
	defer unlock()

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	idx := project.PendingInvitation(responderID)
	if idx < 0 {
		for _, inv := range project.Invitations {
			if inv.UserID == responderID {
				return nil, models.ErrInvalidState
			}
		}
		return nil, models.ErrNotFound
	}

	project.Invitations[idx].Status = decision
	if decision == models.InvitationAccepted {
		project.Members = append(project.Members, responderID)
	}
	project.UpdatedAt = s.Now()

	if err := s.projects.Save(ctx, project); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Invitation to project %q was %s by user %s", project.Name, decision, responderID)
	if _, err := s.notifier.CreateNotification(ctx, project.AuthorID, message, projectID); err != nil {
		return nil, err
	}

	invitation := project.Invitations[idx]
	s.bus.Publish(events.TopicInvitationStatusChanged, events.InvitationStatusChanged{
		ProjectID:  projectID,
		Invitation: invitation,
	})
	if decision == models.InvitationAccepted {
		s.bus.Publish(events.TopicProjectUpdated, events.ProjectUpdated{Project: project})
	}

	logging.Logger.Infof("User %s responded %s to invitation for project %s", responderID, decision, projectID)
	return &invitation, nil
}

// AddMember lets the author add a user directly, without the invitation
// round-trip. A PENDING invitation for that user, if any, is resolved to
// ACCEPTED in the same save so membership and invitation state stay
// consistent.
func (s *ProjectService) AddMember(ctx context.Context, projectID, callerID, userID string) (*models.Project, error) {
	unlock := s.lockProject(projectID)
	defer unlock()

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.AuthorID != callerID {
		return nil, models.ErrForbidden
	}

	if _, err := s.users.GetByUUID(ctx, userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnknownUser
		}
		return nil, err
	}

	if project.HasMember(userID) {
		return nil, models.ErrAlreadyMember
	}

	if idx := project.PendingInvitation(userID); idx >= 0 {
		project.Invitations[idx].Status = models.InvitationAccepted
	}
	project.Members = append(project.Members, userID)
	project.UpdatedAt = s.Now()

	if err := s.projects.Save(ctx, project); err != nil {
		return nil, err
	}

	s.bus.Publish(events.TopicProjectUpdated, events.ProjectUpdated{Project: project})

	logging.Logger.Infof("User %s added to project %s by %s", userID, projectID, callerID)
	return project, nil
}
