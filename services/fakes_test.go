package services

import (
	"context"
	"sync"
	"time"

	"task-manager/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory stands-ins for the Mongo/Cassandra repositories. They hand out
// copies the way a driver decode does, so a service mutation is only visible
// after Save.

func cloneProject(p *models.Project) *models.Project {
	clone := *p
	clone.Members = append([]string(nil), p.Members...)
	clone.Invitations = append([]models.Invitation(nil), p.Invitations...)
	return &clone
}

type memProjectStore struct {
	mu   sync.Mutex
	byID map[string]*models.Project
}

func newMemProjectStore() *memProjectStore {
	return &memProjectStore{byID: make(map[string]*models.Project)}
}

func (s *memProjectStore) Insert(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if project.ID.IsZero() {
		project.ID = primitive.NewObjectID()
	}
	s.byID[project.ID.Hex()] = cloneProject(project)
	return nil
}

func (s *memProjectStore) GetByID(_ context.Context, projectID string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, ok := s.byID[projectID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneProject(project), nil
}

func (s *memProjectStore) ListByAuthor(_ context.Context, authorID string) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var projects []models.Project
	for _, project := range s.byID {
		if project.AuthorID == authorID {
			projects = append(projects, *cloneProject(project))
		}
	}
	return projects, nil
}

func (s *memProjectStore) Save(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[project.ID.Hex()]; !ok {
		return models.ErrNotFound
	}
	s.byID[project.ID.Hex()] = cloneProject(project)
	return nil
}

func (s *memProjectStore) Delete(_ context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[projectID]; !ok {
		return models.ErrNotFound
	}
	delete(s.byID, projectID)
	return nil
}

type memUserStore struct {
	mu     sync.Mutex
	byUUID map[string]*models.User
}

func newMemUserStore(uuids ...string) *memUserStore {
	store := &memUserStore{byUUID: make(map[string]*models.User)}
	for _, id := range uuids {
		store.byUUID[id] = &models.User{
			UUID:  id,
			Name:  id,
			Email: id + "@example.com",
		}
	}
	return store
}

func (s *memUserStore) GetByUUID(_ context.Context, uuid string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byUUID[uuid]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *memUserStore) FindOrCreate(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byUUID[user.UUID]; ok {
		clone := *existing
		return &clone, nil
	}
	user.CreatedAt = time.Now()
	clone := *user
	s.byUUID[user.UUID] = &clone
	return user, nil
}

func (s *memUserStore) SearchByName(_ context.Context, name string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []models.User
	for _, user := range s.byUUID {
		if len(user.Name) >= len(name) && user.Name[:len(name)] == name {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (s *memUserStore) setEmail(uuid, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUUID[uuid].Email = email
}

type memNotificationStore struct {
	mu   sync.Mutex
	rows []models.Notification
}

func (s *memNotificationStore) Insert(_ context.Context, notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	s.rows = append(s.rows, *notification)
	return nil
}

func (s *memNotificationStore) ListForUser(_ context.Context, userID string) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []models.Notification
	for _, row := range s.rows {
		if row.UserID == userID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *memNotificationStore) GetByID(_ context.Context, notificationID string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.ID == notificationID {
			clone := row
			return &clone, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *memNotificationStore) MarkRead(_ context.Context, notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == notification.ID {
			s.rows[i].IsRead = true
			return nil
		}
	}
	return models.ErrNotFound
}

func (s *memNotificationStore) Delete(_ context.Context, notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].ID == notification.ID {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

type memTaskStore struct {
	mu   sync.Mutex
	rows []models.Task
}

func (s *memTaskStore) Insert(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	s.rows = append(s.rows, *task)
	return nil
}

func (s *memTaskStore) ListByProject(_ context.Context, projectID string) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []models.Task
	for _, row := range s.rows {
		if row.ProjectID == projectID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

type memMessageStore struct {
	mu            sync.Mutex
	conversations map[string]*models.Conversation
	messages      []models.Message
}

func newMemMessageStore() *memMessageStore {
	return &memMessageStore{conversations: make(map[string]*models.Conversation)}
}

func (s *memMessageStore) InsertConversation(_ context.Context, conversation *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conversation.ID.IsZero() {
		conversation.ID = primitive.NewObjectID()
	}
	clone := *conversation
	clone.Participants = append([]string(nil), conversation.Participants...)
	s.conversations[conversation.ID.Hex()] = &clone
	return nil
}

func (s *memMessageStore) GetConversation(_ context.Context, conversationID string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conversation, ok := s.conversations[conversationID]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := *conversation
	clone.Participants = append([]string(nil), conversation.Participants...)
	return &clone, nil
}

func (s *memMessageStore) InsertMessage(_ context.Context, message *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if message.ID.IsZero() {
		message.ID = primitive.NewObjectID()
	}
	s.messages = append(s.messages, *message)
	return nil
}

func (s *memMessageStore) SetLastMessage(_ context.Context, conversationID, messageID primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conversation, ok := s.conversations[conversationID.Hex()]
	if !ok {
		return models.ErrNotFound
	}
	conversation.LastMessageID = messageID
	conversation.UpdatedAt = at
	return nil
}

func (s *memMessageStore) ListMessages(_ context.Context, conversationID primitive.ObjectID) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []models.Message
	for _, row := range s.messages {
		if row.ConversationID == conversationID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

type fakeEmailSender struct {
	mu     sync.Mutex
	sent   []string
	failTo map[string]error
}

func (s *fakeEmailSender) Send(to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to)
	if err, ok := s.failTo[to]; ok {
		return err
	}
	return nil
}

func (s *fakeEmailSender) sentTo() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}
