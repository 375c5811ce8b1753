package services

import (
	"context"
	"fmt"
	"time"

	"task-manager/events"
	"task-manager/logging"
	"task-manager/models"

	"github.com/sony/gobreaker"
)

// TaskStore is the slice of the task repository the service needs.
type TaskStore interface {
	Insert(ctx context.Context, task *models.Task) error
	ListByProject(ctx context.Context, projectID string) ([]models.Task, error)
}

// EmailSender is the outbound notification sink. Delivery is fire-and-forget
// from this service's point of view.
type EmailSender interface {
	Send(to, subject, body string) error
}

// TaskService creates tasks and fans assignment notifications out to the
// assignees, by durable notification and by email.
type TaskService struct {
	tasks    TaskStore
	projects ProjectStore
	users    UserResolver
	notifier Notifier
	sender   EmailSender
	breaker  *gobreaker.CircuitBreaker
	bus      *events.Bus

	Now func() time.Time
}

func NewTaskService(tasks TaskStore, projects ProjectStore, users UserResolver, notifier Notifier, sender EmailSender, breaker *gobreaker.CircuitBreaker, bus *events.Bus) *TaskService {
	return &TaskService{
		tasks:    tasks,
		projects: projects,
		users:    users,
		notifier: notifier,
		sender:   sender,
		breaker:  breaker,
		bus:      bus,
		Now:      time.Now,
	}
}

// CreateTask persists the task and notifies every assignee. Fan-out is
// best-effort: a failure for one assignee is logged and the rest still get
// their notification; the task creation itself never fails because of the
// sink.
func (s *TaskService) CreateTask(ctx context.Context, projectID, title, description string, dueDate time.Time, status models.TaskStatus, assignedTo []string) (*models.Task, error) {
	if title == "" {
		return nil, fmt.Errorf("task title is required")
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if status == "" {
		status = models.TaskStatusToDo
	}

	task := &models.Task{
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Status:      status,
		AssignedTo:  assignedTo,
		CreatedAt:   s.Now(),
	}

	if err := s.tasks.Insert(ctx, task); err != nil {
		return nil, err
	}

	s.bus.Publish(events.TopicProjectUpdated, events.ProjectUpdated{Project: project})

	s.notifyAssignees(ctx, project, task)

	logging.Logger.Infof("Task %s created in project %s", task.ID.Hex(), projectID)
	return task, nil
}

func (s *TaskService) GetTasksByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	return s.tasks.ListByProject(ctx, projectID)
}

func (s *TaskService) notifyAssignees(ctx context.Context, project *models.Project, task *models.Task) {
	subject := fmt.Sprintf("New task in project %q", project.Name)
	body := fmt.Sprintf("You have been assigned to task %q in project %q.", task.Title, project.Name)

	for _, assigneeID := range task.AssignedTo {
		user, err := s.users.GetByUUID(ctx, assigneeID)
		if err != nil {
			logging.Logger.Warnf("Skipping assignee %s for task %s: %v", assigneeID, task.ID.Hex(), err)
			continue
		}

		if _, err := s.notifier.CreateNotification(ctx, user.UUID, body, task.ProjectID); err != nil {
			logging.Logger.Errorf("Failed to create notification for assignee %s: %v", assigneeID, err)
		}

		if user.Email == "" {
			continue
		}
		_, err = s.breaker.Execute(func() (interface{}, error) {
			return nil, s.sender.Send(user.Email, subject, body)
		})
		if err != nil {
			logging.Logger.Errorf("Failed to send email to %s for task %s: %v", user.Email, task.ID.Hex(), err)
		}
	}
}
