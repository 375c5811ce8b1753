package repositories

import (
	"context"
	"fmt"
	"os"

	"task-manager/models"

	"github.com/gocql/gocql"
	"github.com/sirupsen/logrus"
)

// NotificationRepository stores notifications in Cassandra, partitioned by
// recipient and clustered newest-first.
type NotificationRepository struct {
	session *gocql.Session
	logger  *logrus.Logger
}

func NewNotificationRepository(logger *logrus.Logger) (*NotificationRepository, error) {
	db := os.Getenv("CASS_DB")
	if db == "" {
		db = "127.0.0.1"
	}

	cluster := gocql.NewCluster(db)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		logger.Errorf("Failed to connect to Cassandra: %v", err)
		return nil, fmt.Errorf("%w: %v", models.ErrStorage, err)
	}

	err = session.Query(
		`CREATE KEYSPACE IF NOT EXISTS notifications
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`).Exec()
	if err != nil {
		logger.Errorf("Failed to create keyspace: %v", err)
		return nil, fmt.Errorf("%w: %v", models.ErrStorage, err)
	}
	session.Close()

	cluster.Keyspace = "notifications"
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		logger.Errorf("Failed to connect to notifications keyspace: %v", err)
		return nil, fmt.Errorf("%w: %v", models.ErrStorage, err)
	}

	logger.Info("Connected to Cassandra notifications keyspace.")
	return &NotificationRepository{
		session: session,
		logger:  logger,
	}, nil
}

func (nr *NotificationRepository) CloseSession() {
	nr.session.Close()
	nr.logger.Info("Cassandra session closed.")
}

func (nr *NotificationRepository) CreateTable() {
	err := nr.session.Query(
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID,
			user_id TEXT,
			message TEXT,
			project_id TEXT,
			created_at TIMESTAMP,
			is_read BOOLEAN,
			PRIMARY KEY ((user_id), created_at, id)
		) WITH CLUSTERING ORDER BY (created_at DESC, id ASC)`).Exec()
	if err != nil {
		nr.logger.Errorf("Failed to create notifications table: %v", err)
	} else {
		nr.logger.Info("Notifications table ready.")
	}
}

func (nr *NotificationRepository) Insert(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = gocql.TimeUUID().String()
	}

	err := nr.session.Query(
		`INSERT INTO notifications (id, user_id, message, project_id, created_at, is_read)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		notification.ID, notification.UserID, notification.Message,
		notification.ProjectID, notification.CreatedAt, notification.IsRead,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("%w: failed to insert notification: %v", models.ErrStorage, err)
	}
	return nil
}

func (nr *NotificationRepository) ListForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	query := `SELECT id, user_id, message, project_id, created_at, is_read
			  FROM notifications WHERE user_id = ?`

	iter := nr.session.Query(query, userID).WithContext(ctx).Iter()
	var notifications []models.Notification
	var notification models.Notification

	for iter.Scan(&notification.ID, &notification.UserID, &notification.Message,
		&notification.ProjectID, &notification.CreatedAt, &notification.IsRead) {
		notifications = append(notifications, notification)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("%w: failed to list notifications: %v", models.ErrStorage, err)
	}

	return notifications, nil
}

// GetByID looks a notification up by id alone. The id is a clustering
// column, so the scan needs ALLOW FILTERING; per-user partitions keep it
// cheap.
func (nr *NotificationRepository) GetByID(ctx context.Context, notificationID string) (*models.Notification, error) {
	uuid, err := gocql.ParseUUID(notificationID)
	if err != nil {
		return nil, models.ErrNotFound
	}

	query := `SELECT id, user_id, message, project_id, created_at, is_read
			  FROM notifications WHERE id = ? ALLOW FILTERING`

	var notification models.Notification
	err = nr.session.Query(query, uuid).WithContext(ctx).Scan(
		&notification.ID, &notification.UserID, &notification.Message,
		&notification.ProjectID, &notification.CreatedAt, &notification.IsRead)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to fetch notification: %v", models.ErrStorage, err)
	}

	return &notification, nil
}

// MarkRead flips the read flag. The full primary key comes from a prior
// GetByID.
func (nr *NotificationRepository) MarkRead(ctx context.Context, notification *models.Notification) error {
	uuid, err := gocql.ParseUUID(notification.ID)
	if err != nil {
		return models.ErrNotFound
	}

	query := `UPDATE notifications SET is_read = true WHERE user_id = ? AND created_at = ? AND id = ?`
	err = nr.session.Query(query, notification.UserID, notification.CreatedAt, uuid).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("%w: failed to mark notification as read: %v", models.ErrStorage, err)
	}
	return nil
}

func (nr *NotificationRepository) Delete(ctx context.Context, notification *models.Notification) error {
	uuid, err := gocql.ParseUUID(notification.ID)
	if err != nil {
		return models.ErrNotFound
	}

	query := `DELETE FROM notifications WHERE user_id = ? AND created_at = ? AND id = ?`
	err = nr.session.Query(query, notification.UserID, notification.CreatedAt, uuid).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("%w: failed to delete notification: %v", models.ErrStorage, err)
	}
	return nil
}
