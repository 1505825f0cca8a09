package repository

import (
	"context"

	"github.com/google/uuid"

	"job_marketplace/internal/domain"
	"job_marketplace/pkg/logger"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	CountUnread(ctx context.Context, accountID uuid.UUID) (int, error)
}

type notificationRepository struct {
	db  DB
	log logger.Logger
}

func NewNotificationRepository(db DB, log logger.Logger) NotificationRepository {
	return &notificationRepository{db: db, log: log}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, account_id, title, body, kind, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		notification.ID, notification.AccountID, notification.Title,
		notification.Body, notification.Kind, notification.Payload,
	).Scan(&notification.CreatedAt)
	if err != nil {
		r.log.Error("Failed to create notification", "error", err, "account_id", notification.AccountID)
		return err
	}

	return nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, accountID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE account_id = $1 AND NOT is_read`

	var count int
	if err := r.db.QueryRow(ctx, query, accountID).Scan(&count); err != nil {
		r.log.Error("Failed to count unread notifications", "error", err, "account_id", accountID)
		return 0, err
	}

	return count, nil
}
