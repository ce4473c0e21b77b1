package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/cinebook/internal/model"
)

// NotificationRepo stores the in-app inbox.
type NotificationRepo struct{ db *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Create inserts a notification and populates its ID.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO notifications (user_id, title, message) VALUES (?,?,?)",
		n.UserID, n.Title, n.Message)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// ListByUser returns a user's notifications newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, message, is_read, created_at
		 FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags a notification of userID as read. Other users' rows yield
// ErrNotificationNotFound.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	var owner uint64
	err := r.db.QueryRowContext(ctx, "SELECT user_id FROM notifications WHERE id = ?", id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotificationNotFound
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrNotificationNotFound
	}
	_, err = r.db.ExecContext(ctx, "UPDATE notifications SET is_read = 1 WHERE id = ?", id)
	return err
}
