package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/hisab/internal/models"
)

// CreateNotification persists a notification for one user.
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	newID(&n.ID)
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO notifications (id, user_id, message, is_read, created_at) VALUES (?, ?, ?, ?, ?)`),
		n.ID, n.UserID, n.Message, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return s.wrapWrite("insert notification", err)
	}
	return nil
}

// ListNotifications returns a user's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT id, user_id, message, is_read, created_at
		 FROM notifications WHERE user_id = ?
		 ORDER BY created_at DESC, `+s.dialect.RowOrder+` DESC`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return out, nil
}

// MarkNotificationRead flags one of userID's notifications as read.
func (s *Store) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	res, err := s.db.ExecContext(ctx, s.q(
		`UPDATE notifications SET is_read = ? WHERE id = ? AND user_id = ?`),
		true, notificationID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return expectOne(res, "notification", notificationID)
}

const mealRequestQuery = `
	SELECT r.id, r.group_id, r.user_id, COALESCE(u.display_name, 'Unknown'), r.date, r.status, r.message
	FROM meal_requests r
	LEFT JOIN users u ON u.id = r.user_id`

func scanMealRequest(row rowScanner, r *models.MealRequest) error {
	return row.Scan(&r.ID, &r.GroupID, &r.UserID, &r.UserName, &r.Date, &r.Status, &r.Message)
}

// CreateMealRequest persists a meal change request.
func (s *Store) CreateMealRequest(ctx context.Context, r *models.MealRequest) error {
	newID(&r.ID)
	if r.Status == "" {
		r.Status = models.MealRequestPending
	}
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO meal_requests (id, group_id, user_id, date, status, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		r.ID, r.GroupID, r.UserID, r.Date, string(r.Status), r.Message, time.Now().Unix(),
	)
	if err != nil {
		return s.wrapWrite("insert meal request", err)
	}
	return nil
}

// GetMealRequest retrieves a request that belongs to groupID.
func (s *Store) GetMealRequest(ctx context.Context, groupID, requestID string) (*models.MealRequest, error) {
	r := &models.MealRequest{}
	row := s.db.QueryRowContext(ctx, s.q(mealRequestQuery+` WHERE r.id = ? AND r.group_id = ?`), requestID, groupID)
	if err := scanMealRequest(row, r); err != nil {
		return nil, notFound("meal request", requestID, err)
	}
	return r, nil
}

// ListMealRequests returns a group's requests in the order they were made.
func (s *Store) ListMealRequests(ctx context.Context, groupID string) ([]models.MealRequest, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		mealRequestQuery+` WHERE r.group_id = ? ORDER BY r.created_at, r.`+s.dialect.RowOrder),
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal requests: %w", err)
	}
	defer rows.Close()

	var out []models.MealRequest
	for rows.Next() {
		var r models.MealRequest
		if err := scanMealRequest(rows, &r); err != nil {
			return nil, fmt.Errorf("failed to scan meal request: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meal requests: %w", err)
	}
	return out, nil
}

// UpdateMealRequestStatus records the manager's decision.
func (s *Store) UpdateMealRequestStatus(ctx context.Context, groupID, requestID string, status models.MealRequestStatus) error {
	res, err := s.db.ExecContext(ctx, s.q(
		`UPDATE meal_requests SET status = ? WHERE id = ? AND group_id = ?`),
		string(status), requestID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to update meal request: %w", err)
	}
	return expectOne(res, "meal request", requestID)
}
