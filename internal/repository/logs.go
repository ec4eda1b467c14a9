package repository

import (
	"context"

	"alumhub/internal/database"
	"alumhub/internal/models"
)

// LogRepository persists the payment-webhook audit trail and user
// notifications. Audit rows are append-only; nothing updates them.
type LogRepository struct {
	db *database.DB
}

func NewLogRepository(db *database.DB) *LogRepository {
	return &LogRepository{db: db}
}

func (r *LogRepository) CreateMidtransLog(ctx context.Context, log *models.MidtransLog) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO midtrans_logs (order_id, transaction_id, transaction_status,
		                           fraud_status, payment_type, gross_amount, status_code, raw_body)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		log.OrderID,
		log.TransactionID,
		log.TransactionStatus,
		log.FraudStatus,
		log.PaymentType,
		log.GrossAmount,
		log.StatusCode,
		string(log.RawBody),
	).Scan(&log.ID, &log.CreatedAt)
}

func (r *LogRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO notifications (user_id, title, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		n.UserID, n.Title, n.Body,
	).Scan(&n.ID, &n.CreatedAt)
}

func (r *LogRepository) ListNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, title, COALESCE(body, ''), is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}
