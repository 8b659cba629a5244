package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shiftbuddy/hostel-swap/internal/model"
)

// InterestRepo stores interests and the notifications they trigger.
type InterestRepo struct {
	db *sql.DB
}

func NewInterestRepo(db *sql.DB) *InterestRepo { return &InterestRepo{db: db} }

// Exists reports whether userID already showed interest in requestID.
func (r *InterestRepo) Exists(ctx context.Context, userID, requestID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM interests WHERE user_id = ? AND request_id = ?",
		userID, requestID).Scan(&n)
	return n > 0, err
}

// CreateWithNotification inserts the interest and the owner's
// notification in one transaction.  A concurrent duplicate interest
// surfaces as ErrDuplicate and leaves no notification behind.
func (r *InterestRepo) CreateWithNotification(ctx context.Context, i *model.Interest, n *model.Notification) (err error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = now
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		"INSERT INTO interests (id, user_id, request_id, created_at) VALUES (?,?,?,?)",
		i.ID, i.UserID, i.RequestID, i.CreatedAt); err != nil {
		if isDuplicate(err) {
			err = ErrDuplicate
			return err
		}
		return fmt.Errorf("insert interest: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, type, message, request_id, interested_by, is_read, created_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		n.ID, n.UserID, n.Type, n.Message, n.RequestID, n.InterestedBy, n.IsRead, n.CreatedAt); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
