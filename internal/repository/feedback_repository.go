package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shiftbuddy/hostel-swap/internal/model"
)

// FeedbackRepo persists feedback sent to the administrators.
type FeedbackRepo struct {
	db *sql.DB
}

func NewFeedbackRepo(db *sql.DB) *FeedbackRepo { return &FeedbackRepo{db: db} }

// Create inserts f.  ID, Status and CreatedAt are filled when empty.
func (r *FeedbackRepo) Create(ctx context.Context, f *model.Feedback) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = model.FeedbackStatusNew
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO feedback (id, user_id, subject, message, status, created_at) VALUES (?,?,?,?,?,?)",
		f.ID, f.UserID, f.Subject, f.Message, f.Status, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// List returns feedback newest first joined with the author.  An empty
// userID lists everyone's feedback.
func (r *FeedbackRepo) List(ctx context.Context, userID string) ([]model.FeedbackWithAuthor, error) {
	q := `SELECT f.id, f.user_id, f.subject, f.message, f.status, f.created_at,
	             u.name, u.email, u.registration_number
	      FROM feedback f
	      JOIN users u ON u.id = f.user_id`
	var args []any
	if userID != "" {
		q += " WHERE f.user_id = ?"
		args = append(args, userID)
	}
	q += " ORDER BY f.created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.FeedbackWithAuthor{}
	for rows.Next() {
		var f model.FeedbackWithAuthor
		if err := rows.Scan(&f.ID, &f.UserID, &f.Subject, &f.Message, &f.Status, &f.CreatedAt,
			&f.User.Name, &f.User.Email, &f.User.RegistrationNumber); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// GetByID fetches one feedback row.
func (r *FeedbackRepo) GetByID(ctx context.Context, id string) (model.Feedback, error) {
	var f model.Feedback
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, subject, message, status, created_at FROM feedback WHERE id = ?", id).
		Scan(&f.ID, &f.UserID, &f.Subject, &f.Message, &f.Status, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Feedback{}, ErrNotFound
	}
	return f, err
}

// UpdateStatus changes the status of one feedback row.
func (r *FeedbackRepo) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE feedback SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one feedback row.
func (r *FeedbackRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM feedback WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
