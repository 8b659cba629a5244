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

// RequestRepo manages persistence for swap requests.
type RequestRepo struct {
	db *sql.DB
}

// NewRequestRepo constructs a RequestRepo with the given DB handle.
func NewRequestRepo(db *sql.DB) *RequestRepo {
	return &RequestRepo{db: db}
}

const requestColumns = `r.id, r.user_id, r.current_hostel, r.current_block, r.current_floor, r.current_room,
	r.desired_hostel, r.desired_block, r.desired_floor, r.desired_room,
	r.room_type, r.seater, r.message, r.status, r.created_at`

const ownerColumns = `u.id, u.name, u.email, u.registration_number, u.phone_number`

func requestDest(r *model.Request) []any {
	return []any{
		&r.ID, &r.UserID, &r.CurrentHostel, &r.CurrentBlock, &r.CurrentFloor, &r.CurrentRoom,
		&r.DesiredHostel, &r.DesiredBlock, &r.DesiredFloor, &r.DesiredRoom,
		&r.RoomType, &r.Seater, &r.Message, &r.Status, &r.CreatedAt,
	}
}

func scanRequestWithOwner(s rowScanner) (model.RequestWithOwner, error) {
	var out model.RequestWithOwner
	dest := append(requestDest(&out.Request),
		&out.User.ID, &out.User.Name, &out.User.Email, &out.User.RegistrationNumber, &out.User.PhoneNumber)
	err := s.Scan(dest...)
	return out, err
}

func (r *RequestRepo) listWithOwner(ctx context.Context, q string, args ...any) ([]model.RequestWithOwner, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.RequestWithOwner{}
	for rows.Next() {
		rw, err := scanRequestWithOwner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rw)
	}
	return out, rows.Err()
}

// ListOpen returns open requests newest first, joined with their owner.
// A non-positive limit returns every open request.
func (r *RequestRepo) ListOpen(ctx context.Context, limit int) ([]model.RequestWithOwner, error) {
	q := `SELECT ` + requestColumns + `, ` + ownerColumns + `
	      FROM requests r
	      JOIN users u ON u.id = r.user_id
	      WHERE r.status = ?
	      ORDER BY r.created_at DESC`
	if limit > 0 {
		return r.listWithOwner(ctx, q+" LIMIT ?", model.RequestStatusOpen, limit)
	}
	return r.listWithOwner(ctx, q, model.RequestStatusOpen)
}

// ListAllWithOwner returns every request regardless of status, newest first.
func (r *RequestRepo) ListAllWithOwner(ctx context.Context) ([]model.RequestWithOwner, error) {
	q := `SELECT ` + requestColumns + `, ` + ownerColumns + `
	      FROM requests r
	      JOIN users u ON u.id = r.user_id
	      ORDER BY r.created_at DESC`
	return r.listWithOwner(ctx, q)
}

// ListByUser returns the user's own requests, newest first.
func (r *RequestRepo) ListByUser(ctx context.Context, userID string) ([]model.Request, error) {
	q := `SELECT ` + requestColumns + ` FROM requests r WHERE r.user_id = ? ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Request{}
	for rows.Next() {
		var req model.Request
		if err := rows.Scan(requestDest(&req)...); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// CountOpenByUser counts the user's open requests.
func (r *RequestRepo) CountOpenByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM requests WHERE user_id = ? AND status = ?",
		userID, model.RequestStatusOpen).Scan(&n)
	return n, err
}

// CreateWithLimit inserts req unless its owner already has limit open
// requests, in which case ErrLimitReached is returned.  The owner row
// is locked for the duration of the transaction so concurrent creates
// by the same user are serialized.
func (r *RequestRepo) CreateWithLimit(ctx context.Context, req *model.Request, limit int) (err error) {
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

	var owner string
	if err = tx.QueryRowContext(ctx, "SELECT id FROM users WHERE id = ? FOR UPDATE", req.UserID).Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	var open int
	if err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM requests WHERE user_id = ? AND status = ?",
		req.UserID, model.RequestStatusOpen).Scan(&open); err != nil {
		return err
	}
	if open >= limit {
		return ErrLimitReached
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = model.RequestStatusOpen
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	const q = `INSERT INTO requests
		(id, user_id, current_hostel, current_block, current_floor, current_room,
		 desired_hostel, desired_block, desired_floor, desired_room,
		 room_type, seater, message, status, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	if _, err = tx.ExecContext(ctx, q,
		req.ID, req.UserID, req.CurrentHostel, req.CurrentBlock, req.CurrentFloor, req.CurrentRoom,
		req.DesiredHostel, req.DesiredBlock, req.DesiredFloor, req.DesiredRoom,
		req.RoomType, req.Seater, req.Message, req.Status, req.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

// GetByID retrieves a request.  It returns ErrNotFound if there is no
// matching row.
func (r *RequestRepo) GetByID(ctx context.Context, id string) (model.Request, error) {
	var req model.Request
	err := r.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM requests r WHERE r.id = ?`, id).Scan(requestDest(&req)...)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Request{}, ErrNotFound
	}
	return req, err
}

// GetWithOwner retrieves a request joined with its owner.
func (r *RequestRepo) GetWithOwner(ctx context.Context, id string) (model.RequestWithOwner, error) {
	q := `SELECT ` + requestColumns + `, ` + ownerColumns + `
	      FROM requests r
	      JOIN users u ON u.id = r.user_id
	      WHERE r.id = ?`
	rw, err := scanRequestWithOwner(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.RequestWithOwner{}, ErrNotFound
	}
	return rw, err
}

// Update overwrites every editable column of the request.  Owner,
// status and creation time are never changed here.
func (r *RequestRepo) Update(ctx context.Context, req *model.Request) error {
	const q = `UPDATE requests SET
		current_hostel = ?, current_block = ?, current_floor = ?, current_room = ?,
		desired_hostel = ?, desired_block = ?, desired_floor = ?, desired_room = ?,
		room_type = ?, seater = ?, message = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		req.CurrentHostel, req.CurrentBlock, req.CurrentFloor, req.CurrentRoom,
		req.DesiredHostel, req.DesiredBlock, req.DesiredFloor, req.DesiredRoom,
		req.RoomType, req.Seater, req.Message, req.ID)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a request together with its interests and the
// notifications that point at it.
func (r *RequestRepo) Delete(ctx context.Context, id string) (err error) {
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

	if _, err = tx.ExecContext(ctx, "DELETE FROM notifications WHERE request_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM interests WHERE request_id = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM requests WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
