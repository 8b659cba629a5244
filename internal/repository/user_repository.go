package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shiftbuddy/hostel-swap/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,registration_number,phone_number,password_hash,is_admin,is_banned,timeout_until,created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.RegistrationNumber, &u.PhoneNumber,
		&u.PasswordHash, &u.IsAdmin, &u.IsBanned, &u.TimeoutUntil, &u.CreatedAt)
	return u, err
}

// Create inserts the user.  ID and CreatedAt are filled when empty.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id,name,email,registration_number,phone_number,password_hash,is_admin,created_at) VALUES (?,?,?,?,?,?,?,?)",
		u.ID, u.Name, u.Email, u.RegistrationNumber, u.PhoneNumber, u.PasswordHash, u.IsAdmin, u.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByRegistrationNumber fetches a user by normalized registration number.
func (r *UserRepo) GetByRegistrationNumber(ctx context.Context, reg string) (model.User, error) {
	reg = strings.ToUpper(strings.TrimSpace(reg))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE registration_number=? LIMIT 1", reg))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// ListAll returns every user, newest first.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateProfile writes the non-nil fields of p.
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, p ProfileUpdate) error {
	if p.Empty() {
		return nil
	}
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if p.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, *p.Name)
	}
	if p.RegistrationNumber != nil {
		sets = append(sets, "registration_number=?")
		args = append(args, *p.RegistrationNumber)
	}
	if p.PhoneNumber != nil {
		sets = append(sets, "phone_number=?")
		args = append(args, *p.PhoneNumber)
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET "+strings.Join(sets, ",")+" WHERE id=?", args...)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetModeration updates the ban flag and timeout of a user.
func (r *UserRepo) SetModeration(ctx context.Context, id string, m ModerationUpdate) error {
	var (
		res sql.Result
		err error
	)
	if m.IsBanned != nil {
		res, err = r.DB.ExecContext(ctx,
			"UPDATE users SET is_banned=?, timeout_until=? WHERE id=?", *m.IsBanned, m.TimeoutUntil, id)
	} else {
		res, err = r.DB.ExecContext(ctx,
			"UPDATE users SET timeout_until=? WHERE id=?", m.TimeoutUntil, id)
	}
	if err != nil {
		return fmt.Errorf("update moderation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user and everything that references them: their
// notifications (received, caused, or attached to their requests),
// interests (theirs and on their requests), requests, feedback and
// refresh tokens.  The foreign keys cascade as well; the explicit
// deletes keep the operation correct on schemas created without them.
func (r *UserRepo) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
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

	var exists int
	if err = tx.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id=? FOR UPDATE", id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	stmts := []string{
		`DELETE n FROM notifications n
		 LEFT JOIN requests rq ON rq.id = n.request_id
		 WHERE n.user_id = ? OR n.interested_by = ? OR rq.user_id = ?`,
		`DELETE i FROM interests i
		 LEFT JOIN requests rq ON rq.id = i.request_id
		 WHERE i.user_id = ? OR rq.user_id = ?`,
		`DELETE FROM requests WHERE user_id = ?`,
		`DELETE FROM feedback WHERE user_id = ?`,
		`DELETE FROM refresh_tokens WHERE user_id = ?`,
		`DELETE FROM users WHERE id = ?`,
	}
	for _, q := range stmts {
		args := make([]any, strings.Count(q, "?"))
		for i := range args {
			args[i] = id
		}
		if _, err = tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
	}
	return nil
}
