package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/railway-ticketing/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user under its chosen id.
func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (user_id, username, password_hash, privilege) VALUES (?,?,?,?)",
		u.ID, u.Username, u.PasswordHash, u.Privilege)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// Get fetches a user by id.
func (r *UserRepo) Get(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id,username,password_hash,privilege,created_at,updated_at FROM users WHERE user_id=? LIMIT 1",
		id).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Privilege, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	return r.update(ctx, "UPDATE users SET password_hash=?, updated_at=UTC_TIMESTAMP() WHERE user_id=?", hash, id)
}

// UpdatePrivilege changes the user's privilege level.
func (r *UserRepo) UpdatePrivilege(ctx context.Context, id uint64, privilege int) error {
	return r.update(ctx, "UPDATE users SET privilege=?, updated_at=UTC_TIMESTAMP() WHERE user_id=?", privilege, id)
}

func (r *UserRepo) update(ctx context.Context, q string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports 0 affected rows for an unchanged value too; tell
		// the two apart with a lookup.
		if _, err := r.Get(ctx, args[len(args)-1].(uint64)); err != nil {
			return err
		}
	}
	return nil
}
