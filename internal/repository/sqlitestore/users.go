package sqlitestore

import (
	"context"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/iliyamo/railway-ticketing/internal/model"
	"github.com/iliyamo/railway-ticketing/internal/repository"
)

// UserStore keeps accounts in the users table.  Timestamps are unix seconds.
type UserStore struct {
	get acquire
}

func (s *UserStore) Create(ctx context.Context, u model.User) error {
	conn, put, err := s.get(ctx)
	if err != nil {
		return err
	}
	defer put()
	now := time.Now().UTC().Unix()
	err = sqlitex.Execute(conn,
		`INSERT INTO users (user_id, username, password_hash, privilege, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{int64(u.ID), u.Username, u.PasswordHash, u.Privilege, now, now}})
	if isUnique(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (s *UserStore) Get(ctx context.Context, id uint64) (model.User, error) {
	conn, put, err := s.get(ctx)
	if err != nil {
		return model.User{}, err
	}
	defer put()
	var (
		u     model.User
		found bool
	)
	err = sqlitex.Execute(conn,
		`SELECT user_id, username, password_hash, privilege, created_at, updated_at FROM users WHERE user_id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{int64(id)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				u = model.User{
					ID:           uint64(stmt.ColumnInt64(0)),
					Username:     stmt.ColumnText(1),
					PasswordHash: stmt.ColumnText(2),
					Privilege:    stmt.ColumnInt(3),
					CreatedAt:    time.Unix(stmt.ColumnInt64(4), 0).UTC(),
					UpdatedAt:    time.Unix(stmt.ColumnInt64(5), 0).UTC(),
				}
				return nil
			},
		})
	if err != nil {
		return model.User{}, err
	}
	if !found {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	return s.update(ctx, `UPDATE users SET password_hash = ?, updated_at = ? WHERE user_id = ?`,
		hash, time.Now().UTC().Unix(), int64(id))
}

func (s *UserStore) UpdatePrivilege(ctx context.Context, id uint64, privilege int) error {
	return s.update(ctx, `UPDATE users SET privilege = ?, updated_at = ? WHERE user_id = ?`,
		privilege, time.Now().UTC().Unix(), int64(id))
}

func (s *UserStore) update(ctx context.Context, q string, args ...any) error {
	conn, put, err := s.get(ctx)
	if err != nil {
		return err
	}
	defer put()
	if err := sqlitex.Execute(conn, q, &sqlitex.ExecOptions{Args: args}); err != nil {
		return err
	}
	if conn.Changes() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// TokenStore keeps refresh token hashes in the refresh_tokens table.
type TokenStore struct {
	get acquire
}

func (s *TokenStore) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	return s.exec(ctx, `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)`,
		int64(userID), tokenHash, exp.UTC().Unix())
}

func (s *TokenStore) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	conn, put, err := s.get(ctx)
	if err != nil {
		return 0, err
	}
	defer put()
	var (
		userID uint64
		found  bool
	)
	err = sqlitex.Execute(conn,
		`SELECT user_id FROM refresh_tokens WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > ?`,
		&sqlitex.ExecOptions{
			Args: []any{tokenHash, time.Now().UTC().Unix()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				userID = uint64(stmt.ColumnInt64(0))
				return nil
			},
		})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, repository.ErrNotFound
	}
	return userID, nil
}

func (s *TokenStore) RevokeByHash(ctx context.Context, tokenHash string) error {
	return s.exec(ctx, `UPDATE refresh_tokens SET revoked_at = ? WHERE token_hash = ? AND revoked_at IS NULL`,
		time.Now().UTC().Unix(), tokenHash)
}

func (s *TokenStore) RevokeAllForUser(ctx context.Context, userID uint64) error {
	return s.exec(ctx, `UPDATE refresh_tokens SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL`,
		time.Now().UTC().Unix(), int64(userID))
}

func (s *TokenStore) exec(ctx context.Context, q string, args ...any) error {
	conn, put, err := s.get(ctx)
	if err != nil {
		return err
	}
	defer put()
	return sqlitex.Execute(conn, q, &sqlitex.ExecOptions{Args: args})
}
