package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/iliyamo/railway-ticketing/internal/booking"
	"github.com/iliyamo/railway-ticketing/internal/model"
	"github.com/iliyamo/railway-ticketing/internal/repository"
	"github.com/iliyamo/railway-ticketing/internal/utils"
)

// AdminID is the id of the account created by EnsureAdmin.
const AdminID uint64 = 0

// ErrInvalidCredentials is returned by Authenticate for an unknown id or a
// wrong password; the two are not told apart.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserService manages accounts.  Access rules: a caller may read its own
// account and change its own password; any other account can be read or
// changed only when its privilege is strictly lower than the caller's.
type UserService struct {
	users          repository.UserStore
	bcryptCost     int
	adminPrivilege int
}

func NewUserService(users repository.UserStore, bcryptCost, adminPrivilege int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost, adminPrivilege: adminPrivilege}
}

// EnsureAdmin creates the admin account (id 0) when it does not exist yet.
func (s *UserService) EnsureAdmin(ctx context.Context, password string) error {
	_, err := s.users.Get(ctx, AdminID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return storageFailure(err)
	}
	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	err = s.users.Create(ctx, model.User{ID: AdminID, Username: "admin", PasswordHash: hash, Privilege: s.adminPrivilege})
	if errors.Is(err, repository.ErrDuplicate) {
		// Another instance created it between Get and Create.
		return nil
	}
	if err != nil {
		return storageFailure(err)
	}
	log.Printf("users: created admin account (id %d, privilege %d)", AdminID, s.adminPrivilege)
	return nil
}

// Register creates a regular account (privilege 0) under the chosen id.
func (s *UserService) Register(ctx context.Context, id uint64, username, password string) (model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.User{}, fmt.Errorf("%w: username is required", booking.ErrMalformedInput)
	}
	hash, err := utils.HashPassword(password, s.bcryptCost)
	if errors.Is(err, utils.ErrWeakPassword) {
		return model.User{}, fmt.Errorf("%w: %w", booking.ErrMalformedInput, err)
	}
	if err != nil {
		return model.User{}, err
	}
	u := model.User{ID: id, Username: username, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.User{}, fmt.Errorf("%w: user %d", booking.ErrDuplicateID, id)
		}
		return model.User{}, storageFailure(err)
	}
	return u, nil
}

// Authenticate checks a password and returns the account.
func (s *UserService) Authenticate(ctx context.Context, id uint64, password string) (model.User, error) {
	u, err := s.users.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, storageFailure(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Load fetches an account without any access check.  It serves token
// refresh, where the refresh token already proves the identity.
func (s *UserService) Load(ctx context.Context, id uint64) (model.User, error) {
	u, err := s.users.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, &booking.NotFoundError{Kind: booking.KindUser, ID: fmt.Sprint(id)}
	}
	if err != nil {
		return model.User{}, storageFailure(err)
	}
	return u, nil
}

// Get returns the account id if the caller may see it.
func (s *UserService) Get(ctx context.Context, c booking.Caller, id uint64) (model.User, error) {
	u, err := s.Load(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	if c.UserID != id && !c.CanManage(u.Privilege) {
		return model.User{}, booking.ErrPermissionDenied
	}
	return u, nil
}

// ChangePassword replaces the password of id.
func (s *UserService) ChangePassword(ctx context.Context, c booking.Caller, id uint64, password string) error {
	if _, err := s.Get(ctx, c, id); err != nil {
		return err
	}
	hash, err := utils.HashPassword(password, s.bcryptCost)
	if errors.Is(err, utils.ErrWeakPassword) {
		return fmt.Errorf("%w: %w", booking.ErrMalformedInput, err)
	}
	if err != nil {
		return err
	}
	return s.update(s.users.UpdatePassword(ctx, id, hash), id)
}

// ChangePrivilege sets the privilege of id.  The target must be manageable
// by the caller and the new privilege must stay below the caller's own.
func (s *UserService) ChangePrivilege(ctx context.Context, c booking.Caller, id uint64, privilege int) error {
	if privilege < 0 {
		return fmt.Errorf("%w: privilege must not be negative", booking.ErrMalformedInput)
	}
	u, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	if !c.CanManage(u.Privilege) || !c.CanManage(privilege) {
		return booking.ErrPermissionDenied
	}
	return s.update(s.users.UpdatePrivilege(ctx, id, privilege), id)
}

func (s *UserService) update(err error, id uint64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &booking.NotFoundError{Kind: booking.KindUser, ID: fmt.Sprint(id)}
	}
	return storageFailure(err)
}

func storageFailure(err error) error {
	if err == nil || errors.Is(err, booking.ErrStorageFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", booking.ErrStorageFailure, err)
}
