package service

import (
	"context"
	"strings"

	"github.com/Almer24/it-ticketing-system/internal/models"
	"github.com/Almer24/it-ticketing-system/internal/repository"
	"github.com/Almer24/it-ticketing-system/internal/utils"
)

// UserService covers staff-gated account management.
type UserService struct {
	users       repository.UserRepository
	itCanManage bool
}

func NewUserService(users repository.UserRepository, itCanManage bool) *UserService {
	return &UserService{users: users, itCanManage: itCanManage}
}

func (s *UserService) caps(a Actor) Capabilities {
	return ResolveCapabilities(a, s.itCanManage)
}

type UserInput struct {
	Username   string
	Email      string
	Password   string // optional on update
	Department string
	Role       string
}

func validateUserInput(in *UserInput, requirePassword bool) *ValidationError {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Department = strings.TrimSpace(in.Department)
	in.Role = strings.TrimSpace(in.Role)

	fields := map[string]string{}
	if in.Username == "" {
		fields["username"] = "username is required"
	}
	if in.Email == "" {
		fields["email"] = "email is required"
	}
	if requirePassword && len(in.Password) < 6 {
		fields["password"] = "password must be at least 6 characters"
	}
	if !requirePassword && in.Password != "" && len(in.Password) < 6 {
		fields["password"] = "password must be at least 6 characters"
	}
	if !models.ValidRole(in.Role) {
		fields["role"] = "role must be user, admin or it"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *UserService) Create(ctx context.Context, actor Actor, in UserInput) (*models.User, error) {
	if !s.caps(actor).ManageUsers {
		return nil, ErrForbidden
	}
	if verr := validateUserInput(&in, true); verr != nil {
		return nil, verr
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Username:   in.Username,
		Email:      in.Email,
		Department: in.Department,
		Role:       in.Role,
	}
	if err := s.users.Create(ctx, u, hash); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Update(ctx context.Context, actor Actor, id string, in UserInput) (*models.User, error) {
	if !s.caps(actor).ManageUsers {
		return nil, ErrForbidden
	}
	if verr := validateUserInput(&in, false); verr != nil {
		return nil, verr
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, repository.ErrNotFound
	}

	u.Username = in.Username
	u.Email = in.Email
	u.Department = in.Department
	u.Role = in.Role
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	if in.Password != "" {
		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		if err := s.users.UpdatePasswordHash(ctx, id, hash); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// Delete removes an account. A caller can never delete their own,
// whatever their role.
func (s *UserService) Delete(ctx context.Context, actor Actor, id string) error {
	if !s.caps(actor).ManageUsers {
		return ErrForbidden
	}
	if id == actor.ID {
		return ErrSelfDelete
	}
	return s.users.Delete(ctx, id)
}

// Get allows staff to read anyone and every caller to read themselves.
func (s *UserService) Get(ctx context.Context, actor Actor, id string) (*models.User, error) {
	if !s.caps(actor).ManageUsers && id != actor.ID {
		return nil, repository.ErrNotFound
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, actor Actor, q, role string, limit, offset int) ([]models.User, int, error) {
	if !s.caps(actor).ManageUsers {
		return nil, 0, ErrForbidden
	}
	return s.users.List(ctx, q, role, limit, offset)
}
