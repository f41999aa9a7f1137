// Package admin wraps the /admin endpoints for user, role and action
// management. Every call requires an admin-grade bearer; the backend
// enforces the action codes, the client only gates UI affordances.
package admin

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/octabyte/dietician-client/httpclient"
	"github.com/octabyte/dietician-client/models"
)

type Service struct {
	client   *httpclient.Client
	validate *validator.Validate
}

func NewService(client *httpclient.Client) *Service {
	return &Service{
		client:   client,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Users lists users page by page, optionally filtered by role code.
func (s *Service) Users(ctx context.Context, role string, page, size int) (*models.PaginatedUsers, error) {
	query := map[string]string{
		"page": strconv.Itoa(page),
		"size": strconv.Itoa(size),
	}
	if role != "" {
		query["role"] = role
	}

	var out models.PaginatedUsers
	if err := s.client.Get(ctx, "/admin/users", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) User(ctx context.Context, userID uint64) (*models.UserResponse, error) {
	var out models.UserResponse
	if err := s.client.Get(ctx, fmt.Sprintf("/admin/users/%d", userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.UserResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	var out models.UserResponse
	if err := s.client.Post(ctx, "/admin/users", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) UpdateUser(ctx context.Context, userID uint64, req models.UpdateUserRequest) (*models.UserResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	var out models.UserResponse
	if err := s.client.Put(ctx, fmt.Sprintf("/admin/users/%d", userID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetUserStatus activates or deactivates an account.
func (s *Service) SetUserStatus(ctx context.Context, userID uint64, active bool) (string, error) {
	var out models.MessageResponse
	err := s.client.Patch(ctx, fmt.Sprintf("/admin/users/%d/status", userID),
		map[string]string{"active": strconv.FormatBool(active)}, nil, &out)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// ResetPassword emails the user a temporary password.
func (s *Service) ResetPassword(ctx context.Context, userID uint64) (string, error) {
	var out models.MessageResponse
	err := s.client.Post(ctx, fmt.Sprintf("/admin/users/%d/reset-password", userID), nil, &out)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

func (s *Service) DeleteUser(ctx context.Context, userID uint64) (string, error) {
	var out models.MessageResponse
	if err := s.client.Delete(ctx, fmt.Sprintf("/admin/users/%d", userID), &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (s *Service) Roles(ctx context.Context) ([]models.Role, error) {
	var out []models.Role
	if err := s.client.Get(ctx, "/admin/roles", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RoleActions lists every action with an assigned flag for the role.
func (s *Service) RoleActions(ctx context.Context, roleID uint64) ([]models.Action, error) {
	var out []models.Action
	if err := s.client.Get(ctx, fmt.Sprintf("/admin/roles/%d/actions", roleID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateRoleActions replaces the role's assigned action set.
func (s *Service) UpdateRoleActions(ctx context.Context, roleID uint64, actionIDs []uint64) (string, error) {
	req := models.UpdateRoleActionsRequest{ActionIDs: actionIDs}
	if err := s.validate.Struct(req); err != nil {
		return "", err
	}

	var out models.MessageResponse
	err := s.client.Put(ctx, fmt.Sprintf("/admin/roles/%d/actions", roleID), req, &out)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

func (s *Service) Actions(ctx context.Context) ([]models.Action, error) {
	var out []models.Action
	if err := s.client.Get(ctx, "/admin/actions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
