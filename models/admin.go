package models

import "github.com/octabyte/dietician-client/enums"

type UserSummary struct {
	ID            uint64 `json:"id"`
	Email         string `json:"email"`
	FullName      string `json:"fullName,omitempty"`
	RoleCode      string `json:"roleCode"`
	RoleName      string `json:"roleName"`
	IsActive      bool   `json:"isActive"`
	EmailVerified bool   `json:"emailVerified"`
	CreatedDate   string `json:"createdDate"`
}

type UserResponse struct {
	ID                uint64   `json:"id"`
	Email             string   `json:"email"`
	FullName          string   `json:"fullName,omitempty"`
	Role              Role     `json:"role"`
	IsActive          bool     `json:"isActive"`
	EmailVerified     bool     `json:"emailVerified"`
	ProfilePictureURL string   `json:"profilePictureUrl,omitempty"`
	CreatedDate       string   `json:"createdDate"`
	Actions           []string `json:"actions,omitempty"`
}

// PaginatedUsers mirrors the backend's Spring Page envelope.
type PaginatedUsers struct {
	Content       []UserSummary `json:"content"`
	TotalPages    int           `json:"totalPages"`
	TotalElements int64         `json:"totalElements"`
	Size          int           `json:"size"`
	Number        int           `json:"number"`
}

type CreateUserRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	FullName string     `json:"fullName" validate:"required"`
	Role     enums.Role `json:"role" validate:"required,oneof=ADMIN DIETICIAN PATIENT"`
	Password string     `json:"password,omitempty"`
}

type UpdateUserRequest struct {
	FullName string     `json:"fullName,omitempty"`
	Role     enums.Role `json:"role,omitempty" validate:"omitempty,oneof=ADMIN DIETICIAN PATIENT"`
}

type UpdateRoleActionsRequest struct {
	ActionIDs []uint64 `json:"actionIds" validate:"required"`
}
