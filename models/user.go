package models

import "github.com/octabyte/dietician-client/enums"

type User struct {
	ID                uint64     `json:"id"`
	Email             string     `json:"email"`
	FullName          string     `json:"fullName,omitempty"`
	Role              enums.Role `json:"role"`
	Actions           []string   `json:"actions,omitempty"`
	EmailVerified     bool       `json:"emailVerified"`
	ProfilePictureURL string     `json:"profilePictureUrl,omitempty"`
}

// HasAction reports whether the user holds the given action code.
func (u *User) HasAction(code string) bool {
	if u == nil {
		return false
	}
	for _, a := range u.Actions {
		if a == code {
			return true
		}
	}
	return false
}

type Role struct {
	ID       uint64 `json:"id"`
	RoleCode string `json:"roleCode"`
	RoleName string `json:"roleName"`
}

type Action struct {
	ID          uint64 `json:"id"`
	ActionCode  string `json:"actionCode"`
	ActionName  string `json:"actionName"`
	Description string `json:"description,omitempty"`
	Module      string `json:"module,omitempty"`
	IsActive    bool   `json:"isActive"`
	Assigned    bool   `json:"assigned,omitempty"`
}
