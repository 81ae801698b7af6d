package domain

import (
	"errors"
	"strings"
)

// Role controls which operations a user may perform.
type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
)

var (
	ErrInvalidChatID = errors.New("chat id must be greater than zero")
	ErrInvalidRole   = errors.New("user role is invalid")
	ErrInvalidOffice = errors.New("office id must be greater than zero")
)

// User is a chat participant who places orders or manages them.
type User struct {
	ID       int64
	ChatID   int64
	Username string
	FullName string
	Role     Role
	OfficeID *int64
	Blocked  bool
}

// NewUser builds a regular user for a chat account.
func NewUser(chatID int64, username, fullName string) (*User, error) {
	user := &User{ChatID: chatID, Role: RoleUser}
	user.UpdateProfile(username, fullName)
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile trims and stores the display fields.
func (u *User) UpdateProfile(username, fullName string) {
	u.Username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	u.FullName = strings.TrimSpace(fullName)
}

// SetRole accepts only known roles.
func (u *User) SetRole(role Role) error {
	if !isValidRole(role) {
		return ErrInvalidRole
	}
	u.Role = role
	return nil
}

// AssignOffice binds the user to an office; nil clears it.
func (u *User) AssignOffice(officeID *int64) error {
	if officeID != nil && *officeID <= 0 {
		return ErrInvalidOffice
	}
	u.OfficeID = officeID
	return nil
}

// IsManager reports whether the user may administer orders.
func (u *User) IsManager() bool {
	return u.Role == RoleManager && !u.Blocked
}

// Validate re-applies invariants for persistence.
func (u *User) Validate() error {
	if u.ChatID <= 0 {
		return ErrInvalidChatID
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if !isValidRole(u.Role) {
		return ErrInvalidRole
	}
	return u.AssignOffice(u.OfficeID)
}

// DisplayName prefers the full name, then the username.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "user"
}

func isValidRole(role Role) bool {
	switch role {
	case RoleUser, RoleManager:
		return true
	default:
		return false
	}
}
