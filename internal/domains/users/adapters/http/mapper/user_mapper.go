package mapper

import (
	"github.com/Apurer/canteen-orders/internal/domains/users/domain"
	"github.com/Apurer/canteen-orders/internal/domains/users/ports"
)

// User represents the transport-layer shape of a chat user.
type User struct {
	ID       int64  `json:"id"`
	ChatID   int64  `json:"chatId"`
	Username string `json:"username,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Role     string `json:"role"`
	OfficeID *int64 `json:"officeId,omitempty"`
	Blocked  bool   `json:"blocked"`
}

// RegisterRequest is sent by the chat layer on first contact.
type RegisterRequest struct {
	ChatID   int64  `json:"chatId" binding:"required"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

type RoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type BlockRequest struct {
	Blocked bool `json:"blocked"`
}

// OfficeRequest assigns an office; null clears it.
type OfficeRequest struct {
	OfficeID *int64 `json:"officeId"`
}

func FromDomainUser(user *domain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:       user.ID,
		ChatID:   user.ChatID,
		Username: user.Username,
		FullName: user.FullName,
		Role:     string(user.Role),
		OfficeID: user.OfficeID,
		Blocked:  user.Blocked,
	}
}

func FromDomainUsers(users []*domain.User) []User {
	result := make([]User, 0, len(users))
	for _, user := range users {
		result = append(result, FromDomainUser(user))
	}
	return result
}

func ToRegisterInput(req RegisterRequest) ports.RegisterInput {
	return ports.RegisterInput{ChatID: req.ChatID, Username: req.Username, FullName: req.FullName}
}
