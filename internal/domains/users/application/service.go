package application

import (
	"context"
	"errors"

	"github.com/Apurer/canteen-orders/internal/domains/users/domain"
	"github.com/Apurer/canteen-orders/internal/domains/users/ports"
)

// Service exposes user bounded context use cases.
type Service struct {
	repo     ports.Repository
	adminIDs map[int64]struct{}
}

// NewService wires the repository. Chat ids listed in adminChatIDs are promoted
// to managers when they register.
func NewService(repo ports.Repository, adminChatIDs ...int64) *Service {
	admins := make(map[int64]struct{}, len(adminChatIDs))
	for _, id := range adminChatIDs {
		admins[id] = struct{}{}
	}
	return &Service{repo: repo, adminIDs: admins}
}

// Register creates the user on first contact and refreshes the profile afterwards.
func (s *Service) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	existing, err := s.repo.GetByChatID(ctx, input.ChatID)
	switch {
	case err == nil:
		existing.UpdateProfile(input.Username, input.FullName)
		s.promoteAdmin(existing)
		return s.repo.Save(ctx, existing)
	case !errors.Is(err, ports.ErrNotFound):
		return nil, err
	}
	user, err := domain.NewUser(input.ChatID, input.Username, input.FullName)
	if err != nil {
		return nil, mapError(err)
	}
	s.promoteAdmin(user)
	return s.repo.Save(ctx, user)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByChatID(ctx context.Context, chatID int64) (*domain.User, error) {
	return s.repo.GetByChatID(ctx, chatID)
}

// ListManagers returns managers that are not blocked.
func (s *Service) ListManagers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.ListByRole(ctx, domain.RoleManager)
	if err != nil {
		return nil, err
	}
	managers := users[:0]
	for _, u := range users {
		if !u.Blocked {
			managers = append(managers, u)
		}
	}
	return managers, nil
}

func (s *Service) SetRole(ctx context.Context, id int64, role domain.Role) (*domain.User, error) {
	return s.update(ctx, id, func(u *domain.User) error { return u.SetRole(role) })
}

func (s *Service) SetBlocked(ctx context.Context, id int64, blocked bool) (*domain.User, error) {
	return s.update(ctx, id, func(u *domain.User) error {
		u.Blocked = blocked
		return nil
	})
}

func (s *Service) AssignOffice(ctx context.Context, id int64, officeID *int64) (*domain.User, error) {
	return s.update(ctx, id, func(u *domain.User) error { return u.AssignOffice(officeID) })
}

func (s *Service) update(ctx context.Context, id int64, mutate func(*domain.User) error) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(user); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, user)
}

func (s *Service) promoteAdmin(user *domain.User) {
	if _, ok := s.adminIDs[user.ChatID]; ok {
		user.Role = domain.RoleManager
	}
}

var _ ports.Service = (*Service)(nil)
