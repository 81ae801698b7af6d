package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Apurer/canteen-orders/internal/domains/orders/domain"
)

// notifyManagers fans a message out to every manager and configured admin
// chat. Failures are logged and never reach the caller.
func (s *Service) notifyManagers(ctx context.Context, message string) {
	if s.notifier == nil {
		return
	}
	seen := make(map[int64]struct{}, len(s.recipients))
	recipients := make([]int64, 0, len(s.recipients))
	add := func(chatID int64) {
		if chatID == 0 {
			return
		}
		if _, ok := seen[chatID]; ok {
			return
		}
		seen[chatID] = struct{}{}
		recipients = append(recipients, chatID)
	}
	for _, id := range s.recipients {
		add(id)
	}
	managers, err := s.users.ListManagers(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "listing managers for notification failed", slog.String("error", err.Error()))
	}
	for _, m := range managers {
		add(m.ChatID)
	}
	for _, chatID := range recipients {
		s.deliver(ctx, chatID, message)
	}
}

func (s *Service) notifyOwner(ctx context.Context, userID int64, message string) {
	if s.notifier == nil {
		return
	}
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "resolving order owner for notification failed",
			slog.Int64("user.id", userID), slog.String("error", err.Error()))
		return
	}
	s.deliver(ctx, user.ChatID, message)
}

func (s *Service) deliver(ctx context.Context, chatID int64, message string) {
	if err := s.notifier.Notify(ctx, chatID, message); err != nil {
		s.logger.WarnContext(ctx, "notification failed",
			slog.Int64("recipient", chatID), slog.String("error", err.Error()))
	}
}

func newOrderMessage(owner string, order *domain.Order) string {
	return fmt.Sprintf("New order #%d from %s for %s: %d item(s), total %s",
		order.ID, owner, order.OrderDate.Format(time.DateOnly), len(order.Items), order.Total.StringFixed(2))
}

func cancelMessage(owner string, order *domain.Order) string {
	return fmt.Sprintf("Order #%d for %s was cancelled by %s",
		order.ID, order.OrderDate.Format(time.DateOnly), owner)
}

func statusMessage(order *domain.Order) string {
	return fmt.Sprintf("Your order #%d for %s is now %s",
		order.ID, order.OrderDate.Format(time.DateOnly), order.Status)
}
