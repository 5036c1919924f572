package notification

import (
	"context"
	"fmt"
	"time"

	"lendaround/internal/domain"
	"lendaround/internal/modules/chat"
	"lendaround/internal/repository"
)

// Publisher is the best-effort real-time channel. The durable notification
// row is written first; a failed push only costs latency, never the event.
type Publisher interface {
	PublishToUser(userID int64, event *chat.WSEvent) error
}

type Service struct {
	repo    *repository.NotificationRepository
	pub     Publisher
	loggerf func(format string, args ...interface{})
}

func NewService(repo *repository.NotificationRepository, pub Publisher, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{repo: repo, pub: pub, loggerf: loggerf}
}

func (s *Service) Create(ctx context.Context, userID int64, t domain.NotificationType, title, message string, data map[string]any) error {
	n := &domain.Notification{
		UserID:  userID,
		Type:    t,
		Title:   title,
		Message: message,
		IsRead:  false,
	}
	if err := s.repo.Create(ctx, n, data); err != nil {
		return err
	}

	if s.pub != nil {
		err := s.pub.PublishToUser(userID, &chat.WSEvent{
			Type:    chat.EventNotification,
			Payload: n,
		})
		if err != nil {
			s.loggerf("level=warn msg=realtime push failed user_id=%d type=%s err=%v", userID, t, err)
		}
	}
	return nil
}

func (s *Service) GetUserNotifications(ctx context.Context, userID int64, limit int) ([]domain.Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	list, err := s.repo.GetByUserID(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		unread = 0
	}

	return list, unread, nil
}

func (s *Service) MarkAsRead(ctx context.Context, notificationID, userID int64) error {
	return s.repo.MarkAsRead(ctx, notificationID, userID)
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *Service) NotifyBookingRequested(ctx context.Context, ownerID, bookingID, listingID int64, start, end time.Time) error {
	return s.Create(
		ctx,
		ownerID,
		domain.NotifBookingRequested,
		"Новый запрос на аренду",
		fmt.Sprintf("Поступил запрос на аренду с %s по %s", start.Format("02.01.2006"), end.Format("02.01.2006")),
		map[string]any{
			"booking_id": bookingID,
			"listing_id": listingID,
		},
	)
}

func (s *Service) NotifyBookingApproved(ctx context.Context, borrowerID, bookingID int64) error {
	return s.Create(
		ctx,
		borrowerID,
		domain.NotifBookingApproved,
		"Запрос одобрен",
		"Владелец одобрил ваш запрос. Оплатите бронирование, чтобы подтвердить его",
		map[string]any{"booking_id": bookingID},
	)
}

func (s *Service) NotifyBookingRejected(ctx context.Context, borrowerID, bookingID int64) error {
	return s.Create(
		ctx,
		borrowerID,
		domain.NotifBookingRejected,
		"Запрос отклонён",
		"Владелец отклонил ваш запрос на аренду",
		map[string]any{"booking_id": bookingID},
	)
}

func (s *Service) NotifyBookingExpired(ctx context.Context, borrowerID, bookingID int64) error {
	return s.Create(
		ctx,
		borrowerID,
		domain.NotifBookingExpired,
		"Запрос истёк",
		"Запрос на аренду не был одобрен вовремя и отменён",
		map[string]any{"booking_id": bookingID},
	)
}

func (s *Service) NotifyBookingConfirmed(ctx context.Context, ownerID, bookingID int64) error {
	return s.Create(
		ctx,
		ownerID,
		domain.NotifBookingConfirmed,
		"Бронирование оплачено",
		"Оплата получена, бронирование подтверждено",
		map[string]any{"booking_id": bookingID},
	)
}

func (s *Service) NotifyBookingDisputed(ctx context.Context, recipientID, bookingID int64) error {
	return s.Create(
		ctx,
		recipientID,
		domain.NotifBookingDisputed,
		"Открыт спор",
		"По бронированию открыт спор. Администратор свяжется с вами",
		map[string]any{"booking_id": bookingID},
	)
}

func (s *Service) NotifyRefundIssued(ctx context.Context, borrowerID, bookingID int64, amount float64) error {
	return s.Create(
		ctx,
		borrowerID,
		domain.NotifRefundIssued,
		"Возврат оформлен",
		fmt.Sprintf("Оформлен возврат на сумму %.2f", amount),
		map[string]any{"booking_id": bookingID, "amount": amount},
	)
}

func (s *Service) NotifyNewMessage(ctx context.Context, recipientID, conversationID, senderID int64, preview string) error {
	return s.Create(
		ctx,
		recipientID,
		domain.NotifNewMessage,
		"Новое сообщение",
		preview,
		map[string]any{
			"conversation_id": conversationID,
			"sender_id":       senderID,
		},
	)
}
