package chat

import (
	"context"
	"errors"

	"lendaround/internal/domain"
	"lendaround/internal/repository"

	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("conversation not found")
	ErrNotParticipant = errors.New("not a conversation participant")
	ErrEmptyMessage   = errors.New("empty message")
)

// MessageNotifier persists a new-message notification for the counterparty.
type MessageNotifier interface {
	NotifyNewMessage(ctx context.Context, recipientID, conversationID, senderID int64, preview string) error
}

type Service struct {
	conversations *repository.ConversationRepository
	users         *repository.UserRepository
	hub           *Hub
	notifs        MessageNotifier
}

func NewService(conversations *repository.ConversationRepository, users *repository.UserRepository, hub *Hub, notifs MessageNotifier) *Service {
	return &Service{conversations: conversations, users: users, hub: hub, notifs: notifs}
}

// AppendMessage stores a message and fans it out: the durable write comes
// first; the realtime broadcast and notification follow best-effort.
func (s *Service) AppendMessage(ctx context.Context, conversationID, senderID int64, body string) (*domain.Message, error) {
	if body == "" {
		return nil, ErrEmptyMessage
	}

	ok, err := s.conversations.IsParticipant(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}

	m := &domain.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
	}
	if err := s.conversations.AppendMessage(ctx, m); err != nil {
		return nil, err
	}

	s.fanOut(ctx, m)
	return m, nil
}

// AppendSystemMessage posts an engine-generated line into the booking's
// conversation (decision announcements and the like).
func (s *Service) AppendSystemMessage(ctx context.Context, conversationID int64, body string) error {
	m := &domain.Message{
		ConversationID: conversationID,
		Body:           body,
		System:         true,
	}
	if err := s.conversations.AppendMessage(ctx, m); err != nil {
		return err
	}
	s.hub.BroadcastToChannel(ConversationChannel(conversationID), &WSEvent{
		Type:    EventNewMessage,
		Channel: ConversationChannel(conversationID),
		Payload: m,
	})
	return nil
}

func (s *Service) fanOut(ctx context.Context, m *domain.Message) {
	s.hub.BroadcastToChannel(ConversationChannel(m.ConversationID), &WSEvent{
		Type:    EventNewMessage,
		Channel: ConversationChannel(m.ConversationID),
		Payload: m,
	})

	if s.notifs == nil {
		return
	}
	participants, err := s.conversations.Participants(ctx, m.ConversationID)
	if err != nil {
		return
	}
	preview := m.Body
	// truncate on rune boundaries, bodies are mostly Cyrillic
	if r := []rune(preview); len(r) > 80 {
		preview = string(r[:80])
	}
	if s.users != nil {
		if sender, uerr := s.users.GetByID(ctx, m.SenderID); uerr == nil && sender.Name != "" {
			preview = sender.Name + ": " + preview
		}
	}
	for _, uid := range participants {
		if uid != m.SenderID {
			_ = s.notifs.NotifyNewMessage(ctx, uid, m.ConversationID, m.SenderID, preview)
		}
	}
}

func (s *Service) ListMessages(ctx context.Context, conversationID, userID int64, limit, offset int) ([]domain.Message, error) {
	ok, err := s.conversations.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.conversations.ListMessages(ctx, conversationID, limit, offset)
}

// ChannelsForUser returns the conversation channels a connecting client
// should be auto-subscribed to.
func (s *Service) ChannelsForUser(ctx context.Context, userID int64) ([]string, error) {
	ids, err := s.conversations.ConversationIDsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	channels := make([]string, 0, len(ids))
	for _, id := range ids {
		channels = append(channels, ConversationChannel(id))
	}
	return channels, nil
}
