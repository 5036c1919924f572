package notification

import (
	"context"
	"errors"
	"testing"

	"lendaround/internal/database"
	"lendaround/internal/domain"
	"lendaround/internal/modules/chat"
	"lendaround/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) *repository.NotificationRepository {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Notification{}))
	return repository.NewNotificationRepository(db)
}

type failingPublisher struct {
	calls int
}

func (p *failingPublisher) PublishToUser(userID int64, event *chat.WSEvent) error {
	p.calls++
	return errors.New("user offline")
}

func TestNotify_DurableEvenWhenPushFails(t *testing.T) {
	repo := setupRepo(t)
	pub := &failingPublisher{}
	svc := NewService(repo, pub, nil)

	err := svc.NotifyBookingApproved(context.Background(), 7, 123)

	// push failure must never surface or lose the event
	assert.NoError(t, err)
	assert.Equal(t, 1, pub.calls)

	list, unread, err := svc.GetUserNotifications(context.Background(), 7, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), unread)
	assert.Equal(t, domain.NotifBookingApproved, list[0].Type)
	assert.False(t, list[0].IsRead)
}

func TestNotify_NilPublisherSkipsPush(t *testing.T) {
	repo := setupRepo(t)
	svc := NewService(repo, nil, nil)

	err := svc.NotifyBookingExpired(context.Background(), 7, 123)
	assert.NoError(t, err)

	list, _, err := svc.GetUserNotifications(context.Background(), 7, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMarkAsRead_ScopedToOwner(t *testing.T) {
	repo := setupRepo(t)
	svc := NewService(repo, nil, nil)

	require.NoError(t, svc.NotifyBookingRejected(context.Background(), 7, 123))

	list, _, err := svc.GetUserNotifications(context.Background(), 7, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID

	// another user cannot mark it
	assert.Error(t, svc.MarkAsRead(context.Background(), id, 99))

	// the owner can
	assert.NoError(t, svc.MarkAsRead(context.Background(), id, 7))

	_, unread, err := svc.GetUserNotifications(context.Background(), 7, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestRefundNotification_CarriesAmount(t *testing.T) {
	repo := setupRepo(t)
	svc := NewService(repo, nil, nil)

	require.NoError(t, svc.NotifyRefundIssued(context.Background(), 7, 123, 300.0))

	list, _, err := svc.GetUserNotifications(context.Background(), 7, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.NotifRefundIssued, list[0].Type)
	assert.Contains(t, string(list[0].Data), "300")
}
