package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"job_marketplace/internal/domain"
	"job_marketplace/pkg/logger"
)

func TestGetCounts_AggregatesAndCaches(t *testing.T) {
	candidate := &domain.Account{ID: uuid.New(), Role: domain.RoleCandidate}
	messages := &fakeMessages{unread: 3}
	notifications := &fakeNotifications{unread: 2}
	cache := newFakeUnreadCache()

	svc := NewUnreadService(newFakeAccounts(candidate), messages, notifications, cache, logger.NewNop())

	counts, err := svc.GetCounts(context.Background(), candidate.ID)
	require.NoError(t, err)
	require.Equal(t, 3, counts.ChatUnread)
	require.Equal(t, 2, counts.NotificationUnread)
	require.Equal(t, 1, cache.sets)
}

func TestGetCounts_ServedFromCache(t *testing.T) {
	candidate := &domain.Account{ID: uuid.New(), Role: domain.RoleCandidate}
	messages := &fakeMessages{unread: 3}
	cache := newFakeUnreadCache()
	cache.store[candidate.ID] = &domain.UnreadCounts{ChatUnread: 7, NotificationUnread: 1}

	svc := NewUnreadService(newFakeAccounts(candidate), messages, &fakeNotifications{}, cache, logger.NewNop())

	counts, err := svc.GetCounts(context.Background(), candidate.ID)
	require.NoError(t, err)
	// Счетчики из кэша, репозитории не опрашивались
	require.Equal(t, 7, counts.ChatUnread)
	require.Equal(t, 0, cache.sets)
}

func TestGetCounts_RecountAfterInvalidation(t *testing.T) {
	candidate := &domain.Account{ID: uuid.New(), Role: domain.RoleCandidate}
	messages := &fakeMessages{unread: 1}
	cache := newFakeUnreadCache()

	svc := NewUnreadService(newFakeAccounts(candidate), messages, &fakeNotifications{}, cache, logger.NewNop())

	counts, err := svc.GetCounts(context.Background(), candidate.ID)
	require.NoError(t, err)
	require.Equal(t, 1, counts.ChatUnread)

	messages.unread = 5
	require.NoError(t, cache.Invalidate(context.Background(), candidate.ID))

	counts, err = svc.GetCounts(context.Background(), candidate.ID)
	require.NoError(t, err)
	require.Equal(t, 5, counts.ChatUnread)
}

func TestGetCounts_RoleSelectsAggregate(t *testing.T) {
	employer := &domain.Account{ID: uuid.New(), Role: domain.RoleEmployer}
	messages := &fakeMessages{unread: 4}
	cache := newFakeUnreadCache()

	svc := NewUnreadService(newFakeAccounts(employer), messages, &fakeNotifications{}, cache, logger.NewNop())

	counts, err := svc.GetCounts(context.Background(), employer.ID)
	require.NoError(t, err)
	require.Equal(t, 4, counts.ChatUnread)
}
