package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"job_marketplace/internal/domain"
	apperrors "job_marketplace/pkg/errors"
	"job_marketplace/pkg/logger"
)

type blockFixture struct {
	svc      BlockService
	accounts *fakeAccounts
	convs    *fakeConversations
	messages *fakeMessages
	cache    *fakeUnreadCache

	employer  *domain.Account
	candidate *domain.Account
	jobID     uuid.UUID
}

func newBlockFixture(t *testing.T) *blockFixture {
	t.Helper()

	employer := &domain.Account{ID: uuid.New(), Role: domain.RoleEmployer}
	candidate := &domain.Account{ID: uuid.New(), Role: domain.RoleCandidate}
	jobID := uuid.New()

	convs := newFakeConversations(
		&domain.Conversation{ID: uuid.New(), EmployerID: employer.ID, CandidateID: candidate.ID, JobID: jobID},
		&domain.Conversation{ID: uuid.New(), EmployerID: employer.ID, CandidateID: candidate.ID, JobID: uuid.New()},
	)
	accounts := newFakeAccounts(employer, candidate)
	messages := &fakeMessages{}
	cache := newFakeUnreadCache()

	return &blockFixture{
		svc:      NewBlockService(accounts, convs, messages, cache, logger.NewNop()),
		accounts: accounts, convs: convs, messages: messages, cache: cache,
		employer: employer, candidate: candidate, jobID: jobID,
	}
}

func TestBlock_CandidateBlocksEmployer(t *testing.T) {
	f := newBlockFixture(t)

	err := f.svc.Block(context.Background(), domain.RoleCandidate, f.candidate.ID, f.employer.ID, f.jobID, "spam")
	require.NoError(t, err)

	// Инициатор попал в blockedBy цели
	require.True(t, f.employer.IsBlockedBy(f.candidate.ID))

	// Флаг проставлен на всех тредах пары, не только на треде вакансии
	for _, c := range f.convs.byID {
		require.True(t, c.IsEmployerBlocked)
		require.False(t, c.IsCandidateBlocked)
	}

	require.Len(t, f.messages.blockCalls, 1)
	call := f.messages.blockCalls[0]
	require.Equal(t, f.employer.ID, call.employerID)
	require.Equal(t, f.candidate.ID, call.candidateID)
	require.True(t, call.blocked)

	require.Contains(t, f.cache.invalidated, f.candidate.ID)
	require.Contains(t, f.cache.invalidated, f.employer.ID)
}

func TestBlock_EmployerBlocksCandidate(t *testing.T) {
	f := newBlockFixture(t)

	err := f.svc.Block(context.Background(), domain.RoleEmployer, f.employer.ID, f.candidate.ID, f.jobID, "")
	require.NoError(t, err)

	require.True(t, f.candidate.IsBlockedBy(f.employer.ID))
	for _, c := range f.convs.byID {
		require.True(t, c.IsCandidateBlocked)
		require.False(t, c.IsEmployerBlocked)
	}
}

func TestBlock_NoConversation(t *testing.T) {
	f := newBlockFixture(t)

	err := f.svc.Block(context.Background(), domain.RoleCandidate, f.candidate.ID, f.employer.ID, uuid.New(), "")
	require.ErrorIs(t, err, apperrors.ErrNoConversation)
	require.False(t, f.employer.IsBlockedBy(f.candidate.ID))
}

func TestUnblock_RevertsBlock(t *testing.T) {
	f := newBlockFixture(t)

	require.NoError(t, f.svc.Block(context.Background(), domain.RoleCandidate, f.candidate.ID, f.employer.ID, f.jobID, ""))
	require.NoError(t, f.svc.Unblock(context.Background(), f.candidate.ID, f.employer.ID))

	require.False(t, f.employer.IsBlockedBy(f.candidate.ID))
	for _, c := range f.convs.byID {
		require.False(t, c.IsEmployerBlocked)
	}

	// Снятие флага ушло и в сообщения
	last := f.messages.blockCalls[len(f.messages.blockCalls)-1]
	require.False(t, last.blocked)
}

func TestUnblock_OneDirectionOnly(t *testing.T) {
	f := newBlockFixture(t)

	// Обе стороны заблокировали друг друга
	require.NoError(t, f.svc.Block(context.Background(), domain.RoleCandidate, f.candidate.ID, f.employer.ID, f.jobID, ""))
	require.NoError(t, f.svc.Block(context.Background(), domain.RoleEmployer, f.employer.ID, f.candidate.ID, f.jobID, ""))

	// Кандидат передумал - блокировка работодателя сохраняется
	require.NoError(t, f.svc.Unblock(context.Background(), f.candidate.ID, f.employer.ID))

	require.False(t, f.employer.IsBlockedBy(f.candidate.ID))
	require.True(t, f.candidate.IsBlockedBy(f.employer.ID))
	for _, c := range f.convs.byID {
		require.False(t, c.IsEmployerBlocked)
		require.True(t, c.IsCandidateBlocked)
	}
}

func TestUnblock_RecruiterForbidden(t *testing.T) {
	f := newBlockFixture(t)
	recruiter := &domain.Account{ID: uuid.New(), Role: domain.RoleRecruiter}
	f.accounts.byID[recruiter.ID] = recruiter

	err := f.svc.Unblock(context.Background(), recruiter.ID, f.employer.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}
