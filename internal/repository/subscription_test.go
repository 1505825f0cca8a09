package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	apperrors "job_marketplace/pkg/errors"
	"job_marketplace/pkg/logger"
)

func TestSubscriptionRepository_GetActiveByAccount_NotFound(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	repo := NewSubscriptionRepository(mock, logger.NewNop())

	accountID := uuid.New()

	mock.ExpectQuery(`SELECT id, account_id, package_id`).
		WithArgs(accountID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := repo.GetActiveByAccount(context.Background(), accountID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepository_DecrementViews(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	repo := NewSubscriptionRepository(mock, logger.NewNop())

	id := uuid.New()

	mock.ExpectExec(`UPDATE subscriptions`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := repo.DecrementViews(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepository_DecrementViews_AtZero(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	repo := NewSubscriptionRepository(mock, logger.NewNop())

	id := uuid.New()

	// Условие views_count > 0 не совпало - строк не затронуто
	mock.ExpectExec(`UPDATE subscriptions`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.DecrementViews(context.Background(), id)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepository_DebitWallet_Insufficient(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	repo := NewSubscriptionRepository(mock, logger.NewNop())

	id := uuid.New()

	mock.ExpectExec(`UPDATE subscriptions`).
		WithArgs(id, 10.0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.DebitWallet(context.Background(), id, 10.0)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}
