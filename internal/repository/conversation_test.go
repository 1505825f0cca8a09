package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"job_marketplace/internal/domain"
	apperrors "job_marketplace/pkg/errors"
	"job_marketplace/pkg/logger"
)

func conversationRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "employer_id", "candidate_id", "job_id", "room_id", "pa_id",
		"is_invited", "is_applied", "is_interested", "is_hired", "is_rejected",
		"is_invitation_rejected", "is_candidate_blocked", "is_employer_blocked",
		"has_candidate_deleted", "has_employer_deleted", "created_at", "updated_at",
	})
}

func TestConversationRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	repo := NewConversationRepository(mock, logger.NewNop())

	conv := &domain.Conversation{
		ID:          uuid.New(),
		EmployerID:  uuid.New(),
		CandidateID: uuid.New(),
		JobID:       uuid.New(),
		RoomID:      "room",
		IsInvited:   true,
	}
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO conversations`).
		WithArgs(conv.ID, conv.EmployerID, conv.CandidateID, conv.JobID, conv.RoomID,
			conv.PaID, conv.IsInvited, conv.IsApplied, conv.IsCandidateBlocked, conv.IsEmployerBlocked).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	created, err := repo.Create(context.Background(), conv)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, now, conv.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationRepository_Create_DuplicateReturnsExisting(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	repo := NewConversationRepository(mock, logger.NewNop())

	employerID := uuid.New()
	candidateID := uuid.New()
	jobID := uuid.New()
	existingID := uuid.New()
	now := time.Now()

	conv := &domain.Conversation{
		ID:          uuid.New(),
		EmployerID:  employerID,
		CandidateID: candidateID,
		JobID:       jobID,
		RoomID:      "room",
	}

	// Конкурентная вставка той же тройки: 23505, затем перечитывание
	mock.ExpectQuery(`INSERT INTO conversations`).
		WithArgs(conv.ID, employerID, candidateID, jobID, conv.RoomID,
			conv.PaID, conv.IsInvited, conv.IsApplied, conv.IsCandidateBlocked, conv.IsEmployerBlocked).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	mock.ExpectQuery(`SELECT(.|\n)*FROM conversations`).
		WithArgs(employerID, candidateID, jobID).
		WillReturnRows(conversationRows().AddRow(
			existingID, employerID, candidateID, jobID, "room", nil,
			true, false, false, false, false,
			false, false, false,
			false, false, now, now,
		))

	created, err := repo.Create(context.Background(), conv)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, existingID, conv.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationRepository_GetByKey_NoneIsNil(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	repo := NewConversationRepository(mock, logger.NewNop())

	employerID := uuid.New()
	candidateID := uuid.New()
	jobID := uuid.New()

	mock.ExpectQuery(`SELECT(.|\n)*FROM conversations`).
		WithArgs(employerID, candidateID, jobID).
		WillReturnRows(conversationRows())

	conv, err := repo.GetByKey(context.Background(), employerID, candidateID, jobID)
	require.NoError(t, err)
	require.Nil(t, conv)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationRepository_GetByID_NotFound(t *testing.T) {
	mock := newMockPool(t)
	defer mock.Close()
	repo := NewConversationRepository(mock, logger.NewNop())

	id := uuid.New()

	mock.ExpectQuery(`SELECT(.|\n)*FROM conversations WHERE id`).
		WithArgs(id).
		WillReturnRows(conversationRows())

	_, err := repo.GetByID(context.Background(), id)
	require.ErrorIs(t, err, apperrors.ErrConversationNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
