package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"job_marketplace/internal/domain"
	apperrors "job_marketplace/pkg/errors"
	"job_marketplace/pkg/logger"
)

type ConversationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	// GetByKey возвращает тред тройки (работодатель, кандидат, вакансия),
	// nil - если треда нет
	GetByKey(ctx context.Context, employerID, candidateID, jobID uuid.UUID) (*domain.Conversation, error)
	// Create создает тред идемпотентно: при конкурентной вставке той же
	// тройки возвращается уже существующий тред и created=false
	Create(ctx context.Context, conv *domain.Conversation) (created bool, err error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, role domain.Role) ([]*domain.Conversation, error)
	// CountDistinctApplicants считает кандидатов с тредами у работодателя,
	// исключая указанного (порог отклика на бесплатном пакете)
	CountDistinctApplicants(ctx context.Context, employerID, excludeCandidateID uuid.UUID) (int, error)
	SetInterested(ctx context.Context, id uuid.UUID) error
	SetInvitationRejected(ctx context.Context, id uuid.UUID) error
	SetDeleted(ctx context.Context, id uuid.UUID, role domain.Role) error
	// SetBlockFlag выставляет или снимает флаг блокировки на всех тредах
	// пары аккаунтов (по всем вакансиям)
	SetBlockFlag(ctx context.Context, employerID, candidateID uuid.UUID, initiator domain.Role, blocked bool) error
}

type conversationRepository struct {
	db  DB
	log logger.Logger
}

func NewConversationRepository(db DB, log logger.Logger) ConversationRepository {
	return &conversationRepository{db: db, log: log}
}

const conversationColumns = `
	id, employer_id, candidate_id, job_id, room_id, pa_id,
	is_invited, is_applied, is_interested, is_hired, is_rejected,
	is_invitation_rejected, is_candidate_blocked, is_employer_blocked,
	has_candidate_deleted, has_employer_deleted, created_at, updated_at
`

func scanConversation(row pgx.Row) (*domain.Conversation, error) {
	conv := &domain.Conversation{}
	err := row.Scan(
		&conv.ID, &conv.EmployerID, &conv.CandidateID, &conv.JobID,
		&conv.RoomID, &conv.PaID, &conv.IsInvited, &conv.IsApplied,
		&conv.IsInterested, &conv.IsHired, &conv.IsRejected,
		&conv.IsInvitationRejected, &conv.IsCandidateBlocked,
		&conv.IsEmployerBlocked, &conv.HasCandidateDeleted,
		&conv.HasEmployerDeleted, &conv.CreatedAt, &conv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`

	conv, err := scanConversation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConversationNotFound
		}
		r.log.Error("Failed to get conversation", "error", err, "conversation_id", id)
		return nil, err
	}

	return conv, nil
}

func (r *conversationRepository) GetByKey(ctx context.Context, employerID, candidateID, jobID uuid.UUID) (*domain.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE employer_id = $1 AND candidate_id = $2 AND job_id = $3
	`

	conv, err := scanConversation(r.db.QueryRow(ctx, query, employerID, candidateID, jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("Failed to get conversation by key", "error", err)
		return nil, err
	}

	return conv, nil
}

func (r *conversationRepository) Create(ctx context.Context, conv *domain.Conversation) (bool, error) {
	query := `
		INSERT INTO conversations (
			id, employer_id, candidate_id, job_id, room_id, pa_id,
			is_invited, is_applied, is_candidate_blocked, is_employer_blocked
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		conv.ID, conv.EmployerID, conv.CandidateID, conv.JobID, conv.RoomID,
		conv.PaID, conv.IsInvited, conv.IsApplied,
		conv.IsCandidateBlocked, conv.IsEmployerBlocked,
	).Scan(&conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		// 23505 - конкурентная первая попытка контакта для той же тройки;
		// существующий тред перечитывается, исход идемпотентный
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			existing, getErr := r.GetByKey(ctx, conv.EmployerID, conv.CandidateID, conv.JobID)
			if getErr != nil {
				return false, getErr
			}
			if existing == nil {
				return false, err
			}
			*conv = *existing
			return false, nil
		}
		r.log.Error("Failed to create conversation", "error", err)
		return false, err
	}

	return true, nil
}

func (r *conversationRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, role domain.Role) ([]*domain.Conversation, error) {
	column, deletedFlag := "candidate_id", "has_candidate_deleted"
	if role == domain.RoleEmployer {
		column, deletedFlag = "employer_id", "has_employer_deleted"
	}

	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE ` + column + ` = $1 AND NOT ` + deletedFlag + `
		ORDER BY updated_at DESC
	`

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		r.log.Error("Failed to list conversations", "error", err, "account_id", accountID)
		return nil, err
	}
	defer rows.Close()

	var conversations []*domain.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			r.log.Error("Failed to scan conversation", "error", err)
			return nil, err
		}
		conversations = append(conversations, conv)
	}

	return conversations, rows.Err()
}

func (r *conversationRepository) CountDistinctApplicants(ctx context.Context, employerID, excludeCandidateID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(DISTINCT candidate_id)
		FROM conversations
		WHERE employer_id = $1 AND candidate_id <> $2
	`

	var count int
	if err := r.db.QueryRow(ctx, query, employerID, excludeCandidateID).Scan(&count); err != nil {
		r.log.Error("Failed to count applicants", "error", err, "employer_id", employerID)
		return 0, err
	}

	return count, nil
}

func (r *conversationRepository) SetInterested(ctx context.Context, id uuid.UUID) error {
	return r.setFlag(ctx, id, "is_interested")
}

func (r *conversationRepository) SetInvitationRejected(ctx context.Context, id uuid.UUID) error {
	return r.setFlag(ctx, id, "is_invitation_rejected")
}

func (r *conversationRepository) SetDeleted(ctx context.Context, id uuid.UUID, role domain.Role) error {
	flag := "has_candidate_deleted"
	if role == domain.RoleEmployer {
		flag = "has_employer_deleted"
	}
	return r.setFlag(ctx, id, flag)
}

func (r *conversationRepository) setFlag(ctx context.Context, id uuid.UUID, column string) error {
	query := `UPDATE conversations SET ` + column + ` = TRUE, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to update conversation flag", "error", err, "conversation_id", id, "flag", column)
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConversationNotFound
	}

	return nil
}

func (r *conversationRepository) SetBlockFlag(ctx context.Context, employerID, candidateID uuid.UUID, initiator domain.Role, blocked bool) error {
	// Кандидат блокирует работодателя -> is_employer_blocked, и наоборот
	column := "is_employer_blocked"
	if initiator == domain.RoleEmployer {
		column = "is_candidate_blocked"
	}

	query := `
		UPDATE conversations
		SET ` + column + ` = $3, updated_at = NOW()
		WHERE employer_id = $1 AND candidate_id = $2
	`

	_, err := r.db.Exec(ctx, query, employerID, candidateID, blocked)
	if err != nil {
		r.log.Error("Failed to propagate block flag", "error", err,
			"employer_id", employerID, "candidate_id", candidateID)
		return err
	}

	return nil
}
