package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"job_marketplace/internal/domain"
	apperrors "job_marketplace/pkg/errors"
	"job_marketplace/pkg/logger"
)

type ChatRequestRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ChatRequest, error)
	// GetByKey возвращает запрос по полному ключу, nil - если запроса нет
	GetByKey(ctx context.Context, paID, jobID, candidateID, employerID uuid.UUID) (*domain.ChatRequest, error)
	Create(ctx context.Context, request *domain.ChatRequest) error
	// Reopen сбрасывает отклоненный запрос обратно в ожидание
	Reopen(ctx context.Context, id uuid.UUID) error
	SetDecision(ctx context.Context, id uuid.UUID, accepted bool) error
	ListPendingForRecruiter(ctx context.Context, paID uuid.UUID) ([]*domain.ChatRequest, error)
}

type chatRequestRepository struct {
	db  DB
	log logger.Logger
}

func NewChatRequestRepository(db DB, log logger.Logger) ChatRequestRepository {
	return &chatRequestRepository{db: db, log: log}
}

const chatRequestColumns = `
	id, pa_id, job_id, candidate_id, employer_id,
	is_accepted, is_rejected, is_applied_by_candidate, created_at, updated_at
`

func scanChatRequest(row pgx.Row) (*domain.ChatRequest, error) {
	request := &domain.ChatRequest{}
	err := row.Scan(
		&request.ID, &request.PaID, &request.JobID, &request.CandidateID,
		&request.EmployerID, &request.IsAccepted, &request.IsRejected,
		&request.IsAppliedByCandidate, &request.CreatedAt, &request.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (r *chatRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ChatRequest, error) {
	query := `SELECT ` + chatRequestColumns + ` FROM chat_requests WHERE id = $1`

	request, err := scanChatRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.log.Error("Failed to get chat request", "error", err, "request_id", id)
		return nil, err
	}

	return request, nil
}

func (r *chatRequestRepository) GetByKey(ctx context.Context, paID, jobID, candidateID, employerID uuid.UUID) (*domain.ChatRequest, error) {
	query := `
		SELECT ` + chatRequestColumns + `
		FROM chat_requests
		WHERE pa_id = $1 AND job_id = $2 AND candidate_id = $3 AND employer_id = $4
	`

	request, err := scanChatRequest(r.db.QueryRow(ctx, query, paID, jobID, candidateID, employerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("Failed to get chat request by key", "error", err)
		return nil, err
	}

	return request, nil
}

func (r *chatRequestRepository) Create(ctx context.Context, request *domain.ChatRequest) error {
	query := `
		INSERT INTO chat_requests (
			id, pa_id, job_id, candidate_id, employer_id, is_applied_by_candidate
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		request.ID, request.PaID, request.JobID, request.CandidateID,
		request.EmployerID, request.IsAppliedByCandidate,
	).Scan(&request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to create chat request", "error", err)
		return err
	}

	return nil
}

func (r *chatRequestRepository) Reopen(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE chat_requests
		SET is_rejected = FALSE, is_accepted = FALSE, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to reopen chat request", "error", err, "request_id", id)
		return err
	}

	return nil
}

func (r *chatRequestRepository) SetDecision(ctx context.Context, id uuid.UUID, accepted bool) error {
	query := `
		UPDATE chat_requests
		SET is_accepted = $2, is_rejected = NOT $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, accepted)
	if err != nil {
		r.log.Error("Failed to set chat request decision", "error", err, "request_id", id)
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *chatRequestRepository) ListPendingForRecruiter(ctx context.Context, paID uuid.UUID) ([]*domain.ChatRequest, error) {
	query := `
		SELECT ` + chatRequestColumns + `
		FROM chat_requests
		WHERE pa_id = $1 AND NOT is_accepted AND NOT is_rejected
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, paID)
	if err != nil {
		r.log.Error("Failed to list chat requests", "error", err, "pa_id", paID)
		return nil, err
	}
	defer rows.Close()

	var requests []*domain.ChatRequest
	for rows.Next() {
		request, err := scanChatRequest(rows)
		if err != nil {
			r.log.Error("Failed to scan chat request", "error", err)
			return nil, err
		}
		requests = append(requests, request)
	}

	return requests, rows.Err()
}
