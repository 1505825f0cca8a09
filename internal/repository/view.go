package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"job_marketplace/internal/domain"
	"job_marketplace/pkg/logger"
)

type ViewRepository interface {
	// FindActive возвращает непросроченный View группы для кандидата,
	// nil - если такого нет
	FindActive(ctx context.Context, groupID, candidateID uuid.UUID) (*domain.View, error)
	// Record атомарно записывает View; просроченная запись той же пары
	// замещается, активная сохраняется как есть. false - активная запись
	// уже существовала, повторная тарификация не нужна
	Record(ctx context.Context, view *domain.View) (bool, error)
}

type viewRepository struct {
	db  DB
	log logger.Logger
}

func NewViewRepository(db DB, log logger.Logger) ViewRepository {
	return &viewRepository{db: db, log: log}
}

func (r *viewRepository) FindActive(ctx context.Context, groupID, candidateID uuid.UUID) (*domain.View, error) {
	query := `
		SELECT id, group_id, employer_id, candidate_id, expires_at, created_at
		FROM views
		WHERE group_id = $1 AND candidate_id = $2 AND expires_at > NOW()
	`

	view := &domain.View{}
	err := r.db.QueryRow(ctx, query, groupID, candidateID).Scan(
		&view.ID, &view.GroupID, &view.EmployerID, &view.CandidateID,
		&view.ExpiresAt, &view.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("Failed to find view", "error", err, "group_id", groupID, "candidate_id", candidateID)
		return nil, err
	}

	return view, nil
}

func (r *viewRepository) Record(ctx context.Context, view *domain.View) (bool, error) {
	// Upsert по уникальной паре (group_id, candidate_id): замещаем только
	// просроченную запись, конкурентная вставка активной схлопывается в no-op
	query := `
		INSERT INTO views (id, group_id, employer_id, candidate_id, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (group_id, candidate_id) DO UPDATE
		SET id = EXCLUDED.id,
		    employer_id = EXCLUDED.employer_id,
		    expires_at = EXCLUDED.expires_at,
		    created_at = NOW()
		WHERE views.expires_at <= NOW()
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		view.ID, view.GroupID, view.EmployerID, view.CandidateID, view.ExpiresAt,
	).Scan(&view.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		r.log.Error("Failed to record view", "error", err, "group_id", view.GroupID)
		return false, err
	}

	return true, nil
}
