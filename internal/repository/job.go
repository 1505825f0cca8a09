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

type JobRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)
}

type jobRepository struct {
	db  DB
	log logger.Logger
}

func NewJobRepository(db DB, log logger.Logger) JobRepository {
	return &jobRepository{db: db, log: log}
}

func (r *jobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	query := `
		SELECT id, employer_id, title, sub_title, country_code, is_ats,
		       is_company_website, ats_email, ats_url, webhook_url, created_at
		FROM jobs
		WHERE id = $1
	`

	job := &domain.Job{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.EmployerID, &job.Title, &job.SubTitle, &job.CountryCode,
		&job.IsATS, &job.IsCompanyWebsite, &job.ATSEmail, &job.ATSURL,
		&job.WebhookURL, &job.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrJobNotFound
		}
		r.log.Error("Failed to get job", "error", err, "job_id", id)
		return nil, err
	}

	return job, nil
}
