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

type AccountRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	AddBlockedBy(ctx context.Context, accountID, blockerID uuid.UUID) error
	RemoveBlockedBy(ctx context.Context, accountID, blockerID uuid.UUID) error
}

type accountRepository struct {
	db  DB
	log logger.Logger
}

func NewAccountRepository(db DB, log logger.Logger) AccountRepository {
	return &accountRepository{db: db, log: log}
}

const accountColumns = `
	id, email, display_name, role, membership, is_master, master_id, pa_id,
	blocked_by, is_exposed_to_all, exposed_to, is_exposed_to_community,
	chat_language, resume_url, device_token, device_type, phone, country_code,
	app_installed, created_at, updated_at
`

func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account := &domain.Account{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&account.ID, &account.Email, &account.DisplayName, &account.Role,
		&account.Membership, &account.IsMaster, &account.MasterID, &account.PaID,
		&account.BlockedBy, &account.IsExposedToAll, &account.ExposedTo,
		&account.IsExposedToCommunity, &account.ChatLanguage, &account.ResumeURL,
		&account.DeviceToken, &account.DeviceType, &account.Phone,
		&account.CountryCode, &account.AppInstalled,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		r.log.Error("Failed to get account", "error", err, "account_id", id)
		return nil, err
	}

	return account, nil
}

func (r *accountRepository) AddBlockedBy(ctx context.Context, accountID, blockerID uuid.UUID) error {
	query := `
		UPDATE accounts
		SET blocked_by = array_append(blocked_by, $2), updated_at = NOW()
		WHERE id = $1 AND NOT (blocked_by @> ARRAY[$2]::uuid[])
	`

	_, err := r.db.Exec(ctx, query, accountID, blockerID)
	if err != nil {
		r.log.Error("Failed to add blocked_by", "error", err, "account_id", accountID)
		return err
	}

	return nil
}

func (r *accountRepository) RemoveBlockedBy(ctx context.Context, accountID, blockerID uuid.UUID) error {
	query := `
		UPDATE accounts
		SET blocked_by = array_remove(blocked_by, $2), updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, accountID, blockerID)
	if err != nil {
		r.log.Error("Failed to remove blocked_by", "error", err, "account_id", accountID)
		return err
	}

	return nil
}
