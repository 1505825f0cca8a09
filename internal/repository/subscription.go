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

type SubscriptionRepository interface {
	GetActiveByAccount(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, error)
	// DecrementViews атомарно уменьшает счетчик просмотров;
	// false - счетчик уже на нуле, списание не произошло
	DecrementViews(ctx context.Context, id uuid.UUID) (bool, error)
	// DebitWallet атомарно списывает из кошелька и увеличивает счетчик
	// потраченных просмотров; false - недостаточно средств
	DebitWallet(ctx context.Context, id uuid.UUID, amount float64) (bool, error)
}

type subscriptionRepository struct {
	db  DB
	log logger.Logger
}

func NewSubscriptionRepository(db DB, log logger.Logger) SubscriptionRepository {
	return &subscriptionRepository{db: db, log: log}
}

func (r *subscriptionRepository) GetActiveByAccount(ctx context.Context, accountID uuid.UUID) (*domain.Subscription, error) {
	query := `
		SELECT id, account_id, package_id, is_active, is_free, is_wallet,
		       wallet_amount, expires_at, views_count, views_unlimited,
		       views_included, views_expiry_days
		FROM subscriptions
		WHERE account_id = $1 AND is_active
		ORDER BY expires_at DESC
		LIMIT 1
	`

	sub := &domain.Subscription{}
	err := r.db.QueryRow(ctx, query, accountID).Scan(
		&sub.ID, &sub.AccountID, &sub.PackageID, &sub.IsActive, &sub.IsFree,
		&sub.IsWallet, &sub.WalletAmount, &sub.ExpiresAt,
		&sub.Views.Count, &sub.Views.IsUnlimited, &sub.Views.IsIncluded,
		&sub.Views.ExpiryAfterPackageExpiry,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.log.Error("Failed to get subscription", "error", err, "account_id", accountID)
		return nil, err
	}

	return sub, nil
}

func (r *subscriptionRepository) DecrementViews(ctx context.Context, id uuid.UUID) (bool, error) {
	// Условный декремент: нулевой счетчик не трогаем, исход читается
	// по числу затронутых строк - без предварительного чтения
	query := `
		UPDATE subscriptions
		SET views_count = views_count - 1
		WHERE id = $1 AND views_count > 0
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to decrement views", "error", err, "subscription_id", id)
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (r *subscriptionRepository) DebitWallet(ctx context.Context, id uuid.UUID, amount float64) (bool, error) {
	// В режиме кошелька views_count накапливает потраченные просмотры
	query := `
		UPDATE subscriptions
		SET wallet_amount = wallet_amount - $2,
		    views_count = views_count + 1
		WHERE id = $1 AND wallet_amount >= $2
	`

	tag, err := r.db.Exec(ctx, query, id, amount)
	if err != nil {
		r.log.Error("Failed to debit wallet", "error", err, "subscription_id", id)
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}
