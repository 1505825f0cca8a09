package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"job_marketplace/internal/domain"
	apperrors "job_marketplace/pkg/errors"
	"job_marketplace/pkg/logger"
)

type PricingRepository interface {
	GetPricing(ctx context.Context, countryCode string) (*domain.Pricing, error)
	// GetFreeTierPolicy возвращает страновую политику бесплатного пакета,
	// nil - политика не задана (ограничений нет)
	GetFreeTierPolicy(ctx context.Context, countryCode string) (*domain.FreeTierPolicy, error)
}

type pricingRepository struct {
	db  DB
	log logger.Logger
}

func NewPricingRepository(db DB, log logger.Logger) PricingRepository {
	return &pricingRepository{db: db, log: log}
}

func (r *pricingRepository) GetPricing(ctx context.Context, countryCode string) (*domain.Pricing, error) {
	query := `
		SELECT country_code, views_base_price, views_count
		FROM pricing
		WHERE country_code = $1
	`

	pricing := &domain.Pricing{}
	err := r.db.QueryRow(ctx, query, countryCode).Scan(
		&pricing.CountryCode, &pricing.ViewsBasePrice, &pricing.ViewsCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.log.Error("Failed to get pricing", "error", err, "country_code", countryCode)
		return nil, err
	}

	return pricing, nil
}

func (r *pricingRepository) GetFreeTierPolicy(ctx context.Context, countryCode string) (*domain.FreeTierPolicy, error) {
	query := `
		SELECT country_code, days, is_unlimited
		FROM free_tier_policies
		WHERE country_code = $1
	`

	policy := &domain.FreeTierPolicy{}
	err := r.db.QueryRow(ctx, query, countryCode).Scan(
		&policy.CountryCode, &policy.Days, &policy.IsUnlimited,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("Failed to get free tier policy", "error", err, "country_code", countryCode)
		return nil, err
	}

	return policy, nil
}
