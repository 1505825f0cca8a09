package domain

import (
	"time"

	"github.com/google/uuid"
)

// unboundedViewYears - срок действия View при отрицательном views_expiry_days
const unboundedViewYears = 50

type Subscription struct {
	ID           uuid.UUID     `json:"id"`
	AccountID    uuid.UUID     `json:"account_id"`
	PackageID    string        `json:"package_id"`
	IsActive     bool          `json:"is_active"`
	IsFree       bool          `json:"is_free"`
	IsWallet     bool          `json:"is_wallet"`
	WalletAmount float64       `json:"wallet_amount"`
	ExpiresAt    time.Time     `json:"expires_at"`
	Views        ViewAllowance `json:"views"`
}

// ViewAllowance - параметры квоты просмотров кандидатов внутри пакета
type ViewAllowance struct {
	Count int `json:"count"`
	// IsUnlimited - просмотры не тарифицируются
	IsUnlimited bool `json:"is_unlimited"`
	// IsIncluded - пакет вообще содержит просмотры
	IsIncluded bool `json:"is_included"`
	// ExpiryAfterPackageExpiry - срок жизни View относительно конца подписки:
	// 0 - до конца подписки, отрицательное - бессрочно, N - плюс N дней
	ExpiryAfterPackageExpiry int `json:"expiry_after_package_expiry"`
}

// ViewExpiration вычисляет срок действия View, создаваемого этой подпиской
func (s *Subscription) ViewExpiration() time.Time {
	days := s.Views.ExpiryAfterPackageExpiry
	switch {
	case days == 0:
		return s.ExpiresAt
	case days < 0:
		return s.ExpiresAt.AddDate(unboundedViewYears, 0, 0)
	default:
		return s.ExpiresAt.AddDate(0, 0, days)
	}
}

// View - запись идемпотентности: группа работодателя уже оплатила
// контакт с кандидатом и не должна тарифицироваться повторно
type View struct {
	ID          uuid.UUID `json:"id"`
	GroupID     uuid.UUID `json:"group_id"`
	EmployerID  uuid.UUID `json:"employer_id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (v *View) IsActive(now time.Time) bool {
	return v.ExpiresAt.After(now)
}

// Pricing - страновой тариф просмотров
type Pricing struct {
	CountryCode    string  `json:"country_code"`
	ViewsBasePrice float64 `json:"views_base_price"`
	ViewsCount     int     `json:"views_count"`
}

// UnitCost - стоимость одного просмотра при списании из кошелька
func (p *Pricing) UnitCost() float64 {
	if p.ViewsCount <= 0 {
		return p.ViewsBasePrice
	}
	return p.ViewsBasePrice / float64(p.ViewsCount)
}

// FreeTierPolicy - страновое ограничение бесплатного пакета.
// Поле Days используется и как возраст вакансии в днях (приглашение),
// и как предел числа откликнувшихся (отклик) - унаследованная перегрузка.
type FreeTierPolicy struct {
	CountryCode string `json:"country_code"`
	Days        int    `json:"days"`
	IsUnlimited bool   `json:"is_unlimited"`
}
