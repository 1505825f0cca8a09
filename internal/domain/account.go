package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleEmployer  Role = "employer"
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
)

type Account struct {
	ID                   uuid.UUID   `json:"id"`
	Email                string      `json:"email"`
	DisplayName          string      `json:"display_name"`
	Role                 Role        `json:"role"`
	Membership           *string     `json:"membership,omitempty"`
	IsMaster             bool        `json:"is_master"`
	MasterID             *uuid.UUID  `json:"master_id,omitempty"`
	PaID                 *uuid.UUID  `json:"pa_id,omitempty"`
	BlockedBy            []uuid.UUID `json:"blocked_by"`
	IsExposedToAll       bool        `json:"is_exposed_to_all"`
	ExposedTo            []uuid.UUID `json:"exposed_to"`
	IsExposedToCommunity bool        `json:"is_exposed_to_community"`
	ChatLanguage         string      `json:"chat_language"`
	ResumeURL            *string     `json:"resume_url,omitempty"`
	DeviceToken          *string     `json:"device_token,omitempty"`
	DeviceType           *string     `json:"device_type,omitempty"`
	Phone                *string     `json:"phone,omitempty"`
	CountryCode          string      `json:"country_code"`
	AppInstalled         bool        `json:"app_installed"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// IsBlockedBy сообщает, заблокировал ли указанный аккаунт данного пользователя
func (a *Account) IsBlockedBy(id uuid.UUID) bool {
	for _, b := range a.BlockedBy {
		if b == id {
			return true
		}
	}
	return false
}

// HasRecruiter - кандидат управляется рекрутером
func (a *Account) HasRecruiter() bool {
	return a.PaID != nil && *a.PaID != uuid.Nil
}

// QuotaGroupID - корень группы аккаунтов, разделяющей квоту просмотров:
// мастер-аккаунт для подчиненного, сам аккаунт в остальных случаях
func (a *Account) QuotaGroupID() uuid.UUID {
	if a.MasterID != nil && *a.MasterID != uuid.Nil {
		return *a.MasterID
	}
	return a.ID
}

type ExposureKind int

const (
	// ExposureOpen - профиль открыт любому работодателю
	ExposureOpen ExposureKind = iota
	// ExposureAllowList - явный список допущенных работодателей
	ExposureAllowList
	// ExposureCommunityGated - доступ по совпадению membership
	ExposureCommunityGated
	// ExposureRecruiterGated - контакт только через одобрение рекрутера
	ExposureRecruiterGated
)

// Exposure - разобранная политика видимости кандидата.
// Явный вариант вместо вложенных условий по опциональным полям,
// чтобы порядок приоритетов был исчерпывающим и тестируемым.
type Exposure struct {
	Kind       ExposureKind
	AllowList  map[uuid.UUID]struct{}
	Membership string
}

// ExposurePolicy выводит политику видимости из полей кандидата.
// Приоритет: isExposedToAll > нет рекрутера > exposedTo > community > рекрутер.
func (a *Account) ExposurePolicy() Exposure {
	if a.IsExposedToAll {
		return Exposure{Kind: ExposureOpen}
	}
	// Некому маршрутизировать запрос - считаем открытым
	if !a.HasRecruiter() {
		return Exposure{Kind: ExposureOpen}
	}
	if len(a.ExposedTo) > 0 {
		allow := make(map[uuid.UUID]struct{}, len(a.ExposedTo))
		for _, id := range a.ExposedTo {
			allow[id] = struct{}{}
		}
		return Exposure{Kind: ExposureAllowList, AllowList: allow}
	}
	if a.IsExposedToCommunity {
		membership := ""
		if a.Membership != nil {
			membership = *a.Membership
		}
		return Exposure{Kind: ExposureCommunityGated, Membership: membership}
	}
	return Exposure{Kind: ExposureRecruiterGated}
}
