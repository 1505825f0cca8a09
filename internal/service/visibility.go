package service

import (
	"github.com/google/uuid"

	"job_marketplace/internal/domain"
	"job_marketplace/pkg/logger"
)

// VisibilityDecision - исход проверки доступности кандидата
type VisibilityDecision int

const (
	// VisibilityAllowed - прямой контакт разрешен
	VisibilityAllowed VisibilityDecision = iota
	// VisibilityRequiresRecruiterApproval - контакт только через рекрутера
	VisibilityRequiresRecruiterApproval
)

type VisibilityService interface {
	// Resolve решает, разрешен ли прямой контакт между кандидатом и
	// работодателем. actorID - инициатор запроса (любая из сторон);
	// для собственного рекрутера кандидата проверка пропускается.
	Resolve(candidate, employer *domain.Account, actorID uuid.UUID) VisibilityDecision
}

type visibilityService struct {
	log logger.Logger
}

func NewVisibilityService(log logger.Logger) VisibilityService {
	return &visibilityService{log: log}
}

func (s *visibilityService) Resolve(candidate, employer *domain.Account, actorID uuid.UUID) VisibilityDecision {
	// Собственный рекрутер кандидата не проходит проверку видимости
	if candidate.PaID != nil && *candidate.PaID == actorID {
		return VisibilityAllowed
	}

	policy := candidate.ExposurePolicy()

	switch policy.Kind {
	case domain.ExposureOpen:
		return VisibilityAllowed

	case domain.ExposureAllowList:
		// Непустой allow-list имеет приоритет: не попавший в него
		// работодатель не проваливается в проверку сообщества
		if _, ok := policy.AllowList[employer.ID]; ok {
			return VisibilityAllowed
		}
		return VisibilityRequiresRecruiterApproval

	case domain.ExposureCommunityGated:
		if policy.Membership != "" && employer.Membership != nil && *employer.Membership == policy.Membership {
			return VisibilityAllowed
		}
		return VisibilityRequiresRecruiterApproval

	default:
		return VisibilityRequiresRecruiterApproval
	}
}
