package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Conversation - единственный тред переписки для тройки
// (работодатель, кандидат, вакансия)
type Conversation struct {
	ID          uuid.UUID  `json:"id"`
	EmployerID  uuid.UUID  `json:"employer_id"`
	CandidateID uuid.UUID  `json:"candidate_id"`
	JobID       uuid.UUID  `json:"job_id"`
	RoomID      string     `json:"room_id"`
	PaID        *uuid.UUID `json:"pa_id,omitempty"`

	IsInvited            bool `json:"is_invited"`
	IsApplied            bool `json:"is_applied"`
	IsInterested         bool `json:"is_interested"`
	IsHired              bool `json:"is_hired"`
	IsRejected           bool `json:"is_rejected"`
	IsInvitationRejected bool `json:"is_invitation_rejected"`
	IsCandidateBlocked   bool `json:"is_candidate_blocked"`
	IsEmployerBlocked    bool `json:"is_employer_blocked"`
	HasCandidateDeleted  bool `json:"has_candidate_deleted"`
	HasEmployerDeleted   bool `json:"has_employer_deleted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoomIDFor строит детерминированный идентификатор комнаты треда
func RoomIDFor(employerID, candidateID, jobID uuid.UUID) string {
	return fmt.Sprintf("%s_%s_%s", employerID, candidateID, jobID)
}

// Counterpart возвращает id собеседника для указанной роли
func (c *Conversation) Counterpart(role Role) uuid.UUID {
	if role == RoleCandidate {
		return c.EmployerID
	}
	return c.CandidateID
}

// Participant возвращает id участника треда для указанной роли
func (c *Conversation) Participant(role Role) uuid.UUID {
	if role == RoleCandidate {
		return c.CandidateID
	}
	return c.EmployerID
}

const (
	MessageTypeText   = "text"
	MessageTypeVoice  = "voice"
	MessageTypeSystem = "system"
)

// Message - запись лога переписки, только добавляется, никогда не удаляется.
// Тела хранятся шифртекстом; флаги блокировки денормализованы на момент
// отправки и перезаписываются при блокировке задним числом.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	FromID         uuid.UUID `json:"from_id"`
	ToID           uuid.UUID `json:"to_id"`
	Body           string    `json:"body"`
	OriginalBody   string    `json:"original_body,omitempty"`
	Type           string    `json:"type"`
	IsEncrypted    bool      `json:"is_encrypted"`
	IsTranslated   bool      `json:"is_translated"`
	IsRead         bool      `json:"is_read"`

	IsCandidateBlocked  bool `json:"is_candidate_blocked"`
	IsEmployerBlocked   bool `json:"is_employer_blocked"`
	HasCandidateDeleted bool `json:"has_candidate_deleted"`
	HasEmployerDeleted  bool `json:"has_employer_deleted"`

	CreatedAt time.Time `json:"created_at"`
}
