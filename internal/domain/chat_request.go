package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatRequest - запрос на контакт, ожидающий решения рекрутера.
// Жизненный цикл: None -> Pending -> {Accepted, Rejected},
// из Rejected допускается переоткрытие обратно в Pending.
type ChatRequest struct {
	ID                   uuid.UUID `json:"id"`
	PaID                 uuid.UUID `json:"pa_id"`
	JobID                uuid.UUID `json:"job_id"`
	CandidateID          uuid.UUID `json:"candidate_id"`
	EmployerID           uuid.UUID `json:"employer_id"`
	IsAccepted           bool      `json:"is_accepted"`
	IsRejected           bool      `json:"is_rejected"`
	IsAppliedByCandidate bool      `json:"is_applied_by_candidate"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// IsPending - запрос еще не решен рекрутером
func (r *ChatRequest) IsPending() bool {
	return !r.IsAccepted && !r.IsRejected
}
