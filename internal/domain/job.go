package domain

import (
	"time"

	"github.com/google/uuid"
)

type Job struct {
	ID               uuid.UUID `json:"id"`
	EmployerID       uuid.UUID `json:"employer_id"`
	Title            string    `json:"title"`
	SubTitle         *string   `json:"sub_title,omitempty"`
	CountryCode      string    `json:"country_code"`
	IsATS            bool      `json:"is_ats"`
	IsCompanyWebsite bool      `json:"is_company_website"`
	ATSEmail         *string   `json:"ats_email,omitempty"`
	ATSURL           *string   `json:"ats_url,omitempty"`
	WebhookURL       *string   `json:"webhook_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// DisplayTitle - заголовок для системного сообщения приглашения
func (j *Job) DisplayTitle() string {
	if j.Title != "" {
		return j.Title
	}
	if j.SubTitle != nil {
		return *j.SubTitle
	}
	return ""
}

// AutoForwards - отклик кандидата пересылается работодателю автоматически
func (j *Job) AutoForwards() bool {
	return j.IsCompanyWebsite || j.IsATS
}
