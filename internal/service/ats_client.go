package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"job_marketplace/internal/domain"
)

// ATSForwarder - контракт пересылки отклика во внешнюю ATS работодателя
type ATSForwarder interface {
	// ForwardApplication отправляет резюме кандидата в ATS вакансии
	// (endpoint или email); при отсутствии загруженного резюме PDF
	// генерируется внешним рендерером из шаблона
	ForwardApplication(ctx context.Context, job *domain.Job, candidate *domain.Account) error
	// PostApplicant публикует структурированные данные отклика на webhook
	PostApplicant(ctx context.Context, url string, payload map[string]interface{}) error
}

// ATSClient пересылает отклики по HTTP; email-путь делегируется нотификатору
type ATSClient struct {
	rendererURL string
	notifier    Notifier
	httpClient  *http.Client
}

func NewATSClient(rendererURL string, notifier Notifier) *ATSClient {
	return &ATSClient{
		rendererURL: rendererURL,
		notifier:    notifier,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type renderResumeRequest struct {
	CandidateID string `json:"candidate_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

type renderResumeResponse struct {
	URL string `json:"url"`
}

// resumeURL возвращает загруженное резюме кандидата или генерирует PDF
func (c *ATSClient) resumeURL(ctx context.Context, candidate *domain.Account) (string, error) {
	if candidate.ResumeURL != nil && *candidate.ResumeURL != "" {
		return *candidate.ResumeURL, nil
	}

	body, err := json.Marshal(renderResumeRequest{
		CandidateID: candidate.ID.String(),
		DisplayName: candidate.DisplayName,
		Email:       candidate.Email,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.rendererURL+"/render", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("resume renderer returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var response renderResumeResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return response.URL, nil
}

func (c *ATSClient) ForwardApplication(ctx context.Context, job *domain.Job, candidate *domain.Account) error {
	resumeURL, err := c.resumeURL(ctx, candidate)
	if err != nil {
		return err
	}

	if job.ATSURL != nil && *job.ATSURL != "" {
		return c.PostApplicant(ctx, *job.ATSURL, map[string]interface{}{
			"candidate_id": candidate.ID.String(),
			"name":         candidate.DisplayName,
			"email":        candidate.Email,
			"resume_url":   resumeURL,
			"job_id":       job.ID.String(),
			"job_title":    job.DisplayTitle(),
		})
	}

	if job.ATSEmail != nil && *job.ATSEmail != "" {
		return c.notifier.SendEmail(ctx, "ats_application", *job.ATSEmail, map[string]string{
			"candidate_name": candidate.DisplayName,
			"job_title":      job.DisplayTitle(),
			"resume_url":     resumeURL,
		})
	}

	return fmt.Errorf("job %s has no ATS destination", job.ID)
}

func (c *ATSClient) PostApplicant(ctx context.Context, url string, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}
