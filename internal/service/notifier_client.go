package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Notifier - контракт внешнего сервиса доставки push/email/SMS
type Notifier interface {
	SendPush(ctx context.Context, deviceToken, deviceType, title, body string, payload map[string]string) error
	SendEmail(ctx context.Context, template, to string, vars map[string]string) error
	SendSms(ctx context.Context, countryCode, phone, body string) error
}

// NotifierClient обращается к сервису уведомлений по HTTP
type NotifierClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewNotifierClient(baseURL string) *NotifierClient {
	return &NotifierClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type pushRequest struct {
	DeviceToken string            `json:"device_token"`
	DeviceType  string            `json:"device_type"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Payload     map[string]string `json:"payload,omitempty"`
}

type emailRequest struct {
	Template string            `json:"template"`
	To       string            `json:"to"`
	Vars     map[string]string `json:"vars,omitempty"`
}

type smsRequest struct {
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
	Body        string `json:"body"`
}

func (c *NotifierClient) SendPush(ctx context.Context, deviceToken, deviceType, title, body string, payload map[string]string) error {
	return c.post(ctx, "/push", pushRequest{
		DeviceToken: deviceToken,
		DeviceType:  deviceType,
		Title:       title,
		Body:        body,
		Payload:     payload,
	})
}

func (c *NotifierClient) SendEmail(ctx context.Context, template, to string, vars map[string]string) error {
	return c.post(ctx, "/email", emailRequest{
		Template: template,
		To:       to,
		Vars:     vars,
	})
}

func (c *NotifierClient) SendSms(ctx context.Context, countryCode, phone, body string) error {
	return c.post(ctx, "/sms", smsRequest{
		CountryCode: countryCode,
		Phone:       phone,
		Body:        body,
	})
}

func (c *NotifierClient) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(body))
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
		return fmt.Errorf("notification service returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}
