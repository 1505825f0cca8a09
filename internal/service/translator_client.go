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

// Translator - контракт внешнего сервиса машинного перевода
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// TranslatorClient обращается к сервису перевода по HTTP
type TranslatorClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewTranslatorClient(baseURL, apiKey string) *TranslatorClient {
	return &TranslatorClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type translateRequest struct {
	Text string `json:"text"`
	From string `json:"from"`
	To   string `json:"to"`
}

type translateResponse struct {
	Text string `json:"text"`
}

func (c *TranslatorClient) Translate(ctx context.Context, text, from, to string) (string, error) {
	body, err := json.Marshal(translateRequest{Text: text, From: from, To: to})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("translation service returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var response translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return response.Text, nil
}
