package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"civicpulse-be/apperrors"
)

const webhookTimeout = 15 * time.Second

// WebhookVerifier calls an externally hosted image-comparison workflow.
// Any transport failure, non-2xx response, or undecodable payload is
// reported as a verification service error; there are no retries because
// the upstream may have side effects of its own.
type WebhookVerifier struct {
	url    string
	client *http.Client
	log    *zap.SugaredLogger
}

func NewWebhookVerifier(url string, log *zap.SugaredLogger) *WebhookVerifier {
	return &WebhookVerifier{
		url:    url,
		client: &http.Client{Timeout: webhookTimeout},
		log:    log,
	}
}

func (v *WebhookVerifier) Verify(ctx context.Context, before, after string) (Verdict, error) {
	body, err := json.Marshal(map[string]string{
		"before": before,
		"after":  after,
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("encode verification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(body))
	if err != nil {
		return Verdict{}, fmt.Errorf("build verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("call verification webhook: %v: %w", err, apperrors.ErrVerificationService)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		v.log.Warnw("verification webhook returned non-success", "status", resp.StatusCode)
		return Verdict{}, fmt.Errorf("verification webhook returned %d: %w", resp.StatusCode, apperrors.ErrVerificationService)
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return Verdict{}, fmt.Errorf("decode verification response: %v: %w", err, apperrors.ErrVerificationService)
	}
	return verdict, nil
}

// WebhookNotifier posts the resolution notice to an externally hosted
// notification workflow. The response body is not interpreted beyond
// success or failure.
type WebhookNotifier struct {
	url    string
	client *http.Client
	log    *zap.SugaredLogger
}

func NewWebhookNotifier(url string, log *zap.SugaredLogger) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: webhookTimeout},
		log:    log,
	}
}

func (n *WebhookNotifier) NotifyResolved(ctx context.Context, notice ResolutionNotice) error {
	body, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("encode notification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("call notification webhook: %v: %w", err, apperrors.ErrNotificationFailed)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		n.log.Warnw("notification webhook returned non-success", "status", resp.StatusCode)
		return fmt.Errorf("notification webhook returned %d: %w", resp.StatusCode, apperrors.ErrNotificationFailed)
	}
	return nil
}
