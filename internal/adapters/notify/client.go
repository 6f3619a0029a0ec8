package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Notifier announces new member registrations. Calls are best effort: the
// caller ignores failures and member creation never rolls back on them.
type Notifier interface {
	NotifyNewMember(ctx context.Context, memberID int64) error
}

type webhookNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewWebhookNotifier(webhookURL string) Notifier {
	return &webhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

func (n *webhookNotifier) NotifyNewMember(ctx context.Context, memberID int64) error {
	if n.webhookURL == "" {
		return nil
	}
	payload := map[string]string{
		"text": fmt.Sprintf("새로운 회원이 가입했습니다! (member id: %d)", memberID),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return nil
}
