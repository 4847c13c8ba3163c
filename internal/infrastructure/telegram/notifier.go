package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"NewsSpider/internal/config"
	"NewsSpider/internal/domain"
	"NewsSpider/internal/ports"
)

const defaultEndpoint = "https://api.telegram.org"

// Notifier sends one message per accepted article to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	endpoint string
	client   *http.Client
	policy   *bluemonday.Policy
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token, chat identifier and API endpoint.
func NewNotifier(cfg config.TelegramConfig) *Notifier {
	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Notifier{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
		policy:   bluemonday.StrictPolicy(),
	}
}

// Notify posts an HTML formatted message about the article.
func (n *Notifier) Notify(ctx context.Context, msg domain.Notification) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return domain.ErrNotifierMisconfigured
	}

	body, err := json.Marshal(map[string]string{
		"chat_id":    n.chatID,
		"text":       FormatMessage(msg, n.policy),
		"parse_mode": "HTML",
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.endpoint, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(payload, &result)

	if resp.StatusCode != http.StatusOK || !result.OK {
		if result.Description != "" {
			return fmt.Errorf("telegram error %s: %s", resp.Status, result.Description)
		}
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

// FormatMessage renders the Telegram HTML message. Title and description are stripped
// of markup and escaped by policy.
func FormatMessage(msg domain.Notification, policy *bluemonday.Policy) string {
	if policy == nil {
		policy = bluemonday.StrictPolicy()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<a href=\"%s\">%s</a>: <strong>%s</strong>\n\n",
		html.EscapeString(msg.URL),
		html.EscapeString(msg.Source),
		policy.Sanitize(msg.Title))
	if desc := strings.TrimSpace(policy.Sanitize(msg.Description)); desc != "" {
		fmt.Fprintf(&b, "<i>%s</i>\n\n", desc)
	}
	fmt.Fprintf(&b, "date: %s", msg.PublishDate.UTC().Format("2006-01-02 15:04:05"))

	return b.String()
}
