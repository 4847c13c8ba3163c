package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsSpider/internal/config"
	"NewsSpider/internal/domain"
)

func sampleNotification() domain.Notification {
	return domain.Notification{
		URL:         "https://example.com/news/a?x=1&y=2",
		PublishDate: time.Date(2026, time.October, 15, 8, 30, 0, 0, time.UTC),
		Title:       "Bridge <b>reopens</b> & traffic flows",
		Description: "Engineers finished repairs.",
		Source:      "example.com",
	}
}

func TestFormatMessage(t *testing.T) {
	t.Parallel()

	got := FormatMessage(sampleNotification(), nil)

	want := "<a href=\"https://example.com/news/a?x=1&amp;y=2\">example.com</a>: <strong>Bridge reopens &amp; traffic flows</strong>\n\n" +
		"<i>Engineers finished repairs.</i>\n\n" +
		"date: 2026-10-15 08:30:00"
	assert.Equal(t, want, got)
}

func TestFormatMessageWithoutDescription(t *testing.T) {
	t.Parallel()

	msg := sampleNotification()
	msg.Description = ""

	assert.NotContains(t, FormatMessage(msg, nil), "<i>")
}

func TestNotifierNotify(t *testing.T) {
	t.Parallel()

	var (
		gotPath string
		gotBody map[string]string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer server.Close()

	n := NewNotifier(config.TelegramConfig{BotToken: "token", ChatID: "42", Endpoint: server.URL + "/"})
	require.NoError(t, n.Notify(context.Background(), sampleNotification()))

	assert.Equal(t, "/bottoken/sendMessage", gotPath)
	assert.Equal(t, "42", gotBody["chat_id"])
	assert.Equal(t, "HTML", gotBody["parse_mode"])
	assert.Contains(t, gotBody["text"], "<strong>Bridge reopens &amp; traffic flows</strong>")
}

func TestNotifierNotifyAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	n := NewNotifier(config.TelegramConfig{BotToken: "token", ChatID: "42", Endpoint: server.URL})
	err := n.Notify(context.Background(), sampleNotification())
	assert.ErrorContains(t, err, "chat not found")
}

func TestNotifierMisconfigured(t *testing.T) {
	t.Parallel()

	for _, cfg := range []config.TelegramConfig{
		{BotToken: "", ChatID: "42"},
		{BotToken: "token", ChatID: ""},
	} {
		err := NewNotifier(cfg).Notify(context.Background(), sampleNotification())
		assert.ErrorIs(t, err, domain.ErrNotifierMisconfigured)
	}
}
