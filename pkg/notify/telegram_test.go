package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func telegramTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "sendMessage") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestTelegramChannelSend(t *testing.T) {
	srv := telegramTestServer(t, http.StatusOK,
		`{"ok":true,"result":{"message_id":1,"date":1,"chat":{"id":42,"type":"private"},"text":"hi"}}`)
	defer srv.Close()

	ch := NewTelegramChannel("test-token", 42,
		bot.WithServerURL(srv.URL),
		bot.WithSkipGetMe(),
	)

	err := ch.Send(context.Background(), Message{Title: "Battery low", Body: "at 20%", Kind: KindLow})
	require.NoError(t, err)
}

func TestTelegramChannelAPIError(t *testing.T) {
	srv := telegramTestServer(t, http.StatusBadRequest,
		`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
	defer srv.Close()

	ch := NewTelegramChannel("test-token", 42,
		bot.WithServerURL(srv.URL),
		bot.WithSkipGetMe(),
	)

	err := ch.Send(context.Background(), Message{Kind: KindHigh})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send telegram message")
}

func TestTelegramChannelMissingCredentials(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		chatID int64
	}{
		{"no token", "", 42},
		{"no chat id", "token", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := NewTelegramChannel(tt.token, tt.chatID)
			err := ch.Send(context.Background(), Message{Kind: KindHigh})
			require.Error(t, err)
		})
	}
}

func TestSoundChannelBellFallback(t *testing.T) {
	// With no player binaries on PATH the channel must fall back to the
	// terminal bell instead of failing.
	t.Setenv("PATH", t.TempDir())

	var out strings.Builder
	ch := &SoundChannel{bell: &out}

	err := ch.Send(context.Background(), Message{Kind: KindLow})
	require.NoError(t, err)
	assert.Equal(t, "\a", out.String())
}
