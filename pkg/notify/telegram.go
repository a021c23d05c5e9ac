package notify

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	pkgerrors "github.com/pkg/errors"
)

const telegramSendTimeout = 10 * time.Second

var _ Channel = &TelegramChannel{}

// TelegramChannel pushes the alert to a chat through the Bot API. Last in
// the cascade because it is the only channel that still reaches the user
// when the local session is completely off.
type TelegramChannel struct {
	token  string
	chatID int64
	opts   []bot.Option
}

// NewTelegramChannel builds the channel from the token/chat-id pair in the
// config. Extra bot options are for tests pointing at a fake API server.
func NewTelegramChannel(token string, chatID int64, opts ...bot.Option) *TelegramChannel {
	return &TelegramChannel{
		token:  token,
		chatID: chatID,
		opts:   opts,
	}
}

func (t *TelegramChannel) Name() string { return "telegram" }

func (t *TelegramChannel) Send(ctx context.Context, msg Message) error {
	if t.token == "" || t.chatID == 0 {
		return pkgerrors.New("telegram credentials not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, telegramSendTimeout)
	defer cancel()

	b, err := bot.New(t.token, t.opts...)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to initialize telegram bot")
	}

	params := &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   msg.Title + "\n" + msg.Body,
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		return pkgerrors.Wrapf(err, "failed to send telegram message to chat %d", t.chatID)
	}
	return nil
}
