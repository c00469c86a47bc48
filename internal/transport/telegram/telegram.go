// Package telegram connects the conversation controller and the sweeper to
// the Telegram Bot API using long polling.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/colonyops/remindbot/internal/core/conversation"
	"github.com/colonyops/remindbot/internal/core/kv"
	"github.com/colonyops/remindbot/internal/core/logging"
	"github.com/colonyops/remindbot/internal/core/reminder"
)

// ErrMissingToken is returned by New when no bot token is configured.
var ErrMissingToken = errors.New("telegram bot token is required")

const offsetKey = "telegram:update_offset"

// Config holds the Bot API connection settings.
type Config struct {
	Token string
	// Proxy is an optional http, https or socks5 URL.
	Proxy string
	// PollTimeout is the long polling timeout in seconds.
	PollTimeout int
	// APIEndpoint overrides tgbotapi.APIEndpoint; it must contain two %s verbs
	// for the token and the method.
	APIEndpoint string
	Debug       bool
}

// Handler processes one inbound text message for a session.
type Handler func(ctx context.Context, sessionID, text string) error

// Bot is a Telegram transport. Session ids and task owners are the sender's
// user id in decimal form.
type Bot struct {
	api         *tgbotapi.BotAPI
	transport   *pollTransport
	offset      *kv.Typed[int]
	pollTimeout int
	retryDelay  time.Duration
	log         zerolog.Logger
}

var (
	_ conversation.Sender = (*Bot)(nil)
	_ reminder.Notifier   = (*Bot)(nil)
)

// New authenticates against the Bot API. offsets persists the update offset
// across restarts; it may be nil.
func New(cfg Config, offsets kv.KV, log zerolog.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}

	client, err := newHTTPClient(cfg.Proxy, cfg.PollTimeout)
	if err != nil {
		return nil, err
	}
	polls := &pollTransport{base: client.Transport}
	client.Transport = polls

	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	_ = tgbotapi.SetLogger(botLogger{log: log})

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	api.Debug = cfg.Debug

	b := &Bot{
		api:         api,
		transport:   polls,
		pollTimeout: cfg.PollTimeout,
		retryDelay:  3 * time.Second,
		log:         log,
	}
	if offsets != nil {
		b.offset = kv.NewTyped[int](offsets, offsetKey)
	}

	log.Info().Str("username", api.Self.UserName).Msg("authorized on telegram")
	return b, nil
}

// newHTTPClient builds the Bot API client. The request timeout leaves room
// for a full long poll.
func newHTTPClient(proxy string, pollTimeout int) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxy != "" {
		u, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(u)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(pollTimeout+30) * time.Second,
	}, nil
}

// pollTransport ties getUpdates requests to the context passed to Run so a
// long poll in flight is abandoned as soon as Run is cancelled. The Bot API
// client builds its requests without a context.
type pollTransport struct {
	base http.RoundTripper

	mu  sync.Mutex
	ctx context.Context
}

func (t *pollTransport) bind(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ctx = ctx
}

func (t *pollTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	ctx := t.ctx
	t.mu.Unlock()

	if ctx != nil && strings.HasSuffix(req.URL.Path, "/getUpdates") {
		req = req.WithContext(ctx)
	}
	return t.base.RoundTrip(req)
}

// Username returns the bot's username.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Send delivers a controller reply, attaching or removing the reply keyboard
// as the menu requests.
func (b *Bot) Send(ctx context.Context, sessionID string, reply conversation.Reply) error {
	chatID, err := chatID(sessionID)
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, reply.Text)
	switch reply.Menu {
	case conversation.MenuKeep:
	case conversation.MenuRemove:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	default:
		msg.ReplyMarkup = keyboard(reply.Menu.Buttons())
	}

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send message to %s: %w", sessionID, err)
	}
	return nil
}

// Notify sends a plain reminder message to the owner.
func (b *Bot) Notify(ctx context.Context, owner, text string) error {
	chatID, err := chatID(owner)
	if err != nil {
		return err
	}

	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("notify %s: %w", owner, err)
	}
	return nil
}

// Run long-polls for updates and passes private text messages to handler one
// at a time in arrival order. Handler errors are logged. The next offset is
// persisted after every update. Run returns when ctx is cancelled.
func (b *Bot) Run(ctx context.Context, handler Handler) error {
	b.transport.bind(ctx)
	defer b.transport.bind(nil)

	offset := b.loadOffset(ctx)

	for ctx.Err() == nil {
		cfg := tgbotapi.NewUpdate(offset)
		cfg.Timeout = b.pollTimeout
		cfg.AllowedUpdates = []string{"message"}

		updates, err := b.api.GetUpdates(cfg)
		if ctx.Err() != nil {
			break
		}
		if err != nil {
			b.log.Warn().Err(err).Msg("get updates failed, retrying")
			select {
			case <-ctx.Done():
			case <-time.After(b.retryDelay):
			}
			continue
		}

		for _, update := range updates {
			if ctx.Err() != nil {
				break
			}
			b.dispatch(ctx, update, handler)
			offset = update.UpdateID + 1
			b.saveOffset(ctx, offset)
		}
	}

	return nil
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update, handler Handler) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}
	if msg.Chat != nil && !msg.Chat.IsPrivate() {
		b.log.Debug().Int64("chat_id", msg.Chat.ID).Msg("ignoring non-private chat")
		return
	}

	sessionID := strconv.FormatInt(msg.From.ID, 10)
	if err := handler(logging.WithSessionID(ctx, sessionID), sessionID, msg.Text); err != nil {
		b.log.Error().Err(err).Str("session_id", sessionID).Int("update_id", update.UpdateID).Msg("handle message")
	}
}

func (b *Bot) loadOffset(ctx context.Context) int {
	if b.offset == nil {
		return 0
	}
	offset, _, err := b.offset.Get(ctx)
	if err != nil {
		b.log.Warn().Err(err).Msg("load update offset, starting from 0")
		return 0
	}
	return offset
}

func (b *Bot) saveOffset(ctx context.Context, offset int) {
	if b.offset == nil {
		return
	}
	if err := b.offset.Set(ctx, offset); err != nil {
		b.log.Warn().Err(err).Int("offset", offset).Msg("persist update offset")
	}
}

func chatID(sessionID string) (int64, error) {
	id, err := strconv.ParseInt(sessionID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("session %q is not a telegram chat id: %w", sessionID, err)
	}
	return id, nil
}

func keyboard(rows [][]string) tgbotapi.ReplyKeyboardMarkup {
	buttons := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		r := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			r = append(r, tgbotapi.NewKeyboardButton(label))
		}
		buttons = append(buttons, r)
	}
	return tgbotapi.NewReplyKeyboard(buttons...)
}

// botLogger routes the library's debug output through zerolog.
type botLogger struct {
	log zerolog.Logger
}

func (l botLogger) Println(v ...interface{}) {
	l.log.Debug().Msg(fmt.Sprint(v...))
}

func (l botLogger) Printf(format string, v ...interface{}) {
	l.log.Debug().Msgf(format, v...)
}
