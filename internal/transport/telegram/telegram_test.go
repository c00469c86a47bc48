package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/remindbot/internal/core/conversation"
	"github.com/colonyops/remindbot/internal/core/kv"
	"github.com/colonyops/remindbot/internal/data/db"
	"github.com/colonyops/remindbot/internal/data/stores"
)

// fakeAPI is a minimal Bot API server. It serves queued getUpdates batches
// and records every sendMessage call.
type fakeAPI struct {
	mu      sync.Mutex
	batches [][]string
	offsets []string
	sent    []map[string]string
	failFor map[string]string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	switch method {
	case "getMe":
		writeOK(w, `{"id":1,"is_bot":true,"first_name":"Remind","username":"remindbot"}`)
	case "getUpdates":
		f.offsets = append(f.offsets, r.FormValue("offset"))
		if len(f.batches) == 0 {
			writeOK(w, `[]`)
			return
		}
		batch := f.batches[0]
		f.batches = f.batches[1:]
		writeOK(w, "["+strings.Join(batch, ",")+"]")
	case "sendMessage":
		chat := r.FormValue("chat_id")
		if desc, ok := f.failFor[chat]; ok {
			_, _ = fmt.Fprintf(w, `{"ok":false,"error_code":403,"description":%q}`, desc)
			return
		}
		f.sent = append(f.sent, map[string]string{
			"chat_id":      chat,
			"text":         r.FormValue("text"),
			"reply_markup": r.FormValue("reply_markup"),
		})
		writeOK(w, fmt.Sprintf(`{"message_id":%d,"date":0,"chat":{"id":%s,"type":"private"}}`, len(f.sent), chat))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeAPI) Sent() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]string(nil), f.sent...)
}

func (f *fakeAPI) Offsets() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.offsets...)
}

func writeOK(w http.ResponseWriter, result string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"ok":true,"result":%s}`, result)
}

func textUpdate(updateID int, userID int64, chatType, text string) string {
	return fmt.Sprintf(
		`{"update_id":%d,"message":{"message_id":%d,"from":{"id":%d,"is_bot":false,"first_name":"U"},"chat":{"id":%d,"type":%q},"date":0,"text":%q}}`,
		updateID, updateID, userID, userID, chatType, text,
	)
}

func newTestBot(t *testing.T, api *fakeAPI, offsets kv.KV) *Bot {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	bot, err := New(Config{
		Token:       "123:abc",
		APIEndpoint: srv.URL + "/bot%s/%s",
	}, offsets, zerolog.Nop())
	require.NoError(t, err)
	bot.retryDelay = time.Millisecond
	return bot
}

func TestNew_RequiresToken(t *testing.T) {
	_, err := New(Config{}, nil, zerolog.Nop())
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestNew_RejectsBadProxy(t *testing.T) {
	_, err := New(Config{Token: "123:abc", Proxy: "http://[::1"}, nil, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proxy")
}

func TestNewHTTPClient_Proxy(t *testing.T) {
	client, err := newHTTPClient("socks5://127.0.0.1:1080", 60)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, client.Timeout)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	req := httptest.NewRequest(http.MethodPost, "https://api.telegram.org/bot1/getMe", nil)
	proxyURL, err := transport.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "socks5://127.0.0.1:1080", proxyURL.String())
}

func TestBot_Username(t *testing.T) {
	bot := newTestBot(t, &fakeAPI{}, nil)
	assert.Equal(t, "remindbot", bot.Username())
}

func TestBot_SendMapsMenus(t *testing.T) {
	api := &fakeAPI{}
	bot := newTestBot(t, api, nil)
	ctx := context.Background()

	require.NoError(t, bot.Send(ctx, "42", conversation.Reply{Text: "main", Menu: conversation.MenuMain}))
	require.NoError(t, bot.Send(ctx, "42", conversation.Reply{Text: "edit", Menu: conversation.MenuEdit}))
	require.NoError(t, bot.Send(ctx, "42", conversation.Reply{Text: "remove", Menu: conversation.MenuRemove}))
	require.NoError(t, bot.Send(ctx, "42", conversation.Reply{Text: "keep"}))

	sent := api.Sent()
	require.Len(t, sent, 4)

	type button struct {
		Text string `json:"text"`
	}
	type markup struct {
		Keyboard       [][]button `json:"keyboard"`
		ResizeKeyboard bool       `json:"resize_keyboard"`
		RemoveKeyboard bool       `json:"remove_keyboard"`
	}
	decode := func(raw string) markup {
		var m markup
		require.NoError(t, json.Unmarshal([]byte(raw), &m))
		return m
	}

	mainMenu := decode(sent[0]["reply_markup"])
	assert.True(t, mainMenu.ResizeKeyboard)
	assert.Equal(t, [][]button{{{"Add Task"}, {"List Task"}}}, mainMenu.Keyboard)

	edit := decode(sent[1]["reply_markup"])
	assert.Equal(t, [][]button{{{"Edit Task"}, {"Back"}}}, edit.Keyboard)

	assert.True(t, decode(sent[2]["reply_markup"]).RemoveKeyboard)
	assert.Empty(t, sent[3]["reply_markup"])

	assert.Equal(t, "42", sent[0]["chat_id"])
	assert.Equal(t, "main", sent[0]["text"])
}

func TestBot_SendRejectsNonNumericSession(t *testing.T) {
	bot := newTestBot(t, &fakeAPI{}, nil)
	err := bot.Send(context.Background(), "console", conversation.Reply{Text: "hi"})
	require.Error(t, err)
}

func TestBot_Notify(t *testing.T) {
	api := &fakeAPI{failFor: map[string]string{"7": "Forbidden: bot was blocked by the user"}}
	bot := newTestBot(t, api, nil)
	ctx := context.Background()

	require.NoError(t, bot.Notify(ctx, "42", "Reminder: Buy milk"))

	err := bot.Notify(ctx, "7", "Reminder: Stretch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")

	require.Error(t, bot.Notify(ctx, "not-a-user", "x"))

	sent := api.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Reminder: Buy milk", sent[0]["text"])
	assert.Empty(t, sent[0]["reply_markup"])
}

type received struct {
	sessionID string
	text      string
}

func TestBot_RunDispatchesInOrderAndPersistsOffset(t *testing.T) {
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	offsets := stores.NewKVStore(database)

	api := &fakeAPI{batches: [][]string{{
		textUpdate(10, 42, "private", "Add Task"),
		textUpdate(11, 42, "group", "ignored"),
		`{"update_id":12,"edited_message":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"text":"x"}}`,
		textUpdate(13, 43, "private", "List Task"),
	}}}
	bot := newTestBot(t, api, offsets)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu  sync.Mutex
		got []received
	)
	handler := func(_ context.Context, sessionID, text string) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, received{sessionID, text})
		if len(got) == 1 {
			return fmt.Errorf("handler failures are not fatal")
		}
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx, handler) }()

	require.Eventually(t, func() bool {
		return len(api.Offsets()) >= 2
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	mu.Lock()
	assert.Equal(t, []received{{"42", "Add Task"}, {"43", "List Task"}}, got)
	mu.Unlock()

	assert.Equal(t, "14", api.Offsets()[1], "next poll acknowledges the batch")

	stored, ok, err := kv.NewTyped[int](offsets, offsetKey).Get(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 14, stored)

	// A restarted bot resumes from the persisted offset.
	api2 := &fakeAPI{}
	bot2 := newTestBot(t, api2, offsets)
	ctx2, cancel2 := context.WithCancel(context.Background())
	done2 := make(chan error, 1)
	go func() { done2 <- bot2.Run(ctx2, handler) }()
	require.Eventually(t, func() bool { return len(api2.Offsets()) >= 1 }, 2*time.Second, 5*time.Millisecond)
	cancel2()
	require.NoError(t, <-done2)
	assert.Equal(t, "14", api2.Offsets()[0])
}

func TestBot_RunCancelAbortsLongPoll(t *testing.T) {
	polling := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			writeOK(w, `{"id":1,"is_bot":true,"first_name":"Remind","username":"remindbot"}`)
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			select {
			case polling <- struct{}{}:
			default:
			}
			// Hold the poll open like Telegram does when nothing arrives.
			select {
			case <-r.Context().Done():
			case <-time.After(30 * time.Second):
				writeOK(w, `[]`)
			}
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			writeOK(w, `{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	bot, err := New(Config{
		Token:       "123:abc",
		PollTimeout: 60,
		APIEndpoint: srv.URL + "/bot%s/%s",
	}, nil, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx, func(context.Context, string, string) error { return nil }) }()

	select {
	case <-polling:
	case <-time.After(2 * time.Second):
		t.Fatal("Run never polled")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run waited for the long poll after cancel")
	}

	// Requests outside Run are not tied to the cancelled context.
	require.NoError(t, bot.Notify(context.Background(), "42", "still works"))
}
