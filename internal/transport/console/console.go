// Package console runs the bot against a terminal or any line-oriented
// reader and writer as a single local session.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/remindbot/internal/core/conversation"
	"github.com/colonyops/remindbot/internal/core/reminder"
	"github.com/colonyops/remindbot/internal/core/styles"
)

// ErrUnknownOwner is returned when a reminder targets an owner other than the
// console session.
var ErrUnknownOwner = errors.New("owner is not the console session")

// Handler processes one inbound text message for a session.
type Handler func(ctx context.Context, sessionID, text string) error

// Console is a transport for one session reading lines from in and writing
// replies to out.
type Console struct {
	in        io.Reader
	out       io.Writer
	sessionID string

	mu sync.Mutex
}

var (
	_ conversation.Sender = (*Console)(nil)
	_ reminder.Notifier   = (*Console)(nil)
)

// New creates a Console for sessionID.
func New(in io.Reader, out io.Writer, sessionID string) *Console {
	return &Console{in: in, out: out, sessionID: sessionID}
}

// SessionID returns the session the console speaks for.
func (c *Console) SessionID() string {
	return c.sessionID
}

// Send prints a reply and, when the menu carries buttons, the keyboard.
func (c *Console) Send(_ context.Context, _ string, reply conversation.Reply) error {
	var b strings.Builder
	b.WriteString(styles.BotStyle.Render("bot>"))
	b.WriteString(" ")
	b.WriteString(strings.TrimRight(reply.Text, "\n"))
	b.WriteString("\n")

	if kb := RenderKeyboard(reply.Menu.Buttons()); kb != "" {
		b.WriteString(kb)
		b.WriteString("\n")
	}

	return c.write(b.String())
}

// Notify prints a reminder for the console session. Other owners fail.
func (c *Console) Notify(_ context.Context, owner, text string) error {
	if owner != c.sessionID {
		return fmt.Errorf("notify %s: %w", owner, ErrUnknownOwner)
	}
	return c.write(styles.ReminderStyle.Render("⏰ "+text) + "\n")
}

// Run reads lines until EOF or cancellation and hands each non-empty line to
// handler. Handler errors are reported inline and do not stop the loop.
func (c *Console) Run(ctx context.Context, handler Handler) error {
	if err := c.write(styles.HintStyle.Render("Type a button label or free text. /cancel aborts, Ctrl-D quits.") + "\n"); err != nil {
		return err
	}

	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if err := handler(ctx, c.sessionID, line); err != nil {
			if werr := c.write(styles.HintStyle.Render("error: "+err.Error()) + "\n"); werr != nil {
				return werr
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func (c *Console) write(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.out, s)
	return err
}

// RenderKeyboard draws button rows as bordered labels. Returns "" for no rows.
func RenderKeyboard(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		buttons := make([]string, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, styles.ButtonStyle.Render(label))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
