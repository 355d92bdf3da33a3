// Package terminal draws the voice chat view on a text terminal and reads
// commands from standard input.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"voice-chat/internal/application"
	"voice-chat/internal/domain"
)

const clearScreen = "\033[H\033[2J"

type Controller interface {
	Subscribe() (<-chan domain.State, func())
	Toggle()
	SubmitText(text string)
}

// UI re-renders on every state change. An empty input line presses the
// button, "q" quits and anything else is sent as typed text.
type UI struct {
	ctrl   Controller
	in     io.Reader
	out    io.Writer
	clear  bool
	logger *slog.Logger
}

func New(ctrl Controller, in io.Reader, out io.Writer, logger *slog.Logger) *UI {
	return &UI{
		ctrl:   ctrl,
		in:     in,
		out:    out,
		clear:  isTerminal(out),
		logger: logger,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Run returns nil when the user quits and ctx.Err() when ctx is done.
func (u *UI) Run(ctx context.Context) error {
	states, unsubscribe := u.ctrl.Subscribe()
	defer unsubscribe()

	lines := make(chan string)
	go u.readLines(ctx, lines)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case state, ok := <-states:
			if !ok {
				return nil
			}
			u.draw(application.Render(state))

		case line, ok := <-lines:
			if !ok {
				// Input closed; keep rendering until shutdown.
				lines = nil
				continue
			}
			switch cmd := strings.TrimSpace(line); {
			case cmd == "":
				u.ctrl.Toggle()
			case strings.EqualFold(cmd, "q"), strings.EqualFold(cmd, "quit"):
				u.logger.Info("quit requested")
				return nil
			default:
				u.ctrl.SubmitText(cmd)
			}
		}
	}
}

func (u *UI) readLines(ctx context.Context, lines chan<- string) {
	defer close(lines)

	scanner := bufio.NewScanner(u.in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil {
		u.logger.Warn("reading input", "error", err)
	}
}

func (u *UI) draw(v application.View) {
	if u.clear {
		io.WriteString(u.out, clearScreen)
	}
	io.WriteString(u.out, Format(v))
}

// Format renders a view as plain text.
func Format(v application.View) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n%s\n\n", v.Title, v.Subtitle)

	button := "[ " + v.Button.Label + " ]"
	switch {
	case v.Button.Disabled:
		button += "  (busy)"
	case v.Button.Listening:
		button += "  press ENTER to stop"
	default:
		button += "  press ENTER to speak, type to send text, q to quit"
	}
	b.WriteString(button + "\n")

	for _, s := range v.Sections {
		b.WriteString("\n")
		switch s.Kind {
		case application.SectionError:
			fmt.Fprintf(&b, "! %s\n", s.Body)
		default:
			fmt.Fprintf(&b, "%s\n  %s\n", s.Title, s.Body)
		}
	}
	b.WriteString("\n")
	return b.String()
}
