package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/amirbrooks/tasker-assistant/internal/chat"
	"github.com/amirbrooks/tasker-assistant/internal/store"
)

var (
	promptColor = color.New(color.FgCyan, color.Bold)
	replyColor  = color.New(color.FgGreen)
	noticeColor = color.New(color.FgYellow)
)

func (a *app) chatCmd() *cobra.Command {
	var mode string
	var watch bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive session; /mode toggles chat and agent, /status shows counts, /quit exits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("mode") {
				mode = a.cfg.Chat.Mode
			}
			m, err := chat.ParseMode(mode)
			if err != nil {
				return usageErr("%w", err)
			}
			if !cmd.Flags().Changed("watch") {
				watch = a.cfg.Watch
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if watch {
				if a.ws == nil {
					return usageErr("--watch requires the fs store")
				}
				events, err := a.ws.Watch(ctx, a.logger)
				if err != nil {
					return internalErr(err)
				}
				go a.signal.Follow(ctx, events)
			}

			opts := []chat.SessionOption{
				chat.WithMode(m),
				chat.WithContextStore(a.store),
				chat.WithLogger(a.logger),
			}
			if a.cfg.Chat.Endpoint != "" {
				opts = append(opts, chat.WithResponder(chat.NewHTTPResponder(a.cfg.Chat.Endpoint, a.cfg.Chat.Timeout)))
			}
			session := chat.NewSession(a.interpreter(), opts...)

			view := newStatusView(a.store)
			go view.follow(ctx, a.signal.Subscribe(ctx))

			return repl(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), session, view, a.signal.Key)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "agent", "Starting mode: agent or chat")
	cmd.Flags().BoolVar(&watch, "watch", false, "Refresh views when store files change on disk")
	return cmd
}

func repl(ctx context.Context, in io.Reader, out io.Writer, s *chat.Session, view *statusView, key func() uint64) error {
	fmt.Fprintln(out, "Type a command such as \"list tasks\", or /mode, /status, /quit.")
	scanner := bufio.NewScanner(in)
	for {
		promptColor.Fprintf(out, "%s> ", s.Mode())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/mode":
			noticeColor.Fprintf(out, "Switched to %s mode.\n", s.ToggleMode())
			continue
		case "/status":
			view.render(ctx, out, key())
			continue
		}
		replyColor.Fprintln(out, s.Send(ctx, line))
	}
}

// statusView is the REPL's one dependent view: collection counts re-fetched
// whenever the refresh key moves.
type statusView struct {
	mu     sync.Mutex
	store  store.Store
	key    uint64
	loaded bool
	counts map[store.Kind]int
	err    error
}

func newStatusView(st store.Store) *statusView {
	return &statusView{store: st}
}

func (v *statusView) follow(ctx context.Context, keys <-chan uint64) {
	for key := range keys {
		v.reload(ctx, key)
	}
}

func (v *statusView) reload(ctx context.Context, key uint64) {
	counts := make(map[store.Kind]int, len(store.Kinds))
	var err error
	for _, k := range store.Kinds {
		items, lerr := v.store.List(ctx, k)
		if lerr != nil {
			err = lerr
			break
		}
		counts[k] = len(items)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.loaded && key < v.key {
		return
	}
	v.key, v.loaded, v.counts, v.err = key, true, counts, err
}

// render prints the counts, re-fetching first if they predate key.
func (v *statusView) render(ctx context.Context, out io.Writer, key uint64) {
	v.mu.Lock()
	stale := !v.loaded || v.key < key
	v.mu.Unlock()
	if stale {
		v.reload(ctx, key)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err != nil {
		noticeColor.Fprintf(out, "Could not load status: %v\n", v.err)
		return
	}
	parts := make([]string, 0, len(store.Kinds))
	for _, k := range store.Kinds {
		parts = append(parts, fmt.Sprintf("%s: %d", k.Plural(), v.counts[k]))
	}
	fmt.Fprintf(out, "%s (refresh #%d)\n", strings.Join(parts, ", "), v.key)
}
