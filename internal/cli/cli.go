package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amirbrooks/tasker-assistant/internal/command"
	"github.com/amirbrooks/tasker-assistant/internal/config"
	"github.com/amirbrooks/tasker-assistant/internal/refresh"
	"github.com/amirbrooks/tasker-assistant/internal/store"
)

// Exit codes
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitInternal = 10
)

type GlobalFlags struct {
	Root       string
	Store      string
	ConfigPath string
	Verbose    bool
}

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErr(format string, args ...any) error {
	return &exitError{code: ExitUsage, err: fmt.Errorf(format, args...)}
}

func internalErr(err error) error {
	return &exitError{code: ExitInternal, err: err}
}

// app is the state shared by every subcommand once configuration is resolved.
type app struct {
	gf     GlobalFlags
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfg    config.Config
	logger *slog.Logger
	store  store.Store
	ws     *store.Workspace // nil for the memory store
	signal *refresh.Signal
}

func Run(args []string) int {
	return run(args, os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, in io.Reader, out, errOut io.Writer) int {
	a := &app{in: in, out: out, errOut: errOut, signal: refresh.New()}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(context.Background())
	if err == nil {
		return ExitOK
	}
	fmt.Fprintln(errOut, "assistant:", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Flag and argument errors raised by cobra itself.
	return ExitUsage
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "assistant",
		Short: "Chat-driven manager for tasks, projects, notes and ideas",
		Long: `assistant keeps tasks, projects, notes and ideas as Markdown files and
lets you manage them with plain sentences such as "create task Buy milk".`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.gf.Root, "root", "", "Store root (default: ~/.assistant or ASSISTANT_ROOT)")
	pf.StringVar(&a.gf.Store, "store", "", "Store backend: fs or memory")
	pf.StringVar(&a.gf.ConfigPath, "config", "", "Config file (default: .assistant.yaml in ./ or $HOME)")
	pf.BoolVarP(&a.gf.Verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(a.initCmd(), a.doCmd(), a.chatCmd(), a.configCmd(), a.exportCmd())
	return root
}

// setup resolves configuration, installs the logger and opens the store.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	v := config.New(a.gf.ConfigPath)
	pf := cmd.Root().PersistentFlags()
	if err := v.BindPFlag("root", pf.Lookup("root")); err != nil {
		return internalErr(err)
	}
	if err := v.BindPFlag("store", pf.Lookup("store")); err != nil {
		return internalErr(err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return usageErr("%w", err)
	}
	a.cfg = cfg

	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	if a.gf.Verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	switch cfg.Store {
	case config.StoreMemory:
		a.store = store.NewMemory()
	default:
		ws, err := store.Open(cfg.Root)
		if err != nil {
			return internalErr(err)
		}
		a.ws, a.store = ws, ws
	}
	a.logger.Debug("cli: store ready", "backend", cfg.Store, "root", cfg.Root, "config", cfg.File)
	return nil
}

func (a *app) interpreter() *command.Interpreter {
	return command.New(a.store,
		command.WithRefresh(func() { a.signal.Trigger() }),
		command.WithLogger(a.logger),
	)
}

func (a *app) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the store directories and config.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.ws == nil {
				return usageErr("init requires the %s store", config.StoreFS)
			}
			if err := a.ws.Init(); err != nil {
				return internalErr(fmt.Errorf("init: %w", err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Initialized assistant store at:", a.ws.Root)
			return nil
		},
	}
}

func (a *app) doCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "do <command words...>",
		Short: "Interpret one command and print the reply",
		Example: `  assistant do create task Buy milk
  assistant do update task milk to Buy oat milk
  assistant do list tasks`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := a.interpreter().Interpret(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return internalErr(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}
	// Words after the first positional belong to the sentence, not to flags.
	cmd.Flags().SetInterspersed(false)
	return cmd
}
