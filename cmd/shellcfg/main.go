package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kevinzwang/shellcfg/internal/config"
	"github.com/kevinzwang/shellcfg/internal/database"
	"github.com/kevinzwang/shellcfg/internal/input"
	"github.com/kevinzwang/shellcfg/internal/keymap"
	"github.com/kevinzwang/shellcfg/internal/logging"
	"github.com/kevinzwang/shellcfg/internal/store"
	"github.com/kevinzwang/shellcfg/internal/terminal"
	"github.com/kevinzwang/shellcfg/internal/theme"
	"github.com/kevinzwang/shellcfg/internal/tui"
	"github.com/kevinzwang/shellcfg/internal/view"
)

// Version is set via ldflags at build time
var Version = "dev"

type options struct {
	configPath string
	debug      bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	var startView string

	root := &cobra.Command{
		Use:   "shellcfg",
		Short: "Manage PATH entries, aliases, constants, completions and plugins",
		Long: `shellcfg keeps your shell configuration in one place. Run it without
arguments for the interactive interface, or use the subcommands from scripts.`,
		Example: `  # Browse and edit everything interactively
  shellcfg

  # Add a PATH entry and an alias
  shellcfg add path '$HOME/.cargo/bin'
  shellcfg add aliases 'll=ls -la'

  # Write the generated snippet for .zshrc
  shellcfg export > ~/.shellcfg/init.zsh`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts, startView)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default ~/.shellcfg/config.toml)")
	root.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "Enable debug logging")
	root.Flags().StringVar(&startView, "view", "", "View to open first")

	root.AddCommand(
		tuiCmd(opts),
		listCmd(opts),
		addCmd(opts),
		removeCmd(opts),
		toggleCmd(opts),
		viewsCmd(opts),
		exportCmd(opts),
	)
	return root
}

func tuiCmd(opts *options) *cobra.Command {
	var startView string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts, startView)
		},
	}
	cmd.Flags().StringVar(&startView, "view", "", "View to open first")
	return cmd
}

// env is what every command needs: configuration, logger and the item
// service over an open database.
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *database.DB
	service  *store.Service
	closeLog func() error
}

// openEnv loads the config and opens the database. In TUI mode the log goes
// to the log file because the screen owns stdout and stderr.
func openEnv(opts *options, tuiMode bool) (*env, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if opts.debug {
		level = slog.LevelDebug
	}

	e := &env{cfg: cfg, closeLog: func() error { return nil }}
	if tuiMode {
		logger, closeLog, err := logging.OpenFile(cfg.LogFile, level)
		if err != nil {
			return nil, err
		}
		e.logger = logger
		e.closeLog = closeLog
	} else {
		e.logger = logging.NewCLI(os.Stderr, level)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		e.closeLog()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	e.db = db
	e.service = store.NewService(db)

	e.logger.Debug("environment ready", "config", opts.configPath, "db", cfg.DBPath)
	return e, nil
}

func (e *env) Close() {
	if err := e.db.Close(); err != nil {
		e.logger.Warn("failed to close database", "error", err)
	}
	_ = e.closeLog()
}

func runTUI(ctx context.Context, opts *options, startView string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the interactive interface needs a terminal; use the subcommands instead")
	}

	e, err := openEnv(opts, true)
	if err != nil {
		return err
	}
	defer e.Close()

	cfg := e.cfg
	palette, err := theme.DefaultPalette().WithOverrides(cfg.Theme)
	if err != nil {
		return fmt.Errorf("invalid theme: %w", err)
	}
	profile, err := theme.ParseProfile(cfg.ColorProfile, os.Stdout)
	if err != nil {
		return err
	}

	keys := keymap.Default()
	if err := keys.Override(cfg.Keys); err != nil {
		return fmt.Errorf("invalid key bindings: %w", err)
	}

	initial := view.ID(cfg.InitialView)
	if startView != "" {
		initial = view.ID(startView)
	}

	app, err := tui.New(tui.Options{
		Context:     ctx,
		Terminal:    terminal.New(os.Stdin, os.Stdout),
		Events:      input.NewPoller(input.NewFDSource(int(os.Stdin.Fd())), cfg.PollTimeout()),
		Bridge:      e.service,
		Views:       store.Views(),
		InitialView: initial,
		Theme:       theme.New(palette, profile),
		Keys:        &keys,
		Logger:      e.logger,
	})
	if err != nil {
		return err
	}

	// Run restores the terminal itself; this covers anything it missed
	defer func() {
		if r := recover(); r != nil {
			terminal.EmergencyReset(os.Stdout)
			panic(r)
		}
	}()

	if err := app.Run(); err != nil {
		e.logger.Error("tui exited with error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
