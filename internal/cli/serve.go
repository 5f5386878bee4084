package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"

	"github.com/roach88/menukit/internal/discord"
	"github.com/roach88/menukit/internal/menu"
	"github.com/roach88/menukit/internal/store"
)

// TokenEnv is the environment variable serve reads the bot token from.
const TokenEnv = "MENUKIT_TOKEN"

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Token    string
	Guild    string
	Command  string
	Database string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the menus to Discord",
		Long: `Connect to Discord as a bot and serve the registered menus.

A slash command opens any menu by path; every click and modal
submission after that is answered from the state carried in the
message's component identifiers. With a trace database every
dispatch is recorded for "menukit trace".

The bot token is read from --token or $` + TokenEnv + `.

Examples:
  MENUKIT_TOKEN=... menukit serve
  menukit serve --guild 123456789 --db ./menukit.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Token, "token", "", "bot token (defaults to $"+TokenEnv+")")
	cmd.Flags().StringVar(&opts.Guild, "guild", "", "register the slash command in one guild only")
	cmd.Flags().StringVar(&opts.Command, "command", discord.DefaultCommand, "name of the slash command that opens menus")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record dispatches in this SQLite database (defaults to trace.db from the config)")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions, cmd *cobra.Command) error {
	log := opts.Logger(cmd.ErrOrStderr())

	token := opts.Token
	if token == "" {
		token = os.Getenv(TokenEnv)
	}
	if token == "" {
		return NewExitError(ExitCommandError, fmt.Sprintf("no bot token: pass --token or set %s", TokenEnv))
	}

	reg, err := opts.Registry()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to register menus", err)
	}

	dispatcherOpts := []menu.DispatcherOption{menu.WithLogger(log)}
	dbPath := opts.Database
	if dbPath == "" {
		dbPath = opts.Settings().Trace.DB
	}
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open trace database", err)
		}
		defer st.Close()
		traceOpts, err := tracing(ctx, st)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read trace database", err)
		}
		dispatcherOpts = append(dispatcherOpts, traceOpts...)
		log.Info("recording dispatches", "db", dbPath)
	}

	adapter := discord.New(menu.NewDispatcher(reg, dispatcherOpts...),
		discord.WithLogger(log),
		discord.WithCommand(opts.Command))

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create session", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	session.AddHandler(adapter.Handler())

	if err := session.Open(); err != nil {
		return WrapExitError(ExitCommandError, "failed to connect to Discord", err)
	}
	defer session.Close()

	appID := session.State.User.ID
	created, err := session.ApplicationCommandCreate(appID, opts.Guild, adapter.Command(reg.Paths()))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to register slash command", err)
	}
	log.Info("serving menus", "menus", len(reg.Paths()), "command", created.Name, "guild", opts.Guild)

	<-ctx.Done()

	if err := session.ApplicationCommandDelete(appID, opts.Guild, created.ID); err != nil {
		log.Warn("failed to remove slash command", "error", err)
	}
	log.Info("shutting down")
	return nil
}

// tracing records dispatches into st, continuing its seq numbering so
// records from separate runs never interleave.
func tracing(ctx context.Context, st *store.Store) ([]menu.DispatcherOption, error) {
	seq, err := st.MaxSeq(ctx)
	if err != nil {
		return nil, err
	}
	return []menu.DispatcherOption{
		menu.WithTracer(st),
		menu.WithClock(menu.NewClockAt(seq)),
	}, nil
}
