// Command socha-client connects to a Software Challenge 2020 game server
// and plays one game of Hive.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fwcd/socha-client-2020/internal/archive"
	"github.com/fwcd/socha-client-2020/internal/client"
	"github.com/fwcd/socha-client-2020/internal/config"
	"github.com/fwcd/socha-client-2020/internal/game"
	"github.com/fwcd/socha-client-2020/internal/health"
	"github.com/fwcd/socha-client-2020/internal/log"
	"github.com/fwcd/socha-client-2020/internal/logic"
	"github.com/fwcd/socha-client-2020/internal/ops"
	"github.com/fwcd/socha-client-2020/internal/protocol"
	"github.com/fwcd/socha-client-2020/internal/telemetry"
	"github.com/fwcd/socha-client-2020/internal/version"
)

type rootFlags struct {
	configPath  string
	host        string
	port        int
	reservation string
	strategy    string
	opsAddr     string
	verbose     bool
}

func main() {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "socha-client",
		Short:         "Software Challenge 2020 Hive client",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags)
		},
	}
	root.Flags().StringVar(&flags.configPath, "config", "", "path to config file (YAML)")
	root.Flags().StringVar(&flags.host, "host", "", "game server host")
	root.Flags().IntVar(&flags.port, "port", 0, "game server port")
	root.Flags().StringVar(&flags.reservation, "reservation", "", "reservation code for a prepared game")
	root.Flags().StringVar(&flags.strategy, "strategy", "", "move selection strategy")
	root.Flags().StringVar(&flags.opsAddr, "ops-addr", "", "address for health and metrics endpoints")
	root.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newGamesCommand())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("socha-client %s (commit: %s, built: %s)\n",
				version.Version, version.Commit, version.Date)
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	log.Configure(log.Config{
		Level:   cfg.LogLevel,
		Service: "socha-client",
		Version: version.Version,
	})
	logger := log.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "socha-client",
		ServiceVersion: version.Version,
		Protocol:       cfg.Telemetry.Protocol,
		Endpoint:       cfg.Telemetry.Endpoint,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Str("event", "telemetry.shutdown_error").Msg("telemetry shutdown failed")
		}
	}()

	strategy, err := logic.New(cfg.Strategy, cfg.Seed, log.WithComponent("logic"))
	if err != nil {
		return err
	}

	var store *archive.Store
	if cfg.ArchivePath != "" {
		store, err = archive.Open(cfg.ArchivePath)
		if err != nil {
			return fmt.Errorf("open game archive: %w", err)
		}
		defer store.Close()
	}

	c := client.New(strategy, client.Options{
		Address:      cfg.Address(),
		Reservation:  cfg.Reservation,
		GameType:     cfg.GameType,
		MoveDeadline: cfg.MoveDeadline.Std(),
		Logger:       log.WithComponent("client"),
	})

	logger.Info().
		Str("event", "main.starting").
		Str("addr", cfg.Address()).
		Str("strategy", strategy.Name()).
		Msg("starting client")

	startedAt := time.Now()
	group, groupCtx := errgroup.WithContext(ctx)

	if cfg.OpsAddr != "" {
		manager := health.NewManager(version.Version)
		manager.Register(health.ConnectionChecker{Connected: c.Connected})
		if store != nil {
			manager.Register(health.ArchiveChecker{Store: store})
		}
		server := ops.NewServer(cfg.OpsAddr, manager)
		group.Go(func() error { return server.Run(groupCtx) })
	}

	group.Go(func() error {
		defer stop() // a finished game also stops the ops server
		return c.Run(groupCtx)
	})

	err = group.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if result, ok := c.Result(); ok {
		finishGame(logger, cfg, strategy.Name(), c, result, startedAt, store)
	}
	return nil
}

// newGamesCommand lists the most recently archived games.
func newGamesCommand() *cobra.Command {
	var configPath string
	var archivePath string
	var limit int

	cmd := &cobra.Command{
		Use:           "games",
		Short:         "List recently archived games",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := archivePath
			if path == "" {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				path = cfg.ArchivePath
			}
			if path == "" {
				return errors.New("no archive configured, set --archive or archivePath")
			}

			store, err := archive.Open(path)
			if err != nil {
				return fmt.Errorf("open game archive: %w", err)
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no archived games")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FINISHED\tCOLOR\tSTRATEGY\tOUTCOME\tCAUSE\tTURNS")
			for _, rec := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
					rec.FinishedAt.Format(time.RFC3339),
					rec.Color, rec.Strategy, rec.Outcome, rec.Cause, rec.Turns)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config file (YAML)")
	cmd.Flags().StringVar(&archivePath, "archive", "", "path to the archive database")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of games to list")
	return cmd
}

func loadConfig(cmd *cobra.Command, flags *rootFlags) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return cfg, err
	}

	// Flags win over everything.
	if cmd.Flags().Changed("host") {
		cfg.Host = flags.host
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = flags.port
	}
	if cmd.Flags().Changed("reservation") {
		cfg.Reservation = flags.reservation
	}
	if cmd.Flags().Changed("strategy") {
		cfg.Strategy = flags.strategy
	}
	if cmd.Flags().Changed("ops-addr") {
		cfg.OpsAddr = flags.opsAddr
	}
	if flags.verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

// finishGame records the result in the archive and exports the replay.
func finishGame(logger zerolog.Logger, cfg config.Config, strategy string, c *client.Client, result protocol.Result, startedAt time.Time, store *archive.Store) {
	color, hasColor := c.Color()
	outcome := "draw"
	if winner, ok := result.Winner(); ok && hasColor {
		if winner == color {
			outcome = "won"
		} else {
			outcome = "lost"
		}
	}
	cause := "UNKNOWN"
	if len(result.Scores) > 0 {
		cause = result.Scores[0].Cause.String()
	}
	turns := 0
	if state := c.State(); state != nil {
		turns = state.Turn
	}

	logger.Info().
		Str("event", "main.game_finished").
		Str("outcome", outcome).
		Str("cause", cause).
		Int("turns", turns).
		Msg("game finished")

	rec := archive.Record{
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Color:      colorName(color, hasColor),
		Strategy:   strategy,
		Outcome:    outcome,
		Cause:      cause,
		Turns:      turns,
	}
	if store != nil {
		saved, err := store.Save(context.Background(), rec)
		if err != nil {
			logger.Error().Err(err).Str("event", "main.archive_error").Msg("failed to archive game")
			return
		}
		rec = saved
	}
	if cfg.ReplayDir != "" {
		id := rec.ID
		if id == "" {
			id = fmt.Sprintf("game-%d", startedAt.Unix())
		}
		path, err := archive.ExportReplay(cfg.ReplayDir, id, c.Transcript())
		if err != nil {
			logger.Error().Err(err).Str("event", "main.replay_error").Msg("failed to export replay")
			return
		}
		logger.Info().Str("event", "main.replay_exported").Str("path", path).Msg("replay exported")
	}
}

func colorName(color game.Color, ok bool) string {
	if !ok {
		return "UNKNOWN"
	}
	return color.String()
}
