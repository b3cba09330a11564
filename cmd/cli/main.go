package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/weekend-duty/cmd/cli/commands"
	"github.com/jakechorley/weekend-duty/internal/config"
	"github.com/jakechorley/weekend-duty/pkg/core/calendar"
	"github.com/jakechorley/weekend-duty/pkg/core/roster"
	"github.com/jakechorley/weekend-duty/pkg/core/services"
	"github.com/jakechorley/weekend-duty/pkg/db"
	"github.com/jakechorley/weekend-duty/pkg/postgres"
	"github.com/jakechorley/weekend-duty/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	app     = &commands.AppContext{Ctx: context.Background(), Out: os.Stdout}
	closeDB func()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "duty",
		Short: "Weekend Duty - book and resolve weekend on-call duty",
		Long:  `A CLI and API server for booking weekend on-call duty, resolving double bookings by team priority.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Scheduler != nil {
				app.Scheduler.WaitForNotices()
			}
			if closeDB != nil {
				closeDB()
			}
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	// Add persistent environment flag
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs to the console")
	_ = rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.MembersCmd(app))
	rootCmd.AddCommand(commands.BookCmd(app))
	rootCmd.AddCommand(commands.CancelCmd(app))
	rootCmd.AddCommand(commands.ScheduleCmd(app))
	rootCmd.AddCommand(commands.ResolveCmd(app))
	rootCmd.AddCommand(commands.ExportCmd(app))
	rootCmd.AddCommand(commands.PublishCmd(app))
	rootCmd.AddCommand(commands.TicketsCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, store and scheduler
func initApp() error {
	var err error
	app.Env = env

	logOpts := logging.DefaultOptions()
	if verbose {
		logOpts.ConsoleLevel = zap.DebugLevel
	}
	app.Logger, err = logging.InitLogger(env, logOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully", zap.Int("team_size", len(app.Cfg.Team)))

	app.Database, err = openDatabase(app.Ctx, app.Cfg, app.Logger)
	if err != nil {
		return err
	}

	// The store is the source of truth for the team once the config has been synced
	if err := app.Database.SyncTeamMembers(app.Ctx, app.Cfg.TeamMembers()); err != nil {
		return fmt.Errorf("failed to sync team members: %w", err)
	}
	members, err := app.Database.GetTeamMembers(app.Ctx)
	if err != nil {
		return fmt.Errorf("failed to load team members: %w", err)
	}

	loc, err := app.Cfg.Location()
	if err != nil {
		return err
	}
	cal, err := calendar.New(loc, app.Cfg.Blackouts)
	if err != nil {
		return fmt.Errorf("failed to build calendar: %w", err)
	}

	var opts []services.Option
	if app.Cfg.NotifyConflicts {
		gmail, err := app.GmailClient()
		if err != nil {
			return err
		}
		opts = append(opts, services.WithNotifier(services.NewEmailConflictNotifier(gmail)))
	}

	app.Scheduler = services.NewScheduler(app.Database, roster.NewDirectory(members), cal, app.Logger, opts...)
	app.Logger.Debug("Scheduler ready",
		zap.String("timezone", loc.String()),
		zap.Int("blackouts", len(app.Cfg.Blackouts)),
		zap.Bool("notify_conflicts", app.Cfg.NotifyConflicts))

	return nil
}

// openDatabase connects to Postgres and applies migrations, or falls back
// to the in-memory store when no databaseURL is configured
func openDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (db.Database, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("No databaseURL configured, using in-memory store; bookings are lost on exit")
		return db.NewMemoryDB(), nil
	}

	logger.Info("Connecting to database")
	pg, err := postgres.NewDB(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	closeDB = pg.Close

	applied, err := pg.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, name := range applied {
		logger.Info("Applied migration", zap.String("file", name))
	}

	logger.Info("Database initialized successfully")
	return pg, nil
}
