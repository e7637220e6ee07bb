package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/priyxstudio/pathway/config"
	"github.com/priyxstudio/pathway/internal/database"
	"github.com/priyxstudio/pathway/pagination"
	"github.com/priyxstudio/pathway/planner"
	"github.com/priyxstudio/pathway/router"
	"github.com/priyxstudio/pathway/system"
)

const shutdownTimeout = 10 * time.Second

var (
	configPath = config.GetDefaultConfigLocation()
	debug      = false
)

var rootCommand = &cobra.Command{
	Use:   "pathway",
	Short: "Runs the API serving learning plans, their modules and tasks.",
	PreRun: func(cmd *cobra.Command, args []string) {
		initConfig()
		initLogging()
	},
	Run: rootCmdRun,
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Prints the current executable version and exits.",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Printf("pathway v%s\n", system.Version)
	},
}

// Execute runs the root command, which serves the API unless a sub-command
// was given.
func Execute() {
	if err := rootCommand.Execute(); err != nil {
		log.WithField("error", err).Fatal("failed to execute command")
	}
}

func init() {
	rootCommand.PersistentFlags().StringVar(&configPath, "config", config.GetDefaultConfigLocation(), "set the location for the configuration file")
	rootCommand.PersistentFlags().BoolVar(&debug, "debug", false, "pass in order to run pathway in debug mode")

	rootCommand.AddCommand(versionCommand)
	rootCommand.AddCommand(&cobra.Command{
		Use:    "serve",
		Short:  "Runs the API; this is what pathway does when no command is given.",
		PreRun: rootCommand.PreRun,
		Run:    rootCmdRun,
	})
	rootCommand.AddCommand(newMigrateCommand())
	rootCommand.AddCommand(newRepairCommand())
	rootCommand.AddCommand(newTokenCommand())
	rootCommand.AddCommand(newConfigureCommand())
}

func rootCmdRun(cmd *cobra.Command, _ []string) {
	log.WithField("version", system.Version).Info("starting pathway")

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.Get()
	if err := database.Initialize(ctx, cfg.Database); err != nil {
		log.WithField("error", err).Fatal("failed to initialize database")
	}
	defer func() {
		if err := database.Close(database.Instance()); err != nil {
			log.WithField("error", err).Warn("failed to close database")
		}
	}()

	svc := planner.NewService(database.Instance(), pagination.Bounds{
		Default: cfg.Pagination.DefaultLimit,
		Max:     cfg.Pagination.MaxLimit,
	})
	if err := serve(ctx, cfg, svc); err != nil {
		log.WithField("error", err).Fatal("failed to serve API")
	}
	log.Info("pathway stopped")
}

// serve runs the HTTP server and the maintenance scheduler until ctx is
// cancelled or one of them fails.
func serve(ctx context.Context, cfg *config.Configuration, svc *planner.Service) error {
	g, ctx := errgroup.WithContext(ctx)

	if cfg.Database.MaintenanceInterval > 0 {
		s, err := database.NewMaintenanceScheduler(ctx, database.Instance(), time.Duration(cfg.Database.MaintenanceInterval)*time.Minute)
		if err != nil {
			return errors.Wrap(err, "cmd/root: failed to configure maintenance")
		}
		s.Start()
		g.Go(func() error {
			<-ctx.Done()
			return s.Shutdown()
		})
	}

	addr := net.JoinHostPort(cfg.Api.Host, strconv.Itoa(cfg.Api.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.Configure(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		log.WithField("address", addr).Info("configuring webserver")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "cmd/root: webserver failed")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down webserver")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// Reads the configuration from the disk and then sets up the global singleton
// with all the configuration values.
func initConfig() {
	if !filepath.IsAbs(configPath) {
		d, err := os.Getwd()
		if err != nil {
			log.WithField("error", err).Fatal("cmd/root: could not determine directory")
		}
		configPath = filepath.Clean(filepath.Join(d, configPath))
	}
	err := config.FromFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			exitWithConfigurationNotice()
		}
		log.WithField("error", err).Fatal("cmd/root: error while reading configuration file")
	}
	if debug && !config.Get().Debug {
		config.SetDebugViaFlag(debug)
	}
}

// Configures the global logger for apex so that all output is written through
// the cli handler.
func initLogging() {
	log.SetHandler(cli.Default)
	log.SetLevel(log.InfoLevel)
	if config.Get().Debug {
		log.SetLevel(log.DebugLevel)
	}
}

// Prints a message to the console and exits when no configuration file could
// be found.
func exitWithConfigurationNotice() {
	fmt.Printf(`
No configuration file could be found at %s.

Create one with "pathway configure --config %s --generate-token" and run
"pathway migrate" before starting the API.

`, configPath, configPath)
	os.Exit(1)
}
