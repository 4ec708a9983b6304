package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"picturebook-server/internal/client"
	"picturebook-server/internal/config"
	"picturebook-server/internal/session"
	"picturebook-server/internal/shelf"
	sharedLogger "picturebook-server/shared/logger"
)

// app общее состояние команд: конфигурация, логгер и открытая полка.
type app struct {
	envFile string
	flags   struct {
		apiURL       string
		shelfBackend string
		shelfFile    string
		logLevel     string
	}

	cfg    *config.ClientConfig
	logger *zap.Logger
	shelf  *shelf.Handle
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "bookctl",
		Short:         "Make bilingual picture books",
		Long:          "bookctl creates Japanese/English picture books with furigana through the picturebook server and keeps them on a local bookshelf.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.envFile, "env-file", ".env", "optional .env file with BOOKCTL_* variables")
	pf.StringVar(&a.flags.apiURL, "api-url", "", "picturebook server URL (BOOKCTL_API_URL)")
	pf.StringVar(&a.flags.shelfBackend, "shelf", "", "bookshelf backend: file, redis or postgres (BOOKCTL_SHELF_BACKEND)")
	pf.StringVar(&a.flags.shelfFile, "shelf-file", "", "bookshelf file for the file backend (BOOKCTL_SHELF_FILE)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level (BOOKCTL_LOG_LEVEL)")

	root.AddCommand(
		newCreateCmd(a),
		newReadCmd(a),
		newShelfCmd(a),
		newExportCmd(a),
		newCatalogCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.LoadClientConfig(a.envFile)
	if err != nil {
		return err
	}
	if a.flags.apiURL != "" {
		cfg.APIURL = a.flags.apiURL
	}
	if a.flags.shelfBackend != "" {
		cfg.ShelfBackend = a.flags.shelfBackend
	}
	if a.flags.shelfFile != "" {
		cfg.ShelfFile = a.flags.shelfFile
	}
	if a.flags.logLevel != "" {
		cfg.LogLevel = a.flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, err = sharedLogger.New(sharedLogger.Config{
		Level:      cfg.LogLevel,
		Encoding:   "console",
		OutputPath: "stderr",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.shelf, err = shelf.Open(cmd.Context(), cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to open bookshelf: %w", err)
	}
	a.logger.Debug("Bookshelf opened", zap.String("backend", cfg.ShelfBackend))
	return nil
}

func (a *app) close() error {
	var err error
	if a.shelf != nil {
		err = multierr.Append(err, a.shelf.Close())
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return err
}

func (a *app) generator() *client.GeneratorClient {
	return client.New(a.cfg.APIURL, a.cfg.APITimeout, a.logger)
}

func (a *app) controller(ctx context.Context, autoShelve bool) *session.Controller {
	return session.New(ctx, a.generator(), a.shelf.Store, session.Options{AutoShelve: autoShelve}, a.logger)
}
