// Main entry point for the webserver
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"webserver/internal/common"
	"webserver/internal/config"
	"webserver/internal/httpserver"
	"webserver/internal/logging"
	"webserver/internal/markdown"
	"webserver/internal/scaffold"
	"webserver/internal/scss"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	// Parse command line flags
	flags, err := config.ParseFlags(filepath.Base(args[0]), args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	level, ok := flags.Level()
	log := logging.New(level, os.Stderr)
	if !ok {
		log.Warn().Str("value", flags.Verbosity).Msg("invalid verbosity level, using the default")
	}

	// First run: write the default configuration
	if _, err := scaffold.Config(flags.ConfigPath, log); err != nil {
		log.Error().Err(err).Msg("unable to create the configuration file")
		return 1
	}

	cfg, err := config.Resolve(flags)
	if err != nil {
		log.Error().Err(err).Msg("unable to load the configuration")
		return 1
	}

	root := cfg.ContentRoot()
	if err := scaffold.Content(root, log); err != nil {
		log.Error().Err(err).Str("www", root).Msg("unable to prepare the content directory")
		return 1
	}

	server := newServer(cfg, root, log)

	info := common.GetInfo()
	log.Info().
		Object("host", info).
		Str("address", cfg.Server.Address).
		Int("threads", cfg.Server.Threads).
		Str("www", root).
		Msg("starting webserver")

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server failed")
		server.Shutdown()
		return 1
	}

	log.Info().Dur("uptime", info.Uptime()).Msg("shutdown complete")
	return 0
}

// newServer wires the content store, renderers and routes into a server
func newServer(cfg config.Config, root string, log zerolog.Logger) *httpserver.Server {
	store := common.NewStore(root)

	pages := markdown.New(markdown.Options{
		SiteTitle:   cfg.Server.Title,
		Lang:        cfg.Server.Lang,
		Stylesheets: cfg.Markdown.Stylesheets,
		Metadata:    loadMetadata(store, cfg.Markdown.Metadata, log),
	})
	styles := scss.NewCompiler(filepath.Join(root, "style"))

	mux := httpserver.NewMux(httpserver.DefaultRoutes(store, pages, styles)...)
	dispatcher := httpserver.NewDispatcher(mux, store, pages, cfg.Server.Page404Path, log)
	log.Debug().Str("www", store.Root()).Int("routes", mux.Len()).Msg("routes ready")

	return httpserver.NewServer(httpserver.OptionsFromConfig(cfg), dispatcher, log)
}

// loadMetadata reads the optional page metadata file. Problems are logged
// and leave the pages without metadata.
func loadMetadata(store *common.Store, name string, log zerolog.Logger) *markdown.Metadata {
	if name == "" {
		return nil
	}

	data, err := store.ReadText(name)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			log.Debug().Str("file", name).Msg("no page metadata")
		} else {
			log.Warn().Err(err).Str("file", name).Msg("unable to read page metadata")
		}
		return nil
	}

	meta, err := markdown.ParseMetadata(data)
	if err != nil {
		log.Warn().Err(err).Str("file", name).Msg("unable to parse page metadata")
		return nil
	}
	return meta
}
