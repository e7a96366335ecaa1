package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"gitlab.com/gitlab-org/static-pipeline/internal/config"
	"gitlab.com/gitlab-org/static-pipeline/internal/errortracking"
	"gitlab.com/gitlab-org/static-pipeline/internal/logging"
	"gitlab.com/gitlab-org/static-pipeline/metrics"
)

// VERSION stores the information about the semantic version of application
var VERSION = "dev"

// REVISION stores the information about the git revision of application
var REVISION = "HEAD"

func initErrorReporting(cfg *config.Config) {
	if cfg.Sentry.DSN == "" {
		return
	}

	err := errortracking.Initialize(cfg.Sentry.DSN, cfg.Sentry.Environment, fmt.Sprintf("%s-%s", VERSION, REVISION))
	if err != nil {
		log.WithError(err).Warn("Failed to initialize error tracking")
	}
}

func appMain() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}

	printVersion(cfg.General.ShowVersion, VERSION)

	if err := logging.ConfigureLogging(cfg.Log.Format, cfg.Log.Verbose); err != nil {
		log.WithError(err).Fatal("Failed to initialize logging")
	}

	log.WithFields(log.Fields{
		"version":  VERSION,
		"revision": REVISION,
	}).Print("Static Pipeline Daemon")

	config.LogConfig(cfg)
	initErrorReporting(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runApp(ctx, cfg); err != nil {
		errortracking.CaptureErrWithStackTrace(err)
		log.WithError(err).Fatal("could not run the daemon")
	}

	log.Info("Daemon stopped")
}

func printVersion(showVersion bool, version string) {
	if showVersion {
		fmt.Fprintf(os.Stdout, "%s\n", version)
		os.Exit(0)
	}
}

func main() {
	log.SetOutput(os.Stderr)

	metrics.MustRegister()

	appMain()
}
