package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/wedding-site/images/badgerstore"
	"github.com/jrsteele09/wedding-site/internal/config"
	"github.com/jrsteele09/wedding-site/internal/database/sqlite"
	"github.com/jrsteele09/wedding-site/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(execute(newRootCmd()))
}

// execute runs cmd and reports a failure on its error stream.
func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:           "wedding-site",
		Short:         "Wedding site API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file read before the environment")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(envFile)
		},
	}
	root.AddCommand(serveCmd)
	root.AddCommand(newTokenCmd(&envFile))
	return root
}

func serve(envFile string) error {
	c, err := config.Load(envFile)
	if err != nil {
		return err
	}
	setupLogging(c)
	displayAppname(c.GetAppName())

	if err := c.Validate(); err != nil {
		log.Warn().Err(err).Msg("Configuration incomplete; affected endpoints will answer 500")
	}

	for {
		err := run(c)
		if err == nil {
			break
		}
		log.Err(err).Msg("Error running server")
		if !errors.Is(err, errPanic) {
			return err
		}
		time.Sleep(1 * time.Second)
	}
	log.Info().Msg("Server stopped")
	return nil
}

var errPanic = errors.New("panic recovered")

func run(c config.Config) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errPanic
		}
	}()

	if err := os.MkdirAll(c.GetDataFolder(), 0o755); err != nil {
		return fmt.Errorf("create data folder: %w", err)
	}

	store, err := sqlite.Open(c.GetDatabasePath())
	if err != nil {
		return err
	}
	defer store.Close()

	imageStore, err := badgerstore.Open(c.GetImagesPath())
	if err != nil {
		return err
	}
	defer imageStore.Close()

	srv, err := server.New(c, server.Repos{
		SiteConfig: store.SiteConfig(),
		RSVPs:      store.RSVPs(),
		Images:     imageStore,
		Audit:      store.Audit(),
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(httpServer) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func setupLogging(c config.EnvConfig) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || c.GetLogLevel() == "" {
		level = zerolog.InfoLevel
		if c.GetEnv() == "DEV" {
			level = zerolog.DebugLevel
		}
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	if appname == "" {
		return
	}
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
