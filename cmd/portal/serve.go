package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-job-portal/internal/config"
	"github.com/jrsteele09/go-job-portal/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func serveCmd(c config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the edge gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(c)
		},
	}
}

func runServer(c config.Config) error {
	displayAppname(c.GetAppName())

	handler, err := server.New(c)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(srv) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	if err := shutdown(srv); err != nil {
		return err
	}
	log.Info().Msg("Server stopped")
	return nil
}

func listenAndServe(srv *http.Server) error {
	log.Info().Str("addr", srv.Addr).Msg("Server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
