package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"board-client/routes"

	"github.com/spf13/cobra"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the same-origin /api proxy in front of the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.ListenAddr
			}
			return serve(addr, routes.Options{
				BackendURL:     c.cfg.BackendURL,
				AllowedOrigins: c.cfg.AllowedOrigins,
				RateLimit:      c.cfg.RateLimit,
				RateWindow:     time.Minute,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from BOARD_LISTEN_ADDR)")
	return cmd
}

func serve(addr string, opts routes.Options) error {
	handler, stop, err := routes.SetupRoutes(opts)
	if err != nil {
		return err
	}
	defer stop()

	srv := &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    100 * time.Second,
		WriteTimeout:   100 * time.Second,
		MaxHeaderBytes: 7500,
		IdleTimeout:    120 * time.Second,
	}

	// Use a wait group to manage graceful shutdown
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()
	log.Printf("Proxy started on %s, forwarding /api to %s", addr, opts.BackendURL)

	// Wait for interrupt signal to gracefully shut down the server
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	wg.Wait()
	log.Println("Server exited gracefully")
	return nil
}
