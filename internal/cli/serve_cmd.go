// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeranaias/parley/internal/config"
	"github.com/jeranaias/parley/internal/share"
)

// shutdownTimeout bounds how long in-flight requests get to finish after
// an interrupt before the listener is torn down.
const shutdownTimeout = 10 * time.Second

// HandleServeCommand runs the share snapshot server until interrupted.
// The server binds to localhost; records go through the same storage
// backend the rest of parley uses.
func HandleServeCommand(args Args) error {
	cfg := config.Global()
	log := BuildLogger(cfg).With("serve")

	backend, err := OpenBackend(cfg)
	if err != nil {
		return err
	}
	defer CloseBackend(backend)
	records := share.NewLocalRecordStore(backend, log)

	srv := share.NewServer(cfg.Share.Port, records, log)
	if cfg.Share.AdminTOTPSecret != "" {
		srv = srv.WithAdminTOTP(cfg.Share.AdminTOTPSecret)
	}

	if !args.Quiet {
		printServeBanner(cfg)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("share server: %w", err)
		}
		return nil

	case <-sigChan:
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		// Start returns ErrServerClosed (mapped to nil) once shutdown
		// completes; drain it so the goroutine exits.
		<-errCh
		if !args.Quiet {
			fmt.Println(DimStyle.Render("Server stopped."))
		}
		return nil
	}
}

func printServeBanner(cfg *config.Config) {
	port := cfg.Share.Port
	if port == 0 {
		port = share.DefaultPort
	}
	backend := cfg.Storage.Backend
	if backend == "" {
		backend = "file"
	}
	admin := "disabled (no TOTP secret configured)"
	if cfg.Share.AdminTOTPSecret != "" {
		admin = "enabled (TOTP)"
	}

	fmt.Println(TitleStyle.Render("parley share server"))
	fmt.Println(RenderSeparator(48))
	fmt.Printf("%s http://127.0.0.1:%d\n", LabelStyle.Render("Listening:"), port)
	fmt.Printf("%s %s\n", LabelStyle.Render("Records:"), ValueStyle.Render(backend))
	fmt.Printf("%s %s\n", LabelStyle.Render("Admin:"), ValueStyle.Render(admin))
	fmt.Println(DimStyle.Render("Endpoints: POST /v1/shares, GET /v1/shares/{id}, POST /v1/shares/{id}/views,"))
	fmt.Println(DimStyle.Render("           DELETE /v1/shares/{id}, GET /v1/stats, GET /healthz"))
	fmt.Println(DimStyle.Render("Ctrl+C to stop."))
	fmt.Println()
}
