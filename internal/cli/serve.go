package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MJE43/powerball-superposition/internal/api"
	"github.com/MJE43/powerball-superposition/internal/events"
	"github.com/MJE43/powerball-superposition/internal/secrets"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the picker HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	db, err := a.openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	analyzer, err := a.newAnalyzer()
	if err != nil {
		return err
	}

	var publisher events.Publisher = events.Nop{}
	if url := a.cfg.Events.NATSURL; url != "" {
		em, err := events.NewEmitter(url, a.cfg.Events.Subject)
		if err != nil {
			return err
		}
		defer em.Close()
		publisher = em
		a.logger.Info("publishing events", "nats_url", url, "subject", a.cfg.Events.Subject)
	}

	token, err := a.resolveToken()
	if err != nil {
		return err
	}
	primary, err := a.primarySource("")
	if err != nil {
		return err
	}

	srv := api.NewServer(api.Options{
		Engine:         a.newEngine(primary),
		Analyzer:       analyzer,
		DB:             db,
		Publisher:      publisher,
		Defaults:       a.defaults(),
		Token:          token,
		RequestTimeout: a.cfg.Server.RequestTimeout,
		AnalysisTop:    a.cfg.Analysis.Top,
		Logger:         a.logger,
	})

	httpSrv := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", httpSrv.Addr, "version", api.EngineVersion)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// resolveToken prefers the configured token and falls back to the keyring.
func (a *app) resolveToken() (string, error) {
	if a.cfg.Server.Token != "" {
		return a.cfg.Server.Token, nil
	}
	token, err := a.tokenStore().Get()
	switch {
	case errors.Is(err, secrets.ErrNoToken):
		a.logger.Warn("no API token configured, mutating routes are open")
		return "", nil
	case err != nil:
		return "", err
	}
	return token, nil
}
