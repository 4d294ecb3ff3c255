package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lazypower/flashdeck/internal/server"
	"github.com/lazypower/flashdeck/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if n, err := db.PurgeExpiredSessions(ctx, time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: purge sessions: %v\n", err)
	} else if n > 0 {
		fmt.Fprintf(os.Stderr, "  purged %d expired sessions\n", n)
	}

	eng := newEngine(db, cfg)
	srv := server.New(db, eng, VersionString(), server.Options{
		CookieName:   cfg.Auth.CookieName,
		SessionTTL:   cfg.SessionTTL(),
		SecureCookie: cfg.Auth.SecureCookie,
		BcryptCost:   cfg.Auth.BcryptCost,
		CacheSize:    cfg.Auth.SessionCacheSize,
	})
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fmt.Fprintf(os.Stderr, "flashdeck serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", cfg.Database.Path)
		fmt.Fprintf(os.Stderr, "  streak windows: continue %s, expire %s\n", eng.Policy.Continuation, eng.Policy.Expiry)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		fmt.Fprintln(os.Stderr, "\nshutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
