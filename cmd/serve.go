package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/oogunniyi/portfolio/internal/config"
	"github.com/oogunniyi/portfolio/internal/contact"
	"github.com/oogunniyi/portfolio/internal/content"
	"github.com/oogunniyi/portfolio/internal/session"
	"github.com/oogunniyi/portfolio/internal/store"
	"github.com/oogunniyi/portfolio/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portfolio web server",
	Long: `Start the HTTP server for the portfolio page.

Page sessions idle for longer than session_idle are swept every minute.
When database_path is set, page views are counted with hashed IPs, contact
messages are archived, and records older than 12 months are pruned daily.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Port = port
	}
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := slog.Default()

	catalogue, err := content.Default()
	if err != nil {
		return err
	}

	var db *store.DB
	var archive contact.Archive
	if cfg.DatabasePath != "" {
		db, err = store.Open(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		archive = db
	}

	pages := session.NewRegistry(content.Sections(), cfg.MaxPages)
	srv, err := web.New(web.Options{
		Catalogue: catalogue,
		Pages:     pages,
		Submitter: contact.NewSubmitter(newRelay(cfg), archive, logger),
		DB:        db,
		ImagesDir: cfg.ImagesDir,
		Admin:     cfg.Admin,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", httpServer.Addr, "relay", cfg.Relay.Provider, "version", version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", httpServer.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return pages.Run(ctx, time.Minute, cfg.SessionIdle)
	})
	if db != nil {
		g.Go(func() error {
			return pruneDaily(ctx, db, logger)
		})
	}
	return g.Wait()
}

func newRelay(cfg *config.Config) contact.Relay {
	if cfg.Relay.Provider == config.RelaySMTP {
		return contact.NewSMTPRelay(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.To)
	}
	return contact.NewEmailJSRelay(cfg.Relay.Endpoint, cfg.Relay.ServiceID, cfg.Relay.TemplateID, cfg.Relay.PublicKey)
}

// pruneDaily removes expired visitor records now and then once a day.
func pruneDaily(ctx context.Context, db *store.DB, logger *slog.Logger) error {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		if n, err := db.Prune(ctx); err != nil {
			logger.Warn("privacy cleanup", "error", err)
		} else if n > 0 {
			logger.Info("privacy cleanup", "removed", n)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
