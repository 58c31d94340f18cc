package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/api"
	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/database"
	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/handler"
	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/loader"
	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/log"
	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/renovation"
	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/repository"
	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "starts the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

// openService wires storage, loader and cache into a service
func (a *app) openService() (*service.RenovationService, *sql.DB, error) {
	db, err := database.Open(database.Config{Path: a.cfg.DBPath}, log.Component(a.logger, "database"))
	if err != nil {
		return nil, nil, err
	}

	fetcher := loader.New(loader.Config{
		SegmentsURL: a.cfg.SegmentsURL,
		StationsURL: a.cfg.StationsURL,
		Timeout:     a.cfg.HTTPTimeout,
	}, log.Component(a.logger, "loader"))

	opts := renovation.DefaultOptions()
	opts.ReferenceYear = a.cfg.ReferenceYear
	opts.WindowStart = a.cfg.WindowStart
	opts.WindowEnd = a.cfg.WindowEnd
	opts.WindowSize = a.cfg.WindowSize

	svc := service.NewRenovationService(
		repository.NewDatasetRepository(db, a.cfg.KeepSnapshots),
		fetcher,
		opts,
		log.Component(a.logger, "service"),
	)
	return svc, db, nil
}

func (a *app) serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.DefaultSecret() && a.cfg.AllowDefault {
		a.logger.Warn("jwt secret left at its default, set RV_JWT_SECRET")
	}

	svc, db, err := a.openService()
	if err != nil {
		return err
	}
	defer db.Close()

	// the API answers 503 until a snapshot is live
	if err := svc.Warmup(ctx, a.cfg.AutoImport); err != nil {
		a.logger.Warn("no dataset loaded at startup", zap.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.SetupRouter(ctx, a.cfg, handler.NewRenovationHandler(svc), log.Component(a.logger, "http"))
	srv := &http.Server{
		Addr:              a.cfg.Port,
		Handler:           api.WithCORS(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", zap.String("addr", a.cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
