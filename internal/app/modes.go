package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/saurrx/priced/internal/server"
	"github.com/saurrx/priced/internal/server/handler"
	"github.com/saurrx/priced/internal/server/ws"
	"github.com/saurrx/priced/internal/service"
)

// ServeMode starts the HTTP API, the reload watcher, and the live match feed,
// then blocks until the context is cancelled.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)

	var hub *ws.Hub
	if deps.SignalBus != nil {
		hub = ws.NewHub(deps.SignalBus, service.MatchFeedChannel, a.logger)
		g.Go(func() error {
			return hub.Run(ctx)
		})

		g.Go(func() error {
			return deps.CatalogService.WatchReloads(ctx, deps.SignalBus)
		})
	}

	handlers := server.Handlers{
		Health: handler.NewHealthHandler(deps.MatchService),
		Match:  handler.NewMatchHandler(deps.MatchService, a.logger),
		Reload: handler.NewReloadHandler(deps.CatalogService, deps.SignalBus, a.logger),
	}
	if deps.AccessCodes != nil {
		handlers.Access = handler.NewAccessHandler(deps.AccessCodes, a.logger)
	}

	srv := server.NewServer(server.Config{
		Port:           a.cfg.Server.Port,
		CORSOrigins:    a.cfg.Server.CORSOrigins,
		AdminKey:       a.cfg.Server.AdminKey,
		AdminKeyDigest: a.cfg.Server.AdminKeyDigest,
		RateLimit:      a.cfg.Server.RateLimit,
		RateWindow:     a.cfg.Server.RateWindow.Duration,
	}, handlers, hub, deps.AccessCodes, deps.RateLimiter, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	return g.Wait()
}

// EvalMode runs the labeled threshold dataset through the full matching
// pipeline once, prints the report as JSON on stdout, and exits.
func (a *App) EvalMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting eval mode",
		slog.String("dataset", a.cfg.Eval.DatasetPath),
	)

	ds, err := service.LoadEvalDataset(a.cfg.Eval.DatasetPath)
	if err != nil {
		return fmt.Errorf("eval mode: %w", err)
	}

	report, err := deps.MatchService.Evaluate(ctx, ds)
	if err != nil {
		return fmt.Errorf("eval mode: %w", err)
	}

	a.logger.InfoContext(ctx, "evaluation complete",
		slog.Int("true_positives", report.TruePositives),
		slog.Int("false_negatives", report.FalseNegatives),
		slog.Int("true_negatives", report.TrueNegatives),
		slog.Int("false_positives", report.FalsePositives),
		slog.Float64("f1", report.F1),
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
