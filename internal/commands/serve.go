package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/api"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/buildinfo"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/logger"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/metrics"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/pipeline"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/report"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/session"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(rt *runtime) *cobra.Command {
	var addr, static string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				rt.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, rt, static)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&static, "static", "", "directory of frontend files to serve at /")

	return cmd
}

func serve(ctx context.Context, rt *runtime, static string) error {
	log := logger.Component(rt.log, "server")
	m := metrics.New()
	f := rt.money()

	h := &api.Handler{
		Sessions: session.NewStoreWithTTL(rt.cfg.Server.SessionTTL),
		Pipeline: pipeline.New(pipeline.Options{DayFirst: rt.cfg.Parsing.DayFirst, Metrics: m}),
		Reports:  report.Default(f),
		Money:    f,
		Defaults: api.Defaults{
			Budget: rt.cfg.Dashboard.Budget(),
			TopN:   rt.cfg.Dashboard.TopN,
		},
		Metrics:   m,
		Logger:    log,
		StaticDir: static,
	}
	app := h.NewApp(rt.cfg.Server.BodyLimitMB << 20)

	go h.Sessions.Janitor(ctx, rt.cfg.Server.SessionTTL/4, func(n int) {
		log.Info().Int("expired", n).Int("sessions", h.Sessions.Len()).Msg("idle sessions removed")
	})

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", rt.cfg.Server.Addr).Str("version", buildinfo.Version).Msg("listening")
		errc <- app.Listen(rt.cfg.Server.Addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(sctx)
}
