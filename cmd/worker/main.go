// Command worker republishes events whose post-commit delivery failed and
// exposes the operations endpoint of the process.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/tenantkit"
	"github.com/dmitrymomot/tenantkit/pkg/config"
	"github.com/dmitrymomot/tenantkit/pkg/correlation"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/opsserver"
	"github.com/dmitrymomot/tenantkit/pkg/redelivery"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Kit tenantkit.Config
	Ops opsserver.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.Env),
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithService("tenantkit-worker"),
		logger.WithContextExtractors(tenant.LoggerExtractor(), correlation.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("worker stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	kit, err := tenantkit.New(ctx, cfg.Kit, tenantkit.WithLogger(log), tenantkit.WithRegisterer(reg))
	if err != nil {
		return err
	}
	defer kit.Close()

	redisOpt, err := cfg.Kit.RedeliveryQueue.RedisOpt()
	if err != nil {
		return err
	}
	worker := asynq.NewServer(redisOpt, cfg.Kit.RedeliveryQueue.ServerConfig())
	ops := opsserver.New(cfg.Ops, opsserver.WithLogger(log))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ops.Run(ctx, opsserver.Router(reg,
			[]opsserver.Check{{Name: "tenantkit", Fn: kit.Healthcheck}},
			opsserver.WithRouterLogger(log),
			opsserver.WithCheckTimeout(cfg.Ops.CheckTimeout),
		))
	})
	g.Go(func() error {
		if err := worker.Start(redelivery.NewMux(kit.Transport)); err != nil {
			return err
		}
		<-ctx.Done()
		worker.Shutdown()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
