package tenantkit

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"slices"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/tenantkit/pkg/cache"
	"github.com/dmitrymomot/tenantkit/pkg/event"
	"github.com/dmitrymomot/tenantkit/pkg/kafka"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/metrics"
	"github.com/dmitrymomot/tenantkit/pkg/pg"
	"github.com/dmitrymomot/tenantkit/pkg/rabbitmq"
	"github.com/dmitrymomot/tenantkit/pkg/redelivery"
	"github.com/dmitrymomot/tenantkit/pkg/redis"
	"github.com/dmitrymomot/tenantkit/pkg/repocache"
	"github.com/dmitrymomot/tenantkit/pkg/schema"
	"github.com/dmitrymomot/tenantkit/pkg/session"
)

// Kit holds the shared infrastructure of a service.
type Kit struct {
	Pool        *pgxpool.Pool
	Provisioner *schema.Provisioner
	Gateway     *session.Gateway
	Events      *event.Deferred // publishes after commit
	Transport   event.Publisher // publishes at once, used by redelivery workers
	Metrics     *metrics.Metrics
	Logger      *slog.Logger

	cache  repocache.Store
	policy repocache.Policy
	bus    *event.MemoryBus
	checks map[string]func(context.Context) error
	closer []func() error
}

// New connects to PostgreSQL and, depending on cfg, Redis and the event broker.
// On error everything opened so far is closed again.
func New(ctx context.Context, cfg Config, opts ...Option) (*Kit, error) {
	o := options{logger: slog.Default(), registerer: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(&o)
	}

	k := &Kit{Logger: o.logger, checks: make(map[string]func(context.Context) error)}
	if err := k.setup(ctx, cfg, o); err != nil {
		return nil, errors.Join(ErrSetupFailed, err, k.Close())
	}
	return k, nil
}

func (k *Kit) setup(ctx context.Context, cfg Config, o options) error {
	m, err := metrics.New(o.registerer)
	if err != nil {
		return err
	}
	k.Metrics = m

	policy, err := cfg.Cache.Policy()
	if err != nil {
		return err
	}
	k.policy = policy

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return err
	}
	k.Pool = pool
	k.onClose(func() error { pool.Close(); return nil })
	k.checks["postgres"] = pg.Healthcheck(pool)

	boot, err := newBootstrapper(pool, cfg, o.migrations, o.logger)
	if err != nil {
		return err
	}
	k.Provisioner = schema.NewProvisioner(boot,
		schema.WithLogger(o.logger),
		schema.WithMetrics(m),
		schema.WithTimeout(cfg.ProvisionTimeout),
	)
	k.Gateway = session.New(pool, k.Provisioner, session.WithLogger(o.logger))

	if err := k.setupCache(ctx, cfg); err != nil {
		return err
	}

	pub := o.publisher
	if pub == nil {
		if pub, err = k.setupTransport(ctx, cfg); err != nil {
			return err
		}
	}

	deferredOpts := []event.DeferredOption{event.WithLogger(o.logger), event.WithMetrics(m)}
	if cfg.Redelivery {
		redisOpt, err := cfg.RedeliveryQueue.RedisOpt()
		if err != nil {
			return err
		}
		client := asynq.NewClient(redisOpt)
		k.onClose(client.Close)
		deferredOpts = append(deferredOpts, event.WithFailureHandler(
			redelivery.NewEnqueuer(client, cfg.RedeliveryQueue, redelivery.WithLogger(o.logger)),
		))
	}
	k.Transport = pub
	k.Events = event.NewDeferred(pub, deferredOpts...)
	return nil
}

func newBootstrapper(pool *pgxpool.Pool, cfg Config, migrations fs.FS, log *slog.Logger) (*schema.PostgresBootstrapper, error) {
	if !cfg.MigrateSchemas {
		migrations = nil
	}
	migrate := func(ctx context.Context, name string, fsys fs.FS) error {
		return pg.MigrateSchema(ctx, pool, name, cfg.PG.TenantMigrationsTable, fsys, log)
	}
	return schema.NewPostgresBootstrapper(pool, cfg.Tables, migrations, migrate)
}

func (k *Kit) setupCache(ctx context.Context, cfg Config) error {
	switch cfg.CacheBackend {
	case CacheNone, "":
	case CacheMemory:
		k.cache = cache.NewMemoryStore(cfg.Cache.MemoryCapacity)
	case CacheRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		k.onClose(client.Close)
		k.checks["redis"] = redis.Healthcheck(client)
		k.cache = redis.NewStoreWithConfig(client, cfg.Redis)
	default:
		return errors.Join(ErrUnknownCacheBackend, errors.New(cfg.CacheBackend))
	}
	return nil
}

func (k *Kit) setupTransport(ctx context.Context, cfg Config) (event.Publisher, error) {
	switch cfg.Transport {
	case TransportMemory, "":
		k.bus = event.NewMemoryBus()
		k.onClose(k.bus.Close)
		return k.bus, nil
	case TransportKafka:
		pub, err := kafka.NewPublisher(cfg.Kafka, kafka.WithLogger(k.Logger))
		if err != nil {
			return nil, err
		}
		k.onClose(pub.Close)
		return pub, nil
	case TransportRabbitMQ:
		conn, err := rabbitmq.Dial(ctx, cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		k.onClose(conn.Close)
		ch, err := conn.Channel()
		if err != nil {
			return nil, errors.Join(rabbitmq.ErrConnectionFailed, err)
		}
		pub, err := rabbitmq.NewPublisher(ch, cfg.RabbitMQ, rabbitmq.WithLogger(k.Logger))
		if err != nil {
			_ = ch.Close()
			return nil, err
		}
		k.onClose(pub.Close)
		return pub, nil
	default:
		return nil, errors.Join(ErrUnknownTransport, errors.New(cfg.Transport))
	}
}

// Bus returns the in-process bus when the memory transport is in use.
func (k *Kit) Bus() (*event.MemoryBus, bool) {
	return k.bus, k.bus != nil
}

// Healthcheck pings every backend the kit opened.
func (k *Kit) Healthcheck(ctx context.Context) error {
	var errs []error
	for name, check := range k.checks {
		if err := check(ctx); err != nil {
			errs = append(errs, errors.Join(errors.New(name), err))
		}
	}
	return errors.Join(errs...)
}

// Close releases resources in reverse order of acquisition.
func (k *Kit) Close() error {
	var errs []error
	for _, fn := range slices.Backward(k.closer) {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	k.closer = nil
	if len(errs) > 0 {
		k.Logger.Error("failed to close tenantkit resources",
			logger.Component("tenantkit"),
			logger.Errors(errs...),
		)
	}
	return errors.Join(errs...)
}

func (k *Kit) onClose(fn func() error) {
	k.closer = append(k.closer, fn)
}
