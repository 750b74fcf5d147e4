package schema

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/metrics"
)

// DefaultProvisionTimeout bounds a single bootstrap run.
const DefaultProvisionTimeout = 30 * time.Second

// Bootstrapper creates a namespace and its tables. Implementations must be
// idempotent and safe to call concurrently for the same name.
type Bootstrapper interface {
	Bootstrap(ctx context.Context, name Name) error
}

// BootstrapFunc is an adapter to allow the use of ordinary functions as Bootstrappers.
type BootstrapFunc func(ctx context.Context, name Name) error

// Bootstrap calls f.
func (f BootstrapFunc) Bootstrap(ctx context.Context, name Name) error { return f(ctx, name) }

// Readiness records that a schema was provisioned by this process.
type Readiness struct {
	Schema        Name
	ProvisionedAt time.Time
}

// Provisioner memoizes schema readiness for the lifetime of the process.
// The first request for a schema runs the bootstrapper; concurrent first requests
// share that single run and all wait for it to finish. Later requests are a map lookup.
type Provisioner struct {
	boot    Bootstrapper
	logger  *slog.Logger
	metrics *metrics.Metrics
	timeout time.Duration
	now     func() time.Time

	group singleflight.Group
	mu    sync.RWMutex
	ready map[Name]Readiness
}

// ProvisionerOption configures a Provisioner.
type ProvisionerOption func(*Provisioner)

// WithLogger sets the logger used for provisioning events.
func WithLogger(l *slog.Logger) ProvisionerOption {
	return func(p *Provisioner) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics records provisioning outcomes.
func WithMetrics(m *metrics.Metrics) ProvisionerOption {
	return func(p *Provisioner) { p.metrics = m }
}

// WithTimeout bounds each bootstrap run. Non-positive values keep the default.
func WithTimeout(d time.Duration) ProvisionerOption {
	return func(p *Provisioner) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// NewProvisioner creates a provisioner around boot.
func NewProvisioner(boot Bootstrapper, opts ...ProvisionerOption) *Provisioner {
	p := &Provisioner{
		boot:    boot,
		logger:  slog.Default(),
		timeout: DefaultProvisionTimeout,
		now:     time.Now,
		ready:   make(map[Name]Readiness),
	}
	for _, opt := range opts {
		opt(p)
	}
	// public is created by the platform migrations at startup.
	p.ready[Public] = Readiness{Schema: Public, ProvisionedAt: p.now()}
	return p
}

// EnsureReady makes sure the schema exists. It returns only after the caller's
// own creation attempt (or the one it joined) has completed.
func (p *Provisioner) EnsureReady(ctx context.Context, name Name) error {
	if _, err := Validate(string(name)); err != nil {
		return err
	}
	if _, ok := p.Readiness(name); ok {
		return nil
	}

	ch := p.group.DoChan(string(name), func() (any, error) {
		if r, ok := p.Readiness(name); ok {
			return r, nil
		}
		return p.provision(ctx, name)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return errors.Join(ErrProvisioningFailed, ctx.Err())
	}
}

// Readiness returns the memoized record for name.
func (p *Provisioner) Readiness(name Name) (Readiness, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	r, ok := p.ready[name]
	return r, ok
}

// Forget drops the memo for name so the next EnsureReady runs the bootstrapper again.
// Used after a schema is dropped out of band.
func (p *Provisioner) Forget(name Name) {
	if name == Public {
		return
	}
	p.mu.Lock()
	delete(p.ready, name)
	p.mu.Unlock()
}

func (p *Provisioner) provision(ctx context.Context, name Name) (Readiness, error) {
	// The run is shared by every waiter, so one caller's cancellation must not abort it.
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	start := p.now()
	if err := p.boot.Bootstrap(runCtx, name); err != nil {
		p.metrics.ProvisionFailed()
		p.logger.ErrorContext(ctx, "schema provisioning failed",
			logger.Component("schema"),
			logger.Schema(name.String()),
			logger.Error(err),
		)
		return Readiness{}, errors.Join(ErrProvisioningFailed, err)
	}

	r := Readiness{Schema: name, ProvisionedAt: p.now()}
	p.mu.Lock()
	p.ready[name] = r
	p.mu.Unlock()

	p.metrics.ProvisionSucceeded(r.ProvisionedAt.Sub(start))
	p.logger.InfoContext(ctx, "schema provisioned",
		logger.Component("schema"),
		logger.Schema(name.String()),
		logger.Duration(r.ProvisionedAt.Sub(start)),
	)
	return r, nil
}
