package opsserver

import "time"

type Config struct {
	Addr            string        `env:"OPS_ADDR" envDefault:":9090"`          // Addr is the address the server listens on.
	ReadTimeout     time.Duration `env:"OPS_READ_TIMEOUT" envDefault:"5s"`     // ReadTimeout bounds reading a request.
	WriteTimeout    time.Duration `env:"OPS_WRITE_TIMEOUT" envDefault:"10s"`   // WriteTimeout bounds writing a response, including a metrics scrape.
	ShutdownTimeout time.Duration `env:"OPS_SHUTDOWN_TIMEOUT" envDefault:"5s"` // ShutdownTimeout is the time allowed for graceful shutdown.
	CheckTimeout    time.Duration `env:"OPS_CHECK_TIMEOUT" envDefault:"2s"`    // CheckTimeout bounds each readiness check.
}
