package tenantkit

import (
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/kafka"
	"github.com/dmitrymomot/tenantkit/pkg/pg"
	"github.com/dmitrymomot/tenantkit/pkg/rabbitmq"
	"github.com/dmitrymomot/tenantkit/pkg/redelivery"
	"github.com/dmitrymomot/tenantkit/pkg/redis"
	"github.com/dmitrymomot/tenantkit/pkg/repocache"
)

// Event transports.
const (
	TransportMemory   = "memory"
	TransportKafka    = "kafka"
	TransportRabbitMQ = "rabbitmq"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config aggregates the settings of every component. Nested configs are
// read from their own variables, e.g. PG_CONN_URL or KAFKA_BROKERS.
type Config struct {
	Tables           []string      `env:"TENANT_TABLES" envSeparator:"," envDefault:"documents"`
	ProvisionTimeout time.Duration `env:"TENANT_PROVISION_TIMEOUT" envDefault:"30s"`
	MigrateSchemas   bool          `env:"TENANT_MIGRATE_SCHEMAS" envDefault:"true"`

	CacheBackend string `env:"CACHE_BACKEND" envDefault:"memory"`
	Transport    string `env:"EVENTS_TRANSPORT" envDefault:"memory"`
	Redelivery   bool   `env:"EVENTS_REDELIVERY" envDefault:"false"`

	PG              pg.Config
	Redis           redis.Config
	Cache           repocache.Config
	Kafka           kafka.Config
	RabbitMQ        rabbitmq.Config
	RedeliveryQueue redelivery.Config
}
