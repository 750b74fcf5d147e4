package redelivery

import (
	"time"

	"github.com/hibiken/asynq"
)

// TaskType is the asynq task type carrying failed events.
const TaskType = "event:redeliver"

// Config holds the queue settings.
type Config struct {
	RedisURL    string        `env:"REDELIVERY_REDIS_URL" envDefault:"redis://localhost:6379/1"`
	Queue       string        `env:"REDELIVERY_QUEUE" envDefault:"events"`
	MaxRetry    int           `env:"REDELIVERY_MAX_RETRY" envDefault:"25"`
	Retention   time.Duration `env:"REDELIVERY_RETENTION" envDefault:"24h"`
	Concurrency int           `env:"REDELIVERY_CONCURRENCY" envDefault:"4"`
}

// RedisOpt parses RedisURL for asynq.NewClient and asynq.NewServer.
func (c Config) RedisOpt() (asynq.RedisConnOpt, error) {
	return asynq.ParseRedisURI(c.RedisURL)
}

// ServerConfig returns the worker settings for the redelivery queue.
func (c Config) ServerConfig() asynq.Config {
	return asynq.Config{
		Concurrency: max(c.Concurrency, 1),
		Queues:      map[string]int{c.Queue: 1},
	}
}
