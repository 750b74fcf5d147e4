// Package redis connects to Redis and provides the Redis-backed Store used by
// the repository cache.
//
// Configuration is described by Config, whose fields are populated from
// environment variables via github.com/caarlos0/env:
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		// handle error, probably terminate the application
//	}
//	defer client.Close()
//
//	store := redis.NewStoreWithConfig(client, cfg)
//
// Store bounds every call with Config.OpTimeout so a slow or unreachable Redis
// turns into a cache miss quickly instead of stalling the request.
//
// Healthcheck returns a closure suitable for readiness probes.
package redis
