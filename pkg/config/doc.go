// Package config loads typed configuration from the environment and from files.
//
// Environment configuration is declared with caarlos0/env struct tags and loaded
// with Load. The default .env file (joho/godotenv) is read once on first use;
// LoadEnv reads specific files instead. Each config type is parsed once and
// cached for the lifetime of the process:
//
//	type Config struct {
//		DefaultTTL time.Duration `env:"CACHE_DEFAULT_TTL" envDefault:"15m"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// ForceReload and ResetCache exist for tests that change the environment.
//
// LoadYAML decodes optional structured files, such as the cache TTL policy, and
// rejects unknown keys so typos surface at startup.
package config
