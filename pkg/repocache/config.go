package repocache

import (
	"errors"
	"maps"
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/config"
)

// DefaultTTL applies to namespaces without an override.
const DefaultTTL = 15 * time.Minute

// Config is loaded from the environment.
//
//	CACHE_DEFAULT_TTL=15m
//	CACHE_TTL_OVERRIDES=stock_item:1m,location:1h
//	CACHE_POLICY_FILE=/etc/svc/cache.yaml
type Config struct {
	DefaultTTL     time.Duration            `env:"CACHE_DEFAULT_TTL" envDefault:"15m"`
	TTLOverrides   map[string]time.Duration `env:"CACHE_TTL_OVERRIDES"`
	PolicyFile     string                   `env:"CACHE_POLICY_FILE"`
	MemoryCapacity int                      `env:"CACHE_MEMORY_CAPACITY" envDefault:"10000"`
}

// Policy maps cache namespaces to TTLs.
type Policy struct {
	Default    time.Duration            `yaml:"default"`
	Namespaces map[string]time.Duration `yaml:"namespaces"`
}

// LoadPolicy reads a YAML policy file:
//
//	default: 15m
//	namespaces:
//	  stock_item: 1m
//	  location: 1h
func LoadPolicy(path string) (Policy, error) {
	var p Policy
	if err := config.LoadYAML(path, &p); err != nil {
		return Policy{}, err
	}
	return p, p.Validate()
}

// Policy merges the environment settings with the policy file, if any.
// Values from the file win.
func (c Config) Policy() (Policy, error) {
	p := Policy{Default: c.DefaultTTL, Namespaces: maps.Clone(c.TTLOverrides)}
	if p.Namespaces == nil {
		p.Namespaces = make(map[string]time.Duration)
	}
	if c.PolicyFile != "" {
		file, err := LoadPolicy(c.PolicyFile)
		if err != nil {
			return Policy{}, err
		}
		if file.Default > 0 {
			p.Default = file.Default
		}
		maps.Copy(p.Namespaces, file.Namespaces)
	}
	return p, p.Validate()
}

// Validate rejects non-positive TTLs and malformed namespaces.
func (p Policy) Validate() error {
	if p.Default < 0 {
		return errors.New("repocache: negative default ttl")
	}
	for ns, ttl := range p.Namespaces {
		if err := ValidateNamespace(ns); err != nil {
			return err
		}
		if ttl <= 0 {
			return errors.New("repocache: ttl for " + ns + " must be positive")
		}
	}
	return nil
}

// TTL returns the TTL for namespace.
func (p Policy) TTL(namespace string) time.Duration {
	if ttl, ok := p.Namespaces[namespace]; ok {
		return ttl
	}
	if p.Default > 0 {
		return p.Default
	}
	return DefaultTTL
}
