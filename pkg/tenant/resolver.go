package tenant

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// DefaultHeader carries the tenant id when HeaderResolver is built without a name.
const DefaultHeader = "X-Tenant-ID"

// Resolver extracts the raw tenant identifier from a request. The value is
// untrusted; Middleware validates it with ParseID. An empty result means the
// request names no tenant.
type Resolver interface {
	Resolve(r *http.Request) (string, error)
}

// ResolverFunc is an adapter to allow the use of ordinary functions as Resolvers.
type ResolverFunc func(r *http.Request) (string, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(r *http.Request) (string, error) { return f(r) }

// SubdomainResolver reads the left-most host label, e.g. "acme" from
// "acme.wms.example.com". A leading "www" label is skipped. Hosts with fewer
// than three labels have no tenant.
type SubdomainResolver struct {
	Suffix string
}

// NewSubdomainResolver creates a resolver that strips suffix (e.g. ".wms.example.com") first.
func NewSubdomainResolver(suffix string) *SubdomainResolver {
	return &SubdomainResolver{Suffix: suffix}
}

func (r *SubdomainResolver) Resolve(req *http.Request) (string, error) {
	host := req.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if strings.Count(host, ".") < 2 {
		return "", nil
	}
	if r.Suffix != "" && len(host) > len(r.Suffix) {
		host = strings.TrimSuffix(host, r.Suffix)
	}

	labels := strings.Split(host, ".")
	if labels[0] == "www" {
		labels = labels[1:]
	}
	if len(labels) == 0 {
		return "", nil
	}
	return labels[0], nil
}

// HeaderResolver reads a request header.
type HeaderResolver struct {
	HeaderName string
}

// NewHeaderResolver creates a resolver for name, or DefaultHeader when name is empty.
func NewHeaderResolver(name string) *HeaderResolver {
	if name == "" {
		name = DefaultHeader
	}
	return &HeaderResolver{HeaderName: name}
}

func (r *HeaderResolver) Resolve(req *http.Request) (string, error) {
	return strings.TrimSpace(req.Header.Get(r.HeaderName)), nil
}

// PathResolver reads the path segment at a 1-based Position,
// e.g. 2 for /api/{tenant}/orders.
type PathResolver struct {
	Position int
}

// NewPathResolver creates a path resolver.
func NewPathResolver(position int) *PathResolver {
	return &PathResolver{Position: position}
}

func (r *PathResolver) Resolve(req *http.Request) (string, error) {
	if r.Position < 1 {
		return "", errors.New("tenant: path position must be positive")
	}
	segments := strings.Split(strings.Trim(req.URL.Path, "/"), "/")
	if r.Position > len(segments) {
		return "", nil
	}
	return segments[r.Position-1], nil
}

// URLParamResolver reads a chi route parameter, e.g. "tenant" for routes
// mounted as /t/{tenant}/locations.
type URLParamResolver struct {
	Param string
}

// NewURLParamResolver creates a resolver for param, or "tenant" when param is empty.
func NewURLParamResolver(param string) *URLParamResolver {
	if param == "" {
		param = "tenant"
	}
	return &URLParamResolver{Param: param}
}

func (r *URLParamResolver) Resolve(req *http.Request) (string, error) {
	if chi.RouteContext(req.Context()) == nil {
		return "", nil
	}
	return chi.URLParam(req, r.Param), nil
}

// CompositeResolver returns the first non-empty result of its resolvers.
// Errors only surface when no resolver produced an id.
type CompositeResolver struct {
	Resolvers []Resolver
}

// NewCompositeResolver creates a composite resolver.
func NewCompositeResolver(resolvers ...Resolver) *CompositeResolver {
	return &CompositeResolver{Resolvers: resolvers}
}

func (c *CompositeResolver) Resolve(r *http.Request) (string, error) {
	var errs []error
	for _, res := range c.Resolvers {
		id, err := res.Resolve(r)
		switch {
		case err != nil:
			errs = append(errs, err)
		case id != "":
			return id, nil
		}
	}
	return "", errors.Join(errs...)
}
