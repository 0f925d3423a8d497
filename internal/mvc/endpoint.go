package mvc

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
)

// Kind distinguishes server-rendered controllers from API controllers
type Kind int

const (
	KindMVC Kind = iota
	KindAPI
)

func (k Kind) String() string {
	if k == KindAPI {
		return "api"
	}
	return "mvc"
}

// Policy names the authorization requirement of an endpoint
type Policy string

const (
	// PolicyAnonymous allows every caller
	PolicyAnonymous Policy = ""
	// PolicyRequireAdmin requires an authenticated admin session
	PolicyRequireAdmin Policy = "RequireAdmin"
)

// Endpoint is the metadata recorded for a mapped route
type Endpoint struct {
	Name       string
	Controller string
	Action     string
	Kind       Kind
	Policy     Policy
	Method     string
	Path       string

	// RouteValues holds the conventional route values: pattern defaults
	// overridden by the endpoint's own controller and action
	RouteValues map[string]string
}

// DisplayName identifies the endpoint in logs
func (e *Endpoint) DisplayName() string {
	return e.Controller + "." + e.Action
}

// Registry maps engine routes to endpoint metadata
type Registry struct {
	mu        sync.RWMutex
	endpoints map[string]*Endpoint
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{endpoints: make(map[string]*Endpoint)}
}

func registryKey(method, path string) string {
	return method + " " + path
}

// Add records an endpoint; a route may only be mapped once
func (r *Registry) Add(ep *Endpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := registryKey(ep.Method, ep.Path)
	if existing, ok := r.endpoints[key]; ok {
		return fmt.Errorf("route %s already mapped to %s", key, existing.DisplayName())
	}
	r.endpoints[key] = ep
	return nil
}

// Lookup returns the endpoint mapped to method and engine path
func (r *Registry) Lookup(method, path string) (*Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ep, ok := r.endpoints[registryKey(method, path)]
	return ep, ok
}

// Endpoints returns every mapped endpoint ordered by path then method
func (r *Registry) Endpoints() []*Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Endpoint, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		list = append(list, ep)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Path != list[j].Path {
			return list[i].Path < list[j].Path
		}
		return list[i].Method < list[j].Method
	})
	return list
}

const endpointKey = "mvc.endpoint"

// Routing resolves the matched route to its endpoint and stores it on the
// request context for later middleware
func (r *Registry) Routing() gin.HandlerFunc {
	return func(c *gin.Context) {
		if path := c.FullPath(); path != "" {
			if ep, ok := r.Lookup(c.Request.Method, path); ok {
				c.Set(endpointKey, ep)
			}
		}
		c.Next()
	}
}

// EndpointFrom returns the endpoint resolved by the routing middleware
func EndpointFrom(c *gin.Context) (*Endpoint, bool) {
	v, ok := c.Get(endpointKey)
	if !ok {
		return nil, false
	}
	ep, ok := v.(*Endpoint)
	return ep, ok
}

// RouteValue returns a route parameter, falling back to the endpoint's
// route values
func RouteValue(c *gin.Context, name string) string {
	if v := c.Param(name); v != "" {
		return v
	}
	if ep, ok := EndpointFrom(c); ok {
		return ep.RouteValues[name]
	}
	return ""
}
