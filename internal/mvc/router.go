package mvc

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Action is a controller action reachable through conventional routes
type Action struct {
	Name    string
	Method  string
	Policy  Policy
	Handler gin.HandlerFunc
}

// Controller is a server-rendered controller
type Controller interface {
	Name() string
	Actions() []Action
}

// Route is an attribute route declared by an API controller
type Route struct {
	Method   string
	Template string
	Action   string
	Policy   Policy
	Handler  gin.HandlerFunc
}

// APIController is a controller whose actions carry their own route templates
type APIController interface {
	Name() string
	Routes() []Route
}

// Router maps controllers onto the engine and records their endpoints
type Router struct {
	routes   gin.IRoutes
	registry *Registry
}

// NewRouter creates a router registering on routes
func NewRouter(routes gin.IRoutes, registry *Registry) *Router {
	return &Router{routes: routes, registry: registry}
}

// Registry returns the endpoint registry
func (r *Router) Registry() *Registry {
	return r.registry
}

// MapControllerRoute registers every action of the controllers under the
// conventional pattern
func (r *Router) MapControllerRoute(name, pattern string, controllers ...Controller) error {
	p, err := ParsePattern(pattern)
	if err != nil {
		return err
	}

	for _, ctrl := range controllers {
		for _, action := range ctrl.Actions() {
			method := action.Method
			if method == "" {
				method = http.MethodGet
			}
			values := p.Defaults()
			values["controller"] = ctrl.Name()
			values["action"] = action.Name
			for _, path := range p.Expand(ctrl.Name(), action.Name) {
				ep := &Endpoint{
					Name:        name,
					Controller:  ctrl.Name(),
					Action:      action.Name,
					Kind:        KindMVC,
					Policy:      action.Policy,
					Method:      method,
					Path:        path,
					RouteValues: values,
				}
				if err := r.handle(ep, action.Handler); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// MapControllers registers the attribute routes of API controllers
func (r *Router) MapControllers(controllers ...APIController) error {
	for _, ctrl := range controllers {
		for _, route := range ctrl.Routes() {
			path, err := ConvertTemplate(route.Template, ctrl.Name(), route.Action)
			if err != nil {
				return fmt.Errorf("controller %s: %w", ctrl.Name(), err)
			}
			ep := &Endpoint{
				Name:       ctrl.Name() + "." + route.Action,
				Controller: ctrl.Name(),
				Action:     route.Action,
				Kind:       KindAPI,
				Policy:     route.Policy,
				Method:     route.Method,
				Path:       path,
			}
			if err := r.handle(ep, route.Handler); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Router) handle(ep *Endpoint, handler gin.HandlerFunc) error {
	if handler == nil {
		return fmt.Errorf("%s has no handler", ep.DisplayName())
	}
	if err := r.registry.Add(ep); err != nil {
		return err
	}
	r.routes.Handle(ep.Method, ep.Path, handler)
	return nil
}
