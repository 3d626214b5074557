// Package httpfixture provides an http.RoundTripper backed by canned
// responses, used to test the Ory admin API gateways without a live server.
package httpfixture

import (
	"net/http"
	"strings"
)

// Fixture describes a canned HTTP response
type Fixture struct {
	StatusCode  int
	Body        string
	ContentType string
	Headers     map[string]string
}

// FixtureProvider returns the fixture for a request, or nil when it has none
type FixtureProvider interface {
	GetFixture(req *http.Request) *Fixture
}

type route struct {
	method     string
	pathSuffix string
	fixture    *Fixture
}

// RouteProvider matches requests by method and URL path suffix
type RouteProvider struct {
	routes []route
}

// NewRouteProvider creates an empty route provider
func NewRouteProvider() *RouteProvider {
	return &RouteProvider{}
}

// Respond registers a fixture for requests whose method matches and whose
// URL path ends with pathSuffix. Routes are matched in registration order.
func (p *RouteProvider) Respond(method, pathSuffix string, fixture Fixture) *RouteProvider {
	if fixture.ContentType == "" {
		fixture.ContentType = "application/json"
	}
	p.routes = append(p.routes, route{
		method:     method,
		pathSuffix: pathSuffix,
		fixture:    &fixture,
	})
	return p
}

// GetFixture implements FixtureProvider
func (p *RouteProvider) GetFixture(req *http.Request) *Fixture {
	for _, r := range p.routes {
		if r.method != req.Method {
			continue
		}
		if strings.HasSuffix(req.URL.Path, r.pathSuffix) {
			return r.fixture
		}
	}
	return nil
}
