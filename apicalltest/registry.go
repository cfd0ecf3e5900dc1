// Package apicalltest provides a mock transport for testing code built on
// apicall.
//
// A Registry maps host names to Handlers.  A Transport is an apicall.Doer
// which sends each request to the handler registered for the request's host:
//
//	reg := apicalltest.NewRegistry()
//	apicalltest.RegisterT(t, reg, "api.example.com",
//	    apicalltest.RespondJSON(200, Post{ID: 42}))
//
//	c := apicalltest.NewClient(reg)
//	post, err := apicall.Execute(ctx, c, getPost)
//
// Registries are explicit values: each test, or group of tests, owns its own,
// so parallel tests don't see each other's handlers.
package apicalltest

import (
	"net/http"
	"sync"
	"testing"
)

// Handler produces the response for a request.  Returning an error simulates
// a transport failure.  Returning a nil response, or one with a zero status
// code, simulates a response which isn't HTTP.
type Handler func(req *http.Request) (*http.Response, error)

// Registry maps hosts to handlers.  It is safe for concurrent use.  A single
// lock guards the whole map, and is held only while the map is read or
// written.  Handlers run outside the lock.
//
// The zero value is ready to use.
type Registry struct {
	mu       sync.Mutex
	handlers map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register installs h as the handler for host, replacing any handler already
// registered for it.  host is matched against the request URL's host name,
// without the port.
func (r *Registry) Register(host string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handlers == nil {
		r.handlers = map[string]Handler{}
	}
	r.handlers[host] = h
}

// Unregister removes the handler for host.  It is a no-op if none is
// registered.
func (r *Registry) Unregister(host string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, host)
}

// Lookup returns the handler registered for host.
func (r *Registry) Lookup(host string) (Handler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handlers[host]
	return h, ok
}

// Len returns the number of registered hosts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers)
}

// RegisterT registers h for host, and unregisters it when the test
// finishes.
func RegisterT(t testing.TB, r *Registry, host string, h Handler) {
	t.Helper()
	r.Register(host, h)
	t.Cleanup(func() {
		r.Unregister(host)
	})
}
