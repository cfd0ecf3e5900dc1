package apicalltest

import (
	"github.com/ThalesGroup/apicall"
	"github.com/ansel1/merry"
	"net/http"
)

// ErrNoHandler is returned by Transport when no handler is registered for the
// request's host.  Test with merry.Is.
var ErrNoHandler = merry.New("bad server response: no handler registered")

// Transport is an apicall.Doer which dispatches requests to the handlers in
// Registry, by host.
type Transport struct {
	Registry *Registry
}

// NewTransport returns a transport dispatching to reg.
func NewTransport(reg *Registry) *Transport {
	return &Transport{Registry: reg}
}

// Do implements apicall.Doer.  The handler's response and error are returned
// unchanged.  If the handler's response has no Request, it is set.
func (t *Transport) Do(req *http.Request) (*http.Response, error) {
	host := req.URL.Hostname()

	var h Handler
	var ok bool
	if t.Registry != nil {
		h, ok = t.Registry.Lookup(host)
	}
	if !ok {
		return nil, merry.Prependf(ErrNoHandler, "host %q", host)
	}

	resp, err := h(req)
	if resp != nil && resp.Request == nil {
		resp.Request = req
	}
	return resp, err
}

// Apply implements apicall.ClientOption, installing the transport as the
// client's Doer.
func (t *Transport) Apply(c *apicall.Client) error {
	c.Doer = t
	return nil
}

// NewClient returns an apicall.Client whose Doer is a Transport on reg.
// Options are applied after the transport is installed.  Panics if an option
// fails.
func NewClient(reg *Registry, opts ...apicall.ClientOption) *apicall.Client {
	return apicall.MustNewClient(append([]apicall.ClientOption{NewTransport(reg)}, opts...)...)
}
