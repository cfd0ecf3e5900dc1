// Package httptestutil contains utilities for testing apicall clients against
// an httptest.Server.
//
// Inspect captures what the server received and sent back, so tests can
// check the requests apicall built on the wire.
package httptestutil

import (
	"github.com/ThalesGroup/apicall"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Client returns an apicall client which sends requests with the test
// server's own client, so TLS servers work too.  Options are applied after.
func Client(ts *httptest.Server, opts ...apicall.ClientOption) *apicall.Client {
	return apicall.MustNewClient(append([]apicall.ClientOption{apicall.WithDoer(ts.Client())}, opts...)...)
}

// Inspect installs and returns an Inspector on the server.
//
// Inspect wraps and replaces the server's Handler.  It should be called after the real
// Handler has been installed.
func Inspect(ts *httptest.Server) *Inspector {
	in := &Inspector{}
	ts.Config.Handler = in.Wrap(ts.Config.Handler)
	return in
}

// NewServer starts a server running h, with an Inspector installed.  The
// server is closed when the test ends.
func NewServer(t testing.TB, h http.Handler) (*httptest.Server, *Inspector) {
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts, Inspect(ts)
}
