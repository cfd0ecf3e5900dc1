// Package httpclient builds the transports used by apicall clients in
// production.
//
// New builds an *http.Client, configured with Options which implement common
// recipes, like timeouts, disabling server TLS verification, or setting a
// proxy:
//
//	hc, err := httpclient.New(httpclient.Timeout(10 * time.Second), httpclient.SkipVerify(true))
//	c := &apicall.Client{Doer: hc}
//
// Resty adapts a github.com/go-resty/resty/v2 client to the apicall.Doer
// interface, for code which already shares a resty client:
//
//	c := &apicall.Client{Doer: httpclient.Resty(resty.New())}
package httpclient

import (
	"crypto/tls"
	"github.com/ansel1/merry"
	"net"
	"net/http"
	"time"
)

// New builds a new *http.Client.  With no arguments, the client
// is configured like http.DefaultClient and http.DefaultTransport,
// but with its own instances, so it can be modified without global effect.
func New(opts ...Option) (*http.Client, error) {
	c := &http.Client{Transport: newDefaultTransport()}
	if err := Apply(c, opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// Apply applies options to an existing client.
func Apply(c *http.Client, opts ...Option) error {
	for _, opt := range opts {
		if err := opt.Apply(c); err != nil {
			return merry.Prepend(err, "applying http client options")
		}
	}
	return nil
}

// newDefaultTransport mirrors http.DefaultTransport.  It can't be
// copied because it holds a mutex.
func newDefaultTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// Option configures an http.Client.
type Option interface {

	// Apply makes some configuration change to the client.  The client will
	// not be nil.
	Apply(*http.Client) error
}

// OptionFunc adapts a function to the Option interface.
type OptionFunc func(*http.Client) error

// Apply implements Option.
func (f OptionFunc) Apply(c *http.Client) error {
	return f(c)
}

// A TransportOption configures the client's *http.Transport, creating a
// default one if the client has none.
//
// If the client's transport is not a *http.Transport, an
// error is returned.
type TransportOption func(transport *http.Transport) error

// Apply implements Option.
func (f TransportOption) Apply(c *http.Client) error {
	var transport *http.Transport
	switch t := c.Transport.(type) {
	case nil:
		transport = newDefaultTransport()
		c.Transport = transport
	case *http.Transport:
		transport = t
	default:
		return merry.Errorf("client.Transport is not a *http.Transport.  It's a %T", c.Transport)
	}

	return f(transport)
}

// A TLSOption configures the transport's TLS configuration, creating
// an empty one if necessary.
type TLSOption func(c *tls.Config) error

// Apply implements Option.
func (f TLSOption) Apply(c *http.Client) error {
	return TransportOption(func(t *http.Transport) error {
		if t.TLSClientConfig == nil {
			t.TLSClientConfig = &tls.Config{}
		}
		return f(t.TLSClientConfig)
	}).Apply(c)
}
