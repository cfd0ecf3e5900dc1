package apicall

import (
	"bytes"
	"context"
	"github.com/ansel1/merry"
	"io"
	"net/http"
	"strconv"
)

// Executor executes a call described by a Descriptor, decoding the response
// body into the value pointed to by into.  *Client is the standard
// implementation.
type Executor interface {
	Execute(ctx context.Context, d Descriptor, into interface{}) error
}

// NoContent can be used as an endpoint's response type when the response
// body should be ignored.  It is never decoded.
type NoContent struct{}

// Client builds requests from descriptors, sends them through a Doer, checks
// the response status, and decodes the response body.
//
// A Client is configured by setting its members, or by applying
// ClientOptions with NewClient or Apply.  The zero value is ready to use: it
// sends requests with http.DefaultClient, builds them with DefaultBuilder,
// and decodes JSON with DefaultUnmarshaler.
//
//	c := &apicall.Client{Doer: httpClient}
//
//	c, err := apicall.NewClient(
//	    apicall.WithDoer(httpClient),
//	    apicall.WithLogger(logger),
//	)
//
// Calls are made with the generic Execute function, which returns the
// decoded response:
//
//	post, err := apicall.Execute(ctx, c, getPost)
//
// ...or with the Execute method, which decodes into a pointer:
//
//	var post Post
//	err := c.Execute(ctx, getPost.Descriptor(), &post)
//
// A Client holds no per-call state, and is safe for concurrent use as long as
// its members are not modified.
type Client struct {
	// Builder creates requests from descriptors.  Defaults to DefaultBuilder.
	Builder RequestBuilder

	// Doer sends the requests.  Defaults to http.DefaultClient.
	Doer Doer

	// Middleware wraps the Doer.  Middleware will be invoked in the order
	// it is in this slice.
	Middleware []Middleware

	// Unmarshaler decodes successful response bodies.  Defaults to
	// DefaultUnmarshaler.
	Unmarshaler Unmarshaler

	// Hooks observe each call.  They run in order.
	Hooks []Hooks
}

// ClientOption configures a Client.
type ClientOption interface {
	Apply(*Client) error
}

// ClientOptionFunc adapts a function to the ClientOption interface.
type ClientOptionFunc func(*Client) error

// Apply implements ClientOption.
func (f ClientOptionFunc) Apply(c *Client) error {
	return f(c)
}

// NewClient returns a new Client, applying all options.
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{}
	err := c.Apply(opts...)
	if err != nil {
		return nil, merry.Wrap(err)
	}
	return c, nil
}

// MustNewClient creates a new Client, applying all options.  If
// an error occurs applying options, this will panic.
func MustNewClient(opts ...ClientOption) *Client {
	c, err := NewClient(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Apply applies the options to the receiver.
func (c *Client) Apply(opts ...ClientOption) error {
	for _, o := range opts {
		if o == nil {
			continue
		}
		err := o.Apply(c)
		if err != nil {
			return merry.Prepend(err, "applying options")
		}
	}
	return nil
}

// Clone returns a copy of the client.  The slices are copied, so options
// applied to the clone don't affect the parent.
func (c *Client) Clone() *Client {
	c2 := *c
	c2.Middleware = append([]Middleware(nil), c.Middleware...)
	c2.Hooks = append([]Hooks(nil), c.Hooks...)
	return &c2
}

// With clones the client, then applies the options to the clone.
func (c *Client) With(opts ...ClientOption) (*Client, error) {
	c2 := c.Clone()
	err := c2.Apply(opts...)
	if err != nil {
		return nil, err
	}
	return c2, nil
}

// WithDoer replaces Client.Doer.  If nil, the client reverts to
// http.DefaultClient.
func WithDoer(d Doer) ClientOption {
	return ClientOptionFunc(func(c *Client) error {
		c.Doer = d
		return nil
	})
}

// WithBuilder replaces Client.Builder.
func WithBuilder(b RequestBuilder) ClientOption {
	return ClientOptionFunc(func(c *Client) error {
		c.Builder = b
		return nil
	})
}

// WithUnmarshaler replaces Client.Unmarshaler.
func WithUnmarshaler(u Unmarshaler) ClientOption {
	return ClientOptionFunc(func(c *Client) error {
		c.Unmarshaler = u
		return nil
	})
}

// Use appends middleware to Client.Middleware.  Middleware
// is invoked in the order added.
func Use(m ...Middleware) ClientOption {
	return ClientOptionFunc(func(c *Client) error {
		c.Middleware = append(c.Middleware, m...)
		return nil
	})
}

// WithHooks appends hooks to Client.Hooks.
func WithHooks(h ...Hooks) ClientOption {
	return ClientOptionFunc(func(c *Client) error {
		c.Hooks = append(c.Hooks, h...)
		return nil
	})
}

// Do implements Doer.  Sends the request using the configured
// Doer and Middleware, without any status checks or decoding.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	doer := c.Doer
	if doer == nil {
		doer = http.DefaultClient
	}
	return Wrap(doer, c.Middleware...).Do(req)
}

// Execute implements Executor.  It builds the request, sends it, checks
// the status and decodes the body into into.  Each step stops the call on
// failure:
//
//  1. building fails: InvalidTarget
//  2. sending fails: TransportFailed, carrying the transport's error
//  3. no response, or no status code: Unknown, carrying ErrNotHTTPResponse
//  4. status outside [200, 300): RequestFailed, carrying the status code
//  5. reading the body fails: TransportFailed
//  6. decoding fails: DecodingFailed, carrying the decoder's error
//
// If into is nil or a *NoContent, the body is read but not decoded.
// Nothing is retried.  All errors are *Error values.
func (c *Client) Execute(ctx context.Context, d Descriptor, into interface{}) error {
	builder := c.Builder
	if builder == nil {
		builder = DefaultBuilder
	}

	req, err := builder.BuildRequest(ctx, d)
	if err != nil {
		return asKind(InvalidTarget, err)
	}

	runBeforeSend(c.Hooks, req)

	resp, body, xerr := c.exchange(req, into)
	err = errOrNil(xerr)
	runAfterReceive(c.Hooks, req, resp, body, err)
	return err
}

// errOrNil keeps a nil *Error from turning into a non-nil error interface.
func errOrNil(err *Error) error {
	if err == nil {
		return nil
	}
	return err
}

func (c *Client) exchange(req *http.Request, into interface{}) (*http.Response, []byte, *Error) {
	resp, err := c.Do(req)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, nil, asKind(TransportFailed, err)
	}

	if resp == nil || resp.StatusCode <= 0 {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, nil, newError(Unknown, ErrNotHTTPResponse)
	}

	// the body of a failed call is only read for the hooks
	body, err := readBody(resp)
	if !IsSuccess(resp.StatusCode) {
		return resp, body, &Error{Kind: RequestFailed, StatusCode: resp.StatusCode}
	}
	if err != nil {
		return resp, body, newError(TransportFailed, err)
	}

	if into == nil {
		return resp, body, nil
	}
	if _, ok := into.(*NoContent); ok {
		return resp, body, nil
	}

	unmarshaler := c.Unmarshaler
	if unmarshaler == nil {
		unmarshaler = DefaultUnmarshaler
	}
	if err := unmarshaler.Unmarshal(body, resp.Header.Get(HeaderContentType), into); err != nil {
		return resp, body, newError(DecodingFailed, err)
	}
	return resp, body, nil
}

// maxBodySizeHint is the largest Content-Length used to pre-size the body
// buffer.  Longer bodies are still read, the buffer just grows as it goes.
const maxBodySizeHint = 1 << 20

func readBody(resp *http.Response) ([]byte, error) {
	if resp.Body == nil {
		return []byte{}, nil
	}

	defer resp.Body.Close()

	// check if we have a content length hint.  Pre-sizing
	// the buffer saves time.  The hint comes from the server, so it is capped.
	cls := resp.Header.Get("Content-Length")
	var cl int64

	if cls != "" {
		cl, _ = strconv.ParseInt(cls, 10, 0)
	}

	if cl <= 0 || cl > maxBodySizeHint {
		body, err := io.ReadAll(resp.Body)
		return body, merry.Prepend(err, "reading response body")
	}

	buf := bytes.Buffer{}
	buf.Grow(int(cl))
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, merry.Prepend(err, "reading response body")
	}
	return buf.Bytes(), nil
}

// Execute executes the endpoint with e and returns the decoded response.
// On failure, the zero value of R and an *Error are returned.
func Execute[R any](ctx context.Context, e Executor, ep Endpoint[R]) (R, error) {
	var r R
	if err := e.Execute(ctx, ep.Descriptor(), &r); err != nil {
		var zero R
		return zero, err
	}
	return r, nil
}
