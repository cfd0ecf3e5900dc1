package apicall

import (
	"github.com/ansel1/merry"
)

// QueryParam is a single query parameter.  Query parameters are kept as an
// ordered list, and are encoded in that order.
type QueryParam struct {
	Name  string
	Value string
}

// Descriptor is the untyped description of one API call.
//
// A Descriptor is a plain value: BaseURL and Path are composed into the request
// URL by a RequestBuilder, Query is appended in order, Header is copied into
// the request, and Body is sent verbatim.
type Descriptor struct {
	// BaseURL is an absolute URL: scheme, host, and optionally port and a
	// base path.
	BaseURL string

	// Path is appended to BaseURL's path.
	Path string

	// Method defaults to GET when empty.
	Method Method

	// Header holds request headers.  Keys are unique.
	Header map[string]string

	// Query is appended to the URL in order.
	Query []QueryParam

	// Body is sent as is.  nil means no body.
	Body []byte
}

// Clone returns a deep copy of d.
func (d Descriptor) Clone() Descriptor {
	d2 := d
	if d.Header != nil {
		d2.Header = make(map[string]string, len(d.Header))
		for k, v := range d.Header {
			d2.Header[k] = v
		}
	}
	if d.Query != nil {
		d2.Query = append([]QueryParam(nil), d.Query...)
	}
	if d.Body != nil {
		d2.Body = append([]byte{}, d.Body...)
	}
	return d2
}

// Apply applies options to the descriptor.
func (d *Descriptor) Apply(opts ...Option) error {
	for _, o := range opts {
		if o == nil {
			continue
		}
		err := o.Apply(d)
		if err != nil {
			return merry.Prepend(err, "applying options")
		}
	}
	return nil
}

// Endpoint describes one API call whose response body decodes into R.
//
// Endpoints are immutable values.  Construct them with NewEndpoint,
// MustEndpoint or EndpointOf:
//
//	type Post struct {
//	    ID    int    `json:"id"`
//	    Title string `json:"title"`
//	}
//
//	var getPost = apicall.MustEndpoint[Post](apicall.GET, "https://api.example.com", "posts/42",
//	    apicall.Accept(apicall.MediaTypeJSON),
//	)
//
//	post, err := apicall.Execute(ctx, client, getPost)
//
// Endpoints can be derived from each other with With, which never modifies
// the receiver.
type Endpoint[R any] struct {
	desc Descriptor
}

// NewEndpoint returns an endpoint for the method, base URL and path, with the
// options applied.  The URL is not validated here: that happens when a
// request is built.
func NewEndpoint[R any](method Method, baseURL, path string, opts ...Option) (Endpoint[R], error) {
	d := Descriptor{
		BaseURL: baseURL,
		Path:    path,
		Method:  method,
	}
	if err := d.Apply(opts...); err != nil {
		return Endpoint[R]{}, err
	}
	return Endpoint[R]{desc: d}, nil
}

// MustEndpoint is like NewEndpoint, but panics if an option fails.
func MustEndpoint[R any](method Method, baseURL, path string, opts ...Option) Endpoint[R] {
	e, err := NewEndpoint[R](method, baseURL, path, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// EndpointOf binds a copy of the descriptor to the response type R.
func EndpointOf[R any](d Descriptor) Endpoint[R] {
	return Endpoint[R]{desc: d.Clone()}
}

// Descriptor returns a copy of the endpoint's descriptor.  Changing the copy
// does not affect the endpoint.
func (e Endpoint[R]) Descriptor() Descriptor {
	return e.desc.Clone()
}

// With returns a new endpoint with the options applied to a copy of
// this endpoint's descriptor.
func (e Endpoint[R]) With(opts ...Option) (Endpoint[R], error) {
	d := e.desc.Clone()
	if err := d.Apply(opts...); err != nil {
		return Endpoint[R]{}, err
	}
	return Endpoint[R]{desc: d}, nil
}

// BaseURL returns the endpoint's base URL.
func (e Endpoint[R]) BaseURL() string { return e.desc.BaseURL }

// Path returns the endpoint's path.
func (e Endpoint[R]) Path() string { return e.desc.Path }

// Method returns the endpoint's method.
func (e Endpoint[R]) Method() Method { return e.desc.Method }
