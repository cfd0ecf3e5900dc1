package apicall

import (
	"encoding/base64"
	"github.com/ansel1/merry"
	goquery "github.com/google/go-querystring/query"
	"sort"
)

// Option configures a Descriptor.  Options are passed to NewEndpoint,
// MustEndpoint and Endpoint.With.
type Option interface {

	// Apply modifies the Descriptor argument.  The Descriptor pointer will never be nil.
	// Returning an error will stop applying the rest of the Options, and the error
	// will float up to the original caller.
	Apply(*Descriptor) error
}

// OptionFunc adapts a function to the Option interface.
type OptionFunc func(*Descriptor) error

// Apply implements Option.
func (f OptionFunc) Apply(d *Descriptor) error {
	return f(d)
}

// Header sets a header value.  Setting the same key again replaces the value.
func Header(key, value string) Option {
	return OptionFunc(func(d *Descriptor) error {
		if d.Header == nil {
			d.Header = map[string]string{}
		}
		d.Header[key] = value
		return nil
	})
}

// Headers sets several header values.
func Headers(h map[string]string) Option {
	return OptionFunc(func(d *Descriptor) error {
		if d.Header == nil {
			d.Header = make(map[string]string, len(h))
		}
		for k, v := range h {
			d.Header[k] = v
		}
		return nil
	})
}

// DeleteHeader removes a header key.
func DeleteHeader(key string) Option {
	return OptionFunc(func(d *Descriptor) error {
		delete(d.Header, key)
		return nil
	})
}

// Accept sets the Accept header.
func Accept(accept string) Option {
	return Header(HeaderAccept, accept)
}

// ContentType sets the Content-Type header.
func ContentType(contentType string) Option {
	return Header(HeaderContentType, contentType)
}

// BasicAuth sets the Authorization header to "Basic <encoded username and password>".
// If username and password are empty, it deletes the Authorization header.
func BasicAuth(username, password string) Option {
	if username == "" && password == "" {
		return DeleteHeader(HeaderAuthorization)
	}
	auth := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return Header(HeaderAuthorization, "Basic "+auth)
}

// BearerAuth sets the Authorization header to "Bearer <token>".
// If the token is empty, it deletes the Authorization header.
func BearerAuth(token string) Option {
	if token == "" {
		return DeleteHeader(HeaderAuthorization)
	}
	return Header(HeaderAuthorization, "Bearer "+token)
}

// Query appends a query parameter.  Parameters are encoded in the order
// they are added, and repeated names are allowed.
func Query(name, value string) Option {
	return OptionFunc(func(d *Descriptor) error {
		d.Query = append(d.Query, QueryParam{Name: name, Value: value})
		return nil
	})
}

// QueryStruct appends the query parameters encoded from a struct, using
// the github.com/google/go-querystring/query package.  Structs should tag
// their members with the "url" tag, e.g.:
//
//	type ListParams struct {
//	    Page  int    `url:"page"`
//	    Color string `url:"color,omitempty"`
//	}
//
// Since structs have no inherent parameter order, the parameters are appended
// sorted by name.
func QueryStruct(v interface{}) Option {
	return OptionFunc(func(d *Descriptor) error {
		values, err := goquery.Values(v)
		if err != nil {
			return merry.Prepend(err, "invalid query struct")
		}
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			for _, value := range values[name] {
				d.Query = append(d.Query, QueryParam{Name: name, Value: value})
			}
		}
		return nil
	})
}

// Body sets the raw request body.
func Body(b []byte) Option {
	return OptionFunc(func(d *Descriptor) error {
		d.Body = b
		return nil
	})
}

// MarshalBody marshals v with m into the request body.  The Content-Type
// header is set from the marshaler, unless it is already set.
func MarshalBody(m Marshaler, v interface{}) Option {
	return OptionFunc(func(d *Descriptor) error {
		b, ct, err := m.Marshal(v)
		if err != nil {
			return merry.Prepend(err, "marshaling body")
		}
		d.Body = b
		if ct != "" {
			if _, ok := d.Header[HeaderContentType]; !ok {
				return Header(HeaderContentType, ct).Apply(d)
			}
		}
		return nil
	})
}

// JSONBody marshals v into a JSON request body.
func JSONBody(v interface{}) Option {
	return MarshalBody(&JSONMarshaler{}, v)
}

// XMLBody marshals v into an XML request body.
func XMLBody(v interface{}) Option {
	return MarshalBody(&XMLMarshaler{}, v)
}

// FormBody marshals v into a form-urlencoded request body.  See FormMarshaler
// for the supported types.
func FormBody(v interface{}) Option {
	return MarshalBody(&FormMarshaler{}, v)
}
