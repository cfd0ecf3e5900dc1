package apicall

import (
	"bytes"
	"context"
	"github.com/ansel1/merry"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// RequestBuilder turns a Descriptor into an *http.Request.  Failures must be
// reported as InvalidTarget errors.
type RequestBuilder interface {
	BuildRequest(ctx context.Context, d Descriptor) (*http.Request, error)
}

// BuilderFunc adapts a function to the RequestBuilder interface.
type BuilderFunc func(ctx context.Context, d Descriptor) (*http.Request, error)

// BuildRequest implements RequestBuilder.
func (f BuilderFunc) BuildRequest(ctx context.Context, d Descriptor) (*http.Request, error) {
	return f(ctx, d)
}

// Apply implements ClientOption.
func (f BuilderFunc) Apply(c *Client) error {
	c.Builder = f
	return nil
}

// DefaultBuilder is used by Client if Client.Builder is nil.
// nolint:gochecknoglobals
var DefaultBuilder RequestBuilder = BuilderFunc(BuildRequest)

// BuildRequest is the default RequestBuilder.
//
// The path is appended to the base URL's path with exactly one "/" between
// them.  Paths with ".." segments are rejected, so a path can't climb out of
// the base URL's path.  Query parameters are appended after any query already present in the
// base URL, in order.  The body is sent verbatim, and headers are set in
// sorted key order, so if two keys canonicalize to the same header name, the
// last one in sort order wins.
//
// Building is pure: building the same Descriptor twice yields equal requests.
func BuildRequest(ctx context.Context, d Descriptor) (*http.Request, error) {
	u, err := TargetURL(d)
	if err != nil {
		return nil, err
	}

	method := d.Method
	if method == "" {
		method = GET
	}
	if !method.Valid() {
		return nil, newError(InvalidTarget, merry.Errorf("unsupported method: %q", string(method)))
	}

	var body io.Reader
	if d.Body != nil {
		body = bytes.NewReader(append([]byte{}, d.Body...))
	}

	req, err := http.NewRequestWithContext(ctx, string(method), u.String(), body)
	if err != nil {
		return nil, newError(InvalidTarget, merry.Wrap(err))
	}

	keys := make([]string, 0, len(d.Header))
	for k := range d.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		req.Header.Set(k, d.Header[k])
	}

	return req, nil
}

// TargetURL composes the descriptor's base URL, path and query into the
// request URL.
func TargetURL(d Descriptor) (*url.URL, error) {
	base, err := url.Parse(d.BaseURL)
	if err != nil {
		return nil, newError(InvalidTarget, merry.Prepend(err, "invalid base url"))
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, newError(InvalidTarget, merry.Errorf("base url must be absolute: %q", d.BaseURL))
	}

	u := base
	if d.Path != "" {
		// JoinPath drops paths it can't unescape, and resolves "..", so reject
		// both first
		p, err := url.PathUnescape(d.Path)
		if err != nil {
			return nil, newError(InvalidTarget, merry.Prepend(err, "invalid path"))
		}
		for _, seg := range strings.Split(p, "/") {
			if seg == ".." {
				return nil, newError(InvalidTarget, merry.Errorf("path must not contain \"..\" segments: %q", d.Path))
			}
		}
		u = base.JoinPath(d.Path)
	}

	if len(d.Query) > 0 {
		u.RawQuery = appendQuery(u.RawQuery, d.Query)
	}

	// round trip, to make sure the composed url is resolvable
	if _, err := url.Parse(u.String()); err != nil {
		return nil, newError(InvalidTarget, merry.Prepend(err, "invalid target url"))
	}
	return u, nil
}

func appendQuery(rawQuery string, params []QueryParam) string {
	var sb strings.Builder
	sb.WriteString(rawQuery)
	for _, p := range params {
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.Name))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}
	return sb.String()
}
