package httpclient

import (
	"bytes"
	"github.com/ansel1/merry"
	"github.com/go-resty/resty/v2"
	"io"
	"net/http"
)

// RestyDoer sends requests through a resty client.  It implements
// apicall.Doer.
type RestyDoer struct {
	client *resty.Client
}

// Resty returns a RestyDoer using c.  If c is nil, resty.New() is used.
func Resty(c *resty.Client) *RestyDoer {
	if c == nil {
		c = resty.New()
	}
	return &RestyDoer{client: c}
}

// NewResty returns a RestyDoer whose resty client uses hc as its
// underlying *http.Client.
func NewResty(hc *http.Client) *RestyDoer {
	return Resty(resty.NewWithClient(hc))
}

// Do implements apicall.Doer.  Resty reads the response body itself, so the
// returned response carries a copy of it.
func (r *RestyDoer) Do(req *http.Request) (*http.Response, error) {
	rr := r.client.R().
		SetContext(req.Context()).
		SetHeaderMultiValues(req.Header)

	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, merry.Prepend(err, "reading request body")
		}
		b, err := io.ReadAll(body)
		body.Close()
		if err != nil {
			return nil, merry.Prepend(err, "reading request body")
		}
		rr.SetBody(b)
	} else if req.Body != nil && req.Body != http.NoBody {
		rr.SetBody(req.Body)
	}

	resp, err := rr.Execute(req.Method, req.URL.String())
	if err != nil {
		return nil, err
	}

	raw := resp.RawResponse
	if raw == nil {
		return nil, nil
	}
	out := *raw
	out.Body = io.NopCloser(bytes.NewReader(resp.Body()))
	out.ContentLength = int64(len(resp.Body()))
	out.Request = req
	return &out, nil
}
