package apicall

import (
	"io"
	"net/http"
	"sync"
)

// Exchange is a snapshot of one call, handed to Hooks.AfterReceive.
//
// Request and Response are copies: their bodies are replaced by
// http.NoBody, and the body bytes are in RequestBody and ResponseBody.
// Response is nil if the transport failed or returned no HTTP response.
// Err is nil on success, or the *Error returned to the caller.
type Exchange struct {
	Request      *http.Request
	RequestBody  []byte
	Response     *http.Response
	ResponseBody []byte
	Err          error
}

// Hooks observe calls made by a Client.  Either function may be nil.
//
// Hooks receive copies of the request and response, and have no way to
// change what is sent, what is returned, or whether the call fails.
type Hooks struct {
	// BeforeSend is called just before the request is handed to the Doer.
	BeforeSend func(req *http.Request, body []byte)

	// AfterReceive is called once the outcome of the call is known, after
	// the status check and decoding.  It is not called if the request could
	// not be built.
	AfterReceive func(ex Exchange)
}

// Apply implements ClientOption.
func (h Hooks) Apply(c *Client) error {
	c.Hooks = append(c.Hooks, h)
	return nil
}

func runBeforeSend(hooks []Hooks, req *http.Request) {
	if len(hooks) == 0 {
		return
	}
	body := requestBody(req)
	for _, h := range hooks {
		if h.BeforeSend != nil {
			h.BeforeSend(snapshotRequest(req), copyBytes(body))
		}
	}
}

func runAfterReceive(hooks []Hooks, req *http.Request, resp *http.Response, respBody []byte, err error) {
	if len(hooks) == 0 {
		return
	}
	reqBody := requestBody(req)
	for _, h := range hooks {
		if h.AfterReceive != nil {
			h.AfterReceive(Exchange{
				Request:      snapshotRequest(req),
				RequestBody:  copyBytes(reqBody),
				Response:     snapshotResponse(resp),
				ResponseBody: copyBytes(respBody),
				Err:          err,
			})
		}
	}
}

// requestBody reads the body through GetBody, leaving req.Body untouched.
func requestBody(req *http.Request) []byte {
	if req.GetBody == nil {
		return nil
	}
	rc, err := req.GetBody()
	if err != nil || rc == nil {
		return nil
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	return b
}

func snapshotRequest(req *http.Request) *http.Request {
	r := req.Clone(req.Context())
	r.Body = http.NoBody
	r.GetBody = nil
	return r
}

func snapshotResponse(resp *http.Response) *http.Response {
	if resp == nil {
		return nil
	}
	r := *resp
	r.Header = resp.Header.Clone()
	r.Body = http.NoBody
	return &r
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}

// Inspector is a ClientOption which captures exchanges.
// It's useful for inspecting the contents of exchanges in tests.
//
// It keeps every exchange in memory, so it should not be used in production
// code or benchmarks.
type Inspector struct {
	mu        sync.Mutex
	exchanges []Exchange
}

// Apply implements ClientOption
func (i *Inspector) Apply(c *Client) error {
	return i.Hooks().Apply(c)
}

// Hooks returns the hooks which feed the inspector.
func (i *Inspector) Hooks() Hooks {
	return Hooks{
		AfterReceive: func(ex Exchange) {
			i.mu.Lock()
			defer i.mu.Unlock()
			i.exchanges = append(i.exchanges, ex)
		},
	}
}

// LastExchange returns the most recent exchange, or nil.
func (i *Inspector) LastExchange() *Exchange {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.exchanges) == 0 {
		return nil
	}
	ex := i.exchanges[len(i.exchanges)-1]
	return &ex
}

// Exchanges returns all captured exchanges, oldest first.
func (i *Inspector) Exchanges() []Exchange {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]Exchange(nil), i.exchanges...)
}

// Clear discards the captured exchanges.
func (i *Inspector) Clear() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.exchanges = nil
}
