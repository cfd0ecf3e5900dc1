package apicalltest

import (
	"bytes"
	"encoding/json"
	"github.com/ThalesGroup/apicall"
	"io"
	"net/http"
	"strconv"
)

// NewResponse creates an *http.Response with the status code, body and
// header, and typical default values for the ProtoXXX fields.  header may be
// nil.
func NewResponse(statusCode int, body []byte, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		Status:        strconv.Itoa(statusCode) + " " + http.StatusText(statusCode),
		StatusCode:    statusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
	}
}

// Respond returns a Handler which always responds with the status code, body
// and header.
func Respond(statusCode int, body []byte, header http.Header) Handler {
	return func(req *http.Request) (*http.Response, error) {
		return NewResponse(statusCode, body, header.Clone()), nil
	}
}

// RespondJSON returns a Handler which responds with v marshaled to JSON.
// Panics if v can't be marshaled.
func RespondJSON(statusCode int, v interface{}) Handler {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return Respond(statusCode, b, http.Header{apicall.HeaderContentType: {apicall.MediaTypeJSON}})
}

// Fail returns a Handler which fails with err, simulating a transport
// failure.
func Fail(err error) Handler {
	return func(*http.Request) (*http.Response, error) {
		return nil, err
	}
}

// NonHTTP returns a Handler whose response carries no status code.
func NonHTTP() Handler {
	return func(*http.Request) (*http.Response, error) {
		return &http.Response{Body: http.NoBody}, nil
	}
}

// ChannelHandler returns a Handler and a channel.  The Handler returns the
// responses sent on the channel, blocking until one is available or the
// request's context is done.
func ChannelHandler() (chan<- *http.Response, Handler) {
	input := make(chan *http.Response, 1)

	return input, func(req *http.Request) (*http.Response, error) {
		select {
		case resp := <-input:
			return resp, nil
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}
}
