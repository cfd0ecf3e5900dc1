package apicall_test

import (
	"bufio"
	"context"
	"errors"
	"github.com/ThalesGroup/apicall"
	"github.com/ThalesGroup/apicall/apicalltest"
	"github.com/ansel1/merry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net"
	"net/http"
	"path"
	"strconv"
	"sync"
	"testing"
)

type article struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func articleEndpoint(id int) apicall.Endpoint[article] {
	return apicall.MustEndpoint[article](apicall.GET, "https://api.test", "articles/"+strconv.Itoa(id))
}

func TestExecute(t *testing.T) {
	reg := apicalltest.NewRegistry()
	reg.Register("api.test", func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "GET", req.Method)
		assert.Equal(t, "/articles/42", req.URL.Path)
		return apicalltest.NewResponse(200, []byte(`{"id":42,"title":"T"}`), nil), nil
	})

	a, err := apicall.Execute(context.Background(), apicalltest.NewClient(reg), articleEndpoint(42))
	require.NoError(t, err)
	assert.Equal(t, article{ID: 42, Title: "T"}, a)
}

func TestExecute_status(t *testing.T) {
	tests := []struct {
		status  int
		success bool
	}{
		{100, false},
		{199, false},
		{200, true},
		{201, true},
		{204, true},
		{299, true},
		{300, false},
		{304, false},
		{404, false},
		{500, false},
		{503, false},
	}
	for _, test := range tests {
		t.Run(strconv.Itoa(test.status), func(t *testing.T) {
			reg := apicalltest.NewRegistry()
			reg.Register("api.test", apicalltest.Respond(test.status, []byte(`{"id":1}`), nil))

			a, err := apicall.Execute(context.Background(), apicalltest.NewClient(reg), articleEndpoint(1))
			if test.success {
				require.NoError(t, err)
				assert.Equal(t, article{ID: 1}, a)
				return
			}
			require.Error(t, err)
			assert.Zero(t, a)
			assert.Equal(t, apicall.RequestFailed, apicall.KindOf(err))
			assert.Equal(t, test.status, apicall.StatusCode(err))
			assert.Nil(t, errors.Unwrap(err))
		})
	}
}

func TestExecute_requestFailedMatching(t *testing.T) {
	reg := apicalltest.NewRegistry()
	reg.Register("api.test", apicalltest.Respond(404, []byte("not found"), nil))

	_, err := apicall.Execute(context.Background(), apicalltest.NewClient(reg), articleEndpoint(1))
	require.Error(t, err)

	assert.True(t, errors.Is(err, apicall.ErrRequestFailed))
	assert.True(t, errors.Is(err, &apicall.Error{Kind: apicall.RequestFailed, StatusCode: 404}))
	assert.False(t, errors.Is(err, &apicall.Error{Kind: apicall.RequestFailed, StatusCode: 500}))
	assert.False(t, errors.Is(err, apicall.ErrTransportFailed))
	assert.EqualError(t, err, "the request failed with status code 404")

	var e *apicall.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, 404, e.StatusCode)
}

func TestExecute_decodingFailed(t *testing.T) {
	reg := apicalltest.NewRegistry()
	reg.Register("api.test", apicalltest.Respond(200, []byte("not json"), nil))

	a, err := apicall.Execute(context.Background(), apicalltest.NewClient(reg), articleEndpoint(1))
	require.Error(t, err)
	assert.Zero(t, a)
	assert.True(t, errors.Is(err, apicall.ErrDecodingFailed))
	assert.NotNil(t, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestExecute_decoderErrorIsTheCause(t *testing.T) {
	cause := errors.New("bad shape")
	reg := apicalltest.NewRegistry()
	reg.Register("api.test", apicalltest.Respond(200, []byte(`{}`), http.Header{"Content-Type": {"application/vnd.test"}}))

	c := apicalltest.NewClient(reg, apicall.UnmarshalFunc(func(data []byte, contentType string, v interface{}) error {
		assert.Equal(t, "application/vnd.test", contentType)
		assert.Equal(t, "{}", string(data))
		return cause
	}))

	_, err := apicall.Execute(context.Background(), c, articleEndpoint(1))
	require.Error(t, err)
	assert.Equal(t, apicall.DecodingFailed, apicall.KindOf(err))
	assert.Same(t, cause, errors.Unwrap(err))
}

func TestExecute_transportFailed(t *testing.T) {
	cause := errors.New("not connected")
	reg := apicalltest.NewRegistry()
	reg.Register("api.test", apicalltest.Fail(cause))

	a, err := apicall.Execute(context.Background(), apicalltest.NewClient(reg), articleEndpoint(1))
	require.Error(t, err)
	assert.Zero(t, a)
	assert.Equal(t, apicall.TransportFailed, apicall.KindOf(err))
	assert.True(t, errors.Is(err, cause))
	assert.Zero(t, apicall.StatusCode(err))
	assert.EqualError(t, err, "transport failed: not connected")
}

func TestExecute_noHandler(t *testing.T) {
	reg := apicalltest.NewRegistry()
	reg.Register("other.test", apicalltest.Respond(200, nil, nil))

	_, err := apicall.Execute(context.Background(), apicalltest.NewClient(reg), articleEndpoint(1))
	require.Error(t, err)
	assert.Equal(t, apicall.TransportFailed, apicall.KindOf(err))
	assert.True(t, merry.Is(errors.Unwrap(err), apicalltest.ErrNoHandler))
}

func TestExecute_unknown(t *testing.T) {
	tests := map[string]apicall.DoerFunc{
		"no status": func(*http.Request) (*http.Response, error) {
			return &http.Response{Body: http.NoBody}, nil
		},
		"negative status": func(*http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: -1}, nil
		},
		"nil response": func(*http.Request) (*http.Response, error) {
			return nil, nil
		},
	}
	for name, doer := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := apicall.Execute(context.Background(), &apicall.Client{Doer: doer}, articleEndpoint(1))
			require.Error(t, err)
			assert.Equal(t, apicall.Unknown, apicall.KindOf(err))
			assert.True(t, errors.Is(err, apicall.ErrUnknown))
			assert.True(t, errors.Is(err, apicall.ErrNotHTTPResponse))
		})
	}

	reg := apicalltest.NewRegistry()
	reg.Register("api.test", apicalltest.NonHTTP())
	_, err := apicall.Execute(context.Background(), apicalltest.NewClient(reg), articleEndpoint(1))
	assert.Equal(t, apicall.Unknown, apicall.KindOf(err))
}

func TestExecute_invalidTargetSendsNothing(t *testing.T) {
	var sent bool
	c := &apicall.Client{Doer: apicall.DoerFunc(func(*http.Request) (*http.Response, error) {
		sent = true
		return nil, nil
	})}

	ep := apicall.MustEndpoint[article](apicall.GET, "not a url", "articles/1")
	_, err := apicall.Execute(context.Background(), c, ep)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apicall.ErrInvalidTarget))
	assert.False(t, sent)
}

func TestExecute_noContent(t *testing.T) {
	reg := apicalltest.NewRegistry()
	reg.Register("api.test", apicalltest.Respond(200, []byte("not json"), nil))
	c := apicalltest.NewClient(reg)

	ep := apicall.MustEndpoint[apicall.NoContent](apicall.DELETE, "https://api.test", "articles/1")
	_, err := apicall.Execute(context.Background(), c, ep)
	require.NoError(t, err)

	err = c.Execute(context.Background(), ep.Descriptor(), nil)
	require.NoError(t, err)
}

func TestExecute_cancelled(t *testing.T) {
	_, h := apicalltest.ChannelHandler()
	reg := apicalltest.NewRegistry()
	reg.Register("api.test", h)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := apicall.Execute(ctx, apicalltest.NewClient(reg), articleEndpoint(1))
	require.Error(t, err)
	assert.Equal(t, apicall.TransportFailed, apicall.KindOf(err))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestExecute_closesBody(t *testing.T) {
	for _, status := range []int{200, 404} {
		body := &trackingBody{data: []byte(`{"id":1}`)}
		c := &apicall.Client{Doer: apicall.DoerFunc(func(*http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: status, Header: http.Header{}, Body: body}, nil
		})}

		_, _ = apicall.Execute(context.Background(), c, articleEndpoint(1))
		assert.True(t, body.closed, "status %d", status)
	}
}

type trackingBody struct {
	data   []byte
	closed bool
}

func (b *trackingBody) Read(p []byte) (int, error) {
	if len(b.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, b.data)
	b.data = b.data[n:]
	return n, nil
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func TestExecute_concurrent(t *testing.T) {
	reg := apicalltest.NewRegistry()
	reg.Register("api.test", func(req *http.Request) (*http.Response, error) {
		id := path.Base(req.URL.Path)
		return apicalltest.NewResponse(200, []byte(`{"id":`+id+`}`), nil), nil
	})
	c := apicalltest.NewClient(reg)

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			a, err := apicall.Execute(context.Background(), c, articleEndpoint(id))
			assert.NoError(t, err)
			assert.Equal(t, id, a.ID)
		}(i)
	}
	wg.Wait()
}

func TestClient_With(t *testing.T) {
	base := &apicall.Client{}
	require.NoError(t, base.Apply(apicall.Use(apicall.DumpToLog(t.Log))))

	c2, err := base.With(apicall.Use(apicall.DumpToLog(t.Log)), apicall.WithHooks(apicall.Hooks{}))
	require.NoError(t, err)

	assert.Len(t, base.Middleware, 1)
	assert.Empty(t, base.Hooks)
	assert.Len(t, c2.Middleware, 2)
	assert.Len(t, c2.Hooks, 1)
}

func TestNewClient_optionError(t *testing.T) {
	boom := apicall.ClientOptionFunc(func(*apicall.Client) error {
		return errors.New("boom")
	})

	_, err := apicall.NewClient(boom)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	assert.Panics(t, func() {
		apicall.MustNewClient(boom)
	})
}

func TestClient_Do(t *testing.T) {
	reg := apicalltest.NewRegistry()
	reg.Register("api.test", apicalltest.Respond(500, []byte("oops"), nil))
	c := apicalltest.NewClient(reg)

	req, err := http.NewRequest("GET", "https://api.test/raw", nil)
	require.NoError(t, err)

	// Do does no status checks
	resp, err := c.Do(req)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

type failingBody struct{}

func (failingBody) Read([]byte) (int, error) { return 0, errors.New("connection reset") }
func (failingBody) Close() error             { return nil }

func TestExecute_bodyReadFailure(t *testing.T) {
	for status, kind := range map[int]apicall.Kind{200: apicall.TransportFailed, 500: apicall.RequestFailed} {
		c := &apicall.Client{Doer: apicall.DoerFunc(func(*http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: status, Header: http.Header{}, Body: failingBody{}}, nil
		})}

		_, err := apicall.Execute(context.Background(), c, articleEndpoint(1))
		assert.Equal(t, kind, apicall.KindOf(err), "status %d", status)
	}
}

func TestExecute_contentLengthHint(t *testing.T) {
	body := []byte(`{"id":1,"title":"T"}`)
	tests := map[string]string{
		"huge":     "9000000000000000000",
		"exact":    strconv.Itoa(len(body)),
		"negative": "-5",
		"garbage":  "lots",
	}
	for name, cl := range tests {
		t.Run(name, func(t *testing.T) {
			reg := apicalltest.NewRegistry()
			reg.Register("api.test", apicalltest.Respond(200, body, http.Header{"Content-Length": {cl}}))

			var a article
			require.NotPanics(t, func() {
				var err error
				a, err = apicall.Execute(context.Background(), apicalltest.NewClient(reg), articleEndpoint(1))
				require.NoError(t, err)
			})
			assert.Equal(t, article{ID: 1, Title: "T"}, a)
		})
	}
}

func TestExecute_hugeContentLengthOnTheWire(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		if _, err := http.ReadRequest(bufio.NewReader(conn)); err != nil {
			return
		}
		_, _ = io.WriteString(conn, "HTTP/1.1 200 OK\r\nContent-Length: 9000000000000000000\r\n\r\n{\"id\":1}")
	}()

	ep := apicall.MustEndpoint[article](apicall.GET, "http://"+l.Addr().String(), "articles/1")
	require.NotPanics(t, func() {
		_, err = apicall.Execute(context.Background(), &apicall.Client{}, ep)
	})
	// the server hangs up long before the announced length
	require.Error(t, err)
	assert.Equal(t, apicall.TransportFailed, apicall.KindOf(err))
}

func TestExecute_transportErrorNotWrappedTwice(t *testing.T) {
	c := &apicall.Client{Doer: apicall.DoerFunc(func(*http.Request) (*http.Response, error) {
		return nil, &apicall.Error{Kind: apicall.TransportFailed, Err: context.Canceled}
	})}

	_, err := apicall.Execute(context.Background(), c, articleEndpoint(1))
	require.Error(t, err)
	assert.EqualError(t, err, "transport failed: context canceled")
	assert.Equal(t, context.Canceled, errors.Unwrap(err))

	// errors of other kinds are still reported as TransportFailed
	c.Doer = apicall.DoerFunc(func(*http.Request) (*http.Response, error) {
		return nil, &apicall.Error{Kind: apicall.DecodingFailed, Err: io.ErrUnexpectedEOF}
	})
	_, err = apicall.Execute(context.Background(), c, articleEndpoint(1))
	assert.Equal(t, apicall.TransportFailed, apicall.KindOf(err))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}
