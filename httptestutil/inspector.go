package httptestutil

import (
	"bytes"
	"github.com/felixge/httpsnoop"
	"io"
	"net/http"
	"sync"
)

// Exchange is what the server saw of one exchange: the incoming request and
// its body, and the status, header and body it wrote back.
type Exchange struct {
	Request     *http.Request
	RequestBody []byte

	StatusCode   int
	Header       http.Header
	ResponseBody []byte
}

// Inspector is server-side middleware which records every exchange handled
// by the wrapped handler.
type Inspector struct {
	mu        sync.Mutex
	exchanges []Exchange
}

// Wrap returns next, wrapped so its exchanges are recorded.
func (in *Inspector) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ex := Exchange{Request: r}
		if r.Body != nil && r.Body != http.NoBody {
			b, err := io.ReadAll(r.Body)
			if err != nil {
				panic(err)
			}
			_ = r.Body.Close()
			ex.RequestBody = b
			r.Body = io.NopCloser(bytes.NewReader(b))
		}

		var respBody bytes.Buffer
		header := func(code int) {
			if ex.StatusCode != 0 {
				return
			}
			ex.StatusCode = code
			ex.Header = w.Header().Clone()
		}

		sw := httpsnoop.Wrap(w, httpsnoop.Hooks{
			WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
				return func(code int) {
					header(code)
					next(code)
				}
			},
			Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
				return func(b []byte) (int, error) {
					header(http.StatusOK)
					respBody.Write(b)
					return next(b)
				}
			},
			ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
				return func(src io.Reader) (int64, error) {
					header(http.StatusOK)
					return next(io.TeeReader(src, &respBody))
				}
			},
		})

		next.ServeHTTP(sw, r)

		// a handler which writes nothing still sends a 200
		header(http.StatusOK)
		ex.ResponseBody = respBody.Bytes()

		in.mu.Lock()
		in.exchanges = append(in.exchanges, ex)
		in.mu.Unlock()
	})
}

// Exchanges returns the recorded exchanges, oldest first.
func (in *Inspector) Exchanges() []Exchange {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]Exchange(nil), in.exchanges...)
}

// LastExchange returns the most recent exchange, or nil if there is none.
func (in *Inspector) LastExchange() *Exchange {
	in.mu.Lock()
	defer in.mu.Unlock()
	if len(in.exchanges) == 0 {
		return nil
	}
	ex := in.exchanges[len(in.exchanges)-1]
	return &ex
}

// Len returns the number of recorded exchanges.
func (in *Inspector) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.exchanges)
}

// Clear discards the recorded exchanges.
func (in *Inspector) Clear() {
	if in == nil {
		return
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.exchanges = nil
}
