package apicall

import (
	"io"
	"net/http"
	"net/http/httputil"
	"os"
)

// Doer sends one request and returns its response.  It is the transport of
// the pipeline, and is implemented by *http.Client.  Tests substitute
// a DoerFunc or the mock transport in package apicalltest.
//
// Doers make no promises about retries, timeouts or connection reuse.  Those
// are policies of whichever Doer is plugged in.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to implement Doer
type DoerFunc func(req *http.Request) (*http.Response, error)

// Do implements the Doer interface
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Apply implements ClientOption, installing the function as the client's Doer.
func (f DoerFunc) Apply(c *Client) error {
	c.Doer = f
	return nil
}

// Middleware wraps a Doer with additional transport behavior:
//
//	tracing := func(next apicall.Doer) apicall.Doer {
//	    return apicall.DoerFunc(func(req *http.Request) (*http.Response, error) {
//	        req.Header.Set("X-Trace-Id", newTraceID())
//	        return next.Do(req)
//	    })
//	}
//
// Middleware is part of the transport: it may change what is sent and
// received.  Use Hooks to observe exchanges without affecting them.
//
// Middleware is itself a ClientOption:
//
//	c, err := apicall.NewClient(apicall.Middleware(tracing))
type Middleware func(Doer) Doer

// Apply implements ClientOption
func (m Middleware) Apply(c *Client) error {
	c.Middleware = append(c.Middleware, m)
	return nil
}

// Wrap applies a set of middleware to a Doer.  The returned Doer will invoke
// the middleware in the order of the arguments.
func Wrap(d Doer, m ...Middleware) Doer {
	for i := len(m) - 1; i > -1; i-- {
		d = m[i](d)
	}
	return d
}

// Dump dumps requests and responses to a writer.  Just intended for debugging.
func Dump(w io.Writer) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			// each dump goes out in a single Write() so a logger
			// receives it as one entry
			dump, dumperr := httputil.DumpRequestOut(req, true)
			if dumperr != nil {
				io.WriteString(w, "Error dumping request: "+dumperr.Error()+"\n")
			} else {
				io.WriteString(w, string(dump)+"\n")
			}
			resp, err := next.Do(req)
			if resp != nil && resp.StatusCode > 0 {
				dump, dumperr = httputil.DumpResponse(resp, true)
				if dumperr != nil {
					io.WriteString(w, "Error dumping response: "+dumperr.Error()+"\n")
				} else {
					io.WriteString(w, string(dump)+"\n")
				}
			}
			return resp, err
		})
	}
}

// DumpToStdout dumps requests and responses to os.Stdout.
func DumpToStdout() Middleware {
	return Dump(os.Stdout)
}

type logFunc func(a ...interface{})

func (f logFunc) Write(p []byte) (n int, err error) {
	f(string(p))
	return len(p), nil
}

// DumpToLog dumps the request and response to a logging function.
// logf is compatible with fmt.Print(), testing.T.Log, or log.XXX()
// functions.
func DumpToLog(logf func(a ...interface{})) Middleware {
	return Dump(logFunc(logf))
}
