package apicall

import (
	"bytes"
	"encoding/json"
	"go.uber.org/zap"
	"net/http"
	"unicode/utf8"
)

// maxLoggedBody caps how much of a body is logged.
const maxLoggedBody = 4096

// LogHooks returns Hooks which log exchanges to l.  Requests and responses
// are logged at debug level.  Failed calls are logged with the failure kind:
// RequestFailed at warn level, since the server answered, and every other
// kind at error level.
func LogHooks(l *zap.Logger) Hooks {
	if l == nil {
		l = zap.NewNop()
	}
	return Hooks{
		BeforeSend: func(req *http.Request, body []byte) {
			if ce := l.Check(zap.DebugLevel, "request"); ce != nil {
				fields := []zap.Field{
					zap.String("method", req.Method),
					zap.String("url", req.URL.String()),
				}
				if len(req.Header) > 0 {
					fields = append(fields, zap.Any("headers", redact(req.Header)))
				}
				if len(body) > 0 {
					fields = append(fields, zap.String("body", bodyForLog(body)))
				}
				ce.Write(fields...)
			}
		},
		AfterReceive: func(ex Exchange) {
			if ex.Response != nil {
				if ce := l.Check(zap.DebugLevel, "response"); ce != nil {
					fields := []zap.Field{
						zap.Int("status", ex.Response.StatusCode),
						zap.String("url", ex.Request.URL.String()),
					}
					if len(ex.ResponseBody) > 0 {
						fields = append(fields, zap.String("body", bodyForLog(ex.ResponseBody)))
					}
					ce.Write(fields...)
				}
			}
			if ex.Err != nil {
				kind := KindOf(ex.Err)
				lvl := zap.ErrorLevel
				if kind == RequestFailed {
					lvl = zap.WarnLevel
				}
				if ce := l.Check(lvl, "call failed"); ce != nil {
					ce.Write(
						zap.String("method", ex.Request.Method),
						zap.String("url", ex.Request.URL.String()),
						zap.Stringer("kind", kind),
						zap.Error(ex.Err),
					)
				}
			}
		},
	}
}

// WithLogger installs LogHooks(l) in the client.
func WithLogger(l *zap.Logger) ClientOption {
	return LogHooks(l)
}

// bodyForLog pretty prints JSON bodies, and passes other text through.
// Binary bodies are summarized.
func bodyForLog(b []byte) string {
	if len(b) > maxLoggedBody {
		b = b[:maxLoggedBody]
	}
	var buf bytes.Buffer
	if json.Valid(b) && json.Indent(&buf, b, "", "  ") == nil {
		return buf.String()
	}
	if utf8.Valid(b) {
		return string(b)
	}
	return "<binary body>"
}

// redact hides credentials from logged headers.
func redact(h http.Header) http.Header {
	if h.Get(HeaderAuthorization) == "" {
		return h
	}
	h = h.Clone()
	h.Set(HeaderAuthorization, "<redacted>")
	return h
}
