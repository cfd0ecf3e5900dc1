package httpclient

import (
	"crypto/tls"
	"github.com/ansel1/merry"
	"golang.org/x/net/publicsuffix"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

// NoRedirects configures the client to not follow redirects.  The redirect
// response itself is returned, so apicall reports it as RequestFailed.
func NoRedirects() Option {
	return OptionFunc(func(client *http.Client) error {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
		return nil
	})
}

// MaxRedirects configures the max number of redirects the client will follow
// before giving up.  0 means NoRedirects.
func MaxRedirects(max int) Option {
	if max <= 0 {
		return NoRedirects()
	}
	return OptionFunc(func(client *http.Client) error {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= max {
				return merry.Errorf("stopped after max %d requests", len(via))
			}
			return nil
		}
		return nil
	})
}

// CookieJar installs a cookie jar using the public suffix list from
// golang.org/x/net/publicsuffix, so cookies can't be set for whole top
// level domains.
func CookieJar() Option {
	return OptionFunc(func(client *http.Client) error {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return merry.Wrap(err)
		}
		client.Jar = jar
		return nil
	})
}

// ProxyURL will proxy all calls through a single proxy URL.  An empty URL
// leaves the proxy configuration alone.
func ProxyURL(proxyURL string) Option {
	return TransportOption(func(t *http.Transport) error {
		if proxyURL == "" {
			return nil
		}
		u, err := url.Parse(proxyURL)
		if err != nil {
			return merry.Prepend(err, "invalid proxy url")
		}
		t.Proxy = http.ProxyURL(u)
		return nil
	})
}

// Timeout configures the client's Timeout property.  Timed out calls fail
// with apicall's TransportFailed.
func Timeout(d time.Duration) Option {
	return OptionFunc(func(client *http.Client) error {
		client.Timeout = d
		return nil
	})
}

// SkipVerify sets the TLS config's InsecureSkipVerify flag.
func SkipVerify(skip bool) Option {
	return TLSOption(func(c *tls.Config) error {
		// nolint:gosec
		c.InsecureSkipVerify = skip
		return nil
	})
}
