// Package config loads the settings of apicall clients from the environment,
// an optional .env file and an optional config file.
package config

import (
	"github.com/ThalesGroup/apicall"
	"github.com/ThalesGroup/apicall/httpclient"
	"github.com/ansel1/merry"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"net/http"
	"time"
)

// EnvPrefix prefixes the environment variables read by Load, e.g.
// APICALL_BASE_URL.
const EnvPrefix = "APICALL"

// Transports understood by Config.Transport.
const (
	TransportHTTP  = "http"
	TransportResty = "resty"
)

// Config holds the client configuration.
type Config struct {
	BaseURL        string        `mapstructure:"base_url"`
	LogLevel       string        `mapstructure:"log_level"`
	Transport      string        `mapstructure:"transport"`
	TimeoutSeconds int64         `mapstructure:"timeout_seconds"`
	Timeout        time.Duration `mapstructure:"-"`
	MaxRedirects   int           `mapstructure:"max_redirects"`
	SkipVerify     bool          `mapstructure:"skip_verify"`
	ProxyURL       string        `mapstructure:"proxy_url"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// Load reads the configuration.  Values come from, in increasing priority:
// defaults, the config file at path (if path is not empty), and APICALL_*
// environment variables.  A .env file in the working directory is loaded
// into the environment first, if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("base_url", "https://jsonplaceholder.typicode.com")
	v.SetDefault("log_level", "info")
	v.SetDefault("transport", TransportHTTP)
	v.SetDefault("timeout_seconds", 30)
	v.SetDefault("max_redirects", 10)
	v.SetDefault("skip_verify", false)
	v.SetDefault("proxy_url", "")
	v.SetDefault("user_agent", "apicall")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, merry.Prependf(err, "reading config file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, merry.Prepend(err, "unmarshal config")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.TimeoutSeconds <= 0 {
		return merry.New("invalid timeout_seconds (must be positive seconds)")
	}
	c.Timeout = time.Duration(c.TimeoutSeconds) * time.Second

	switch c.Transport {
	case TransportHTTP, TransportResty:
	default:
		return merry.Errorf("invalid transport %q (must be %q or %q)", c.Transport, TransportHTTP, TransportResty)
	}

	if c.MaxRedirects < 0 {
		return merry.New("invalid max_redirects (must not be negative)")
	}
	return nil
}

// HTTPClient builds the *http.Client described by the configuration.
func (c *Config) HTTPClient() (*http.Client, error) {
	return httpclient.New(
		httpclient.Timeout(c.Timeout),
		httpclient.MaxRedirects(c.MaxRedirects),
		httpclient.SkipVerify(c.SkipVerify),
		httpclient.ProxyURL(c.ProxyURL),
		httpclient.CookieJar(),
	)
}

// ClientOptions returns the apicall client options for the configuration:
// the transport, the User-Agent, and log hooks writing to log.  log may be
// nil.
func (c *Config) ClientOptions(log *zap.Logger) ([]apicall.ClientOption, error) {
	hc, err := c.HTTPClient()
	if err != nil {
		return nil, err
	}

	var doer apicall.Doer = hc
	if c.Transport == TransportResty {
		doer = httpclient.NewResty(hc)
	}

	opts := []apicall.ClientOption{apicall.WithDoer(doer)}
	if c.UserAgent != "" {
		opts = append(opts, apicall.Use(UserAgent(c.UserAgent)))
	}
	if log != nil {
		opts = append(opts, apicall.WithLogger(log))
	}
	return opts, nil
}

// NewClient builds an apicall client from the configuration.
func (c *Config) NewClient(log *zap.Logger) (*apicall.Client, error) {
	opts, err := c.ClientOptions(log)
	if err != nil {
		return nil, err
	}
	return apicall.NewClient(opts...)
}

// UserAgent is middleware which sets the User-Agent header on requests which
// don't already have one.
func UserAgent(ua string) apicall.Middleware {
	return func(next apicall.Doer) apicall.Doer {
		return apicall.DoerFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("User-Agent") == "" {
				req = req.Clone(req.Context())
				req.Header.Set("User-Agent", ua)
			}
			return next.Do(req)
		})
	}
}
