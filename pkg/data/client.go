// Package data fetches playlists, probes streams and keeps the latest generated
// playlist in memory.
package data

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

var (
	// ErrUnsupportedProxy is returned for a proxy scheme other than socks5, http or https.
	ErrUnsupportedProxy = errors.New("unsupported proxy scheme")
	// ErrProxyDialer is returned when the SOCKS5 dialer cannot honour contexts.
	ErrProxyDialer = errors.New("proxy dialer missing context support")
)

// UserAgent is sent with every outgoing request.
const UserAgent = "iptv-livegen/1.0"

// NewHTTPClient returns a client with the given timeout. When proxyURL is set,
// requests are routed through it: socks5:// via a SOCKS5 dialer, http(s):// as
// a regular forward proxy.
func NewHTTPClient(timeout time.Duration, proxyURL string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}

		switch u.Scheme {
		case "socks5", "socks5h":
			var auth *proxy.Auth
			if u.User != nil {
				password, _ := u.User.Password()
				auth = &proxy.Auth{User: u.User.Username(), Password: password}
			}
			d, err := proxy.SOCKS5("tcp", u.Host, auth, proxy.Direct)
			if err != nil {
				return nil, fmt.Errorf("proxy dialer: %w", err)
			}
			dc, ok := d.(proxy.ContextDialer)
			if !ok {
				return nil, ErrProxyDialer
			}
			transport.Proxy = nil
			transport.DialContext = dc.DialContext
		case "http", "https":
			transport.Proxy = http.ProxyURL(u)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedProxy, u.Scheme)
		}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}
