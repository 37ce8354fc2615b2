// Package common provides shared HTTP plumbing.
package common

import (
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/proxy"
)

var (
	globalProxy     string
	globalProxyOnce sync.Once
	globalDialer    proxy.Dialer
)

// SetGlobalProxy sets the SOCKS5 proxy used by all HTTP clients. Some
// beamline networks only reach Google and Dropbox through one.
func SetGlobalProxy(proxyURL string) error {
	if proxyURL == "" {
		return nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return err
	}

	var auth *proxy.Auth
	if u.User != nil {
		password, _ := u.User.Password()
		auth = &proxy.Auth{
			User:     u.User.Username(),
			Password: password,
		}
	}

	dialer, err := proxy.SOCKS5("tcp", u.Host, auth, proxy.Direct)
	if err != nil {
		return err
	}

	globalProxy = proxyURL
	globalDialer = dialer
	return nil
}

// GetGlobalProxy returns the current global proxy URL.
func GetGlobalProxy() string {
	return globalProxy
}

// IsProxyEnabled returns whether a global proxy is configured.
func IsProxyEnabled() bool {
	return globalProxy != "" && globalDialer != nil
}

// NewHTTPClient returns an HTTP client for API calls, routed through the
// global proxy when one is set. Image uploads can take a while, hence the
// generous overall timeout.
func NewHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   15 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if IsProxyEnabled() {
		transport.Dial = globalDialer.Dial
	}

	return &http.Client{
		Transport: transport,
		Timeout:   5 * time.Minute,
	}
}
