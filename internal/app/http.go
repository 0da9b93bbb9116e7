package app

import (
	"net"
	"net/http"
	"time"
)

// newArchiveHTTPClient returns an HTTP client for a short sequential crawl of
// one host: a small keep-alive pool and bounded dial/TLS phases. The overall
// per-request deadline is applied by fetch.Client; the wait for response
// headers follows the same timeout so a slow first byte is not cut short.
// A zero timeout leaves the header wait unbounded.
func newArchiveHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          4,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: transport}
}
