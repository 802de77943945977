package hh

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// NewHTTPClient returns an HTTP client that never follows redirects.
// A non-empty proxyURL routes every request through that proxy; otherwise
// the HTTP_PROXY/HTTPS_PROXY environment applies. A zero timeout uses the
// package default.
func NewHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy url %q", proxyURL)
		}
		tr.Proxy = http.ProxyURL(u)
	} else {
		tr.Proxy = http.ProxyFromEnvironment
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{
		Transport:     tr,
		Timeout:       timeout,
		CheckRedirect: noRedirect,
	}, nil
}

// androidDevices are the device models the official Android app is seen with.
var androidDevices = []string{
	"23053RN02A",
	"23053RN02Y",
	"23053RN02I",
	"23053RN02L",
	"23077RABDC",
}

// DefaultUserAgent generates an Android app user agent with a random
// version, device, OS release and installation UUID. It is generated once
// per installation and persisted.
func DefaultUserAgent() string {
	device := androidDevices[rand.IntN(len(androidDevices))]
	minor := 100 + rand.IntN(51)
	patch := 10000 + rand.IntN(5001)
	android := 11 + rand.IntN(5)
	return fmt.Sprintf("ru.hh.android/7.%d.%d, Device: %s, Android OS: %d (UUID: %s)",
		minor, patch, device, android, uuid.NewString())
}
