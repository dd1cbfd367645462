package publicip

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrAllProvidersFailed is returned when no provider yielded an address.
var ErrAllProvidersFailed = errors.New("all ip providers failed")

// ipFields are the payload keys that may carry the address, in order.
var ipFields = []string{"ip", "ipAddress"}

// Provider is a JSON endpoint that reports the caller's address.
type Provider struct {
	Name string
	URL  string
}

// DefaultProviders returns ipify, ipapi.co and ipinfo.io, in that order.
func DefaultProviders() []Provider {
	return []Provider{
		{Name: "ipify", URL: "https://api.ipify.org?format=json"},
		{Name: "ipapi", URL: "https://ipapi.co/json/"},
		{Name: "ipinfo", URL: "https://ipinfo.io/json"},
	}
}

// ParseProvider parses "name=url" or a bare URL, naming the latter by host.
func ParseProvider(spec string) (Provider, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Provider{}, fmt.Errorf("provider must not be empty")
	}
	name, rawURL, found := strings.Cut(spec, "=")
	if !found || isHTTPURL(spec) {
		name, rawURL = "", spec
	}
	name = strings.TrimSpace(name)
	rawURL = strings.TrimSpace(rawURL)
	if !isHTTPURL(rawURL) {
		return Provider{}, fmt.Errorf("provider %q: url must be http(s)", spec)
	}
	if name == "" {
		u, err := url.Parse(rawURL)
		if err != nil {
			return Provider{}, fmt.Errorf("provider %q: %w", spec, err)
		}
		name = u.Host
	}
	return Provider{Name: name, URL: rawURL}, nil
}

// AttemptError records why a single provider failed.
type AttemptError struct {
	Provider string
	Err      error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// Result is a successful resolution.
type Result struct {
	IP       string
	Provider string
}

// Chain tries providers one after another and stops at the first address.
// At most one request is outstanding at a time.
type Chain struct {
	client    *http.Client
	providers []Provider
	timeout   time.Duration
	logf      Logf
}

// NewChain builds a provider chain. A zero timeout leaves each attempt
// bounded only by the client and the caller's context.
func NewChain(client *http.Client, providers []Provider, timeout time.Duration, logf Logf) *Chain {
	if client == nil {
		client = NewHTTPClient()
	}
	return &Chain{
		client:    client,
		providers: append([]Provider(nil), providers...),
		timeout:   timeout,
		logf:      logf,
	}
}

// Providers returns the chain order.
func (c *Chain) Providers() []Provider {
	return append([]Provider(nil), c.providers...)
}

// Resolve walks the providers in order. Transport errors, non-2xx
// responses, undecodable bodies and payloads without an address all move on
// to the next provider.
func (c *Chain) Resolve(ctx context.Context) (Result, error) {
	errs := []error{ErrAllProvidersFailed}
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		ip, err := c.attempt(ctx, p)
		if err != nil {
			c.logf.printf("ip provider %s failed: %v", p.Name, err)
			errs = append(errs, &AttemptError{Provider: p.Name, Err: err})
			continue
		}
		return Result{IP: ip, Provider: p.Name}, nil
	}
	return Result{}, errors.Join(errs...)
}

// Lookup implements Source.
func (c *Chain) Lookup(ctx context.Context) Outcome {
	res, err := c.Resolve(ctx)
	if err != nil {
		return Outcome{Line: NotAvailableLine}
	}
	return Outcome{Line: serverIPPrefix + res.IP, IP: res.IP}
}

func (c *Chain) attempt(ctx context.Context, p Provider) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	var payload map[string]any
	if err := getJSON(ctx, c.client, p.URL, &payload); err != nil {
		return "", err
	}
	return extractIP(payload)
}

func extractIP(payload map[string]any) (string, error) {
	for _, field := range ipFields {
		if v, ok := payload[field].(string); ok {
			if ip := strings.TrimSpace(v); ip != "" {
				return ip, nil
			}
		}
	}
	return "", fmt.Errorf("response has no %s field", strings.Join(ipFields, " or "))
}
