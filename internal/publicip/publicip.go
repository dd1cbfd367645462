// Package publicip resolves the host's public IP address for display.
package publicip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	serverIPPrefix   = "Server IP: "
	instanceIPPrefix = "Public IP: "

	// NotAvailableLine is shown when every provider failed.
	NotAvailableLine = serverIPPrefix + "Not Available"
	// InstanceUnavailableLine is shown when instance metadata cannot be read.
	InstanceUnavailableLine = "Unable to load instance info."

	maxBodyBytes   = 64 << 10
	defaultTimeout = 60 * time.Second
)

// Outcome is the footer text a Source produced and, on success, the address
// behind it.
type Outcome struct {
	Line string
	IP   string
}

// OK reports whether an address was resolved.
func (o Outcome) OK() bool {
	return o.IP != ""
}

// Source yields the IP line for the footer. Failures degrade to a
// placeholder line; Lookup never fails.
type Source interface {
	Lookup(ctx context.Context) Outcome
}

// Logf receives diagnostic messages about failed lookups.
type Logf func(format string, args ...any)

func (l Logf) printf(format string, args ...any) {
	if l == nil {
		return
	}
	l(format, args...)
}

// NewHTTPClient returns the client used when none is supplied. Its timeout
// only bounds a whole request; per-attempt limits are set by the caller.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

func getJSON(ctx context.Context, client *http.Client, target string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func isHTTPURL(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}
