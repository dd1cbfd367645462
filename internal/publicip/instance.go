package publicip

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// DefaultInstanceLocation is where instance metadata is served next to the
// page in a typical deployment.
const DefaultInstanceLocation = "http://localhost/instance.json"

var errNoPublicIP = errors.New("instance metadata has no publicIp")

// Metadata is the subset of instance.json shown in the footer.
type Metadata struct {
	PublicIP string `json:"publicIp"`
}

// Instance reads instance metadata from an http(s) URL or a local file.
type Instance struct {
	client   *http.Client
	location string
	logf     Logf
}

// NewInstance builds an instance metadata source. A "file://" prefix or a
// plain path reads from disk.
func NewInstance(client *http.Client, location string, logf Logf) *Instance {
	if client == nil {
		client = NewHTTPClient()
	}
	return &Instance{client: client, location: strings.TrimSpace(location), logf: logf}
}

// Location returns where metadata is read from.
func (s *Instance) Location() string {
	return s.location
}

// Load fetches and decodes the metadata once.
func (s *Instance) Load(ctx context.Context) (Metadata, error) {
	if s.location == "" {
		return Metadata{}, fmt.Errorf("instance location is empty")
	}
	var meta Metadata
	if isHTTPURL(s.location) {
		if err := getJSON(ctx, s.client, s.location, &meta); err != nil {
			return Metadata{}, err
		}
	} else {
		data, err := os.ReadFile(strings.TrimPrefix(s.location, "file://"))
		if err != nil {
			return Metadata{}, fmt.Errorf("failed to read instance metadata: %w", err)
		}
		if err := json.NewDecoder(bytes.NewReader(data)).Decode(&meta); err != nil {
			return Metadata{}, fmt.Errorf("failed to decode instance metadata: %w", err)
		}
	}
	meta.PublicIP = strings.TrimSpace(meta.PublicIP)
	if meta.PublicIP == "" {
		return Metadata{}, errNoPublicIP
	}
	return meta, nil
}

// Lookup implements Source.
func (s *Instance) Lookup(ctx context.Context) Outcome {
	meta, err := s.Load(ctx)
	if err != nil {
		s.logf.printf("error fetching instance info: %v", err)
		return Outcome{Line: InstanceUnavailableLine}
	}
	return Outcome{Line: instanceIPPrefix + meta.PublicIP, IP: meta.PublicIP}
}
