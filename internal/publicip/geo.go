package publicip

import (
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// Annotator describes an address using a local GeoLite2 database. Both the
// ASN and the Country editions are accepted; whichever lookups the database
// supports contribute to the annotation.
type Annotator struct {
	db *geoip2.Reader
}

// OpenAnnotator opens a GeoLite2 .mmdb file.
func OpenAnnotator(path string) (*Annotator, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database: %w", err)
	}
	return &Annotator{db: db}, nil
}

// Close releases the database. Safe on a nil Annotator.
func (a *Annotator) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Annotate returns e.g. "AS13335 Cloudflare, Inc. · US", or "" when nothing
// is known about ip.
func (a *Annotator) Annotate(ip string) string {
	if a == nil || a.db == nil {
		return ""
	}
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return ""
	}
	var parts []string
	if rec, err := a.db.ASN(parsed); err == nil && rec != nil && rec.AutonomousSystemNumber != 0 {
		asn := fmt.Sprintf("AS%d", rec.AutonomousSystemNumber)
		if org := strings.TrimSpace(rec.AutonomousSystemOrganization); org != "" {
			asn += " " + org
		}
		parts = append(parts, asn)
	}
	if rec, err := a.db.Country(parsed); err == nil && rec != nil && rec.Country.IsoCode != "" {
		parts = append(parts, rec.Country.IsoCode)
	}
	return strings.Join(parts, " · ")
}
