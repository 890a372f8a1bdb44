package types

import (
	"errors"
	"fmt"
	"strings"
)

// Family selects which address of a host gets configured
type Family string

const (
	IPv4 Family = "ipv4"
	IPv6 Family = "ipv6"
)

var (
	// ErrUnsupportedFamily is returned for family selectors other than ipv4/ipv6
	ErrUnsupportedFamily = errors.New("unsupported address family")

	// ErrInvalidTemplate is returned for malformed community:template pairs
	ErrInvalidTemplate = errors.New("invalid template")
)

// ParseFamily converts a family selector into a Family
func ParseFamily(s string) (Family, error) {
	switch f := Family(strings.ToLower(strings.TrimSpace(s))); f {
	case IPv4, IPv6:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFamily, s)
	}
}

// Peer represents one BGP neighbor to configure
type Peer struct {
	ASN       string // Remote AS number as found in the community data
	Host      string // Host key inside the community, used for naming
	Community string // Originating community, used for the template lookup
	Address   string // IP literal (zone-annotated when link-local) or DNS name
	Passive   bool   // Set by the prober only
}

// String returns a human-readable representation of the peer
func (p Peer) String() string {
	return fmt.Sprintf("Peer{Community: %s, Host: %s, Address: %s, ASN: %s, Passive: %v}",
		p.Community, p.Host, p.Address, p.ASN, p.Passive)
}

// IsValid checks if the peer has all required fields
func (p Peer) IsValid() bool {
	return p.ASN != "" && p.Host != "" && p.Address != ""
}

// TemplateMap resolves the peer template of a community, falling back to
// Default for communities without an override.
type TemplateMap struct {
	Default   string
	overrides map[string]string
}

// NewTemplateMap creates a TemplateMap. The overrides map is copied.
func NewTemplateMap(defaultTemplate string, overrides map[string]string) TemplateMap {
	m := TemplateMap{
		Default:   defaultTemplate,
		overrides: make(map[string]string, len(overrides)),
	}
	for community, template := range overrides {
		m.overrides[community] = template
	}
	return m
}

// Lookup returns the template for community
func (m TemplateMap) Lookup(community string) string {
	if template, ok := m.overrides[community]; ok {
		return template
	}
	return m.Default
}

// Validate checks that every template name is usable
func (m TemplateMap) Validate() error {
	if strings.TrimSpace(m.Default) == "" {
		return fmt.Errorf("%w: empty default template", ErrInvalidTemplate)
	}
	for community, template := range m.overrides {
		if strings.TrimSpace(template) == "" {
			return fmt.Errorf("%w: empty template for community %q", ErrInvalidTemplate, community)
		}
	}
	return nil
}

// ParseTemplateOverrides parses "community:template" pairs. Later pairs
// override earlier ones for the same community.
func ParseTemplateOverrides(pairs []string) (map[string]string, error) {
	overrides := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		community, template, ok := strings.Cut(pair, ":")
		community = strings.TrimSpace(community)
		template = strings.TrimSpace(template)
		if !ok || community == "" || template == "" {
			return nil, fmt.Errorf("%w: %q (expected community:template)", ErrInvalidTemplate, pair)
		}
		overrides[community] = template
	}
	return overrides, nil
}
