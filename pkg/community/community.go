// Package community reads per-community peering records.
//
// A community record is a YAML document with (at least) the keys
//
//	asn: 65052
//	bgp:
//	  gw1:
//	    ipv4: 10.207.0.5
//	    ipv6: fec0::a:cf:0:5
//
// Sources return communities ordered by name with excluded names removed.
// A record that cannot be decoded is still returned, with Data set to nil
// and Err describing the problem, so callers can decide to skip it.
package community

import (
	"context"
	"sort"

	"gopkg.in/yaml.v3"
)

// Record is the typed view of one community's data. Keys other than asn
// and bgp are ignored.
type Record struct {
	ASN string                       `yaml:"asn"`
	BGP map[string]map[string]string `yaml:"bgp"`
}

// Peering returns the ASN and the host → family → address table, or
// ok=false when either is missing.
func (r *Record) Peering() (asn string, bgp map[string]map[string]string, ok bool) {
	if r == nil || r.ASN == "" || len(r.BGP) == 0 {
		return "", nil, false
	}
	return r.ASN, r.BGP, true
}

// Community is one (name, data) pair from a Source
type Community struct {
	Name string
	Data *Record // nil when the record could not be decoded
	Err  error   // decode error, if any
}

// Source yields communities in lexicographic name order
type Source interface {
	Communities(ctx context.Context) ([]Community, error)
}

// Decode parses a raw community document. Decode errors leave Data nil.
func Decode(name string, raw []byte) Community {
	var rec Record
	if err := yaml.Unmarshal(raw, &rec); err != nil {
		return Community{Name: name, Err: err}
	}
	return Community{Name: name, Data: &rec}
}

type excludeSet map[string]struct{}

func newExcludeSet(names []string) excludeSet {
	set := make(excludeSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

func (s excludeSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

func sortByName(communities []Community) {
	sort.SliceStable(communities, func(i, j int) bool {
		return communities[i].Name < communities[j].Name
	})
}
