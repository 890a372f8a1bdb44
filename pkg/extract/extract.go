package extract

import (
	"net/netip"
	"sort"

	"github.com/pablomonte/mkbgp/pkg/community"
	"github.com/pablomonte/mkbgp/pkg/types"
)

// DefaultInterface is the zone appended to link-local IPv6 peer addresses
const DefaultInterface = "icvpn"

// Skipped describes a community that contributed no peers
type Skipped struct {
	Community string
	Reason    string
}

// Peers flattens communities into peer records for the given family.
//
// Communities without usable asn/bgp data are skipped and reported in the
// second return value; this is not an error. The result is ordered by
// community (in source order) and then by host name.
func Peers(communities []community.Community, family types.Family, iface string) ([]types.Peer, []Skipped) {
	if iface == "" {
		iface = DefaultInterface
	}

	var (
		peers   []types.Peer
		skipped []Skipped
	)

	for _, c := range communities {
		if c.Err != nil {
			skipped = append(skipped, Skipped{Community: c.Name, Reason: c.Err.Error()})
			continue
		}

		asn, bgp, ok := c.Data.Peering()
		if !ok {
			skipped = append(skipped, Skipped{Community: c.Name, Reason: "missing asn or bgp data"})
			continue
		}

		hosts := make([]string, 0, len(bgp))
		for host := range bgp {
			hosts = append(hosts, host)
		}
		sort.Strings(hosts)

		for _, host := range hosts {
			address, ok := bgp[host][string(family)]
			if !ok || address == "" {
				continue
			}

			peers = append(peers, types.Peer{
				ASN:       asn,
				Host:      host,
				Community: c.Name,
				Address:   ScopeLinkLocal(address, iface),
			})
		}
	}

	return peers, skipped
}

// ScopeLinkLocal appends %iface to link-local IPv6 literals. Anything that
// is not an IP literal (e.g. a DNS name) is returned unchanged, as are
// literals that already carry a zone.
func ScopeLinkLocal(address, iface string) string {
	addr, err := netip.ParseAddr(address)
	if err != nil {
		return address
	}
	if addr.Is6() && !addr.Is4In6() && addr.IsLinkLocalUnicast() && addr.Zone() == "" {
		return address + "%" + iface
	}
	return address
}
