package descriptor

import (
	"net/netip"
	"strconv"
	"strings"

	"golang.org/x/net/idna"
)

// IdentityKey is equal for two descriptors exactly when they describe the same
// server with the same routing parameters. The label never contributes. Each
// field is length-prefixed so no field value can imitate a separator.
func IdentityKey(d Descriptor) string {
	r := d.Routing()

	fields := []string{
		string(d.Protocol),
		NormalizeHost(d.Endpoint.Host),
		strconv.Itoa(int(d.Endpoint.Port)),
		strings.ToLower(r.Network),
		strings.ToLower(r.Security),
		NormalizeHost(r.SNI),
		NormalizeHost(r.HostHeader),
		r.Path,
		strings.ToLower(r.Flow),
		r.Credential,
		r.Extra,
	}

	var b strings.Builder
	for _, f := range fields {
		b.WriteString(strconv.Itoa(len(f)))
		b.WriteByte(':')
		b.WriteString(f)
	}
	return b.String()
}

// NormalizeHost lower-cases a host name, converts IDNs to their ASCII form and
// prints IP literals canonically.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(host)
	host = strings.TrimSuffix(strings.Trim(host, "[]"), ".")
	if host == "" {
		return ""
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.Unmap().String()
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return strings.ToLower(ascii)
	}
	return strings.ToLower(host)
}
