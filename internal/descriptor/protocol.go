package descriptor

import "strings"

type Protocol string

const (
	VMess       Protocol = "vmess"
	VLESS       Protocol = "vless"
	Trojan      Protocol = "trojan"
	Shadowsocks Protocol = "ss"
	Hysteria2   Protocol = "hysteria2"
	TUIC        Protocol = "tuic"
	Hysteria    Protocol = "hysteria"
)

// schemes maps every accepted URI scheme to its protocol; hy2 is the short
// spelling of hysteria2.
var schemes = map[string]Protocol{
	"vmess":     VMess,
	"vless":     VLESS,
	"trojan":    Trojan,
	"ss":        Shadowsocks,
	"hysteria2": Hysteria2,
	"hy2":       Hysteria2,
	"tuic":      TUIC,
	"hysteria":  Hysteria,
}

// Protocols lists the supported protocols in a fixed order.
func Protocols() []Protocol {
	return []Protocol{VMess, VLESS, Trojan, Shadowsocks, Hysteria2, TUIC, Hysteria}
}

// ParseScheme resolves a URI scheme, case-insensitively.
func ParseScheme(scheme string) (Protocol, bool) {
	p, ok := schemes[strings.ToLower(scheme)]
	return p, ok
}

// ParseProtocol accepts a protocol name or one of its scheme aliases.
func ParseProtocol(s string) (Protocol, bool) {
	return ParseScheme(strings.TrimSpace(s))
}

// DefaultPort reports the port assumed when a link omits one. Shadowsocks and
// hysteria links must carry an explicit port; vmess always carries one in its
// payload.
func (p Protocol) DefaultPort() (uint16, bool) {
	switch p {
	case VLESS, Trojan, Hysteria2, TUIC:
		return 443, true
	default:
		return 0, false
	}
}

func (p Protocol) String() string {
	return string(p)
}
