package descriptor

import "strings"

// Attributes is implemented by one struct per protocol. Each struct carries
// only the fields its protocol defines.
type Attributes interface {
	Protocol() Protocol
	Routing() Routing
}

// Routing is the protocol-neutral projection used for identity and scoring.
// Path holds the gRPC service name when the transport is grpc. Extra carries
// protocol-specific settings (plugin, obfuscation) that affect identity only.
type Routing struct {
	Network    string
	Security   string
	SNI        string
	HostHeader string
	Path       string
	Flow       string
	Credential string
	Extra      string
}

type VMessAttrs struct {
	ID          string
	AlterID     string
	Cipher      string
	Network     string
	HeaderType  string
	HostHeader  string
	Path        string
	TLS         string
	SNI         string
	ALPN        string
	Fingerprint string
}

func (VMessAttrs) Protocol() Protocol { return VMess }

func (a VMessAttrs) Routing() Routing {
	return Routing{
		Network:    orDefault(a.Network, "tcp"),
		Security:   orDefault(a.TLS, "none"),
		SNI:        a.SNI,
		HostHeader: a.HostHeader,
		Path:       a.Path,
		Credential: a.ID,
	}
}

type VLESSAttrs struct {
	UUID        string
	Network     string
	Security    string
	SNI         string
	HostHeader  string
	Path        string
	ServiceName string
	Flow        string
	Fingerprint string
	PublicKey   string
	ShortID     string
}

func (VLESSAttrs) Protocol() Protocol { return VLESS }

func (a VLESSAttrs) Routing() Routing {
	return Routing{
		Network:    orDefault(a.Network, "tcp"),
		Security:   orDefault(a.Security, "none"),
		SNI:        a.SNI,
		HostHeader: a.HostHeader,
		Path:       pathOrService(a.Network, a.Path, a.ServiceName),
		Flow:       a.Flow,
		Credential: a.UUID,
	}
}

type TrojanAttrs struct {
	Password    string
	Network     string
	Security    string
	SNI         string
	HostHeader  string
	Path        string
	ServiceName string
	Fingerprint string
}

func (TrojanAttrs) Protocol() Protocol { return Trojan }

func (a TrojanAttrs) Routing() Routing {
	return Routing{
		Network:    orDefault(a.Network, "tcp"),
		Security:   orDefault(a.Security, "tls"),
		SNI:        a.SNI,
		HostHeader: a.HostHeader,
		Path:       pathOrService(a.Network, a.Path, a.ServiceName),
		Credential: a.Password,
	}
}

type ShadowsocksAttrs struct {
	Method   string
	Password string
	Plugin   string
}

func (ShadowsocksAttrs) Protocol() Protocol { return Shadowsocks }

func (a ShadowsocksAttrs) Routing() Routing {
	return Routing{
		Network:    "tcp",
		Security:   "none",
		Credential: a.Method + ":" + a.Password,
		Extra:      a.Plugin,
	}
}

type Hysteria2Attrs struct {
	Password     string
	SNI          string
	Obfs         string
	ObfsPassword string
	Insecure     bool
}

func (Hysteria2Attrs) Protocol() Protocol { return Hysteria2 }

func (a Hysteria2Attrs) Routing() Routing {
	return Routing{
		Network:    "quic",
		Security:   "tls",
		SNI:        a.SNI,
		Credential: a.Password,
		Extra:      a.Obfs,
	}
}

type TUICAttrs struct {
	UUID              string
	Password          string
	SNI               string
	CongestionControl string
	ALPN              string
}

func (TUICAttrs) Protocol() Protocol { return TUIC }

func (a TUICAttrs) Routing() Routing {
	return Routing{
		Network:    "quic",
		Security:   "tls",
		SNI:        a.SNI,
		Credential: a.UUID + ":" + a.Password,
	}
}

type HysteriaAttrs struct {
	Auth      string
	SNI       string
	Transport string
	Obfs      string
	UpMbps    string
	DownMbps  string
}

func (HysteriaAttrs) Protocol() Protocol { return Hysteria }

func (a HysteriaAttrs) Routing() Routing {
	network := "quic"
	if strings.EqualFold(a.Transport, "faketcp") {
		network = "faketcp"
	}
	return Routing{
		Network:    network,
		Security:   "tls",
		SNI:        a.SNI,
		Credential: a.Auth,
		Extra:      a.Obfs,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func pathOrService(network, path, service string) string {
	if strings.EqualFold(network, "grpc") && service != "" {
		return service
	}
	return path
}
