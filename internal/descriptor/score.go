package descriptor

import "strings"

// Weights is the additive scoring table. Keys of Protocol, Transport and
// Security are lower-case names; Ports maps a port number to its weight and
// may hold negative entries for ports that are not proxy ports.
type Weights struct {
	Protocol    map[string]int `yaml:"protocol"`
	Transport   map[string]int `yaml:"transport"`
	Security    map[string]int `yaml:"security"`
	Ports       map[int]int    `yaml:"ports"`
	InvalidPort int            `yaml:"invalid_port"`
	SNI         int            `yaml:"sni"`
	HostHeader  int            `yaml:"host_header"`
	Path        int            `yaml:"path"`
}

func DefaultWeights() Weights {
	return Weights{
		Protocol: map[string]int{
			string(VLESS):       30,
			string(Trojan):      28,
			string(VMess):       25,
			string(Hysteria2):   22,
			string(TUIC):        20,
			string(Shadowsocks): 15,
			string(Hysteria):    12,
		},
		Transport: map[string]int{
			"grpc":        12,
			"ws":          10,
			"httpupgrade": 9,
			"xhttp":       9,
			"h2":          8,
			"http":        6,
			"tcp":         5,
			"quic":        4,
			"kcp":         2,
		},
		Security: map[string]int{
			"reality": 20,
			"tls":     15,
			"xtls":    15,
			"none":    0,
		},
		Ports: map[int]int{
			443:  15,
			8443: 10,
			2053: 8,
			2083: 8,
			2087: 8,
			2096: 8,
			2052: 5,
			2082: 5,
			2086: 5,
			2095: 5,
			80:   6,
			8080: 6,
			53:   -50,
			123:  -50,
			3389: -50,
		},
		InvalidPort: -1000,
		SNI:         3,
		HostHeader:  3,
		Path:        2,
	}
}

type Scorer struct {
	weights Weights
}

func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score sums the independent signals of d. Unknown protocols, transports and
// security modes contribute zero.
func (s *Scorer) Score(d Descriptor) int {
	w := s.weights
	r := d.Routing()

	score := w.Protocol[string(d.Protocol)]
	score += w.Transport[strings.ToLower(r.Network)]
	score += w.Security[strings.ToLower(r.Security)]

	if d.Endpoint.Port == 0 {
		score += w.InvalidPort
	} else {
		score += w.Ports[int(d.Endpoint.Port)]
	}

	if r.SNI != "" {
		score += w.SNI
	}
	if r.HostHeader != "" {
		score += w.HostHeader
	}
	if r.Path != "" && r.Path != "/" {
		score += w.Path
	}
	return score
}
