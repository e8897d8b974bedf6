package verifier

import "time"

// Method selects how reachability is established.
type Method int

const (
	// MethodTCP opens and closes a TCP connection to the endpoint.
	MethodTCP Method = iota
	// MethodDNS only resolves the host. Success says nothing about the port
	// and is used for protocols carried over UDP.
	MethodDNS
)

func (m Method) String() string {
	if m == MethodDNS {
		return "dns"
	}
	return "tcp"
}

// Target is one endpoint to probe. Key identifies it in the result map.
type Target struct {
	Key    string
	Host   string
	Port   uint16
	Method Method
}

type ProbeOutput struct {
	Reachable bool
	Latency   time.Duration
	Error     error
}
