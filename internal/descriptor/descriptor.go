package descriptor

import (
	"net"
	"strconv"
)

// Endpoint is the declared server address of a descriptor. Port 0 is only
// possible for vmess payloads and marks the endpoint as invalid.
type Endpoint struct {
	Host string
	Port uint16
}

func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(int(e.Port)))
}

func (e Endpoint) Valid() bool {
	return e.Host != "" && e.Port != 0
}

// Descriptor is one decoded proxy link. Link carries the rewritten wire form
// (label replaced); Original is the string as it was extracted.
type Descriptor struct {
	Protocol Protocol
	Link     string
	Original string
	Endpoint Endpoint
	Attrs    Attributes
}

// Routing returns the attributes that decide identity and score.
func (d Descriptor) Routing() Routing {
	if d.Attrs == nil {
		return Routing{}
	}
	return d.Attrs.Routing()
}

// Scored is a descriptor after deduplication. Values are never modified;
// WithScore returns an adjusted copy.
type Scored struct {
	Score      int
	Key        string
	Descriptor Descriptor
}

func (s Scored) WithScore(score int) Scored {
	s.Score = score
	return s
}
