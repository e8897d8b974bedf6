package netverifier

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/JulianoL13/app-config-aggregator/internal/verifier"
)

var errNoAddresses = errors.New("no addresses")

type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

type Logger interface {
	Debug(msg string, args ...any)
}

type Options struct {
	Timeout time.Duration
}

type Prober struct {
	dialer   Dialer
	resolver Resolver
	lookups  singleflight.Group
	timeout  time.Duration
	logger   Logger
}

func New(opts Options, logger Logger) *Prober {
	return NewWithDeps(&net.Dialer{}, net.DefaultResolver, opts, logger)
}

func NewWithDeps(dialer Dialer, resolver Resolver, opts Options, logger Logger) *Prober {
	return &Prober{
		dialer:   dialer,
		resolver: resolver,
		timeout:  opts.Timeout,
		logger:   logger,
	}
}

func (p *Prober) Probe(ctx context.Context, t verifier.Target) verifier.ProbeOutput {
	if t.Host == "" || t.Port == 0 {
		return verifier.ProbeOutput{Error: verifier.ErrInvalidEndpoint}
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()

	var err error
	switch t.Method {
	case verifier.MethodDNS:
		err = p.resolve(ctx, t.Host)
	default:
		err = p.dial(ctx, t.Host, t.Port)
	}
	latency := time.Since(start)

	if err != nil {
		p.logger.Debug("endpoint unreachable", "host", t.Host, "port", t.Port, "error", err)
		return verifier.ProbeOutput{
			Latency: latency,
			Error:   fmt.Errorf("%w: %w", verifier.ErrUnreachable, err),
		}
	}

	return verifier.ProbeOutput{Reachable: true, Latency: latency}
}

func (p *Prober) dial(ctx context.Context, host string, port uint16) error {
	conn, err := p.dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(int(port))))
	if err != nil {
		return err
	}
	return conn.Close()
}

// resolve treats IP literals as resolvable. Concurrent lookups of the same
// host share one query.
func (p *Prober) resolve(ctx context.Context, host string) error {
	if _, err := netip.ParseAddr(host); err == nil {
		return nil
	}

	_, err, _ := p.lookups.Do(host, func() (any, error) {
		addrs, err := p.resolver.LookupHost(ctx, host)
		if err != nil {
			return nil, err
		}
		if len(addrs) == 0 {
			return nil, errNoAddresses
		}
		return addrs, nil
	})
	return err
}
