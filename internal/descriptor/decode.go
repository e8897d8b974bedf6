package descriptor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Decoder parses raw links and rewrites their display label to a fixed remark.
type Decoder struct {
	remark   string
	fragment string
}

func NewDecoder(remark string) *Decoder {
	return &Decoder{
		remark:   remark,
		fragment: EscapeLabel(remark),
	}
}

// EscapeLabel percent-encodes a label for use as a URI fragment. Only
// unreserved characters are left as is; spaces become %20.
func EscapeLabel(label string) string {
	return strings.ReplaceAll(url.QueryEscape(label), "+", "%20")
}

// Decode parses one raw link. Errors wrap one of the package sentinels.
func (d *Decoder) Decode(raw string) (Descriptor, error) {
	raw = strings.TrimSpace(raw)
	scheme, _, ok := strings.Cut(raw, "://")
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: no scheme", ErrUnsupportedScheme)
	}
	proto, ok := ParseScheme(scheme)
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}

	if proto == VMess {
		return d.decodeVMess(raw, len(scheme)+3)
	}
	return d.decodeURI(proto, raw, len(scheme)+3)
}

func (d *Decoder) decodeVMess(raw string, bodyStart int) (Descriptor, error) {
	payload := raw[bodyStart:]
	if i := strings.IndexByte(payload, '#'); i >= 0 {
		payload = payload[:i]
	}

	decoded, err := DecodeBase64(payload)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: vmess base64: %v", ErrMalformedPayload, err)
	}

	dec := json.NewDecoder(bytes.NewReader(decoded))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return Descriptor{}, fmt.Errorf("%w: vmess json: %v", ErrMalformedPayload, err)
	}
	if fields == nil {
		return Descriptor{}, fmt.Errorf("%w: vmess payload is not an object", ErrMalformedPayload)
	}

	host := jsonString(fields, "add")
	if host == "" {
		host = jsonString(fields, "address")
	}
	host = strings.Trim(host, "[]")
	if host == "" {
		return Descriptor{}, fmt.Errorf("vmess: %w", ErrMissingHost)
	}

	port, err := jsonPort(fields["port"])
	if err != nil {
		return Descriptor{}, fmt.Errorf("vmess: %w", err)
	}

	attrs := VMessAttrs{
		ID:          jsonString(fields, "id"),
		AlterID:     jsonString(fields, "aid"),
		Cipher:      jsonString(fields, "scy"),
		Network:     strings.ToLower(jsonString(fields, "net")),
		HeaderType:  jsonString(fields, "type"),
		HostHeader:  jsonString(fields, "host"),
		Path:        jsonString(fields, "path"),
		TLS:         strings.ToLower(jsonString(fields, "tls")),
		SNI:         jsonString(fields, "sni"),
		ALPN:        jsonString(fields, "alpn"),
		Fingerprint: jsonString(fields, "fp"),
	}

	fields["ps"] = d.remark

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(fields); err != nil {
		return Descriptor{}, fmt.Errorf("%w: vmess re-encode: %v", ErrMalformedPayload, err)
	}

	return Descriptor{
		Protocol: VMess,
		Link:     "vmess://" + base64.RawStdEncoding.EncodeToString(bytes.TrimRight(buf.Bytes(), "\n")),
		Original: raw,
		Endpoint: Endpoint{Host: host, Port: port},
		Attrs:    attrs,
	}, nil
}

// jsonString reads a scalar field as text. Numbers keep their literal form.
func jsonString(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// jsonPort coerces the vmess port field. Port 0 is accepted here and
// penalized later by scoring and probing.
func jsonPort(v any) (uint16, error) {
	var s string
	switch p := v.(type) {
	case json.Number:
		s = p.String()
	case string:
		s = strings.TrimSpace(p)
	case nil:
		return 0, fmt.Errorf("%w: missing", ErrInvalidPort)
	default:
		return 0, fmt.Errorf("%w: unexpected type %T", ErrInvalidPort, v)
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPort, s)
	}
	return uint16(n), nil
}

// uriParts is a link split at its structural delimiters. Prefix is the link up
// to, but excluding, the fragment.
type uriParts struct {
	prefix   string
	userinfo string
	host     string
	port     string
	hasPort  bool
	query    url.Values
}

func splitURI(raw string, bodyStart int) (uriParts, error) {
	var parts uriParts

	prefix := raw
	if i := strings.IndexByte(prefix, '#'); i >= 0 {
		prefix = prefix[:i]
	}
	parts.prefix = prefix

	rest := prefix[bodyStart:]
	rawQuery := ""
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest, rawQuery = rest[:i], rest[i+1:]
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}

	if i := strings.LastIndexByte(rest, '@'); i >= 0 {
		parts.userinfo, rest = rest[:i], rest[i+1:]
	}

	host, port, hasPort, err := splitHostPort(rest)
	if err != nil {
		return uriParts{}, err
	}
	parts.host, parts.port, parts.hasPort = host, port, hasPort

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return uriParts{}, fmt.Errorf("%w: query: %v", ErrMalformedPayload, err)
	}
	parts.query = query

	return parts, nil
}

// splitHostPort separates host and optional port. IPv6 literals must be
// bracketed; a bare literal with several colons is rejected.
func splitHostPort(hostport string) (host, port string, hasPort bool, err error) {
	if strings.HasPrefix(hostport, "[") {
		end := strings.IndexByte(hostport, ']')
		if end < 0 {
			return "", "", false, fmt.Errorf("%w: unterminated ipv6 literal", ErrMalformedPayload)
		}
		host = hostport[1:end]
		after := hostport[end+1:]
		switch {
		case after == "":
		case strings.HasPrefix(after, ":"):
			port, hasPort = after[1:], true
		default:
			return "", "", false, fmt.Errorf("%w: junk after ipv6 literal", ErrMalformedPayload)
		}
	} else {
		switch strings.Count(hostport, ":") {
		case 0:
			host = hostport
		case 1:
			host, port, _ = strings.Cut(hostport, ":")
			hasPort = true
		default:
			return "", "", false, fmt.Errorf("%w: unbracketed ipv6 literal", ErrMalformedPayload)
		}
	}

	if host == "" {
		return "", "", false, ErrMissingHost
	}
	if unescaped, uerr := url.PathUnescape(host); uerr == nil {
		host = unescaped
	}
	return host, port, hasPort, nil
}

func resolvePort(proto Protocol, parts uriParts) (uint16, error) {
	if !parts.hasPort {
		if def, ok := proto.DefaultPort(); ok {
			return def, nil
		}
		return 0, fmt.Errorf("%w: %s requires an explicit port", ErrInvalidPort, proto)
	}
	n, err := strconv.ParseUint(parts.port, 10, 16)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPort, parts.port)
	}
	return uint16(n), nil
}

func (d *Decoder) decodeURI(proto Protocol, raw string, bodyStart int) (Descriptor, error) {
	if proto == Shadowsocks {
		expanded, err := expandShadowsocks(raw, bodyStart)
		if err != nil {
			return Descriptor{}, err
		}
		return d.decodeShadowsocks(raw, expanded, bodyStart)
	}

	parts, err := splitURI(raw, bodyStart)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%s: %w", proto, err)
	}
	port, err := resolvePort(proto, parts)
	if err != nil {
		return Descriptor{}, err
	}

	user, err := url.PathUnescape(parts.userinfo)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: userinfo: %v", ErrMalformedPayload, err)
	}
	q := parts.query

	var attrs Attributes
	switch proto {
	case VLESS:
		if user == "" {
			return Descriptor{}, fmt.Errorf("%w: vless without uuid", ErrMalformedPayload)
		}
		attrs = VLESSAttrs{
			UUID:        user,
			Network:     strings.ToLower(q.Get("type")),
			Security:    strings.ToLower(q.Get("security")),
			SNI:         firstNonEmpty(q.Get("sni"), q.Get("peer")),
			HostHeader:  q.Get("host"),
			Path:        q.Get("path"),
			ServiceName: q.Get("serviceName"),
			Flow:        strings.ToLower(q.Get("flow")),
			Fingerprint: q.Get("fp"),
			PublicKey:   q.Get("pbk"),
			ShortID:     q.Get("sid"),
		}
	case Trojan:
		if user == "" {
			return Descriptor{}, fmt.Errorf("%w: trojan without password", ErrMalformedPayload)
		}
		attrs = TrojanAttrs{
			Password:    user,
			Network:     strings.ToLower(q.Get("type")),
			Security:    strings.ToLower(q.Get("security")),
			SNI:         firstNonEmpty(q.Get("sni"), q.Get("peer")),
			HostHeader:  q.Get("host"),
			Path:        q.Get("path"),
			ServiceName: q.Get("serviceName"),
			Fingerprint: q.Get("fp"),
		}
	case Hysteria2:
		attrs = Hysteria2Attrs{
			Password:     firstNonEmpty(user, q.Get("auth")),
			SNI:          firstNonEmpty(q.Get("sni"), q.Get("peer")),
			Obfs:         q.Get("obfs"),
			ObfsPassword: q.Get("obfs-password"),
			Insecure:     q.Get("insecure") == "1" || strings.EqualFold(q.Get("insecure"), "true"),
		}
	case TUIC:
		uuid, password, _ := strings.Cut(user, ":")
		if uuid == "" {
			return Descriptor{}, fmt.Errorf("%w: tuic without uuid", ErrMalformedPayload)
		}
		attrs = TUICAttrs{
			UUID:              uuid,
			Password:          password,
			SNI:               q.Get("sni"),
			CongestionControl: firstNonEmpty(q.Get("congestion_control"), q.Get("congestion-control")),
			ALPN:              q.Get("alpn"),
		}
	case Hysteria:
		attrs = HysteriaAttrs{
			Auth:      firstNonEmpty(q.Get("auth"), user),
			SNI:       firstNonEmpty(q.Get("peer"), q.Get("sni")),
			Transport: q.Get("protocol"),
			Obfs:      q.Get("obfsParam"),
			UpMbps:    q.Get("upmbps"),
			DownMbps:  q.Get("downmbps"),
		}
	default:
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnsupportedScheme, proto)
	}

	return Descriptor{
		Protocol: proto,
		Link:     parts.prefix + "#" + d.fragment,
		Original: raw,
		Endpoint: Endpoint{Host: parts.host, Port: port},
		Attrs:    attrs,
	}, nil
}

// expandShadowsocks returns the link in userinfo form. The legacy form
// ss://base64(method:password@host:port)#tag is decoded first; the link that
// gets rewritten keeps its original shape either way.
func expandShadowsocks(raw string, bodyStart int) (string, error) {
	body := raw[bodyStart:]
	if i := strings.IndexByte(body, '#'); i >= 0 {
		body = body[:i]
	}
	authority := body
	suffix := ""
	if i := strings.IndexAny(authority, "/?"); i >= 0 {
		authority, suffix = authority[:i], authority[i:]
	}
	if strings.Contains(authority, "@") {
		return raw, nil
	}

	decoded, err := DecodeBase64(authority)
	if err != nil {
		return "", fmt.Errorf("%w: ss base64: %v", ErrMalformedPayload, err)
	}
	inner := strings.TrimSpace(string(decoded))
	if !strings.Contains(inner, "@") {
		return "", fmt.Errorf("%w: ss payload without server", ErrMalformedPayload)
	}
	return raw[:bodyStart] + inner + suffix, nil
}

func (d *Decoder) decodeShadowsocks(raw, expanded string, bodyStart int) (Descriptor, error) {
	parts, err := splitURI(expanded, bodyStart)
	if err != nil {
		return Descriptor{}, fmt.Errorf("ss: %w", err)
	}
	port, err := resolvePort(Shadowsocks, parts)
	if err != nil {
		return Descriptor{}, err
	}

	method, password, err := shadowsocksCredential(parts.userinfo)
	if err != nil {
		return Descriptor{}, err
	}

	prefix := raw
	if i := strings.IndexByte(prefix, '#'); i >= 0 {
		prefix = prefix[:i]
	}

	return Descriptor{
		Protocol: Shadowsocks,
		Link:     prefix + "#" + d.fragment,
		Original: raw,
		Endpoint: Endpoint{Host: parts.host, Port: port},
		Attrs: ShadowsocksAttrs{
			Method:   strings.ToLower(method),
			Password: password,
			Plugin:   parts.query.Get("plugin"),
		},
	}, nil
}

// shadowsocksCredential accepts base64(method:password) or a percent-encoded
// method:password pair.
func shadowsocksCredential(userinfo string) (string, string, error) {
	if userinfo == "" {
		return "", "", fmt.Errorf("%w: ss without credential", ErrMalformedPayload)
	}

	candidate := ""
	if unescaped, err := url.PathUnescape(userinfo); err == nil {
		if LooksLikeBase64(unescaped) {
			if b, err := DecodeBase64(unescaped); err == nil && strings.Contains(string(b), ":") {
				candidate = string(b)
			}
		}
		if candidate == "" {
			candidate = unescaped
		}
	}

	method, password, ok := strings.Cut(candidate, ":")
	if !ok || method == "" || password == "" {
		return "", "", fmt.Errorf("%w: ss credential", ErrMalformedPayload)
	}
	return method, password, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
