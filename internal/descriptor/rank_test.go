package descriptor_test

import (
	"encoding/base64"
	"fmt"
	"math"
	"testing"

	"github.com/JulianoL13/app-config-aggregator/internal/descriptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, dec *descriptor.Decoder, link string) descriptor.Descriptor {
	t.Helper()
	d, err := dec.Decode(link)
	require.NoError(t, err, link)
	return d
}

func TestIdentityKey(t *testing.T) {
	dec := descriptor.NewDecoder(remark)

	t.Run("ignores label and query order", func(t *testing.T) {
		a := mustDecode(t, dec, "vless://u1@example.com:443?type=ws&security=tls#old-label")
		b := mustDecode(t, dec, "vless://u1@EXAMPLE.com.:443?security=tls&type=ws#other-label")
		assert.Equal(t, descriptor.IdentityKey(a), descriptor.IdentityKey(b))
	})

	t.Run("default port equals explicit 443", func(t *testing.T) {
		a := mustDecode(t, dec, "trojan://pw@example.com?security=tls")
		b := mustDecode(t, dec, "trojan://pw@example.com:443?security=tls#x")
		assert.Equal(t, descriptor.IdentityKey(a), descriptor.IdentityKey(b))
	})

	t.Run("canonicalizes ipv6 literals", func(t *testing.T) {
		a := mustDecode(t, dec, "trojan://pw@[2001:DB8:0::1]:443")
		b := mustDecode(t, dec, "trojan://pw@[2001:db8::1]:443")
		assert.Equal(t, descriptor.IdentityKey(a), descriptor.IdentityKey(b))
	})

	t.Run("routing parameters distinguish", func(t *testing.T) {
		base := "vless://u1@example.com:443?type=ws&security=tls&path=/a"
		variants := []string{
			"vless://u2@example.com:443?type=ws&security=tls&path=/a",
			"vless://u1@example.com:8443?type=ws&security=tls&path=/a",
			"vless://u1@example.net:443?type=ws&security=tls&path=/a",
			"vless://u1@example.com:443?type=grpc&security=tls&path=/a",
			"vless://u1@example.com:443?type=ws&security=none&path=/a",
			"vless://u1@example.com:443?type=ws&security=tls&path=/b",
			"vless://u1@example.com:443?type=ws&security=tls&path=/a&sni=x.example.com",
			"vless://u1@example.com:443?type=ws&security=tls&path=/a&flow=xtls-rprx-vision",
			"trojan://u1@example.com:443?type=ws&security=tls&path=/a",
		}

		key := descriptor.IdentityKey(mustDecode(t, dec, base))
		for _, v := range variants {
			assert.NotEqual(t, key, descriptor.IdentityKey(mustDecode(t, dec, v)), v)
		}
	})
}

func TestIdentityKey_SeparatorInValues(t *testing.T) {
	endpoint := descriptor.Endpoint{Host: "example.com", Port: 443}
	a := descriptor.Descriptor{
		Protocol: descriptor.VLESS,
		Endpoint: endpoint,
		Attrs:    descriptor.VLESSAttrs{UUID: "u1", Network: "ws", Path: "/a|x"},
	}
	b := descriptor.Descriptor{
		Protocol: descriptor.VLESS,
		Endpoint: endpoint,
		Attrs:    descriptor.VLESSAttrs{UUID: "u1", Network: "ws", Path: "/a", Flow: "x|"},
	}

	assert.NotEqual(t, descriptor.IdentityKey(a), descriptor.IdentityKey(b))
}

func TestNormalizeHost(t *testing.T) {
	assert.Equal(t, "example.com", descriptor.NormalizeHost("Example.COM."))
	assert.Equal(t, "xn--bcher-kva.example", descriptor.NormalizeHost("bücher.example"))
	assert.Equal(t, "2001:db8::1", descriptor.NormalizeHost("[2001:DB8::1]"))
	assert.Equal(t, "1.2.3.4", descriptor.NormalizeHost("::ffff:1.2.3.4"))
	assert.Equal(t, "under_score.example", descriptor.NormalizeHost("Under_Score.example"))
	assert.Equal(t, "", descriptor.NormalizeHost(" "))
}

func TestScorer_Score(t *testing.T) {
	dec := descriptor.NewDecoder(remark)
	scorer := descriptor.NewScorer(descriptor.DefaultWeights())

	t.Run("adds independent signals", func(t *testing.T) {
		d := mustDecode(t, dec, "vless://u1@example.com:443?type=ws&security=tls&sni=a.example.com&host=cdn.example.com&path=/ws")
		// vless 30 + ws 10 + tls 15 + port 443 15 + sni 3 + host 3 + path 2
		assert.Equal(t, 78, scorer.Score(d))
	})

	t.Run("plain tcp without security", func(t *testing.T) {
		d := mustDecode(t, dec, "vless://u1@example.com:12345")
		// vless 30 + tcp 5 + none 0
		assert.Equal(t, 35, scorer.Score(d))
	})

	t.Run("encrypted beats unencrypted", func(t *testing.T) {
		tls := mustDecode(t, dec, "trojan://pw@example.com:443?security=tls")
		none := mustDecode(t, dec, "trojan://pw@example.com:443?security=none")
		assert.Greater(t, scorer.Score(tls), scorer.Score(none))
	})

	t.Run("risky ports are strongly negative", func(t *testing.T) {
		for _, port := range []int{53, 123, 3389} {
			d := mustDecode(t, dec, fmt.Sprintf("trojan://pw@example.com:%d?security=tls", port))
			assert.Less(t, scorer.Score(d), 0, port)
		}
	})

	t.Run("invalid port is heavily penalized", func(t *testing.T) {
		fields := sampleVMess()
		fields["port"] = 0
		d := mustDecode(t, dec, vmessLink(t, base64.StdEncoding, fields))
		assert.Less(t, scorer.Score(d), -900)
	})

	t.Run("weights are configurable", func(t *testing.T) {
		w := descriptor.DefaultWeights()
		w.Ports[3389] = 0
		custom := descriptor.NewScorer(w)

		d := mustDecode(t, dec, "trojan://pw@example.com:3389?security=tls")
		assert.Greater(t, custom.Score(d), scorer.Score(d))
	})
}

func TestDedupe(t *testing.T) {
	dec := descriptor.NewDecoder(remark)
	scorer := descriptor.NewScorer(descriptor.DefaultWeights())

	t.Run("duplicate labels collapse to one", func(t *testing.T) {
		text := "vless://u1@example.com:443?type=ws&security=tls#old-label\nvless://u1@example.com:443?type=ws&security=tls#other-label"

		var items []descriptor.Descriptor
		for _, link := range descriptor.Extract(text) {
			items = append(items, mustDecode(t, dec, link))
		}
		require.Len(t, items, 2)

		out := descriptor.Dedupe(items, scorer)
		require.Len(t, out, 1)
		assert.Equal(t, "vless://u1@example.com:443?type=ws&security=tls#My%20Remark", out[0].Descriptor.Link)
	})

	t.Run("ties keep the first encountered", func(t *testing.T) {
		first := mustDecode(t, dec, "vless://u1@example.com:443?type=ws&security=tls#first")
		second := mustDecode(t, dec, "vless://u1@example.com:443?security=tls&type=ws#second")

		out := descriptor.Dedupe([]descriptor.Descriptor{first, second}, scorer)
		require.Len(t, out, 1)
		assert.Equal(t, first.Original, out[0].Descriptor.Original)
	})

	t.Run("higher score replaces in place", func(t *testing.T) {
		low := mustDecode(t, dec, "vless://u1@a.example.com:443?type=ws#low")
		other := mustDecode(t, dec, "trojan://pw@b.example.com:443#other")
		high := mustDecode(t, dec, "vless://u1@a.example.com:443?type=ws#high")
		tie := mustDecode(t, dec, "vless://u1@a.example.com:443?type=ws#tie")

		fake := scoreByOriginal{low.Original: 1, other.Original: 5, high.Original: 9, tie.Original: 9}
		out := descriptor.Dedupe([]descriptor.Descriptor{low, other, high, tie}, fake)

		require.Len(t, out, 2)
		assert.Equal(t, high.Original, out[0].Descriptor.Original)
		assert.Equal(t, 9, out[0].Score)
		assert.Equal(t, other.Original, out[1].Descriptor.Original)
	})

	t.Run("score and key are populated", func(t *testing.T) {
		d := mustDecode(t, dec, "vless://u1@example.com:443?type=ws&security=tls")
		out := descriptor.Dedupe([]descriptor.Descriptor{d}, scorer)
		require.Len(t, out, 1)
		assert.Equal(t, descriptor.IdentityKey(d), out[0].Key)
		assert.Equal(t, scorer.Score(d), out[0].Score)
	})
}

func TestSelect(t *testing.T) {
	items := []descriptor.Scored{
		{Score: 10, Key: "a"},
		{Score: 30, Key: "b"},
		{Score: 20, Key: "c"},
		{Score: 30, Key: "d"},
		{Score: -5, Key: "e"},
	}

	keys := func(in []descriptor.Scored) []string {
		out := make([]string, len(in))
		for i, s := range in {
			out[i] = s.Key
		}
		return out
	}

	t.Run("sorts by score, stable on ties", func(t *testing.T) {
		assert.Equal(t, []string{"b", "d", "c", "a", "e"}, keys(descriptor.Select(items, 0)))
	})

	t.Run("truncates to the limit", func(t *testing.T) {
		out := descriptor.Select(items, 3)
		assert.Equal(t, []string{"b", "d", "c"}, keys(out))
	})

	t.Run("limit above size returns everything", func(t *testing.T) {
		assert.Len(t, descriptor.Select(items, 100), len(items))
	})

	t.Run("extreme scores keep their order", func(t *testing.T) {
		extreme := []descriptor.Scored{
			{Score: math.MinInt, Key: "low"},
			{Score: math.MaxInt, Key: "high"},
			{Score: 0, Key: "zero"},
		}
		assert.Equal(t, []string{"high", "zero", "low"}, keys(descriptor.Select(extreme, 0)))
	})

	t.Run("does not modify the input", func(t *testing.T) {
		_ = descriptor.Select(items, 2)
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, keys(items))
	})

	t.Run("emits exactly the top scores", func(t *testing.T) {
		out := descriptor.Select(items, 2)
		for _, s := range out {
			for _, rest := range items {
				if !containsKey(out, rest.Key) {
					assert.GreaterOrEqual(t, s.Score, rest.Score)
				}
			}
		}
	})
}

type scoreByOriginal map[string]int

func (s scoreByOriginal) Score(d descriptor.Descriptor) int {
	return s[d.Original]
}

func containsKey(items []descriptor.Scored, key string) bool {
	for _, s := range items {
		if s.Key == key {
			return true
		}
	}
	return false
}

func TestScored_WithScore(t *testing.T) {
	orig := descriptor.Scored{Score: 10, Key: "k"}
	adjusted := orig.WithScore(3)

	assert.Equal(t, 10, orig.Score)
	assert.Equal(t, 3, adjusted.Score)
	assert.Equal(t, "k", adjusted.Key)
}
