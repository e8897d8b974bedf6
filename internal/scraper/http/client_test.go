package httpclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JulianoL13/app-config-aggregator/internal/scraper"
	httpclient "github.com/JulianoL13/app-config-aggregator/internal/scraper/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct{}

func (testLogger) Debug(msg string, args ...any) {}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func textResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestFetcher_Fetch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns body and sends headers", func(t *testing.T) {
		var gotUA, gotUser, gotPass string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.UserAgent()
			gotUser, gotPass, _ = r.BasicAuth()
			_, _ = io.WriteString(w, "vless://u@h:443#a\n")
		}))
		defer srv.Close()

		f := httpclient.New(httpclient.Options{Timeout: 5 * time.Second, UserAgent: "agg-test/1.0"}, testLogger{})
		authURL := strings.Replace(srv.URL, "http://", "http://alice:s3cret@", 1)

		text, err := f.Fetch(ctx, scraper.Source{Name: "test", URL: authURL + "/sub.txt"})
		require.NoError(t, err)
		assert.Equal(t, "vless://u@h:443#a\n", text)
		assert.Equal(t, "agg-test/1.0", gotUA)
		assert.Equal(t, "alice", gotUser)
		assert.Equal(t, "s3cret", gotPass)
	})

	t.Run("non-success status is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer srv.Close()

		f := httpclient.New(httpclient.Options{Timeout: 5 * time.Second}, testLogger{})
		_, err := f.Fetch(ctx, scraper.Source{Name: "test", URL: srv.URL})
		assert.ErrorIs(t, err, scraper.ErrSourceUnavailable)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("rejects oversized bodies", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, strings.Repeat("x", 2048))
		}))
		defer srv.Close()

		f := httpclient.New(httpclient.Options{Timeout: 5 * time.Second, MaxBytes: 1024}, testLogger{})
		_, err := f.Fetch(ctx, scraper.Source{Name: "test", URL: srv.URL})
		assert.ErrorIs(t, err, scraper.ErrResponseTooLarge)
	})

	t.Run("times out", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		f := httpclient.New(httpclient.Options{Timeout: 50 * time.Millisecond}, testLogger{})
		_, err := f.Fetch(ctx, scraper.Source{Name: "test", URL: srv.URL})
		assert.ErrorIs(t, err, scraper.ErrSourceUnavailable)
	})
}

func TestFetcher_GitHubFallback(t *testing.T) {
	ctx := context.Background()
	const rawURL = "https://raw.githubusercontent.com/owner/repo/main/subs/all.txt"

	t.Run("retries through the contents api", func(t *testing.T) {
		var requested []string
		var accept string
		client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			requested = append(requested, r.URL.String())
			if r.URL.Host == "raw.githubusercontent.com" {
				return textResponse(http.StatusTooManyRequests, "slow down"), nil
			}
			accept = r.Header.Get("Accept")
			return textResponse(http.StatusOK, "trojan://pw@h:443#b"), nil
		})}

		f := httpclient.NewWithClient(client, httpclient.Options{GitHubAPI: "https://api.example.test/"}, testLogger{})
		text, err := f.Fetch(ctx, scraper.Source{Name: "gh", URL: rawURL})
		require.NoError(t, err)

		assert.Equal(t, "trojan://pw@h:443#b", text)
		assert.Equal(t, []string{
			rawURL,
			"https://api.example.test/repos/owner/repo/contents/subs/all.txt?ref=main",
		}, requested)
		assert.Equal(t, "application/vnd.github.v3.raw", accept)
	})

	t.Run("reports both failures", func(t *testing.T) {
		client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return textResponse(http.StatusBadGateway, ""), nil
		})}

		f := httpclient.NewWithClient(client, httpclient.Options{GitHubAPI: "https://api.example.test"}, testLogger{})
		_, err := f.Fetch(ctx, scraper.Source{Name: "gh", URL: rawURL})
		assert.ErrorIs(t, err, scraper.ErrSourceUnavailable)
	})

	t.Run("no fallback for other hosts", func(t *testing.T) {
		calls := 0
		client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls++
			return textResponse(http.StatusInternalServerError, ""), nil
		})}

		f := httpclient.NewWithClient(client, httpclient.Options{GitHubAPI: "https://api.example.test"}, testLogger{})
		_, err := f.Fetch(ctx, scraper.Source{Name: "x", URL: "https://example.com/sub.txt"})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}
