package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/JulianoL13/app-config-aggregator/internal/scraper"
)

const githubRawAccept = "application/vnd.github.v3.raw"

var githubRawPattern = regexp.MustCompile(`^https://raw\.githubusercontent\.com/([^/]+)/([^/]+)/([^/]+)/(.+)$`)

type Logger interface {
	Debug(msg string, args ...any)
}

type Options struct {
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
	// GitHubAPI is the API base used when a raw.githubusercontent.com fetch
	// fails. Empty disables the fallback.
	GitHubAPI string
}

// Fetcher implementation for HTTP.
type Fetcher struct {
	client *http.Client
	opts   Options
	logger Logger
}

func New(opts Options, logger Logger) *Fetcher {
	return NewWithClient(&http.Client{Timeout: opts.Timeout}, opts, logger)
}

func NewWithClient(client *http.Client, opts Options, logger Logger) *Fetcher {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 10 * 1024 * 1024
	}
	return &Fetcher{
		client: client,
		opts:   opts,
		logger: logger,
	}
}

// Fetch downloads a source as text. A failed raw GitHub download is retried
// once through the contents API.
func (f *Fetcher) Fetch(ctx context.Context, source scraper.Source) (string, error) {
	text, err := f.get(ctx, source.URL, "")
	if err == nil {
		return text, nil
	}

	apiURL, ok := githubContentsURL(f.opts.GitHubAPI, source.URL)
	if !ok || ctx.Err() != nil {
		return "", err
	}

	f.logger.Debug("raw fetch failed, trying github api", "source", source.Name, "error", err)
	text, apiErr := f.get(ctx, apiURL, githubRawAccept)
	if apiErr != nil {
		return "", errors.Join(err, apiErr)
	}
	return text, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL, accept string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: bad url: %v", scraper.ErrSourceUnavailable, err)
	}
	user := u.User
	u.User = nil

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: bad request: %v", scraper.ErrSourceUnavailable, err)
	}
	if user != nil {
		password, _ := user.Password()
		req.SetBasicAuth(user.Username(), password)
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", scraper.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: bad status: %d", scraper.ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", scraper.ErrSourceUnavailable, err)
	}
	if int64(len(body)) > f.opts.MaxBytes {
		return "", fmt.Errorf("%w: limit %d bytes", scraper.ErrResponseTooLarge, f.opts.MaxBytes)
	}

	return strings.ToValidUTF8(string(body), "�"), nil
}

// githubContentsURL maps raw.githubusercontent.com/<owner>/<repo>/<ref>/<path>
// to <api>/repos/<owner>/<repo>/contents/<path>?ref=<ref>.
func githubContentsURL(apiBase, rawURL string) (string, bool) {
	if apiBase == "" {
		return "", false
	}
	m := githubRawPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	owner, repo, ref, path := m[1], m[2], m[3], m[4]
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		strings.TrimRight(apiBase, "/"), owner, repo, path, url.QueryEscape(ref)), true
}
