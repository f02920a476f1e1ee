package httpclient

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/snapetech/sctv-playlist/internal/safeurl"
)

// maxBodySize caps a single page download; the EPG tables are well under 1 MiB.
const maxBodySize = 32 << 20

// ErrBodyTooLarge is returned instead of a truncated page.
var ErrBodyTooLarge = errors.New("response body exceeds size limit")

// Page is a fetched document. ContentType is the raw response header, which
// may carry the charset the body is encoded in.
type Page struct {
	URL         string
	ContentType string
	Body        []byte
}

// Fetcher performs single-shot GETs against the EPG site. No retries.
type Fetcher struct {
	Client    *http.Client // nil = Default()
	UserAgent string
	Pacer     *HostPacer // nil = unpaced
}

// NewFetcher returns a Fetcher with its own client bounded by timeout.
func NewFetcher(timeout time.Duration, interval time.Duration, userAgent string) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		Client:    WithTimeout(timeout),
		UserAgent: userAgent,
		Pacer:     NewHostPacer(interval),
	}
}

// StatusError is returned by Get for any status outside 2xx.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

// Get fetches rawURL and returns the page with its Content-Encoding undone.
// Any transport error, non-2xx status, unsupported Content-Encoding or body
// over the size limit is an error.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*Page, error) {
	if !safeurl.IsHTTPOrHTTPS(rawURL) {
		return nil, fmt.Errorf("GET %s: only http(s) URLs are fetched", rawURL)
	}
	if err := f.Pacer.Wait(ctx, rawURL); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("GET %s: build request: %w", rawURL, err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	// Setting Accept-Encoding turns off the transport's transparent gzip, so
	// decodeBody handles both encodings.
	req.Header.Set("Accept-Encoding", "gzip, br")

	client := f.Client
	if client == nil {
		client = Default()
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}
	body, err := decodeBody(resp.Header.Get("Content-Encoding"), resp.Body, maxBodySize)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	return &Page{URL: rawURL, ContentType: resp.Header.Get("Content-Type"), Body: body}, nil
}

// Fetch is Get for callers that treat failure as "no data": the error is
// logged with the URL and ok is false.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (page *Page, ok bool) {
	page, err := f.Get(ctx, rawURL)
	if err != nil {
		log.Printf("fetch %s failed: %v", rawURL, err)
		return nil, false
	}
	return page, true
}

func decodeBody(encoding string, r io.Reader, limit int64) ([]byte, error) {
	var dec io.Reader
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		dec = r
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		defer zr.Close()
		dec = zr
	case "br":
		dec = brotli.NewReader(r)
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
	body, err := io.ReadAll(io.LimitReader(dec, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrBodyTooLarge, limit)
	}
	return body, nil
}
