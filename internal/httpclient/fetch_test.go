package httpclient

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
)

const page = "<table><tr><td>1</td></tr></table>"

func TestFetcherGet_plain(t *testing.T) {
	var gotUA, gotAE string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAE = r.Header.Get("Accept-Encoding")
		w.Write([]byte(page))
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, 0, "Mozilla/5.0 test")
	got, err := f.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(got.Body) != page || got.URL != srv.URL {
		t.Errorf("page = %+v", got)
	}
	if !strings.HasPrefix(got.ContentType, "text/html") {
		t.Errorf("ContentType = %q", got.ContentType)
	}
	if gotUA != "Mozilla/5.0 test" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotAE != "gzip, br" {
		t.Errorf("Accept-Encoding = %q", gotAE)
	}
}

func TestFetcherGet_encodings(t *testing.T) {
	var gz, br bytes.Buffer
	zw := gzip.NewWriter(&gz)
	zw.Write([]byte(page))
	zw.Close()
	bw := brotli.NewWriter(&br)
	bw.Write([]byte(page))
	bw.Close()

	tests := []struct {
		name     string
		encoding string
		payload  []byte
	}{
		{"gzip", "gzip", gz.Bytes()},
		{"brotli", "br", br.Bytes()},
		{"identity", "identity", []byte(page)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Encoding", tt.encoding)
				w.Write(tt.payload)
			}))
			defer srv.Close()
			got, err := NewFetcher(5*time.Second, 0, "").Get(context.Background(), srv.URL)
			if err != nil {
				t.Fatal(err)
			}
			if string(got.Body) != page {
				t.Errorf("body = %q", got.Body)
			}
		})
	}
}

func TestFetcherGet_unsupportedEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "zstd")
		w.Write([]byte("x"))
	}))
	defer srv.Close()
	if _, err := NewFetcher(5*time.Second, 0, "").Get(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for zstd body")
	}
}

func TestFetcherGet_status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	_, err := NewFetcher(5*time.Second, 0, "").Get(context.Background(), srv.URL)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if se.Code != http.StatusBadGateway {
		t.Errorf("Code = %d", se.Code)
	}
}

func TestFetcherGet_timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)
	if _, err := NewFetcher(50*time.Millisecond, 0, "").Get(context.Background(), srv.URL); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestFetcherGet_rejectsScheme(t *testing.T) {
	if _, err := NewFetcher(time.Second, 0, "").Get(context.Background(), "file:///etc/passwd"); err == nil {
		t.Fatal("expected error for file:// URL")
	}
}

func TestFetcherFetch_failureIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	got, ok := NewFetcher(5*time.Second, 0, "").Fetch(context.Background(), srv.URL)
	if ok || got != nil {
		t.Errorf("Fetch on 404 = %+v, %v; want nil, false", got, ok)
	}
}

func TestFetcherFetch_ok(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()
	var f Fetcher // zero value uses Default()
	got, ok := f.Fetch(context.Background(), srv.URL)
	if !ok || string(got.Body) != page {
		t.Errorf("Fetch = %+v, %v", got, ok)
	}
}

func TestFetcherGet_contentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=gbk")
		w.Write([]byte(page))
	}))
	defer srv.Close()
	got, err := NewFetcher(5*time.Second, 0, "").Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if got.ContentType != "text/html; charset=gbk" {
		t.Errorf("ContentType = %q", got.ContentType)
	}
}

func TestFetcherGet_any2xx(t *testing.T) {
	for _, code := range []int{http.StatusOK, http.StatusNonAuthoritativeInfo, http.StatusPartialContent} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			w.Write([]byte(page))
		}))
		got, err := NewFetcher(5*time.Second, 0, "").Get(context.Background(), srv.URL)
		srv.Close()
		if err != nil {
			t.Errorf("status %d: %v", code, err)
			continue
		}
		if string(got.Body) != page {
			t.Errorf("status %d: body = %q", code, got.Body)
		}
	}
}

func TestDecodeBody_limit(t *testing.T) {
	body, err := decodeBody("", strings.NewReader("12345678"), 8)
	if err != nil || string(body) != "12345678" {
		t.Errorf("at limit: %q, %v", body, err)
	}
	body, err = decodeBody("", strings.NewReader("123456789"), 8)
	if !errors.Is(err, ErrBodyTooLarge) || body != nil {
		t.Errorf("over limit: %q, %v; want ErrBodyTooLarge", body, err)
	}

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	zw.Write(bytes.Repeat([]byte("a"), 1024))
	zw.Close()
	if _, err := decodeBody("gzip", &gz, 512); !errors.Is(err, ErrBodyTooLarge) {
		t.Errorf("decompressed over limit: %v", err)
	}
}
