package sig

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"

	"github.com/ytsig/sighelperd/pkg/client"
)

// rewriteTransport redirects every request to a local test server
// regardless of the URL's original scheme and host, so Fetcher's
// hardcoded youtube.com URLs can be exercised against httptest.
type rewriteTransport struct {
	target *url.URL
	base   http.RoundTripper
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.URL.Scheme = t.target.Scheme
	clone.URL.Host = t.target.Host
	return t.base.RoundTrip(clone)
}

func fetcherAgainst(t *testing.T, srv *httptest.Server) *Fetcher {
	t.Helper()
	target, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse test server URL: %v", err)
	}
	c := &client.Client{
		HTTPClient: &http.Client{Transport: &rewriteTransport{target: target, base: http.DefaultTransport}},
	}
	return NewFetcherWith(c)
}

func TestFetcher_FetchLanding_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>landing page</html>"))
	}))
	defer srv.Close()

	f := fetcherAgainst(t, srv)
	body, err := f.FetchLanding(context.Background())
	if err != nil {
		t.Fatalf("FetchLanding: %v", err)
	}
	if body != "<html>landing page</html>" {
		t.Fatalf("got %q", body)
	}
}

func TestFetcher_FetchLanding_Gzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write([]byte("gzipped landing page"))
	_ = gz.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f := fetcherAgainst(t, srv)
	body, err := f.FetchLanding(context.Background())
	if err != nil {
		t.Fatalf("FetchLanding: %v", err)
	}
	if body != "gzipped landing page" {
		t.Fatalf("got %q", body)
	}
}

func TestFetcher_FetchPlayer_Brotli(t *testing.T) {
	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	_, _ = bw.Write([]byte("brotli player source"))
	_ = bw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/s/player/") {
			t.Errorf("unexpected request path %q", r.URL.Path)
		}
		w.Header().Set("Content-Encoding", "br")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f := fetcherAgainst(t, srv)
	body, err := f.FetchPlayer(context.Background(), PlayerID(0x1a2b3c4d))
	if err != nil {
		t.Fatalf("FetchPlayer: %v", err)
	}
	if body != "brotli player source" {
		t.Fatalf("got %q", body)
	}
}

func TestFetcher_Get_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := fetcherAgainst(t, srv)
	if _, err := f.FetchLanding(context.Background()); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}

func TestDecodeBody_PlainPassthrough(t *testing.T) {
	resp := &http.Response{
		Header: make(http.Header),
		Body:   httptest.NewRecorder().Result().Body,
	}
	reader, err := decodeBody(resp)
	if err != nil {
		t.Fatalf("decodeBody: %v", err)
	}
	if reader != resp.Body {
		t.Fatal("expected passthrough of the raw body when no Content-Encoding is set")
	}
}

func TestParsePlayerID_Success(t *testing.T) {
	html := `<script src="/s/player/1a2b3c4d/player_ias.vflset/en_US/base.js"></script>`
	id, err := ParsePlayerID(html)
	if err != nil {
		t.Fatalf("ParsePlayerID: %v", err)
	}
	if id != PlayerID(0x1a2b3c4d) {
		t.Fatalf("got %x, want 1a2b3c4d", uint32(id))
	}
}

func TestParsePlayerID_NotFound(t *testing.T) {
	if _, err := ParsePlayerID("no player reference here"); err == nil {
		t.Fatal("expected an error when no player id pattern matches")
	}
}
