package sig

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/ytsig/sighelperd/pkg/client"
)

const (
	// landingVideoID is a long-lived, always-resolvable video used purely
	// to discover the current player release; its content is irrelevant.
	landingVideoID = "jNQXAC9IVRw"
	landingURL     = "https://www.youtube.com/watch?v=" + landingVideoID

	playerURLFormat = "https://www.youtube.com/s/player/%08x/player_ias.vflset/en_US/base.js"
)

// Fetcher retrieves the landing page and player source over HTTP.
type Fetcher struct {
	client *client.Client
}

// NewFetcher builds a Fetcher around a tuned HTTP client.
func NewFetcher() *Fetcher {
	return &Fetcher{client: client.New()}
}

// NewFetcherWith builds a Fetcher around a caller-supplied client, e.g. one
// configured with a proxy or custom timeout.
func NewFetcherWith(c *client.Client) *Fetcher {
	return &Fetcher{client: c}
}

// FetchLanding retrieves the probe video's watch page.
func (f *Fetcher) FetchLanding(ctx context.Context) (string, error) {
	body, err := f.get(ctx, landingURL)
	if err != nil {
		return "", NewError(ErrCodeCannotFetchLanding, "could not fetch landing page", err.Error())
	}
	return body, nil
}

// FetchPlayer retrieves the player JavaScript for the given release.
func (f *Fetcher) FetchPlayer(ctx context.Context, id PlayerID) (string, error) {
	url := fmt.Sprintf(playerURLFormat, uint32(id))
	body, err := f.get(ctx, url)
	if err != nil {
		return "", NewError(ErrCodeCannotFetchPlayerJS, "could not fetch player.js", err.Error())
	}
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	header := make(http.Header)
	header.Set("Accept-Encoding", "gzip, br")

	resp, err := f.client.Get(ctx, url, header)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return "", err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// decodeBody transparently decompresses gzip or brotli response bodies; any
// other (or absent) Content-Encoding is passed through unchanged.
func decodeBody(resp *http.Response) (io.Reader, error) {
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		return gz, nil
	case "br":
		return brotli.NewReader(resp.Body), nil
	default:
		return resp.Body, nil
	}
}

// ParsePlayerID extracts the 8-hex-digit player id from a landing page.
func ParsePlayerID(landingHTML string) (PlayerID, error) {
	m := playerIDPattern.FindStringSubmatch(landingHTML)
	if m == nil {
		return 0, NewError(ErrCodeCannotMatchPlayerID, "player id pattern not found in landing page")
	}
	var id uint32
	if _, err := fmt.Sscanf(m[1], "%08x", &id); err != nil {
		return 0, NewError(ErrCodeCannotMatchPlayerID, "player id not valid hex", m[1])
	}
	return PlayerID(id), nil
}
