// Package helper implements the optional external-helper fallback: instead
// of extracting and running the player's own obfuscation routines, a
// separate process is shelled out to once per distinct (player id,
// signature) pair, and its output is cached.
package helper

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// EnvUseHelper, when set to "1", requests external-helper mode.
const EnvUseHelper = "USE_YT_DLP"

// Requested reports whether the environment asks for helper mode.
func Requested() bool {
	return os.Getenv(EnvUseHelper) == "1"
}

const (
	probeVideoID = "jNQXAC9IVRw"

	scriptSignatureTimestamp = "yt-dlp_signature_timestamp.py"
	scriptNsigDecoder        = "yt-dlp_nsig_decoder.py"
	scriptSigDecoder         = "yt-dlp_sig_decoder.py"

	playerURLFormat = "https://www.youtube.com/s/player/%08x/player_ias.vflset/en_US/base.js"
)

// Cache stores decoded values keyed by an opaque string the caller builds
// (typically a function of player id and signature).
type Cache interface {
	Get(key string) (string, bool)
	Set(key string, value string)
}

// Client shells out to external scripts to answer the three questions the
// in-process extractor would otherwise answer: the signature timestamp for
// a player, and the decoded nsig/sig value for a given input.
type Client struct {
	scriptDir string
	cache     Cache
}

// New builds a Client that looks for helper scripts under scriptDir and
// caches results in cache. scriptDir may be empty, in which case scripts
// are resolved relative to the running executable.
func New(scriptDir string, cache Cache) *Client {
	return &Client{scriptDir: scriptDir, cache: cache}
}

// ScriptPath resolves a helper script name relative to the configured
// script directory, falling back to a directory named "scripts" next to
// the running executable when none was configured.
func (c *Client) ScriptPath(name string) string {
	if c.scriptDir != "" {
		return filepath.Join(c.scriptDir, name)
	}
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join("scripts", name)
	}
	return filepath.Join(filepath.Dir(exe), "scripts", name)
}

func playerURL(id uint32) string {
	return fmt.Sprintf(playerURLFormat, id)
}

// SignatureTimestamp runs the timestamp helper script for a player id.
func (c *Client) SignatureTimestamp(ctx context.Context, id uint32) (uint64, error) {
	key := fmt.Sprintf("ts:%08x", id)
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			return strconv.ParseUint(v, 10, 64)
		}
	}
	out, err := c.run(ctx, scriptSignatureTimestamp, playerURL(id), probeVideoID)
	if err != nil {
		return 0, err
	}
	ts, err := strconv.ParseUint(out, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("helper returned non-numeric timestamp: %q", out)
	}
	if c.cache != nil {
		c.cache.Set(key, out)
	}
	return ts, nil
}

// DecodeNsig runs the nsig helper script for a given player and signature.
func (c *Client) DecodeNsig(ctx context.Context, id uint32, signature string) (string, error) {
	key := fmt.Sprintf("nsig:%08x:%s", id, signature)
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			return v, nil
		}
	}
	out, err := c.run(ctx, scriptNsigDecoder, playerURL(id), signature, probeVideoID)
	if err != nil {
		return "", err
	}
	if c.cache != nil {
		c.cache.Set(key, out)
	}
	return out, nil
}

// DecodeSig runs the sig helper script for a given player and signature.
func (c *Client) DecodeSig(ctx context.Context, id uint32, signature string) (string, error) {
	key := fmt.Sprintf("sig:%08x:%s", id, signature)
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			return v, nil
		}
	}
	out, err := c.run(ctx, scriptSigDecoder, playerURL(id), signature, probeVideoID)
	if err != nil {
		return "", err
	}
	if c.cache != nil {
		c.cache.Set(key, out)
	}
	return out, nil
}

func (c *Client) run(ctx context.Context, script string, args ...string) (string, error) {
	path := c.ScriptPath(script)
	cmd := exec.CommandContext(ctx, path, args...)
	var stdout strings.Builder
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run %s: %w", script, err)
	}
	scanner := bufio.NewScanner(strings.NewReader(stdout.String()))
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	return "", fmt.Errorf("%s produced no output", script)
}
