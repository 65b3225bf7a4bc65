// Command sighelperd serves YouTube sig/nsig deobfuscation over a framed
// binary protocol on a Unix-domain socket or a TCP listener.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/ytsig/sighelperd/dispatcher"
	"github.com/ytsig/sighelperd/internal/helper"
	"github.com/ytsig/sighelperd/internal/logger"
	"github.com/ytsig/sighelperd/pkg/client"
	"github.com/ytsig/sighelperd/pool"
	"github.com/ytsig/sighelperd/sig"
)

const (
	defaultSockPath = "/tmp/inv_sig_helper.sock"
	defaultSockMode = 0o755
	defaultTCPAddr  = "127.0.0.1:12999"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		tcpMode  = flag.Bool("tcp", false, "listen on TCP instead of a Unix socket")
		testMode = flag.Bool("test", false, "perform one update, print the result, and exit")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [<socket_path> [<octal_mode>]]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s --tcp [<host:port>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s --test\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	configureLogging()
	log := logger.WithComponent(logger.ComponentApp)

	updater := buildUpdater()

	if *testMode {
		if err := updater.FetchUpdate(context.Background()); err != nil && !errors.Is(err, sig.ErrPlayerAlreadyUpdated) {
			fmt.Fprintf(os.Stderr, "update failed: %v\n", err)
			return 1
		}
		fmt.Println("update succeeded")
		return 0
	}

	ctx := context.Background()
	if err := updater.FetchUpdate(ctx); err != nil && !errors.Is(err, sig.ErrPlayerAlreadyUpdated) {
		log.Warn("startup update failed, continuing to accept connections", map[string]interface{}{"error": err.Error()})
	}

	ln, err := buildListener(*tcpMode, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "listen failed: %v\n", err)
		return 1
	}
	defer func() { _ = ln.Close() }()

	p := pool.New(poolSizeFromEnv())
	d := dispatcher.New(p, updater.State(), updater)

	log.Info("listening", map[string]interface{}{"addr": ln.Addr().String()})
	if err := d.Serve(ctx, ln); err != nil {
		fmt.Fprintf(os.Stderr, "serve failed: %v\n", err)
		return 1
	}
	return 0
}

// configureLogging builds the global logger from SIGHELPERD_LOG_* env vars.
// When SIGHELPERD_LOG_OUTPUT points at a file (e.g. "file:/var/log/sighelperd.log"),
// CreateLoggerWithRotation attaches a size/age-rotating writer sized by the
// SIGHELPERD_LOG_ROTATE_* variables (disable with SIGHELPERD_LOG_ROTATE=false).
func configureLogging() {
	cfg := logger.EnvironmentConfig()
	l, err := logger.CreateLoggerWithRotation(cfg)
	if err != nil {
		return
	}
	logger.SetGlobalLogger(l)
}

func poolSizeFromEnv() int {
	v := os.Getenv("SIGHELPERD_POOL_SIZE")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func buildUpdater() *sig.Updater {
	state := sig.NewState()
	updater := sig.NewUpdater(sig.NewFetcher(), state)
	if proxyURL := os.Getenv("SIGHELPERD_HTTP_PROXY"); proxyURL != "" {
		fetcher := sig.NewFetcherWith(client.NewWith(client.Config{ProxyURL: proxyURL}))
		updater = sig.NewUpdater(fetcher, state)
	}

	if !helper.Requested() {
		return updater
	}

	var cache helper.Cache
	ttl := helperCacheTTLFromEnv()
	switch os.Getenv("SIGHELPERD_HELPER_CACHE") {
	case "file":
		dir := os.Getenv("SIGHELPERD_HELPER_CACHE_DIR")
		if dir == "" {
			dir = os.TempDir()
		}
		fc, err := helper.NewFileCache(dir, ttl)
		if err != nil {
			cache = helper.NewMemoryCache(ttl)
		} else {
			cache = fc
		}
	default:
		cache = helper.NewMemoryCache(ttl)
	}

	h := helper.New(os.Getenv("SIGHELPERD_HELPER_SCRIPT_DIR"), cache)
	return updater.WithHelper(h)
}

func helperCacheTTLFromEnv() time.Duration {
	v := os.Getenv("SIGHELPERD_HELPER_CACHE_TTL")
	if v == "" {
		return time.Hour
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return time.Hour
	}
	return d
}

func buildListener(tcpMode bool, args []string) (net.Listener, error) {
	if tcpMode {
		addr := defaultTCPAddr
		if len(args) > 0 {
			addr = args[0]
		}
		return net.Listen("tcp", addr)
	}

	path := defaultSockPath
	if len(args) > 0 {
		path = args[0]
	}
	mode := os.FileMode(defaultSockMode)
	if len(args) > 1 {
		m, err := strconv.ParseUint(args[1], 8, 32)
		if err == nil {
			mode = os.FileMode(m)
		}
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, err
		}
		if rmErr := os.Remove(path); rmErr != nil {
			return nil, err
		}
		ln, err = net.Listen("unix", path)
		if err != nil {
			return nil, err
		}
	}
	if err := os.Chmod(path, mode); err != nil {
		_ = ln.Close()
		return nil, err
	}
	return ln, nil
}
