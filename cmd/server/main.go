// Command server starts the demoshelf HTTP service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"demoshelf/internal/api"
	"demoshelf/internal/auth"
	"demoshelf/internal/library"
	"demoshelf/internal/netguard"
	"demoshelf/internal/observability/logging"
	"demoshelf/internal/observability/metrics"
	"demoshelf/internal/server"
	"demoshelf/internal/watch"
	"demoshelf/web"
)

func main() {
	addr := flag.String("addr", "", "HTTP listen address")
	musicDir := flag.String("music-dir", "", "path to the music root directory")
	dataDir := flag.String("data-dir", "", "path to the directory holding the credential record")
	trustProxy := flag.Bool("trust-proxy", false, "trust X-Forwarded-For/X-Real-IP when classifying request origins")
	tlsCert := flag.String("tls-cert", "", "path to TLS certificate file")
	tlsKey := flag.String("tls-key", "", "path to TLS private key file")
	logLevel := flag.String("log-level", "", "log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "log format (json or text)")
	shutdownTimeout := flag.Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	flag.Parse()

	logger := logging.Init(logging.Config{
		Level:  resolveString(*logLevel, "DEMOSHELF_LOG_LEVEL", "info"),
		Format: resolveString(*logFormat, "DEMOSHELF_LOG_FORMAT", "json"),
	})

	listenAddr := resolveString(*addr, "DEMOSHELF_ADDR", ":8080")
	musicRoot := resolveString(*musicDir, "DEMOSHELF_MUSIC_DIR", "music")
	dataRoot := resolveString(*dataDir, "DEMOSHELF_DATA_DIR", "data")

	recorder := metrics.Default()

	lib, err := library.New(library.Config{
		Root:    musicRoot,
		Logger:  logging.WithComponent(logger, "library"),
		Metrics: recorder,
	})
	if err != nil {
		fatal(logger, "initialize library", err)
	}

	credentials, err := auth.NewCredentialStore(filepath.Join(dataRoot, "credentials.json"))
	if err != nil {
		fatal(logger, "load credentials", err)
	}
	sessions := auth.NewSessionManager()

	templates, err := web.Templates()
	if err != nil {
		fatal(logger, "parse templates", err)
	}

	handler := api.NewHandler(lib, credentials, sessions)
	handler.Logger = logging.WithComponent(logger, "api")
	handler.Metrics = recorder
	handler.Hub = api.NewEventHub(recorder)
	handler.Templates = templates
	handler.Guard = netguard.Classifier{
		TrustProxy: resolveBool(*trustProxy, "DEMOSHELF_TRUST_PROXY"),
	}
	handler.SessionCookiePolicy = api.DefaultSessionCookiePolicy()

	watcher, err := watch.New(lib.Root(), logging.WithComponent(logger, "watch"))
	if err != nil {
		fatal(logger, "start watcher", err)
	}
	defer watcher.Close()

	srv, err := server.New(handler, server.Config{
		Addr: listenAddr,
		TLS: server.TLSConfig{
			CertFile: resolveString(*tlsCert, "DEMOSHELF_TLS_CERT", ""),
			KeyFile:  resolveString(*tlsKey, "DEMOSHELF_TLS_KEY", ""),
		},
		Logger:  logging.WithComponent(logger, "http"),
		Metrics: recorder,
	})
	if err != nil {
		fatal(logger, "configure server", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go handler.Hub.Relay(watcher.C(), ctx.Done())

	logger.Info("server starting", "addr", listenAddr, "music_dir", lib.Root())
	if err := srv.Run(ctx, *shutdownTimeout); err != nil {
		fatal(logger, "server stopped", err)
	}
	logger.Info("server stopped")
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}

// resolveString prefers the flag value, then the environment variable, then
// the fallback.
func resolveString(flagValue, envKey, fallback string) string {
	if trimmed := strings.TrimSpace(flagValue); trimmed != "" {
		return trimmed
	}
	if env := strings.TrimSpace(os.Getenv(envKey)); env != "" {
		return env
	}
	return fallback
}

func resolveBool(flagValue bool, envKey string) bool {
	if flagValue {
		return true
	}
	env := strings.TrimSpace(os.Getenv(envKey))
	if env == "" {
		return false
	}
	parsed, err := strconv.ParseBool(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid boolean for %s: %q\n", envKey, env)
		return false
	}
	return parsed
}
