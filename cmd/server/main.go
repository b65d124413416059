package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/landing-page/internal/api"
	"github.com/ignite/landing-page/internal/assets"
	"github.com/ignite/landing-page/internal/config"
	"github.com/ignite/landing-page/internal/klaviyo"
	"github.com/ignite/landing-page/internal/leads"
	"github.com/ignite/landing-page/internal/pages"
	"github.com/ignite/landing-page/internal/pkg/logger"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func newAssetSource(ctx context.Context, cfg config.AssetsConfig) (assets.Source, error) {
	switch cfg.Type {
	case "local":
		return assets.NewLocalSource(cfg.LocalPath), nil
	case "s3", "aws":
		return assets.NewS3SourceFromConfig(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.AWSRegion, cfg.GetAWSProfile())
	default:
		return nil, fmt.Errorf("unknown assets type %q", cfg.Type)
	}
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog := logger.New(os.Stdout, logger.ParseLevel(cfg.Logging.Level), cfg.Logging.Redact())

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, err := newAssetSource(ctx, cfg.Assets)
	if err != nil {
		log.Fatalf("Failed to initialize assets: %v", err)
	}
	appLog.Info("assets initialized", "type", cfg.Assets.Type, "path", cfg.Assets.LocalPath, "bucket", cfg.Assets.S3Bucket)

	contacts := klaviyo.NewClient(cfg.Klaviyo)
	if !contacts.Configured() {
		appLog.Warn("KLAVIYO_PRIVATE_KEY not set, lead submissions will fail with configuration_error")
	}

	orchestrator := leads.New(contacts, leads.Options{
		ListID:       cfg.Klaviyo.ListID,
		Lead:         cfg.Lead,
		EventTimeout: cfg.Klaviyo.EventTimeout(),
		Logger:       appLog,
	})

	composer := pages.NewComposer(source, cfg.Pages.Sections, appLog)
	staticOpts := []assets.Option{
		assets.WithIndex(cfg.Assets.IndexDocument),
		assets.WithLogger(appLog),
	}
	if cfg.Pages.ServerSideSections {
		staticOpts = append(staticOpts, assets.WithRenderer(composer))
		appLog.Info("server-side section composition enabled", "sections", len(cfg.Pages.Sections))
	}

	server := api.NewServer(
		cfg.Server,
		api.NewHandlers(orchestrator, composer.Sections(), appLog),
		api.NewHealthChecker(contacts, orchestrator.ListID(), source, cfg.Assets.IndexDocument),
		assets.NewHandler(source, staticOpts...),
		orchestrator,
	)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := cfg.Server.Addr()
		appLog.Info("starting server", "addr", addr, "list_id", orchestrator.ListID())
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	appLog.Info("shutting down")

	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("server shutdown error", "error", err)
	}

	appLog.Info("server stopped")
}
