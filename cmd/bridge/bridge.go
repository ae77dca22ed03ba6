package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/banshee-data/statebridge/internal/api"
	"github.com/banshee-data/statebridge/internal/config"
	"github.com/banshee-data/statebridge/internal/monitoring"
	"github.com/banshee-data/statebridge/internal/seriallink"
	"github.com/banshee-data/statebridge/internal/version"
)

var (
	configPath    = flag.String("config", "", "Path to a JSON config file (see "+config.ExampleConfigPath+")")
	listen        = flag.String("listen", config.DefaultListen, "Listen address")
	port          = flag.String("port", config.DefaultPortPath, "Serial port connected to the microcontroller")
	baud          = flag.Int("baud", config.DefaultBaudRate, "Serial baud rate")
	readTimeout   = flag.Duration("read-timeout", config.DefaultReadTimeout, "Serial read timeout")
	policy        = flag.String("unavailable-policy", string(config.PolicyDegrade), "Reply when the serial link is down: degrade (200, logged) or fail (503)")
	webDir        = flag.String("web-dir", config.DefaultWebDir, "Directory holding the built web UI; empty disables static serving")
	disableSerial = flag.Bool("disable-serial", false, "Run without opening the serial port (all commands are dropped)")
	printVersion  = flag.Bool("version", false, "Print version and exit")
)

// settings is the effective configuration after merging the config file with
// explicitly set flags.
type settings struct {
	Listen        string
	PortPath      string
	PortOptions   seriallink.PortOptions
	Policy        config.UnavailablePolicy
	WebDir        string
	DisableSerial bool
}

// resolveSettings starts from the config file (or defaults) and overrides any
// field whose flag was set on the command line.
func resolveSettings(cfg *config.BridgeConfig, set map[string]bool) (settings, error) {
	if cfg == nil {
		cfg = config.EmptyBridgeConfig()
	}

	s := settings{
		Listen:   cfg.GetListen(),
		PortPath: cfg.GetPortPath(),
		PortOptions: seriallink.PortOptions{
			BaudRate:    cfg.GetBaudRate(),
			ReadTimeout: cfg.GetReadTimeout(),
		},
		Policy:        cfg.GetUnavailablePolicy(),
		WebDir:        cfg.GetWebDir(),
		DisableSerial: cfg.GetDisableSerial(),
	}

	if set["listen"] {
		s.Listen = *listen
	}
	if set["port"] {
		s.PortPath = *port
	}
	if set["baud"] {
		s.PortOptions.BaudRate = *baud
	}
	if set["read-timeout"] {
		s.PortOptions.ReadTimeout = *readTimeout
	}
	if set["unavailable-policy"] {
		p, err := config.ParseUnavailablePolicy(*policy)
		if err != nil {
			return s, err
		}
		s.Policy = p
	}
	if set["web-dir"] {
		s.WebDir = *webDir
	}
	if set["disable-serial"] {
		s.DisableSerial = *disableSerial
	}

	if s.Listen == "" {
		return s, fmt.Errorf("listen address is required")
	}
	if _, err := s.PortOptions.Normalize(); err != nil {
		return s, fmt.Errorf("invalid serial options: %w", err)
	}
	return s, nil
}

// openLink makes the single startup attempt to open the serial port. Failure
// is not fatal: the bridge keeps serving in degraded mode.
func openLink(link *seriallink.Link, s settings) api.InitResult {
	if s.DisableSerial {
		log.Printf("serial disabled; running in degraded mode")
		return api.InitResult{}
	}

	if err := link.Open(s.PortPath, s.PortOptions); err != nil {
		log.Printf("[WARN] serial not available: %v", err)
		return api.InitResult{Attempted: true, Error: err.Error()}
	}
	log.Printf("[OK] serial open: %s @ %d", s.PortPath, link.Status().BaudRate)
	return api.InitResult{Attempted: true, OK: true}
}

// buildHandler mounts the bridge endpoint, debug routes, metrics and the web
// UI on one mux.
func buildHandler(s settings, link *seriallink.Link, initResult api.InitResult, reg *prometheus.Registry) http.Handler {
	metrics := monitoring.NewMetrics(reg, link.IsAvailable)

	mux := api.NewServer(link, s.Policy,
		api.WithMetrics(metrics),
		api.WithInitResult(initResult),
	).ServeMux()

	link.AttachAdminRoutes(mux)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	if s.WebDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.WebDir)))
	}

	return api.LoggingMiddleware(mux)
}

func main() {
	flag.Parse()

	if *printVersion {
		fmt.Println(version.String())
		return
	}

	cfg := config.EmptyBridgeConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadBridgeConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	s, err := resolveSettings(cfg, set)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	log.Printf("starting %s", version.String())

	link := seriallink.NewLink(nil)
	initResult := openLink(link, s)
	defer func() {
		if err := link.Close(); err != nil {
			log.Printf("failed to close serial link: %v", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		server := &http.Server{
			Addr:              s.Listen,
			Handler:           buildHandler(s, link, initResult, reg),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			log.Printf("listening on %s (unavailable policy: %s)", s.Listen, s.Policy)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
			if err := server.Close(); err != nil {
				log.Printf("HTTP server force close error: %v", err)
			}
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
