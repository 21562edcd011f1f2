// Command gateway runs a mamgo channel node.
//
// The gateway exposes MAM channel operations over HTTP: creating publisher
// sessions, masking and attaching messages, draining message chains and
// managing polling subscriptions.
//
// # Configuration File
//
// Create a YAML file with gateway settings:
//
//	http_addr: ":8080"
//	metrics_addr: ":9090"
//	node_uri: "https://nodes.example.org:443"
//	depth: 3
//	mwm: 9
//	fragment_capacity: 256
//	fragment_max_age: 10m
//
// # Endpoints
//
//   - POST /v1/channels - Create a channel session
//   - POST /v1/channels/{channel_id}/messages - Publish a message
//   - GET /v1/messages/{root} - Drain a message chain
//   - POST /v1/subscriptions - Subscribe to a channel
//   - GET /v1/subscriptions/{root}/messages - Drain buffered messages
//   - DELETE /v1/subscriptions/{root} - Deactivate a subscription
//   - GET /livez, /readyz, /drain, /undrain - Lifecycle endpoints
//
// # Usage
//
//	go run ./cmd/gateway --config=gateway.yaml
//	go run ./cmd/gateway --addr=:8080 --node=https://nodes.example.org:443
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iotaledger/iota.go/trinary"

	"github.com/tanglekit/mamgo/api/httpserver"
	"github.com/tanglekit/mamgo/cmd/common"
	"github.com/tanglekit/mamgo/ledger"
	"github.com/tanglekit/mamgo/mam"
	"github.com/tanglekit/mamgo/metrics"
	"github.com/tanglekit/mamgo/services"
)

type gatewayConfig struct {
	HTTPAddr         string        `yaml:"http_addr"`
	MetricsAddr      string        `yaml:"metrics_addr"`
	NodeURI          string        `yaml:"node_uri"`
	Pprof            bool          `yaml:"pprof"`
	Debug            bool          `yaml:"debug"`
	Depth            uint64        `yaml:"depth"`
	MWM              uint64        `yaml:"mwm"`
	FragmentCapacity int           `yaml:"fragment_capacity"`
	FragmentMaxAge   time.Duration `yaml:"fragment_max_age"`
}

func main() {
	var (
		configPath  = flag.String("config", "", "Path to YAML config file")
		addr        = flag.String("addr", "", "HTTP listen address")
		metricsAddr = flag.String("metrics-addr", "", "Metrics listen address")
		nodeURI     = flag.String("node", "", "Tangle node URI")
		pprof       = flag.Bool("pprof", false, "Enable pprof debugging API")
		debug       = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	cfg := &gatewayConfig{
		HTTPAddr: ":8080",
		Depth:    mam.DefaultDepth,
		MWM:      mam.DefaultMinWeightMagnitude,
	}
	if err := common.LoadYAML(*configPath, cfg); err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if *nodeURI != "" {
		cfg.NodeURI = *nodeURI
	}
	if *pprof {
		cfg.Pprof = true
	}
	if *debug {
		cfg.Debug = true
	}

	log := common.NewLogger(cfg.Debug)

	if cfg.NodeURI == "" {
		log.Error("a tangle node URI is required (--node or node_uri)")
		os.Exit(1)
	}

	ledgerClient, err := ledger.NewIotaClient(cfg.NodeURI)
	if err != nil {
		log.Error("could not create node client", "err", err)
		os.Exit(1)
	}

	// The stub codec keeps the node runnable without the masking
	// cryptography; swap in a real codec implementation for production
	// channels.
	controller, err := mam.NewController(mam.ControllerConfig{
		Codec:              mam.NewStubCodec(),
		Ledger:             ledgerClient,
		Log:                log,
		Depth:              cfg.Depth,
		MinWeightMagnitude: cfg.MWM,
		Fragments: mam.ReassemblerConfig{
			Capacity: cfg.FragmentCapacity,
			MaxAge:   cfg.FragmentMaxAge,
			OnAbandon: func(bundle trinary.Hash) {
				metrics.BundlesAbandoned.Inc()
				log.Warn("abandoned incomplete bundle", "bundle", bundle)
			},
		},
	})
	if err != nil {
		log.Error("could not create controller", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gateway, err := services.NewGateway(&services.GatewayConfig{
		Controller:  controller,
		Listener:    services.NewListener(controller, log),
		Registry:    services.NewSubscriptionRegistry(),
		BaseContext: ctx,
		Log:         log,
	})
	if err != nil {
		log.Error("could not create gateway", "err", err)
		os.Exit(1)
	}

	srv, err := httpserver.New(&httpserver.HTTPServerConfig{
		ListenAddr:               cfg.HTTPAddr,
		MetricsAddr:              cfg.MetricsAddr,
		EnablePprof:              cfg.Pprof,
		Log:                      log,
		DrainDuration:            5 * time.Second,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              10 * time.Second,
		WriteTimeout:             60 * time.Second,
	}, gateway)
	if err != nil {
		log.Error("could not create HTTP server", "err", err)
		os.Exit(1)
	}

	srv.RunInBackground()
	log.Info("gateway started", "addr", cfg.HTTPAddr, "node", cfg.NodeURI)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	gateway.Shutdown()
	srv.Shutdown()
}
