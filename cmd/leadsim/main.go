package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dennisdiepolder/monti/leadqueue/internal/leadgen"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
)

func main() {
	defaults := leadgen.DefaultConfig()

	var (
		controlPort  = flag.String("control-port", "8081", "Control API port")
		serverURL    = flag.String("server-url", "http://localhost:8080", "Lead queue server URL")
		leadsPerMin  = flag.Float64("rate", defaults.LeadsPerMin, "Leads generated per minute")
		routeShare   = flag.Float64("route-share", defaults.RouteShare, "Chance per new lead that the top lead is routed")
		abandonShare = flag.Float64("abandon-share", defaults.AbandonShare, "Chance per new lead that the oldest lead abandons")
		seed         = flag.Int64("seed", time.Now().UnixNano(), "Random seed for lead attributes")
		prefill      = flag.Int("prefill", 0, "Leads to post immediately at startup")
		wipe         = flag.Bool("wipe", false, "Clear the server queue before starting")
		autoStart    = flag.Bool("auto-start", false, "Start the feed immediately")
		logLevel     = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().
		Str("service", "leadsim").
		Logger()

	logger.Info().Str("server_url", *serverURL).Msg("starting LeadSim service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := leadgen.NewClient(*serverURL)
	if *wipe {
		if err := client.WipeLeads(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to wipe server queue")
		}
		logger.Info().Msg("server queue wiped")
	}

	cfg := leadgen.Config{
		LeadsPerMin:  *leadsPerMin,
		RouteShare:   *routeShare,
		AbandonShare: *abandonShare,
	}
	feed, err := leadgen.NewFeed(client, leadgen.NewGenerator(*seed), cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Interface("config", cfg).Msg("invalid feed configuration")
	}

	if *prefill > 0 {
		injected := feed.Inject(ctx, *prefill)
		logger.Info().Int("requested", *prefill).Int("injected", injected).Msg("queue prefilled")
	}

	control := leadgen.NewControl(ctx, feed, logger)
	go func() {
		if err := control.Serve(ctx, ":"+*controlPort); err != nil {
			logger.Error().Err(err).Msg("control API stopped")
		}
	}()

	if *autoStart {
		control.Start()
		logger.Info().Interface("config", cfg).Msg("feed auto-started")
	}

	printUsage(*controlPort)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutting down LeadSim")
	control.Stop()
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func printUsage(port string) {
	fmt.Println()
	fmt.Println("LeadSim Control API")
	fmt.Println()
	fmt.Println("Available endpoints:")
	fmt.Printf("  GET  http://localhost:%s/health  - Health check\n", port)
	fmt.Printf("  GET  http://localhost:%s/status  - Feed status and counters\n", port)
	fmt.Printf("  POST http://localhost:%s/start   - Start the feed\n", port)
	fmt.Printf("  POST http://localhost:%s/stop    - Stop the feed\n", port)
	fmt.Printf("  GET  http://localhost:%s/config  - Get feed configuration\n", port)
	fmt.Printf("  PUT  http://localhost:%s/config  - Update feed configuration\n", port)
	fmt.Printf("  POST http://localhost:%s/inject  - Post N leads now\n", port)
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Printf("  curl -X POST http://localhost:%s/start\n", port)
	fmt.Printf("  curl -X PUT http://localhost:%s/config -d '{\"leadsPerMin\":60}'\n", port)
	fmt.Printf("  curl -X POST http://localhost:%s/inject -d '{\"count\":25}'\n", port)
	fmt.Println()
}
