// switchboarddemo is a thin CLI around the switchboard library: it loads
// configuration from the environment, routes one request (from argv, or
// stdin if no argv is given), and prints the resulting decision.
//
// Startup follows the usual zerolog-setup, fail-fast-on-bad-config
// sequence, minus an HTTP server: switchboard is an embeddable router,
// not a standalone service, so there is no listener to bind or
// gracefully shut down here.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/relaymesh/switchboard/internal/config"
	"github.com/relaymesh/switchboard/internal/telemetry"
	"github.com/relaymesh/switchboard/pkg/switchboard"
	"github.com/rs/zerolog/log"
)

func main() {
	telemetry.Init(telemetry.Settings{Level: "info", Pretty: true})

	log.Info().Msg("switchboard starting")

	cfg := config.Load()
	router, err := switchboard.New(cfg, switchboard.WithConfidenceFallback("review-queue"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	payload, err := readPayload()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read payload")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	outcome := <-router.RouteAsync(ctx, payload)
	if outcome.Err != nil {
		log.Fatal().Err(outcome.Err).Msg("routing failed")
	}
	result := outcome.Result

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to encode result")
	}

	log.Info().
		Str("request_id", result.RequestID).
		Str("service", result.Decision.Service).
		Float64("confidence", result.Decision.Confidence).
		Int64("processing_time_ms", result.ProcessingTimeMs).
		Msg("routed")

	os.Stdout.Write(encoded)
	os.Stdout.Write([]byte("\n"))
}

func readPayload() (string, error) {
	if len(os.Args) > 1 {
		return strings.Join(os.Args[1:], " "), nil
	}

	reader := bufio.NewReader(os.Stdin)
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
