// Command sortyx-server runs the medical waste classification backend:
// image classification via Gemini, disposal tracking QR tokens, bin sensor
// ingest, and a websocket feed of live events.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sortyx/sortyx-backend/internal/auth"
	"github.com/sortyx/sortyx-backend/internal/logging"
	"github.com/sortyx/sortyx-backend/internal/push"
	"github.com/sortyx/sortyx-backend/internal/sensor"
	"github.com/sortyx/sortyx-backend/internal/stats"
	"github.com/sortyx/sortyx-backend/internal/token"
	"github.com/sortyx/sortyx-backend/internal/vision"
)

// CLI flags
var (
	portFlag  int
	modelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "sortyx-server",
	Short: "Medical waste classification backend",
	Long: `Sortyx Server classifies images of medical waste into disposal
categories using Gemini, issues QR tracking tokens for each classification,
and tracks bin fill levels reported by sensor units.

Runs in offline mode (safe-default classifications) when no Gemini API key
is configured.

Examples:
  sortyx-server
  sortyx-server --port 9090
  sortyx-server --model gemini-2.5-pro`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 8000, "Port to listen on")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", vision.GetModelName(), "Gemini model to use")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	start := time.Now()

	// Optional .env for local development; absence is fine.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded environment from .env")
	}

	logging.Init()

	ctx := context.Background()
	classifier := buildClassifier(ctx)

	srv := newServer(
		classifier,
		token.NewEncoder(),
		stats.NewTracker(),
		push.NewHub(),
		sensor.NewRegistry(),
	)

	logging.NewStartupLogger("sortyx-server").
		Feature("gemini", classifier.Online()).
		Config("model", modelFlag).
		Config("port", fmt.Sprintf("%d", portFlag)).
		InitDuration(time.Since(start)).
		Log()

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", portFlag),
		Handler:      withLogging(withCORS(srv.routes())),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Int("port", portFlag).Msg("Starting Sortyx server")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// buildClassifier wires the Gemini classifier, degrading to offline mode
// when no API key is available. A misconfigured key is fatal: silently
// classifying everything as general waste with a key present would mask a
// deployment mistake.
func buildClassifier(ctx context.Context) *vision.Classifier {
	apiKey, err := auth.GetAPIKey()
	if err != nil {
		log.Warn().Err(err).Msg("No Gemini API key, running in offline mode")
		return vision.NewClassifier(nil, modelFlag)
	}

	client, err := vision.NewClient(ctx, apiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	if err := auth.ValidateAPIKey(ctx, client, modelFlag); err != nil {
		log.Fatal().Err(err).Msg("Gemini API key validation failed")
	}

	return vision.NewClassifier(client, modelFlag)
}
