package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"relay-lab/internal"
	"relay-lab/moderation"
	"relay-lab/observability"
	"relay-lab/relay"
	"relay-lab/runtime"
	"relay-lab/runtime/workers"
	"relay-lab/state"
	"relay-lab/transport/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so that every defer executes before the
// process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Live stores
	presence := state.NewPresenceRegistry()
	chats := state.NewChatStore(config.HistoryLimit)
	memberships := state.NewMembershipIndex()
	dedup := state.NewDedupCache(config.DedupRetention)
	metrics := observability.NewMetrics()
	hub := runtime.NewHub(log)

	// 3. Optional moderation
	var moderator *moderation.Moderator
	if config.ModerationEnabled {
		replacement, err := internal.CharacterRune(config.CharReplacement)
		if err != nil {
			return err
		}
		wordlist, err := moderation.LoadWordlist()
		if err != nil {
			return fmt.Errorf("loading moderation wordlist: %w", err)
		}
		log.Info(fmt.Sprintf("%d censored words loaded [%s]",
			len(wordlist.Words), strings.Join(wordlist.Languages, ",")))
		moderator, err = moderation.NewModerator(wordlist.Words, replacement)
		if err != nil {
			return fmt.Errorf("building moderator: %w", err)
		}
	}

	engine := relay.NewEngine(log, hub, presence, chats, memberships, dedup, metrics, moderator)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Background workers under supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewDedupJanitor(log, dedup, config.DedupSweepInterval))
	sup.Add(workers.NewTelemetryReporter(log, metrics, config.TelemetryInterval))

	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 6. HTTP / WebSocket surface
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	ws.NewHandler(log, engine, config.ConnectionBufferSize).Register(app)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting relay server", "address", address)
		if err := app.Listen(address); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	if err := app.ShutdownWithTimeout(config.ShutdownTimeout); err != nil {
		log.Warn("Shutdown timed out", "error", err)
	}
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
