package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/thc-edge/vetbot/config"
	"github.com/thc-edge/vetbot/internal/api/v1/handlers"
	"github.com/thc-edge/vetbot/internal/app"
	"github.com/thc-edge/vetbot/internal/db"
	"github.com/thc-edge/vetbot/internal/db/repos"
	"github.com/thc-edge/vetbot/internal/discord"
	"github.com/thc-edge/vetbot/internal/events"
	"github.com/thc-edge/vetbot/internal/logger"
	"github.com/thc-edge/vetbot/internal/report"
	"github.com/thc-edge/vetbot/internal/services"
	"github.com/thc-edge/vetbot/internal/targets"
	"github.com/thc-edge/vetbot/internal/torn"
)

func main() {
	if err := run(); err != nil {
		logger.Fatalf("service failed: %v", err)
	}
}

func run() error {
	// Best effort; production supplies real environment variables.
	_ = godotenv.Load()

	logger.InitializeAndConfigure()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.New(db.Options{
		Host:       cfg.DBHost,
		User:       cfg.DBUser,
		Password:   cfg.DBPassword,
		DBName:     cfg.DBName,
		Port:       cfg.DBPort,
		SSLEnabled: &cfg.DBSSLEnabled,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	verifier, err := discord.NewVerifier(cfg.DiscordPublicKey)
	if err != nil {
		return fmt.Errorf("failed to build signature verifier: %w", err)
	}

	game, err := torn.NewClient(&torn.Options{
		BaseURL:         cfg.TornAPIBaseURL,
		RateLimitCalls:  cfg.RateLimitCalls,
		RateLimitPeriod: cfg.RateLimitPeriod,
	})
	if err != nil {
		return fmt.Errorf("failed to build game client: %w", err)
	}

	webhook, err := discord.NewWebhookClient(cfg.DiscordAPIBaseURL, discord.DefaultWebhookTimeout)
	if err != nil {
		return fmt.Errorf("failed to build webhook client: %w", err)
	}

	jobs := repos.NewAnalysisJobRepository(database)
	parser := targets.NewParser(cfg.MaxTargets, cfg.MaxIDDigits)
	assembler := report.NewMarkdownAssembler(nil)

	router := services.NewRouter(jobs, game, parser, webhook, cfg.DiscordAppID, cfg.MaxGroupTargets)
	processor := services.NewProcessor(jobs, game, assembler, webhook, cfg.BatchSize, cfg.AnalyzeTimeout)

	// Job continuations ride the in-process bus; both event kinds drive
	// the same tick loop.
	advance := func(ctx context.Context, event events.Event) error {
		return processor.Run(ctx, event.JobID)
	}
	events.Subscribe(events.EventJobKickoff, advance)
	events.Subscribe(events.EventJobPoll, advance)
	events.Start(context.Background())

	handler := handlers.NewInteractionHandler(verifier, router)

	logger.Infof("interactions service listening on :%s", cfg.Port)
	return app.New(handler).Listen(":" + cfg.Port)
}
