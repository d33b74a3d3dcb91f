package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegram-polyai-bot/internal/application"
	"telegram-polyai-bot/internal/config"
	"telegram-polyai-bot/internal/domain/model"
	"telegram-polyai-bot/internal/domain/ports/adapter"
	aiAdapters "telegram-polyai-bot/internal/infra/adapters/ai"
	imgAdapters "telegram-polyai-bot/internal/infra/adapters/image"
	tele "telegram-polyai-bot/internal/infra/adapters/telegram"
	"telegram-polyai-bot/internal/infra/logging"
	"telegram-polyai-bot/internal/infra/metrics"
	red "telegram-polyai-bot/internal/infra/redis"
	"telegram-polyai-bot/internal/infra/web"
	"telegram-polyai-bot/internal/usecase"
)

// membershipProxy breaks the construction cycle between the subscription
// use case and the Telegram adapter, which implements the checker port but
// needs the facade first. Until bound it reports everyone as a member.
type membershipProxy struct{ inner adapter.MembershipChecker }

func (p *membershipProxy) IsChannelMember(ctx context.Context, channel string, userID int64) (bool, error) {
	if p.inner == nil {
		return true, nil
	}
	return p.inner.IsChannelMember(ctx, channel, userID)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop AI, no channel gate)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	memberCache := red.NewMembershipCache(redisClient, cfg.Redis.TTL.Std())

	// ---- AI provider clients ----
	clients := map[model.Provider]adapter.ProviderClient{}
	for p, pc := range cfg.AI.Providers {
		if cfg.Runtime.Dev {
			clients[p] = aiAdapters.NewNoopClient(p)
			continue
		}
		if pc.Key == "" {
			logger.Warn().Str("provider", string(p)).Msg("provider has no key, skipping")
			continue
		}
		var (
			cl  adapter.ProviderClient
			err error
		)
		switch p {
		case model.ProviderOpenAI:
			cl, err = aiAdapters.NewOpenAIClient(pc.Key)
		case model.ProviderAnthropic:
			cl, err = aiAdapters.NewAnthropicClient(pc.Key, cfg.AI.MaxTokens)
		case model.ProviderGemini:
			cl, err = aiAdapters.NewGeminiClient(ctx, pc.Key, pc.BaseURL, cfg.AI.MaxTokens)
		case model.ProviderGrok:
			cl, err = aiAdapters.NewGrokClient(pc.Key, pc.BaseURL)
		default:
			logger.Warn().Str("provider", string(p)).Msg("unknown provider in config, skipping")
			continue
		}
		if err != nil {
			logger.Fatal().Err(err).Str("provider", string(p)).Msg("provider client")
		}
		clients[p] = aiAdapters.NewLimitedClient(cl, cfg.AI.ConcurrentLimit)
	}
	if len(clients) == 0 {
		logger.Fatal().Msg("no AI providers configured: set at least one ai.providers.<name>.key")
	}

	// ---- Image generators ----
	generators := map[model.ImageModel]adapter.ImageGenerator{}
	if oc, ok := cfg.AI.Providers[model.ProviderOpenAI]; ok && oc.Key != "" {
		gen, err := imgAdapters.NewOpenAIImageGenerator(oc.Key, cfg.Image.OpenAIModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai image generator")
		}
		generators[model.ImageModelOpenAI] = gen
	}
	if cfg.Image.BFLKey != "" {
		gen, err := imgAdapters.NewFluxGenerator(cfg.Image.BFLBaseURL, cfg.Image.BFLKey, cfg.Image.FluxModel, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("flux generator")
		}
		generators[model.ImageModelFlux] = gen
	}

	// ---- Use cases ----
	sessionUC := usecase.NewSessionUseCase(&cfg.AI, cfg.Session, model.ImageModel(cfg.Image.Default), logger)
	statsUC := usecase.NewStatsUseCase(sessionUC)
	chatUC := usecase.NewChatUseCase(sessionUC, clients, statsUC, logger)
	imageUC := usecase.NewImageUseCase(sessionUC, generators, logger)

	checker := &membershipProxy{}
	gateEnabled := cfg.Bot.Channel.Enabled && !cfg.Runtime.Dev
	subUC := usecase.NewSubscriptionUseCase(cfg.Bot.Channel.ID, gateEnabled, checker, memberCache, logger)

	facade := application.NewBotFacade(sessionUC, chatUC, imageUC, subUC, statsUC, &cfg.AI, &cfg.Image, logger)

	// ---- Telegram ----
	bot, err := tele.NewRealTelegramBot(cfg, facade, rateLimiter, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}
	if cfg.Runtime.Dev {
		checker.inner = tele.NewNoopBot(logger)
	} else {
		checker.inner = bot
	}
	go func() {
		if err := bot.StartPolling(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Ops web server ----
	srv := web.NewServer(cfg.Web.Port, cfg.Web.JWTSecret, statsUC, redisClient, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("web server")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	bot.StopPolling()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("web shutdown")
	}
	cancel()
}
