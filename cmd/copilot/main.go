package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"XAUCopilot/internal/collector"
	"XAUCopilot/internal/config"
	"XAUCopilot/internal/crew"
	"XAUCopilot/internal/llm"
	"XAUCopilot/internal/metrics"
	"XAUCopilot/internal/news"
	"XAUCopilot/internal/notifier"
	"XAUCopilot/internal/scheduler"
	"XAUCopilot/internal/tool"
)

const rule = "################################################"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] XAUCopilot starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath, ".env")
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	health := metrics.NewHealth()

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "twelvedata":
		fetcher = collector.NewTwelveDataFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.DataSource.Timezone, cfg.Proxy)
	case "mock":
		fetcher = &collector.MockFetcher{Price: 2650}
	default:
		yf := collector.NewYahooFetcher(cfg.Proxy)
		if cfg.DataSource.BaseURL != "" {
			yf.BaseURL = cfg.DataSource.BaseURL
		}
		fetcher = yf
	}
	log.Printf("[INFO] data source: %s (%s)", fetcher.Name(), cfg.DataSource.Symbol)

	// Init tools
	ddg := news.NewDuckDuckGo(cfg.Proxy)
	ddg.Region = cfg.Search.Region
	priceTool := tool.NewPriceTool(collector.NewCollector(fetcher, cfg.DataSource.Symbol), m)
	newsTool := tool.NewNewsTool(news.NewAdapter(ddg), m)

	// Init analyst
	base, err := llm.New(ctx, llm.Options{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.APIKey(),
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		log.Fatalf("[FATAL] init analyst: %v", err)
	}
	analyst := &llm.Instrumented{Analyst: base, Observer: m}
	log.Printf("[INFO] analyst: %s", analyst.Name())

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	opts := crew.Options{ExtraQueries: cfg.Search.ExtraQueries, Reading: cfg.Crew.Reading}
	sched := scheduler.NewScheduler(ctx, priceTool, newsTool, analyst, opts, tn)
	sched.Metrics = m
	sched.Health = health

	// One run, printed to stdout
	date := time.Now().Format(crew.DateLayout)
	fmt.Println(rule)
	fmt.Printf("## STARTING XAUCOPILOT (DATE: %s) ... ##\n", date)
	fmt.Println(rule)
	fmt.Println()

	rec, err := sched.RunOnce(ctx)
	if err != nil {
		if tn != nil {
			if sendErr := tn.SendWithRetry(ctx, notifier.FormatError(date, err), 3); sendErr != nil {
				log.Printf("[ERROR] send notification: %v", sendErr)
			}
		}
		log.Fatalf("[FATAL] %v", err)
	}

	fmt.Println()
	fmt.Println()
	fmt.Println(rule)
	fmt.Println("## FINAL RECOMMENDATION ##")
	fmt.Println(rule)
	fmt.Println()
	fmt.Println(rec.Final)

	if tn != nil {
		if err := tn.SendWithRetry(ctx, notifier.FormatRecommendation(rec), 3); err != nil {
			log.Printf("[ERROR] send notification: %v", err)
		}
	}

	if !cfg.Daemon() {
		return
	}

	// Daemon mode
	if cfg.Metrics.Addr != "" {
		srv := metrics.NewServer(cfg.Metrics.Addr, m, health)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				log.Printf("[WARN] metrics server shutdown: %v", err)
			}
		}()
	}

	if cfg.Schedule.Cron != "" {
		if err := sched.Register(cfg.Schedule.Cron); err != nil {
			log.Fatalf("[FATAL] register cron task: %v", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	if cfg.Telegram.Polling && tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	log.Println("[INFO] XAUCopilot is running. Press Ctrl+C to stop.")
	<-ctx.Done()

	log.Println("[INFO] shutdown signal received, stopping...")
	log.Println("[INFO] XAUCopilot stopped")
}
