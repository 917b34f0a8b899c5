package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tronbot/bot"
)

// tronbot 入口：连接游戏服务器，按所选算法逐个 tick 决策移动方向
func main() {
	cfg := bot.DefaultConfig()
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "server address, host:port or ws://host/path")
	flag.StringVar(&cfg.Domain, "domain", "", "resolve server via SRV record of this domain (overrides -addr)")
	flag.StringVar(&cfg.SRVService, "srv", cfg.SRVService, "SRV service name looked up as _<srv>._tcp.<domain>")
	flag.StringVar(&cfg.Username, "user", "", "login username (default: algorithm name)")
	flag.StringVar(&cfg.Password, "password", os.Getenv("TRON_PASSWORD"), "login password (env TRON_PASSWORD)")
	flag.StringVar(&cfg.Algorithm, "algorithm", cfg.Algorithm, "move algorithm: random, avoid or quadrant")
	flag.IntVar(&cfg.FloodBudget, "budget", cfg.FloodBudget, "flood fill cell budget per direction")
	flag.Int64Var(&cfg.Seed, "seed", 0, "random seed for tie-breaking (0 = time based)")
	flag.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "read timeout per poll")
	flag.DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "sleep between empty polls")
	flag.StringVar(&cfg.GreetingMarker, "greeting", cfg.GreetingMarker, "text the server greeting must contain")
	flag.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file path")
	flag.BoolVar(&cfg.LogConsole, "console", false, "also log to stderr")
	flag.StringVar(&cfg.MetricsAddr, "metrics", "", "metrics/admin listen address, e.g. :9090")
	flag.Parse()
	if cfg.Username == "" {
		cfg.Username = cfg.Algorithm
	}

	// 使用第三方 zap 日志库写入日志文件（带滚动）
	if err := bot.InitLogger(cfg.LogFile, cfg.LogConsole); err != nil {
		panic(err)
	}
	defer bot.SyncLogger()

	if err := cfg.Validate(); err != nil {
		bot.Log.Fatalf("config: %v", err)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	engine, err := bot.NewEngine(cfg.Algorithm, bot.NewChooser(seed), cfg.FloodBudget)
	if err != nil {
		bot.Log.Fatalf("engine: %v", err)
	}
	metrics := &bot.BotMetrics{}

	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: bot.NewAdminMux(engine, metrics)}
		go func() {
			bot.Log.Infof("metrics listening on %s", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				bot.Log.Errorf("metrics listen: %v", err)
			}
		}()
		defer srv.Close()
	}

	// 优雅退出（Ctrl+C）
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := bot.Dial(ctx, cfg)
	if err != nil {
		bot.Log.Errorf("connect: %v", err)
		return
	}
	session := bot.NewSession(conn, engine, metrics, cfg)
	bot.Log.Infof("using %s algorithm", engine.Algorithm().Name())
	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		bot.Log.Errorf("session: %v", err)
	}
	bot.Log.Infof("metrics: %v", metrics.Snapshot())
}
