package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"marketplace/internal/config"
	"marketplace/internal/infra/db"
	"marketplace/internal/logger"
	"marketplace/internal/metrics"
	"marketplace/internal/server"
	"marketplace/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	//.envは無くてもよい（本番は環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat).With(zap.String("env", cfg.GoEnv))
	defer func() { _ = log.Sync() }()

	//DB接続
	gormDB, err := db.Connect(cfg, log)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	if cfg.DBAutoMigrate {
		if err := db.Migrate(gormDB); err != nil {
			log.Fatal("db migrate failed", zap.Error(err))
		}
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("db handle failed", zap.Error(err))
	}
	defer func() { _ = sqlDB.Close() }()

	//メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	h := server.NewHandlers(gormDB, cfg.OrderNoPrefix, usecase.SystemClock{}, m, log)
	e := server.New(log, m, cfg.JWTSecret, sqlDB.PingContext, h)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx, e, cfg.Addr(), log); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}
