package main

import (
	"context"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"userhub/internal/app"
	"userhub/internal/core/config"
	"userhub/internal/core/logger"
	"userhub/internal/core/server"
	"userhub/internal/repo"
	"userhub/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad(os.Getenv("CONFIG_PATH"))
	log, cleanup := app.Logger(cfg, "api")
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	db, err := app.OpenDB(cfg, log)
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	defer app.CloseDB(db)

	ctx := context.Background()
	if cfg.DB.AutoMigrate {
		if err := repo.Migrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}
	if cfg.DB.Seed {
		seeded, err := repo.Seed(ctx, db)
		if err != nil {
			log.Fatal("seed failed", zap.Error(err))
		}
		log.Info("seed checked", zap.Bool("seeded", seeded))
	}

	h := cfg.App.HTTP
	r := router.NewAPIEngine(log, repo.NewStore(db), router.Limits{
		RPS:            h.RateLimitRPS,
		Burst:          h.RateLimitBurst,
		MaxInFlight:    h.MaxInFlight,
		MaxBodyBytes:   h.MaxBodyBytes,
		RequestTimeout: time.Duration(h.RequestTimeoutSec) * time.Second,
		QueueWait:      time.Duration(h.QueueWaitMs) * time.Millisecond,
	})
	srv := server.BuildServer(server.Addr(h.Host, h.Port), r,
		time.Duration(h.ReadTimeoutSec)*time.Second,
		time.Duration(h.WriteTimeoutSec)*time.Second,
		time.Duration(h.IdleTimeoutSec)*time.Second,
	)

	base := app.LocalURL(h.Host, h.Port)
	log.Info("user api starting",
		zap.String("addr", srv.Addr),
		zap.String("health", base+"/health"),
		zap.String("api", base+"/api"),
	)
	if err := app.Serve(ctx, log, srv); err != nil {
		log.Error("user api stopped with error", zap.Error(err))
		return
	}
	log.Info("user api stopped gracefully")
}
