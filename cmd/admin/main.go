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
	"userhub/internal/core/auth"
	"userhub/internal/core/config"
	"userhub/internal/core/logger"
	"userhub/internal/core/server"
	"userhub/internal/repo"
	"userhub/internal/service"
	"userhub/internal/transport/http/handler"
	"userhub/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad(os.Getenv("CONFIG_PATH"))
	log, cleanup := app.Logger(cfg, "admin")
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	a := cfg.App.Admin
	if a.PasswordHash == "" {
		log.Warn("app.admin.passwordHash is empty; every admin login will be rejected")
	}

	// 表结构由 api 进程迁移
	db, err := app.OpenDB(cfg, log)
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	defer app.CloseDB(db)

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}
	adminH := handler.NewAdminHandler(
		service.NewUserService(repo.NewStore(db), log),
		&service.AuthService{Username: a.Username, PasswordHash: a.PasswordHash, JWT: jwter},
		log,
	)
	r := router.NewAdminEngine(log, adminH, jwter, router.Limits{RPS: 50, Burst: 100, MaxInFlight: 50})
	srv := server.BuildServer(server.Addr(a.Host, a.Port), r, 5*time.Second, 10*time.Second, 60*time.Second)

	base := app.LocalURL(a.Host, a.Port)
	log.Info("admin api starting",
		zap.String("addr", srv.Addr),
		zap.String("health", base+"/health"),
		zap.String("admin_v1", base+"/admin/v1"),
	)
	if err := app.Serve(context.Background(), log, srv); err != nil {
		log.Error("admin api stopped with error", zap.Error(err))
		return
	}
	log.Info("admin api stopped gracefully")
}
