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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wizard-game/config"
	"wizard-game/controller"
	"wizard-game/engine"
	"wizard-game/logger"
	"wizard-game/repository"
	"wizard-game/router"
	"wizard-game/service"
	"wizard-game/ws"
)

func main() {
	os.Exit(serve())
}

// serve returns the process exit code so deferred cleanup runs before exit.
func serve() int {
	configPath := os.Getenv(config.FileEnv)
	if configPath == "" {
		configPath = "config.json"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	log, err := logger.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		return 1
	}
	return 0
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tieBreak, err := engine.ParseTieBreak(cfg.TieBreak)
	if err != nil {
		return err
	}
	opts := service.Options{
		Logger:      log,
		Rules:       engine.Options{ForbidExactBids: cfg.ForbidExactBids, TieBreak: tieBreak},
		TurnTimeout: time.Duration(cfg.TurnTimeoutSeconds) * time.Second,
	}

	if cfg.AutoplayScript != "" {
		policy, err := service.LoadLuaPolicy(cfg.AutoplayScript)
		if err != nil {
			return err
		}
		opts.Autoplay = policy
		log.Info("autoplay script loaded", zap.String("path", cfg.AutoplayScript))
	}
	if cfg.RedisAddr != "" {
		rdb, err := repository.InitRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
		if err != nil {
			return err
		}
		defer rdb.Close()
		opts.Store = service.NewRedisStore(rdb)
	}
	if cfg.MySQLDSN != "" {
		db, err := repository.InitMySQL(ctx, cfg.MySQLDSN, log)
		if err != nil {
			return err
		}
		defer db.Close()
		journal := service.NewMySQLJournal(db)
		if err := journal.EnsureSchema(ctx); err != nil {
			return err
		}
		opts.Journal = journal
	}

	rooms := service.NewManager(opts)
	defer rooms.Shutdown()
	if _, err := rooms.Recover(ctx); err != nil {
		return err
	}

	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))

	secret := []byte(cfg.JWTSecret)
	handler := controller.NewHandler(rooms, secret, time.Duration(cfg.TokenTTLMinutes)*time.Minute, log)
	hub := ws.NewHub(rooms, secret, log)
	router.InitRouter(r, handler, hub, secret)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
