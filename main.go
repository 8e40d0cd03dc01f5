package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-ordering/config"
	"github.com/yeremiapane/table-ordering/database"
	"github.com/yeremiapane/table-ordering/kds"
	"github.com/yeremiapane/table-ordering/middlewares"
	"github.com/yeremiapane/table-ordering/router"
	"github.com/yeremiapane/table-ordering/services"
	"github.com/yeremiapane/table-ordering/utils"
)

func main() {
	cfg := config.Load()
	utils.SetLogLevel(cfg.LogLevel)
	utils.SetJWTSecret(cfg.JWTSecret, cfg.JWTTTL)
	utils.SetBcryptCost(cfg.BcryptCost)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	if err := database.SeedAdmin(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed admin: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := services.NewCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	hub := kds.Default()

	monitor := services.NewChangeMonitor(db, hub,
		services.NewOrderService(db),
		services.NewSessionService(db, cache),
		services.NewWaiterCallService(db),
		services.NewMenuService(db, cache),
	)
	monitor.Start()
	defer monitor.Stop()

	authLimiter := middlewares.NewRateLimiter(cfg.RateLimit/60, cfg.RateBurst)
	go housekeeping(ctx, monitor, authLimiter)

	r := router.SetupRouter(db, cfg, cache, hub, authLimiter)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Server shutdown: %v", err)
	}
}

// housekeeping prunes the token blacklist, idle rate-limit buckets and the
// processed change log.
func housekeeping(ctx context.Context, monitor *services.ChangeMonitor, limiter *middlewares.RateLimiter) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			tokens := utils.CleanupBlacklist(now)
			visitors := limiter.Cleanup(30 * time.Minute)
			changes, err := monitor.Purge(ctx, time.Hour)
			if err != nil {
				utils.ErrorLogger.Warnf("Purging change log: %v", err)
			}
			utils.InfoLogger.Debugf("Housekeeping: %d tokens, %d visitors, %d changes removed", tokens, visitors, changes)
		}
	}
}
