// Command schedulerd is the HTTP gateway around internal/scheduler: it
// accepts a weekly scheduling request, runs it through the bounded
// internal/runqueue, and returns the resulting timetable.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/schedulengine/internal/runqueue"
	"github.com/noah-isme/schedulengine/internal/scheduler"
	"github.com/noah-isme/schedulengine/pkg/config"
	"github.com/noah-isme/schedulengine/pkg/logger"
	corsmiddleware "github.com/noah-isme/schedulengine/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/schedulengine/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	metrics := scheduler.NewMetrics(registry)
	queue := runqueue.New(cfg.RunQueue.Workers, cfg.RunQueue.SubmitWait, logr, metrics)
	validate := validator.New()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	h := newHandler(queue, validate, cfg, logr, metrics)
	api := r.Group(cfg.APIPrefix)
	api.POST("/timetables", h.generate)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server error", "error", err)
		}
	}()
	logr.Sugar().Infow("schedulerd listening", "port", cfg.Port)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
