package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/schedulengine/internal/runqueue"
	"github.com/noah-isme/schedulengine/internal/scheduler"
	"github.com/noah-isme/schedulengine/internal/transport"
	"github.com/noah-isme/schedulengine/pkg/config"
	appErrors "github.com/noah-isme/schedulengine/pkg/errors"
)

type handler struct {
	queue    *runqueue.RunQueue
	validate *validator.Validate
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *scheduler.Metrics
}

func newHandler(queue *runqueue.RunQueue, validate *validator.Validate, cfg *config.Config, logger *zap.Logger, metrics *scheduler.Metrics) *handler {
	return &handler{queue: queue, validate: validate, cfg: cfg, logger: logger, metrics: metrics}
}

// generate handles POST {APIPrefix}/timetables: validate the request body,
// resolve it into domain classes, submit a run, wait for it to finish (or
// for the request context to end), and return the resulting timetable.
func (h *handler) generate(c *gin.Context) {
	var req transport.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.ObserveRun("invalid_input", 0)
		writeError(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error()))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.metrics.ObserveRun("invalid_input", 0)
		writeError(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error()))
		return
	}

	classes, err := req.ToDomain()
	if err != nil {
		h.metrics.ObserveRun("invalid_input", 0)
		writeError(c, appErrors.FromError(err))
		return
	}

	engineCfg := h.defaultEngineConfig()
	if req.Config != nil {
		engineCfg = mergeEngineConfig(engineCfg, req.Config.ToConfig())
	}

	run, err := h.queue.Submit(c.Request.Context(), runqueue.Request{Classes: classes, Config: engineCfg})
	if err != nil {
		writeError(c, appErrors.Wrap(err, appErrors.ErrQueueFull.Code, appErrors.ErrQueueFull.Status, "no scheduler worker became available"))
		return
	}

	result, err := run.Wait(c.Request.Context())
	if err != nil {
		run.Cancel()
		if ctxErr := c.Request.Context().Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				writeError(c, appErrors.ErrDeadlineHit)
				return
			}
			writeError(c, appErrors.ErrCanceled)
			return
		}
		writeError(c, appErrors.FromError(err))
		return
	}

	c.JSON(http.StatusOK, transport.FromResult(result))
}

func (h *handler) defaultEngineConfig() scheduler.Config {
	d := h.cfg.Scheduler
	return scheduler.Config{
		InitialPoolSize:        d.InitialPoolSize,
		MaxESIterations:        d.MaxESIterations,
		Sigma:                  d.Sigma,
		SigmaDecay:             d.SigmaDecay,
		MinSigma:               d.MinSigma,
		MaxStagnantIterations:  d.MaxStagnantIterations,
		MaxAnnealingIterations: d.MaxAnnealingIterations,
		Temperature:            d.Temperature,
		CoolingRate:            d.CoolingRate,
		MinTemperature:         d.MinTemperature,
	}
}

// mergeEngineConfig overlays every non-zero field of override onto base.
func mergeEngineConfig(base, override scheduler.Config) scheduler.Config {
	if override.InitialPoolSize != 0 {
		base.InitialPoolSize = override.InitialPoolSize
	}
	if override.MaxESIterations != 0 {
		base.MaxESIterations = override.MaxESIterations
	}
	if override.Sigma != 0 {
		base.Sigma = override.Sigma
	}
	if override.SigmaDecay != 0 {
		base.SigmaDecay = override.SigmaDecay
	}
	if override.MinSigma != 0 {
		base.MinSigma = override.MinSigma
	}
	if override.MaxStagnantIterations != 0 {
		base.MaxStagnantIterations = override.MaxStagnantIterations
	}
	if override.MaxAnnealingIterations != 0 {
		base.MaxAnnealingIterations = override.MaxAnnealingIterations
	}
	if override.Temperature != 0 {
		base.Temperature = override.Temperature
	}
	if override.CoolingRate != 0 {
		base.CoolingRate = override.CoolingRate
	}
	if override.MinTemperature != 0 {
		base.MinTemperature = override.MinTemperature
	}
	if override.Seed != 0 {
		base.Seed = override.Seed
	}
	return base
}

func writeError(c *gin.Context, err *appErrors.Error) {
	c.JSON(err.Status, gin.H{"error": err})
}
