package main

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"outage-checker/internal/cache"
	"outage-checker/internal/logger"
	"outage-checker/internal/outage"
)

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve schedules over a JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.serve(cmd.Context())
		},
	}
}

// newApp builds the HTTP service. reg receives the provider metrics and is
// exposed on /metrics.
func (e *env) newApp(reg *prometheus.Registry, schedules outage.ScheduleCache, log logger.Logger) (*fiber.App, error) {
	m, err := outage.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	e.metrics = m

	app := fiber.New(outage.AppConfig())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := app.Group("/api")
	h := &outage.Handlers{Options: e.options("api"), Cache: schedules, Log: log}
	h.RegisterRoutes(api)
	return app, nil
}

func (e *env) serve(ctx context.Context) error {
	log := logger.New("serve")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// --- Schedule cache ---
	var schedules outage.ScheduleCache
	if e.cfg.RedisURL != "" {
		c, err := cache.New(e.cfg.RedisURL, e.cfg.CacheTTL)
		if err != nil {
			return fmt.Errorf("redis cache: %w", err)
		}
		defer c.Close()
		schedules = c
		log.Infof("schedule cache enabled (ttl %s)", e.cfg.CacheTTL)
	}

	// --- Fiber HTTP Server ---
	app, err := e.newApp(reg, schedules, log)
	if err != nil {
		return err
	}

	// --- Graceful shutdown ---
	go func() {
		<-ctx.Done()
		log.Infof("shutting down...")
		_ = app.Shutdown()
	}()

	log.Infof("outage service starting on :%s", e.cfg.Port)
	if err := app.Listen(":" + e.cfg.Port); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
