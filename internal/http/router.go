/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "net/http"
    "time"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/config"
    "github.com/gin-gonic/gin"
    "github.com/google/uuid"
    "github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

func NewRouter(cfg config.Config, log zerolog.Logger, svc service) *gin.Engine {
    return newRouter(cfg, log, NewHandlers(cfg, log, svc))
}

func newRouter(cfg config.Config, log zerolog.Logger, h *Handlers) *gin.Engine {
    if cfg.AppEnv != "dev" { gin.SetMode(gin.ReleaseMode) }
    r := gin.New()
    r.Use(gin.Recovery())
    r.Use(requestID(), accessLog(log), cors())

    r.GET("/healthz", h.Healthz)
    api := r.Group("/api")
    api.GET("/health", h.Health)
    api.GET("/capacity-planning", h.CapacityPlanning)
    api.GET("/capacity-planning/insights", h.Insights)

    r.GET("/admin/last-run", h.LastRun)
    r.POST("/admin/run", h.RunNow)
    // Support both header-authenticated and path-secret webhook endpoints
    r.POST("/telegram/webhook", h.TelegramWebhook)
    r.POST("/telegram/webhook/:secret", h.TelegramWebhook)
    return r
}

func requestID() gin.HandlerFunc {
    return func(c *gin.Context) {
        id := c.GetHeader(requestIDHeader)
        if id == "" { id = uuid.NewString() }
        c.Set("request_id", id)
        c.Header(requestIDHeader, id)
        c.Next()
    }
}

func accessLog(log zerolog.Logger) gin.HandlerFunc {
    return func(c *gin.Context) {
        start := time.Now()
        c.Next()
        log.Info().Str("m", c.Request.Method).Str("p", c.FullPath()).Int("s", c.Writer.Status()).
            Str("rid", c.GetString("request_id")).Dur("took", time.Since(start)).Msg("http")
    }
}

// cors is permissive; the dashboard is served from a different origin.
func cors() gin.HandlerFunc {
    return func(c *gin.Context) {
        c.Header("Access-Control-Allow-Origin", "*")
        c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
        c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+requestIDHeader)
        if c.Request.Method == http.MethodOptions {
            c.AbortWithStatus(http.StatusNoContent)
            return
        }
        c.Next()
    }
}
